package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name AliasRepository --dir ../domain/player --output domain/player --outpkg playermock --filename alias_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Reader --dir ../domain/tournament --output domain/tournament --outpkg tournamentmock --filename reader_mock.go
