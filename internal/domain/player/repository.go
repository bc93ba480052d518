package player

import (
	"context"
	"errors"
)

var ErrDuplicateName = errors.New("player name already exists")

// Writer is the registry side used inside a sync unit of work.
type Writer interface {
	GetByName(ctx context.Context, name string) (Player, bool, error)
	Create(ctx context.Context, p Player) (Player, error)
	UpdateMetadata(ctx context.Context, p Player) error
}

// AliasRepository is read-only here; aliases are curated by operators.
type AliasRepository interface {
	ListAliases(ctx context.Context) ([]Alias, error)
	GetAlias(ctx context.Context, alias string) (Alias, bool, error)
}
