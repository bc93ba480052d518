package tournament

import (
	"context"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

// Writer covers every write the sync engine performs inside one unit of work.
type Writer interface {
	// FindByExternalID matches the row's own external id or any merged one.
	FindByExternalID(ctx context.Context, externalID string) (Tournament, bool, error)
	ListSeasonFinals(ctx context.Context, year int, excludeID int64) ([]Tournament, error)
	// Save inserts when ID is zero and updates by ID otherwise. Inserting an
	// external id that is already claimed returns ErrDuplicateExternalID.
	Save(ctx context.Context, t Tournament) (Tournament, error)
	Delete(ctx context.Context, id int64) error

	UpsertMatch(ctx context.Context, m Match) (Match, error)
	DeleteTeamsByMatchExternalID(ctx context.Context, externalID string) error
	CreateTeam(ctx context.Context, t Team, playerIDs []int64) (Team, error)
	ListMatchExternalIDs(ctx context.Context, tournamentID int64) ([]string, error)
	DeleteMatches(ctx context.Context, tournamentID int64, externalIDs []string) (int, error)

	UpsertStanding(ctx context.Context, s Standing) error
	ListStandingKeys(ctx context.Context, tournamentID int64) ([]StandingKey, error)
	DeleteStandings(ctx context.Context, tournamentID int64, keys []StandingKey) (int, error)
}

// UnitOfWork exposes transaction-scoped repositories.
type UnitOfWork interface {
	Tournaments() Writer
	Players() player.Writer
	// Lock takes a lock held until the unit of work ends.
	Lock(ctx context.Context, key string) error
}

// Store runs fn atomically: either everything fn wrote is committed or nothing is.
type Store interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}

type Reader interface {
	GetByExternalID(ctx context.Context, externalID string) (Tournament, bool, error)
	GetDetail(ctx context.Context, externalID string) (Detail, bool, error)
	// ListDetails orders tournaments by creation time, matches by start time
	// with unscheduled matches last.
	ListDetails(ctx context.Context, filter ListFilter) ([]Detail, error)
}
