package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
	"github.com/riskibarqy/kicker-league/internal/platform/resilience"
)

const (
	DefaultMaxRetries       = 3
	DefaultStatementTimeout = 5 * time.Minute
	retryBackoff            = 50 * time.Millisecond
)

type StoreConfig struct {
	MaxRetries       int
	StatementTimeout time.Duration
	Breaker          resilience.BreakerConfig
}

// Store runs units of work as serializable transactions, retrying
// serialization failures and deadlocks.
type Store struct {
	db      *sqlx.DB
	cfg     StoreConfig
	breaker *resilience.Breaker
	logger  *logging.Logger
}

func NewStore(db *sqlx.DB, cfg StoreConfig, logger *logging.Logger) *Store {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.StatementTimeout <= 0 {
		cfg.StatementTimeout = DefaultStatementTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		db:      db,
		cfg:     cfg,
		breaker: resilience.NewBreaker(cfg.Breaker),
		logger:  logger.Named("postgres"),
	}
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, uow tournament.UnitOfWork) error) error {
	var err error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			s.logger.WarnContext(ctx, "retrying unit of work", "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry unit of work: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		err = s.breaker.Execute(func() error {
			return s.atomicOnce(ctx, fn)
		}, isConnectionFailure)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("unit of work gave up after %d attempts: %w", s.cfg.MaxRetries+1, err)
}

func (s *Store) atomicOnce(ctx context.Context, fn func(ctx context.Context, uow tournament.UnitOfWork) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin unit of work tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	timeout := s.cfg.StatementTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if timeout > 0 {
		// SET LOCAL takes no bind parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", timeout.Milliseconds())); err != nil {
			return fmt.Errorf("set statement timeout: %w", err)
		}
	}

	if err := fn(ctx, &unitOfWork{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unit of work tx: %w", err)
	}
	return nil
}

type unitOfWork struct {
	tx *sqlx.Tx
}

func (u *unitOfWork) Tournaments() tournament.Writer {
	return &TournamentWriter{q: u.tx}
}

func (u *unitOfWork) Players() player.Writer {
	return &PlayerWriter{q: u.tx}
}

// Lock takes a transaction-scoped advisory lock released on commit or rollback.
func (u *unitOfWork) Lock(ctx context.Context, key string) error {
	if _, err := u.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("advisory lock %q: %w", key, err)
	}
	return nil
}
