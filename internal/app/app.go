package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/kicker-league/internal/config"
	"github.com/riskibarqy/kicker-league/internal/domain/player"
	"github.com/riskibarqy/kicker-league/internal/domain/rating"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/kicker-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/kicker-league/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/kicker-league/internal/platform/id"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
	"github.com/riskibarqy/kicker-league/internal/platform/resilience"
	"github.com/riskibarqy/kicker-league/internal/usecase"
)

// Services is the wired application used by the command line tools.
type Services struct {
	Sync        *usecase.SyncService
	Batch       *usecase.BatchImporter
	Resync      *usecase.ResyncService
	Ranking     *usecase.RankingService
	Rating      *usecase.RatingService
	Tournaments *usecase.TournamentService
	Aliases     *usecase.AliasService

	closeFn func() error
}

func (s *Services) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

type backend struct {
	store   tournament.Store
	reader  tournament.Reader
	aliases player.AliasRepository
	close   func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	aliases := player.AliasRepository(cache.NewAliasRepository(b.aliases, cfg.AliasCacheTTL))
	ids := idgen.NewUUIDGenerator()

	syncSvc := usecase.NewSyncService(b.store, aliases, ids, usecase.SyncConfig{TxTimeout: cfg.SyncTxTimeout}, logger)
	ratingSvc, err := usecase.NewRatingService(b.reader, aliases, ratingConfig(cfg), logger)
	if err != nil {
		_ = b.close()
		return nil, fmt.Errorf("build rating service: %w", err)
	}

	return &Services{
		Sync:        syncSvc,
		Batch:       usecase.NewBatchImporter(syncSvc, cfg.SyncWorkers, ids, logger),
		Resync:      usecase.NewResyncService(b.reader, syncSvc, logger),
		Ranking:     usecase.NewRankingService(b.reader, aliases, ratingSvc, logger),
		Rating:      ratingSvc,
		Tournaments: usecase.NewTournamentService(b.reader),
		Aliases:     usecase.NewAliasService(aliases),
		closeFn:     b.close,
	}, nil
}

func newBackend(ctx context.Context, cfg config.Config, logger *logging.Logger) (backend, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		logger.Info("store ready", "driver", config.StoreDriverMemory)
		return backend{
			store:   store,
			reader:  store,
			aliases: memory.NewAliasRepository(nil),
			close:   func() error { return nil },
		}, nil
	case config.StoreDriverPostgres, "":
		db, err := openDB(ctx, cfg)
		if err != nil {
			return backend{}, err
		}
		store := postgres.NewStore(db, postgres.StoreConfig{
			MaxRetries:       cfg.SyncMaxRetries,
			StatementTimeout: cfg.SyncTxTimeout,
			Breaker: resilience.BreakerConfig{
				Enabled:          cfg.DBCircuitEnabled,
				FailureThreshold: cfg.DBCircuitFailureCount,
				OpenTimeout:      cfg.DBCircuitOpenTimeout,
				HalfOpenProbes:   cfg.DBCircuitHalfOpenMaxReq,
			},
		}, logger)
		logger.Info("store ready", "driver", config.StoreDriverPostgres, "db_name", dbNameFromURL(cfg.DBURL))
		return backend{
			store:   store,
			reader:  postgres.NewTournamentReader(db),
			aliases: postgres.NewAliasRepository(db),
			close:   db.Close,
		}, nil
	default:
		return backend{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", DatabaseURL(cfg),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func ratingConfig(cfg config.Config) rating.Config {
	return rating.Config{
		Mu:              cfg.RatingMu,
		Sigma:           cfg.RatingSigma,
		Beta:            cfg.RatingBeta,
		Tau:             cfg.RatingTau,
		DrawProbability: cfg.RatingDrawProbability,
	}
}
