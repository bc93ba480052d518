package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
	"github.com/riskibarqy/kicker-league/internal/domain/rating"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

// RatingService recomputes ratings from persisted match history on every call.
type RatingService struct {
	reader  tournament.Reader
	aliases player.AliasRepository
	engine  *rating.Engine
	logger  *logging.Logger
}

func NewRatingService(reader tournament.Reader, aliases player.AliasRepository, cfg rating.Config, logger *logging.Logger) (*RatingService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RatingService{
		reader:  reader,
		aliases: aliases,
		engine:  rating.NewEngine(cfg),
		logger:  logger.Named("rating"),
	}, nil
}

// ComputeTrueSkill rates every match ever synced.
func (s *RatingService) ComputeTrueSkill(ctx context.Context) (rating.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.ComputeTrueSkill")
	defer span.End()

	res, err := s.compute(ctx, tournament.ListFilter{})
	if err != nil {
		recordSpanError(span, err)
	}
	return res, err
}

// ComputeSeason rates the matches of one season, season finals excluded.
func (s *RatingService) ComputeSeason(ctx context.Context, year int) (rating.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.ComputeSeason", attribute.Int("season.year", year))
	defer span.End()

	if year <= 0 {
		return rating.Result{}, fmt.Errorf("%w: year must be > 0", ErrInvalidInput)
	}
	res, err := s.compute(ctx, tournament.ListFilter{Year: year, ExcludeSeasonFinals: true})
	if err != nil {
		recordSpanError(span, err)
	}
	return res, err
}

// Skills returns conservative season skill per player.
func (s *RatingService) Skills(ctx context.Context, year int) (map[string]float64, error) {
	res, err := s.ComputeSeason(ctx, year)
	if err != nil {
		return nil, err
	}
	return res.Skills(), nil
}

// PlayerHistory returns a player's career rating series, prior first.
func (s *RatingService) PlayerHistory(ctx context.Context, name string) ([]rating.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	resolver, err := loadResolver(ctx, s.aliases)
	if err != nil {
		return nil, err
	}
	res, err := s.ComputeTrueSkill(ctx)
	if err != nil {
		return nil, err
	}
	history, ok := res.History[resolver.Resolve(name)]
	if !ok {
		return nil, fmt.Errorf("%w: no rating history for player %q", ErrNotFound, name)
	}
	return history, nil
}

func (s *RatingService) compute(ctx context.Context, filter tournament.ListFilter) (rating.Result, error) {
	resolver, err := loadResolver(ctx, s.aliases)
	if err != nil {
		return rating.Result{}, err
	}
	details, err := s.reader.ListDetails(ctx, filter)
	if err != nil {
		return rating.Result{}, fmt.Errorf("list tournaments: %w", err)
	}

	res := s.engine.Compute(matchRecords(details), resolver)
	for _, w := range res.Warnings {
		s.logger.WarnContext(ctx, "rating update skipped",
			"match_index", w.MatchIndex,
			"match_external_id", w.ExternalID,
			"error", w.Err,
		)
	}
	s.logger.DebugContext(ctx, "ratings computed",
		"tournaments", len(details),
		"matches", res.Matches,
		"players", len(res.Ratings),
		"warnings", len(res.Warnings),
	)
	return res, nil
}
