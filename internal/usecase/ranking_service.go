package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
	"github.com/riskibarqy/kicker-league/internal/domain/ranking"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

type skillSource interface {
	Skills(ctx context.Context, year int) (map[string]float64, error)
}

type RankingService struct {
	reader  tournament.Reader
	aliases player.AliasRepository
	skills  skillSource
	logger  *logging.Logger
}

// NewRankingService breaks season ties with skills from ratings; a nil
// ratings service leaves skill at zero.
func NewRankingService(reader tournament.Reader, aliases player.AliasRepository, ratings *RatingService, logger *logging.Logger) *RankingService {
	var skills skillSource
	if ratings != nil {
		skills = ratings
	}
	return newRankingService(reader, aliases, skills, logger)
}

func newRankingService(reader tournament.Reader, aliases player.AliasRepository, skills skillSource, logger *logging.Logger) *RankingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RankingService{reader: reader, aliases: aliases, skills: skills, logger: logger.Named("ranking")}
}

type SeasonEntry struct {
	ranking.RankedPlayer
	Qualification ranking.Qualification
}

type SeasonView struct {
	Year            int
	Players         []SeasonEntry
	SurelyQualified []string
}

func (s *RankingService) SeasonRankings(ctx context.Context, year int) ([]ranking.RankedPlayer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.SeasonRankings", attribute.Int("season.year", year))
	defer span.End()

	if year <= 0 {
		return nil, fmt.Errorf("%w: year must be > 0", ErrInvalidInput)
	}
	resolver, err := loadResolver(ctx, s.aliases)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	details, err := s.reader.ListDetails(ctx, tournament.ListFilter{Year: year, ExcludeSeasonFinals: true})
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	var skills map[string]float64
	if s.skills != nil {
		skills, err = s.skills.Skills(ctx, year)
		if err != nil {
			recordSpanError(span, err)
			return nil, fmt.Errorf("season skills: %w", err)
		}
	}

	ranked := ranking.ComputeSeasonRankings(tournamentResults(details, resolver), skills)
	s.logger.DebugContext(ctx, "season ranked", "year", year, "tournaments", len(details), "players", len(ranked))
	return ranked, nil
}

// SeasonView is the season table annotated with finale qualification.
func (s *RankingService) SeasonView(ctx context.Context, year int) (SeasonView, error) {
	ranked, err := s.SeasonRankings(ctx, year)
	if err != nil {
		return SeasonView{}, err
	}
	qualification := ranking.FinaleQualification(ranked)
	view := SeasonView{
		Year:            year,
		Players:         make([]SeasonEntry, 0, len(ranked)),
		SurelyQualified: ranking.SurelyQualified(qualification),
	}
	for _, p := range ranked {
		view.Players = append(view.Players, SeasonEntry{RankedPlayer: p, Qualification: qualification[p.Name]})
	}
	return view, nil
}

// TournamentPlacement returns the combined final placement of one tournament.
func (s *RankingService) TournamentPlacement(ctx context.Context, externalID string) ([]ranking.PlayerResult, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: tournament external id is required", ErrInvalidInput)
	}
	resolver, err := loadResolver(ctx, s.aliases)
	if err != nil {
		return nil, err
	}
	detail, ok, err := s.reader.GetDetail(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("get tournament %q: %w", externalID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: tournament %q", ErrNotFound, externalID)
	}
	return ranking.CombinedPlacement(tournamentResult(detail, resolver)), nil
}
