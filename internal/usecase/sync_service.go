package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kicker-league/internal/domain/alias"
	"github.com/riskibarqy/kicker-league/internal/domain/export"
	"github.com/riskibarqy/kicker-league/internal/domain/player"
	"github.com/riskibarqy/kicker-league/internal/domain/seasonfinal"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/platform/id"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
	"github.com/riskibarqy/kicker-league/internal/platform/resilience"
)

const DefaultSyncTxTimeout = 5 * time.Minute

type SyncConfig struct {
	// TxTimeout bounds one import's transaction; imports can touch hundreds of rows.
	TxTimeout time.Duration
}

// SyncResult reports what one import changed.
type SyncResult struct {
	RunID             string                `json:"run_id"`
	Tournament        tournament.Tournament `json:"-"`
	TournamentID      int64                 `json:"tournament_id"`
	ExternalID        string                `json:"external_id"`
	Created           bool                  `json:"created"`
	Merged            bool                  `json:"merged"`
	MergedInto        string                `json:"merged_into,omitempty"`
	OrphanDeleted     bool                  `json:"orphan_deleted"`
	MatchesUpserted   int                   `json:"matches_upserted"`
	MatchesSkipped    int                   `json:"matches_skipped"`
	MatchesDeleted    int                   `json:"matches_deleted"`
	StandingsUpserted int                   `json:"standings_upserted"`
	StandingsSkipped  int                   `json:"standings_skipped"`
	StandingsDeleted  int                   `json:"standings_deleted"`
	PlayersCreated    int                   `json:"players_created"`
	PlayersEnriched   int                   `json:"players_enriched"`
	DurationMs        int64                 `json:"duration_ms"`
}

// SyncService ingests tournament exports. Each import runs as one unit of
// work; imports of the same tournament, or of season finals in the same
// year, are serialized.
type SyncService struct {
	store   tournament.Store
	aliases player.AliasRepository
	locks   *resilience.KeyedMutex
	ids     id.Generator
	cfg     SyncConfig
	logger  *logging.Logger
	now     func() time.Time
}

func NewSyncService(
	store tournament.Store,
	aliases player.AliasRepository,
	ids id.Generator,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = DefaultSyncTxTimeout
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		store:   store,
		aliases: aliases,
		locks:   resilience.NewKeyedMutex(),
		ids:     ids,
		cfg:     cfg,
		logger:  logger.Named("sync"),
		now:     time.Now,
	}
}

// Sync decodes, normalizes and persists one raw export.
func (s *SyncService) Sync(ctx context.Context, raw []byte) (SyncResult, error) {
	doc, err := export.Decode(raw)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.SyncPayload(ctx, export.Normalize(doc))
}

func (s *SyncService) SyncPayload(ctx context.Context, payload export.Payload) (SyncResult, error) {
	payload.ID = strings.TrimSpace(payload.ID)
	payload.Name = strings.TrimSpace(payload.Name)

	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncPayload", attribute.String("tournament.external_id", payload.ID))
	defer span.End()

	if err := export.Validate(payload); err != nil {
		return SyncResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if payload.CreatedAt.IsZero() {
		payload.CreatedAt = payload.UpdatedAt
	}
	if payload.CreatedAt.IsZero() {
		payload.CreatedAt = s.now().UTC()
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return SyncResult{}, fmt.Errorf("generate sync run id: %w", err)
	}
	logger := s.logger.With("run_id", runID, "tournament_external_id", payload.ID)

	resolver, err := loadResolver(ctx, s.aliases)
	if err != nil {
		recordSpanError(span, err)
		return SyncResult{}, err
	}

	keys := []string{payload.ID}
	if seasonfinal.IsSeasonFinal(payload.Name) {
		keys = append(keys, seasonfinal.LockKey(payload.CreatedAt.UTC().Year()))
	}
	slices.Sort(keys)
	unlock := s.locks.LockAll(keys...)
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	start := s.now()
	var result SyncResult
	err = s.store.Atomic(txCtx, func(ctx context.Context, uow tournament.UnitOfWork) error {
		result = SyncResult{RunID: runID}
		for _, key := range keys {
			if err := uow.Lock(ctx, key); err != nil {
				return fmt.Errorf("lock %q: %w", key, err)
			}
		}
		return s.apply(ctx, uow, resolver, payload, &result, logger)
	})
	if err != nil {
		recordSpanError(span, err)
		if crerr.Is(err, tournament.ErrDuplicateExternalID) {
			logger.WarnContext(ctx, "tournament sync conflict", "error", err)
			return SyncResult{}, crerr.Mark(fmt.Errorf("sync tournament %q: %w", payload.ID, err), ErrConflict)
		}
		logger.ErrorContext(ctx, "tournament sync failed", "error", err)
		return SyncResult{}, fmt.Errorf("sync tournament %q: %w", payload.ID, err)
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	logger.InfoContext(ctx, "tournament synced",
		"tournament_id", result.TournamentID,
		"created", result.Created,
		"merged", result.Merged,
		"matches_upserted", result.MatchesUpserted,
		"matches_deleted", result.MatchesDeleted,
		"standings_upserted", result.StandingsUpserted,
		"standings_deleted", result.StandingsDeleted,
		"players_created", result.PlayersCreated,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

func (s *SyncService) apply(
	ctx context.Context,
	uow tournament.UnitOfWork,
	resolver *alias.Resolver,
	incoming export.Payload,
	result *SyncResult,
	logger *logging.Logger,
) error {
	writer := uow.Tournaments()

	target, err := s.resolveTarget(ctx, writer, incoming, result, logger)
	if err != nil {
		return err
	}
	payload := target.payload

	blob, err := export.Encode(payload)
	if err != nil {
		return err
	}

	row := target.row
	if row.ID == 0 {
		row.ExternalID = incoming.ID
		result.Created = true
	}
	if !target.merged || row.CreatedAt.IsZero() {
		row.CreatedAt = payload.CreatedAt
	}
	row.Name = payload.Name
	row.Mode = payload.Mode
	row.Sport = payload.Sport
	row.Type = tournament.TypeDoubles
	row.SourceUpdatedAt = payload.UpdatedAt
	row.SeasonFinal = target.merged || seasonfinal.IsSeasonFinal(payload.Name)
	row.SchemaVersion = payload.Version
	row.RawPayload = blob
	row.SyncedAt = s.now().UTC()

	saved, err := writer.Save(ctx, row)
	if err != nil {
		return fmt.Errorf("save tournament: %w", err)
	}
	result.Tournament = saved
	result.TournamentID = saved.ID
	result.ExternalID = saved.ExternalID

	registry := NewPlayerRegistry(uow.Players(), resolver)

	incomingMatches := make(map[string]struct{})
	for _, ref := range payload.Matches() {
		if err := s.syncMatch(ctx, writer, registry, saved.ID, ref, incomingMatches, result); err != nil {
			return err
		}
	}

	incomingStandings := make(map[tournament.StandingKey]struct{})
	for _, q := range payload.Qualifying {
		for _, st := range q.Standings {
			if err := syncStanding(ctx, writer, registry, resolver, saved.ID, tournament.StandingQualifying, st, incomingStandings, result); err != nil {
				return err
			}
		}
	}
	for _, e := range payload.Eliminations {
		for _, st := range e.Standings {
			if err := syncStanding(ctx, writer, registry, resolver, saved.ID, tournament.StandingElimination, st, incomingStandings, result); err != nil {
				return err
			}
		}
	}

	if err := cleanup(ctx, writer, saved.ID, incomingMatches, incomingStandings, result); err != nil {
		return err
	}

	result.PlayersCreated = registry.created
	result.PlayersEnriched = registry.enriched
	return nil
}

func (s *SyncService) syncMatch(
	ctx context.Context,
	writer tournament.Writer,
	registry *PlayerRegistry,
	tournamentID int64,
	ref export.MatchRef,
	incoming map[string]struct{},
	result *SyncResult,
) error {
	m := ref.Match
	externalID := strings.TrimSpace(m.ID)
	score1, score2, scored := m.Scores()
	if externalID == "" || !scored || !m.Eligible() {
		result.MatchesSkipped++
		s.logger.DebugContext(ctx, "skipping malformed match", "match_external_id", externalID, "round", ref.RoundName)
		return nil
	}

	ids1, names1, err := registry.ResolveTeam(ctx, m.Team1)
	if err != nil {
		return err
	}
	ids2, names2, err := registry.ResolveTeam(ctx, m.Team2)
	if err != nil {
		return err
	}
	if len(ids1) == 0 || len(ids2) == 0 {
		result.MatchesSkipped++
		return nil
	}

	if err := writer.DeleteTeamsByMatchExternalID(ctx, externalID); err != nil {
		return fmt.Errorf("delete teams of match %q: %w", externalID, err)
	}
	saved, err := writer.UpsertMatch(ctx, tournament.Match{
		ExternalID:   externalID,
		TournamentID: tournamentID,
		SectionID:    ref.SectionID,
		RoundID:      ref.RoundID,
		RoundName:    ref.RoundName,
		Elimination:  ref.Elimination,
		Score1:       score1,
		Score2:       score2,
		StartedAt:    unixMillis(m.TimeStart),
		EndedAt:      unixMillis(m.TimeEnd),
		Valid:        true,
	})
	if err != nil {
		return fmt.Errorf("upsert match %q: %w", externalID, err)
	}

	sides := []struct {
		team   *export.Team
		ids    []int64
		names  []string
		score  int
		winner bool
	}{
		{m.Team1, ids1, names1, score1, score1 > score2},
		{m.Team2, ids2, names2, score2, score2 > score1},
	}
	for i, side := range sides {
		_, err := writer.CreateTeam(ctx, tournament.Team{
			MatchID:    saved.ID,
			TeamNumber: i + 1,
			Name:       teamDisplayName(side.team, side.names),
			Score:      side.score,
			Won:        side.winner,
		}, side.ids)
		if err != nil {
			return fmt.Errorf("create team %d of match %q: %w", i+1, externalID, err)
		}
	}

	incoming[externalID] = struct{}{}
	result.MatchesUpserted++
	return nil
}

func syncStanding(
	ctx context.Context,
	writer tournament.Writer,
	registry *PlayerRegistry,
	resolver *alias.Resolver,
	tournamentID int64,
	kind tournament.StandingType,
	st export.Standing,
	incoming map[tournament.StandingKey]struct{},
	result *SyncResult,
) error {
	if st.Removed {
		result.StandingsSkipped++
		return nil
	}
	p, ok, err := registry.Resolve(ctx, st.Name, standingMetadata(st, resolver))
	if err != nil {
		return err
	}
	if !ok {
		result.StandingsSkipped++
		return nil
	}

	row := tournament.Standing{
		TournamentID: tournamentID,
		PlayerID:     p.ID,
		Type:         kind,
		Place:        st.Place,
		Points:       st.Points,
		Matches:      st.Matches,
		Won:          st.Won,
		Lost:         st.Lost,
		Draw:         st.Draw,
		GoalsFor:     st.GoalsFor,
		GoalsAgainst: st.GoalsAgainst,
		SetsWon:      st.SetsWon,
		SetsLost:     st.SetsLost,
		BallsWon:     st.BallsWon,
		BallsLost:    st.BallsLost,
		Deactivated:  st.Deactivated,
	}
	if err := writer.UpsertStanding(ctx, row); err != nil {
		return fmt.Errorf("upsert %s standing of %q: %w", kind, p.Name, err)
	}
	incoming[row.Key()] = struct{}{}
	result.StandingsUpserted++
	return nil
}

// cleanup deletes every persisted match and standing the payload no longer carries.
func cleanup(
	ctx context.Context,
	writer tournament.Writer,
	tournamentID int64,
	incomingMatches map[string]struct{},
	incomingStandings map[tournament.StandingKey]struct{},
	result *SyncResult,
) error {
	persisted, err := writer.ListMatchExternalIDs(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	var staleMatches []string
	for _, externalID := range persisted {
		if _, ok := incomingMatches[externalID]; !ok {
			staleMatches = append(staleMatches, externalID)
		}
	}
	if len(staleMatches) > 0 {
		slices.Sort(staleMatches)
		n, err := writer.DeleteMatches(ctx, tournamentID, staleMatches)
		if err != nil {
			return fmt.Errorf("delete stale matches: %w", err)
		}
		result.MatchesDeleted = n
	}

	keys, err := writer.ListStandingKeys(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("list standings: %w", err)
	}
	var staleStandings []tournament.StandingKey
	for _, key := range keys {
		if _, ok := incomingStandings[key]; !ok {
			staleStandings = append(staleStandings, key)
		}
	}
	if len(staleStandings) > 0 {
		slices.SortFunc(staleStandings, compareStandingKeys)
		n, err := writer.DeleteStandings(ctx, tournamentID, staleStandings)
		if err != nil {
			return fmt.Errorf("delete stale standings: %w", err)
		}
		result.StandingsDeleted = n
	}
	return nil
}

func compareStandingKeys(a, b tournament.StandingKey) int {
	if a.PlayerID != b.PlayerID {
		if a.PlayerID < b.PlayerID {
			return -1
		}
		return 1
	}
	return strings.Compare(string(a.Type), string(b.Type))
}

func unixMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

func loadResolver(ctx context.Context, aliases player.AliasRepository) (*alias.Resolver, error) {
	if aliases == nil {
		return alias.NewResolver(nil), nil
	}
	list, err := aliases.ListAliases(ctx)
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("list aliases: %w", err), ErrDependencyUnavailable)
	}
	return alias.NewResolver(list), nil
}
