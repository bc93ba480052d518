package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/kicker-league/internal/domain/export"
	"github.com/riskibarqy/kicker-league/internal/domain/player"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/kicker-league/internal/platform/id"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

var monday = time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)

func side(names ...string) *export.Team {
	players := make([]export.Participant, 0, len(names))
	for _, name := range names {
		players = append(players, export.Participant{Name: name})
	}
	return &export.Team{Players: players}
}

func played(id string, team1, team2 *export.Team, score1, score2 int) export.Match {
	return export.Match{ID: id, Team1: team1, Team2: team2, Result: []any{float64(score1), float64(score2)}}
}

func row(name string, place, points int) export.Standing {
	return export.Standing{Name: name, Place: place, Points: points, Matches: 2}
}

func cupPayload() export.Payload {
	return export.Payload{
		ID:        "cup-1",
		Name:      "Monday Cup",
		CreatedAt: monday,
		UpdatedAt: monday.Add(3 * time.Hour),
		Mode:      "swiss",
		Sport:     "kicker",
		Version:   export.VersionCanonical,
		Qualifying: []export.Qualifying{{
			ID: "q1",
			Rounds: []export.Round{{
				ID:   "r1",
				Name: "Round 1",
				Matches: []export.Match{
					played("m1", side("Anna", "Ben"), side("Carl", "Dora"), 5, 3),
					played("m2", side("Anna", "Carl"), side("Ben", "Dora"), 2, 5),
				},
			}},
			Standings: []export.Standing{
				row("Ben", 1, 6),
				row("Anna", 2, 3),
				row("Dora", 3, 3),
				row("Carl", 4, 0),
			},
		}},
		Eliminations: []export.Elimination{{
			ID: "e1",
			Levels: []export.Level{{
				ID:      "l1",
				Name:    export.LevelFinal,
				Matches: []export.Match{played("m3", side("Anna", "Ben"), side("Carl", "Dora"), 4, 5)},
			}},
			Standings: []export.Standing{
				row("Carl / Dora", 1, 3),
				row("Anna / Ben", 2, 0),
			},
		}},
	}
}

func newTestSync(t *testing.T, aliases ...player.Alias) (*SyncService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewSyncService(store, memory.NewAliasRepository(aliases), id.NewSequence("run"), SyncConfig{}, logging.NewNop())
	return svc, store
}

// persisted renders the stored matches and standings of a tournament as
// comparable lines. Team row ids are rebuilt on every sync and left out.
func persisted(t *testing.T, store *memory.Store, externalID string) []string {
	t.Helper()
	d, ok, err := store.GetDetail(context.Background(), externalID)
	require.NoError(t, err)
	require.True(t, ok, "tournament %s not found", externalID)

	var lines []string
	for _, md := range d.Matches {
		lines = append(lines, fmt.Sprintf("match %s#%d %s %d:%d %s",
			md.Match.ExternalID, md.Match.ID,
			strings.Join(md.Team1.Players, "+"), md.Match.Score1, md.Match.Score2,
			strings.Join(md.Team2.Players, "+")))
	}
	for _, sd := range d.Standings {
		lines = append(lines, fmt.Sprintf("standing %s %s place=%d points=%d",
			sd.Standing.Type, sd.PlayerName, sd.Standing.Place, sd.Standing.Points))
	}
	slices.Sort(lines)
	return lines
}

func TestSyncPayload_CreatesTournament(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	res, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)

	if !res.Created || res.Merged {
		t.Fatalf("unexpected flags: created=%v merged=%v", res.Created, res.Merged)
	}
	if res.RunID != "run-1" {
		t.Fatalf("unexpected run id: %s", res.RunID)
	}
	require.Equal(t, 3, res.MatchesUpserted)
	require.Equal(t, 6, res.StandingsUpserted)
	require.Equal(t, 6, res.PlayersCreated)

	got, ok, err := store.GetByExternalID(context.Background(), "cup-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tournament.TypeDoubles, got.Type)
	require.Equal(t, "Monday Cup", got.Name)
	require.False(t, got.SeasonFinal)

	stored, err := export.DecodePayload(got.RawPayload)
	require.NoError(t, err)
	require.Equal(t, "cup-1", stored.ID)
	require.Len(t, stored.Matches(), 3)
}

func TestSyncPayload_IsIdempotent(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)
	first := persisted(t, store, "cup-1")

	res, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)
	require.Equal(t, first, persisted(t, store, "cup-1"))

	if res.Created {
		t.Fatalf("second sync must update, not create")
	}
	if res.MatchesDeleted != 0 || res.StandingsDeleted != 0 || res.PlayersCreated != 0 {
		t.Fatalf("unexpected changes on re-import: %+v", res)
	}
}

func TestSyncPayload_ConvergesOnRemovedMatch(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)
	before := persisted(t, store, "cup-1")

	next := cupPayload()
	next.Qualifying[0].Rounds[0].Matches = next.Qualifying[0].Rounds[0].Matches[:1]
	res, err := svc.SyncPayload(context.Background(), next)
	require.NoError(t, err)
	require.Equal(t, 1, res.MatchesDeleted)

	after := persisted(t, store, "cup-1")
	var removed []string
	for _, line := range before {
		if !slices.Contains(after, line) {
			removed = append(removed, line)
		}
	}
	require.Len(t, removed, 1)
	if !strings.HasPrefix(removed[0], "match m2#") {
		t.Fatalf("expected only m2 to be removed, got %v", removed)
	}
	require.Len(t, after, len(before)-1)
}

func TestSyncPayload_DeletesRemovedAndMissingStandings(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)

	next := cupPayload()
	next.Qualifying[0].Standings[3].Removed = true
	next.Eliminations[0].Standings = next.Eliminations[0].Standings[:1]
	res, err := svc.SyncPayload(context.Background(), next)
	require.NoError(t, err)

	require.Equal(t, 2, res.StandingsDeleted)
	require.Equal(t, 1, res.StandingsSkipped)
	for _, line := range persisted(t, store, "cup-1") {
		if strings.Contains(line, "qualifying Carl ") || strings.Contains(line, "Anna / Ben") {
			t.Fatalf("stale standing survived: %s", line)
		}
	}
}

func TestSyncPayload_SkipsMalformedMatches(t *testing.T) {
	t.Parallel()

	invalid := false
	p := cupPayload()
	round := &p.Qualifying[0].Rounds[0]
	round.Matches = append(round.Matches,
		export.Match{ID: "bye", Team1: side("Anna"), Team2: side(), Result: []any{float64(0), float64(0)}},
		export.Match{ID: "unscored", Team1: side("Anna"), Team2: side("Ben")},
		export.Match{ID: "invalid", Team1: side("Anna"), Team2: side("Ben"), Result: []any{float64(1), float64(0)}, Valid: &invalid},
		export.Match{ID: "skipped", Team1: side("Anna"), Team2: side("Ben"), Result: []any{float64(1), float64(0)}, Skipped: true},
	)

	svc, store := newTestSync(t)
	res, err := svc.SyncPayload(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 3, res.MatchesUpserted)
	require.Equal(t, 4, res.MatchesSkipped)

	d, _, err := store.GetDetail(context.Background(), "cup-1")
	require.NoError(t, err)
	require.Len(t, d.Matches, 3)
}

func TestSyncPayload_RebuildsTeams(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)

	next := cupPayload()
	next.Qualifying[0].Rounds[0].Matches[0].Team1 = side("Anna", "Eve")
	_, err = svc.SyncPayload(context.Background(), next)
	require.NoError(t, err)

	d, _, err := store.GetDetail(context.Background(), "cup-1")
	require.NoError(t, err)
	for _, md := range d.Matches {
		if md.Match.ExternalID == "m1" {
			require.Equal(t, []string{"Anna", "Eve"}, md.Team1.Players)
			require.True(t, md.Team1.Team.Won)
			require.Equal(t, "Anna / Eve", md.Team1.Team.Name)
			return
		}
	}
	t.Fatalf("match m1 not found")
}

func TestSyncPayload_ResolvesAliases(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t, player.Alias{Alias: "Anne", CanonicalName: "Anna"})
	p := cupPayload()
	p.Qualifying[0].Rounds[0].Matches[0].Team1 = side("Anne", "Ben")
	_, err := svc.SyncPayload(context.Background(), p)
	require.NoError(t, err)

	for _, line := range persisted(t, store, "cup-1") {
		if strings.Contains(line, "Anne") {
			t.Fatalf("alias leaked into stored data: %s", line)
		}
	}
}

func TestSyncPayload_EnrichesPlayerMetadata(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)

	p := cupPayload()
	p.Qualifying[0].Rounds[0].Matches[0].Team1.Players[0].Club = "KC Berlin"
	res, err := svc.SyncPayload(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 1, res.PlayersEnriched)

	err = store.Atomic(context.Background(), func(ctx context.Context, uow tournament.UnitOfWork) error {
		anna, ok, err := uow.Players().GetByName(ctx, "Anna")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "KC Berlin", anna.Club)
		return nil
	})
	require.NoError(t, err)
}

func TestSyncPayload_ValidatesHeader(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	for _, p := range []export.Payload{
		{ID: "cup-1", Name: "   "},
		{ID: "", Name: "Monday Cup"},
	} {
		_, err := svc.SyncPayload(context.Background(), p)
		if !crerr.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if Classify(err) != KindInvalid {
			t.Fatalf("unexpected kind: %s", Classify(err))
		}
	}
	details, err := store.ListDetails(context.Background(), tournament.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, details)
}

func TestSyncPayload_CreatedAtFallsBackToUpdatedAt(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	p := cupPayload()
	p.CreatedAt = time.Time{}
	_, err := svc.SyncPayload(context.Background(), p)
	require.NoError(t, err)

	got, _, err := store.GetByExternalID(context.Background(), "cup-1")
	require.NoError(t, err)
	require.True(t, got.CreatedAt.Equal(p.UpdatedAt))
}

type conflictStore struct{ *memory.Store }

func (s conflictStore) Atomic(ctx context.Context, fn func(context.Context, tournament.UnitOfWork) error) error {
	return s.Store.Atomic(ctx, func(ctx context.Context, uow tournament.UnitOfWork) error {
		return fn(ctx, conflictUnit{uow})
	})
}

type conflictUnit struct{ tournament.UnitOfWork }

func (u conflictUnit) Tournaments() tournament.Writer {
	return conflictWriter{u.UnitOfWork.Tournaments()}
}

type conflictWriter struct{ tournament.Writer }

func (conflictWriter) Save(context.Context, tournament.Tournament) (tournament.Tournament, error) {
	return tournament.Tournament{}, tournament.ErrDuplicateExternalID
}

func TestSyncPayload_SurfacesDuplicateAsConflict(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc := NewSyncService(conflictStore{store}, nil, nil, SyncConfig{}, logging.NewNop())
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	if !crerr.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if Classify(err) != KindConflict {
		t.Fatalf("unexpected kind: %s", Classify(err))
	}
	_, ok, err := store.GetByExternalID(context.Background(), "cup-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSyncPayload_ConcurrentImportsOfSameTournament(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.SyncPayload(context.Background(), cupPayload())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if res.Created {
				created++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Equal(t, 1, created)
	details, err := store.ListDetails(context.Background(), tournament.ListFilter{})
	require.NoError(t, err)
	require.Len(t, details, 1)
}

func TestSync_DecodesRawExport(t *testing.T) {
	t.Parallel()

	raw := `{
		"_id": "raw-1",
		"name": "Raw Cup",
		"createdAt": "2025-04-01T18:00:00Z",
		"qualifying": [{
			"_id": "q",
			"rounds": [{"_id": "r", "matches": [
				{"_id": "x1", "team1": {"players": [{"name": "Anna"}]}, "team2": {"players": [{"name": "Ben"}]}, "result": [3, 5]}
			]}],
			"standings": [{"name": "Ben", "place": 1, "points": 3}, {"name": "Anna", "place": 2, "points": 0}]
		}],
		"eliminations": []
	}`

	svc, store := newTestSync(t)
	res, err := svc.Sync(context.Background(), []byte(raw))
	require.NoError(t, err)
	require.Equal(t, 1, res.MatchesUpserted)
	require.Equal(t, 2, res.StandingsUpserted)

	got, _, err := store.GetByExternalID(context.Background(), "raw-1")
	require.NoError(t, err)
	require.Equal(t, tournament.TypeDoubles, got.Type)

	_, err = svc.Sync(context.Background(), []byte(`{not json`))
	if Classify(err) != KindInvalid {
		t.Fatalf("expected invalid input for malformed json, got %v", err)
	}
}
