package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
)

type standingKey struct {
	tournamentID int64
	playerID     int64
	kind         tournament.StandingType
}

type state struct {
	nextID       int64
	tournaments  map[int64]tournament.Tournament
	matches      map[int64]tournament.Match
	matchIDs     map[string]int64
	teams        map[int64]tournament.Team
	teamPlayers  map[int64][]int64
	standings    map[standingKey]tournament.Standing
	players      map[int64]player.Player
	playerByName map[string]int64
}

func newState() *state {
	return &state{
		tournaments:  make(map[int64]tournament.Tournament),
		matches:      make(map[int64]tournament.Match),
		matchIDs:     make(map[string]int64),
		teams:        make(map[int64]tournament.Team),
		teamPlayers:  make(map[int64][]int64),
		standings:    make(map[standingKey]tournament.Standing),
		players:      make(map[int64]player.Player),
		playerByName: make(map[string]int64),
	}
}

// clone copies every map. Row values are copied on the way in and out, so
// slices inside rows never alias between states.
func (s *state) clone() *state {
	out := &state{
		nextID:       s.nextID,
		tournaments:  maps.Clone(s.tournaments),
		matches:      maps.Clone(s.matches),
		matchIDs:     maps.Clone(s.matchIDs),
		teams:        maps.Clone(s.teams),
		teamPlayers:  maps.Clone(s.teamPlayers),
		standings:    maps.Clone(s.standings),
		players:      maps.Clone(s.players),
		playerByName: maps.Clone(s.playerByName),
	}
	return out
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store is an in-process implementation of the tournament store. Units of
// work run one at a time against a private copy of the data that replaces
// the shared copy only when fn succeeds.
type Store struct {
	mu   sync.RWMutex
	data *state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, uow tournament.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	uow := &unitOfWork{data: work, now: s.now}
	if err := fn(ctx, uow); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.data = work
	return nil
}

type unitOfWork struct {
	data *state
	now  func() time.Time
}

func (u *unitOfWork) Tournaments() tournament.Writer { return (*tournamentWriter)(u) }
func (u *unitOfWork) Players() player.Writer         { return (*playerWriter)(u) }

// Lock is a no-op: Atomic already runs units of work one at a time.
func (u *unitOfWork) Lock(context.Context, string) error { return nil }

type tournamentWriter unitOfWork

func (w *tournamentWriter) FindByExternalID(_ context.Context, externalID string) (tournament.Tournament, bool, error) {
	t, ok := findTournament(w.data, externalID)
	return t, ok, nil
}

func (w *tournamentWriter) ListSeasonFinals(_ context.Context, year int, excludeID int64) ([]tournament.Tournament, error) {
	var out []tournament.Tournament
	for _, t := range w.data.tournaments {
		if t.SeasonFinal && t.ID != excludeID && t.CreatedAt.UTC().Year() == year {
			out = append(out, cloneTournament(t))
		}
	}
	slices.SortFunc(out, func(a, b tournament.Tournament) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (w *tournamentWriter) Save(_ context.Context, t tournament.Tournament) (tournament.Tournament, error) {
	if t.ID != 0 {
		if _, ok := w.data.tournaments[t.ID]; !ok {
			return tournament.Tournament{}, fmt.Errorf("tournament %d does not exist", t.ID)
		}
	}
	for _, other := range w.data.tournaments {
		if other.ID == t.ID {
			continue
		}
		if other.Claims(t.ExternalID) {
			return tournament.Tournament{}, tournament.ErrDuplicateExternalID
		}
		for _, merged := range t.MergedExternalIDs {
			if other.Claims(merged) {
				return tournament.Tournament{}, tournament.ErrDuplicateExternalID
			}
		}
	}
	if t.ID == 0 {
		t.ID = w.data.id()
	}
	w.data.tournaments[t.ID] = cloneTournament(t)
	return cloneTournament(t), nil
}

func (w *tournamentWriter) Delete(_ context.Context, id int64) error {
	if _, ok := w.data.tournaments[id]; !ok {
		return nil
	}
	for matchID, m := range w.data.matches {
		if m.TournamentID == id {
			w.deleteMatch(matchID)
		}
	}
	for key := range w.data.standings {
		if key.tournamentID == id {
			delete(w.data.standings, key)
		}
	}
	delete(w.data.tournaments, id)
	return nil
}

func (w *tournamentWriter) UpsertMatch(_ context.Context, m tournament.Match) (tournament.Match, error) {
	if _, ok := w.data.tournaments[m.TournamentID]; !ok {
		return tournament.Match{}, fmt.Errorf("tournament %d does not exist", m.TournamentID)
	}
	if id, ok := w.data.matchIDs[m.ExternalID]; ok {
		m.ID = id
	} else {
		m.ID = w.data.id()
		w.data.matchIDs[m.ExternalID] = m.ID
	}
	m.StartedAt = cloneTime(m.StartedAt)
	m.EndedAt = cloneTime(m.EndedAt)
	w.data.matches[m.ID] = m
	return m, nil
}

func (w *tournamentWriter) DeleteTeamsByMatchExternalID(_ context.Context, externalID string) error {
	matchID, ok := w.data.matchIDs[externalID]
	if !ok {
		return nil
	}
	w.deleteTeams(matchID)
	return nil
}

func (w *tournamentWriter) CreateTeam(_ context.Context, t tournament.Team, playerIDs []int64) (tournament.Team, error) {
	if _, ok := w.data.matches[t.MatchID]; !ok {
		return tournament.Team{}, fmt.Errorf("match %d does not exist", t.MatchID)
	}
	for _, id := range playerIDs {
		if _, ok := w.data.players[id]; !ok {
			return tournament.Team{}, fmt.Errorf("player %d does not exist", id)
		}
	}
	t.ID = w.data.id()
	w.data.teams[t.ID] = t
	w.data.teamPlayers[t.ID] = slices.Clone(playerIDs)
	return t, nil
}

func (w *tournamentWriter) ListMatchExternalIDs(_ context.Context, tournamentID int64) ([]string, error) {
	var out []string
	for _, m := range w.data.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m.ExternalID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (w *tournamentWriter) DeleteMatches(_ context.Context, tournamentID int64, externalIDs []string) (int, error) {
	deleted := 0
	for _, externalID := range externalIDs {
		matchID, ok := w.data.matchIDs[externalID]
		if !ok || w.data.matches[matchID].TournamentID != tournamentID {
			continue
		}
		w.deleteMatch(matchID)
		deleted++
	}
	return deleted, nil
}

func (w *tournamentWriter) UpsertStanding(_ context.Context, st tournament.Standing) error {
	if _, ok := w.data.tournaments[st.TournamentID]; !ok {
		return fmt.Errorf("tournament %d does not exist", st.TournamentID)
	}
	if _, ok := w.data.players[st.PlayerID]; !ok {
		return fmt.Errorf("player %d does not exist", st.PlayerID)
	}
	key := standingKey{tournamentID: st.TournamentID, playerID: st.PlayerID, kind: st.Type}
	if existing, ok := w.data.standings[key]; ok {
		st.ID = existing.ID
	} else {
		st.ID = w.data.id()
	}
	w.data.standings[key] = st
	return nil
}

func (w *tournamentWriter) ListStandingKeys(_ context.Context, tournamentID int64) ([]tournament.StandingKey, error) {
	var out []tournament.StandingKey
	for key := range w.data.standings {
		if key.tournamentID == tournamentID {
			out = append(out, tournament.StandingKey{PlayerID: key.playerID, Type: key.kind})
		}
	}
	slices.SortFunc(out, func(a, b tournament.StandingKey) int {
		if c := cmp.Compare(a.PlayerID, b.PlayerID); c != 0 {
			return c
		}
		return cmp.Compare(string(a.Type), string(b.Type))
	})
	return out, nil
}

func (w *tournamentWriter) DeleteStandings(_ context.Context, tournamentID int64, keys []tournament.StandingKey) (int, error) {
	deleted := 0
	for _, k := range keys {
		key := standingKey{tournamentID: tournamentID, playerID: k.PlayerID, kind: k.Type}
		if _, ok := w.data.standings[key]; ok {
			delete(w.data.standings, key)
			deleted++
		}
	}
	return deleted, nil
}

func (w *tournamentWriter) deleteMatch(matchID int64) {
	w.deleteTeams(matchID)
	delete(w.data.matchIDs, w.data.matches[matchID].ExternalID)
	delete(w.data.matches, matchID)
}

func (w *tournamentWriter) deleteTeams(matchID int64) {
	for teamID, t := range w.data.teams {
		if t.MatchID == matchID {
			delete(w.data.teams, teamID)
			delete(w.data.teamPlayers, teamID)
		}
	}
}

type playerWriter unitOfWork

func (w *playerWriter) GetByName(_ context.Context, name string) (player.Player, bool, error) {
	id, ok := w.data.playerByName[name]
	if !ok {
		return player.Player{}, false, nil
	}
	return w.data.players[id], true, nil
}

func (w *playerWriter) Create(_ context.Context, p player.Player) (player.Player, error) {
	if _, ok := w.data.playerByName[p.Name]; ok {
		return player.Player{}, fmt.Errorf("create player %q: %w", p.Name, player.ErrDuplicateName)
	}
	now := w.now().UTC()
	p.ID = w.data.id()
	p.CreatedAt = now
	p.UpdatedAt = now
	w.data.players[p.ID] = p
	w.data.playerByName[p.Name] = p.ID
	return p, nil
}

func (w *playerWriter) UpdateMetadata(_ context.Context, p player.Player) error {
	stored, ok := w.data.players[p.ID]
	if !ok {
		return fmt.Errorf("player %d does not exist", p.ID)
	}
	p.Name = stored.Name
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = w.now().UTC()
	w.data.players[p.ID] = p
	return nil
}

func findTournament(data *state, externalID string) (tournament.Tournament, bool) {
	var (
		found tournament.Tournament
		ok    bool
	)
	for _, t := range data.tournaments {
		if !t.Claims(externalID) {
			continue
		}
		// A row's own id wins over a merged claim.
		if !ok || t.ExternalID == externalID {
			found, ok = t, true
		}
	}
	if !ok {
		return tournament.Tournament{}, false
	}
	return cloneTournament(found), true
}

func cloneTournament(t tournament.Tournament) tournament.Tournament {
	t.MergedExternalIDs = slices.Clone(t.MergedExternalIDs)
	t.RawPayload = slices.Clone(t.RawPayload)
	return t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
