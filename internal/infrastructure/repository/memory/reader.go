package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
)

func (s *Store) GetByExternalID(_ context.Context, externalID string) (tournament.Tournament, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := findTournament(s.data, externalID)
	return t, ok, nil
}

func (s *Store) GetDetail(_ context.Context, externalID string) (tournament.Detail, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := findTournament(s.data, externalID)
	if !ok {
		return tournament.Detail{}, false, nil
	}
	return s.detail(t), true, nil
}

func (s *Store) ListDetails(_ context.Context, filter tournament.ListFilter) ([]tournament.Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []tournament.Tournament
	for _, t := range s.data.tournaments {
		if filter.Year != 0 && t.CreatedAt.UTC().Year() != filter.Year {
			continue
		}
		if filter.ExcludeSeasonFinals && t.SeasonFinal {
			continue
		}
		rows = append(rows, t)
	}
	slices.SortFunc(rows, func(a, b tournament.Tournament) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]tournament.Detail, 0, len(rows))
	for _, t := range rows {
		out = append(out, s.detail(cloneTournament(t)))
	}
	return out, nil
}

func (s *Store) detail(t tournament.Tournament) tournament.Detail {
	d := tournament.Detail{Tournament: t}

	teamsByMatch := make(map[int64][2]tournament.TeamDetail)
	for teamID, team := range s.data.teams {
		if team.TeamNumber != 1 && team.TeamNumber != 2 {
			continue
		}
		pair := teamsByMatch[team.MatchID]
		td := tournament.TeamDetail{Team: team}
		for _, playerID := range s.data.teamPlayers[teamID] {
			td.Players = append(td.Players, s.data.players[playerID].Name)
		}
		pair[team.TeamNumber-1] = td
		teamsByMatch[team.MatchID] = pair
	}

	for _, m := range s.data.matches {
		if m.TournamentID != t.ID {
			continue
		}
		pair := teamsByMatch[m.ID]
		m.StartedAt = cloneTime(m.StartedAt)
		m.EndedAt = cloneTime(m.EndedAt)
		d.Matches = append(d.Matches, tournament.MatchDetail{Match: m, Team1: pair[0], Team2: pair[1]})
	}
	slices.SortFunc(d.Matches, compareMatchDetails)

	for key, st := range s.data.standings {
		if key.tournamentID != t.ID {
			continue
		}
		d.Standings = append(d.Standings, tournament.StandingDetail{Standing: st, PlayerName: s.data.players[st.PlayerID].Name})
	}
	slices.SortFunc(d.Standings, func(a, b tournament.StandingDetail) int {
		if c := cmp.Compare(standingOrder(a.Standing.Type), standingOrder(b.Standing.Type)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Standing.Place, b.Standing.Place); c != 0 {
			return c
		}
		return strings.Compare(a.PlayerName, b.PlayerName)
	})
	return d
}

// compareMatchDetails orders by start time with unscheduled matches last.
func compareMatchDetails(a, b tournament.MatchDetail) int {
	sa, sb := a.Match.StartedAt, b.Match.StartedAt
	switch {
	case sa != nil && sb != nil:
		if c := sa.Compare(*sb); c != 0 {
			return c
		}
	case sa != nil:
		return -1
	case sb != nil:
		return 1
	}
	return cmp.Compare(a.Match.ID, b.Match.ID)
}

func standingOrder(t tournament.StandingType) int {
	if t == tournament.StandingQualifying {
		return 0
	}
	return 1
}
