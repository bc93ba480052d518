package ranking

import (
	"slices"
	"sort"
	"strings"
)

var teamSeparators = []string{" / ", " | ", " & "}

// SplitTeamName splits a composite team label into its player names.
func SplitTeamName(name string) []string {
	parts := []string{name}
	for _, sep := range teamSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}

	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// CombinedPlacement merges qualifying and elimination tables into one
// final placement per player. Knockout players keep their bracket place;
// with N bracket entries, qualifying-only players are numbered from N+1 in
// qualifying order.
func CombinedPlacement(t TournamentResult) []PlayerResult {
	stats := make(map[string]*PlayerResult)
	var order []string
	get := func(name string) *PlayerResult {
		if s, ok := stats[name]; ok {
			return s
		}
		s := &PlayerResult{Name: name}
		stats[name] = s
		order = append(order, name)
		return s
	}

	for _, row := range t.Qualifying {
		if row.Deactivated || row.Removed {
			continue
		}
		for _, name := range SplitTeamName(row.Name) {
			s := get(name)
			if s.QualifyingPlace == 0 || (row.Place > 0 && row.Place < s.QualifyingPlace) {
				s.QualifyingPlace = row.Place
			}
			addRow(s, row)
		}
	}

	teamsSeen := make(map[string]struct{})
	for _, row := range t.Elimination {
		if row.Deactivated || row.Removed {
			continue
		}
		members := SplitTeamName(row.Name)
		if len(members) == 0 {
			continue
		}
		teamKey := teamKeyOf(members)
		if _, dup := teamsSeen[teamKey]; dup {
			continue
		}
		teamsSeen[teamKey] = struct{}{}

		for _, name := range members {
			s := get(name)
			s.Knockout = true
			if s.EliminationPlace == 0 || (row.Place > 0 && row.Place < s.EliminationPlace) {
				s.EliminationPlace = row.Place
			}
			addRow(s, row)
		}
	}

	tb := TieBreakers(t.QualifyingMatches, qualifyingPoints(t.Qualifying))

	out := make([]PlayerResult, 0, len(order))
	for _, name := range order {
		s := *stats[name]
		if b, ok := tb[name]; ok {
			s.Buchholz = b.Buchholz
			s.SonnebornBerger = b.SonnebornBerger
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Knockout != b.Knockout {
			return a.Knockout
		}
		if a.Knockout {
			if pa, pb := placeKey(a.EliminationPlace), placeKey(b.EliminationPlace); pa != pb {
				return pa < pb
			}
		}
		return placeKey(a.QualifyingPlace) < placeKey(b.QualifyingPlace)
	})

	// N counts bracket entries, so a doubles team occupies one place.
	// Teammates sharing a qualifying place share the final place as well.
	n := len(teamsSeen)
	slot, prev := n, -1
	for i := range out {
		if out[i].Knockout {
			out[i].FinalPlace = out[i].EliminationPlace
			if out[i].FinalPlace <= 0 {
				out[i].FinalPlace = n
			}
			continue
		}
		if place := out[i].QualifyingPlace; place <= 0 || place != prev {
			slot++
			prev = place
		}
		out[i].FinalPlace = slot
	}
	return out
}

// Unplaced rows sort after every placed one.
func placeKey(place int) int {
	if place <= 0 {
		return int(^uint(0) >> 1)
	}
	return place
}

func addRow(s *PlayerResult, row StandingRow) {
	s.Points += row.Points
	s.Matches += row.Matches
	s.Won += row.Won
	s.Lost += row.Lost
	s.Draw += row.Draw
	s.GoalsFor += row.GoalsFor
	s.GoalsAgainst += row.GoalsAgainst
}

func teamKeyOf(members []string) string {
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	return strings.Join(sorted, "\x00")
}

func qualifyingPoints(rows []StandingRow) map[string]int {
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.Deactivated || row.Removed {
			continue
		}
		for _, name := range SplitTeamName(row.Name) {
			out[name] += row.Points
		}
	}
	return out
}
