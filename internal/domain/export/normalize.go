package export

import (
	"fmt"
	"strings"
)

const (
	LevelFinal        = "Final"
	LevelSemifinal    = "Semifinal"
	LevelQuarterfinal = "Quarterfinal"
	LevelThirdPlace   = "Third Place"
)

// TeamSeparator joins player names into a team display name.
const TeamSeparator = " / "

// Normalize turns a decoded document into the canonical payload. Canonical
// input only gets level names backfilled; unknown input yields a payload
// carrying the header and no sections.
func Normalize(doc Document) Payload {
	var p Payload
	switch doc.Shape {
	case ShapeCanonical:
		p = doc.Canonical
		p.Version = VersionCanonical
	case ShapeNested:
		p = fromNested(doc.Nested)
		p.Version = VersionNested
	default:
		return Payload{
			ID:        doc.Header.ID,
			Name:      doc.Header.Name,
			CreatedAt: doc.Header.CreatedAt,
			UpdatedAt: doc.Header.UpdatedAt,
			Mode:      doc.Header.Mode,
			Sport:     doc.Header.Sport,
		}
	}

	backfillLevelNames(p.Eliminations)
	p.Type = DetectType(p)
	return p
}

// DetectType reports singles only when every eligible match has exactly one
// player per side.
func DetectType(p Payload) string {
	seen := false
	for _, ref := range p.Matches() {
		if !ref.Match.Eligible() {
			continue
		}
		seen = true
		if len(ref.Match.Team1.PlayerNames()) > 1 || len(ref.Match.Team2.PlayerNames()) > 1 {
			return TypeDoubles
		}
	}
	if seen {
		return TypeSingles
	}
	return TypeDoubles
}

// levelNameFallbacks names unnamed levels by position; levels past the list
// become "Round N".
var levelNameFallbacks = []string{LevelQuarterfinal, LevelSemifinal, LevelFinal, LevelThirdPlace}

func backfillLevelNames(eliminations []Elimination) {
	for i := range eliminations {
		levels := eliminations[i].Levels
		for j := range levels {
			if strings.TrimSpace(levels[j].Name) != "" {
				continue
			}
			if j < len(levelNameFallbacks) {
				levels[j].Name = levelNameFallbacks[j]
				continue
			}
			levels[j].Name = fmt.Sprintf("Round %d", j+1)
		}
		if third := eliminations[i].Third; third != nil && strings.TrimSpace(third.Name) == "" {
			third.Name = LevelThirdPlace
		}
	}
}

var eliminationMarkers = []string{"final", "semifinal", "quarterfinal"}

// IsEliminationName reports whether a stage or group name denotes a bracket.
func IsEliminationName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range eliminationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isThirdPlaceName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "third") || strings.Contains(lower, "3rd")
}

func fromNested(n NestedPayload) Payload {
	entries := make(map[string]NestedEntry, len(n.Entries))
	for _, e := range n.Entries {
		entries[e.ID] = e
	}

	p := Payload{
		ID:           n.ID,
		Name:         n.Name,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
		Mode:         n.Mode,
		Sport:        n.Sport,
		Qualifying:   []Qualifying{},
		Eliminations: []Elimination{},
	}

	for _, discipline := range n.Disciplines {
		for _, stage := range discipline.Stages {
			for _, group := range stage.Groups {
				name := group.Name
				if name == "" {
					name = stage.Name
				}
				standings := convertStandings(group.Standings, entries)

				if IsEliminationName(stage.Name) || IsEliminationName(group.Name) {
					elim := Elimination{ID: group.ID, Name: name, Levels: []Level{}, Standings: standings}
					for _, round := range group.Rounds {
						level := Level{ID: round.ID, Name: round.Name, Matches: convertMatches(round.Matches, entries)}
						if isThirdPlaceName(round.Name) {
							third := level
							elim.Third = &third
							continue
						}
						elim.Levels = append(elim.Levels, level)
					}
					p.Eliminations = append(p.Eliminations, elim)
					continue
				}

				q := Qualifying{ID: group.ID, Name: name, Rounds: []Round{}, Standings: standings}
				for _, round := range group.Rounds {
					q.Rounds = append(q.Rounds, Round{ID: round.ID, Name: round.Name, Matches: convertMatches(round.Matches, entries)})
				}
				p.Qualifying = append(p.Qualifying, q)
			}
		}
	}
	return p
}

func convertMatches(in []NestedMatch, entries map[string]NestedEntry) []Match {
	out := make([]Match, 0, len(in))
	for _, m := range in {
		if !isPlayed(m.State) || len(m.Entries) < 2 {
			continue
		}
		probe := Match{Result: m.Result}
		a, b, ok := probe.Scores()
		if !ok {
			continue
		}
		team1 := buildTeam(m.Entries[0], entries)
		team2 := buildTeam(m.Entries[1], entries)
		if len(team1.Players) == 0 || len(team2.Players) == 0 {
			continue
		}

		valid := true
		out = append(out, Match{
			ID:        m.ID,
			Team1:     team1,
			Team2:     team2,
			Result:    []any{a, b},
			Valid:     &valid,
			TimeStart: m.StartTime,
			TimeEnd:   m.EndTime,
		})
	}
	return out
}

func buildTeam(entryIDs []string, entries map[string]NestedEntry) *Team {
	team := &Team{ID: strings.Join(entryIDs, "+")}
	labels := make([]string, 0, len(entryIDs))
	for _, id := range entryIDs {
		entry, ok := entries[id]
		if !ok {
			continue
		}
		players := entry.participants()
		team.Players = append(team.Players, players...)
		if entry.Name != "" {
			labels = append(labels, entry.Name)
		}
	}
	if len(labels) == 0 {
		labels = team.PlayerNames()
	}
	team.Name = strings.Join(labels, TeamSeparator)
	return team
}

func convertStandings(in []NestedStanding, entries map[string]NestedEntry) []Standing {
	out := make([]Standing, 0, len(in))
	for _, s := range in {
		entry, ok := entries[s.EntryID]
		if !ok {
			continue
		}
		players := entry.participants()
		names := make([]string, 0, len(players))
		for _, p := range players {
			names = append(names, p.Name)
		}
		name := strings.Join(names, TeamSeparator)
		if name == "" {
			continue
		}

		place := 0
		switch {
		case s.Rank != nil:
			place = *s.Rank
		case s.Result != nil:
			place = *s.Result
		}

		out = append(out, Standing{
			ID:            s.EntryID,
			Name:          name,
			Players:       players,
			Place:         place,
			Points:        s.Points,
			Matches:       s.Matches,
			Won:           s.Wins,
			Lost:          s.Losses,
			Draw:          s.Draws,
			GoalsFor:      s.GoalsFor,
			GoalsAgainst:  s.GoalsAgainst,
			GoalDiff:      s.GoalDifference,
			PointsPerGame: s.PointsPerGame,
			BH1:           s.BH1,
			BH2:           s.BH2,
			Removed:       s.Removed,
			Deactivated:   s.Deactivated,
		})
	}
	return out
}
