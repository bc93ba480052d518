package ranking

import (
	"sort"

	"github.com/sourcegraph/conc/iter"
)

// AttendancePoint is awarded for every tournament played, on top of the
// placement points.
const AttendancePoint = 1

// SeasonPoints scores a final placement. Places 5 through 16 all score as
// fifth; anything below sixteenth earns attendance only.
func SeasonPoints(place int) int {
	return placementPoints(place) + AttendancePoint
}

func placementPoints(place int) int {
	switch {
	case place == 1:
		return 25
	case place == 2:
		return 20
	case place == 3:
		return 16
	case place == 4:
		return 13
	case place >= 5 && place <= 16:
		return 10
	default:
		return 0
	}
}

// MaxTournamentPoints is the most a single tournament can add to a season.
var MaxTournamentPoints = SeasonPoints(1)

// ComputeSeasonRankings aggregates tournaments into a season table. Season
// finals do not count. Players are ordered by season points, then skill,
// then raw points; name breaks the remaining ties. skills may be nil.
func ComputeSeasonRankings(results []TournamentResult, skills map[string]float64) []RankedPlayer {
	counted := make([]TournamentResult, 0, len(results))
	for _, r := range results {
		if !r.SeasonFinal {
			counted = append(counted, r)
		}
	}
	sort.SliceStable(counted, func(i, j int) bool {
		if !counted[i].Date.Equal(counted[j].Date) {
			return counted[i].Date.Before(counted[j].Date)
		}
		return counted[i].ID < counted[j].ID
	})

	placements := iter.Map(counted, func(t *TournamentResult) []PlayerResult {
		return CombinedPlacement(*t)
	})

	players := make(map[string]*RankedPlayer)
	for i, t := range counted {
		for _, pr := range placements[i] {
			p, ok := players[pr.Name]
			if !ok {
				p = &RankedPlayer{Name: pr.Name, Skill: skills[pr.Name]}
				players[pr.Name] = p
			}
			pts := SeasonPoints(pr.FinalPlace)
			p.SeasonPoints += pts
			p.Points += pr.Points
			p.Tournaments++
			p.Matches += pr.Matches
			p.Won += pr.Won
			p.Lost += pr.Lost
			p.Draw += pr.Draw
			p.GoalsFor += pr.GoalsFor
			p.GoalsAgainst += pr.GoalsAgainst
			if pr.FinalPlace > 0 && (p.BestPlace == 0 || pr.FinalPlace < p.BestPlace) {
				p.BestPlace = pr.FinalPlace
			}
			p.Placements = append(p.Placements, Placement{
				TournamentID: t.ID,
				Tournament:   t.Name,
				Date:         t.Date,
				Place:        pr.FinalPlace,
				SeasonPoints: pts,
			})
		}
	}

	out := make([]RankedPlayer, 0, len(players))
	for _, p := range players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.SeasonPoints != b.SeasonPoints:
			return a.SeasonPoints > b.SeasonPoints
		case a.Skill != b.Skill:
			return a.Skill > b.Skill
		case a.Points != b.Points:
			return a.Points > b.Points
		default:
			return a.Name < b.Name
		}
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
