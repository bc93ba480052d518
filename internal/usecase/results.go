package usecase

import (
	"github.com/riskibarqy/kicker-league/internal/domain/alias"
	"github.com/riskibarqy/kicker-league/internal/domain/ranking"
	"github.com/riskibarqy/kicker-league/internal/domain/rating"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
)

// tournamentResult projects a stored tournament onto the aggregator's input,
// canonicalizing names with the current alias snapshot.
func tournamentResult(d tournament.Detail, resolver *alias.Resolver) ranking.TournamentResult {
	out := ranking.TournamentResult{
		ID:          d.Tournament.ExternalID,
		Name:        d.Tournament.Name,
		Date:        d.Tournament.CreatedAt,
		SeasonFinal: d.Tournament.SeasonFinal,
	}
	for _, sd := range d.Standings {
		row := standingRow(sd, resolver)
		switch sd.Standing.Type {
		case tournament.StandingQualifying:
			out.Qualifying = append(out.Qualifying, row)
		case tournament.StandingElimination:
			out.Elimination = append(out.Elimination, row)
		}
	}
	for _, md := range d.Matches {
		if md.Match.Elimination {
			continue
		}
		out.QualifyingMatches = append(out.QualifyingMatches, ranking.MatchResult{
			Team1:  resolver.ResolveAll(md.Team1.Players),
			Team2:  resolver.ResolveAll(md.Team2.Players),
			Score1: md.Match.Score1,
			Score2: md.Match.Score2,
		})
	}
	return out
}

func standingRow(sd tournament.StandingDetail, resolver *alias.Resolver) ranking.StandingRow {
	s := sd.Standing
	return ranking.StandingRow{
		Name:         resolver.Resolve(sd.PlayerName),
		Place:        s.Place,
		Points:       s.Points,
		Matches:      s.Matches,
		Won:          s.Won,
		Lost:         s.Lost,
		Draw:         s.Draw,
		GoalsFor:     s.GoalsFor,
		GoalsAgainst: s.GoalsAgainst,
		Deactivated:  s.Deactivated,
		Removed:      s.Removed,
	}
}

func tournamentResults(details []tournament.Detail, resolver *alias.Resolver) []ranking.TournamentResult {
	out := make([]ranking.TournamentResult, 0, len(details))
	for _, d := range details {
		out = append(out, tournamentResult(d, resolver))
	}
	return out
}

// matchRecords flattens every stored match, qualifying and elimination
// alike. Matches without a start time take the tournament's creation time.
func matchRecords(details []tournament.Detail) []rating.MatchRecord {
	var out []rating.MatchRecord
	for _, d := range details {
		for _, md := range d.Matches {
			if !md.Match.Valid || md.Match.Skipped {
				continue
			}
			at := d.Tournament.CreatedAt
			if md.Match.StartedAt != nil {
				at = *md.Match.StartedAt
			}
			out = append(out, rating.MatchRecord{
				ExternalID: md.Match.ExternalID,
				Tournament: d.Tournament.Name,
				Timestamp:  at,
				Team1:      md.Team1.Players,
				Team2:      md.Team2.Players,
				Score1:     md.Match.Score1,
				Score2:     md.Match.Score2,
			})
		}
	}
	return out
}
