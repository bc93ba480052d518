// Package ranking derives placements, tie-breakers and season standings from
// tournament results. Everything here is a pure function of its input.
package ranking

import "time"

// StandingRow is one line of a qualifying or elimination table. Elimination
// rows may name a whole team, e.g. "Anna / Ben".
type StandingRow struct {
	Name         string
	Place        int
	Points       int
	Matches      int
	Won          int
	Lost         int
	Draw         int
	GoalsFor     int
	GoalsAgainst int
	Deactivated  bool
	Removed      bool
}

type MatchResult struct {
	Team1  []string
	Team2  []string
	Score1 int
	Score2 int
}

// TournamentResult is one tournament as the aggregator sees it, with player
// names already canonical.
type TournamentResult struct {
	ID                string
	Name              string
	Date              time.Time
	SeasonFinal       bool
	Qualifying        []StandingRow
	Elimination       []StandingRow
	QualifyingMatches []MatchResult
}

// PlayerResult is one player's combined outcome in a single tournament.
type PlayerResult struct {
	Name             string
	FinalPlace       int
	QualifyingPlace  int
	EliminationPlace int
	Knockout         bool
	Points           int
	Matches          int
	Won              int
	Lost             int
	Draw             int
	GoalsFor         int
	GoalsAgainst     int
	Buchholz         float64
	SonnebornBerger  float64
}

type Placement struct {
	TournamentID string
	Tournament   string
	Date         time.Time
	Place        int
	SeasonPoints int
}

type RankedPlayer struct {
	Rank         int
	Name         string
	SeasonPoints int
	Skill        float64
	Points       int
	Tournaments  int
	Matches      int
	Won          int
	Lost         int
	Draw         int
	GoalsFor     int
	GoalsAgainst int
	BestPlace    int
	Placements   []Placement
}

func (p RankedPlayer) GoalDiff() int {
	return p.GoalsFor - p.GoalsAgainst
}
