package export

import "time"

const (
	TypeDoubles = "doubles"
	TypeSingles = "singles"
)

const (
	VersionCanonical = 1
	VersionNested    = 2
)

// Payload is the canonical qualifying/elimination shape. Every export is
// normalized into it before the sync or ranking code looks at it.
type Payload struct {
	ID           string        `json:"_id" validate:"required"`
	Name         string        `json:"name" validate:"required"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Mode         string        `json:"mode,omitempty"`
	Sport        string        `json:"sport,omitempty"`
	Type         string        `json:"type,omitempty"`
	Version      int           `json:"version,omitempty"`
	Qualifying   []Qualifying  `json:"qualifying"`
	Eliminations []Elimination `json:"eliminations"`
}

type Qualifying struct {
	ID        string     `json:"_id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Rounds    []Round    `json:"rounds"`
	Standings []Standing `json:"standings,omitempty"`
}

type Round struct {
	ID      string  `json:"_id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Matches []Match `json:"matches"`
}

type Elimination struct {
	ID        string     `json:"_id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Levels    []Level    `json:"levels"`
	Third     *Level     `json:"third,omitempty"`
	Standings []Standing `json:"standings,omitempty"`
}

type Level struct {
	ID      string  `json:"_id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Matches []Match `json:"matches"`
}

type Team struct {
	ID      string        `json:"_id,omitempty"`
	Name    string        `json:"name,omitempty"`
	Players []Participant `json:"players"`
}

type Participant struct {
	ID              string `json:"_id,omitempty"`
	Name            string `json:"name"`
	Club            string `json:"club,omitempty"`
	License         string `json:"license,omitempty"`
	Country         string `json:"country,omitempty"`
	NationalID      string `json:"nationalId,omitempty"`
	InternationalID string `json:"internationalId,omitempty"`
	Guest           bool   `json:"guest,omitempty"`
	External        bool   `json:"external,omitempty"`
}

type Match struct {
	ID        string `json:"_id"`
	Team1     *Team  `json:"team1"`
	Team2     *Team  `json:"team2"`
	Result    []any  `json:"result"`
	Valid     *bool  `json:"valid,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	TimeStart *int64 `json:"timeStart,omitempty"`
	TimeEnd   *int64 `json:"timeEnd,omitempty"`
}

type Standing struct {
	ID            string        `json:"_id,omitempty"`
	Name          string        `json:"name"`
	Players       []Participant `json:"players,omitempty"`
	Place         int           `json:"place"`
	Points        int           `json:"points"`
	Matches       int           `json:"matches"`
	Won           int           `json:"won"`
	Lost          int           `json:"lost"`
	Draw          int           `json:"draw"`
	GoalsFor      int           `json:"goals"`
	GoalsAgainst  int           `json:"goals_in"`
	GoalDiff      int           `json:"goal_diff"`
	PointsPerGame float64       `json:"points_per_game"`
	BH1           float64       `json:"bh1"`
	BH2           float64       `json:"bh2"`
	SetsWon       int           `json:"sets_won"`
	SetsLost      int           `json:"sets_lost"`
	BallsWon      int           `json:"balls_won"`
	BallsLost     int           `json:"balls_lost"`
	Removed       bool          `json:"removed,omitempty"`
	Deactivated   bool          `json:"deactivated,omitempty"`
}

// HasQualifyingMatches reports whether any qualifying round carries a match.
func (p Payload) HasQualifyingMatches() bool {
	for _, q := range p.Qualifying {
		for _, r := range q.Rounds {
			if len(r.Matches) > 0 {
				return true
			}
		}
	}
	return false
}

// HasEliminationMatches reports whether any bracket level, third place
// included, carries a match.
func (p Payload) HasEliminationMatches() bool {
	for _, e := range p.Eliminations {
		for _, l := range e.Levels {
			if len(l.Matches) > 0 {
				return true
			}
		}
		if e.Third != nil && len(e.Third.Matches) > 0 {
			return true
		}
	}
	return false
}

// MatchRef is a match together with where it sits in the tournament.
type MatchRef struct {
	Match       Match
	SectionID   string
	RoundID     string
	RoundName   string
	Elimination bool
}

// Matches walks qualifying rounds first, then each bracket's levels and
// finally its third-place level.
func (p Payload) Matches() []MatchRef {
	var out []MatchRef
	for _, q := range p.Qualifying {
		for _, r := range q.Rounds {
			for _, m := range r.Matches {
				out = append(out, MatchRef{Match: m, SectionID: q.ID, RoundID: r.ID, RoundName: r.Name})
			}
		}
	}
	for _, e := range p.Eliminations {
		levels := e.Levels
		if e.Third != nil {
			levels = append(levels[:len(levels):len(levels)], *e.Third)
		}
		for _, l := range levels {
			for _, m := range l.Matches {
				out = append(out, MatchRef{Match: m, SectionID: e.ID, RoundID: l.ID, RoundName: l.Name, Elimination: true})
			}
		}
	}
	return out
}

func (t *Team) PlayerNames() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		if p.Name != "" {
			out = append(out, p.Name)
		}
	}
	return out
}
