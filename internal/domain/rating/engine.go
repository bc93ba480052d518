package rating

import (
	"sort"
	"time"

	"github.com/riskibarqy/kicker-league/internal/domain/alias"
)

// MatchRecord is one played match as read from storage. Names are raw;
// the engine resolves aliases itself.
type MatchRecord struct {
	ExternalID string
	Tournament string
	Timestamp  time.Time
	Team1      []string
	Team2      []string
	Score1     int
	Score2     int
}

func (m MatchRecord) outcome() Outcome {
	switch {
	case m.Score1 > m.Score2:
		return Team1Wins
	case m.Score1 < m.Score2:
		return Team2Wins
	default:
		return Draw
	}
}

// MatchContext describes the match a snapshot came from.
type MatchContext struct {
	MatchExternalID string
	Tournament      string
	Teammates       []string
	Opponents       []string
	Won             bool
	Draw            bool
	Skipped         bool
}

// Snapshot is a player's rating after a match. Index 0 in a player's
// history is the prior and carries no context.
type Snapshot struct {
	MatchIndex int
	Timestamp  time.Time
	Mu         float64
	Sigma      float64
	Skill      float64
	Context    *MatchContext
}

type PlayerRating struct {
	Mu      float64
	Sigma   float64
	Skill   float64
	Matches int
}

// Warning records a match whose update failed. Ratings for its players are
// carried over unchanged.
type Warning struct {
	MatchIndex int
	ExternalID string
	Err        error
}

func (w Warning) Error() string {
	return "match " + w.ExternalID + ": " + w.Err.Error()
}

func (w Warning) Unwrap() error {
	return w.Err
}

type Result struct {
	Ratings  map[string]PlayerRating
	History  map[string][]Snapshot
	Warnings []Warning
	Matches  int
}

// Engine recomputes every rating from scratch on each call.
type Engine struct {
	model Model
}

func NewEngine(cfg Config) *Engine {
	return &Engine{model: NewModel(cfg)}
}

// Compute runs one sequential pass over matches in chronological order.
// Matches with equal timestamps keep their input order. A match where a
// side resolves to no players, or a player appears on both sides, is
// dropped before indexing.
func (e *Engine) Compute(matches []MatchRecord, resolver *alias.Resolver) Result {
	prepared := make([]MatchRecord, 0, len(matches))
	for _, m := range matches {
		m.Team1 = resolver.ResolveAll(m.Team1)
		m.Team2 = resolver.ResolveAll(m.Team2)
		if len(m.Team1) == 0 || len(m.Team2) == 0 || overlaps(m.Team1, m.Team2) {
			continue
		}
		prepared = append(prepared, m)
	}
	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].Timestamp.Before(prepared[j].Timestamp)
	})

	current := make(map[string]Rating)
	res := Result{
		Ratings: make(map[string]PlayerRating),
		History: make(map[string][]Snapshot),
		Matches: len(prepared),
	}

	ratingsOf := func(names []string, at time.Time) []Rating {
		out := make([]Rating, len(names))
		for i, name := range names {
			r, ok := current[name]
			if !ok {
				r = e.model.Prior()
				current[name] = r
				res.History[name] = []Snapshot{snapshot(0, at, r, nil)}
			}
			out[i] = r
		}
		return out
	}

	for i, m := range prepared {
		index := i + 1
		before1 := ratingsOf(m.Team1, m.Timestamp)
		before2 := ratingsOf(m.Team2, m.Timestamp)
		outcome := m.outcome()

		after1, after2, err := e.model.Rate(before1, before2, outcome)
		skipped := err != nil
		if skipped {
			res.Warnings = append(res.Warnings, Warning{MatchIndex: index, ExternalID: m.ExternalID, Err: err})
			after1, after2 = before1, before2
		}

		record := func(names, opponents []string, ratings []Rating, won bool) {
			for j, name := range names {
				current[name] = ratings[j]
				ctx := &MatchContext{
					MatchExternalID: m.ExternalID,
					Tournament:      m.Tournament,
					Teammates:       without(names, name),
					Opponents:       opponents,
					Won:             won,
					Draw:            outcome == Draw,
					Skipped:         skipped,
				}
				res.History[name] = append(res.History[name], snapshot(index, m.Timestamp, ratings[j], ctx))
			}
		}
		record(m.Team1, m.Team2, after1, outcome == Team1Wins)
		record(m.Team2, m.Team1, after2, outcome == Team2Wins)
	}

	for name, r := range current {
		res.Ratings[name] = PlayerRating{
			Mu:      r.Mu,
			Sigma:   r.Sigma,
			Skill:   r.Conservative(),
			Matches: len(res.History[name]) - 1,
		}
	}
	return res
}

// Skills returns the conservative skill per player.
func (r Result) Skills() map[string]float64 {
	out := make(map[string]float64, len(r.Ratings))
	for name, pr := range r.Ratings {
		out[name] = pr.Skill
	}
	return out
}

func snapshot(index int, at time.Time, r Rating, ctx *MatchContext) Snapshot {
	return Snapshot{
		MatchIndex: index,
		Timestamp:  at,
		Mu:         r.Mu,
		Sigma:      r.Sigma,
		Skill:      r.Conservative(),
		Context:    ctx,
	}
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func without(names []string, name string) []string {
	out := make([]string, 0, len(names)-1)
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
