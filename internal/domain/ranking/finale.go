package ranking

import "sort"

const (
	FinaleMinAppearances = 10
	FinaleSlots          = 20
	FinaleSuccessorSlots = 5
)

type FinaleStatus string

const (
	FinaleQualified          FinaleStatus = "qualified"
	FinalePotentialSuccessor FinaleStatus = "potential_successor"
	FinaleNotQualified       FinaleStatus = "not_qualified"
)

type Qualification struct {
	Name            string
	Rank            int
	Status          FinaleStatus
	SurelyQualified bool
}

// FinaleQualification ranks eligible players (enough appearances) in the
// given season order. The top 20 qualify and the next 5 are successors.
// A qualified player is surely qualified when, after every current top-20
// player stays put and everyone else gains MaxTournamentPoints, fewer than
// 20 others are level with or ahead of them. Players short of the
// appearance minimum count as overtakers too: one more tournament can make
// them eligible.
func FinaleQualification(ranked []RankedPlayer) map[string]Qualification {
	out := make(map[string]Qualification, len(ranked))
	eligible := make([]RankedPlayer, 0, len(ranked))
	for _, p := range ranked {
		if p.Tournaments >= FinaleMinAppearances {
			eligible = append(eligible, p)
			continue
		}
		out[p.Name] = Qualification{Name: p.Name, Status: FinaleNotQualified}
	}

	top := make(map[string]bool, FinaleSlots)
	for i, p := range eligible {
		if i < FinaleSlots {
			top[p.Name] = true
		}
	}
	simulated := make(map[string]int, len(ranked))
	for _, p := range ranked {
		simulated[p.Name] = p.SeasonPoints
		if !top[p.Name] {
			simulated[p.Name] += MaxTournamentPoints
		}
	}

	for i, p := range eligible {
		q := Qualification{Name: p.Name, Rank: i + 1, Status: FinaleNotQualified}
		switch {
		case q.Rank <= FinaleSlots:
			q.Status = FinaleQualified
		case q.Rank <= FinaleSlots+FinaleSuccessorSlots:
			q.Status = FinalePotentialSuccessor
		}
		if q.Status == FinaleQualified {
			ahead := 0
			for name, pts := range simulated {
				if name != p.Name && pts >= p.SeasonPoints {
					ahead++
				}
			}
			q.SurelyQualified = ahead < FinaleSlots
		}
		out[p.Name] = q
	}
	return out
}

// SurelyQualified lists the surely qualified players in rank order.
func SurelyQualified(q map[string]Qualification) []string {
	var out []Qualification
	for _, v := range q {
		if v.SurelyQualified {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	names := make([]string, 0, len(out))
	for _, v := range out {
		names = append(names, v.Name)
	}
	return names
}
