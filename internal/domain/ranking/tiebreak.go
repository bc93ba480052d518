package ranking

type TieBreak struct {
	Buchholz        float64
	SonnebornBerger float64
}

// TieBreakers computes Buchholz and Sonneborn-Berger from individual
// qualifying matches. Each distinct opponent counts once in Buchholz; the
// result score against an opponent accumulates over repeated meetings.
func TieBreakers(matches []MatchResult, points map[string]int) map[string]TieBreak {
	results := make(map[string]map[string]float64)
	record := func(player, opponent string, score float64) {
		if results[player] == nil {
			results[player] = make(map[string]float64)
		}
		results[player][opponent] += score
	}

	for _, m := range matches {
		score1 := 0.5
		switch {
		case m.Score1 > m.Score2:
			score1 = 1
		case m.Score1 < m.Score2:
			score1 = 0
		}
		for _, p := range m.Team1 {
			for _, o := range m.Team2 {
				if p == o {
					continue
				}
				record(p, o, score1)
				record(o, p, 1-score1)
			}
		}
	}

	out := make(map[string]TieBreak, len(results))
	for player, opponents := range results {
		var tb TieBreak
		for opponent, score := range opponents {
			pts := float64(points[opponent])
			tb.Buchholz += pts
			tb.SonnebornBerger += pts * score
		}
		out[player] = tb
	}
	return out
}
