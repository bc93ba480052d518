package export

import (
	"encoding/json"
	"math"
	"strings"
)

// Scores extracts a non-negative integral result pair.
func (m Match) Scores() (int, int, bool) {
	if len(m.Result) != 2 {
		return 0, 0, false
	}
	a, ok := scoreValue(m.Result[0])
	if !ok {
		return 0, 0, false
	}
	b, ok := scoreValue(m.Result[1])
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

// Eligible holds for matches that count: valid, not skipped, scored and
// with at least one named player per side. Byes and placeholders fail it.
func (m Match) Eligible() bool {
	if m.Valid != nil && !*m.Valid {
		return false
	}
	if m.Skipped {
		return false
	}
	if _, _, ok := m.Scores(); !ok {
		return false
	}
	return len(m.Team1.PlayerNames()) > 0 && len(m.Team2.PlayerNames()) > 0
}

func scoreValue(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int64:
		return int(n), n >= 0
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func isPlayed(state string) bool {
	return strings.EqualFold(strings.TrimSpace(state), "played")
}
