// Package seasonfinal recognizes year-end finals and merges the two halves
// they are sometimes exported as.
package seasonfinal

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/kicker-league/internal/domain/export"
)

var namePatterns = []string{
	"season final",
	"season-final",
	"saisonfinale",
	"saison finale",
	"saison-finale",
	"finale de saison",
	"finale della stagione",
	"finale stagionale",
	"seizoensfinale",
	"final de temporada",
	"finał sezonu",
}

// IsSeasonFinal matches any language variant as a case-insensitive
// substring, so "Season Finale 2025" counts too.
func IsSeasonFinal(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range namePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// LockKey serializes merge detection for one calendar year.
func LockKey(year int) string {
	return fmt.Sprintf("season-final:%d", year)
}

type Classification int

const (
	Empty Classification = iota
	QualifyingOnly
	EliminationOnly
	Complete
)

func (c Classification) String() string {
	switch c {
	case QualifyingOnly:
		return "qualifying_only"
	case EliminationOnly:
		return "elimination_only"
	case Complete:
		return "complete"
	default:
		return "empty"
	}
}

func Classify(p export.Payload) Classification {
	q, e := p.HasQualifyingMatches(), p.HasEliminationMatches()
	switch {
	case q && e:
		return Complete
	case q:
		return QualifyingOnly
	case e:
		return EliminationOnly
	default:
		return Empty
	}
}

// Complementary holds when one side is qualifying-only and the other
// elimination-only.
func Complementary(a, b Classification) bool {
	return (a == QualifyingOnly && b == EliminationOnly) || (a == EliminationOnly && b == QualifyingOnly)
}

// Merge combines the stored payload of an existing tournament with an
// incoming one. Each section is taken from existing when it already has
// matches, else from incoming. Name, mode and sport follow whichever side was
// updated last; the identifier and creation time stay with existing.
func Merge(existing, incoming export.Payload) export.Payload {
	out := existing
	if !existing.HasQualifyingMatches() {
		out.Qualifying = incoming.Qualifying
	}
	if !existing.HasEliminationMatches() {
		out.Eliminations = incoming.Eliminations
	}

	latest := existing
	if !incoming.UpdatedAt.Before(existing.UpdatedAt) {
		latest = incoming
	}
	out.UpdatedAt = latest.UpdatedAt
	if latest.Name != "" {
		out.Name = latest.Name
	}
	if latest.Mode != "" {
		out.Mode = latest.Mode
	}
	if latest.Sport != "" {
		out.Sport = latest.Sport
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = incoming.CreatedAt
	}
	out.Version = max(existing.Version, incoming.Version)
	out.Type = export.DetectType(out)
	return out
}
