// Package alias resolves observed player spellings to canonical names.
package alias

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

// Resolver is an immutable snapshot of the alias table. The zero value and
// a nil *Resolver both resolve every name to itself.
type Resolver struct {
	exact  map[string]string
	folded map[string]string
}

// NewResolver indexes aliases by literal spelling and by case-folded
// spelling. On folded collisions the first alias in input order wins.
func NewResolver(aliases []player.Alias) *Resolver {
	r := &Resolver{
		exact:  make(map[string]string, len(aliases)),
		folded: make(map[string]string, len(aliases)),
	}
	for _, a := range aliases {
		from := strings.TrimSpace(a.Alias)
		to := strings.TrimSpace(a.CanonicalName)
		if from == "" || to == "" {
			continue
		}
		r.exact[from] = to
		key := fold(from)
		if _, taken := r.folded[key]; !taken {
			r.folded[key] = to
		}
	}
	return r
}

// Resolve returns the canonical spelling for name, or the trimmed name
// itself when no alias matches.
func (r *Resolver) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if r == nil || name == "" {
		return name
	}
	if canonical, ok := r.exact[name]; ok {
		return canonical
	}
	if canonical, ok := r.folded[fold(name)]; ok {
		return canonical
	}
	return name
}

// ResolveAll resolves names in order, dropping blanks and duplicates that
// appear once two spellings collapse onto the same player.
func (r *Resolver) ResolveAll(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		canonical := r.Resolve(n)
		if canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.exact)
}

// A Caser is stateful, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
