package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

type AliasRepository struct {
	mu     sync.RWMutex
	items  map[string]player.Alias
	nextID int64
}

func NewAliasRepository(aliases []player.Alias) *AliasRepository {
	r := &AliasRepository{items: make(map[string]player.Alias, len(aliases))}
	for _, a := range aliases {
		r.put(a)
	}
	return r
}

func (r *AliasRepository) ListAliases(_ context.Context) ([]player.Alias, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Alias, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, cloneAlias(a))
	}
	slices.SortFunc(out, func(a, b player.Alias) int { return strings.Compare(a.Alias, b.Alias) })
	return out, nil
}

func (r *AliasRepository) GetAlias(_ context.Context, alias string) (player.Alias, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[strings.TrimSpace(alias)]
	if !ok {
		return player.Alias{}, false, nil
	}
	return cloneAlias(a), true, nil
}

// Put adds or replaces an alias. Operators curate aliases outside the sync path.
func (r *AliasRepository) Put(a player.Alias) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(a)
}

func (r *AliasRepository) put(a player.Alias) {
	a.Alias = strings.TrimSpace(a.Alias)
	a.CanonicalName = strings.TrimSpace(a.CanonicalName)
	if a.Alias == "" || a.CanonicalName == "" {
		return
	}
	if existing, ok := r.items[a.Alias]; ok {
		a.ID = existing.ID
	}
	if a.ID == 0 {
		r.nextID++
		a.ID = r.nextID
	}
	r.nextID = max(r.nextID, a.ID)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.items[a.Alias] = cloneAlias(a)
}

func cloneAlias(a player.Alias) player.Alias {
	if a.PlayerID != nil {
		id := *a.PlayerID
		a.PlayerID = &id
	}
	return a
}
