package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
	basecache "github.com/riskibarqy/kicker-league/internal/platform/cache"
)

const (
	aliasListKey   = "alias:list"
	aliasKeyPrefix = "alias:name:"
)

// AliasRepository caches alias lookups in front of the curated table.
// Sync runs load the full list once per run, so a short TTL is enough.
type AliasRepository struct {
	next   player.AliasRepository
	lists  *basecache.Store[[]player.Alias]
	lookup *basecache.Store[cachedAlias]
}

func NewAliasRepository(next player.AliasRepository, ttl time.Duration) *AliasRepository {
	return &AliasRepository{
		next:   next,
		lists:  basecache.NewStore[[]player.Alias](ttl),
		lookup: basecache.NewStore[cachedAlias](ttl),
	}
}

func (r *AliasRepository) ListAliases(ctx context.Context) ([]player.Alias, error) {
	items, err := r.lists.GetOrLoad(ctx, aliasListKey, func(ctx context.Context) ([]player.Alias, error) {
		items, err := r.next.ListAliases(ctx)
		if err != nil {
			return nil, err
		}
		return append([]player.Alias(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Alias(nil), items...), nil
}

func (r *AliasRepository) GetAlias(ctx context.Context, alias string) (player.Alias, bool, error) {
	alias = strings.TrimSpace(alias)
	cached, err := r.lookup.GetOrLoad(ctx, aliasKeyPrefix+alias, func(ctx context.Context) (cachedAlias, error) {
		item, exists, err := r.next.GetAlias(ctx, alias)
		if err != nil {
			return cachedAlias{}, err
		}
		return cachedAlias{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Alias{}, false, err
	}
	return cached.value, cached.exists, nil
}

// Invalidate drops every cached alias; call it after operators edit the table.
func (r *AliasRepository) Invalidate(ctx context.Context) {
	r.lists.Delete(ctx, aliasListKey)
	r.lookup.DeletePrefix(ctx, aliasKeyPrefix)
}

type cachedAlias struct {
	value  player.Alias
	exists bool
}
