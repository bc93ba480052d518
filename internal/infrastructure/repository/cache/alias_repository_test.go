package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

type countingAliases struct {
	lists   atomic.Int32
	lookups atomic.Int32
	err     error
	items   []player.Alias
}

func (c *countingAliases) ListAliases(context.Context) ([]player.Alias, error) {
	c.lists.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.items, nil
}

func (c *countingAliases) GetAlias(_ context.Context, alias string) (player.Alias, bool, error) {
	c.lookups.Add(1)
	for _, a := range c.items {
		if a.Alias == alias {
			return a, true, nil
		}
	}
	return player.Alias{}, false, nil
}

func TestAliasRepositoryCachesList(t *testing.T) {
	t.Parallel()

	next := &countingAliases{items: []player.Alias{{ID: 1, Alias: "Anni", CanonicalName: "Anna"}}}
	repo := NewAliasRepository(next, time.Minute)

	for i := 0; i < 3; i++ {
		items, err := repo.ListAliases(context.Background())
		if err != nil {
			t.Fatalf("list aliases: %v", err)
		}
		if len(items) != 1 || items[0].CanonicalName != "Anna" {
			t.Fatalf("unexpected aliases: %+v", items)
		}
		items[0].CanonicalName = "mutated"
	}
	if got := next.lists.Load(); got != 1 {
		t.Fatalf("expected one upstream list call, got %d", got)
	}

	repo.Invalidate(context.Background())
	if _, err := repo.ListAliases(context.Background()); err != nil {
		t.Fatalf("list aliases after invalidate: %v", err)
	}
	if got := next.lists.Load(); got != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", got)
	}
}

func TestAliasRepositoryCachesMisses(t *testing.T) {
	t.Parallel()

	next := &countingAliases{items: []player.Alias{{ID: 1, Alias: "Anni", CanonicalName: "Anna"}}}
	repo := NewAliasRepository(next, time.Minute)

	for i := 0; i < 2; i++ {
		if _, ok, err := repo.GetAlias(context.Background(), " Nobody "); err != nil || ok {
			t.Fatalf("expected cached miss, got ok=%v err=%v", ok, err)
		}
	}
	a, ok, err := repo.GetAlias(context.Background(), "Anni")
	if err != nil || !ok || a.CanonicalName != "Anna" {
		t.Fatalf("unexpected alias: %+v ok=%v err=%v", a, ok, err)
	}
	if got := next.lookups.Load(); got != 2 {
		t.Fatalf("expected two upstream lookups, got %d", got)
	}
}

func TestAliasRepositoryDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	next := &countingAliases{err: errors.New("db down")}
	repo := NewAliasRepository(next, time.Minute)

	if _, err := repo.ListAliases(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	next.err = nil
	if _, err := repo.ListAliases(context.Background()); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if got := next.lists.Load(); got != 2 {
		t.Fatalf("expected two upstream calls, got %d", got)
	}
}
