package resilience

import "sync"

// Group deduplicates concurrent loads for the same key.
type Group[V any] struct {
	mu    sync.Mutex
	calls map[string]*flight[V]
}

type flight[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

// Do runs fn once per key among concurrent callers. shared reports
// whether the result came from another caller's execution.
func (g *Group[V]) Do(key string, fn func() (V, error)) (value V, shared bool, err error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flight[V])
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, true, c.err
	}

	c := &flight[V]{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
		c.wg.Done()
	}()

	c.val, c.err = fn()
	return c.val, false, c.err
}
