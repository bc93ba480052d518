package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_Do(t *testing.T) {
	var g Group[string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			got, _, err := g.Do("aliases", func() (string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil || got != "ok" {
				t.Errorf("unexpected result %q err=%v", got, err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected loader to run once, got %d", got)
	}
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	var active, peak int32

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("tournament-1")
			defer unlock()
			n := atomic.AddInt32(&active, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	if peak != 1 {
		t.Fatalf("expected one holder at a time, peak=%d", peak)
	}
	if n := m.size(); n != 0 {
		t.Fatalf("expected idle keys to be released, got %d", n)
	}
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	m := NewKeyedMutex()
	unlockA := m.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := m.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("lock on unrelated key blocked")
	}
}

func TestKeyedMutex_LockAllIsOrderIndependent(t *testing.T) {
	m := NewKeyedMutex()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.LockAll("x", "season-final:2025")()
		}()
		go func() {
			defer wg.Done()
			m.LockAll("season-final:2025", "x", "x")()
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatalf("LockAll deadlocked")
	}
}

func TestBreaker_Transitions(t *testing.T) {
	b := NewBreaker(BreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: 5 * time.Second, HalfOpenProbes: 1})
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	errDown := errors.New("connection refused")
	failing := func() error { return errDown }

	_ = b.Execute(failing, nil)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}
	_ = b.Execute(failing, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}
	if err := b.Execute(func() error { return nil }, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Execute(func() error { return nil }, nil); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestBreaker_IgnoresBusinessErrors(t *testing.T) {
	b := NewBreaker(BreakerConfig{Enabled: true, FailureThreshold: 1})
	errInvalid := errors.New("invalid payload")

	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return errInvalid }, func(err error) bool { return !errors.Is(err, errInvalid) })
		if !errors.Is(err, errInvalid) {
			t.Fatalf("expected business error to pass through, got %v", err)
		}
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("business errors must not trip the breaker, got %s", state)
	}
}
