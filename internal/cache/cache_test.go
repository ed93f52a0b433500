package cache

import (
	"errors"
	"testing"
	"time"
)

func TestGetPut(t *testing.T) {
	m := New()
	if _, ok := m.Get("missing"); ok {
		t.Fatal("expected miss for absent key")
	}
	m.Put("k", 42, time.Minute)
	v, ok := m.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(int) != 42 {
		t.Errorf("expected 42, got %v", v)
	}
}

func TestExpiry(t *testing.T) {
	m := New()
	clock := time.Now()
	m.now = func() time.Time { return clock }

	m.Put("k", "v", time.Minute)
	if _, ok := m.Get("k"); !ok {
		t.Fatal("expected hit inside TTL")
	}

	clock = clock.Add(2 * time.Minute)
	if _, ok := m.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestPurge(t *testing.T) {
	m := New()
	m.Put("a", 1, time.Minute)
	m.Put("b", 2, time.Minute)
	m.Purge()
	if _, ok := m.Get("a"); ok {
		t.Error("expected a purged")
	}
	if _, ok := m.Get("b"); ok {
		t.Error("expected b purged")
	}
}

func TestDo(t *testing.T) {
	m := New()
	calls := 0
	fn := func() ([]string, error) {
		calls++
		return []string{"x", "y"}, nil
	}

	v, err := Do(m, "list", time.Minute, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 2 {
		t.Errorf("expected 2 items, got %d", len(v))
	}

	// Second call inside the TTL must come from the cache.
	if _, err := Do(m, "list", time.Minute, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 computation, got %d", calls)
	}
}

func TestDoErrorNotCached(t *testing.T) {
	m := New()
	calls := 0
	fail := errors.New("backend down")
	fn := func() (int, error) {
		calls++
		if calls == 1 {
			return 0, fail
		}
		return 7, nil
	}

	if _, err := Do(m, "k", time.Minute, fn); !errors.Is(err, fail) {
		t.Fatalf("expected backend error, got %v", err)
	}
	v, err := Do(m, "k", time.Minute, fn)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
	if calls != 2 {
		t.Errorf("expected 2 computations, got %d", calls)
	}
}
