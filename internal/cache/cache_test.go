package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetAfterPut(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, 10)
	s.Put("k", "v")

	got, ok := s.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "v" {
		t.Fatalf("unexpected value: %v", got)
	}

	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestZeroTTLExpiresImmediately(t *testing.T) {
	t.Parallel()

	s := New(0, 10)
	s.Put("k", "v")
	if _, ok := s.Get("k"); ok {
		t.Fatal("expected immediate expiry with TTL <= 0")
	}
}

func TestExpiredEntryRemoved(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, 10)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Put("k", "v")

	s.now = func() time.Time { return base.Add(61 * time.Second) }
	if _, ok := s.Get("k"); ok {
		t.Fatal("expected expiry after TTL")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry not reclaimed, len=%d", s.Len())
	}
}

func TestFreshEntrySurvives(t *testing.T) {
	t.Parallel()

	s := New(time.Minute, 10)
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Put("k", "v")

	s.now = func() time.Time { return base.Add(59 * time.Second) }
	if _, ok := s.Get("k"); !ok {
		t.Fatal("entry expired before TTL")
	}
}

func TestSizeTriggeredEviction(t *testing.T) {
	t.Parallel()

	s := New(time.Hour, 20)
	base := time.Now()

	for i := 0; i < 20; i++ {
		tick := base.Add(time.Duration(i) * time.Second)
		s.now = func() time.Time { return tick }
		s.Put(fmt.Sprintf("k%02d", i), i)
	}
	if s.Len() != 20 {
		t.Fatalf("expected full store, len=%d", s.Len())
	}

	tick := base.Add(time.Minute)
	s.now = func() time.Time { return tick }
	s.Put("overflow", "v")

	if s.Len() > 20 {
		t.Fatalf("store exceeded max size: %d", s.Len())
	}

	// Oldest tenth (2 of 20) evicted, newest insert present.
	if _, ok := s.Get("k00"); ok {
		t.Fatal("oldest entry survived eviction")
	}
	if _, ok := s.Get("k01"); ok {
		t.Fatal("second-oldest entry survived eviction")
	}
	if _, ok := s.Get("k02"); !ok {
		t.Fatal("entry outside eviction window was removed")
	}
	if _, ok := s.Get("overflow"); !ok {
		t.Fatal("inserted entry missing after eviction")
	}
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	t.Parallel()

	s := New(time.Hour, 2)
	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("a", 3)

	if s.Len() != 2 {
		t.Fatalf("overwrite changed size: %d", s.Len())
	}
	got, ok := s.Get("a")
	if !ok || got != 3 {
		t.Fatalf("unexpected value after overwrite: %v %v", got, ok)
	}
	if _, ok := s.Get("b"); !ok {
		t.Fatal("sibling entry evicted on overwrite")
	}
}
