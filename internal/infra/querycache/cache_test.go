package querycache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchCachesUntilInvalidated(t *testing.T) {
	c := New()
	key := NewKey("albums")
	var calls int32

	fn := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "v1", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Fetch(context.Background(), key, fn)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if v != "v1" {
			t.Fatalf("expected v1, got %v", v)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 fetch, got %d", got)
	}

	c.Invalidate(key)
	if _, err := c.Fetch(context.Background(), key, fn); err != nil {
		t.Fatalf("Fetch after invalidate: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected refetch after invalidate, got %d calls", got)
	}
}

func TestFetchStaleWhileError(t *testing.T) {
	c := New()
	key := NewKey("search", "q=dog")

	if _, err := c.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
		return "first", nil
	}); err != nil {
		t.Fatal(err)
	}

	c.Invalidate(key)

	boom := errors.New("server down")
	v, err := c.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if v != "first" {
		t.Errorf("previous result should survive a failed refresh, got %v", v)
	}

	// A later successful refresh replaces it.
	v, err = c.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
		return "second", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != "second" {
		t.Errorf("expected second, got %v", v)
	}
}

func TestFetchErrorWithoutPreviousValue(t *testing.T) {
	c := New()
	boom := errors.New("nope")

	v, err := c.Fetch(context.Background(), NewKey("photo", "1"), func(ctx context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected error, got %v", err)
	}
	if v != nil {
		t.Errorf("expected nil value, got %v", v)
	}
	if c.Len() != 0 {
		t.Error("failed first fetch must not create an entry")
	}
}

func TestCanceledFetchNeverWrites(t *testing.T) {
	c := New()
	key := NewKey("photo", "9")
	c.Set(key, "optimistic")

	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		// Simulates a slow detail refetch racing an optimistic write.
		c.Invalidate(key)
		c.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return "stale-server-value", nil
		})
	}()

	<-started
	c.CancelInFlight(key)
	c.Set(key, "newer")
	<-done

	v, ok := c.Get(key)
	if !ok || v != "newer" {
		t.Errorf("late canceled fetch must not clobber the cache, got %v", v)
	}
}

func TestNewFetchSupersedesInFlight(t *testing.T) {
	c := New()
	key := NewKey("photos", "2")

	firstStarted := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		_, err := c.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
			close(firstStarted)
			<-ctx.Done()
			return "old", nil
		})
		firstDone <- err
	}()

	<-firstStarted
	v, err := c.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
		return "new", nil
	})
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if v != "new" {
		t.Errorf("expected new, got %v", v)
	}

	if err := <-firstDone; !errors.Is(err, context.Canceled) {
		t.Errorf("first fetch should report cancellation, got %v", err)
	}
	if v, _ := c.Get(key); v != "new" {
		t.Errorf("superseded fetch must not overwrite, got %v", v)
	}
}

func TestRemoveDropsEntry(t *testing.T) {
	c := New()
	key := NewKey("album", "5")
	c.Set(key, "a")
	c.Remove(key)

	if _, ok := c.Get(key); ok {
		t.Error("entry should be gone after Remove")
	}
}

func TestEntriesOfKind(t *testing.T) {
	c := New()
	c.Set(NewKey("photos", "1"), []string{"a"})
	c.Set(NewKey("photos", "2"), []string{"b"})
	c.Set(NewKey("photo", "7"), "detail")

	entries := c.EntriesOfKind("photos")
	if len(entries) != 2 {
		t.Fatalf("expected 2 photos entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Key.Kind != "photos" {
			t.Errorf("unexpected kind %q", e.Key.Kind)
		}
	}
}

func TestStaleTimeAgesEntriesOut(t *testing.T) {
	c := New(WithStaleTime(10 * time.Millisecond))
	key := NewKey("comments", "3")
	var calls int32

	fn := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "c", nil
	}

	if _, err := c.Fetch(context.Background(), key, fn); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Fetch(context.Background(), key, fn); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected aged-out entry to refetch, got %d calls", got)
	}
}
