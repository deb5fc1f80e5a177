package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

func TestCatalogCache_HitsWithinTTL(t *testing.T) {
	fc := newFakeCatalog()
	c := NewCatalogCache(fc, zerolog.Nop(), time.Minute)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := c.Genres(context.Background()); err != nil {
			t.Fatalf("genres: %v", err)
		}
	}
	if got := fc.count("genres"); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Genres(context.Background()); err != nil {
		t.Fatalf("genres: %v", err)
	}
	if got := fc.count("genres"); got != 2 {
		t.Fatalf("expected refetch after ttl, got %d calls", got)
	}
}

func TestCatalogCache_CollapsesConcurrentMisses(t *testing.T) {
	fc := newFakeCatalog()
	fc.gate = make(chan struct{})
	c := NewCatalogCache(fc, zerolog.Nop(), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Genres(context.Background()); err != nil {
				t.Errorf("genres: %v", err)
			}
		}()
	}
	deadline := time.Now().Add(2 * time.Second)
	for fc.inflight.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	// laisse les autres appelants rejoindre le vol en cours
	time.Sleep(20 * time.Millisecond)
	close(fc.gate)
	wg.Wait()

	if got := fc.count("genres"); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}
}

func TestCatalogCache_FollowerSurvivesLeaderCancel(t *testing.T) {
	fc := newFakeCatalog()
	fc.gate = make(chan struct{})
	c := NewCatalogCache(fc, zerolog.Nop(), time.Minute)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.Genres(leaderCtx)
		leaderErr <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for fc.inflight.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case err := <-leaderErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("leader: want context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("leader did not return after cancel")
	}
	if fc.inflight.Load() != 1 {
		t.Fatalf("shared fetch should still be running")
	}

	followerErr := make(chan error, 1)
	go func() {
		g, err := c.Genres(context.Background())
		if err == nil && len(g) != 1 {
			err = errors.New("unexpected genres")
		}
		followerErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(fc.gate)

	select {
	case err := <-followerErr:
		if err != nil {
			t.Fatalf("follower: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("follower did not return")
	}
	if got := fc.count("genres"); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}
}

func TestCatalogCache_ErrorsAreNotCached(t *testing.T) {
	fc := newFakeCatalog()
	fc.genresErr = errors.New("boom")
	c := NewCatalogCache(fc, zerolog.Nop(), time.Minute)

	if _, err := c.Genres(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	fc.genresErr = nil
	g, err := c.Genres(context.Background())
	if err != nil || len(g) != 1 {
		t.Fatalf("expected recovery, got %v %v", g, err)
	}
	if got := fc.count("genres"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestCatalogCache_WarmFillsEveryDay(t *testing.T) {
	fc := newFakeCatalog()
	c := NewCatalogCache(fc, zerolog.Nop(), time.Minute)

	if err := c.Warm(context.Background()); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if got, want := c.Len(), 2+len(domain.Weekdays); got != want {
		t.Fatalf("expected %d entries, got %d", want, got)
	}
	s, err := c.Schedule(context.Background(), "monday")
	if err != nil || s.Day != "monday" {
		t.Fatalf("schedule: %+v %v", s, err)
	}
	if got := fc.count("schedule:monday"); got != 1 {
		t.Fatalf("schedule should be served from cache, got %d calls", got)
	}
}

func TestCatalogCache_WarmReportsFailure(t *testing.T) {
	fc := newFakeCatalog()
	fc.genresErr = errors.New("down")
	c := NewCatalogCache(fc, zerolog.Nop(), time.Minute)

	if err := c.Warm(context.Background()); err == nil {
		t.Fatalf("expected warm error")
	}
}
