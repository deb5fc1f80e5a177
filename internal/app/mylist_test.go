package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/akd/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/akd/internal/adapters/memorykv"
	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

func newTestMyList(t *testing.T) (*MyListService, *memorykv.Store) {
	t.Helper()
	kv := memorykv.New()
	clock := time.UnixMilli(1_700_000_000_000)
	svc := NewMyListService(kv, nil, zerolog.Nop()).WithClock(func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	})
	return svc, kv
}

func anime(link string) domain.SavedAnimeInput {
	return domain.SavedAnimeInput{Link: link, Img: link + ".jpg", Alt: link, Title: "Title " + link}
}

func TestMyList_CorruptStorageReadsAsEmpty(t *testing.T) {
	svc, kv := newTestMyList(t)
	kv.Set(domain.WatchlistKey, []byte(`{not json`))

	got := svc.GetAll(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
	if svc.Count(context.Background()) != 0 {
		t.Fatalf("expected count 0")
	}
}

func TestMyList_UnavailableStorageReadsAsEmpty(t *testing.T) {
	svc, kv := newTestMyList(t)
	kv.Set(domain.WatchlistKey, []byte(`[{"link":"/anime/a","addedAt":1}]`))
	kv.FailReads(true)

	if got := svc.GetAll(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(got))
	}

	noStorage := NewMyListService(nil, nil, zerolog.Nop())
	if got := noStorage.GetAll(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty list without storage")
	}
	if noStorage.Add(context.Background(), anime("/anime/a")) {
		t.Fatalf("Add without storage should fail")
	}
}

func TestMyList_UnreadableStorageBlocksMutations(t *testing.T) {
	svc, kv := newTestMyList(t)
	ctx := context.Background()
	seed := []byte(`[{"link":"/anime/a","img":"a.jpg","alt":"a","title":"A","addedAt":1}]`)
	kv.Set(domain.WatchlistKey, seed)

	calls := 0
	svc.Subscribe(func([]domain.SavedAnime) { calls++ })

	kv.FailReads(true)
	if svc.Add(ctx, anime("/anime/b")) {
		t.Fatalf("add should fail when storage cannot be read")
	}
	if svc.Remove(ctx, "/anime/a") {
		t.Fatalf("remove should fail when storage cannot be read")
	}
	if res := svc.Toggle(ctx, anime("/anime/a")); res.Added || res.IsMember {
		t.Fatalf("toggle on unreadable storage: got %+v", res)
	}
	kv.FailReads(false)

	if kv.Writes() != 0 || calls != 0 {
		t.Fatalf("unexpected writes=%d notifications=%d", kv.Writes(), calls)
	}
	got, err := kv.Get(ctx, domain.WatchlistKey)
	if err != nil || string(got) != string(seed) {
		t.Fatalf("stored value changed: %q, %v", got, err)
	}
	if !svc.IsMember(ctx, "/anime/a") || svc.Count(ctx) != 1 {
		t.Fatalf("entry lost: %+v", svc.GetAll(ctx))
	}
}

func TestMyList_AddRejectsDuplicates(t *testing.T) {
	svc, _ := newTestMyList(t)
	ctx := context.Background()

	if !svc.Add(ctx, anime("/anime/naruto")) {
		t.Fatalf("first add should succeed")
	}
	if svc.Add(ctx, anime("/anime/naruto")) {
		t.Fatalf("second add should return false")
	}
	if n := svc.Count(ctx); n != 1 {
		t.Fatalf("count: want 1, got %d", n)
	}
}

func TestMyList_NewestFirstAndAddedAt(t *testing.T) {
	svc, _ := newTestMyList(t)
	ctx := context.Background()

	svc.Add(ctx, anime("/anime/a"))
	svc.Add(ctx, anime("/anime/b"))

	got := svc.GetAll(ctx)
	if len(got) != 2 || got[0].Link != "/anime/b" || got[1].Link != "/anime/a" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].AddedAt <= got[1].AddedAt {
		t.Fatalf("expected addedAt to increase: %d <= %d", got[0].AddedAt, got[1].AddedAt)
	}
	if got[1].AddedAt != 1_700_000_000_001 {
		t.Fatalf("addedAt: want epoch ms from clock, got %d", got[1].AddedAt)
	}
}

func TestMyList_RemoveMissingReturnsFalse(t *testing.T) {
	svc, kv := newTestMyList(t)
	ctx := context.Background()

	if svc.Remove(ctx, "/anime/none") {
		t.Fatalf("remove of missing link should fail")
	}
	if kv.Writes() != 0 {
		t.Fatalf("failed remove should not write, got %d writes", kv.Writes())
	}

	svc.Add(ctx, anime("/anime/a"))
	svc.Add(ctx, anime("/anime/b"))
	if !svc.Remove(ctx, "/anime/a") {
		t.Fatalf("remove should succeed")
	}
	if svc.IsMember(ctx, "/anime/a") || !svc.IsMember(ctx, "/anime/b") {
		t.Fatalf("unexpected membership after remove: %+v", svc.GetAll(ctx))
	}
}

func TestMyList_ToggleSymmetry(t *testing.T) {
	svc, _ := newTestMyList(t)
	ctx := context.Background()
	svc.Add(ctx, anime("/anime/other"))

	before := svc.Count(ctx)
	first := svc.Toggle(ctx, anime("/anime/x"))
	if !first.Added || !first.IsMember {
		t.Fatalf("first toggle: %+v", first)
	}
	second := svc.Toggle(ctx, anime("/anime/x"))
	if second.Added || second.IsMember {
		t.Fatalf("second toggle: %+v", second)
	}
	if svc.Count(ctx) != before || svc.IsMember(ctx, "/anime/x") {
		t.Fatalf("toggle twice should restore membership")
	}
}

func TestMyList_ClearEmptiesAndPersists(t *testing.T) {
	svc, kv := newTestMyList(t)
	ctx := context.Background()
	svc.Add(ctx, anime("/anime/a"))

	if !svc.Clear(ctx) {
		t.Fatalf("clear should succeed")
	}
	if svc.Count(ctx) != 0 {
		t.Fatalf("expected empty list after clear")
	}
	raw, err := kv.Get(ctx, domain.WatchlistKey)
	if err != nil || string(raw) != "[]" {
		t.Fatalf("persisted value: %q, %v", raw, err)
	}
}

func TestMyList_BroadcastOnlyOnSuccessfulMutation(t *testing.T) {
	svc, _ := newTestMyList(t)
	ctx := context.Background()

	var got [][]domain.SavedAnime
	unsubscribe := svc.Subscribe(func(list []domain.SavedAnime) { got = append(got, list) })

	svc.Add(ctx, anime("/anime/a"))
	svc.Add(ctx, anime("/anime/a"))
	svc.Remove(ctx, "/anime/missing")
	svc.Add(ctx, anime("/anime/b"))
	svc.Remove(ctx, "/anime/a")
	svc.Clear(ctx)

	if len(got) != 4 {
		t.Fatalf("notifications: want 4, got %d", len(got))
	}
	if len(got[0]) != 1 || len(got[1]) != 2 || len(got[2]) != 1 || len(got[3]) != 0 {
		t.Fatalf("unexpected snapshots: %+v", got)
	}
	if got[2][0].Link != "/anime/b" {
		t.Fatalf("snapshot after remove: %+v", got[2])
	}

	unsubscribe()
	unsubscribe()
	svc.Add(ctx, anime("/anime/c"))
	if len(got) != 4 {
		t.Fatalf("unsubscribed listener was called")
	}
}

func TestMyList_FailedWriteIsSilentNoop(t *testing.T) {
	svc, kv := newTestMyList(t)
	ctx := context.Background()
	svc.Add(ctx, anime("/anime/a"))

	calls := 0
	svc.Subscribe(func([]domain.SavedAnime) { calls++ })

	kv.FailWrites(true)
	if svc.Add(ctx, anime("/anime/b")) {
		t.Fatalf("add should fail when storage rejects writes")
	}
	res := svc.Toggle(ctx, anime("/anime/a"))
	if res.Added || !res.IsMember {
		t.Fatalf("toggle with failed write should report unchanged membership, got %+v", res)
	}
	if svc.Clear(ctx) {
		t.Fatalf("clear should fail when storage rejects writes")
	}
	if calls != 0 {
		t.Fatalf("failed operations should not notify, got %d", calls)
	}

	kv.FailWrites(false)
	if !svc.IsMember(ctx, "/anime/a") || svc.Count(ctx) != 1 {
		t.Fatalf("state changed despite failed writes: %+v", svc.GetAll(ctx))
	}
}

func TestMyList_PublishesOnBus(t *testing.T) {
	bus := memorybus.New()
	ch, cancel := bus.Subscribe()
	defer cancel()

	svc := NewMyListService(memorykv.New(), bus, zerolog.Nop())
	svc.Add(context.Background(), anime("/anime/a"))

	select {
	case evt := <-ch:
		if evt.Topic != domain.WatchlistTopic {
			t.Fatalf("topic: want %q, got %q", domain.WatchlistTopic, evt.Topic)
		}
		var list []domain.SavedAnime
		if err := json.Unmarshal(evt.Payload, &list); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if len(list) != 1 || list[0].Link != "/anime/a" {
			t.Fatalf("unexpected payload: %+v", list)
		}
	case <-time.After(250 * time.Millisecond):
		t.Fatalf("no event published")
	}
}

func TestMyList_ConcurrentTogglesAreSerialized(t *testing.T) {
	svc, _ := newTestMyList(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Toggle(ctx, anime("/anime/race"))
		}()
	}
	wg.Wait()

	// Nombre pair de toggles: l'entrée doit être absente, jamais dupliquée.
	if svc.IsMember(ctx, "/anime/race") {
		t.Fatalf("expected entry to be absent after an even number of toggles")
	}
	if svc.Count(ctx) != 0 {
		t.Fatalf("count: want 0, got %d", svc.Count(ctx))
	}
}

func TestMyList_EmptyLinkRejected(t *testing.T) {
	svc, _ := newTestMyList(t)
	if svc.Add(context.Background(), anime("   ")) {
		t.Fatalf("empty link should be rejected")
	}
	if res := svc.Toggle(context.Background(), anime("")); res.Added || res.IsMember {
		t.Fatalf("toggle of empty link: %+v", res)
	}
}
