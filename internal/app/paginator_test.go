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

// pagesFetcher sert des pages prédéfinies par query et compte les appels.
type pagesFetcher struct {
	mu    sync.Mutex
	pages map[string][]domain.Page[string]
	fail  map[int]error
	calls []int
}

func (f *pagesFetcher) fetch(ctx context.Context, query string, page int) (domain.Page[string], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	if err := f.fail[page]; err != nil {
		return domain.Page[string]{}, err
	}
	pages := f.pages[query]
	if page < 1 || page > len(pages) {
		return domain.Page[string]{}, errors.New("no such page")
	}
	return pages[page-1], nil
}

func (f *pagesFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestPaginator_MergesPagesUntilExhausted(t *testing.T) {
	f := &pagesFetcher{pages: map[string][]domain.Page[string]{
		"popular": {
			{Items: []string{"a", "b"}, CurrentPage: 1, TotalPages: 2},
			{Items: []string{"c"}, CurrentPage: 2, TotalPages: 2},
		},
	}}
	p := NewPaginator("popular", f.fetch, zerolog.Nop())
	ctx := context.Background()

	if s := p.Snapshot(); s.State != StateIdle || s.NextPage != 1 {
		t.Fatalf("initial snapshot: %+v", s)
	}

	out, err := p.Start(ctx)
	if err != nil || out != OutcomeFetched {
		t.Fatalf("Start: %v %v", out, err)
	}
	if s := p.Snapshot(); s.State != StateHasMore || s.NextPage != 2 {
		t.Fatalf("after page 1: %+v", s)
	}

	if out, err := p.LoadMore(ctx); err != nil || out != OutcomeFetched {
		t.Fatalf("LoadMore: %v %v", out, err)
	}
	s := p.Snapshot()
	if s.State != StateExhausted {
		t.Fatalf("state: want exhausted, got %s", s.State)
	}
	if len(s.Items) != 3 || s.Items[0] != "a" || s.Items[1] != "b" || s.Items[2] != "c" {
		t.Fatalf("items: %v", s.Items)
	}

	if out, _ := p.LoadMore(ctx); out != OutcomeExhausted {
		t.Fatalf("LoadMore after exhaustion: want exhausted, got %s", out)
	}
	if f.callCount() != 2 {
		t.Fatalf("fetch calls: want 2, got %d", f.callCount())
	}
	if out, _ := p.Start(ctx); out != OutcomeSuppressed {
		t.Fatalf("Start after load should be a no-op, got %s", out)
	}
}

func TestPaginator_ErrorKeepsItemsAndRetriesSameCursor(t *testing.T) {
	boom := errors.New("boom")
	f := &pagesFetcher{
		pages: map[string][]domain.Page[string]{
			"ongoing": {
				{Items: []string{"a"}, CurrentPage: 1, TotalPages: 3},
				{Items: []string{"b"}, CurrentPage: 2, TotalPages: 3},
				{Items: []string{"c"}, CurrentPage: 3, TotalPages: 3},
			},
		},
		fail: map[int]error{2: boom},
	}
	p := NewPaginator("ongoing", f.fetch, zerolog.Nop())
	ctx := context.Background()

	p.Start(ctx)
	out, err := p.LoadMore(ctx)
	if !errors.Is(err, boom) || out != OutcomeFailed {
		t.Fatalf("LoadMore: want failed/boom, got %s/%v", out, err)
	}
	s := p.Snapshot()
	if s.State != StateError || !errors.Is(s.Err, boom) || s.Error() != "boom" {
		t.Fatalf("snapshot after failure: %+v", s)
	}
	if len(s.Items) != 1 || s.NextPage != 2 {
		t.Fatalf("failure should keep items and cursor: %+v", s)
	}

	f.mu.Lock()
	delete(f.fail, 2)
	f.mu.Unlock()

	if out, err := p.Retry(ctx); err != nil || out != OutcomeFetched {
		t.Fatalf("Retry: %s %v", out, err)
	}
	p.LoadMore(ctx)

	s = p.Snapshot()
	if len(s.Items) != 3 || s.State != StateExhausted || s.Err != nil {
		t.Fatalf("after retry: %+v", s)
	}
	want := []int{1, 2, 2, 3}
	if len(f.calls) != len(want) {
		t.Fatalf("calls: want %v, got %v", want, f.calls)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Fatalf("calls: want %v, got %v", want, f.calls)
		}
	}
}

func TestPaginator_SuppressesConcurrentFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls int
	var mu sync.Mutex
	fetch := func(ctx context.Context, query string, page int) (domain.Page[string], error) {
		mu.Lock()
		calls++
		mu.Unlock()
		started <- struct{}{}
		<-release
		return domain.Page[string]{Items: []string{"x"}, CurrentPage: page, TotalPages: 5}, nil
	}
	p := NewPaginator("genre:action", fetch, zerolog.Nop())
	ctx := context.Background()

	done := make(chan LoadOutcome, 1)
	go func() {
		out, _ := p.LoadMore(ctx)
		done <- out
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatalf("first fetch did not start")
	}
	if s := p.Snapshot(); s.State != StateLoadingFirst {
		t.Fatalf("state while loading: %s", s.State)
	}

	if out, _ := p.LoadMore(ctx); out != OutcomeSuppressed {
		t.Fatalf("second LoadMore: want suppressed, got %s", out)
	}

	close(release)
	if out := <-done; out != OutcomeFetched {
		t.Fatalf("first LoadMore: %s", out)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("fetch calls: want 1, got %d", calls)
	}
}

func TestPaginator_DropsStaleResponseAfterQueryChange(t *testing.T) {
	narutoPage2 := make(chan struct{})
	inFlight := make(chan struct{}, 1)
	fetch := func(ctx context.Context, query string, page int) (domain.Page[string], error) {
		if query == "naruto" && page == 2 {
			inFlight <- struct{}{}
			<-narutoPage2
			return domain.Page[string]{Items: []string{"naruto-2"}, CurrentPage: 2, TotalPages: 3}, nil
		}
		return domain.Page[string]{Items: []string{query + "-" + string(rune('0'+page))}, CurrentPage: page, TotalPages: 3}, nil
	}
	p := NewPaginator("naruto", fetch, zerolog.Nop())
	ctx := context.Background()

	p.Start(ctx)
	done := make(chan LoadOutcome, 1)
	go func() {
		out, _ := p.LoadMore(ctx)
		done <- out
	}()
	<-inFlight

	if !p.SetQuery("one-piece") {
		t.Fatalf("SetQuery should report a change")
	}
	if out, err := p.Start(ctx); err != nil || out != OutcomeFetched {
		t.Fatalf("Start(one-piece): %s %v", out, err)
	}

	close(narutoPage2)
	if out := <-done; out != OutcomeStale {
		t.Fatalf("naruto page 2: want stale, got %s", out)
	}

	s := p.Snapshot()
	if s.Query != "one-piece" || len(s.Items) != 1 || s.Items[0] != "one-piece-1" {
		t.Fatalf("one-piece collection contaminated: %+v", s)
	}
	if s.State != StateHasMore || s.NextPage != 2 {
		t.Fatalf("one-piece state: %+v", s)
	}
}

func TestPaginator_SetQueryResets(t *testing.T) {
	f := &pagesFetcher{pages: map[string][]domain.Page[string]{
		"a": {{Items: []string{"a1"}, CurrentPage: 1, TotalPages: 1}},
		"b": {{Items: []string{"b1"}, CurrentPage: 1, TotalPages: 2}},
	}}
	p := NewPaginator("a", f.fetch, zerolog.Nop())
	ctx := context.Background()
	p.Start(ctx)

	if p.SetQuery("a") {
		t.Fatalf("same query should not reset")
	}
	if p.Snapshot().State != StateExhausted {
		t.Fatalf("same query should keep state")
	}

	var seen []PaginationState
	p.OnChange(func(s PageSnapshot[string]) { seen = append(seen, s.State) })

	p.SetQuery("b")
	if s := p.Snapshot(); s.State != StateIdle || len(s.Items) != 0 || s.NextPage != 1 {
		t.Fatalf("after SetQuery: %+v", s)
	}
	p.Start(ctx)
	if s := p.Snapshot(); len(s.Items) != 1 || s.Items[0] != "b1" {
		t.Fatalf("b items: %v", s.Items)
	}

	want := []PaginationState{StateIdle, StateLoadingFirst, StateHasMore}
	if len(seen) != len(want) {
		t.Fatalf("transitions: want %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions: want %v, got %v", want, seen)
		}
	}
}

func TestPaginator_NonAdvancingCursorStops(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, query string, page int) (domain.Page[string], error) {
		calls++
		return domain.Page[string]{Items: []string{"same"}, CurrentPage: 1, TotalPages: 9}, nil
	}
	p := NewPaginator("broken", fetch, zerolog.Nop())
	ctx := context.Background()

	p.Start(ctx)
	p.LoadMore(ctx)
	if out, _ := p.LoadMore(ctx); out != OutcomeExhausted {
		t.Fatalf("want exhausted, got %s", out)
	}
	if s := p.Snapshot(); len(s.Items) != 2 || s.CurrentPage != 1 || calls != 2 {
		t.Fatalf("items=%v page=%d calls=%d", s.Items, s.CurrentPage, calls)
	}
}

func TestPaginator_MissingPageNumberKeepsItems(t *testing.T) {
	fetch := func(ctx context.Context, query string, page int) (domain.Page[string], error) {
		return domain.Page[string]{Items: []string{"a", "b"}}, nil
	}
	p := NewPaginator("q", fetch, zerolog.Nop())

	out, err := p.Start(context.Background())
	if err != nil || out != OutcomeFetched {
		t.Fatalf("start: %s %v", out, err)
	}
	s := p.Snapshot()
	if s.State != StateExhausted {
		t.Fatalf("state: want exhausted, got %s", s.State)
	}
	if len(s.Items) != 2 || s.Items[0] != "a" || s.Items[1] != "b" {
		t.Fatalf("items dropped: %v", s.Items)
	}
}

func TestPaginator_ResetRefetchesFromFirstPage(t *testing.T) {
	f := &pagesFetcher{pages: map[string][]domain.Page[string]{
		"q": {{Items: []string{"1"}, CurrentPage: 1, TotalPages: 1}},
	}}
	p := NewPaginator("q", f.fetch, zerolog.Nop())
	ctx := context.Background()
	p.Start(ctx)
	p.Reset()
	p.Start(ctx)

	if s := p.Snapshot(); len(s.Items) != 1 || s.State != StateExhausted {
		t.Fatalf("after reset: %+v", s)
	}
	if f.callCount() != 2 || f.calls[1] != 1 {
		t.Fatalf("calls: %v", f.calls)
	}
}
