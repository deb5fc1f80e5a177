package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

var _ ports.CatalogClient = (*fakeCatalog)(nil)

// fakeCatalog implémente ports.CatalogClient en mémoire.
type fakeCatalog struct {
	mu        sync.Mutex
	calls     map[string]int
	genresErr error
	gate      chan struct{}
	inflight  atomic.Int32

	episodes map[string]domain.EpisodeDetail
	videos   map[string]string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		calls:    map[string]int{},
		episodes: map[string]domain.EpisodeDetail{},
		videos:   map[string]string{},
	}
}

func (f *fakeCatalog) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeCatalog) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCatalog) NewAnime(ctx context.Context) ([]domain.AnimeCard, error) {
	f.hit("new")
	return []domain.AnimeCard{{Slug: "one-piece", Title: "One Piece"}}, nil
}

func (f *fakeCatalog) Genres(ctx context.Context) ([]domain.Genre, error) {
	f.hit("genres")
	f.inflight.Add(1)
	defer f.inflight.Add(-1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return []domain.Genre{{ID: "action", Title: "Action"}}, nil
}

func (f *fakeCatalog) Ongoing(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error) {
	f.hit("ongoing")
	return domain.Page[domain.AnimeCard]{CurrentPage: page, TotalPages: page}, nil
}

func (f *fakeCatalog) Completed(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error) {
	f.hit("completed")
	return domain.Page[domain.AnimeCard]{CurrentPage: page, TotalPages: page}, nil
}

func (f *fakeCatalog) Popular(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error) {
	f.hit("popular")
	return domain.Page[domain.AnimeCard]{CurrentPage: page, TotalPages: page}, nil
}

func (f *fakeCatalog) Genre(ctx context.Context, id string, page int) (domain.Page[domain.AnimeCard], error) {
	f.hit("genre:" + id)
	return domain.Page[domain.AnimeCard]{CurrentPage: page, TotalPages: page}, nil
}

func (f *fakeCatalog) Search(ctx context.Context, term string) (domain.Page[domain.AnimeCard], error) {
	f.hit("search")
	return domain.Page[domain.AnimeCard]{CurrentPage: 1, TotalPages: 1}, nil
}

func (f *fakeCatalog) Schedule(ctx context.Context, day string) (domain.Schedule, error) {
	f.hit("schedule:" + day)
	return domain.Schedule{Day: day}, nil
}

func (f *fakeCatalog) Detail(ctx context.Context, slug string) (domain.AnimeDetail, error) {
	f.hit("detail")
	if slug == "missing" {
		return domain.AnimeDetail{}, ErrNotFound
	}
	return domain.AnimeDetail{Slug: slug, Title: slug}, nil
}

func (f *fakeCatalog) Episode(ctx context.Context, path string) (domain.EpisodeDetail, error) {
	f.hit("episode")
	ep, ok := f.episodes[path]
	if !ok {
		return domain.EpisodeDetail{}, ErrNotFound
	}
	return ep, nil
}

func (f *fakeCatalog) ResolveVideo(ctx context.Context, path string) (string, error) {
	f.hit("video")
	u, ok := f.videos[path]
	if !ok {
		return "", ErrNotFound
	}
	return u, nil
}
