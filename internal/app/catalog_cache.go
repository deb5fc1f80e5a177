package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

// defaultCacheFetchTimeout couvre l'attente d'un slot du limiter plus la requête.
const defaultCacheFetchTimeout = 30 * time.Second

// CatalogCache garde en mémoire les listes peu volatiles (genres, nouveautés,
// planning). Les misses concurrents sur une même clé ne font qu'un appel.
//
// L'appel partagé ne dépend pas du contexte de l'appelant qui l'a lancé: il est
// borné par fetchTimeout, et chaque appelant n'attend que sous son propre ctx.
type CatalogCache struct {
	client       ports.CatalogClient
	logger       zerolog.Logger
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

func NewCatalogCache(client ports.CatalogClient, logger zerolog.Logger, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CatalogCache{
		client:       client,
		logger:       logger.With().Str("component", "catalog-cache").Logger(),
		ttl:          ttl,
		fetchTimeout: defaultCacheFetchTimeout,
		now:          time.Now,
		entries:      make(map[string]cacheEntry),
	}
}

func (c *CatalogCache) Genres(ctx context.Context) ([]domain.Genre, error) {
	return cached(ctx, c, "genres", c.client.Genres)
}

func (c *CatalogCache) NewAnime(ctx context.Context) ([]domain.AnimeCard, error) {
	return cached(ctx, c, "new-anime", c.client.NewAnime)
}

func (c *CatalogCache) Schedule(ctx context.Context, day string) (domain.Schedule, error) {
	return cached(ctx, c, "schedule:"+day, func(ctx context.Context) (domain.Schedule, error) {
		return c.client.Schedule(ctx, day)
	})
}

// Warm recharge toutes les entrées en parallèle (tâche planifiée).
func (c *CatalogCache) Warm(ctx context.Context) error {
	c.Invalidate()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	g.Go(func() error { _, err := c.Genres(ctx); return err })
	g.Go(func() error { _, err := c.NewAnime(ctx); return err })
	for _, day := range domain.Weekdays {
		day := day
		g.Go(func() error { _, err := c.Schedule(ctx, day); return err })
	}
	if err := g.Wait(); err != nil {
		c.logger.Warn().Err(err).Msg("catalog warm-up incomplete")
		return err
	}
	c.logger.Info().Int("entries", c.Len()).Msg("catalog warmed")
	return nil
}

func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *CatalogCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cached[T any](ctx context.Context, c *CatalogCache, key string, load func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value.(T), nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		v, err := load(fetchCtx)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{value: v, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
