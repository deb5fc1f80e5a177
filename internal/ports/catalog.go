package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

// CatalogClient est l'API catalogue distante, normalisée.
type CatalogClient interface {
	NewAnime(ctx context.Context) ([]domain.AnimeCard, error)
	Genres(ctx context.Context) ([]domain.Genre, error)
	Ongoing(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error)
	Completed(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error)
	Popular(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error)
	Genre(ctx context.Context, id string, page int) (domain.Page[domain.AnimeCard], error)
	Search(ctx context.Context, term string) (domain.Page[domain.AnimeCard], error)
	Schedule(ctx context.Context, day string) (domain.Schedule, error)
	Detail(ctx context.Context, slug string) (domain.AnimeDetail, error)
	Episode(ctx context.Context, path string) (domain.EpisodeDetail, error)
	ResolveVideo(ctx context.Context, path string) (string, error)
}
