package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

var _ ports.CatalogClient = (*CatalogService)(nil)

const (
	DefaultCatalogEndpoint    = "https://animekudesu-be.gatradigital.com"
	DefaultCatalogConcurrency = 6
)

// CatalogService est le client de l'API catalogue distante. Chaque endpoint
// normalise sa réponse (champs optionnels => valeurs par défaut).
type CatalogService struct {
	endpoint string
	client   *http.Client
	limiter  *DynamicLimiter
}

func NewCatalogService() *CatalogService {
	return &CatalogService{
		endpoint: DefaultCatalogEndpoint,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: NewDynamicLimiter(DefaultCatalogConcurrency),
	}
}

func (s *CatalogService) WithEndpoint(endpoint string) *CatalogService {
	if e := strings.TrimRight(strings.TrimSpace(endpoint), "/"); e != "" {
		s.endpoint = e
	}
	return s
}

func (s *CatalogService) WithTimeout(timeout time.Duration) *CatalogService {
	if timeout > 0 {
		s.client.Timeout = timeout
	}
	return s
}

// WithConcurrency plafonne les requêtes simultanées vers l'API.
func (s *CatalogService) WithConcurrency(n int) *CatalogService {
	if n > 0 {
		s.limiter.SetLimit(n)
	}
	return s
}

func (s *CatalogService) Endpoint() string { return s.endpoint }

// listEnvelope est l'enveloppe commune: {data, current_page, total_page}.
type listEnvelope[T any] struct {
	Data        []T  `json:"data"`
	CurrentPage *int `json:"current_page"`
	TotalPage   *int `json:"total_page"`
}

func (e listEnvelope[T]) page(requested int) domain.Page[T] {
	p := domain.Page[T]{Items: e.Data, CurrentPage: requested, TotalPages: requested}
	if p.Items == nil {
		p.Items = []T{}
	}
	if e.CurrentPage != nil && *e.CurrentPage > 0 {
		p.CurrentPage = *e.CurrentPage
	}
	if e.TotalPage != nil && *e.TotalPage >= 0 {
		p.TotalPages = *e.TotalPage
	}
	return p
}

func (s *CatalogService) NewAnime(ctx context.Context) ([]domain.AnimeCard, error) {
	var out listEnvelope[domain.AnimeCard]
	if err := s.get(ctx, "/new-anime", &out); err != nil {
		return nil, err
	}
	return normalizeCards(out.page(1).Items), nil
}

func (s *CatalogService) Genres(ctx context.Context) ([]domain.Genre, error) {
	var out listEnvelope[domain.Genre]
	if err := s.get(ctx, "/genres", &out); err != nil {
		return nil, err
	}
	return out.page(1).Items, nil
}

func (s *CatalogService) Ongoing(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error) {
	return s.cards(ctx, "/ongoing-anime", page)
}

func (s *CatalogService) Completed(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error) {
	return s.cards(ctx, "/completed-anime", page)
}

func (s *CatalogService) Popular(ctx context.Context, page int) (domain.Page[domain.AnimeCard], error) {
	return s.cards(ctx, "/popular-anime", page)
}

func (s *CatalogService) Genre(ctx context.Context, id string, page int) (domain.Page[domain.AnimeCard], error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Page[domain.AnimeCard]{}, &CodedError{Code: "invalid_params", Message: "missing genre id"}
	}
	return s.cards(ctx, "/genre-anime/"+url.PathEscape(id), page)
}

// Search n'est pas paginé côté API: le résultat est une page unique.
func (s *CatalogService) Search(ctx context.Context, term string) (domain.Page[domain.AnimeCard], error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.Page[domain.AnimeCard]{Items: []domain.AnimeCard{}, CurrentPage: 1, TotalPages: 1}, nil
	}
	var out listEnvelope[domain.AnimeCard]
	if err := s.get(ctx, "/search-anime?search="+url.QueryEscape(term), &out); err != nil {
		return domain.Page[domain.AnimeCard]{}, err
	}
	return domain.Page[domain.AnimeCard]{Items: normalizeCards(out.Data), CurrentPage: 1, TotalPages: 1}, nil
}

func (s *CatalogService) Schedule(ctx context.Context, day string) (domain.Schedule, error) {
	day = strings.ToLower(strings.TrimSpace(day))
	if day == "" {
		day = domain.Weekdays[time.Now().Weekday()]
	}
	var out domain.Schedule
	if err := s.get(ctx, "/release-schedule?day="+url.QueryEscape(day), &out); err != nil {
		return domain.Schedule{}, err
	}
	if out.Anime == nil {
		out.Anime = []domain.ScheduleAnime{}
	}
	if out.AvailableDays == nil {
		out.AvailableDays = []domain.DayOption{}
	}
	if out.DayValue == "" {
		out.DayValue = day
	}
	if out.Total == 0 {
		out.Total = len(out.Anime)
	}
	return out, nil
}

func (s *CatalogService) Detail(ctx context.Context, slug string) (domain.AnimeDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.AnimeDetail{}, &CodedError{Code: "invalid_params", Message: "missing slug"}
	}
	var out domain.AnimeDetail
	if err := s.get(ctx, "/detail-anime/"+url.PathEscape(slug), &out); err != nil {
		return domain.AnimeDetail{}, err
	}
	if out.Slug == "" {
		out.Slug = slug
	}
	if out.Descriptions == nil {
		out.Descriptions = []string{}
	}
	if out.Genres == nil {
		out.Genres = []domain.GenreTag{}
	}
	if out.Episodes == nil {
		out.Episodes = []domain.EpisodeRef{}
	}
	return out, nil
}

// Episode suit un chemin detail_eps renvoyé par Detail.
func (s *CatalogService) Episode(ctx context.Context, path string) (domain.EpisodeDetail, error) {
	path, err := relativePath(path)
	if err != nil {
		return domain.EpisodeDetail{}, err
	}
	var out domain.EpisodeDetail
	if err := s.get(ctx, path, &out); err != nil {
		return domain.EpisodeDetail{}, err
	}
	if out.Videos == nil {
		out.Videos = []domain.VideoOption{}
	}
	return out, nil
}

// ResolveVideo transforme la référence opaque d'un VideoOption en URL lisible.
func (s *CatalogService) ResolveVideo(ctx context.Context, path string) (string, error) {
	path, err := relativePath(path)
	if err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := s.get(ctx, path, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", &CodedError{Code: "bad_payload", Message: "video resolution returned no url"}
	}
	return out.URL, nil
}

func (s *CatalogService) cards(ctx context.Context, path string, page int) (domain.Page[domain.AnimeCard], error) {
	if page < 1 {
		page = 1
	}
	var out listEnvelope[domain.AnimeCard]
	if err := s.get(ctx, path+"?page="+strconv.Itoa(page), &out); err != nil {
		return domain.Page[domain.AnimeCard]{}, err
	}
	p := out.page(page)
	p.Items = normalizeCards(p.Items)
	return p, nil
}

func normalizeCards(in []domain.AnimeCard) []domain.AnimeCard {
	out := make([]domain.AnimeCard, 0, len(in))
	for _, c := range in {
		if c.Alt == "" {
			c.Alt = c.Title
		}
		if c.Genres == nil {
			c.Genres = []domain.GenreTag{}
		}
		out = append(out, c)
	}
	return out
}

// relativePath refuse les URLs absolues: on ne suit que des chemins de l'API.
func relativePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", &CodedError{Code: "invalid_params", Message: "missing path"}
	}
	u, err := url.Parse(p)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "", &CodedError{Code: "invalid_params", Message: "path must be relative to the catalog api"}
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p, nil
}

func (s *CatalogService) get(ctx context.Context, path string, out any) error {
	if err := s.limiter.Acquire(ctx); err != nil {
		return &CodedError{Code: "network_error", Message: "catalog request cancelled", Err: err}
	}
	defer s.limiter.Release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+path, nil)
	if err != nil {
		return &CodedError{Code: "invalid_params", Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "akd-server")

	resp, err := s.client.Do(req)
	if err != nil {
		return &CodedError{Code: "network_error", Message: "catalog request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &CodedError{Code: "http_status", Status: resp.StatusCode, Message: fmt.Sprintf("catalog http error: %s", resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &CodedError{Code: "bad_payload", Message: "empty catalog response"}
		}
		return &CodedError{Code: "bad_payload", Message: "invalid catalog response", Err: err}
	}
	return nil
}
