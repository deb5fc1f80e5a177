package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

type Feed string

const (
	FeedOngoing   Feed = "ongoing"
	FeedCompleted Feed = "completed"
	FeedPopular   Feed = "popular"
	FeedGenre     Feed = "genre"
	FeedSearch    Feed = "search"
)

const BrowseTopic = "browse.updated"

var (
	ErrUnknownFeed  = errors.New("unknown feed")
	ErrMissingQuery = errors.New("feed requires a query")
)

// FeedSpec configure une liste paginée: tous les écrans partagent le même Paginator.
type FeedSpec struct {
	Feed          Feed
	RequiresQuery bool
	Fetch         PageFetcher[domain.AnimeCard]
}

func DefaultFeeds(c ports.CatalogClient) []FeedSpec {
	return []FeedSpec{
		{Feed: FeedOngoing, Fetch: func(ctx context.Context, _ string, page int) (domain.Page[domain.AnimeCard], error) {
			return c.Ongoing(ctx, page)
		}},
		{Feed: FeedCompleted, Fetch: func(ctx context.Context, _ string, page int) (domain.Page[domain.AnimeCard], error) {
			return c.Completed(ctx, page)
		}},
		{Feed: FeedPopular, Fetch: func(ctx context.Context, _ string, page int) (domain.Page[domain.AnimeCard], error) {
			return c.Popular(ctx, page)
		}},
		{Feed: FeedGenre, RequiresQuery: true, Fetch: func(ctx context.Context, id string, page int) (domain.Page[domain.AnimeCard], error) {
			return c.Genre(ctx, id, page)
		}},
		{Feed: FeedSearch, RequiresQuery: true, Fetch: func(ctx context.Context, term string, _ int) (domain.Page[domain.AnimeCard], error) {
			return c.Search(ctx, term)
		}},
	}
}

// BrowseView est l'état d'une session renvoyé aux clients.
type BrowseView struct {
	ID          string             `json:"id"`
	Feed        Feed               `json:"feed"`
	Query       string             `json:"query,omitempty"`
	State       PaginationState    `json:"state"`
	Items       []domain.AnimeCard `json:"items"`
	CurrentPage int                `json:"currentPage"`
	TotalPages  int                `json:"totalPages"`
	NextPage    int                `json:"nextPage"`
	Error       string             `json:"error,omitempty"`
	Outcome     LoadOutcome        `json:"outcome,omitempty"`
}

type browseSession struct {
	id       string
	feed     Feed
	spec     FeedSpec
	pager    *Paginator[domain.AnimeCard]
	lastUsed time.Time
}

// BrowseService tient une session de scroll infini par écran ouvert.
type BrowseService struct {
	logger zerolog.Logger
	bus    ports.EventBus
	feeds  map[Feed]FeedSpec
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*browseSession
}

func NewBrowseService(logger zerolog.Logger, bus ports.EventBus, feeds []FeedSpec) *BrowseService {
	m := make(map[Feed]FeedSpec, len(feeds))
	for _, f := range feeds {
		m[f.Feed] = f
	}
	return &BrowseService{
		logger:   logger.With().Str("component", "browse").Logger(),
		bus:      bus,
		feeds:    m,
		now:      time.Now,
		sessions: make(map[string]*browseSession),
	}
}

func (s *BrowseService) Feeds() []Feed {
	out := make([]Feed, 0, len(s.feeds))
	for f := range s.feeds {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Open crée une session et charge la page 1. Une erreur de fetch est
// renvoyée dans la vue (state=error), pas comme erreur Go.
func (s *BrowseService) Open(ctx context.Context, feed Feed, query string) (BrowseView, error) {
	spec, ok := s.feeds[feed]
	if !ok {
		return BrowseView{}, ErrUnknownFeed
	}
	query = strings.TrimSpace(query)
	if spec.RequiresQuery && query == "" {
		return BrowseView{}, ErrMissingQuery
	}

	sess := &browseSession{
		id:       xid.New().String(),
		feed:     feed,
		spec:     spec,
		lastUsed: s.now(),
	}
	sess.pager = NewPaginator(query, spec.Fetch, s.logger.With().Str("session", sess.id).Str("feed", string(feed)).Logger())
	sess.pager.OnChange(func(snap PageSnapshot[domain.AnimeCard]) {
		publishJSON(s.bus, BrowseTopic, map[string]any{
			"id":          sess.id,
			"feed":        feed,
			"query":       snap.Query,
			"state":       snap.State,
			"items":       len(snap.Items),
			"currentPage": snap.CurrentPage,
			"totalPages":  snap.TotalPages,
		})
	})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	out, _ := sess.pager.Start(ctx)
	return view(sess, out), nil
}

func (s *BrowseService) Get(id string) (BrowseView, error) {
	sess, err := s.touch(id)
	if err != nil {
		return BrowseView{}, err
	}
	return view(sess, ""), nil
}

// More est le signal "fin de liste visible": charge la page suivante si possible.
func (s *BrowseService) More(ctx context.Context, id string) (BrowseView, error) {
	sess, err := s.touch(id)
	if err != nil {
		return BrowseView{}, err
	}
	out, _ := sess.pager.LoadMore(ctx)
	return view(sess, out), nil
}

func (s *BrowseService) Retry(ctx context.Context, id string) (BrowseView, error) {
	sess, err := s.touch(id)
	if err != nil {
		return BrowseView{}, err
	}
	out, _ := sess.pager.Retry(ctx)
	return view(sess, out), nil
}

// Requery change la query d'une session (nouveau terme, autre genre) et
// recharge depuis la page 1.
func (s *BrowseService) Requery(ctx context.Context, id, query string) (BrowseView, error) {
	sess, err := s.touch(id)
	if err != nil {
		return BrowseView{}, err
	}
	query = strings.TrimSpace(query)
	if sess.spec.RequiresQuery && query == "" {
		return BrowseView{}, ErrMissingQuery
	}
	sess.pager.SetQuery(query)
	out, _ := sess.pager.Start(ctx)
	return view(sess, out), nil
}

// Refresh repart de la page 1 pour la même query.
func (s *BrowseService) Refresh(ctx context.Context, id string) (BrowseView, error) {
	sess, err := s.touch(id)
	if err != nil {
		return BrowseView{}, err
	}
	sess.pager.Reset()
	out, _ := sess.pager.Start(ctx)
	return view(sess, out), nil
}

func (s *BrowseService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *BrowseService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle supprime les sessions inutilisées depuis plus de maxIdle.
func (s *BrowseService) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Info().Int("evicted", n).Int("remaining", len(s.sessions)).Msg("idle browse sessions evicted")
	}
	return n
}

func (s *BrowseService) touch(id string) (*browseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.lastUsed = s.now()
	return sess, nil
}

func view(sess *browseSession, out LoadOutcome) BrowseView {
	snap := sess.pager.Snapshot()
	return BrowseView{
		ID:          sess.id,
		Feed:        sess.feed,
		Query:       snap.Query,
		State:       snap.State,
		Items:       snap.Items,
		CurrentPage: snap.CurrentPage,
		TotalPages:  snap.TotalPages,
		NextPage:    snap.NextPage,
		Error:       snap.Error(),
		Outcome:     out,
	}
}
