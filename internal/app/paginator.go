package app

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

type PaginationState string

const (
	StateIdle         PaginationState = "idle"
	StateLoadingFirst PaginationState = "loading-first-page"
	StateHasMore      PaginationState = "has-more"
	StateLoadingNext  PaginationState = "loading-next-page"
	StateExhausted    PaginationState = "exhausted"
	StateError        PaginationState = "error"
)

func (s PaginationState) IsLoading() bool {
	return s == StateLoadingFirst || s == StateLoadingNext
}

// LoadOutcome décrit ce qu'a fait un appel à LoadMore.
type LoadOutcome string

const (
	OutcomeFetched    LoadOutcome = "fetched"
	OutcomeSuppressed LoadOutcome = "suppressed"
	OutcomeExhausted  LoadOutcome = "exhausted"
	OutcomeStale      LoadOutcome = "stale"
	OutcomeFailed     LoadOutcome = "failed"
)

// PageFetcher récupère la page `page` (>= 1) de la liste identifiée par query.
// Une page dont CurrentPage n'avance pas termine la liste après ajout de ses items.
type PageFetcher[T any] func(ctx context.Context, query string, page int) (domain.Page[T], error)

type PageSnapshot[T any] struct {
	Query       string          `json:"query"`
	State       PaginationState `json:"state"`
	Items       []T             `json:"items"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	NextPage    int             `json:"nextPage"`
	Err         error           `json:"-"`
}

func (s PageSnapshot[T]) Error() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Paginator accumule les pages d'une liste distante (scroll infini).
//
// Au plus un fetch est en vol à la fois. Changer de query remet tout à zéro;
// la réponse d'un fetch lancé pour une ancienne query est ignorée.
type Paginator[T any] struct {
	fetch    PageFetcher[T]
	logger   zerolog.Logger
	onChange func(PageSnapshot[T])

	mu          sync.Mutex
	query       string
	gen         uint64
	state       PaginationState
	items       []T
	currentPage int
	totalPages  int
	nextPage    int
	inFlight    bool
	lastErr     error
}

func NewPaginator[T any](query string, fetch PageFetcher[T], logger zerolog.Logger) *Paginator[T] {
	return &Paginator[T]{
		fetch:    fetch,
		logger:   logger,
		query:    query,
		state:    StateIdle,
		items:    []T{},
		nextPage: 1,
	}
}

// OnChange est appelé (hors verrou) après chaque transition d'état.
func (p *Paginator[T]) OnChange(fn func(PageSnapshot[T])) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

func (p *Paginator[T]) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// SetQuery change l'identité de la liste. Renvoie false si query est inchangée.
func (p *Paginator[T]) SetQuery(query string) bool {
	p.mu.Lock()
	if query == p.query {
		p.mu.Unlock()
		return false
	}
	p.query = query
	p.resetLocked()
	snap, notify := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
	return true
}

// Reset repart de la page 1 pour la même query (pull-to-refresh).
func (p *Paginator[T]) Reset() {
	p.mu.Lock()
	p.resetLocked()
	snap, notify := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}

// Start lance la première page si rien n'a encore été chargé.
func (p *Paginator[T]) Start(ctx context.Context) (LoadOutcome, error) {
	p.mu.Lock()
	idle := p.state == StateIdle
	p.mu.Unlock()
	if !idle {
		return OutcomeSuppressed, nil
	}
	return p.LoadMore(ctx)
}

// Retry relance la page en échec; les pages déjà chargées ne sont pas refetchées.
func (p *Paginator[T]) Retry(ctx context.Context) (LoadOutcome, error) {
	return p.LoadMore(ctx)
}

// LoadMore charge la page suivante. L'erreur de fetch est renvoyée et
// conservée dans le snapshot; les items déjà accumulés sont gardés.
func (p *Paginator[T]) LoadMore(ctx context.Context) (LoadOutcome, error) {
	p.mu.Lock()
	if p.state == StateExhausted {
		p.mu.Unlock()
		return OutcomeExhausted, nil
	}
	if p.inFlight {
		p.mu.Unlock()
		return OutcomeSuppressed, nil
	}

	gen, query, page := p.gen, p.query, p.nextPage
	if p.currentPage == 0 {
		p.state = StateLoadingFirst
	} else {
		p.state = StateLoadingNext
	}
	p.inFlight = true
	snap, notify := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if notify != nil {
		notify(snap)
	}

	res, err := p.fetch(ctx, query, page)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		p.logger.Debug().Str("query", query).Int("page", page).Msg("stale page dropped")
		return OutcomeStale, nil
	}
	p.inFlight = false

	outcome := OutcomeFetched
	switch {
	case err != nil:
		p.state = StateError
		p.lastErr = err
		outcome = OutcomeFailed
		p.logger.Warn().Err(err).Str("query", query).Int("page", page).Msg("page fetch failed")
	case res.CurrentPage <= p.currentPage:
		// Le curseur distant n'avance plus: la page est gardée, puis on s'arrête.
		p.items = append(p.items, res.Items...)
		p.state = StateExhausted
		p.lastErr = nil
		p.logger.Warn().Str("query", query).Int("page", page).Int("current_page", res.CurrentPage).Msg("page cursor did not advance")
	default:
		p.items = append(p.items, res.Items...)
		p.currentPage = res.CurrentPage
		p.totalPages = res.TotalPages
		p.nextPage = res.CurrentPage + 1
		p.lastErr = nil
		if res.HasMore() {
			p.state = StateHasMore
		} else {
			p.state = StateExhausted
		}
	}
	snap, notify = p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
	return outcome, err
}

func (p *Paginator[T]) Snapshot() PageSnapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Paginator[T]) resetLocked() {
	p.gen++
	p.state = StateIdle
	p.items = []T{}
	p.currentPage = 0
	p.totalPages = 0
	p.nextPage = 1
	p.inFlight = false
	p.lastErr = nil
}

func (p *Paginator[T]) snapshotLocked() PageSnapshot[T] {
	return PageSnapshot[T]{
		Query:       p.query,
		State:       p.state,
		Items:       slices.Clone(p.items),
		CurrentPage: p.currentPage,
		TotalPages:  p.totalPages,
		NextPage:    p.nextPage,
		Err:         p.lastErr,
	}
}
