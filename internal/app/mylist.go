package app

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

// MyListService gère "My List" (clé watchlist), la plus récente en tête.
//
// Les mutations d'une même instance sont sérialisées: lecture, écriture
// complète puis notification se font sous le même verrou. Entre deux
// processus partageant le même stockage, la dernière écriture gagne.
//
// Aucune méthode ne renvoie d'erreur: un stockage absent ou corrompu se lit
// comme une liste vide, une écriture ratée renvoie false. Si le stockage est
// illisible, Add/Remove/Toggle n'écrivent rien.
type MyListService struct {
	list   jsonList[domain.SavedAnime]
	bus    ports.EventBus
	logger zerolog.Logger
	now    func() time.Time

	mu   sync.Mutex
	subs listeners[[]domain.SavedAnime]
}

type ToggleResult struct {
	Added    bool `json:"added"`
	IsMember bool `json:"isMember"`
}

func NewMyListService(kv ports.KVStore, bus ports.EventBus, logger zerolog.Logger) *MyListService {
	logger = logger.With().Str("component", "mylist").Logger()
	return &MyListService{
		list:   jsonList[domain.SavedAnime]{kv: kv, key: domain.WatchlistKey, logger: logger},
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock remplace l'horloge utilisée pour AddedAt.
func (s *MyListService) WithClock(now func() time.Time) *MyListService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *MyListService) GetAll(ctx context.Context) []domain.SavedAnime {
	return s.list.load(ctx)
}

func (s *MyListService) IsMember(ctx context.Context, link string) bool {
	link = strings.TrimSpace(link)
	return indexOfLink(s.list.load(ctx), link) >= 0
}

func (s *MyListService) Count(ctx context.Context) int {
	return len(s.list.load(ctx))
}

func (s *MyListService) Add(ctx context.Context, in domain.SavedAnimeInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(ctx, in)
}

func (s *MyListService) Remove(ctx context.Context, link string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, strings.TrimSpace(link))
}

// Toggle retire l'entrée si elle est présente, l'ajoute sinon.
// IsMember reflète l'état réel après l'opération (inchangé si l'écriture échoue).
func (s *MyListService) Toggle(ctx context.Context, in domain.SavedAnimeInput) ToggleResult {
	link := strings.TrimSpace(in.Link)
	if link == "" {
		return ToggleResult{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.list.loadForUpdate(ctx)
	if !ok {
		return ToggleResult{}
	}
	if indexOfLink(current, link) >= 0 {
		if s.removeLocked(ctx, link) {
			return ToggleResult{Added: false, IsMember: false}
		}
		return ToggleResult{Added: false, IsMember: true}
	}
	if s.addLocked(ctx, in) {
		return ToggleResult{Added: true, IsMember: true}
	}
	return ToggleResult{}
}

// Clear vide la liste sans condition.
func (s *MyListService) Clear(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := []domain.SavedAnime{}
	if !s.list.save(ctx, empty) {
		return false
	}
	s.logger.Info().Msg("list cleared")
	s.broadcast(empty)
	return true
}

// Subscribe enregistre fn, appelée une fois par mutation réussie avec la liste
// complète. fn est appelée sous le verrou de mutation: elle ne doit pas
// modifier la liste de façon synchrone.
func (s *MyListService) Subscribe(fn func([]domain.SavedAnime)) (unsubscribe func()) {
	return s.subs.add(fn)
}

func (s *MyListService) addLocked(ctx context.Context, in domain.SavedAnimeInput) bool {
	entry := in.Stamp(s.now().UnixMilli())
	if entry.Link == "" {
		return false
	}
	current, ok := s.list.loadForUpdate(ctx)
	if !ok || indexOfLink(current, entry.Link) >= 0 {
		return false
	}

	next := make([]domain.SavedAnime, 0, len(current)+1)
	next = append(next, entry)
	next = append(next, current...)
	if !s.list.save(ctx, next) {
		return false
	}
	s.logger.Debug().Str("link", entry.Link).Msg("added")
	s.broadcast(next)
	return true
}

func (s *MyListService) removeLocked(ctx context.Context, link string) bool {
	if link == "" {
		return false
	}
	current, ok := s.list.loadForUpdate(ctx)
	if !ok {
		return false
	}
	next := slices.DeleteFunc(slices.Clone(current), func(e domain.SavedAnime) bool { return e.Link == link })
	if len(next) == len(current) {
		return false
	}
	if !s.list.save(ctx, next) {
		return false
	}
	s.logger.Debug().Str("link", link).Msg("removed")
	s.broadcast(next)
	return true
}

func (s *MyListService) broadcast(list []domain.SavedAnime) {
	snapshot := slices.Clone(list)
	if snapshot == nil {
		snapshot = []domain.SavedAnime{}
	}
	s.subs.notify(snapshot)
	publishJSON(s.bus, domain.WatchlistTopic, snapshot)
}

func indexOfLink(list []domain.SavedAnime, link string) int {
	return slices.IndexFunc(list, func(e domain.SavedAnime) bool { return e.Link == link })
}
