package app

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

// LikedService gère l'ensemble des liens "likés" (clé liked-set).
// Mêmes règles que MyListService: mutations sérialisées, pas d'erreur publique.
type LikedService struct {
	list   jsonList[string]
	bus    ports.EventBus
	logger zerolog.Logger

	mu   sync.Mutex
	subs listeners[[]string]
}

type LikeResult struct {
	Liked bool `json:"liked"`
}

func NewLikedService(kv ports.KVStore, bus ports.EventBus, logger zerolog.Logger) *LikedService {
	logger = logger.With().Str("component", "liked").Logger()
	return &LikedService{
		list:   jsonList[string]{kv: kv, key: domain.LikedKey, logger: logger},
		bus:    bus,
		logger: logger,
	}
}

func (s *LikedService) GetAll(ctx context.Context) []string {
	return s.list.load(ctx)
}

func (s *LikedService) IsMember(ctx context.Context, link string) bool {
	return slices.Contains(s.list.load(ctx), strings.TrimSpace(link))
}

func (s *LikedService) Count(ctx context.Context) int {
	return len(s.list.load(ctx))
}

// Toggle like/unlike. Liked reflète l'état réel après l'opération.
func (s *LikedService) Toggle(ctx context.Context, link string) LikeResult {
	link = strings.TrimSpace(link)
	if link == "" {
		return LikeResult{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.list.loadForUpdate(ctx)
	if !ok {
		return LikeResult{}
	}
	if slices.Contains(current, link) {
		next := slices.DeleteFunc(slices.Clone(current), func(l string) bool { return l == link })
		if !s.list.save(ctx, next) {
			return LikeResult{Liked: true}
		}
		s.broadcast(next)
		return LikeResult{Liked: false}
	}

	next := append([]string{link}, current...)
	if !s.list.save(ctx, next) {
		return LikeResult{Liked: false}
	}
	s.broadcast(next)
	return LikeResult{Liked: true}
}

func (s *LikedService) Clear(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := []string{}
	if !s.list.save(ctx, empty) {
		return false
	}
	s.broadcast(empty)
	return true
}

// Subscribe: voir MyListService.Subscribe.
func (s *LikedService) Subscribe(fn func([]string)) (unsubscribe func()) {
	return s.subs.add(fn)
}

func (s *LikedService) broadcast(links []string) {
	snapshot := slices.Clone(links)
	if snapshot == nil {
		snapshot = []string{}
	}
	s.subs.notify(snapshot)
	publishJSON(s.bus, domain.LikedTopic, snapshot)
}
