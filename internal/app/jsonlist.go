package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

// jsonList lit et écrit un tableau JSON complet sous une clé du KVStore.
// Les pannes sont loggées puis avalées: lecture => liste vide, écriture => false.
// Une mutation ne s'appuie jamais sur une lecture en échec (voir loadForUpdate).
type jsonList[T any] struct {
	kv     ports.KVStore
	key    string
	logger zerolog.Logger
}

// read renvoie la liste stockée. Clé absente ou valeur corrompue => liste vide
// sans erreur; stockage illisible => erreur.
func (l jsonList[T]) read(ctx context.Context) ([]T, error) {
	if l.kv == nil {
		return nil, ErrUnavailable
	}
	b, err := l.kv.Get(ctx, l.key)
	if errors.Is(err, ports.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		l.logger.Warn().Err(err).Str("key", l.key).Msg("corrupt value, treating as empty")
		return []T{}, nil
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}

func (l jsonList[T]) load(ctx context.Context) []T {
	items, err := l.read(ctx)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			l.logger.Warn().Err(err).Str("key", l.key).Msg("read failed, treating as empty")
		}
		return []T{}
	}
	return items
}

// loadForUpdate est la lecture d'un cycle lecture-modification-écriture.
// ok=false si le stockage est illisible: réécrire à partir d'une liste vide
// effacerait les entrées existantes.
func (l jsonList[T]) loadForUpdate(ctx context.Context) ([]T, bool) {
	items, err := l.read(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Str("key", l.key).Msg("read failed, mutation skipped")
		return nil, false
	}
	return items, true
}

func (l jsonList[T]) save(ctx context.Context, items []T) bool {
	if l.kv == nil {
		l.logger.Warn().Str("key", l.key).Msg("no storage configured, write dropped")
		return false
	}
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		l.logger.Error().Err(err).Str("key", l.key).Msg("encode failed")
		return false
	}
	if err := l.kv.Put(ctx, l.key, b); err != nil {
		l.logger.Warn().Err(err).Str("key", l.key).Msg("write failed")
		return false
	}
	return true
}

// listeners est une liste d'abonnés typés, appelés dans l'ordre d'inscription.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	subs []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	l.next++
	id := l.next
	l.subs = append(l.subs, listener[T]{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, s := range l.subs {
				if s.id == id {
					l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	subs := append([]listener[T](nil), l.subs...)
	l.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}

func publishJSON(bus ports.EventBus, topic string, v any) {
	if bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	bus.Publish(topic, b)
}
