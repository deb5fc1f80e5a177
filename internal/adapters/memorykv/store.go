package memorykv

import (
	"context"
	"errors"
	"sync"

	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

var _ ports.KVStore = (*Store)(nil)

// ErrInjected est renvoyée quand une panne est simulée (tests).
var ErrInjected = errors.New("memorykv: injected failure")

// Store est un ports.KVStore en mémoire. FailReads/FailWrites simulent
// un stockage indisponible ou plein.
type Store struct {
	mu     sync.Mutex
	values map[string][]byte

	failReads  bool
	failWrites bool
	writes     int
}

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, ErrInjected
	}
	v, ok := s.values[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrInjected
	}
	s.values[key] = append([]byte(nil), value...)
	s.writes++
	return nil
}

// Set écrit une valeur brute sans passer par les pannes simulées.
func (s *Store) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
}

func (s *Store) FailReads(v bool) {
	s.mu.Lock()
	s.failReads = v
	s.mu.Unlock()
}

func (s *Store) FailWrites(v bool) {
	s.mu.Lock()
	s.failWrites = v
	s.mu.Unlock()
}

// Writes compte les Put réussis.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
