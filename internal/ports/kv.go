package ports

import "context"

// KVStore est le stockage clé/valeur texte local à l'appareil.
// Get renvoie ErrNotFound si la clé est absente, ErrUnavailable si le
// stockage n'est pas utilisable.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
