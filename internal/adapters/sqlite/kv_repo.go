package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/Guilhem-Bonnet/akd/internal/ports"
)

var _ ports.KVStore = (*KVRepository)(nil)

// KVRepository stocke des blobs texte (JSON) sous une clé fixe.
type KVRepository struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db, sq: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if r.db == nil {
		return nil, ports.ErrUnavailable
	}
	query, args, err := r.sq.Select("value").From("kv").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build kv select")
	}
	var v string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, errors.Wrapf(err, "read key %q", key)
	}
	return []byte(v), nil
}

func (r *KVRepository) Put(ctx context.Context, key string, value []byte) error {
	if r.db == nil {
		return ports.ErrUnavailable
	}
	query, args, err := r.sq.Insert("kv").
		Columns("key", "value", "updated_at").
		Values(key, string(value), time.Now().UTC().Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build kv upsert")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "write key %q", key)
	}
	return nil
}
