package sqlite

import (
	"bufio"
	"cmp"
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB est le stockage local de l'appareil (un fichier SQLite).
type DB struct {
	SQL *sql.DB
}

func Open(ctx context.Context, file string) (*DB, error) {
	dsn := file
	if file != ":memory:" {
		dsn = "file:" + file + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open sqlite")
	}

	// Une seule connexion: les écritures sont sérialisées et ":memory:" reste partagé.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctxPing, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "unable to reach sqlite")
	}

	wrapper := &DB{SQL: db}
	if err := wrapper.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to migrate schema")
	}
	return wrapper, nil
}

func (d *DB) Close() error {
	return d.SQL.Close()
}

// migration est un fichier NNNN_nom.sql; seule la section "-- +migrate Up" est jouée.
type migration struct {
	version int
	name    string
	up      string
}

// Migrate applique, dans l'ordre des versions, les migrations pas encore
// enregistrées dans schema_migrations. Chaque migration a sa transaction.
func (d *DB) Migrate(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);`
	if _, err := d.SQL.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}

	pending, err := loadMigrations(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	applied, err := d.appliedVersions(ctx)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if applied[m.version] || strings.TrimSpace(m.up) == "" {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) apply(ctx context.Context, m migration) error {
	record, args, err := sq.Insert("schema_migrations").
		Columns("version", "applied_at").
		Values(m.version, time.Now().UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build migration record")
	}

	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin migration")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.up); err != nil {
		return errors.Wrapf(err, "migration %s failed", m.name)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return errors.Wrapf(err, "record migration %s", m.name)
	}
	return errors.Wrapf(tx.Commit(), "commit migration %s", m.name)
}

func (d *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	query, args, err := sq.Select("version").From("schema_migrations").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build schema_migrations select")
	}
	rows, err := d.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "read schema_migrations")
	}
	defer rows.Close()

	out := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

// loadMigrations lit les fichiers .sql de dir, triés par version.
func loadMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(err, "list migrations")
	}

	var out []migration
	seen := map[int]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, errors.Errorf("invalid migration name: %s", name)
		}
		if prev, dup := seen[v]; dup {
			return nil, errors.Errorf("duplicate migration version %d: %s, %s", v, prev, name)
		}
		seen[v] = name

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "read migration %s", name)
		}
		out = append(out, migration{version: v, name: name, up: upSection(string(b))})
	}
	slices.SortFunc(out, func(a, b migration) int { return cmp.Compare(a.version, b.version) })
	return out, nil
}

// upSection garde les lignes entre "-- +migrate Up" et "-- +migrate Down".
func upSection(text string) string {
	var b strings.Builder
	inUp := false
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		switch marker := strings.TrimSpace(line); {
		case strings.HasPrefix(marker, "-- +migrate Up"):
			inUp = true
		case strings.HasPrefix(marker, "-- +migrate Down"):
			inUp = false
		case inUp:
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
