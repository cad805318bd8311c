package postgres

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Схема версионируется файлами NNNN_name.up.sql / NNNN_name.down.sql.
//
//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir = "sql/migrations"

	// Ключ pg_advisory_lock: реплики не мигрируют одновременно.
	migrationLockKey = int64(0x5C3_0001)

	// migrationTimeout ограничивает прогон при старте сервера.
	migrationTimeout = 2 * time.Minute

	createVersionsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	insertVersion = `INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, NOW())`
	deleteVersion = `DELETE FROM schema_migrations WHERE version = $1`
)

var migrationName = regexp.MustCompile(`^(\d+)_(\w+)\.(up|down)\.sql$`)

type migrationDirection string

const (
	migrationUp   migrationDirection = "up"
	migrationDown migrationDirection = "down"
)

type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

func (m migration) String() string {
	return fmt.Sprintf("%04d_%s", m.Version, m.Name)
}

// MigrationState описывает схему: максимальную применённую версию, число
// применённых миграций и имена ещё не применённых.
type MigrationState struct {
	Version int64
	Applied int
	Pending []string
}

// MigrationContext ограничивает прогон миграций по времени.
func MigrationContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, migrationTimeout)
}

// MigrateUp применяет steps неприменённых миграций; 0: все.
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return s.migrate(ctx, migrationUp, steps)
}

// MigrateDown откатывает steps последних миграций, минимум одну.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	return s.migrate(ctx, migrationDown, max(steps, 1))
}

// MigrationStatus сравнивает встроенные миграции с schema_migrations.
func (s *Store) MigrationStatus(ctx context.Context) (MigrationState, error) {
	if s == nil || s.db == nil {
		return MigrationState{}, errStoreClosed
	}
	known, err := readMigrations(migrationsFS)
	if err != nil {
		return MigrationState{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var state MigrationState
	err = s.withConn(ctx, func(conn *sql.Conn) error {
		if err := ensureVersionsTable(ctx, conn); err != nil {
			return err
		}
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}
		state = describe(known, applied)
		return nil
	})
	return state, err
}

func (s *Store) migrate(ctx context.Context, direction migrationDirection, steps int) error {
	if s == nil || s.db == nil {
		return errStoreClosed
	}
	known, err := readMigrations(migrationsFS)
	if err != nil {
		return err
	}

	return s.withConn(ctx, func(conn *sql.Conn) error {
		lockCtx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()
		if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		defer func() {
			_, _ = conn.ExecContext(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migrationLockKey)
		}()

		if err := ensureVersionsTable(ctx, conn); err != nil {
			return err
		}
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}
		todo, err := selectMigrations(known, applied, direction, steps)
		if err != nil {
			return err
		}
		for _, m := range todo {
			if err := runMigration(ctx, conn, m, direction); err != nil {
				return err
			}
		}
		return nil
	})
}

// withConn держит одно соединение: advisory lock живёт в сессии.
func (s *Store) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

func ensureVersionsTable(ctx context.Context, conn *sql.Conn) error {
	if _, err := conn.ExecContext(ctx, createVersionsTable); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

func describe(known []migration, applied map[int64]bool) MigrationState {
	state := MigrationState{Applied: len(applied)}
	if len(applied) > 0 {
		state.Version = slices.Max(slices.Collect(maps.Keys(applied)))
	}
	for _, m := range known {
		if !applied[m.Version] {
			state.Pending = append(state.Pending, m.String())
		}
	}
	return state
}

// selectMigrations выбирает при подъёме неприменённые по возрастанию версии, при откате
// применённые по убыванию. steps<=0 снимает ограничение.
func selectMigrations(known []migration, applied map[int64]bool, direction migrationDirection, steps int) ([]migration, error) {
	var todo []migration
	switch direction {
	case migrationUp:
		for _, m := range known {
			if !applied[m.Version] {
				todo = append(todo, m)
			}
		}
	case migrationDown:
		versions := slices.Sorted(maps.Keys(applied))
		slices.Reverse(versions)
		for _, v := range versions {
			idx := slices.IndexFunc(known, func(m migration) bool { return m.Version == v })
			if idx < 0 {
				return nil, fmt.Errorf("cannot rollback unknown migration version %d", v)
			}
			todo = append(todo, known[idx])
		}
	default:
		return nil, fmt.Errorf("unsupported migration direction: %s", direction)
	}

	if steps > 0 && len(todo) > steps {
		todo = todo[:steps]
	}
	return todo, nil
}

func runMigration(ctx context.Context, conn *sql.Conn, m migration, direction migrationDirection) (err error) {
	body, record, args := m.UpSQL, insertVersion, []any{m.Version, m.Name}
	if direction == migrationDown {
		body, record, args = m.DownSQL, deleteVersion, []any{m.Version}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s migration %s: %w", direction, m, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("execute %s migration %s: %w", direction, m, err)
	}
	if _, err = tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("record %s migration %s: %w", direction, m, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s migration %s: %w", direction, m, err)
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}

// readMigrations собирает пары up/down из migrationsDir. У каждой версии
// должны быть оба файла с одинаковым именем и непустым телом.
func readMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, migrationsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := make(map[int64]*migration)
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		if err := addMigrationFile(fsys, entry.Name(), byVersion); err != nil {
			return nil, err
		}
	}
	if len(byVersion) == 0 {
		return nil, errors.New("no migration files found")
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration %s must have both up and down files", m)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

func addMigrationFile(fsys fs.FS, file string, byVersion map[int64]*migration) error {
	parts := migrationName.FindStringSubmatch(file)
	if parts == nil {
		return fmt.Errorf("invalid migration file name: %s", file)
	}
	version, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parse migration version from %s: %w", file, err)
	}
	name, direction := parts[2], migrationDirection(parts[3])

	raw, err := fs.ReadFile(fsys, path.Join(migrationsDir, file))
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", file, err)
	}
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return fmt.Errorf("migration file is empty: %s", file)
	}

	m := byVersion[version]
	switch {
	case m == nil:
		m = &migration{Version: version, Name: name}
		byVersion[version] = m
	case m.Name != name:
		return fmt.Errorf("migration name mismatch for version %d: %s vs %s", version, m.Name, name)
	}

	slot := &m.UpSQL
	if direction == migrationDown {
		slot = &m.DownSQL
	}
	if *slot != "" {
		return fmt.Errorf("duplicate %s migration for version %d", direction, version)
	}
	*slot = body
	return nil
}
