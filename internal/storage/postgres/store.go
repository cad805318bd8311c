package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const (
	applicationName = "scm-server"
	pingTimeout     = 5 * time.Second
	opTimeout       = 5 * time.Second
)

var errStoreClosed = errors.New("postgres store is not initialized")

// Pool описывает ограничения пула database/sql.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// DefaultPool подходит для одного инстанса дашборда.
var DefaultPool = Pool{
	MaxOpen:     25,
	MaxIdle:     25,
	MaxLifetime: 30 * time.Minute,
	MaxIdleTime: 5 * time.Minute,
}

func (p Pool) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
	db.SetConnMaxIdleTime(p.MaxIdleTime)
}

// Store держит пул соединений к PostgreSQL через драйвер pgx.
type Store struct {
	db *sql.DB
}

// Open разбирает DSN, открывает пул и дожидается ответа базы.
// Некорректный DSN отклоняется до попытки соединения.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if _, ok := cfg.RuntimeParams["application_name"]; !ok {
		cfg.RuntimeParams["application_name"] = applicationName
	}

	db := stdlib.OpenDB(*cfg)
	DefaultPool.apply(db)

	store := &Store{db: db}
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return store, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// Repositories собирает все репозитории поверх одного пула.
func (s *Store) Repositories() domain.Repositories {
	return domain.Repositories{
		Contractors: NewContractorRepository(s),
		Warehouses:  NewWarehouseRepository(s),
		Transport:   NewTransportRepository(s),
		Orders:      NewOrderRepository(s),
		Cargos:      NewCargoRepository(s),
		RouteLegs:   NewRouteLegRepository(s),
		Events:      NewTrackingEventRepository(s),
		Outbox:      NewOutboxRepository(s),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreClosed
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// EnsureSchema доводит схему до последней версии.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTx откатывает транзакцию, если fn вернула ошибку.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
