package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN         string        `envconfig:"DSN" split_words:"true"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
}

type memoryItemModel struct {
	bun.BaseModel `bun:"table:memory_items,alias:mi"`

	Namespace string    `bun:"namespace,pk"`
	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PostgresStore keeps items in the memory_items table, one row per
// (namespace, key).
type PostgresStore struct {
	db  *bun.DB
	now func() time.Time
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if cfg.DialTimeout > 0 {
		opts = append(opts, pgdriver.WithDialTimeout(cfg.DialTimeout))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))

	store := NewPostgresStoreFromDB(bun.NewDB(sqldb, pgdialect.New()))
	if err := store.EnsureSchema(ctx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return store, nil
}

func NewPostgresStoreFromDB(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*memoryItemModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create memory_items table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, ns Namespace) ([]Item, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}

	var rows []memoryItemModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("namespace = ?", ns.Key()).
		OrderExpr("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select memory items: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, Item{
			Namespace: ns,
			Key:       r.Key,
			Value:     json.RawMessage(r.Value),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return items, nil
}

func (s *PostgresStore) Put(ctx context.Context, ns Namespace, key string, value json.RawMessage) error {
	if err := checkPut(ns, key, value); err != nil {
		return err
	}

	now := s.now().UTC()
	row := &memoryItemModel{
		Namespace: ns.Key(),
		Key:       key,
		Value:     string(value),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (namespace, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert memory item: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
