// Package storage elige el adaptador de persistencia (PostgreSQL o SQLite) según la configuración.
package storage

import (
	"context"

	"github.com/jhoicas/inventory-items/internal/application/usecase"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
	"github.com/jhoicas/inventory-items/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-items/internal/infrastructure/sqlite"
	"github.com/jhoicas/inventory-items/pkg/config"
)

// Storage repositorios y transacciones del driver elegido.
type Storage struct {
	Items      repository.ItemRepository
	Categories repository.CategoryRepository
	Tags       repository.TagRepository
	Users      repository.UserRepository
	Tx         usecase.TxRunner

	ping  func(ctx context.Context) error
	close func()
}

// Open abre el store de DB_DRIVER y aplica las migraciones pendientes.
func Open(ctx context.Context, cfg config.DBConfig) (*Storage, error) {
	if cfg.Driver == config.DBDriverPostgres {
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Storage{
			Items:      postgres.NewItemRepository(pool),
			Categories: postgres.NewCategoryRepository(pool),
			Tags:       postgres.NewTagRepository(pool),
			Users:      postgres.NewUserRepository(pool),
			Tx:         postgres.NewTxRunner(pool),
			ping:       pool.Ping,
			close:      pool.Close,
		}, nil
	}

	s, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return FromSQLite(s), nil
}

// FromSQLite arma el Storage sobre un store SQLite ya abierto.
func FromSQLite(s *sqlite.Store) *Storage {
	return &Storage{
		Items:      sqlite.NewItemRepository(s),
		Categories: sqlite.NewCategoryRepository(s),
		Tags:       sqlite.NewTagRepository(s),
		Users:      sqlite.NewUserRepository(s),
		Tx:         sqlite.NewTxRunner(s),
		ping:       s.Ping,
		close:      func() { _ = s.Close() },
	}
}

// Ping verifica la conexión. Se usa como health check.
func (s *Storage) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close libera las conexiones.
func (s *Storage) Close() { s.close() }
