package sqlite

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-items/internal/application/usecase"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
)

var _ usecase.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SQLite.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{store: s}
}

// Run abre una tx, pasa a fn repos atados a ella y hace Commit; Rollback si fn falla.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.ItemRepository,
	categories repository.CategoryRepository,
	tags repository.TagRepository,
) error) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&ItemRepo{q: tx}, &CategoryRepo{q: tx}, &TagRepo{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
