package repository

import (
	"context"

	"github.com/jhoicas/inventory-items/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Category, error)
	Count(ctx context.Context) (int, error)
	// Delete elimina la categoría; los items que la referencian quedan sin categoría.
	Delete(ctx context.Context, id string) error
}
