package repository

import (
	"context"

	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
// Los métodos Get devuelven (nil, nil) si no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetBySKU(ctx context.Context, sku string) (*entity.Item, error)
	// Update reescribe la fila y reemplaza el conjunto de tags del item.
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q inventory.ItemQuery) ([]*entity.Item, error)
	Count(ctx context.Context, f inventory.ItemFilter) (int, error)
}
