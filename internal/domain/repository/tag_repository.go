package repository

import (
	"context"

	"github.com/jhoicas/inventory-items/internal/domain/entity"
)

// TagRepository define el puerto de persistencia para Tag (DIP).
type TagRepository interface {
	Create(ctx context.Context, tag *entity.Tag) error
	GetByName(ctx context.Context, name string) (*entity.Tag, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Tag, error)
	Count(ctx context.Context) (int, error)
	// Delete elimina el tag y sus asociaciones con items.
	Delete(ctx context.Context, id string) error
}
