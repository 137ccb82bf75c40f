package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
)

// ListCache almacén clave/valor con TTL y borrado por prefijo para respuestas de listados ya serializadas.
// Get devuelve found=false en un miss; err solo ante fallos del backend.
type ListCache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.ItemRepository,
		categories repository.CategoryRepository,
		tags repository.TagRepository,
	) error) error
}

// StockReportGenerator genera el reporte PDF de existencias.
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, title string, items []*entity.Item) ([]byte, error)
}
