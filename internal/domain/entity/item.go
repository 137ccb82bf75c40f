package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock válidos para Item.
const (
	StockStatusInStock    = "IN"
	StockStatusOutOfStock = "OUT"
	StockStatusBackorder  = "BO"
)

// StockStatuses lista los estados en el orden en que se documentan.
var StockStatuses = []string{StockStatusInStock, StockStatusOutOfStock, StockStatusBackorder}

// ValidStockStatus indica si s es uno de los tres estados permitidos.
func ValidStockStatus(s string) bool {
	switch s {
	case StockStatusInStock, StockStatusOutOfStock, StockStatusBackorder:
		return true
	}
	return false
}

// Item representa un artículo del inventario. El SKU es su identidad externa.
// AvailableStock debería ser <= InStock, pero no se valida.
type Item struct {
	ID             string
	SKU            string
	Name           string
	Category       *Category // nil si no tiene categoría
	Tags           []Tag
	StockStatus    string
	InStock        decimal.Decimal
	AvailableStock decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
