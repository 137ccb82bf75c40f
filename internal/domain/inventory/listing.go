package inventory

import (
	"strconv"
	"strings"

	"github.com/jhoicas/inventory-items/internal/domain"
)

// Campos por los que se puede ordenar el listado de items (allow-list).
const (
	OrderSKU            = "SKU"
	OrderName           = "name"
	OrderCategoryName   = "category__name"
	OrderStockStatus    = "stock_status"
	OrderInStock        = "in_stock"
	OrderAvailableStock = "available_stock"
)

// OrderableFields en el orden documentado.
var OrderableFields = []string{OrderSKU, OrderName, OrderCategoryName, OrderStockStatus, OrderInStock, OrderAvailableStock}

// OrderTerm un criterio de orden: campo y dirección.
type OrderTerm struct {
	Field string
	Desc  bool
}

func (o OrderTerm) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// ItemFilter filtros del listado. Un campo vacío no filtra.
//   - StockStatus: coincidencia exacta.
//   - SKU: coincidencia exacta sin distinguir mayúsculas.
//   - Name: subcadena sin distinguir mayúsculas.
type ItemFilter struct {
	StockStatus string
	SKU         string
	Name        string
}

// ItemQuery consulta completa que reciben los repositorios.
// Limit <= 0 significa sin límite.
type ItemQuery struct {
	Filter   ItemFilter
	Ordering []OrderTerm
	Limit    int
	Offset   int
}

func isOrderable(field string) bool {
	for _, f := range OrderableFields {
		if f == field {
			return true
		}
	}
	return false
}

// ParseOrdering interpreta el parámetro "ordering" (lista separada por comas, "-" = descendente).
// Los campos desconocidos se ignoran; si no queda ninguno se ordena por SKU ascendente.
// Siempre termina en SKU para que la paginación sea estable.
func ParseOrdering(raw string) []OrderTerm {
	var terms []OrderTerm
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if !isOrderable(field) || seen[field] {
			continue
		}
		seen[field] = true
		terms = append(terms, OrderTerm{Field: field, Desc: desc})
	}
	if !seen[OrderSKU] {
		terms = append(terms, OrderTerm{Field: OrderSKU})
	}
	return terms
}

// FormatOrdering es la inversa de ParseOrdering para términos ya normalizados.
func FormatOrdering(terms []OrderTerm) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ",")
}

// Pagination tamaños de página por defecto y máximo.
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPagination 10 por página, máximo 100.
var DefaultPagination = Pagination{DefaultSize: 10, MaxSize: 100}

// PageSize interpreta "page_size": vacío, no numérico o <= 0 usa el valor por defecto; se recorta al máximo.
func (p Pagination) PageSize(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return p.DefaultSize
	}
	if p.MaxSize > 0 && n > p.MaxSize {
		return p.MaxSize
	}
	return n
}

// PageNumber número de página pedido. Last indica la palabra clave "last".
type PageNumber struct {
	Number int
	Last   bool
}

// ParsePageNumber interpreta "page": vacío = 1, "last" = última, enteros >= 1; lo demás es ErrInvalidPage.
func ParsePageNumber(raw string) (PageNumber, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PageNumber{Number: 1}, nil
	}
	if raw == "last" {
		return PageNumber{Last: true}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return PageNumber{}, domain.ErrInvalidPage
	}
	return PageNumber{Number: n}, nil
}

// NumPages número de páginas para count elementos; nunca menos de 1 (la primera página vacía es válida).
func NumPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// Resolve devuelve la página efectiva o ErrInvalidPage si está fuera de rango.
func (p PageNumber) Resolve(count, size int) (int, error) {
	total := NumPages(count, size)
	if p.Last {
		return total, nil
	}
	if p.Number < 1 || p.Number > total {
		return 0, domain.ErrInvalidPage
	}
	return p.Number, nil
}
