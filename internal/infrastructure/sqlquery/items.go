// Package sqlquery arma los fragmentos SQL del listado de items compartidos por los stores
// PostgreSQL y SQLite. Solo cambia el estilo de placeholder.
package sqlquery

import (
	"strconv"
	"strings"

	"github.com/jhoicas/inventory-items/internal/domain/inventory"
)

// Placeholder devuelve el marcador del n-ésimo argumento (1-based).
type Placeholder func(n int) string

// Dollar estilo PostgreSQL ($1, $2...).
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Question estilo SQLite (?). Los argumentos se ligan por posición.
func Question(int) string { return "?" }

// ItemColumns columnas del SELECT de items con su categoría (LEFT JOIN, puede ser NULL).
const ItemColumns = `i.id, i.sku, i.name, i.stock_status, i.in_stock, i.available_stock, i.created_at, i.updated_at, c.id, c.name`

// ItemFrom FROM común del listado.
const ItemFrom = `FROM items i LEFT JOIN categories c ON c.id = i.category_id`

// orderColumns mapea campos de ordenamiento a columnas.
var orderColumns = map[string]string{
	inventory.OrderSKU:            "i.sku",
	inventory.OrderName:           "i.name",
	inventory.OrderCategoryName:   "c.name",
	inventory.OrderStockStatus:    "i.stock_status",
	inventory.OrderInStock:        "i.in_stock",
	inventory.OrderAvailableStock: "i.available_stock",
}

// Builder acumula argumentos y numera placeholders.
type Builder struct {
	ph   Placeholder
	Args []any
}

// NewBuilder construye un builder con el estilo de placeholder del motor.
func NewBuilder(ph Placeholder) *Builder {
	return &Builder{ph: ph}
}

// Arg registra un argumento y devuelve su placeholder.
func (b *Builder) Arg(v any) string {
	b.Args = append(b.Args, v)
	return b.ph(len(b.Args))
}

// Where arma la cláusula WHERE del filtro ("" si no filtra).
//   - stock_status: igualdad.
//   - SKU: igualdad sin distinguir mayúsculas.
//   - name: contiene, sin distinguir mayúsculas; % y _ se toman literales.
func (b *Builder) Where(f inventory.ItemFilter) string {
	var conds []string
	if f.StockStatus != "" {
		conds = append(conds, "i.stock_status = "+b.Arg(f.StockStatus))
	}
	if f.SKU != "" {
		conds = append(conds, "UPPER(i.sku) = UPPER("+b.Arg(f.SKU)+")")
	}
	if f.Name != "" {
		conds = append(conds, "UPPER(i.name) LIKE UPPER("+b.Arg("%"+EscapeLike(f.Name)+"%")+`) ESCAPE '\'`)
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// OrderBy arma ORDER BY. Los items sin categoría van al final en ascendente y al inicio en descendente
// en ambos motores.
func OrderBy(terms []inventory.OrderTerm) string {
	if len(terms) == 0 {
		terms = []inventory.OrderTerm{{Field: inventory.OrderSKU}}
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		col, ok := orderColumns[t.Field]
		if !ok {
			continue
		}
		dir := " ASC"
		nulls := " NULLS LAST"
		if t.Desc {
			dir = " DESC"
			nulls = " NULLS FIRST"
		}
		if t.Field != inventory.OrderCategoryName {
			nulls = ""
		}
		parts = append(parts, col+dir+nulls)
	}
	if len(parts) == 0 {
		return " ORDER BY i.sku ASC"
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// LimitOffset arma LIMIT/OFFSET; limit <= 0 no limita.
func (b *Builder) LimitOffset(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	s := " LIMIT " + b.Arg(limit)
	if offset > 0 {
		s += " OFFSET " + b.Arg(offset)
	}
	return s
}

// In arma "(p1, p2, ...)" para una lista de valores.
func (b *Builder) In(values []string) string {
	ph := make([]string, 0, len(values))
	for _, v := range values {
		ph = append(ph, b.Arg(v))
	}
	return "(" + strings.Join(ph, ", ") + ")"
}

// ListItems consulta completa de una página de items.
func ListItems(ph Placeholder, q inventory.ItemQuery) (string, []any) {
	b := NewBuilder(ph)
	sql := "SELECT " + ItemColumns + " " + ItemFrom + b.Where(q.Filter) + OrderBy(q.Ordering) + b.LimitOffset(q.Limit, q.Offset)
	return sql, b.Args
}

// CountItems cuenta los items que cumplen el filtro.
func CountItems(ph Placeholder, f inventory.ItemFilter) (string, []any) {
	b := NewBuilder(ph)
	sql := "SELECT COUNT(*) " + ItemFrom + b.Where(f)
	return sql, b.Args
}

// TagsForItems trae los tags de un conjunto de items, ordenados por nombre.
func TagsForItems(ph Placeholder, itemIDs []string) (string, []any) {
	b := NewBuilder(ph)
	sql := "SELECT it.item_id, t.id, t.name FROM item_tags it JOIN tags t ON t.id = it.tag_id WHERE it.item_id IN " +
		b.In(itemIDs) + " ORDER BY t.name"
	return sql, b.Args
}

// EscapeLike escapa los comodines de LIKE con '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
