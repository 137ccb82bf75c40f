package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
	"github.com/jhoicas/inventory-items/internal/infrastructure/sqlquery"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
// Create y Update escriben varias filas (item + item_tags): llamarlos dentro de TxRunner.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para items. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo item y sus tags.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (id, sku, name, category_id, stock_status, in_stock, available_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SKU, item.Name, categoryID(item), item.StockStatus,
		item.InStock, item.AvailableStock, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert item", err)
	}
	return r.replaceTags(ctx, item)
}

// GetBySKU obtiene un item por SKU exacto, con categoría y tags.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	query := `SELECT ` + sqlquery.ItemColumns + ` ` + sqlquery.ItemFrom + ` WHERE i.sku = $1`
	item, err := scanItem(r.q.QueryRow(ctx, query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by sku: %w", err)
	}
	if err := r.loadTags(ctx, []*entity.Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// Update reescribe la fila del item y reemplaza sus tags.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET sku = $2, name = $3, category_id = $4, stock_status = $5,
			in_stock = $6, available_stock = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.SKU, item.Name, categoryID(item), item.StockStatus,
		item.InStock, item.AvailableStock, item.UpdatedAt,
	)
	if err != nil {
		return writeErr("update item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.replaceTags(ctx, item)
}

// Delete elimina un item por ID (item_tags cae en cascada).
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve una página de items filtrada y ordenada.
func (r *ItemRepo) List(ctx context.Context, q inventory.ItemQuery) ([]*entity.Item, error) {
	query, args := sqlquery.ListItems(sqlquery.Dollar, q)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if err := r.loadTags(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Count cuenta los items que cumplen el filtro.
func (r *ItemRepo) Count(ctx context.Context, f inventory.ItemFilter) (int, error) {
	query, args := sqlquery.CountItems(sqlquery.Dollar, f)
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (r *ItemRepo) replaceTags(ctx context.Context, item *entity.Item) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM item_tags WHERE item_id = $1`, item.ID); err != nil {
		return fmt.Errorf("clear item tags: %w", err)
	}
	for _, t := range item.Tags {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO item_tags (item_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			item.ID, t.ID,
		); err != nil {
			return writeErr("insert item tag", err)
		}
	}
	return nil
}

// loadTags completa Tags de cada item con una sola consulta.
func (r *ItemRepo) loadTags(ctx context.Context, items []*entity.Item) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Item, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		it.Tags = []entity.Tag{}
		byID[it.ID] = it
		ids = append(ids, it.ID)
	}
	query, args := sqlquery.TagsForItems(sqlquery.Dollar, ids)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load item tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var itemID string
		var t entity.Tag
		if err := rows.Scan(&itemID, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("scan item tag: %w", err)
		}
		if it, ok := byID[itemID]; ok {
			it.Tags = append(it.Tags, t)
		}
	}
	return rows.Err()
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	var catID, catName *string
	if err := row.Scan(
		&it.ID, &it.SKU, &it.Name, &it.StockStatus, &it.InStock, &it.AvailableStock,
		&it.CreatedAt, &it.UpdatedAt, &catID, &catName,
	); err != nil {
		return nil, err
	}
	if catID != nil && catName != nil {
		it.Category = &entity.Category{ID: *catID, Name: *catName}
	}
	return &it, nil
}

func categoryID(item *entity.Item) *string {
	if item.Category == nil {
		return nil
	}
	return &item.Category.ID
}

// writeErr traduce violaciones de unicidad y de clave foránea a errores de dominio.
func writeErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrStaleReference
	}
	return fmt.Errorf("%s: %w", op, err)
}
