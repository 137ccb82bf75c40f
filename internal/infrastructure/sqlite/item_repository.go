package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
	"github.com/jhoicas/inventory-items/internal/infrastructure/sqlquery"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo puerto ItemRepository sobre SQLite. Create y Update escriben item + item_tags:
// llamarlos dentro de TxRunner.
type ItemRepo struct {
	q querier
}

// NewItemRepository construye el repo sobre la base (o una tx vía TxRunner).
func NewItemRepository(s *Store) *ItemRepo {
	return &ItemRepo{q: s.db}
}

// Create persiste un item y sus tags.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO items (id, sku, name, category_id, stock_status, in_stock, available_stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SKU, item.Name, categoryID(item), item.StockStatus,
		item.InStock.IntPart(), item.AvailableStock.IntPart(), toMillis(item.CreatedAt), toMillis(item.UpdatedAt),
	)
	if err != nil {
		return writeErr("insert item", err)
	}
	return r.replaceTags(ctx, item)
}

// GetBySKU obtiene un item por SKU exacto; (nil, nil) si no existe.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	query := `SELECT ` + sqlquery.ItemColumns + ` ` + sqlquery.ItemFrom + ` WHERE i.sku = ?`
	item, err := scanItem(r.q.QueryRowContext(ctx, query, sku))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by sku: %w", err)
	}
	if err := r.loadTags(ctx, []*entity.Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// Update reescribe el item y reemplaza sus tags.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE items SET sku = ?, name = ?, category_id = ?, stock_status = ?,
			in_stock = ?, available_stock = ?, updated_at = ?
		WHERE id = ?`,
		item.SKU, item.Name, categoryID(item), item.StockStatus,
		item.InStock.IntPart(), item.AvailableStock.IntPart(), toMillis(item.UpdatedAt), item.ID,
	)
	if err != nil {
		return writeErr("update item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return r.replaceTags(ctx, item)
}

// Delete elimina un item por ID.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List página de items filtrada y ordenada.
func (r *ItemRepo) List(ctx context.Context, q inventory.ItemQuery) ([]*entity.Item, error) {
	query, args := sqlquery.ListItems(sqlquery.Question, q)
	rows, err := r.q.QueryContext(ctx, query, args...)
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
	query, args := sqlquery.CountItems(sqlquery.Question, f)
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (r *ItemRepo) replaceTags(ctx context.Context, item *entity.Item) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, item.ID); err != nil {
		return fmt.Errorf("clear item tags: %w", err)
	}
	for _, t := range item.Tags {
		if _, err := r.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO item_tags (item_id, tag_id) VALUES (?, ?)`, item.ID, t.ID,
		); err != nil {
			return writeErr("insert item tag", err)
		}
	}
	return nil
}

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
	query, args := sqlquery.TagsForItems(sqlquery.Question, ids)
	rows, err := r.q.QueryContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*entity.Item, error) {
	var it entity.Item
	var createdAt, updatedAt int64
	var catID, catName sql.NullString
	if err := row.Scan(
		&it.ID, &it.SKU, &it.Name, &it.StockStatus, &it.InStock, &it.AvailableStock,
		&createdAt, &updatedAt, &catID, &catName,
	); err != nil {
		return nil, err
	}
	it.CreatedAt = fromMillis(createdAt)
	it.UpdatedAt = fromMillis(updatedAt)
	if catID.Valid && catName.Valid {
		it.Category = &entity.Category{ID: catID.String, Name: catName.String}
	}
	return &it, nil
}

func categoryID(item *entity.Item) sql.NullString {
	if item.Category == nil {
		return sql.NullString{}
	}
	return nullString(&item.Category.ID)
}
