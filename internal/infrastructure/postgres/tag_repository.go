package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
)

var _ repository.TagRepository = (*TagRepo)(nil)

// TagRepo implementación de TagRepository sobre PostgreSQL (usable con pool o tx).
type TagRepo struct {
	q Querier
}

// NewTagRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTagRepository(q Querier) *TagRepo {
	return &TagRepo{q: q}
}

// Create persiste un tag nuevo.
func (r *TagRepo) Create(ctx context.Context, t *entity.Tag) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO tags (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// GetByName obtiene un tag por nombre exacto.
func (r *TagRepo) GetByName(ctx context.Context, name string) (*entity.Tag, error) {
	var t entity.Tag
	err := r.q.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM tags WHERE name = $1`, name,
	).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &t, nil
}

// List lista tags ordenados por nombre.
func (r *TagRepo) List(ctx context.Context, limit, offset int) ([]*entity.Tag, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM tags ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	var list []*entity.Tag
	for rows.Next() {
		var t entity.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// Count total de tags.
func (r *TagRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}

// Delete elimina el tag; item_tags cae en cascada.
func (r *TagRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
