package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
)

var _ repository.TagRepository = (*TagRepo)(nil)

// TagRepo puerto TagRepository sobre SQLite.
type TagRepo struct {
	q querier
}

// NewTagRepository construye el repo.
func NewTagRepository(s *Store) *TagRepo {
	return &TagRepo{q: s.db}
}

func (r *TagRepo) Create(ctx context.Context, t *entity.Tag) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, toMillis(t.CreatedAt), toMillis(t.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (r *TagRepo) GetByName(ctx context.Context, name string) (*entity.Tag, error) {
	var t entity.Tag
	var createdAt, updatedAt int64
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM tags WHERE name = ?`, name,
	).Scan(&t.ID, &t.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	t.CreatedAt, t.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
	return &t, nil
}

func (r *TagRepo) List(ctx context.Context, limit, offset int) ([]*entity.Tag, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM tags ORDER BY name LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	var list []*entity.Tag
	for rows.Next() {
		var t entity.Tag
		var createdAt, updatedAt int64
		if err := rows.Scan(&t.ID, &t.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.CreatedAt, t.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *TagRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}

// Delete elimina el tag; sus filas de item_tags caen en cascada.
func (r *TagRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
