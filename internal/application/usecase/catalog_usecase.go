package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/inventory"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
)

// ListCacheInvalidator lo implementa *ItemUseCase. Borrar una categoría o un tag cambia
// los items embebidos en los listados cacheados.
type ListCacheInvalidator interface {
	InvalidateListCache(ctx context.Context)
}

// PageInput parámetros de paginación crudos y URL absoluta para los enlaces.
type PageInput struct {
	Page        string
	PageSize    string
	AbsoluteURL string
}

// validateName reglas comunes de nombre para categorías y tags.
func validateName(name string) (string, *domain.ValidationError) {
	verr := domain.NewValidationError()
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		verr.Add("name", msgBlankName)
	case utf8.RuneCountInString(name) > dto.MaxNameLength:
		verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", dto.MaxNameLength))
	}
	return name, verr
}

const msgBlankName = "This field may not be blank."

// CategoryUseCase CRUD de categorías.
type CategoryUseCase struct {
	repo        repository.CategoryRepository
	invalidator ListCacheInvalidator
	pagination  inventory.Pagination
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, invalidator ListCacheInvalidator, p inventory.Pagination) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, invalidator: invalidator, pagination: p}
}

// Create crea una categoría con nombre único.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.NameRequest) (*dto.CategoryResponse, error) {
	name, verr := validateName(in.Name)
	if verr.HasErrors() {
		return nil, verr
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nameTaken("category")
	}
	now := time.Now().UTC()
	c := &entity.Category{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := uc.repo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nameTaken("category")
		}
		return nil, err
	}
	out := dto.ToCategoryResponse(c)
	return &out, nil
}

// Get obtiene una categoría por nombre.
func (uc *CategoryUseCase) Get(ctx context.Context, name string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ToCategoryResponse(c)
	return &out, nil
}

// List lista categorías por nombre, paginadas.
func (uc *CategoryUseCase) List(ctx context.Context, in PageInput) (*dto.CategoryListResponse, error) {
	count, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	w, err := resolvePage(uc.pagination, in.Page, in.PageSize, count)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, w.Size, w.Offset())
	if err != nil {
		return nil, err
	}
	out := &dto.CategoryListResponse{Count: count, Results: make([]dto.CategoryResponse, 0, len(list))}
	out.Next, out.Previous = pageLinks(in.AbsoluteURL, w)
	for _, c := range list {
		out.Results = append(out.Results, dto.ToCategoryResponse(c))
	}
	return out, nil
}

// Delete elimina la categoría; sus items quedan sin categoría y se invalida el listado de items.
func (uc *CategoryUseCase) Delete(ctx context.Context, name string) error {
	c, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	uc.invalidator.InvalidateListCache(ctx)
	return nil
}

// TagUseCase CRUD de tags.
type TagUseCase struct {
	repo        repository.TagRepository
	invalidator ListCacheInvalidator
	pagination  inventory.Pagination
}

// NewTagUseCase construye el caso de uso.
func NewTagUseCase(repo repository.TagRepository, invalidator ListCacheInvalidator, p inventory.Pagination) *TagUseCase {
	return &TagUseCase{repo: repo, invalidator: invalidator, pagination: p}
}

// Create crea un tag con nombre único.
func (uc *TagUseCase) Create(ctx context.Context, in dto.NameRequest) (*dto.TagResponse, error) {
	name, verr := validateName(in.Name)
	if verr.HasErrors() {
		return nil, verr
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nameTaken("tag")
	}
	now := time.Now().UTC()
	t := &entity.Tag{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := uc.repo.Create(ctx, t); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nameTaken("tag")
		}
		return nil, err
	}
	out := dto.ToTagResponse(t)
	return &out, nil
}

// Get obtiene un tag por nombre.
func (uc *TagUseCase) Get(ctx context.Context, name string) (*dto.TagResponse, error) {
	t, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.ToTagResponse(t)
	return &out, nil
}

// List lista tags por nombre, paginados.
func (uc *TagUseCase) List(ctx context.Context, in PageInput) (*dto.TagListResponse, error) {
	count, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	w, err := resolvePage(uc.pagination, in.Page, in.PageSize, count)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, w.Size, w.Offset())
	if err != nil {
		return nil, err
	}
	out := &dto.TagListResponse{Count: count, Results: make([]dto.TagResponse, 0, len(list))}
	out.Next, out.Previous = pageLinks(in.AbsoluteURL, w)
	for _, t := range list {
		out.Results = append(out.Results, dto.ToTagResponse(t))
	}
	return out, nil
}

// Delete elimina el tag y sus asociaciones; invalida el listado de items.
func (uc *TagUseCase) Delete(ctx context.Context, name string) error {
	t, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, t.ID); err != nil {
		return err
	}
	uc.invalidator.InvalidateListCache(ctx)
	return nil
}

func nameTaken(kind string) error {
	verr := domain.NewValidationError()
	verr.Add("name", kind+" with this name already exists.")
	return verr
}
