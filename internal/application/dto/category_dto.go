package dto

import "github.com/jhoicas/inventory-items/internal/domain/entity"

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	Name string `json:"name"`
}

// TagResponse salida de un tag.
type TagResponse struct {
	Name string `json:"name"`
}

// CategoryListResponse página de categorías.
type CategoryListResponse = Page[CategoryResponse]

// TagListResponse página de tags.
type TagListResponse = Page[TagResponse]

func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name}
}

func ToTagResponse(t *entity.Tag) TagResponse {
	return TagResponse{Name: t.Name}
}
