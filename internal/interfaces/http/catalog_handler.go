package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/application/usecase"
	"github.com/jhoicas/inventory-items/pkg/logger"
)

// CategoryHandler CRUD de categorías (protegido).
type CategoryHandler struct {
	uc  *usecase.CategoryUseCase
	log *logger.Logger
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(uc *usecase.CategoryUseCase, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar categorías
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        page       query  string  false  "Página"
// @Param        page_size  query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.CategoryListResponse
// @Router       /categories/ [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageInput(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NameRequest  true  "Nombre"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /categories/ [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	in, err := dto.ParseNameRequest(c.Body())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), *in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Retrieve godoc
// @Summary      Obtener categoría
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "Nombre"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /categories/{name}/ [get]
func (h *CategoryHandler) Retrieve(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), nameParam(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar categoría
// @Description  Los items de la categoría quedan sin categoría.
// @Tags         categories
// @Security     Bearer
// @Param        name  path  string  true  "Nombre"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /categories/{name}/ [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), nameParam(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TagHandler CRUD de tags (protegido).
type TagHandler struct {
	uc  *usecase.TagUseCase
	log *logger.Logger
}

// NewTagHandler construye el handler.
func NewTagHandler(uc *usecase.TagUseCase, log *logger.Logger) *TagHandler {
	return &TagHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar tags
// @Tags         tags
// @Security     Bearer
// @Produce      json
// @Param        page       query  string  false  "Página"
// @Param        page_size  query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.TagListResponse
// @Router       /tags/ [get]
func (h *TagHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageInput(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear tag
// @Tags         tags
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NameRequest  true  "Nombre"
// @Success      201   {object}  dto.TagResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /tags/ [post]
func (h *TagHandler) Create(c *fiber.Ctx) error {
	in, err := dto.ParseNameRequest(c.Body())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), *in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Retrieve godoc
// @Summary      Obtener tag
// @Tags         tags
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "Nombre"
// @Success      200   {object}  dto.TagResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tags/{name}/ [get]
func (h *TagHandler) Retrieve(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), nameParam(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar tag
// @Tags         tags
// @Security     Bearer
// @Param        name  path  string  true  "Nombre"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tags/{name}/ [delete]
func (h *TagHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), nameParam(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func pageInput(c *fiber.Ctx) usecase.PageInput {
	return usecase.PageInput{
		Page:        c.Query("page"),
		PageSize:    c.Query("page_size"),
		AbsoluteURL: c.BaseURL() + c.OriginalURL(),
	}
}

func nameParam(c *fiber.Ctx) string {
	raw := c.Params("name")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}
