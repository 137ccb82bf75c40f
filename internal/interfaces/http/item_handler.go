package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/application/usecase"
	"github.com/jhoicas/inventory-items/pkg/logger"
)

// HeaderCache indica si el listado salió de la caché (HIT) o del store (MISS).
const HeaderCache = "X-Cache"

// ItemHandler maneja las peticiones HTTP para Item (protegido).
type ItemHandler struct {
	uc  *usecase.ItemUseCase
	log *logger.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *usecase.ItemUseCase, log *logger.Logger) *ItemHandler {
	return &ItemHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar items
// @Description  Filtros, orden y paginación. La respuesta se cachea 15 minutos por ruta completa.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        stock_status  query  string  false  "IN, OUT o BO"
// @Param        SKU           query  string  false  "SKU exacto (sin distinguir mayúsculas)"
// @Param        name          query  string  false  "Contiene (sin distinguir mayúsculas)"
// @Param        ordering      query  string  false  "Campos separados por coma, '-' para descendente"
// @Param        page          query  string  false  "Número de página o 'last'"
// @Param        page_size     query  int     false  "Tamaño de página (máx. 100)"  default(10)
// @Success      200  {object}  dto.ItemListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /items/ [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	res, err := h.uc.List(c.UserContext(), usecase.ListInput{
		RequestURI:  c.OriginalURL(),
		AbsoluteURL: c.BaseURL() + c.OriginalURL(),
		Query:       listRequest(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	if res.Cached {
		c.Set(HeaderCache, "HIT")
	} else {
		c.Set(HeaderCache, "MISS")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(res.Body)
}

// Retrieve godoc
// @Summary      Obtener item por SKU
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU"
// @Success      200  {object}  dto.ItemResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /items/{sku}/ [get]
func (h *ItemHandler) Retrieve(c *fiber.Ctx) error {
	out, err := h.uc.Retrieve(c.UserContext(), skuParam(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear item
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ItemResponse  true  "Datos del item (category y tags por nombre)"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /items/ [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	in, err := dto.ParseItemWriteRequest(c.Body())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Replace godoc
// @Summary      Reemplazar item
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string  true  "SKU"
// @Param        body  body  dto.ItemResponse  true  "SKU, name, in_stock y available_stock obligatorios"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /items/{sku}/ [put]
func (h *ItemHandler) Replace(c *fiber.Ctx) error {
	in, err := dto.ParseItemWriteRequest(c.Body())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Replace(c.UserContext(), skuParam(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// PartialUpdate godoc
// @Summary      Actualizar campos de un item
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string  true  "SKU"
// @Param        body  body  dto.ItemResponse  true  "Solo los campos a cambiar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /items/{sku}/ [patch]
func (h *ItemHandler) PartialUpdate(c *fiber.Ctx) error {
	in, err := dto.ParseItemWriteRequest(c.Body())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.PartialUpdate(c.UserContext(), skuParam(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar item
// @Tags         items
// @Security     Bearer
// @Param        sku  path  string  true  "SKU"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /items/{sku}/ [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), skuParam(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StockReport godoc
// @Summary      Reporte PDF de existencias
// @Description  Mismos filtros y orden que el listado, sin paginar (máx. 1000 filas). No se cachea.
// @Tags         items
// @Security     Bearer
// @Produce      application/pdf
// @Param        stock_status  query  string  false  "IN, OUT o BO"
// @Param        SKU           query  string  false  "SKU exacto"
// @Param        name          query  string  false  "Contiene"
// @Param        ordering      query  string  false  "Orden"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /reports/stock.pdf [get]
func (h *ItemHandler) StockReport(c *fiber.Ctx) error {
	pdf, err := h.uc.StockReport(c.UserContext(), listRequest(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="stock-report.pdf"`)
	return c.Send(pdf)
}

// listRequest lee los parámetros del listado tal cual (sin normalizar).
func listRequest(c *fiber.Ctx) dto.ItemListRequest {
	return dto.ItemListRequest{
		StockStatus: c.Query("stock_status"),
		SKU:         c.Query("SKU"),
		Name:        c.Query("name"),
		Ordering:    c.Query("ordering"),
		Page:        c.Query("page"),
		PageSize:    c.Query("page_size"),
	}
}

// skuParam SKU de la ruta, decodificado.
func skuParam(c *fiber.Ctx) string {
	raw := c.Params("sku")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}
