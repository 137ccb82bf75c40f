package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/pkg/logger"
)

// Códigos de error de la API.
const (
	CodeValidation   = "VALIDATION"
	CodeInvalidBody  = "INVALID_BODY"
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidPage  = "INVALID_PAGE"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL"
)

// respondError traduce errores de dominio a respuestas HTTP. Lo no reconocido es 500 y se registra.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: CodeValidation, Message: "datos inválidos", Fields: verr.Fields,
		})
	case errors.Is(err, dto.ErrInvalidBody):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: "JSON parse error"})
	case errors.Is(err, domain.ErrInvalidPage):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: CodeInvalidPage, Message: "Invalid page."})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: CodeNotFound, Message: "No encontrado."})
	case errors.Is(err, domain.ErrUnauthorized):
		return unauthorized(c)
	case errors.Is(err, domain.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: CodeRateLimited, Message: "demasiadas solicitudes, intente más tarde"})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: CodeInternal, Message: "error interno"})
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api"`)
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Code: CodeUnauthorized, Message: "Authentication credentials were not provided or are invalid.",
	})
}

// ErrorHandler manejador global de Fiber: rutas inexistentes, métodos no permitidos y panics recuperados.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := CodeInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				code = CodeNotFound
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusBadRequest:
				code = CodeInvalidBody
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return respondError(c, log, err)
	}
}
