package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-items/internal/application/auth"
	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/pkg/logger"
)

// AuthHandler emisión y renovación de tokens (público).
type AuthHandler struct {
	uc  *auth.AuthUseCase
	log *logger.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// ObtainToken godoc
// @Summary      Obtener par de tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TokenObtainRequest  true  "username, password"
// @Success      200   {object}  dto.TokenPairResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/token/ [post]
func (h *AuthHandler) ObtainToken(c *fiber.Ctx) error {
	var in dto.TokenObtainRequest
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return respondError(c, h.log, dto.ErrInvalidBody)
	}
	verr := domain.NewValidationError()
	if in.Username == "" {
		verr.Add("username", "This field is required.")
	}
	if in.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if verr.HasErrors() {
		return respondError(c, h.log, verr)
	}
	out, err := h.uc.ObtainToken(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Refresh godoc
// @Summary      Renovar access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TokenRefreshRequest  true  "refresh"
// @Success      200   {object}  dto.TokenRefreshResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/token/refresh/ [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var in dto.TokenRefreshRequest
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return respondError(c, h.log, dto.ErrInvalidBody)
	}
	if in.Refresh == "" {
		verr := domain.NewValidationError()
		verr.Add("refresh", "This field is required.")
		return respondError(c, h.log, verr)
	}
	out, err := h.uc.Refresh(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
