package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventory-items/internal/application/dto"
	"github.com/jhoicas/inventory-items/internal/domain"
	"github.com/jhoicas/inventory-items/internal/domain/entity"
	"github.com/jhoicas/inventory-items/internal/domain/repository"
	"github.com/jhoicas/inventory-items/pkg/jwt"
)

// MinPasswordLength longitud mínima de contraseña al crear usuarios.
const MinPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret         string
	AccessMinutes  int
	RefreshMinutes int
	Issuer         string
}

// AuthUseCase emisión y renovación de tokens, alta de usuarios y verificación del principal.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// CreateUser crea un usuario activo con la contraseña hasheada con bcrypt.
func (uc *AuthUseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	verr := domain.NewValidationError()
	if username == "" {
		verr.Add("username", "This field may not be blank.")
	}
	if len(in.Password) < MinPasswordLength {
		verr.Add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if verr.HasErrors() {
		return nil, verr
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return &dto.UserResponse{ID: user.ID, Username: user.Username, IsActive: user.IsActive}, nil
}

// ObtainToken verifica usuario/contraseña y emite el par access + refresh.
// Usuario inexistente, contraseña incorrecta o cuenta inactiva responden igual (ErrUnauthorized).
func (uc *AuthUseCase) ObtainToken(ctx context.Context, in dto.TokenObtainRequest) (*dto.TokenPairResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	access, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, jwt.TokenTypeAccess, uc.jwtCfg.Issuer, uc.jwtCfg.AccessMinutes)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, jwt.TokenTypeRefresh, uc.jwtCfg.Issuer, uc.jwtCfg.RefreshMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairResponse{Access: access, Refresh: refresh}, nil
}

// Refresh emite un nuevo access token a partir de un refresh token válido de un usuario activo.
func (uc *AuthUseCase) Refresh(ctx context.Context, in dto.TokenRefreshRequest) (*dto.TokenRefreshResponse, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, strings.TrimSpace(in.Refresh), jwt.TokenTypeRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	active, err := uc.IsActiveUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, domain.ErrUnauthorized
	}
	access, err := jwt.Generate(uc.jwtCfg.Secret, claims.UserID, claims.Username, jwt.TokenTypeAccess, uc.jwtCfg.Issuer, uc.jwtCfg.AccessMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenRefreshResponse{Access: access}, nil
}

// IsActiveUser informa si el usuario existe y está activo. Lo usa el middleware de auth.
func (uc *AuthUseCase) IsActiveUser(ctx context.Context, userID string) (bool, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsActive, nil
}
