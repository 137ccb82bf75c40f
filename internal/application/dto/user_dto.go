package dto

// TokenObtainRequest credenciales para POST /api/token/.
type TokenObtainRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPairResponse par de tokens JWT (access de corta vida, refresh de larga vida).
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenRefreshRequest cuerpo de POST /api/token/refresh/.
type TokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenRefreshResponse nuevo access token.
type TokenRefreshResponse struct {
	Access string `json:"access"`
}

// CreateUserRequest entrada del comando createuser.
type CreateUserRequest struct {
	Username string
	Password string
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsActive bool   `json:"is_active"`
}
