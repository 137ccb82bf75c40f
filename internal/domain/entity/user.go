package entity

import "time"

// User representa un principal autenticable. No hay roles: cualquier usuario activo puede operar.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
