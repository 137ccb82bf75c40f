package domain

import (
	"errors"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrInvalidPage  = errors.New("página inválida")
	ErrRateLimited  = errors.New("demasiadas solicitudes")
)

// ErrStaleReference la categoría o el tag referenciado se borró durante la escritura.
var ErrStaleReference = errors.New("referencia inexistente")

// ValidationError agrupa los errores de validación por campo (campo -> mensajes).
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError construye un error vacío listo para acumular campos.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add registra un mensaje para el campo.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// HasErrors indica si hay al menos un campo con error.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil devuelve el propio error si tiene campos, nil si no.
// Evita el clásico interface no-nil con puntero nil.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validación: " + strings.Join(parts, ", ")
}
