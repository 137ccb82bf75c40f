package dto

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/jhoicas/inventory-items/internal/domain"
)

// ErrInvalidBody cuerpo que no es un objeto JSON.
var ErrInvalidBody = errors.New("cuerpo inválido")

// Page envoltorio de listados paginados: total, enlaces y resultados de la página.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ErrorResponse cuerpo de error HTTP. Fields enumera los campos inválidos.
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

// Mensajes de validación compartidos.
const (
	msgRequired     = "This field is required."
	msgNull         = "This field may not be null."
	msgBlank        = "This field may not be blank."
	msgNotString    = "Not a valid string."
	msgUnknownField = "Unknown field."
)

// decodeObject decodifica el cuerpo como objeto JSON campo a campo.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, ErrInvalidBody
	}
	return raw, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// decodeString lee un string no nulo; registra el error en verr si no lo es.
func decodeString(verr *domain.ValidationError, field string, v json.RawMessage) (string, bool) {
	if isNull(v) {
		verr.Add(field, msgNull)
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		verr.Add(field, msgNotString)
		return "", false
	}
	return s, true
}

// NameRequest cuerpo de creación de Category y Tag.
type NameRequest struct {
	Name string `json:"name"`
}

// ParseNameRequest parsea estrictamente {"name": "..."}.
func ParseNameRequest(body []byte) (*NameRequest, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	verr := domain.NewValidationError()
	var out NameRequest
	seen := false
	for k, v := range raw {
		if k != "name" {
			verr.Add(k, msgUnknownField)
			continue
		}
		seen = true
		if s, ok := decodeString(verr, k, v); ok {
			out.Name = s
		}
	}
	if !seen {
		verr.Add("name", msgRequired)
	}
	return &out, verr.OrNil()
}
