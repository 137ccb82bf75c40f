package entity

import "time"

// Tag etiqueta libre asociada a items (N:M, sin dueño).
type Tag struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
