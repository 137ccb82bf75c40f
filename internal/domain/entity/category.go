package entity

import "time"

// Category representa una categoría de items. El nombre es único.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
