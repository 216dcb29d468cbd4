package domain

import "time"

// Template is a reusable named prompt concept that can seed a generation
// request.
type Template struct {
	ID           int64
	Name         string
	Description  string
	TemplateText string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
