package models

import (
	"time"

	"github.com/google/uuid"
)

// Country is a broadcasting country (ISO-like code, display name, flag asset path).
type Country struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	FlagURL   string     `json:"flagUrl"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}
