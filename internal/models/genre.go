package models

import (
	"time"

	"github.com/google/uuid"
)

// Genre is a musical genre a station can be tagged with.
type Genre struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}
