package models

import "github.com/google/uuid"

// SocialLink is an outbound social-media URL owned by a station.
type SocialLink struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Platform *Platform `json:"platform"`
}
