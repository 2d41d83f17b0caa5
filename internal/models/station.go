package models

import (
	"time"

	"github.com/google/uuid"
)

// Station is a radio broadcaster. Reads return it fully hydrated: Country,
// Genres and SocialLinks are always attached.
type Station struct {
	ID                  uuid.UUID    `json:"id"`
	Name                string       `json:"name"`
	Slug                string       `json:"slug"`
	StreamURL           string       `json:"streamUrl"`
	LogoURL             *string      `json:"logoUrl"`
	Description         *string      `json:"description"`
	ExtendedDescription *string      `json:"extendedDescription"`
	City                *string      `json:"city"`
	Frequency           *string      `json:"frequency"`
	Website             *string      `json:"website"`
	Slogan              *string      `json:"slogan"`
	Founded             *string      `json:"founded"`
	Enriched            bool         `json:"enriched"`
	EnrichedAt          *time.Time   `json:"enrichedAt"`
	Active              bool         `json:"active"`
	CountryID           *uuid.UUID   `json:"-"`
	Country             *Country     `json:"country"`
	Genres              []Genre      `json:"genres"`
	SocialLinks         []SocialLink `json:"socialLinks"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// GenreIDs returns the ids of the station's genres.
func (s *Station) GenreIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Genres))
	for _, g := range s.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// StationSlug is one sitemap entry.
type StationSlug struct {
	Slug        string    `json:"slug"`
	CountryCode string    `json:"countryCode"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StationWithRelated is a station plus its recommended related stations.
type StationWithRelated struct {
	Station         *Station  `json:"station"`
	RelatedStations []Station `json:"relatedStations"`
}
