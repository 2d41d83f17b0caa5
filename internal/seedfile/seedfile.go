// Package seedfile reads the per-country JSON station files consumed by the
// import command.
package seedfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/voyagen/radiodir/internal/slug"
)

// Record is one station entry as it appears in a seed file.
type Record struct {
	Name                string   `json:"nombre"`
	StreamURL           string   `json:"url_stream"`
	LogoLocal           *string  `json:"logo_local"`
	Slug                string   `json:"slug,omitempty"`
	Description         string   `json:"descripcion,omitempty"`
	ExtendedDescription string   `json:"descripcion_extendida,omitempty"`
	OriginalDescription string   `json:"descripcion_original,omitempty"`
	Genres              []string `json:"generos,omitempty"`
	SocialLinks         []string `json:"redes_sociales,omitempty"`
	Website             string   `json:"sitio_web,omitempty"`
	City                string   `json:"ciudad,omitempty"`
	Frequency           string   `json:"frecuencia,omitempty"`
	Slogan              string   `json:"eslogan,omitempty"`
	Founded             string   `json:"fundacion,omitempty"`
	Enriched            bool     `json:"contenido_enriquecido,omitempty"`
	EnrichedAtRaw       string   `json:"fecha_enriquecimiento,omitempty"`

	// Err is set when the element could not be decoded into a Record. Name
	// is still filled in when the element carries a string "nombre".
	Err error `json:"-"`
}

// ReadFile opens and parses a seed file. A missing file yields an error
// matching fs.ErrNotExist.
func ReadFile(name string) ([]Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return recs, nil
}

// Parse decodes a JSON array of records from r. Only input that is not a
// JSON array is an error; an element that does not fit Record is returned
// with Err set so the caller can count it and move on.
func Parse(r io.Reader) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode seed records: %w", err)
	}
	recs := make([]Record, len(raw))
	for i, elem := range raw {
		if err := json.Unmarshal(elem, &recs[i]); err != nil {
			recs[i] = Record{Name: nameOf(elem), Err: fmt.Errorf("record %d: %w", i, err)}
		}
	}
	return recs, nil
}

// nameOf extracts "nombre" from an element that failed to decode.
func nameOf(elem json.RawMessage) string {
	var named struct {
		Name any `json:"nombre"`
	}
	if json.Unmarshal(elem, &named) != nil {
		return ""
	}
	name, _ := named.Name.(string)
	return name
}

// StationSlug returns the explicit slug if set, otherwise one derived from Name.
func (r *Record) StationSlug() string {
	if r.Slug != "" {
		return r.Slug
	}
	return slug.Station(r.Name)
}

// DescriptionOrOriginal returns Description, falling back to OriginalDescription.
func (r *Record) DescriptionOrOriginal() *string {
	if r.Description != "" {
		return &r.Description
	}
	return Optional(r.OriginalDescription)
}

// LogoURL rewrites the local logo reference into the served asset path
// /static/logos/{CODE}/{file}. Windows separators are normalized first.
func (r *Record) LogoURL(countryCode string) *string {
	if r.LogoLocal == nil || *r.LogoLocal == "" {
		return nil
	}
	normalized := strings.ReplaceAll(*r.LogoLocal, `\`, "/")
	u := "/static/logos/" + countryCode + "/" + path.Base(normalized)
	return &u
}

var enrichedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"}

// EnrichedAt parses fecha_enriquecimiento. Empty input yields nil.
func (r *Record) EnrichedAt() (*time.Time, error) {
	if r.EnrichedAtRaw == "" {
		return nil, nil
	}
	for _, layout := range enrichedLayouts {
		if t, err := time.Parse(layout, r.EnrichedAtRaw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid fecha_enriquecimiento %q", r.EnrichedAtRaw)
}

// Optional maps the empty string to nil for nullable station columns.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
