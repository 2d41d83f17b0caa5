package server

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/voyagen/radiodir/internal/service"
)

// listParams is the query string of the station listing routes.
type listParams struct {
	Page   *int     `query:"page" validate:"omitempty,min=1"`
	Limit  *int     `query:"limit" validate:"omitempty,min=1,max=100"`
	Genres []string `query:"genres" validate:"omitempty,dive,max=100"`
	Search string   `query:"search" validate:"max=255"`
	City   string   `query:"city" validate:"max=100"`
}

// searchParams is the query string of GET /api/stations/search.
type searchParams struct {
	Q     string `query:"q" validate:"required,max=255"`
	Limit *int   `query:"limit" validate:"omitempty,min=1,max=100"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// validationError is a bad request caused by the query string.
type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func badParam(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// checkStruct runs v over dst and flattens the first failure into a
// validationError naming the query parameter.
func checkStruct(v *validator.Validate, dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		if fe.Param() != "" {
			return badParam("invalid %s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return badParam("invalid %s: %s", fe.Field(), fe.Tag())
	}
	return badParam("invalid query: %v", err)
}

func optionalInt(q url.Values, name string) (*int, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, badParam("invalid %s: %s", name, v)
	}
	return &n, nil
}

// splitCSV splits a comma-separated list, dropping blank entries.
func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) parseStationFilter(q url.Values) (service.StationFilter, error) {
	var p listParams
	var err error
	if p.Page, err = optionalInt(q, "page"); err != nil {
		return service.StationFilter{}, err
	}
	if p.Limit, err = optionalInt(q, "limit"); err != nil {
		return service.StationFilter{}, err
	}
	p.Genres = splitCSV(q.Get("genres"))
	p.Search = strings.TrimSpace(q.Get("search"))
	p.City = strings.TrimSpace(q.Get("city"))

	if err := checkStruct(s.validate, &p); err != nil {
		return service.StationFilter{}, err
	}

	f := service.StationFilter{Genres: p.Genres, Search: p.Search, City: p.City}
	if p.Page != nil {
		f.Page = *p.Page
	}
	if p.Limit != nil {
		f.Limit = *p.Limit
	}
	return f, nil
}

func (s *Server) parseSearch(q url.Values) (string, int, error) {
	var p searchParams
	var err error
	p.Q = strings.TrimSpace(q.Get("q"))
	if p.Limit, err = optionalInt(q, "limit"); err != nil {
		return "", 0, err
	}
	if err := checkStruct(s.validate, &p); err != nil {
		return "", 0, err
	}
	limit := 0
	if p.Limit != nil {
		limit = *p.Limit
	}
	return p.Q, limit, nil
}
