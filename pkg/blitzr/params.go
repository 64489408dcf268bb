package blitzr

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/blitzr-client/internal/validation"
)

// Ref addresses an entity by slug or UUID. At least one must be set.
type Ref struct {
	Slug string `json:"slug" validate:"required_without=UUID"`
	UUID string `json:"uuid" validate:"required_without=Slug"`
}

// BySlug references an entity by its slug.
func BySlug(slug string) Ref {
	return Ref{Slug: slug}
}

// ByUUID references an entity by its UUID.
func ByUUID(uuid string) Ref {
	return Ref{UUID: uuid}
}

func (r Ref) String() string {
	if r.Slug != "" {
		return r.Slug
	}
	return r.UUID
}

// values validates r and returns it as query parameters.
func (r Ref) values() (url.Values, error) {
	if err := validation.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	v := url.Values{}
	setString(v, "slug", r.Slug)
	setString(v, "uuid", r.UUID)
	return v, nil
}

// Page selects one page of a list. Zero values leave the API defaults.
type Page struct {
	Start int `json:"start" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0"`
}

func (p Page) apply(v url.Values) error {
	if err := validation.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	setInt(v, "start", p.Start)
	setInt(v, "limit", p.Limit)
	return nil
}

func slugValues(slug string) (url.Values, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, invalid("slug is required")
	}
	return url.Values{"slug": {slug}}, nil
}

func uuidValues(uuid string) (url.Values, error) {
	if strings.TrimSpace(uuid) == "" {
		return nil, invalid("uuid is required")
	}
	return url.Values{"uuid": {uuid}}, nil
}

func setString(v url.Values, name, value string) {
	if value != "" {
		v.Set(name, value)
	}
}

func setInt(v url.Values, name string, value int) {
	if value > 0 {
		v.Set(name, strconv.Itoa(value))
	}
}

func setBool(v url.Values, name string, value bool) {
	if value {
		v.Set(name, "true")
	}
}

func setFloat(v url.Values, name string, value *float64) {
	if value != nil {
		v.Set(name, strconv.FormatFloat(*value, 'f', -1, 64))
	}
}

func setDate(v url.Values, name string, value time.Time) {
	if !value.IsZero() {
		v.Set(name, value.Format(time.DateOnly))
	}
}

// setList joins values with commas.
func setList[E ~string](v url.Values, name string, values []E) {
	if len(values) == 0 {
		return
	}
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = string(value)
	}
	v.Set(name, strings.Join(parts, ","))
}
