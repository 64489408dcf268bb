package blitzr

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/Sternrassler/blitzr-client/pkg/pagination"
)

// EventQuery selects events by place, tag and date. Zero fields are omitted.
type EventQuery struct {
	CountryCode string
	City        string
	Venue       string
	Tag         string

	// Latitude and Longitude center a search of Radius kilometers.
	Latitude  *float64
	Longitude *float64
	Radius    int

	DateStart time.Time
	DateEnd   time.Time
}

func (q EventQuery) values() (url.Values, error) {
	if (q.Latitude == nil) != (q.Longitude == nil) {
		return nil, invalid("latitude and longitude must be set together")
	}
	if q.Radius < 0 {
		return nil, invalid("radius must not be negative, got %d", q.Radius)
	}
	if !q.DateStart.IsZero() && !q.DateEnd.IsZero() && q.DateEnd.Before(q.DateStart) {
		return nil, invalid("date end %s is before date start %s",
			q.DateEnd.Format(time.DateOnly), q.DateStart.Format(time.DateOnly))
	}

	v := url.Values{}
	setString(v, "country_code", strings.ToUpper(q.CountryCode))
	setString(v, "city", q.City)
	setString(v, "venue", q.Venue)
	setString(v, "tag", q.Tag)
	setFloat(v, "latitude", q.Latitude)
	setFloat(v, "longitude", q.Longitude)
	setInt(v, "radius", q.Radius)
	setDate(v, "date_start", q.DateStart)
	setDate(v, "date_end", q.DateEnd)
	return v, nil
}

// Event fetches an event.
func (c *Client) Event(ctx context.Context, ref Ref) (*Event, error) {
	return refOne[Event](ctx, c, "event/", ref)
}

// Events lists events matching q.
func (c *Client) Events(ctx context.Context, q EventQuery, page Page) ([]Event, error) {
	v, err := q.values()
	if err != nil {
		return nil, err
	}
	if err := page.apply(v); err != nil {
		return nil, err
	}
	return getList[Event](ctx, c, "events/", v)
}

// EventsGenerator streams every event matching q.
func (c *Client) EventsGenerator(ctx context.Context, q EventQuery, opts ...pagination.Option) (*generator.Generator[Event], error) {
	v, err := q.values()
	if err != nil {
		return nil, err
	}
	return stream[Event](ctx, c, "events/", v, opts)
}
