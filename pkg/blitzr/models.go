package blitzr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Endpoints fill different subsets of these fields; absent fields keep their
// zero value.

// Artist is a musician or a group.
type Artist struct {
	UUID               string     `json:"uuid"`
	Slug               string     `json:"slug"`
	Name               string     `json:"name"`
	RealName           string     `json:"real_name,omitempty"`
	Disambiguation     string     `json:"disambiguation,omitempty"`
	Type               string     `json:"type,omitempty"`
	Image              string     `json:"image,omitempty"`
	Thumb              string     `json:"thumb,omitempty"`
	Thumb300           string     `json:"thumb_300,omitempty"`
	Location           string     `json:"location,omitempty"`
	LocationCode       string     `json:"location_code,omitempty"`
	BeginDate          int        `json:"begin_date,omitempty"`
	EndDate            int        `json:"end_date,omitempty"`
	Summary            string     `json:"summary,omitempty"`
	Biography          *Biography `json:"biography,omitempty"`
	AvailableLanguages []string   `json:"available_languages,omitempty"`
	Tags               []Tag      `json:"tags,omitempty"`
	Websites           []Website  `json:"websites,omitempty"`
	Services           []Service  `json:"services,omitempty"`
	Aliases            []Artist   `json:"aliases,omitempty"`
	InBands            []Artist   `json:"in_bands,omitempty"`
	Members            []Artist   `json:"members,omitempty"`
	LastReleases       []Release  `json:"last_releases,omitempty"`
	NextEvents         []Event    `json:"next_events,omitempty"`
}

// Label is a record label.
type Label struct {
	UUID         string     `json:"uuid"`
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	Image        string     `json:"image,omitempty"`
	Thumb        string     `json:"thumb,omitempty"`
	Thumb300     string     `json:"thumb_300,omitempty"`
	Location     string     `json:"location,omitempty"`
	LocationCode string     `json:"location_code,omitempty"`
	HasDuplicate bool       `json:"has_duplicate,omitempty"`
	Biography    *Biography `json:"biography,omitempty"`
	Tags         []Tag      `json:"tags,omitempty"`
	Websites     []Website  `json:"websites,omitempty"`
	SubLabels    []Label    `json:"sub_labels,omitempty"`
	Artists      []Artist   `json:"artists,omitempty"`
	LastReleases []Release  `json:"last_releases,omitempty"`
}

// Release is an album, single or live recording.
type Release struct {
	UUID        string       `json:"uuid"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Type        string       `json:"type,omitempty"`
	Format      string       `json:"format,omitempty"`
	Image       string       `json:"image,omitempty"`
	Thumb       string       `json:"thumb,omitempty"`
	Thumb300    string       `json:"thumb_300,omitempty"`
	ReleaseDate Date         `json:"release_date,omitzero"`
	TracksCount int          `json:"tracks_count,omitempty"`
	Artists     []Artist     `json:"artists,omitempty"`
	Labels      []Label      `json:"labels,omitempty"`
	Tags        []Tag        `json:"tags,omitempty"`
	Tracklist   []Track      `json:"tracklist,omitempty"`
	Identifiers []Identifier `json:"identifiers,omitempty"`
}

// Track is a song of a release.
type Track struct {
	UUID               string   `json:"uuid"`
	Title              string   `json:"title"`
	Duration           string   `json:"duration,omitempty"`
	TrackPositionAlpha string   `json:"track_position_alpha,omitempty"`
	TrackPositionNum   int      `json:"track_position_num,omitempty"`
	Artists            []Artist `json:"artists,omitempty"`
	CreditedArtists    []Artist `json:"credited_artists,omitempty"`
	Release            *Release `json:"release,omitempty"`
	Tags               []Tag    `json:"tags,omitempty"`
	Sources            []Source `json:"sources,omitempty"`
}

// Source is a place where a track can be played.
type Source struct {
	Source string         `json:"source"`
	ID     any            `json:"id"`
	URL    string         `json:"url,omitempty"`
	Score  int            `json:"score,omitempty"`
	Safe   bool           `json:"safe,omitempty"`
	Tags   []string       `json:"tags,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// Event is a concert or festival date.
type Event struct {
	UUID        string                   `json:"uuid"`
	Slug        string                   `json:"slug"`
	Name        string                   `json:"name"`
	Date        Date                     `json:"date,omitzero"`
	City        string                   `json:"city,omitempty"`
	Venue       string                   `json:"venue,omitempty"`
	CountryCode string                   `json:"country_code,omitempty"`
	Latitude    float64                  `json:"latitude,omitempty"`
	Longitude   float64                  `json:"longitude,omitempty"`
	Cancelled   bool                     `json:"cancelled,omitempty"`
	Image       string                   `json:"image,omitempty"`
	Lineup      []Artist                 `json:"lineup,omitempty"`
	Tags        []Tag                    `json:"tags,omitempty"`
	Providers   map[string]EventProvider `json:"providers,omitempty"`
}

// EventProvider sells tickets for an event.
type EventProvider struct {
	Currency string        `json:"currency,omitempty"`
	MinPrice float64       `json:"min_price,omitempty"`
	Logo     string        `json:"logo,omitempty"`
	Tickets  []EventTicket `json:"tickets,omitempty"`
}

// EventTicket is one ticket offer.
type EventTicket struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Currency   string    `json:"currency,omitempty"`
	ProviderID string    `json:"provider_id,omitempty"`
	Price      []float64 `json:"price,omitempty"`
}

// MinPrice returns the lowest listed price, or 0 without prices.
func (t EventTicket) MinPrice() float64 {
	if len(t.Price) == 0 {
		return 0
	}
	lowest := t.Price[0]
	for _, p := range t.Price[1:] {
		if p < lowest {
			lowest = p
		}
	}
	return lowest
}

// Tag is a genre or style.
type Tag struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Weight      int             `json:"weight,omitempty"`
	Position    int             `json:"position,omitempty"`
	Description *TagDescription `json:"description,omitempty"`
}

// TagDescription is the localized text of a tag.
type TagDescription struct {
	Summary string `json:"summary,omitempty"`
	Content string `json:"content,omitempty"`
}

// Website is an external link.
type Website struct {
	URL     string `json:"url"`
	Service string `json:"service,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Biography is a text with its source.
type Biography struct {
	Lang    string `json:"lang,omitempty"`
	Summary string `json:"summary,omitempty"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Service is an entity on a third-party platform.
type Service struct {
	Name string `json:"name,omitempty"`
	ID   any    `json:"id,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Identifier is a barcode or catalog number.
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Product is a shop offer.
type Product struct {
	Title    string  `json:"title"`
	Type     string  `json:"type,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Currency string  `json:"currency,omitempty"`
	URL      string  `json:"url,omitempty"`
	Image    string  `json:"image,omitempty"`
	Shop     string  `json:"shop,omitempty"`
}

// HarmoniaProvider identifies an entity in another database.
type HarmoniaProvider struct {
	ID  any    `json:"id"`
	URL string `json:"url,omitempty"`
}

// Date is a calendar day. It accepts "2006-01-02", RFC 3339 timestamps and
// null, and marshals as "2006-01-02".
type Date struct {
	time.Time
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.DateTime}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("date: unrecognized format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}
