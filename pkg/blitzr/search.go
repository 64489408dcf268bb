package blitzr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/Sternrassler/blitzr-client/pkg/pagination"
)

// SearchResults is one page of search hits with the total hit count.
type SearchResults[T any] struct {
	Total   int `json:"total"`
	Results []T `json:"results"`
}

// SearchResult is a hit of the cross-entity search. Exactly one of the
// entity pointers is set, matching Entity. Hits of an unknown entity keep
// only Raw.
type SearchResult struct {
	Entity  EntityType
	Artist  *Artist
	Label   *Label
	Release *Release
	Track   *Track

	Raw json.RawMessage
}

// Name returns the display name of the hit.
func (r SearchResult) Name() string {
	switch {
	case r.Artist != nil:
		return r.Artist.Name
	case r.Label != nil:
		return r.Label.Name
	case r.Release != nil:
		return r.Release.Name
	case r.Track != nil:
		return r.Track.Title
	}
	return ""
}

// UnmarshalJSON decodes the hit according to its "entity" field.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var probe struct {
		Entity EntityType `json:"entity"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("search result: %w", err)
	}

	*r = SearchResult{Entity: probe.Entity, Raw: append(json.RawMessage(nil), data...)}

	var target any
	switch probe.Entity {
	case EntityArtist:
		r.Artist = &Artist{}
		target = r.Artist
	case EntityLabel:
		r.Label = &Label{}
		target = r.Label
	case EntityRelease:
		r.Release = &Release{}
		target = r.Release
	case EntityTrack:
		r.Track = &Track{}
		target = r.Track
	default:
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("search result %s: %w", probe.Entity, err)
	}
	return nil
}

// MarshalJSON writes the hit back in its API form.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return r.Raw, nil
	}

	var entity any
	switch {
	case r.Artist != nil:
		entity = r.Artist
	case r.Label != nil:
		entity = r.Label
	case r.Release != nil:
		entity = r.Release
	case r.Track != nil:
		entity = r.Track
	default:
		return json.Marshal(map[string]EntityType{"entity": r.Entity})
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields["entity"], _ = json.Marshal(r.Entity)
	return json.Marshal(fields)
}

// SearchQuery is a cross-entity search.
type SearchQuery struct {
	Query string
	// Types restricts the entities searched; empty searches all of them.
	Types        []EntityType
	Autocomplete bool
}

func (q SearchQuery) values() (url.Values, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, invalid("search query is required")
	}
	for _, t := range q.Types {
		if !t.Valid() {
			return nil, invalid("unknown entity type %q", t)
		}
	}
	v := url.Values{"query": {q.Query}, "extras": {"true"}}
	setList(v, "type", q.Types)
	setBool(v, "autocomplete", q.Autocomplete)
	return v, nil
}

// ArtistSearch is a search restricted to artists.
type ArtistSearch struct {
	Query        string
	Filters      ArtistFilters
	Autocomplete bool
}

func (q ArtistSearch) values() (url.Values, error) {
	v, err := queryValues(q.Query, q.Autocomplete)
	if err != nil {
		return nil, err
	}
	q.Filters.apply(v)
	return v, nil
}

// LabelSearch is a search restricted to labels.
type LabelSearch struct {
	Query        string
	Filters      LabelFilters
	Autocomplete bool
}

func (q LabelSearch) values() (url.Values, error) {
	v, err := queryValues(q.Query, q.Autocomplete)
	if err != nil {
		return nil, err
	}
	q.Filters.apply(v)
	return v, nil
}

// ReleaseSearch is a search restricted to releases.
type ReleaseSearch struct {
	Query        string
	Filters      ReleaseFilters
	Autocomplete bool
}

func (q ReleaseSearch) values() (url.Values, error) {
	v, err := queryValues(q.Query, q.Autocomplete)
	if err != nil {
		return nil, err
	}
	q.Filters.apply(v)
	return v, nil
}

// TrackSearch is a search restricted to tracks. The track search has no
// autocomplete mode.
type TrackSearch struct {
	Query   string
	Filters TrackFilters
}

func (q TrackSearch) values() (url.Values, error) {
	v, err := queryValues(q.Query, false)
	if err != nil {
		return nil, err
	}
	q.Filters.apply(v)
	return v, nil
}

func queryValues(query string, autocomplete bool) (url.Values, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalid("search query is required")
	}
	v := url.Values{"query": {query}}
	setBool(v, "autocomplete", autocomplete)
	return v, nil
}

// withTotal asks the API for the SearchResults envelope.
func withTotal(v url.Values) url.Values {
	v = cloneValues(v)
	v.Set("extras", "true")
	return v
}

// Search searches all entity types.
func (c *Client) Search(ctx context.Context, q SearchQuery, page Page) (*SearchResults[SearchResult], error) {
	v, err := q.values()
	if err != nil {
		return nil, err
	}
	if err := page.apply(v); err != nil {
		return nil, err
	}
	return getOne[SearchResults[SearchResult]](ctx, c, "search/", v)
}

// SearchGenerator streams every hit of a cross-entity search.
func (c *Client) SearchGenerator(ctx context.Context, q SearchQuery, opts ...pagination.Option) (*generator.Generator[SearchResult], error) {
	v, err := q.values()
	if err != nil {
		return nil, err
	}
	return streamResults[SearchResult](ctx, c, "search/", v, opts)
}

// SearchArtist returns one page of matching artists.
func (c *Client) SearchArtist(ctx context.Context, q ArtistSearch, page Page) ([]Artist, error) {
	return searchPage[Artist](ctx, c, "search/artist/", q.values, page)
}

// SearchArtistWithTotal is SearchArtist with the total hit count.
func (c *Client) SearchArtistWithTotal(ctx context.Context, q ArtistSearch, page Page) (*SearchResults[Artist], error) {
	return searchTotal[Artist](ctx, c, "search/artist/", q.values, page)
}

// SearchArtistGenerator streams every matching artist.
func (c *Client) SearchArtistGenerator(ctx context.Context, q ArtistSearch, opts ...pagination.Option) (*generator.Generator[Artist], error) {
	return searchStream[Artist](ctx, c, "search/artist/", q.values, opts)
}

// SearchLabel returns one page of matching labels.
func (c *Client) SearchLabel(ctx context.Context, q LabelSearch, page Page) ([]Label, error) {
	return searchPage[Label](ctx, c, "search/label/", q.values, page)
}

// SearchLabelWithTotal is SearchLabel with the total hit count.
func (c *Client) SearchLabelWithTotal(ctx context.Context, q LabelSearch, page Page) (*SearchResults[Label], error) {
	return searchTotal[Label](ctx, c, "search/label/", q.values, page)
}

// SearchLabelGenerator streams every matching label.
func (c *Client) SearchLabelGenerator(ctx context.Context, q LabelSearch, opts ...pagination.Option) (*generator.Generator[Label], error) {
	return searchStream[Label](ctx, c, "search/label/", q.values, opts)
}

// SearchRelease returns one page of matching releases.
func (c *Client) SearchRelease(ctx context.Context, q ReleaseSearch, page Page) ([]Release, error) {
	return searchPage[Release](ctx, c, "search/release/", q.values, page)
}

// SearchReleaseWithTotal is SearchRelease with the total hit count.
func (c *Client) SearchReleaseWithTotal(ctx context.Context, q ReleaseSearch, page Page) (*SearchResults[Release], error) {
	return searchTotal[Release](ctx, c, "search/release/", q.values, page)
}

// SearchReleaseGenerator streams every matching release.
func (c *Client) SearchReleaseGenerator(ctx context.Context, q ReleaseSearch, opts ...pagination.Option) (*generator.Generator[Release], error) {
	return searchStream[Release](ctx, c, "search/release/", q.values, opts)
}

// SearchTrack returns one page of matching tracks.
func (c *Client) SearchTrack(ctx context.Context, q TrackSearch, page Page) ([]Track, error) {
	return searchPage[Track](ctx, c, "search/track/", q.values, page)
}

// SearchTrackWithTotal is SearchTrack with the total hit count.
func (c *Client) SearchTrackWithTotal(ctx context.Context, q TrackSearch, page Page) (*SearchResults[Track], error) {
	return searchTotal[Track](ctx, c, "search/track/", q.values, page)
}

// SearchTrackGenerator streams every matching track.
func (c *Client) SearchTrackGenerator(ctx context.Context, q TrackSearch, opts ...pagination.Option) (*generator.Generator[Track], error) {
	return searchStream[Track](ctx, c, "search/track/", q.values, opts)
}

func searchPage[T any](ctx context.Context, c *Client, endpoint string, values func() (url.Values, error), page Page) ([]T, error) {
	v, err := values()
	if err != nil {
		return nil, err
	}
	if err := page.apply(v); err != nil {
		return nil, err
	}
	return getList[T](ctx, c, endpoint, v)
}

func searchTotal[T any](ctx context.Context, c *Client, endpoint string, values func() (url.Values, error), page Page) (*SearchResults[T], error) {
	v, err := values()
	if err != nil {
		return nil, err
	}
	if err := page.apply(v); err != nil {
		return nil, err
	}
	return getOne[SearchResults[T]](ctx, c, endpoint, withTotal(v))
}

func searchStream[T any](ctx context.Context, c *Client, endpoint string, values func() (url.Values, error), opts []pagination.Option) (*generator.Generator[T], error) {
	v, err := values()
	if err != nil {
		return nil, err
	}
	return stream[T](ctx, c, endpoint, v, opts)
}
