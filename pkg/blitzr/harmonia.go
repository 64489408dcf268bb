package blitzr

import (
	"context"
	"net/url"
	"strings"
)

func serviceValues(service ServiceName, id string) (url.Values, error) {
	if service == "" || strings.TrimSpace(id) == "" {
		return nil, invalid("service name and id are required")
	}
	return url.Values{"service_name": {string(service)}, "service_id": {id}}, nil
}

// HarmoniaArtist finds an artist by its identifier on another service.
func (c *Client) HarmoniaArtist(ctx context.Context, service ServiceName, id string) (*Artist, error) {
	v, err := serviceValues(service, id)
	if err != nil {
		return nil, err
	}
	return getOne[Artist](ctx, c, "harmonia/artist/", v)
}

// HarmoniaLabel finds a label by its identifier on another service.
func (c *Client) HarmoniaLabel(ctx context.Context, service ServiceName, id string) (*Label, error) {
	v, err := serviceValues(service, id)
	if err != nil {
		return nil, err
	}
	return getOne[Label](ctx, c, "harmonia/label/", v)
}

// HarmoniaRelease finds a release by its identifier on another service.
func (c *Client) HarmoniaRelease(ctx context.Context, service ServiceName, id string) (*Release, error) {
	v, err := serviceValues(service, id)
	if err != nil {
		return nil, err
	}
	return getOne[Release](ctx, c, "harmonia/release/", v)
}

// SourceQuery finds tracks by a source identifier.
type SourceQuery struct {
	Source SourceName
	ID     string
	// Filters restricts the sources returned with each track.
	Filters []SourceName
	Strict  bool
}

// HarmoniaSearchBySource finds the tracks matching a source, e.g. a YouTube video.
func (c *Client) HarmoniaSearchBySource(ctx context.Context, q SourceQuery) ([]Track, error) {
	if q.Source == "" || strings.TrimSpace(q.ID) == "" {
		return nil, invalid("source name and id are required")
	}
	v := url.Values{"source_name": {string(q.Source)}, "source_id": {q.ID}}
	setList(v, "source_filters", q.Filters)
	setBool(v, "strict", q.Strict)
	return getList[Track](ctx, c, "harmonia/searchbysource/", v)
}
