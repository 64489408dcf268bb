package blitzr

import (
	"context"
	"net/url"

	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/Sternrassler/blitzr-client/pkg/pagination"
)

// ArtistExtras adds optional sections to Artist.
type ArtistExtras struct {
	Include []ArtistExtra
	// Limit caps the length of each included list.
	Limit int
}

// BiographyOptions shapes a biography text.
type BiographyOptions struct {
	// Lang is "en" or "fr". Labels ignore it.
	Lang string
	HTML bool
	// URLScheme formats links inside the text, e.g. "#/{type}/{slug}".
	URLScheme string
}

func (o BiographyOptions) apply(v url.Values) {
	setString(v, "lang", o.Lang)
	if o.HTML {
		v.Set("format", "html")
	}
	setString(v, "url_scheme", o.URLScheme)
}

// ReleaseQuery filters the releases of an artist.
type ReleaseQuery struct {
	Type   ReleaseType
	Format ReleaseFormat
	// Credited selects releases the artist is credited on instead of their own.
	Credited bool
}

func (q ReleaseQuery) apply(v url.Values) {
	setString(v, "type", string(q.Type))
	setString(v, "format", string(q.Format))
	setBool(v, "credited", q.Credited)
}

// Artist fetches an artist.
func (c *Client) Artist(ctx context.Context, ref Ref, extras ArtistExtras) (*Artist, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	setList(v, "extras", extras.Include)
	setInt(v, "extras_limit", extras.Limit)
	return getOne[Artist](ctx, c, "artist/", v)
}

// ArtistBiography returns an artist with only Biography and
// AvailableLanguages set.
func (c *Client) ArtistBiography(ctx context.Context, ref Ref, opts BiographyOptions) (*Artist, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	opts.apply(v)
	return getOne[Artist](ctx, c, "artist/biography/", v)
}

// ArtistAliases lists the other names of an artist.
func (c *Client) ArtistAliases(ctx context.Context, ref Ref) ([]Artist, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	return getList[Artist](ctx, c, "artist/aliases/", v)
}

// ArtistBands lists the bands an artist played in.
func (c *Client) ArtistBands(ctx context.Context, ref Ref, page Page) ([]Artist, error) {
	return refPage[Artist](ctx, c, "artist/bands/", ref, nil, page)
}

// ArtistBandsGenerator streams every band of an artist.
func (c *Client) ArtistBandsGenerator(ctx context.Context, ref Ref, opts ...pagination.Option) (*generator.Generator[Artist], error) {
	return refStream[Artist](ctx, c, "artist/bands/", ref, nil, opts)
}

// ArtistEvents lists the upcoming events of an artist.
func (c *Client) ArtistEvents(ctx context.Context, ref Ref, page Page) ([]Event, error) {
	return refPage[Event](ctx, c, "artist/events/", ref, nil, page)
}

// ArtistEventsGenerator streams every upcoming event of an artist.
func (c *Client) ArtistEventsGenerator(ctx context.Context, ref Ref, opts ...pagination.Option) (*generator.Generator[Event], error) {
	return refStream[Event](ctx, c, "artist/events/", ref, nil, opts)
}

// ArtistHarmonia returns the identifiers of an artist in other databases,
// keyed by service name.
func (c *Client) ArtistHarmonia(ctx context.Context, ref Ref) (map[string]HarmoniaProvider, error) {
	return refMap[HarmoniaProvider](ctx, c, "artist/harmonia/", ref)
}

// ArtistMembers lists the members of a band.
func (c *Client) ArtistMembers(ctx context.Context, ref Ref, page Page) ([]Artist, error) {
	return refPage[Artist](ctx, c, "artist/members/", ref, nil, page)
}

// ArtistMembersGenerator streams every member of a band.
func (c *Client) ArtistMembersGenerator(ctx context.Context, ref Ref, opts ...pagination.Option) (*generator.Generator[Artist], error) {
	return refStream[Artist](ctx, c, "artist/members/", ref, nil, opts)
}

// ArtistRelated lists bands sharing members with a band.
func (c *Client) ArtistRelated(ctx context.Context, ref Ref, page Page) ([]Artist, error) {
	return refPage[Artist](ctx, c, "artist/related/", ref, nil, page)
}

// ArtistRelatedGenerator streams every related band.
func (c *Client) ArtistRelatedGenerator(ctx context.Context, ref Ref, opts ...pagination.Option) (*generator.Generator[Artist], error) {
	return refStream[Artist](ctx, c, "artist/related/", ref, nil, opts)
}

// ArtistReleases lists the releases of an artist.
func (c *Client) ArtistReleases(ctx context.Context, ref Ref, q ReleaseQuery, page Page) ([]Release, error) {
	return refPage[Release](ctx, c, "artist/releases/", ref, q.apply, page)
}

// ArtistReleasesGenerator streams every release of an artist.
func (c *Client) ArtistReleasesGenerator(ctx context.Context, ref Ref, q ReleaseQuery, opts ...pagination.Option) (*generator.Generator[Release], error) {
	return refStream[Release](ctx, c, "artist/releases/", ref, q.apply, opts)
}

// ArtistSimilar lists artists similar to an artist. Only Filters.Location applies.
func (c *Client) ArtistSimilar(ctx context.Context, ref Ref, filters ArtistFilters, page Page) ([]Artist, error) {
	return refPage[Artist](ctx, c, "artist/similar/", ref, filters.apply, page)
}

// ArtistSimilarGenerator streams every similar artist.
func (c *Client) ArtistSimilarGenerator(ctx context.Context, ref Ref, filters ArtistFilters, opts ...pagination.Option) (*generator.Generator[Artist], error) {
	return refStream[Artist](ctx, c, "artist/similar/", ref, filters.apply, opts)
}

// ArtistSummary returns a short artist record with Summary set.
func (c *Client) ArtistSummary(ctx context.Context, ref Ref) (*Artist, error) {
	return refOne[Artist](ctx, c, "artist/summary/", ref)
}

// ArtistWebsites returns an artist with only Websites set.
func (c *Client) ArtistWebsites(ctx context.Context, ref Ref) (*Artist, error) {
	return refOne[Artist](ctx, c, "artist/websites/", ref)
}

// refOne, refPage, refStream and refMap call endpoints addressed by a Ref.
// extra adds endpoint-specific parameters and may be nil.

func refOne[T any](ctx context.Context, c *Client, endpoint string, ref Ref) (*T, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	return getOne[T](ctx, c, endpoint, v)
}

func refPage[T any](ctx context.Context, c *Client, endpoint string, ref Ref, extra func(url.Values), page Page) ([]T, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	if extra != nil {
		extra(v)
	}
	if err := page.apply(v); err != nil {
		return nil, err
	}
	return getList[T](ctx, c, endpoint, v)
}

func refStream[T any](ctx context.Context, c *Client, endpoint string, ref Ref, extra func(url.Values), opts []pagination.Option) (*generator.Generator[T], error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	if extra != nil {
		extra(v)
	}
	return stream[T](ctx, c, endpoint, v, opts)
}

func refMap[T any](ctx context.Context, c *Client, endpoint string, ref Ref) (map[string]T, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	out := map[string]T{}
	if err := c.get(ctx, endpoint, v, &out); err != nil {
		return nil, err
	}
	return out, nil
}
