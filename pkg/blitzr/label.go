package blitzr

import (
	"context"
	"net/url"

	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/Sternrassler/blitzr-client/pkg/pagination"
)

// LabelExtras adds optional sections to Label.
type LabelExtras struct {
	Include []LabelExtra
	Limit   int
}

// Label fetches a label.
func (c *Client) Label(ctx context.Context, ref Ref, extras LabelExtras) (*Label, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	setList(v, "extras", extras.Include)
	setInt(v, "extras_limit", extras.Limit)
	return getOne[Label](ctx, c, "label/", v)
}

func orderParam(order LabelArtistsOrder) func(url.Values) {
	return func(v url.Values) {
		setString(v, "order", string(order))
	}
}

func formatParam(format ReleaseFormat) func(url.Values) {
	return func(v url.Values) {
		setString(v, "format", string(format))
	}
}

// LabelArtists lists the artists of a label. An empty order keeps the API default.
func (c *Client) LabelArtists(ctx context.Context, ref Ref, order LabelArtistsOrder, page Page) ([]Artist, error) {
	return refPage[Artist](ctx, c, "label/artists/", ref, orderParam(order), page)
}

// LabelArtistsGenerator streams every artist of a label.
func (c *Client) LabelArtistsGenerator(ctx context.Context, ref Ref, order LabelArtistsOrder, opts ...pagination.Option) (*generator.Generator[Artist], error) {
	return refStream[Artist](ctx, c, "label/artists/", ref, orderParam(order), opts)
}

// LabelBiography returns a label with only Biography set. Lang is ignored.
func (c *Client) LabelBiography(ctx context.Context, ref Ref, opts BiographyOptions) (*Label, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	opts.Lang = ""
	opts.apply(v)
	return getOne[Label](ctx, c, "label/biography/", v)
}

// LabelHarmonia returns the identifiers of a label in other databases.
func (c *Client) LabelHarmonia(ctx context.Context, ref Ref) (map[string]HarmoniaProvider, error) {
	return refMap[HarmoniaProvider](ctx, c, "label/harmonia/", ref)
}

// LabelReleases lists the releases of a label.
func (c *Client) LabelReleases(ctx context.Context, ref Ref, format ReleaseFormat, page Page) ([]Release, error) {
	return refPage[Release](ctx, c, "label/releases/", ref, formatParam(format), page)
}

// LabelReleasesGenerator streams every release of a label.
func (c *Client) LabelReleasesGenerator(ctx context.Context, ref Ref, format ReleaseFormat, opts ...pagination.Option) (*generator.Generator[Release], error) {
	return refStream[Release](ctx, c, "label/releases/", ref, formatParam(format), opts)
}

// LabelSimilar lists labels similar to a label.
func (c *Client) LabelSimilar(ctx context.Context, ref Ref, filters LabelFilters, page Page) ([]Label, error) {
	return refPage[Label](ctx, c, "label/similar/", ref, filters.apply, page)
}

// LabelSimilarGenerator streams every similar label.
func (c *Client) LabelSimilarGenerator(ctx context.Context, ref Ref, filters LabelFilters, opts ...pagination.Option) (*generator.Generator[Label], error) {
	return refStream[Label](ctx, c, "label/similar/", ref, filters.apply, opts)
}

// LabelWebsites returns a label with only Websites set.
func (c *Client) LabelWebsites(ctx context.Context, ref Ref) (*Label, error) {
	return refOne[Label](ctx, c, "label/websites/", ref)
}
