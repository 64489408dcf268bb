package blitzr

import (
	"context"

	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/Sternrassler/blitzr-client/pkg/pagination"
)

// Tag fetches a tag.
func (c *Client) Tag(ctx context.Context, slug string) (*Tag, error) {
	v, err := slugValues(slug)
	if err != nil {
		return nil, err
	}
	return getOne[Tag](ctx, c, "tag/", v)
}

// TagArtists lists the artists of a tag.
func (c *Client) TagArtists(ctx context.Context, slug string, page Page) ([]Artist, error) {
	return tagPage[Artist](ctx, c, "tag/artists/", slug, page)
}

// TagArtistsGenerator streams every artist of a tag.
func (c *Client) TagArtistsGenerator(ctx context.Context, slug string, opts ...pagination.Option) (*generator.Generator[Artist], error) {
	return tagStream[Artist](ctx, c, "tag/artists/", slug, opts)
}

// TagReleases lists the releases of a tag.
func (c *Client) TagReleases(ctx context.Context, slug string, page Page) ([]Release, error) {
	return tagPage[Release](ctx, c, "tag/releases/", slug, page)
}

// TagReleasesGenerator streams every release of a tag.
func (c *Client) TagReleasesGenerator(ctx context.Context, slug string, opts ...pagination.Option) (*generator.Generator[Release], error) {
	return tagStream[Release](ctx, c, "tag/releases/", slug, opts)
}

func tagPage[T any](ctx context.Context, c *Client, endpoint, slug string, page Page) ([]T, error) {
	v, err := slugValues(slug)
	if err != nil {
		return nil, err
	}
	if err := page.apply(v); err != nil {
		return nil, err
	}
	return getList[T](ctx, c, endpoint, v)
}

func tagStream[T any](ctx context.Context, c *Client, endpoint, slug string, opts []pagination.Option) (*generator.Generator[T], error) {
	v, err := slugValues(slug)
	if err != nil {
		return nil, err
	}
	return stream[T](ctx, c, endpoint, v, opts)
}
