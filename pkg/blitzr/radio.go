package blitzr

import (
	"context"
	"net/url"
)

// Radio endpoints return a playlist of n tracks; n <= 0 keeps the API default.

// RadioArtist plays tracks of an artist.
func (c *Client) RadioArtist(ctx context.Context, ref Ref, n int) ([]Track, error) {
	return radio(ctx, c, "radio/artist/", ref, n)
}

// RadioArtistSimilar plays tracks of an artist and similar artists.
func (c *Client) RadioArtistSimilar(ctx context.Context, ref Ref, n int) ([]Track, error) {
	return radio(ctx, c, "radio/artist/similar/", ref, n)
}

// RadioLabel plays tracks released on a label.
func (c *Client) RadioLabel(ctx context.Context, ref Ref, n int) ([]Track, error) {
	return radio(ctx, c, "radio/label/", ref, n)
}

// RadioEvent plays tracks of the artists of an event.
func (c *Client) RadioEvent(ctx context.Context, ref Ref, n int) ([]Track, error) {
	return radio(ctx, c, "radio/event/", ref, n)
}

// RadioTag plays tracks of a tag.
func (c *Client) RadioTag(ctx context.Context, slug string, n int) ([]Track, error) {
	v, err := slugValues(slug)
	if err != nil {
		return nil, err
	}
	return radioList(ctx, c, "radio/tag/", v, n)
}

func radio(ctx context.Context, c *Client, endpoint string, ref Ref, n int) ([]Track, error) {
	v, err := ref.values()
	if err != nil {
		return nil, err
	}
	return radioList(ctx, c, endpoint, v, n)
}

func radioList(ctx context.Context, c *Client, endpoint string, v url.Values, n int) ([]Track, error) {
	setInt(v, "limit", n)
	return getList[Track](ctx, c, endpoint, v)
}
