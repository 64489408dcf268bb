package blitzr

import "context"

// Track fetches a track.
func (c *Client) Track(ctx context.Context, uuid string) (*Track, error) {
	v, err := uuidValues(uuid)
	if err != nil {
		return nil, err
	}
	return getOne[Track](ctx, c, "track/", v)
}

// TrackSources lists where a track can be played.
func (c *Client) TrackSources(ctx context.Context, uuid string) ([]Source, error) {
	v, err := uuidValues(uuid)
	if err != nil {
		return nil, err
	}
	return getList[Source](ctx, c, "track/sources/", v)
}
