package blitzr

import "context"

// Release fetches a release with its tracklist.
func (c *Client) Release(ctx context.Context, ref Ref) (*Release, error) {
	return refOne[Release](ctx, c, "release/", ref)
}

// ReleaseSources returns the release on streaming services, keyed by service name.
func (c *Client) ReleaseSources(ctx context.Context, ref Ref) (map[string]Service, error) {
	return refMap[Service](ctx, c, "release/sources/", ref)
}
