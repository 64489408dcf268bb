// Package blitzr is a typed client for the Blitzr music catalog API.
//
// Single-page calls take a Page and return a slice. Every paginated list also
// has a Generator variant that walks all pages lazily, one request per page
// and only when the previous page has been consumed:
//
//	c, err := blitzr.New(client.DefaultConfig(apiKey))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	gen, err := c.ArtistReleasesGenerator(ctx, blitzr.BySlug("radiohead"),
//		blitzr.ReleaseQuery{Format: blitzr.ReleaseFormatAlbum},
//		pagination.WithBatchSize(25))
//	if err != nil {
//		return err
//	}
//	defer gen.Close()
//
//	for release, err := range gen.All() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(release.Name)
//	}
//
// Entities are addressed by slug or UUID through Ref. Errors from the API
// match client.ErrTransport or client.ErrProtocol; malformed arguments match
// ErrInvalidParameter and are reported before any request is made.
package blitzr
