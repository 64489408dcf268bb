// Package pagination drives offset/limit paginated endpoints as lazy streams.
//
// A Driver repeatedly asks a PageFetcher for the page at the current offset,
// hands every item of that page to its consumer in order, advances the offset
// by the batch size and stops at the first page shorter than the batch size.
// Pages are fetched one at a time and only when the consumer has taken every
// item of the previous page.
//
// Example usage:
//
//	gen, err := pagination.NewGenerator(ctx, "artist/releases", fetcher,
//		pagination.WithBatchSize(25))
//	if err != nil {
//		return err
//	}
//	defer gen.Close()
//
//	for release, err := range gen.All() {
//		...
//	}
//
// A final page whose length equals the batch size is indistinguishable from a
// full intermediate page, so it costs one more request that returns a short or
// empty page.
package pagination
