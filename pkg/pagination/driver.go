package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/Sternrassler/blitzr-client/pkg/logging"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/Sternrassler/blitzr-client/pkg/pagination")

// PageFetcher loads one page of at most limit items starting at offset.
// A page shorter than limit marks the end of the stream.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, offset, limit int) ([]T, error)
}

// FetcherFunc adapts a function to PageFetcher.
type FetcherFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// FetchPage calls f.
func (f FetcherFunc[T]) FetchPage(ctx context.Context, offset, limit int) ([]T, error) {
	return f(ctx, offset, limit)
}

// Driver walks a paginated endpoint page by page.
type Driver[T any] struct {
	name    string
	fetcher PageFetcher[T]
	cursor  Cursor
	logger  zerolog.Logger
}

// NewDriver validates the cursor built from opts. name identifies the
// endpoint in logs, metrics and spans.
func NewDriver[T any](name string, fetcher PageFetcher[T], opts ...Option) (*Driver[T], error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is nil", ErrInvalidParameter)
	}
	cursor, err := NewCursor(opts...)
	if err != nil {
		return nil, err
	}

	return &Driver[T]{
		name:    name,
		fetcher: fetcher,
		cursor:  cursor,
		logger:  logging.NewLogger("pagination").With().Str("endpoint", name).Logger(),
	}, nil
}

// Cursor returns the starting position of the driver.
func (d *Driver[T]) Cursor() Cursor {
	return d.cursor
}

// Run fetches pages and passes their items to yield in order until a short
// page is seen, a fetch fails or yield returns an error. It has the shape of
// a generator.ProduceFunc.
func (d *Driver[T]) Run(ctx context.Context, yield func(T) error) error {
	offset := d.cursor.Offset
	limit := d.cursor.BatchSize

	for {
		page, err := d.fetch(ctx, offset, limit)
		if err != nil {
			return err
		}

		for _, item := range page {
			ItemsEmitted.WithLabelValues(d.name).Inc()
			if err := yield(item); err != nil {
				return err
			}
		}

		if len(page) < limit {
			d.logger.Debug().
				Int("offset", offset).
				Int("items", len(page)).
				Msg("Short page, stream exhausted")
			return nil
		}
		offset += limit
	}
}

func (d *Driver[T]) fetch(ctx context.Context, offset, limit int) ([]T, error) {
	ctx, span := tracer.Start(ctx, "pagination.fetch_page", trace.WithAttributes(
		attribute.String("endpoint", d.name),
		attribute.Int("offset", offset),
		attribute.Int("limit", limit),
	))
	defer span.End()

	start := time.Now()
	page, err := d.fetcher.FetchPage(ctx, offset, limit)
	duration := time.Since(start)
	PageFetchDuration.WithLabelValues(d.name).Observe(duration.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch %s at offset %d: %w", d.name, offset, err)
	}

	PagesFetched.WithLabelValues(d.name).Inc()
	span.SetAttributes(attribute.Int("items", len(page)))

	d.logger.Debug().
		Int("offset", offset).
		Int("limit", limit).
		Int("items", len(page)).
		Dur("duration", duration).
		Msg("Page fetched")

	return page, nil
}

// NewGenerator validates the cursor and returns an idle generator over the
// pages of fetcher. Validation errors are returned before any goroutine is
// started.
func NewGenerator[T any](ctx context.Context, name string, fetcher PageFetcher[T], opts ...Option) (*generator.Generator[T], error) {
	d, err := NewDriver(name, fetcher, opts...)
	if err != nil {
		return nil, err
	}
	return generator.New(ctx, d.Run, generator.WithName(name)), nil
}
