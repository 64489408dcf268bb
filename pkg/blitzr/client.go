package blitzr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/blitzr-client/pkg/client"
	"github.com/Sternrassler/blitzr-client/pkg/generator"
	"github.com/Sternrassler/blitzr-client/pkg/logging"
	"github.com/Sternrassler/blitzr-client/pkg/pagination"
	"github.com/rs/zerolog"
)

// ErrInvalidParameter is matched by errors for arguments that cannot form a
// valid request, including non-positive batch sizes.
var ErrInvalidParameter = pagination.ErrInvalidParameter

// Client calls the catalog endpoints.
type Client struct {
	http   *client.Client
	logger zerolog.Logger
}

// New creates a catalog client with its own transport.
func New(cfg client.Config) (*Client, error) {
	httpClient, err := client.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithTransport(httpClient), nil
}

// NewWithTransport wraps an existing transport, e.g. one shared with other
// clients so they share its rate limiter and quota.
func NewWithTransport(httpClient *client.Client) *Client {
	return &Client{
		http:   httpClient,
		logger: logging.NewLogger("blitzr"),
	}
}

// Transport returns the underlying HTTP client.
func (c *Client) Transport() *client.Client {
	return c.http
}

// Close releases the transport.
func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	return c.http.GetJSON(ctx, endpoint, params, out)
}

func getOne[T any](ctx context.Context, c *Client, endpoint string, params url.Values) (*T, error) {
	var out T
	if err := c.get(ctx, endpoint, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getList[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	var out []T
	if err := c.get(ctx, endpoint, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// stream returns a generator over every page of a list endpoint. params must
// not contain start or limit; the cursor sets them for each page.
func stream[T any](ctx context.Context, c *Client, endpoint string, params url.Values, opts []pagination.Option) (*generator.Generator[T], error) {
	fetcher := pagination.FetcherFunc[T](func(ctx context.Context, offset, limit int) ([]T, error) {
		return getList[T](ctx, c, endpoint, withWindow(params, offset, limit))
	})
	return newGenerator[T](ctx, c, endpoint, fetcher, opts)
}

// streamResults is stream for search endpoints that wrap items in SearchResults.
func streamResults[T any](ctx context.Context, c *Client, endpoint string, params url.Values, opts []pagination.Option) (*generator.Generator[T], error) {
	fetcher := pagination.FetcherFunc[T](func(ctx context.Context, offset, limit int) ([]T, error) {
		res, err := getOne[SearchResults[T]](ctx, c, endpoint, withWindow(params, offset, limit))
		if err != nil {
			return nil, err
		}
		return res.Results, nil
	})
	return newGenerator[T](ctx, c, endpoint, fetcher, opts)
}

func newGenerator[T any](ctx context.Context, c *Client, endpoint string, fetcher pagination.PageFetcher[T], opts []pagination.Option) (*generator.Generator[T], error) {
	gen, err := pagination.NewGenerator(ctx, streamName(endpoint), fetcher, opts...)
	if err != nil {
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("Rejected stream parameters")
		return nil, err
	}
	return gen, nil
}

func withWindow(params url.Values, offset, limit int) url.Values {
	p := cloneValues(params)
	p.Set("start", strconv.Itoa(offset))
	p.Set("limit", strconv.Itoa(limit))
	return p
}

// streamName turns "artist/releases/" into "artist/releases".
func streamName(endpoint string) string {
	return strings.TrimSuffix(endpoint, "/")
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for name, values := range v {
		out[name] = append([]string(nil), values...)
	}
	return out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
