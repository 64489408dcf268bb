package pagination

import (
	"errors"
	"fmt"
)

// DefaultBatchSize is the page size used when none is configured.
const DefaultBatchSize = 10

// ErrInvalidParameter is returned for a cursor that cannot drive a stream.
var ErrInvalidParameter = errors.New("pagination: invalid parameter")

// Cursor is the starting position and page size of a stream.
type Cursor struct {
	Offset    int
	BatchSize int
}

// DefaultCursor starts at offset 0 with DefaultBatchSize items per page.
func DefaultCursor() Cursor {
	return Cursor{Offset: 0, BatchSize: DefaultBatchSize}
}

// Option modifies a Cursor.
type Option func(*Cursor)

// WithOffset sets the offset of the first page.
func WithOffset(offset int) Option {
	return func(c *Cursor) {
		c.Offset = offset
	}
}

// WithBatchSize sets the number of items requested per page.
func WithBatchSize(size int) Option {
	return func(c *Cursor) {
		c.BatchSize = size
	}
}

// NewCursor applies opts to DefaultCursor and validates the result.
func NewCursor(opts ...Option) (Cursor, error) {
	c := DefaultCursor()
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Cursor{}, err
	}
	return c, nil
}

// Validate rejects non-positive batch sizes and negative offsets.
func (c Cursor) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidParameter, c.BatchSize)
	}
	if c.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidParameter, c.Offset)
	}
	return nil
}
