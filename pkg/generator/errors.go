package generator

import "errors"

var (
	// ErrNoItemAvailable is returned by Next when no item is buffered, i.e.
	// Next was called without a preceding HasNext that returned true.
	ErrNoItemAvailable = errors.New("generator: no item available")

	// ErrAlreadyConsumed is yielded by All when the generator was already
	// traversed or has reached a terminal state.
	ErrAlreadyConsumed = errors.New("generator: already consumed")

	// ErrEmptyIterator is returned by First when the sequence yields no items.
	ErrEmptyIterator = errors.New("generator: iterator is empty")
)
