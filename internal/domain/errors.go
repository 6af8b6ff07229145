package domain

import "errors"

// Generation errors. Callers branch with errors.Is; implementations wrap with %w.
var (
	// ErrConfiguration marks invalid construction parameters (inverted ranges,
	// non-positive rates, empty dimension value lists).
	ErrConfiguration = errors.New("configuration error")

	// ErrRange marks a generation window outside what a factor can produce.
	ErrRange = errors.New("range error")

	// ErrNotSupported marks source data layouts the generator does not handle.
	ErrNotSupported = errors.New("not supported")
)
