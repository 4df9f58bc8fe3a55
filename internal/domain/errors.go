package domain

import "errors"

var (
	// ErrNoData distinguishes "no rows stored yet" from a store failure.
	ErrNoData = errors.New("no data")

	ErrUnknownInstrument = errors.New("unknown instrument")
)
