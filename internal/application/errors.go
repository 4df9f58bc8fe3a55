package application

import "errors"

var ErrNotFound = errors.New("not found")
var ErrBadRequest = errors.New("bad request")

// ErrStoreUnavailable wraps persistence failures. A store outage is a hard
// failure for the whole call; only provider failures degrade per instrument.
var ErrStoreUnavailable = errors.New("store unavailable")
