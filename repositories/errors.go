package repositories

import "errors"

// ErrNotFound is returned when a requested document does not exist in the
// durable store.
var ErrNotFound = errors.New("not found")
