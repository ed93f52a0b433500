package store

import "errors"

var (
	// ErrStorageUnavailable means the backing database file is missing or
	// unreadable. Fatal to the current view; nothing can be shown.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound means a valid query resolved to no entity (e.g. an
	// unknown security code).
	ErrNotFound = errors.New("not found")
)
