package store

import "errors"

var (
	ErrNotFound     = errors.New("store: resource not found")
	ErrUnsupported  = errors.New("store: unsupported driver")
	ErrNotAvailable = errors.New("store: usage tracking is not configured")
)
