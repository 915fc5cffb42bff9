package cache

import "errors"

var (
	// ErrCacheMiss is returned by [GetJSON] when no usable entry exists.
	ErrCacheMiss = errors.New("cache miss")
	// ErrUnknownBackend is returned by [Open] for a backend name it does
	// not know.
	ErrUnknownBackend = errors.New("unknown cache backend")
)
