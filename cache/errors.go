package cache

import "errors"

// ErrInvalidConfig is returned by New for a rejected configuration
// (capacity < 1).
var ErrInvalidConfig = errors.New("cache: invalid configuration")

// ErrNoLoader is returned by GetOrLoad when no Loader was configured.
var ErrNoLoader = errors.New("cache: no Loader provided")
