package plateappearance

import "errors"

// ErrNilRNG is returned when Sample is called without a random source.
var ErrNilRNG = errors.New("nil random source")
