package distribution

import "errors"

// ErrEmpty is returned when statistics are requested from a PMF with no mass.
var ErrEmpty = errors.New("empty distribution")
