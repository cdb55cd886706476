package pricing

import "errors"

// Sentinel errors for odds conversion.
var (
	ErrProbabilityRange = errors.New("probability must be strictly between 0 and 1")
	ErrInvalidOdds      = errors.New("american odds must be at least 100 in magnitude")
)
