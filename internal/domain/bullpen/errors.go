package bullpen

import "errors"

// Usage errors.
var (
	ErrNotOnMound    = errors.New("pitcher not on the mound")
	ErrNegativeUsage = errors.New("negative usage")
)
