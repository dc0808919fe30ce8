package resilience

import "errors"

// ErrSaturated is returned when no admission slot frees up within MaxWait.
var ErrSaturated = errors.New("resilience: admission saturated")
