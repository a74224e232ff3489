package targeting

import "errors"

// ErrBoundInversion is returned by FullyBoundVersionRange when min > max.
var ErrBoundInversion = errors.New("targeting: version range min must be <= max")
