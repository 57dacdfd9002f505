package rfpath

import "errors"

// Error kinds for the RF path analyzer (§7).
var (
	ErrGeometryInvalid     = errors.New("rfpath: path distance out of range [100m, 500km]")
	ErrElevationUnavailable = errors.New("rfpath: could not fetch elevation data")
)
