package shapes

import "errors"

var (
	ErrRingSize     = errors.New("shapes: ring needs at least 3 rim points")
	ErrRadius       = errors.New("shapes: radius must be positive")
	ErrRingMismatch = errors.New("shapes: rings have different sizes")
	ErrSegments     = errors.New("shapes: tube needs at least 2 segments")
	ErrLines        = errors.New("shapes: not enough lines for actuation")
	ErrSpacing      = errors.New("shapes: spacing must be positive")
)
