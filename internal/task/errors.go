package task

import "errors"

// Parse errors for user- or store-supplied scalar values.
var (
	ErrInvalidDate  = errors.New("invalid date (want YYYY-MM-DD)")
	ErrInvalidColor = errors.New("invalid color (want #RRGGBB)")
	ErrUnknownColor = errors.New("unknown color name")
)
