package domain

import "errors"

// ErrValidation marks input rejected by business rules. Wrap it with a
// message describing the offending field.
var ErrValidation = errors.New("validation failed")
