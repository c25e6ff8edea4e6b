package fitcheck

import "errors"

var (
	ErrInvalidScore = errors.New("mood, stress and energy must be between 1 and 5")
	ErrNoUser       = errors.New("assessment requires a signed-in user")
)
