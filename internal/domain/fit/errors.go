package fit

import "errors"

// Sentinel kinds for fit errors. These allow errors.Is/As from callers.
var (
	ErrUnknownModel = errors.New("unknown fit model")
	ErrNoValues     = errors.New("no values to fit")
)
