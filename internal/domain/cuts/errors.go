package cuts

import "errors"

// Sentinel kinds for cut-engine errors. These allow errors.Is/As from callers.
var (
	ErrUnknownColumn = errors.New("cut references unknown column")
	ErrUnknownKind   = errors.New("unknown comparison kind")
)
