package binning

import "errors"

// Sentinel kinds for binning errors. These allow errors.Is/As from callers.
var (
	ErrBadEdges       = errors.New("invalid bin edges")
	ErrUnknownSpacing = errors.New("unknown bin spacing")
	ErrOutOfRange     = errors.New("value outside binning range")
)
