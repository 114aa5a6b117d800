package app

import "errors"

// Sentinel kinds for pipeline errors. These allow errors.Is/As from callers.
var (
	// ErrConfiguration marks fatal misconfiguration: bad binning
	// parameters, unknown columns referenced by cuts, unknown model or
	// ranking names. It is always reported before partial output exists.
	ErrConfiguration = errors.New("pipeline configuration error")
)
