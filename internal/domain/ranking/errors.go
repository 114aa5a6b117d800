package ranking

import "errors"

// Sentinel kinds for ranking errors. These allow errors.Is/As from callers.
var (
	ErrUnknownRanking = errors.New("unknown ranking statistic")
)
