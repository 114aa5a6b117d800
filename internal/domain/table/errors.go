package table

import "errors"

// Sentinel kinds for table errors. These allow errors.Is/As from callers.
var (
	ErrColumnLength   = errors.New("column length mismatch")
	ErrColumnMismatch = errors.New("column set mismatch")
	ErrMissingColumn  = errors.New("required column missing")
)
