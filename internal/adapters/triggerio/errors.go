package triggerio

import "errors"

// Sentinel kinds for trigger-file errors. ErrDirUnreadable is fatal;
// ErrFileUnreadable is recovered by the driver (log and skip).
var (
	ErrDirUnreadable  = errors.New("input directory unreadable")
	ErrFileUnreadable = errors.New("trigger file unreadable")
	ErrLiveTimeField  = errors.New("no live-time field in file name")
)
