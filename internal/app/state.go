package app

// groupState is the per-file, per-detector outcome in the driver's state
// machine. Unreadable files and empty or filtered-out groups are skipped;
// only accumulated groups contribute rows.
type groupState int

const (
	stateUnreadable groupState = iota
	stateNoRelevantGroup
	stateEmpty
	stateFilteredEmpty
	stateAccumulated
)

func (s groupState) String() string {
	switch s {
	case stateUnreadable:
		return "unreadable"
	case stateNoRelevantGroup:
		return "no_relevant_group"
	case stateEmpty:
		return "empty"
	case stateFilteredEmpty:
		return "filtered_empty"
	case stateAccumulated:
		return "accumulated"
	}
	return "unknown"
}
