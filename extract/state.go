package extract

// State is the lifecycle state of one file's extraction
type State int

const (
	StateIdle State = iota
	StateMetadataPending
	StatePagesPending
	StateFontsPending
	StateComplete
	StateFailed
)

// String returns a string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMetadataPending:
		return "metadata-pending"
	case StatePagesPending:
		return "pages-pending"
	case StateFontsPending:
		return "fonts-pending"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}
