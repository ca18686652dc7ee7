package shred

// EventType identifies a step of a shred or prune operation
type EventType int

const (
	EventMissing EventType = iota
	EventEmptyRemoved
	EventPassStarted
	EventProgress
	EventPassSynced
	EventRemoved
	EventDirRemoved
)

func (t EventType) String() string {
	switch t {
	case EventMissing:
		return "missing"
	case EventEmptyRemoved:
		return "empty-removed"
	case EventPassStarted:
		return "pass-started"
	case EventProgress:
		return "progress"
	case EventPassSynced:
		return "pass-synced"
	case EventRemoved:
		return "removed"
	case EventDirRemoved:
		return "dir-removed"
	default:
		return "unknown"
	}
}

// Event is emitted to Shredder.OnEvent.
// Bytes is the running count written in the current pass and Total the file size.
type Event struct {
	Type    EventType
	Path    string
	Pass    int
	Passes  int
	Pattern Pattern
	Bytes   int64
	Total   int64
}
