package statuslist

// Event is implemented by every event the status list registry emits on a
// successful command.
type Event interface{ isStatusListEvent() }

type StatusListCreated struct {
	StatusListID string
	IssuerDid    []byte
}

type StatusUpdated struct {
	StatusListID string
	StatusIndex  uint32
	Revoked      bool
}

func (StatusListCreated) isStatusListEvent() {}
func (StatusUpdated) isStatusListEvent()     {}

// TargetID returns the textual status list id the event was applied
// against, for logging at the dispatch layer.
func (e StatusListCreated) TargetID() string { return e.StatusListID }
func (e StatusUpdated) TargetID() string     { return e.StatusListID }
