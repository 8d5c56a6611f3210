package dialogs

import "errors"

// State is the explicit lifecycle of a dialog. Transitions are guarded by
// the dialog mutex so contradictory flag combinations cannot occur:
//
//	Closed -> Opening -> Ready -> Mutating -> Ready
//	any state -> Closed (via Close)
type State int

const (
	Closed State = iota
	Opening
	Ready
	Mutating
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Ready:
		return "ready"
	case Mutating:
		return "mutating"
	}
	return "unknown"
}

var (
	// ErrBusy rejects a second operation while one is outstanding. The
	// guard is the state transition itself, not a flag checked at click
	// time, so two in-flight mutations cannot race past it.
	ErrBusy = errors.New("dialog: operation already in progress")

	ErrNotOpen = errors.New("dialog: not open")

	// ErrNoSelection is a local validation failure; no network call is
	// made.
	ErrNoSelection = errors.New("dialog: no item selected")

	// ErrNoMapping rejects a removal when no mapping id is known.
	ErrNoMapping = errors.New("dialog: no mapping on record")

	// ErrAlreadyLinked rejects an add when a mapping already exists.
	ErrAlreadyLinked = errors.New("dialog: user already linked")
)
