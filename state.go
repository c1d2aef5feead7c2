package sculpt

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotEditable       = errors.New("field is not editable")
)

type State int

const (
	StateStable State = iota
	StateDismantling
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateStable:
		return "STABLE"
	case StateDismantling:
		return "DISMANTLING"
	case StateRebuilding:
		return "REBUILDING"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Mode int

const (
	ModeView Mode = iota
	ModeBuild
)

func (m Mode) String() string {
	if m == ModeBuild {
		return "build"
	}
	return "view"
}

type trigger int

const (
	triggerDismantle trigger = iota
	triggerRebuild
	triggerSettle
	triggerRestore
)

func (t trigger) String() string {
	switch t {
	case triggerDismantle:
		return "dismantle"
	case triggerRebuild:
		return "rebuild"
	case triggerSettle:
		return "settle"
	case triggerRestore:
		return "restore"
	}
	return "unknown"
}

// transitions lists every legal edge. Restore is legal from anywhere.
var transitions = map[State]map[trigger]State{
	StateStable: {
		triggerDismantle: StateDismantling,
		triggerRebuild:   StateRebuilding,
		triggerRestore:   StateStable,
	},
	StateDismantling: {
		triggerRebuild: StateRebuilding,
		triggerRestore: StateStable,
	},
	StateRebuilding: {
		triggerSettle:  StateStable,
		triggerRestore: StateStable,
	},
}

// next resolves a trigger against the table. Dismantle is also refused in build mode.
func next(from State, mode Mode, t trigger) (State, error) {
	if t == triggerDismantle && mode == ModeBuild {
		return from, fmt.Errorf("%w: %s while in %s mode", ErrInvalidTransition, t, mode)
	}
	to, ok := transitions[from][t]
	if !ok {
		return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t, from)
	}
	return to, nil
}
