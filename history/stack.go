// Package history keeps the bounded linear undo/redo log of whole-field snapshots.
package history

const DefaultDepth = 50

// Stack is a linear undo log: pushing forgets any redo branch, and the oldest entry
// is evicted past the depth limit.
type Stack struct {
	depth int
	undo  []Snapshot
	redo  []Snapshot
}

func NewStack(depth int) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Stack{depth: depth}
}

func (s *Stack) Push(snap Snapshot) {
	s.undo = append(s.undo, snap)
	if len(s.undo) > s.depth {
		s.undo = s.undo[len(s.undo)-s.depth:]
	}
	s.redo = s.redo[:0]
}

// Undo moves current onto the redo stack and returns the snapshot to restore.
func (s *Stack) Undo(current Snapshot) (Snapshot, bool) {
	if len(s.undo) == 0 {
		return Snapshot{}, false
	}
	snap := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, current)
	return snap, true
}

// Redo is the mirror of Undo.
func (s *Stack) Redo(current Snapshot) (Snapshot, bool) {
	if len(s.redo) == 0 {
		return Snapshot{}, false
	}
	snap := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, current)
	if len(s.undo) > s.depth {
		s.undo = s.undo[len(s.undo)-s.depth:]
	}
	return snap, true
}

// Pop drops the newest undo entry without touching redo. Used when a transition is
// abandoned and its in-flight state must not be kept.
func (s *Stack) Pop() (Snapshot, bool) {
	if len(s.undo) == 0 {
		return Snapshot{}, false
	}
	snap := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	return snap, true
}

func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }
func (s *Stack) Len() int      { return len(s.undo) }
func (s *Stack) RedoLen() int  { return len(s.redo) }
func (s *Stack) Depth() int    { return s.depth }

func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
}
