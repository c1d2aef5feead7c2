package sculpt

import (
	"sync"

	"github.com/gekko3d/sculpt/core"
)

// Sink receives engine notifications. Calls happen on the tick thread, after the
// change they describe is visible.
type Sink interface {
	OnStateChange(s State)
	OnCountChange(n int)
	OnColorPicked(c core.Color, m core.Material)
	OnHistoryChange(canUndo, canRedo bool)
	OnSelectionChange(n int)
}

type NopSink struct{}

func (NopSink) OnStateChange(State)                     {}
func (NopSink) OnCountChange(int)                       {}
func (NopSink) OnColorPicked(core.Color, core.Material) {}
func (NopSink) OnHistoryChange(bool, bool)              {}
func (NopSink) OnSelectionChange(int)                   {}

type EventKind int

const (
	EventState EventKind = iota
	EventCount
	EventColorPicked
	EventHistory
	EventSelection
)

func (k EventKind) String() string {
	switch k {
	case EventState:
		return "state"
	case EventCount:
		return "count"
	case EventColorPicked:
		return "color-picked"
	case EventHistory:
		return "history"
	case EventSelection:
		return "selection"
	}
	return "unknown"
}

// Event is one notification. Only the fields for its Kind are set.
type Event struct {
	Kind     EventKind
	State    State
	Count    int
	Color    core.Color
	Material core.Material
	CanUndo  bool
	CanRedo  bool
}

const DefaultEventQueueSize = 256

// EventQueue is a Sink that buffers events for another goroutine, typically a UI,
// to drain. When full, the oldest events are overwritten.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
	head   int
	size   int
	lost   int
}

func NewEventQueue(capacity int) *EventQueue {
	if capacity <= 0 {
		capacity = DefaultEventQueueSize
	}
	return &EventQueue{events: make([]Event, capacity)}
}

func (q *EventQueue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.events)
	q.events[(q.head+q.size)%n] = ev
	if q.size == n {
		q.head = (q.head + 1) % n
		q.lost++
		return
	}
	q.size++
}

// Drain returns pending events in FIFO order and empties the queue.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return nil
	}
	out := make([]Event, q.size)
	for i := range out {
		out[i] = q.events[(q.head+i)%len(q.events)]
	}
	q.head, q.size = 0, 0
	return out
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Overwritten counts events lost to a full queue.
func (q *EventQueue) Overwritten() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lost
}

func (q *EventQueue) OnStateChange(s State) {
	q.Push(Event{Kind: EventState, State: s})
}

func (q *EventQueue) OnCountChange(n int) {
	q.Push(Event{Kind: EventCount, Count: n})
}

func (q *EventQueue) OnColorPicked(c core.Color, m core.Material) {
	q.Push(Event{Kind: EventColorPicked, Color: c, Material: m})
}

func (q *EventQueue) OnHistoryChange(canUndo, canRedo bool) {
	q.Push(Event{Kind: EventHistory, CanUndo: canUndo, CanRedo: canRedo})
}

func (q *EventQueue) OnSelectionChange(n int) {
	q.Push(Event{Kind: EventSelection, Count: n})
}
