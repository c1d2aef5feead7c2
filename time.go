package sculpt

import (
	"time"
)

// Time tracks the host frame clock. Hosts call Advance once per frame and pass Dt
// to Engine.Tick.
type Time struct {
	Time time.Time
	Dt   time.Duration
}

func NewTime(now time.Time) *Time {
	return &Time{Time: now}
}

func (t *Time) Advance(now time.Time) time.Duration {
	t.Dt = now.Sub(t.Time)
	t.Time = now
	return t.Dt
}
