package sculpt

// Enqueue schedules fn to run on the tick thread at the start of the next Tick,
// before physics advances. It is the only Engine method safe to call from other
// goroutines; use it to hand results of async work (a generated model, a file
// load) back to the engine.
func (e *Engine) Enqueue(fn func(*Engine)) {
	if fn == nil {
		return
	}
	e.cmdMu.Lock()
	e.pending = append(e.pending, fn)
	e.cmdMu.Unlock()
}

// Pending reports how many queued commands are waiting for the next tick.
func (e *Engine) Pending() int {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()
	return len(e.pending)
}

func (e *Engine) flushCommands() {
	e.cmdMu.Lock()
	cmds := e.pending
	e.pending = nil
	e.cmdMu.Unlock()

	// Commands queued while flushing wait for the following tick.
	for _, fn := range cmds {
		fn(e)
	}
}
