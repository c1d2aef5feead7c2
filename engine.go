// Package sculpt is a voxel sculpture engine: a bounded voxel field that can be
// edited cell by cell, shattered into falling debris and rebuilt into a new shape by
// pairing existing voxels with target voxels of similar color and material.
//
// An Engine is driven by a single tick loop. Every method except Enqueue must be
// called from that loop.
package sculpt

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gekko3d/sculpt/core"
	"github.com/gekko3d/sculpt/editor"
	"github.com/gekko3d/sculpt/history"
	"github.com/gekko3d/sculpt/physics"
	"github.com/gekko3d/sculpt/render"
	"github.com/gekko3d/sculpt/solver"
)

type Engine struct {
	cfg Config

	field   *core.Field
	editor  *editor.Editor
	history *history.Stack
	physics *physics.Integrator
	batcher *render.Batcher
	frames  render.FrameContainer
	rng     *rand.Rand

	sink Sink
	log  Logger

	state State
	mode  Mode

	// Rebuild bookkeeping, index aligned with field order.
	targets []solver.Target
	elapsed time.Duration
	ticks   int

	cmdMu   sync.Mutex
	pending []func(*Engine)
}

type Option func(*Engine)

func WithSink(s Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRand replaces the random source used for scatter impulses and clone picks.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:     cfg,
		field:   core.NewField(cfg.MaxVoxels),
		history: history.NewStack(cfg.HistoryDepth),
		physics: physics.NewIntegrator(cfg.physicsParams()),
		batcher: render.NewBatcher(),
		rng:     rand.New(rand.NewSource(seed)),
		sink:    NopSink{},
		log:     NewNopLogger(),
	}
	e.editor = editor.NewEditor(editor.RecorderFunc(e.record))
	e.editor.VoxelSize = cfg.VoxelSize
	e.editor.FloorY = cfg.FloorY
	e.editor.SelectHeight = cfg.SelectHeight

	for _, opt := range opts {
		opt(e)
	}
	e.publish()
	return e, nil
}

func (e *Engine) Config() Config      { return e.cfg }
func (e *Engine) State() State        { return e.state }
func (e *Engine) Mode() Mode          { return e.mode }
func (e *Engine) Tool() editor.Tool   { return e.editor.Tool }
func (e *Engine) Count() int          { return e.field.Len() }
func (e *Engine) CanUndo() bool       { return e.history.CanUndo() }
func (e *Engine) CanRedo() bool       { return e.history.CanRedo() }
func (e *Engine) SelectionCount() int { return e.editor.SelectionCount() }
func (e *Engine) Mirror() bool        { return e.editor.Mirror }

// BuildProps are the color and material new voxels are placed and painted with.
func (e *Engine) BuildProps() (core.Color, core.Material) {
	return e.editor.Color, e.editor.Material
}

// Field exposes the live field for read-only inspection on the tick thread.
func (e *Engine) Field() *core.Field { return e.field }

// Frame returns the latest published render projection. Safe from any goroutine.
func (e *Engine) Frame() *render.Frame { return e.frames.Get() }

func (e *Engine) Persisted() []core.Persisted { return e.field.ToPersisted() }

func (e *Engine) JSON() ([]byte, error) {
	return core.EncodeJSON(e.field.ToPersisted())
}

// LoadInitialModel replaces the field with data and forgets all history. Entries
// that collide with an earlier one or exceed capacity are skipped; the number loaded
// is returned. Any running transition is abandoned.
func (e *Engine) LoadInitialModel(data []core.Persisted) int {
	before := e.field.Len()
	e.field.Clear()

	skipped := 0
	for _, p := range data {
		if _, err := e.field.Add(p.Cell(), p.Color, p.Material); err != nil {
			skipped++
		}
	}
	if skipped > 0 {
		e.log.Warnf("load: skipped %d of %d voxels", skipped, len(data))
	}

	e.history.Clear()
	e.resetTransition()
	if e.editor.ClearSelection() {
		e.sink.OnSelectionChange(0)
	}
	e.setState(StateStable)
	if e.field.Len() != before {
		e.sink.OnCountChange(e.field.Len())
	}
	e.sink.OnHistoryChange(false, false)
	e.publish()
	return e.field.Len()
}

// LoadJSON sanitizes a JSON voxel array and loads it.
func (e *Engine) LoadJSON(data []byte) (core.Report, error) {
	ps, rep, err := core.DecodeJSON(data)
	if err != nil {
		return rep, fmt.Errorf("load: %w", err)
	}
	if rep.Dropped > 0 || rep.ColorDefaulted > 0 || rep.MaterialDefaulted > 0 {
		e.log.Warnf("load: %s", rep)
	}
	e.LoadInitialModel(ps)
	return rep, nil
}

// Dismantle shatters the field. Only allowed from STABLE in view mode.
func (e *Engine) Dismantle() error {
	to, err := next(e.state, e.mode, triggerDismantle)
	if err != nil {
		e.log.Debugf("dismantle refused: %v", err)
		return err
	}

	e.record()
	e.resetTransition()
	e.physics.Scatter(e.field, e.rng)
	e.log.Infof("dismantle: %d voxels", e.field.Len())
	e.setState(to)
	return nil
}

// Rebuild morphs the current voxels into target. Targets past the field's capacity
// are ignored. A rebuild started from STABLE is undoable; one that continues a
// dismantle shares the dismantle's undo entry.
func (e *Engine) Rebuild(target []core.Persisted) error {
	to, err := next(e.state, e.mode, triggerRebuild)
	if err != nil {
		e.log.Debugf("rebuild refused: %v", err)
		return err
	}

	if len(target) > e.field.Cap() {
		e.log.Warnf("rebuild: target has %d voxels, truncating to %d", len(target), e.field.Cap())
		target = target[:e.field.Cap()]
	}
	if e.state == StateStable {
		e.record()
	}

	before := e.field.Len()
	for _, v := range e.field.Voxels() {
		v.Settled = false
		v.Rubble = false
	}
	a := solver.Solve(e.field.Voxels(), target, e.cfg.solverParams(), e.rng)
	e.field.ReplaceAll(a.Voxels)

	e.resetTransition()
	e.targets = a.Targets
	if e.editor.ClearSelection() {
		e.sink.OnSelectionChange(0)
	}

	e.log.Infof("rebuild: %d targets, %d matched, %d cloned, %d rubble",
		len(target), a.Matched, a.Cloned, a.RubbleCount())
	e.setState(to)
	if e.field.Len() != before {
		e.sink.OnCountChange(e.field.Len())
	}
	return nil
}

// RebuildJSON sanitizes a JSON voxel array and rebuilds into it.
func (e *Engine) RebuildJSON(data []byte) (core.Report, error) {
	ps, rep, err := core.DecodeJSON(data)
	if err != nil {
		return rep, fmt.Errorf("rebuild: %w", err)
	}
	return rep, e.Rebuild(ps)
}

// Tick runs queued commands, advances the active transition by one step and
// publishes a fresh render frame.
func (e *Engine) Tick(dt time.Duration) {
	e.flushCommands()

	switch e.state {
	case StateDismantling:
		e.ticks++
		e.physics.StepDismantle(e.field)
	case StateRebuilding:
		e.ticks++
		e.elapsed += dt
		if e.physics.StepRebuild(e.field, e.targets, e.elapsed) {
			e.completeRebuild()
		}
	}

	e.publish()
}

func (e *Engine) completeRebuild() {
	to, err := next(e.state, e.mode, triggerSettle)
	if err != nil {
		e.log.Errorf("settle: %v", err)
		return
	}

	purged := 0
	if e.cfg.PurgeRubble {
		for _, v := range append([]*core.Voxel(nil), e.field.Voxels()...) {
			if v.Rubble {
				e.field.Remove(v.Id)
				purged++
			}
		}
	}
	e.field.Snap(e.cfg.FloorY)

	e.log.Infof("rebuild settled after %d ticks (%s), %d voxels, %d purged",
		e.ticks, e.elapsed, e.field.Len(), purged)
	e.resetTransition()
	e.setState(to)
	if purged > 0 {
		e.sink.OnCountChange(e.field.Len())
	}
}

// Undo restores the previous snapshot and forces STABLE. Undoing during a
// transition drops the in-flight field without making it redoable. It reports
// whether anything was undone.
func (e *Engine) Undo() (bool, error) {
	if !e.history.CanUndo() {
		return false, nil
	}

	var snap history.Snapshot
	if e.state != StateStable {
		snap, _ = e.history.Pop()
		e.log.Infof("undo: abandoning %s", e.state)
	} else {
		cur, err := history.Capture(e.field)
		if err != nil {
			e.log.Errorf("undo: capture current field: %v", err)
			return false, err
		}
		snap, _ = e.history.Undo(cur)
	}
	return true, e.restore(snap)
}

// Redo reapplies the snapshot most recently undone.
func (e *Engine) Redo() (bool, error) {
	if !e.history.CanRedo() {
		return false, nil
	}
	cur, err := history.Capture(e.field)
	if err != nil {
		e.log.Errorf("redo: capture current field: %v", err)
		return false, err
	}
	snap, _ := e.history.Redo(cur)
	return true, e.restore(snap)
}

func (e *Engine) restore(snap history.Snapshot) error {
	ps, err := snap.Restore()
	if err != nil {
		e.log.Errorf("history: %v", err)
		e.sink.OnHistoryChange(e.history.CanUndo(), e.history.CanRedo())
		return err
	}

	before := e.field.Len()
	e.field.ReplaceAll(core.Voxels(ps))
	e.resetTransition()
	if e.editor.ClearSelection() {
		e.sink.OnSelectionChange(0)
	}
	e.setState(StateStable)
	if e.field.Len() != before {
		e.sink.OnCountChange(e.field.Len())
	}
	e.sink.OnHistoryChange(e.history.CanUndo(), e.history.CanRedo())
	e.publish()
	return nil
}

// SetMode switches between view and build mode. Leaving build mode drops the
// selection.
func (e *Engine) SetMode(m Mode) {
	if m == e.mode {
		return
	}
	e.mode = m
	if m != ModeBuild && e.editor.ClearSelection() {
		e.sink.OnSelectionChange(0)
	}
	e.log.Debugf("mode: %s", m)
}

func (e *Engine) SetTool(t editor.Tool) {
	if e.editor.SetTool(t) {
		e.sink.OnSelectionChange(0)
	}
}

func (e *Engine) SetBuildProps(c core.Color, m core.Material) error {
	if c > core.MaxColor {
		return fmt.Errorf("%w: %#x", core.ErrBadColor, uint32(c))
	}
	if !m.Valid() {
		return fmt.Errorf("unknown material %d", m)
	}
	e.editor.Color = c
	e.editor.Material = m
	return nil
}

// SetVoxelSize changes the world-space pitch used for pointer translation and
// rendering. Voxel coordinates are unaffected.
func (e *Engine) SetVoxelSize(size float32) error {
	if size <= 0 {
		return fmt.Errorf("voxel size must be positive, got %v", size)
	}
	e.cfg.VoxelSize = size
	e.editor.VoxelSize = size
	e.publish()
	return nil
}

func (e *Engine) SetMirrorMode(on bool) {
	e.editor.Mirror = on
}

func (e *Engine) editable(op string) error {
	if e.state != StateStable || e.mode != ModeBuild {
		e.log.Debugf("%s refused: %s, %s mode", op, e.state, e.mode)
		return fmt.Errorf("%w: %s during %s in %s mode", ErrNotEditable, op, e.state, e.mode)
	}
	return nil
}

// PlaceAt adds a voxel with the current build props (and its mirror image).
func (e *Engine) PlaceAt(cell core.Cell) error {
	if err := e.editable("place"); err != nil {
		return err
	}
	before := e.field.Len()
	if err := e.editor.Place(e.field, cell, e.editor.Color, e.editor.Material); err != nil {
		e.log.Debugf("place %v: %v", cell, err)
		return err
	}
	e.afterEdit(before)
	return nil
}

// EraseAt removes the voxel at cell (and its mirror image).
func (e *Engine) EraseAt(cell core.Cell) (bool, error) {
	if err := e.editable("erase"); err != nil {
		return false, err
	}
	before, selected := e.field.Len(), e.editor.SelectionCount()
	if !e.editor.Erase(e.field, cell) {
		return false, nil
	}
	if n := e.editor.SelectionCount(); n != selected {
		e.sink.OnSelectionChange(n)
	}
	e.afterEdit(before)
	return true, nil
}

// PickAt copies the color and material at cell into the build props.
func (e *Engine) PickAt(cell core.Cell) (core.Color, core.Material, error) {
	if err := e.editable("pick"); err != nil {
		return 0, 0, err
	}
	c, m, ok := e.editor.Pick(e.field, cell)
	if !ok {
		return 0, 0, nil
	}
	e.editor.Color, e.editor.Material = c, m
	e.sink.OnColorPicked(c, m)
	return c, m, nil
}

// PaintAt flood-fills the region connected to cell with the build props.
func (e *Engine) PaintAt(cell core.Cell) (int, error) {
	if err := e.editable("paint"); err != nil {
		return 0, err
	}
	n := e.editor.PaintBucket(e.field, cell, e.editor.Color, e.editor.Material)
	if n > 0 {
		e.publish()
	}
	return n, nil
}

func (e *Engine) Select(r editor.Region) (int, error) {
	if err := e.editable("select"); err != nil {
		return 0, err
	}
	n := e.editor.Select(e.field, r)
	e.sink.OnSelectionChange(n)
	return n, nil
}

func (e *Engine) DeleteSelected() (int, error) {
	if err := e.editable("delete"); err != nil {
		return 0, err
	}
	before := e.field.Len()
	n := e.editor.DeleteSelected(e.field)
	if n == 0 {
		return 0, nil
	}
	e.sink.OnSelectionChange(0)
	e.afterEdit(before)
	return n, nil
}

func (e *Engine) CopySelected() (int, error) {
	if err := e.editable("copy"); err != nil {
		return 0, err
	}
	before := e.field.Len()
	n, err := e.editor.CopySelected(e.field)
	if err != nil {
		e.log.Debugf("copy: %v", err)
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	e.sink.OnSelectionChange(e.editor.SelectionCount())
	e.afterEdit(before)
	return n, nil
}

func (e *Engine) MoveSelected(axis editor.Axis, dir int) error {
	if err := e.editable("move"); err != nil {
		return err
	}
	if err := e.editor.MoveSelected(e.field, axis, dir); err != nil {
		e.log.Debugf("move: %v", err)
		return err
	}
	e.publish()
	return nil
}

// Interact applies the current tool to a pointer target. Place aims at the face
// neighbour of a hit voxel or the ground under the pointer; the other cell tools
// need a hit voxel and ignore misses. The select tool selects the single column
// under the target.
func (e *Engine) Interact(t editor.Target) error {
	switch e.editor.Tool {
	case editor.ToolPlace:
		return e.PlaceAt(e.editor.PlacementCell(t))
	case editor.ToolSelect:
		p := t.Point
		if t.Hit != nil {
			p = t.Hit.Pos.Mul(e.editor.VoxelSize)
		}
		_, err := e.Select(editor.Region{Start: p, End: p})
		return err
	}

	cell, ok := e.editor.HitCell(t)
	if !ok {
		return e.editable("interact")
	}
	var err error
	switch e.editor.Tool {
	case editor.ToolErase:
		_, err = e.EraseAt(cell)
	case editor.ToolPick:
		_, _, err = e.PickAt(cell)
	case editor.ToolPaint:
		_, err = e.PaintAt(cell)
	}
	return err
}

// record is the editor's Recorder: it snapshots the field right before a mutation.
func (e *Engine) record() {
	snap, err := history.Capture(e.field)
	if err != nil {
		e.log.Errorf("history: capture: %v", err)
		return
	}
	e.history.Push(snap)
	e.sink.OnHistoryChange(e.history.CanUndo(), e.history.CanRedo())
}

func (e *Engine) afterEdit(before int) {
	if n := e.field.Len(); n != before {
		e.sink.OnCountChange(n)
	}
	e.publish()
}

func (e *Engine) setState(s State) {
	if s == e.state {
		return
	}
	e.log.Debugf("state: %s -> %s", e.state, s)
	e.state = s
	e.sink.OnStateChange(s)
}

func (e *Engine) resetTransition() {
	e.targets = nil
	e.elapsed = 0
	e.ticks = 0
}

func (e *Engine) publish() {
	groups := e.batcher.Sync(e.field, e.cfg.VoxelSize)
	e.frames.Update(&render.Frame{Groups: groups, Count: e.field.Len()})
}
