// Package editor implements the build-mode operations that mutate a voxel field:
// place, erase, pick, paint bucket and the selection tools, with optional mirroring
// across the x = 0 plane.
package editor

import (
	"errors"
	"math"

	"github.com/gekko3d/sculpt/core"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrBlocked = errors.New("destination occupied by an unselected voxel")

type Tool int

const (
	ToolPlace Tool = iota
	ToolErase
	ToolPick
	ToolPaint
	ToolSelect
)

func (t Tool) String() string {
	switch t {
	case ToolPlace:
		return "place"
	case ToolErase:
		return "erase"
	case ToolPick:
		return "pick"
	case ToolPaint:
		return "paint"
	case ToolSelect:
		return "select"
	}
	return "unknown"
}

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Recorder is told right before the editor mutates the field, once per operation.
type Recorder interface {
	Record()
}

type RecorderFunc func()

func (f RecorderFunc) Record() { f() }

// Target is a pointer hit translated by the host's picking service: either an
// existing voxel and the face normal that was hit, or a world-space ground point.
type Target struct {
	Hit    *core.Voxel
	Normal core.Cell
	Point  mgl32.Vec3
}

type Editor struct {
	Tool     Tool
	Mirror   bool
	Color    core.Color
	Material core.Material

	VoxelSize    float32
	FloorY       float32
	SelectHeight float32

	recorder  Recorder
	selection map[core.VoxelId]struct{}
}

func NewEditor(rec Recorder) *Editor {
	if rec == nil {
		rec = RecorderFunc(func() {})
	}
	return &Editor{
		Tool:         ToolPlace,
		Color:        core.White,
		Material:     core.Matte,
		VoxelSize:    1.0,
		FloorY:       -12,
		SelectHeight: 40,
		recorder:     rec,
		selection:    make(map[core.VoxelId]struct{}),
	}
}

// SetTool switches tools. Any switch drops the selection; it reports whether there
// was one to drop.
func (e *Editor) SetTool(t Tool) bool {
	e.Tool = t
	return e.ClearSelection()
}

// GroundY is the lowest cell a voxel can occupy while resting on the floor.
func (e *Editor) GroundY() int {
	return int(math.Ceil(float64(e.FloorY + 0.5)))
}

// WorldToCell maps a world-space point to the grid at the current voxel pitch.
func (e *Editor) WorldToCell(p mgl32.Vec3) core.Cell {
	size := e.VoxelSize
	if size <= 0 {
		size = 1
	}
	return core.CellOf(p.Mul(1 / size))
}

// PlacementCell is the empty cell a place action aims at: the face neighbour of a hit
// voxel, or the ground cell under the pointer.
func (e *Editor) PlacementCell(t Target) core.Cell {
	if t.Hit != nil {
		return t.Hit.Cell().Add(t.Normal)
	}
	cell := e.WorldToCell(t.Point)
	cell[1] = e.GroundY()
	return cell
}

// HitCell is the existing voxel a target aims at, if any.
func (e *Editor) HitCell(t Target) (core.Cell, bool) {
	if t.Hit == nil {
		return core.Cell{}, false
	}
	return t.Hit.Cell(), true
}

// Place adds a voxel, plus its mirror image at (-x, y, z) when mirroring is on. The
// mirror copy is skipped on its own if its cell is taken or the field is full.
func (e *Editor) Place(field *core.Field, cell core.Cell, color core.Color, material core.Material) error {
	if field.FindAt(cell) != nil {
		return core.ErrOccupied
	}
	if field.Full() {
		return core.ErrCapacity
	}

	e.recorder.Record()
	if _, err := field.Add(cell, color, material); err != nil {
		return err
	}
	if e.Mirror && cell.X() != 0 {
		_, _ = field.Add(cell.Mirror(), color, material)
	}
	return nil
}

// Erase removes the voxel at cell and, when mirroring, the voxel at the mirror cell.
// It reports whether anything was removed.
func (e *Editor) Erase(field *core.Field, cell core.Cell) bool {
	v := field.FindAt(cell)
	if v == nil {
		return false
	}

	e.recorder.Record()
	field.Remove(v.Id)
	e.deselect(v.Id)
	if e.Mirror && cell.X() != 0 {
		if m := field.RemoveAt(cell.Mirror()); m != nil {
			e.deselect(m.Id)
		}
	}
	return true
}

// Pick reads the color and material at cell without changing anything.
func (e *Editor) Pick(field *core.Field, cell core.Cell) (core.Color, core.Material, bool) {
	v := field.FindAt(cell)
	if v == nil {
		return 0, 0, false
	}
	return v.Color, v.Material, true
}

func (e *Editor) deselect(id core.VoxelId) {
	delete(e.selection, id)
}
