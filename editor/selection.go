package editor

import (
	"math"

	"github.com/gekko3d/sculpt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Region is a drag gesture across the ground: the two world-space points under the
// pointer at press and release.
type Region struct {
	Start mgl32.Vec3
	End   mgl32.Vec3
}

// Box is the selection volume for the region: the footprint spanned by both ground
// cells, from the floor up to SelectHeight.
func (e *Editor) Box(r Region) (min, max core.Cell) {
	a, b := e.WorldToCell(r.Start), e.WorldToCell(r.End)
	lo := int(math.Floor(float64(e.FloorY)))
	hi := int(math.Ceil(float64(e.FloorY + e.SelectHeight)))
	min = core.Cell{minInt(a[0], b[0]), lo, minInt(a[2], b[2])}
	max = core.Cell{maxInt(a[0], b[0]), hi, maxInt(a[2], b[2])}
	return min, max
}

// Select replaces the selection with every voxel inside the region's box and returns
// how many were selected.
func (e *Editor) Select(field *core.Field, r Region) int {
	lo, hi := e.Box(r)
	e.selection = make(map[core.VoxelId]struct{})
	for _, v := range field.Voxels() {
		c := v.Cell()
		if c[0] < lo[0] || c[0] > hi[0] || c[1] < lo[1] || c[1] > hi[1] || c[2] < lo[2] || c[2] > hi[2] {
			continue
		}
		e.selection[v.Id] = struct{}{}
	}
	return len(e.selection)
}

func (e *Editor) IsSelected(id core.VoxelId) bool {
	_, ok := e.selection[id]
	return ok
}

func (e *Editor) SelectionCount() int {
	return len(e.selection)
}

// ClearSelection empties the selection and reports whether it held anything.
func (e *Editor) ClearSelection() bool {
	if len(e.selection) == 0 {
		return false
	}
	e.selection = make(map[core.VoxelId]struct{})
	return true
}

// Selected returns the selected voxels still present in the field, in field order.
// Ids whose voxels are gone are dropped from the selection.
func (e *Editor) Selected(field *core.Field) []*core.Voxel {
	out := make([]*core.Voxel, 0, len(e.selection))
	for _, v := range field.Voxels() {
		if _, ok := e.selection[v.Id]; ok {
			out = append(out, v)
		}
	}
	if len(out) != len(e.selection) {
		e.selection = make(map[core.VoxelId]struct{}, len(out))
		for _, v := range out {
			e.selection[v.Id] = struct{}{}
		}
	}
	return out
}

// DeleteSelected removes every selected voxel and clears the selection.
func (e *Editor) DeleteSelected(field *core.Field) int {
	vs := e.Selected(field)
	if len(vs) == 0 {
		return 0
	}

	e.recorder.Record()
	for _, v := range vs {
		field.Remove(v.Id)
	}
	e.selection = make(map[core.VoxelId]struct{})
	return len(vs)
}

// CopySelected clones the selection one cell along +x under fresh ids, then selects
// the clones. Clones whose cell is taken are skipped. The copy is all-or-nothing
// against capacity: if the clones would not fit, nothing is added.
func (e *Editor) CopySelected(field *core.Field) (int, error) {
	vs := e.Selected(field)
	if len(vs) == 0 {
		return 0, nil
	}

	planned := make(map[core.Cell]bool, len(vs))
	clones := make([]*core.Voxel, 0, len(vs))
	for _, v := range vs {
		dest := v.Cell().Add(core.Cell{1, 0, 0})
		if planned[dest] || field.FindAt(dest) != nil {
			continue
		}
		planned[dest] = true
		c := v.Clone()
		c.Pos = dest.Vec3()
		c.Rest()
		clones = append(clones, c)
	}
	if len(clones) == 0 {
		return 0, nil
	}
	if field.Len()+len(clones) > field.Cap() {
		return 0, core.ErrCapacity
	}

	e.recorder.Record()
	e.selection = make(map[core.VoxelId]struct{}, len(clones))
	for _, c := range clones {
		if err := field.Insert(c); err != nil {
			continue
		}
		e.selection[c.Id] = struct{}{}
	}
	return len(clones), nil
}

// MoveSelected shifts every selected voxel one cell along axis in direction dir
// (its sign). The move is refused if any destination holds an unselected voxel.
func (e *Editor) MoveSelected(field *core.Field, axis Axis, dir int) error {
	if dir == 0 || axis < AxisX || axis > AxisZ {
		return nil
	}
	step := 1
	if dir < 0 {
		step = -1
	}
	vs := e.Selected(field)
	if len(vs) == 0 {
		return nil
	}

	var delta core.Cell
	delta[axis] = step
	for _, v := range vs {
		if o := field.FindAt(v.Cell().Add(delta)); o != nil && !e.IsSelected(o.Id) {
			return ErrBlocked
		}
	}

	e.recorder.Record()
	d := delta.Vec3()
	for _, v := range vs {
		v.Pos = v.Pos.Add(d)
	}
	field.MarkMoved()
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
