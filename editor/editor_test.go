package editor

import (
	"testing"

	"github.com/gekko3d/sculpt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct{ n int }

func (r *countingRecorder) Record() { r.n++ }

func newTestEditor(capacity int) (*Editor, *core.Field, *countingRecorder) {
	rec := &countingRecorder{}
	return NewEditor(rec), core.NewField(capacity), rec
}

func TestPlace_RejectsOccupiedWithoutRecording(t *testing.T) {
	e, f, rec := newTestEditor(10)

	require.NoError(t, e.Place(f, core.Cell{0, 0, 0}, 0xff0000, core.Matte))
	assert.Equal(t, 1, rec.n)

	err := e.Place(f, core.Cell{0, 0, 0}, 0x00ff00, core.Matte)
	assert.ErrorIs(t, err, core.ErrOccupied)
	assert.Equal(t, 1, rec.n)
	assert.Equal(t, 1, f.Len())
}

func TestPlace_CapacityNeverGrowsField(t *testing.T) {
	e, f, rec := newTestEditor(2)
	require.NoError(t, e.Place(f, core.Cell{0, 0, 0}, 1, core.Matte))
	require.NoError(t, e.Place(f, core.Cell{1, 0, 0}, 1, core.Matte))

	for x := 2; x < 10; x++ {
		assert.ErrorIs(t, e.Place(f, core.Cell{x, 0, 0}, 1, core.Matte), core.ErrCapacity)
	}
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 2, rec.n)
}

func TestPlace_Mirror(t *testing.T) {
	e, f, _ := newTestEditor(10)
	e.Mirror = true

	require.NoError(t, e.Place(f, core.Cell{3, 1, 2}, 0x123456, core.Metal))
	assert.NotNil(t, f.FindAt(core.Cell{3, 1, 2}))
	m := f.FindAt(core.Cell{-3, 1, 2})
	require.NotNil(t, m)
	assert.Equal(t, core.Metal, m.Material)

	require.NoError(t, e.Place(f, core.Cell{0, 0, 0}, 1, core.Matte))
	assert.Equal(t, 3, f.Len(), "x = 0 has no separate mirror cell")
}

func TestPlace_MirrorSkipsOccupiedMirrorCell(t *testing.T) {
	e, f, _ := newTestEditor(10)
	_, _ = f.Add(core.Cell{-2, 0, 0}, 0xaaaaaa, core.Matte)
	e.Mirror = true

	require.NoError(t, e.Place(f, core.Cell{2, 0, 0}, 0xbbbbbb, core.Matte))
	assert.Equal(t, core.Color(0xaaaaaa), f.FindAt(core.Cell{-2, 0, 0}).Color)
	assert.Equal(t, 2, f.Len())
}

func TestErase_WithMirror(t *testing.T) {
	e, f, rec := newTestEditor(10)
	e.Mirror = true
	require.NoError(t, e.Place(f, core.Cell{1, 0, 0}, 1, core.Matte))

	assert.True(t, e.Erase(f, core.Cell{1, 0, 0}))
	assert.Zero(t, f.Len())
	assert.Equal(t, 2, rec.n)

	assert.False(t, e.Erase(f, core.Cell{1, 0, 0}))
	assert.Equal(t, 2, rec.n)
}

func TestPick_IsReadOnly(t *testing.T) {
	e, f, rec := newTestEditor(10)
	_, _ = f.Add(core.Cell{0, 0, 0}, 0xcafe00, core.Glow)
	rev := f.Revision()

	c, m, ok := e.Pick(f, core.Cell{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, core.Color(0xcafe00), c)
	assert.Equal(t, core.Glow, m)
	assert.Equal(t, rev, f.Revision())
	assert.Zero(t, rec.n)

	_, _, ok = e.Pick(f, core.Cell{9, 9, 9})
	assert.False(t, ok)
}

func TestPlacementCell(t *testing.T) {
	e, f, _ := newTestEditor(10)
	v, _ := f.Add(core.Cell{2, -11, 0}, 1, core.Matte)

	assert.Equal(t, core.Cell{2, -10, 0}, e.PlacementCell(Target{Hit: v, Normal: core.Cell{0, 1, 0}}))
	assert.Equal(t, core.Cell{4, -11, -1}, e.PlacementCell(Target{Point: mgl32.Vec3{3.7, -12, -1.2}}))

	e.VoxelSize = 0.5
	assert.Equal(t, core.Cell{4, -11, 2}, e.PlacementCell(Target{Point: mgl32.Vec3{2, -6, 1}}))
}

func TestSetTool_ClearsSelection(t *testing.T) {
	e, f, _ := newTestEditor(10)
	_, _ = f.Add(core.Cell{0, -11, 0}, 1, core.Matte)
	e.Tool = ToolSelect
	require.Equal(t, 1, e.Select(f, Region{Start: mgl32.Vec3{-1, 0, -1}, End: mgl32.Vec3{1, 0, 1}}))

	assert.True(t, e.SetTool(ToolPlace))
	assert.Zero(t, e.SelectionCount())
	assert.False(t, e.SetTool(ToolErase))
}
