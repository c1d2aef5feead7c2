package render

import (
	"testing"

	"github.com/gekko3d/sculpt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatcher_GroupsByMaterial(t *testing.T) {
	f := core.NewField(10)
	_, _ = f.Add(core.Cell{0, 0, 0}, 0xff0000, core.Matte)
	_, _ = f.Add(core.Cell{1, 0, 0}, 0x00ff00, core.Glow)
	_, _ = f.Add(core.Cell{2, 0, 0}, 0x0000ff, core.Matte)

	b := NewBatcher()
	groups := b.Sync(f, 1)

	require.Len(t, groups, 2)
	assert.Equal(t, core.Matte, groups[0].Material)
	assert.Len(t, groups[0].Instances, 2)
	assert.Equal(t, core.Glow, groups[1].Material)
	assert.Equal(t, Traits(core.Glow), groups[1].Traits)
	assert.Equal(t, [3]float32{0, 1, 0}, groups[1].Instances[0].Color)
}

func TestBatcher_RegroupsOnlyOnRevisionChange(t *testing.T) {
	f := core.NewField(10)
	v, _ := f.Add(core.Cell{0, 0, 0}, 0xff0000, core.Matte)

	b := NewBatcher()
	b.Sync(f, 1)
	require.Equal(t, 1, b.Regroups)

	v.Pos = mgl32.Vec3{0, 3, 0}
	f.MarkMoved()
	groups := b.Sync(f, 1)
	assert.Equal(t, 1, b.Regroups)
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, groups[0].Instances[0].Transform.Col(3).Vec3())

	f.Repaint(v, 0xff0000, core.Metal)
	groups = b.Sync(f, 1)
	assert.Equal(t, 2, b.Regroups)
	require.Len(t, groups, 1)
	assert.Equal(t, core.Metal, groups[0].Material)
}

func TestBatcher_VoxelSizeScalesTransform(t *testing.T) {
	f := core.NewField(10)
	_, _ = f.Add(core.Cell{2, 0, 0}, 0xffffff, core.Matte)

	groups := NewBatcher().Sync(f, 0.5)
	m := groups[0].Instances[0].Transform
	assert.InDelta(t, 1.0, m.Col(3).X(), 1e-6)
	assert.InDelta(t, 0.5, m.At(0, 0), 1e-6)
}

func TestTraits_UnknownMaterialIsMatte(t *testing.T) {
	assert.Equal(t, Traits(core.Matte), Traits(core.Material(42)))
	assert.Greater(t, Traits(core.Glow).Emissive, float32(0))
	assert.Greater(t, Traits(core.Metal).Metalness, Traits(core.Matte).Metalness)
}

func TestFrameContainer(t *testing.T) {
	var c FrameContainer
	assert.Nil(t, c.Get())
	fr := &Frame{Count: 3}
	c.Update(fr)
	assert.Same(t, fr, c.Get())
}
