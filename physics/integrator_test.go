package physics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/gekko3d/sculpt/core"
	"github.com/gekko3d/sculpt/solver"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lShape(t *testing.T) *core.Field {
	f := core.NewField(100)
	for _, c := range []core.Cell{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		_, err := f.Add(c, 0x0000ff, core.Matte)
		require.NoError(t, err)
	}
	return f
}

func TestStepDismantle_Falls(t *testing.T) {
	f := lShape(t)
	in := NewIntegrator(DefaultParams())

	for i := 0; i < 10; i++ {
		in.StepDismantle(f)
	}

	for _, v := range f.Voxels() {
		if v.Vel.Y() >= 0 {
			t.Errorf("voxel should be falling, vy = %f", v.Vel.Y())
		}
	}
	assert.Less(t, f.Voxels()[0].Pos.Y(), float32(0))
}

func TestStepDismantle_SettlesOnFloor(t *testing.T) {
	f := lShape(t)
	in := NewIntegrator(DefaultParams())
	in.Scatter(f, rand.New(rand.NewSource(42)))

	for i := 0; i < 200; i++ {
		in.StepDismantle(f)
	}

	for _, v := range f.Voxels() {
		assert.InDelta(t, -11.5, v.Pos.Y(), 1e-4)
		assert.InDelta(t, 0, v.Vel.Y(), 1e-4)
	}
	assert.True(t, in.Settled(f))
}

func TestStepDismantle_BounceDampsHorizontal(t *testing.T) {
	f := core.NewField(10)
	v, _ := f.Add(core.Cell{0, -11, 0}, 0xffffff, core.Matte)
	v.Vel = mgl32.Vec3{1, -1, 0}
	v.AngVel = mgl32.Vec3{0.1, 0, 0}

	in := NewIntegrator(DefaultParams())
	in.StepDismantle(f)

	assert.Equal(t, in.RestY(), v.Pos.Y())
	assert.Greater(t, v.Vel.Y(), float32(0), "vertical velocity should invert")
	assert.InDelta(t, 0.9, v.Vel.X(), 1e-6)
	assert.InDelta(t, 0.09, v.AngVel.X(), 1e-6)
}

func TestStepRebuild_DelayFreezesVoxel(t *testing.T) {
	f := core.NewField(10)
	v, _ := f.Add(core.Cell{0, 0, 0}, 0x0000ff, core.Matte)
	targets := []solver.Target{{Pos: mgl32.Vec3{4, 0, 0}, Color: 0xff0000, Material: core.Glow, Delay: time.Second}}

	in := NewIntegrator(DefaultParams())
	done := in.StepRebuild(f, targets, 500*time.Millisecond)

	assert.False(t, done)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, v.Pos)
	assert.Equal(t, core.Matte, v.Material, "no repaint before takeoff")

	in.StepRebuild(f, targets, time.Second)
	assert.InDelta(t, 0.4, v.Pos.X(), 1e-5)
	assert.Equal(t, core.Glow, v.Material, "repaint happens mid-flight")
	assert.Equal(t, core.Color(0xff0000), v.Color)
}

func TestStepRebuild_Converges(t *testing.T) {
	f := core.NewField(10)
	a, _ := f.Add(core.Cell{0, 0, 0}, 0x0000ff, core.Matte)
	b, _ := f.Add(core.Cell{3, 6, 0}, 0x00ff00, core.Matte)
	a.Rot = mgl32.Vec3{1, 2, 3}
	b.Vel = mgl32.Vec3{0.2, 0, 0}

	targets := []solver.Target{
		{Pos: mgl32.Vec3{5, -11, 0}, Color: 0x0000ff},
		{Rubble: true},
	}

	in := NewIntegrator(DefaultParams())
	done := false
	ticks := 0
	for ; ticks < 2000 && !done; ticks++ {
		done = in.StepRebuild(f, targets, time.Duration(ticks)*16*time.Millisecond)
	}

	require.True(t, done, "rebuild did not terminate")
	assert.Equal(t, mgl32.Vec3{5, -11, 0}, a.Pos)
	assert.Equal(t, mgl32.Vec3{}, a.Rot)
	assert.Equal(t, in.RestY(), b.Pos.Y())
	assert.Equal(t, mgl32.Vec3{}, b.Vel)
	assert.True(t, b.Rubble)
}

func TestStepRebuild_EmptyIsDone(t *testing.T) {
	in := NewIntegrator(DefaultParams())
	assert.True(t, in.StepRebuild(core.NewField(1), nil, 0))
}
