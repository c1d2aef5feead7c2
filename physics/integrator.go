// Package physics advances the voxel field one tick at a time during transitions:
// free fall with a bouncing floor while dismantling, and an exponential approach to
// assigned targets while rebuilding. Voxels are independent particles; they never
// collide with each other.
package physics

import (
	"math"
	"math/rand"
	"time"

	"github.com/gekko3d/sculpt/core"
	"github.com/gekko3d/sculpt/solver"
	"github.com/go-gl/mathgl/mgl32"
)

// Params are per-tick constants; nothing here is scaled by frame time.
type Params struct {
	FloorY        float32
	Gravity       float32
	Damping       float32
	Bounce        float32
	RestSpeed     float32
	MorphSpeed    float32
	ArriveEpsilon float32

	ScatterSpeed float32
	ScatterLift  float32
	ScatterSpin  float32
}

func DefaultParams() Params {
	return Params{
		FloorY:        -12,
		Gravity:       0.025,
		Damping:       0.9,
		Bounce:        0.55,
		RestSpeed:     0.05,
		MorphSpeed:    0.1,
		ArriveEpsilon: 0.02,
		ScatterSpeed:  0.8,
		ScatterLift:   0.5,
		ScatterSpin:   0.2,
	}
}

type Integrator struct {
	Params Params
}

func NewIntegrator(p Params) *Integrator {
	return &Integrator{Params: p}
}

// RestY is the height of a voxel center lying on the floor.
func (in *Integrator) RestY() float32 {
	return in.Params.FloorY + 0.5
}

// Scatter gives every voxel the initial shatter impulse: a random horizontal push,
// an upward kick and a random spin.
func (in *Integrator) Scatter(field *core.Field, rng *rand.Rand) {
	p := in.Params
	for _, v := range field.Voxels() {
		v.Vel = mgl32.Vec3{
			(rng.Float32() - 0.5) * p.ScatterSpeed,
			rng.Float32() * p.ScatterLift,
			(rng.Float32() - 0.5) * p.ScatterSpeed,
		}
		v.AngVel = mgl32.Vec3{
			(rng.Float32() - 0.5) * p.ScatterSpin,
			(rng.Float32() - 0.5) * p.ScatterSpin,
			(rng.Float32() - 0.5) * p.ScatterSpin,
		}
		v.Settled = false
	}
}

// StepDismantle advances the shatter by one tick.
func (in *Integrator) StepDismantle(field *core.Field) {
	p := in.Params
	rest := in.RestY()
	for _, v := range field.Voxels() {
		v.Vel[1] -= p.Gravity
		v.Pos = v.Pos.Add(v.Vel)
		v.Rot = v.Rot.Add(v.AngVel)

		if v.Pos.Y() < rest {
			v.Pos[1] = rest
			v.Vel[1] = -v.Vel[1] * p.Bounce
			if abs(v.Vel[1]) < p.RestSpeed {
				v.Vel[1] = 0
			}
			v.Vel[0] *= p.Damping
			v.Vel[2] *= p.Damping
			v.AngVel = v.AngVel.Mul(p.Damping)
		}

		if !isFinite(v.Pos) {
			v.Pos = mgl32.Vec3{0, rest, 0}
			v.Vel = mgl32.Vec3{}
		}
	}
	field.MarkMoved()
}

// Settled reports whether every voxel lies on the floor without vertical motion.
func (in *Integrator) Settled(field *core.Field) bool {
	rest := in.RestY()
	for _, v := range field.Voxels() {
		if v.Vel.Y() != 0 || v.Pos.Y() > rest+in.Params.ArriveEpsilon {
			return false
		}
	}
	return true
}

// StepRebuild advances the morph by one tick. targets is aligned with the field's
// voxel order; elapsed is the time since the rebuild started. It returns true once
// every matched voxel has arrived and every rubble voxel has come to rest.
func (in *Integrator) StepRebuild(field *core.Field, targets []solver.Target, elapsed time.Duration) bool {
	p := in.Params
	rest := in.RestY()
	done := true

	for i, v := range field.Voxels() {
		if i >= len(targets) || v.Settled {
			continue
		}
		t := targets[i]

		if t.Rubble {
			v.Rubble = true
			v.Vel[1] -= p.Gravity
			v.Pos = v.Pos.Add(v.Vel)
			v.Rot = v.Rot.Add(v.AngVel)
			if v.Pos.Y() <= rest {
				v.Pos[1] = rest
				v.Vel = mgl32.Vec3{}
				v.AngVel = mgl32.Vec3{}
				v.Settled = true
				continue
			}
			done = false
			continue
		}

		if elapsed < t.Delay {
			done = false
			continue
		}

		// Repaint as soon as the voxel takes off.
		field.Repaint(v, t.Color, t.Material)

		v.Pos = v.Pos.Add(t.Pos.Sub(v.Pos).Mul(p.MorphSpeed))
		v.Rot = v.Rot.Sub(v.Rot.Mul(p.MorphSpeed))

		d := t.Pos.Sub(v.Pos)
		if abs(d.X())+abs(d.Y())+abs(d.Z()) <= p.ArriveEpsilon {
			v.Pos = t.Pos
			v.Rot = mgl32.Vec3{}
			v.Vel = mgl32.Vec3{}
			v.AngVel = mgl32.Vec3{}
			v.Settled = true
			continue
		}
		done = false
	}

	field.MarkMoved()
	return done
}

func abs(f float32) float32 {
	return float32(math.Abs(float64(f)))
}

func isFinite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
