// Package solver pairs the voxels of the current field with the voxels of a target
// shape for a rebuild. Pairing is by color and material similarity, never identity.
package solver

import (
	"math/rand"
	"time"

	"github.com/gekko3d/sculpt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Params are the tunables the solver reads from the engine config.
type Params struct {
	FloorY            float32
	MaterialPenalty   float32
	RebuildDelayScale time.Duration
	PlaceholderLift   float32
}

func DefaultParams() Params {
	return Params{
		FloorY:            -12,
		MaterialPenalty:   0.5,
		RebuildDelayScale: 120 * time.Millisecond,
		PlaceholderLift:   10,
	}
}

// Target is where one source voxel goes. Rubble targets carry no destination.
type Target struct {
	Pos      mgl32.Vec3
	Color    core.Color
	Material core.Material
	Delay    time.Duration
	Rubble   bool
}

// Assignment holds the post-cloning source voxels and their targets, index aligned.
type Assignment struct {
	Voxels  []*core.Voxel
	Targets []Target
	Cloned  int
	Matched int
}

func (a Assignment) RubbleCount() int {
	return len(a.Voxels) - a.Matched
}

// Solve runs the greedy O(N*M) matcher. For every target, in order, the unassigned
// source with the lowest color distance plus material penalty wins; ties keep the
// first source in scan order. Sources are cloned at random until there are at least
// as many as targets, and an empty source set is seeded with one white placeholder.
// A nil rng falls back to a time-seeded source.
func Solve(sources []*core.Voxel, target []core.Persisted, p Params, rng *rand.Rand) Assignment {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	pool := make([]*core.Voxel, len(sources), max(len(sources), len(target), 1))
	copy(pool, sources)

	if len(pool) == 0 {
		seed := core.NewVoxel(core.Cell{}, core.White, core.Matte)
		seed.Pos = mgl32.Vec3{0, p.FloorY + p.PlaceholderLift, 0}
		pool = append(pool, seed)
	}

	var a Assignment
	base := len(pool)
	for len(pool) < len(target) {
		pool = append(pool, pool[rng.Intn(base)].Clone())
		a.Cloned++
	}

	targets := make([]Target, len(pool))
	assigned := make([]bool, len(pool))
	for _, t := range target {
		best := -1
		bestCost := float32(0)
		for i, src := range pool {
			if assigned[i] {
				continue
			}
			cost := core.ColorDistance(src.Color, t.Color)
			if src.Material != t.Material {
				cost += p.MaterialPenalty
			}
			if best < 0 || cost < bestCost {
				best = i
				bestCost = cost
			}
		}
		assigned[best] = true
		targets[best] = Target{
			Pos:      mgl32.Vec3{t.X, t.Y, t.Z},
			Color:    t.Color,
			Material: t.Material,
			Delay:    Delay(t.Y, p),
		}
		a.Matched++
	}

	for i, src := range pool {
		if !assigned[i] {
			targets[i] = Target{Pos: src.Pos, Color: src.Color, Material: src.Material, Rubble: true}
		}
	}

	a.Voxels = pool
	a.Targets = targets
	return a
}

// Delay staggers the start of each voxel's flight by its final height, so the shape
// assembles from the bottom up.
func Delay(targetY float32, p Params) time.Duration {
	h := (targetY - p.FloorY) / 15
	if h < 0 {
		h = 0
	}
	return time.Duration(float64(h) * float64(p.RebuildDelayScale))
}
