package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// VoxelId identifies a voxel independent of where it sits. Selection and mirror
// pairing use it; positional lookups go through Cell.
type VoxelId string

func NewVoxelId() VoxelId {
	return VoxelId(uuid.NewString())
}

// Cell is an integer grid coordinate.
type Cell [3]int

func (c Cell) X() int { return c[0] }
func (c Cell) Y() int { return c[1] }
func (c Cell) Z() int { return c[2] }

func (c Cell) Add(o Cell) Cell {
	return Cell{c[0] + o[0], c[1] + o[1], c[2] + o[2]}
}

// Mirror reflects the cell across the x = 0 plane.
func (c Cell) Mirror() Cell {
	return Cell{-c[0], c[1], c[2]}
}

func (c Cell) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
}

// CellOf rounds a position to the nearest grid cell.
func CellOf(p mgl32.Vec3) Cell {
	return Cell{
		int(math.Round(float64(p.X()))),
		int(math.Round(float64(p.Y()))),
		int(math.Round(float64(p.Z()))),
	}
}

// Voxel is a single simulation particle. Pos is integral while the engine is stable;
// the remaining vectors only carry meaning during a transition.
type Voxel struct {
	Id       VoxelId
	Pos      mgl32.Vec3
	Vel      mgl32.Vec3
	Rot      mgl32.Vec3
	AngVel   mgl32.Vec3
	Color    Color
	Material Material

	Rubble  bool
	Settled bool
}

func NewVoxel(cell Cell, color Color, material Material) *Voxel {
	return &Voxel{
		Id:       NewVoxelId(),
		Pos:      cell.Vec3(),
		Color:    color,
		Material: material,
	}
}

func (v *Voxel) Cell() Cell {
	return CellOf(v.Pos)
}

// Clone copies the voxel under a fresh id.
func (v *Voxel) Clone() *Voxel {
	c := *v
	c.Id = NewVoxelId()
	return &c
}

// Rest clears all motion state.
func (v *Voxel) Rest() {
	v.Vel = mgl32.Vec3{}
	v.Rot = mgl32.Vec3{}
	v.AngVel = mgl32.Vec3{}
	v.Rubble = false
	v.Settled = false
}
