// Package shapes produces voxel arrays for loading and rebuild targets: plain fill
// loops for cubes and spheres, and sampling of signed distance solids.
package shapes

import (
	"math"

	"github.com/gekko3d/sculpt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Cube fills every cell from min to max inclusive.
func Cube(min, max core.Cell, color core.Color, material core.Material) []core.Persisted {
	var out []core.Persisted
	for x := min.X(); x <= max.X(); x++ {
		for y := min.Y(); y <= max.Y(); y++ {
			for z := min.Z(); z <= max.Z(); z++ {
				out = append(out, cell(x, y, z, color, material))
			}
		}
	}
	return out
}

// Sphere fills every cell whose center lies within radius of center.
func Sphere(center mgl32.Vec3, radius float32, color core.Color, material core.Material) []core.Persisted {
	r2 := radius * radius
	lo := [3]int{
		int(math.Floor(float64(center.X() - radius))),
		int(math.Floor(float64(center.Y() - radius))),
		int(math.Floor(float64(center.Z() - radius))),
	}
	hi := [3]int{
		int(math.Ceil(float64(center.X() + radius))),
		int(math.Ceil(float64(center.Y() + radius))),
		int(math.Ceil(float64(center.Z() + radius))),
	}

	var out []core.Persisted
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				dx := float32(x) - center.X()
				dy := float32(y) - center.Y()
				dz := float32(z) - center.Z()
				if dx*dx+dy*dy+dz*dz <= r2 {
					out = append(out, cell(x, y, z, color, material))
				}
			}
		}
	}
	return out
}

// Paint returns a copy of ps with every color replaced by fn's result for its cell.
func Paint(ps []core.Persisted, fn func(c core.Cell) (core.Color, core.Material)) []core.Persisted {
	out := make([]core.Persisted, len(ps))
	for i, p := range ps {
		p.Color, p.Material = fn(p.Cell())
		out[i] = p
	}
	return out
}

func cell(x, y, z int, color core.Color, material core.Material) core.Persisted {
	return core.Persisted{X: float32(x), Y: float32(y), Z: float32(z), Color: color, Material: material}
}
