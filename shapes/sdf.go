package shapes

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/gekko3d/sculpt/core"
)

var (
	ErrTooLarge     = errors.New("shape exceeds voxel limit")
	ErrUnknownShape = errors.New("unknown shape")
)

// FromSDF samples s on the unit grid and returns every cell whose center is inside
// or on the surface. It fails with ErrTooLarge once more than limit cells are inside;
// limit <= 0 means no limit.
func FromSDF(s sdf.SDF3, color core.Color, material core.Material, limit int) ([]core.Persisted, error) {
	bb := s.BoundingBox()
	lo := [3]int{
		int(math.Floor(bb.Min.X)),
		int(math.Floor(bb.Min.Y)),
		int(math.Floor(bb.Min.Z)),
	}
	hi := [3]int{
		int(math.Ceil(bb.Max.X)),
		int(math.Ceil(bb.Max.Y)),
		int(math.Ceil(bb.Max.Z)),
	}

	var out []core.Persisted
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				if s.Evaluate(v3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}) > 0 {
					continue
				}
				if limit > 0 && len(out) >= limit {
					return nil, fmt.Errorf("%w: more than %d voxels", ErrTooLarge, limit)
				}
				out = append(out, cell(x, y, z, color, material))
			}
		}
	}
	return out, nil
}

// Ball is a sphere solid centered on the origin.
func Ball(radius float64) (sdf.SDF3, error) {
	return sdf.Sphere3D(radius)
}

// Block is a box solid centered on the origin.
func Block(x, y, z float64) (sdf.SDF3, error) {
	return sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
}

// Column is an upright cylinder centered on the origin, its axis along y.
func Column(height, radius float64) (sdf.SDF3, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(s, sdf.RotateX(math.Pi/2)), nil
}

// Grounded lifts s so its lowest cells rest on the ground row above floorY.
func Grounded(s sdf.SDF3, floorY float64) sdf.SDF3 {
	ground := math.Ceil(floorY + 0.5)
	lift := ground - math.Ceil(s.BoundingBox().Min.Y)
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Y: lift}))
}

// Named builds one of the stock shapes, resting on the floor at floorY: "cube",
// "sphere", "tower" or "arch".
func Named(name string, floorY float64, limit int) ([]core.Persisted, error) {
	var (
		s        sdf.SDF3
		err      error
		color    core.Color
		material core.Material
	)

	switch strings.ToLower(name) {
	case "cube":
		s, err = Block(5, 5, 5)
		color, material = 0x4a90d9, core.Matte
	case "sphere":
		s, err = Ball(4)
		color, material = 0xd94a4a, core.Metal
	case "tower":
		s, err = Column(11, 2.5)
		color, material = 0xe0c060, core.Glow
	case "arch":
		var body, hole sdf.SDF3
		if body, err = Block(9, 7, 3); err != nil {
			break
		}
		if hole, err = Column(8, 2.5); err != nil {
			break
		}
		hole = sdf.Transform3D(hole, sdf.RotateX(math.Pi/2))
		hole = sdf.Transform3D(hole, sdf.Translate3d(v3.Vec{Y: -3.5}))
		s = sdf.Difference3D(body, hole)
		color, material = 0x8a8a8a, core.Matte
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	if err != nil {
		return nil, fmt.Errorf("shape %s: %w", name, err)
	}
	return FromSDF(Grounded(s, floorY), color, material, limit)
}
