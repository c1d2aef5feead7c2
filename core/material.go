package core

import "fmt"

// Material selects how a voxel is shaded. Values match the external voxel array format.
type Material uint8

const (
	Matte Material = iota
	Metal
	Glow
)

func (m Material) Valid() bool {
	return m <= Glow
}

func (m Material) String() string {
	switch m {
	case Matte:
		return "matte"
	case Metal:
		return "metal"
	case Glow:
		return "glow"
	}
	return fmt.Sprintf("material(%d)", uint8(m))
}
