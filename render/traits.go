package render

import "github.com/gekko3d/sculpt/core"

// MaterialTraits are the shading parameters a renderer needs for one material group.
type MaterialTraits struct {
	Roughness float32
	Metalness float32
	Emissive  float32 // multiplier on the instance color
}

var traitsTable = [...]MaterialTraits{
	core.Matte: {Roughness: 0.8, Metalness: 0.1, Emissive: 0},
	core.Metal: {Roughness: 0.2, Metalness: 0.9, Emissive: 0},
	core.Glow:  {Roughness: 0.4, Metalness: 0.0, Emissive: 1.5},
}

// Traits maps a material to its shading parameters. Unknown values shade as matte.
func Traits(m core.Material) MaterialTraits {
	if !m.Valid() {
		return traitsTable[core.Matte]
	}
	return traitsTable[m]
}
