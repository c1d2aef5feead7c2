package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Persisted is the stable external form of a voxel. Transient physics state is
// never part of it.
type Persisted struct {
	X        float32  `json:"x"`
	Y        float32  `json:"y"`
	Z        float32  `json:"z"`
	Color    Color    `json:"color"`
	Material Material `json:"material"`
}

func (p Persisted) Cell() Cell {
	return Cell{
		int(math.Round(float64(p.X))),
		int(math.Round(float64(p.Y))),
		int(math.Round(float64(p.Z))),
	}
}

// Voxels materializes persisted entries as fresh voxels with new ids.
func Voxels(ps []Persisted) []*Voxel {
	out := make([]*Voxel, len(ps))
	for i, p := range ps {
		v := NewVoxel(Cell{}, p.Color, p.Material)
		v.Pos[0], v.Pos[1], v.Pos[2] = p.X, p.Y, p.Z
		out[i] = v
	}
	return out
}

type jsonVoxel struct {
	X        float32  `json:"x"`
	Y        float32  `json:"y"`
	Z        float32  `json:"z"`
	Color    string   `json:"color"`
	Material Material `json:"material"`
}

// EncodeJSON renders the JSON text variant, with colors as "#rrggbb".
func EncodeJSON(ps []Persisted) ([]byte, error) {
	out := make([]jsonVoxel, len(ps))
	for i, p := range ps {
		out[i] = jsonVoxel{X: p.X, Y: p.Y, Z: p.Z, Color: p.Color.Hex(), Material: p.Material}
	}
	return json.Marshal(out)
}

// RawVoxel is an unvalidated entry from a generator, import or AI response.
type RawVoxel map[string]any

// Report counts what Sanitize had to fix.
type Report struct {
	Accepted          int
	Dropped           int
	ColorDefaulted    int
	MaterialDefaulted int
}

func (r Report) String() string {
	return fmt.Sprintf("accepted=%d dropped=%d color_defaulted=%d material_defaulted=%d",
		r.Accepted, r.Dropped, r.ColorDefaulted, r.MaterialDefaulted)
}

// DecodeJSON reads an array of voxel objects and sanitizes it. Only a document that
// is not a JSON array of objects is an error; bad fields are repaired or dropped.
func DecodeJSON(data []byte) ([]Persisted, Report, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []RawVoxel
	if err := dec.Decode(&raw); err != nil {
		return nil, Report{}, fmt.Errorf("decode voxel array: %w", err)
	}
	ps, rep := Sanitize(raw)
	return ps, rep, nil
}

// Sanitize coerces raw entries into validated voxels: coordinates become integers,
// colors default to FallbackGray and materials to Matte. Entries whose coordinates
// cannot be read as numbers are dropped.
func Sanitize(raw []RawVoxel) ([]Persisted, Report) {
	var rep Report
	out := make([]Persisted, 0, len(raw))
	for _, r := range raw {
		x, okX := toNumber(r["x"])
		y, okY := toNumber(r["y"])
		z, okZ := toNumber(r["z"])
		if !okX || !okY || !okZ {
			rep.Dropped++
			continue
		}

		p := Persisted{
			X: float32(math.Round(x)),
			Y: float32(math.Round(y)),
			Z: float32(math.Round(z)),
		}

		color, ok := toColor(r["color"])
		if !ok {
			color = FallbackGray
			rep.ColorDefaulted++
		}
		p.Color = color

		material, ok := toMaterial(r["material"])
		if !ok {
			rep.MaterialDefaulted++
		}
		p.Material = material

		out = append(out, p)
		rep.Accepted++
	}
	return out, rep
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toColor(v any) (Color, bool) {
	if s, ok := v.(string); ok {
		c, err := ParseColor(s)
		return c, err == nil
	}
	f, ok := toNumber(v)
	if !ok || f < 0 || f > float64(MaxColor) {
		return 0, false
	}
	return Color(f), true
}

// toMaterial falls back to Matte for anything it cannot read; absence is not counted
// as a repair.
func toMaterial(v any) (Material, bool) {
	if v == nil {
		return Matte, true
	}
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "matte":
			return Matte, true
		case "metal":
			return Metal, true
		case "glow":
			return Glow, true
		}
	}
	f, ok := toNumber(v)
	if !ok || f != math.Trunc(f) || f < 0 || f > float64(Glow) {
		return Matte, false
	}
	return Material(f), true
}
