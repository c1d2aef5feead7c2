// Package vox reads MagicaVoxel .vox files into voxel arrays the engine can load or
// rebuild into.
package vox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/gekko3d/sculpt/core"
)

const MagicNumber = "VOX "

var ErrFormat = errors.New("malformed vox file")

type Voxel struct {
	X, Y, Z, ColorIndex byte
}

type Model struct {
	SizeX, SizeY, SizeZ uint32
	Voxels              []Voxel
}

type Palette [256][4]byte // RGBA

// Material is a MATL chunk. Type is the raw "_type" value ("_diffuse", "_metal",
// "_emit", ...).
type Material struct {
	ID       int
	Type     string
	Weight   float32
	Property map[string]string
}

type File struct {
	Version   int
	Models    []Model
	Palette   Palette
	Materials map[int]Material
}

func LoadFile(filename string) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return vf, nil
}

func Decode(r io.Reader) (*File, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if string(magic[:]) != MagicNumber {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, magic[:])
	}

	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}

	vf := &File{
		Version:   int(version),
		Palette:   defaultPalette(),
		Materials: make(map[int]Material),
	}

	// Chunks are read flat: MAIN has no content of its own and its children follow.
	var sized bool
	for {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		var contentSize, childrenSize int32
		if err := binary.Read(r, binary.LittleEndian, &contentSize); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &childrenSize); err != nil {
			return nil, err
		}
		if contentSize < 0 {
			return nil, fmt.Errorf("%w: chunk %s has negative size", ErrFormat, id[:])
		}
		data := make([]byte, contentSize)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}

		switch string(id[:]) {
		case "MAIN":
			continue
		case "SIZE":
			if len(data) < 12 {
				return nil, fmt.Errorf("%w: SIZE chunk too small", ErrFormat)
			}
			vf.Models = append(vf.Models, Model{
				SizeX: binary.LittleEndian.Uint32(data[0:4]),
				SizeY: binary.LittleEndian.Uint32(data[4:8]),
				SizeZ: binary.LittleEndian.Uint32(data[8:12]),
			})
			sized = true
		case "XYZI":
			if !sized {
				return nil, fmt.Errorf("%w: XYZI before SIZE", ErrFormat)
			}
			if len(data) < 4 {
				return nil, fmt.Errorf("%w: XYZI chunk too small", ErrFormat)
			}
			n := int(binary.LittleEndian.Uint32(data[:4]))
			if len(data) < 4+n*4 {
				return nil, fmt.Errorf("%w: XYZI holds %d bytes for %d voxels", ErrFormat, len(data), n)
			}
			m := &vf.Models[len(vf.Models)-1]
			m.Voxels = make([]Voxel, n)
			for i := range m.Voxels {
				o := 4 + i*4
				m.Voxels[i] = Voxel{X: data[o], Y: data[o+1], Z: data[o+2], ColorIndex: data[o+3]}
			}
		case "RGBA":
			for i := 0; i < 255 && i*4+3 < len(data); i++ {
				copy(vf.Palette[i+1][:], data[i*4:i*4+4])
			}
		case "MATL":
			mat, err := parseMaterial(data)
			if err != nil {
				return nil, err
			}
			vf.Materials[mat.ID] = mat
		}
	}

	if len(vf.Models) == 0 {
		return nil, fmt.Errorf("%w: no models", ErrFormat)
	}
	return vf, nil
}

// parseMaterial reads a MATL chunk: an int32 id followed by a DICT of string pairs.
func parseMaterial(data []byte) (Material, error) {
	mat := Material{Property: make(map[string]string)}
	rd := bytes.NewReader(data)

	var id, pairs int32
	if err := binary.Read(rd, binary.LittleEndian, &id); err != nil {
		return mat, fmt.Errorf("%w: MATL id: %v", ErrFormat, err)
	}
	if err := binary.Read(rd, binary.LittleEndian, &pairs); err != nil {
		return mat, fmt.Errorf("%w: MATL dict: %v", ErrFormat, err)
	}
	mat.ID = int(id)

	for i := int32(0); i < pairs; i++ {
		key, err := readString(rd)
		if err != nil {
			return mat, err
		}
		value, err := readString(rd)
		if err != nil {
			return mat, err
		}
		switch key {
		case "_type":
			mat.Type = value
		case "_weight":
			w, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return mat, fmt.Errorf("%w: MATL weight %q", ErrFormat, value)
			}
			mat.Weight = float32(w)
		default:
			mat.Property[key] = value
		}
	}
	return mat, nil
}

func readString(rd *bytes.Reader) (string, error) {
	var n int32
	if err := binary.Read(rd, binary.LittleEndian, &n); err != nil {
		return "", fmt.Errorf("%w: string length: %v", ErrFormat, err)
	}
	if n < 0 || int(n) > rd.Len() {
		return "", fmt.Errorf("%w: string length %d", ErrFormat, n)
	}
	buf := make([]byte, n)
	_, _ = rd.Read(buf)
	return string(buf), nil
}

func defaultPalette() Palette {
	var p Palette
	for i := range p {
		p[i] = [4]byte{255, 255, 255, 255}
	}
	return p
}

// Color is the engine color of a palette entry.
func (p *Palette) Color(index byte) core.Color {
	c := p[index]
	return core.RGB(c[0], c[1], c[2])
}

// MaterialOf maps a palette index to the engine's material set: metal and emissive
// MagicaVoxel materials keep their look, everything else is matte.
func (f *File) MaterialOf(index byte) core.Material {
	m, ok := f.Materials[int(index)]
	if !ok {
		return core.Matte
	}
	switch m.Type {
	case "_metal":
		return core.Metal
	case "_emit":
		return core.Glow
	}
	return core.Matte
}

// Persisted converts one model to engine voxels. MagicaVoxel is z-up, so its z
// becomes height. The model is centered on x and z and its bottom layer rests on
// the ground row above floorY.
func (f *File) Persisted(model int, floorY float32) ([]core.Persisted, error) {
	if model < 0 || model >= len(f.Models) {
		return nil, fmt.Errorf("model %d out of range, file has %d", model, len(f.Models))
	}
	m := f.Models[model]
	ground := int(math.Ceil(float64(floorY + 0.5)))
	ox, oz := int(m.SizeX/2), int(m.SizeY/2)

	out := make([]core.Persisted, 0, len(m.Voxels))
	for _, v := range m.Voxels {
		out = append(out, core.Persisted{
			X:        float32(int(v.X) - ox),
			Y:        float32(ground + int(v.Z)),
			Z:        float32(int(v.Y) - oz),
			Color:    f.Palette.Color(v.ColorIndex),
			Material: f.MaterialOf(v.ColorIndex),
		})
	}
	return out, nil
}
