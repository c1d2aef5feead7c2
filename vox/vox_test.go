package vox

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/sculpt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunk struct {
	id   string
	data []byte
}

func le(vals ...any) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func str(s string) []byte {
	return append(le(int32(len(s))), s...)
}

func encode(chunks ...chunk) []byte {
	var children bytes.Buffer
	for _, c := range chunks {
		children.WriteString(c.id)
		children.Write(le(int32(len(c.data)), int32(0)))
		children.Write(c.data)
	}
	var out bytes.Buffer
	out.WriteString(MagicNumber)
	out.Write(le(int32(150)))
	out.WriteString("MAIN")
	out.Write(le(int32(0), int32(children.Len())))
	out.Write(children.Bytes())
	return out.Bytes()
}

func sample() []byte {
	rgba := make([]byte, 256*4)
	copy(rgba[0:4], []byte{255, 0, 0, 255}) // index 1
	copy(rgba[4:8], []byte{0, 0, 255, 255}) // index 2

	matl := append(le(int32(2), int32(2)), str("_type")...)
	matl = append(matl, str("_metal")...)
	matl = append(matl, str("_weight")...)
	matl = append(matl, str("0.5")...)

	return encode(
		chunk{"SIZE", le(uint32(4), uint32(2), uint32(3))},
		chunk{"XYZI", le(uint32(3), []byte{0, 0, 0, 1}, []byte{3, 1, 0, 2}, []byte{1, 1, 2, 9})},
		chunk{"RGBA", rgba},
		chunk{"MATL", matl},
	)
}

func TestDecode_ModelPaletteAndMaterials(t *testing.T) {
	vf, err := Decode(bytes.NewReader(sample()))
	require.NoError(t, err)

	assert.Equal(t, 150, vf.Version)
	require.Len(t, vf.Models, 1)
	m := vf.Models[0]
	assert.Equal(t, uint32(4), m.SizeX)
	require.Len(t, m.Voxels, 3)
	assert.Equal(t, Voxel{X: 3, Y: 1, Z: 0, ColorIndex: 2}, m.Voxels[1])

	assert.Equal(t, core.Color(0xff0000), vf.Palette.Color(1))
	assert.Equal(t, core.Color(0x0000ff), vf.Palette.Color(2))
	assert.Equal(t, core.Color(0), vf.Palette.Color(200))

	require.Contains(t, vf.Materials, 2)
	assert.Equal(t, "_metal", vf.Materials[2].Type)
	assert.InDelta(t, 0.5, vf.Materials[2].Weight, 1e-6)
	assert.Equal(t, core.Metal, vf.MaterialOf(2))
	assert.Equal(t, core.Matte, vf.MaterialOf(1))
}

func TestFile_PersistedIsZUpAndGrounded(t *testing.T) {
	vf, err := Decode(bytes.NewReader(sample()))
	require.NoError(t, err)

	ps, err := vf.Persisted(0, -12)
	require.NoError(t, err)
	require.Len(t, ps, 3)

	assert.Equal(t, core.Persisted{X: -2, Y: -11, Z: -1, Color: 0xff0000, Material: core.Matte}, ps[0])
	assert.Equal(t, core.Persisted{X: 1, Y: -11, Z: 0, Color: 0x0000ff, Material: core.Metal}, ps[1])
	assert.Equal(t, float32(-9), ps[2].Y)

	_, err = vf.Persisted(1, -12)
	assert.Error(t, err)
}

func TestDecode_DefaultPaletteIsWhite(t *testing.T) {
	vf, err := Decode(bytes.NewReader(encode(
		chunk{"SIZE", le(uint32(1), uint32(1), uint32(1))},
		chunk{"XYZI", le(uint32(1), []byte{0, 0, 0, 5})},
	)))
	require.NoError(t, err)
	assert.Equal(t, core.White, vf.Palette.Color(5))
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("NOPE\x00\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Decode(bytes.NewReader(encode(chunk{"XYZI", le(uint32(0))})))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Decode(bytes.NewReader(encode(
		chunk{"SIZE", le(uint32(1), uint32(1), uint32(1))},
		chunk{"XYZI", le(uint32(5), []byte{0, 0, 0, 1})},
	)))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Decode(bytes.NewReader(encode()))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.vox")
	require.NoError(t, os.WriteFile(path, sample(), 0o644))

	vf, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, vf.Models[0].Voxels, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.vox"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
