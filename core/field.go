package core

import (
	"encoding/binary"
	"errors"
	"math"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultCapacity is the voxel ceiling used when a field is created without one.
const DefaultCapacity = 1500

var (
	ErrOccupied = errors.New("cell already occupied")
	ErrCapacity = errors.New("voxel capacity reached")
)

// Field is the authoritative, ordered voxel set. It is not safe for concurrent use;
// the engine owns it and mutates it from the tick loop only.
type Field struct {
	voxels   []*Voxel
	byId     map[VoxelId]*Voxel
	cells    map[Cell]*Voxel
	capacity int

	// cells is rebuilt lazily after physics moves voxels around.
	cellsDirty bool
	revision   uint64
}

func NewField(capacity int) *Field {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Field{
		byId:     make(map[VoxelId]*Voxel),
		cells:    make(map[Cell]*Voxel),
		capacity: capacity,
	}
}

func (f *Field) Len() int { return len(f.voxels) }
func (f *Field) Cap() int { return f.capacity }

// Voxels returns the backing slice in field order. Callers may mutate voxel state
// but must not append to or reorder the slice.
func (f *Field) Voxels() []*Voxel { return f.voxels }

// Revision changes whenever membership, color or material changes. Position-only
// updates leave it alone.
func (f *Field) Revision() uint64 { return f.revision }

func (f *Field) Full() bool {
	return len(f.voxels) >= f.capacity
}

// Add places a new voxel at cell.
func (f *Field) Add(cell Cell, color Color, material Material) (*Voxel, error) {
	v := NewVoxel(cell, color, material)
	if err := f.Insert(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Insert adds an existing voxel, keyed by its current cell.
func (f *Field) Insert(v *Voxel) error {
	if f.Full() {
		return ErrCapacity
	}
	cell := v.Cell()
	if f.FindAt(cell) != nil {
		return ErrOccupied
	}
	f.voxels = append(f.voxels, v)
	f.byId[v.Id] = v
	f.cells[cell] = v
	f.revision++
	return nil
}

func (f *Field) FindAt(cell Cell) *Voxel {
	f.reindex()
	return f.cells[cell]
}

func (f *Field) Get(id VoxelId) *Voxel {
	return f.byId[id]
}

// RemoveAt deletes the voxel at cell and returns it, or nil if the cell is empty.
func (f *Field) RemoveAt(cell Cell) *Voxel {
	v := f.FindAt(cell)
	if v == nil {
		return nil
	}
	f.Remove(v.Id)
	return v
}

func (f *Field) Remove(id VoxelId) bool {
	v, ok := f.byId[id]
	if !ok {
		return false
	}
	for i, o := range f.voxels {
		if o == v {
			f.voxels = append(f.voxels[:i], f.voxels[i+1:]...)
			break
		}
	}
	delete(f.byId, id)
	if !f.cellsDirty {
		if cur := f.cells[v.Cell()]; cur == v {
			delete(f.cells, v.Cell())
		}
	}
	f.revision++
	return true
}

// ReplaceAll swaps in a new voxel set wholesale. No placement checks are made; load
// and restore paths validate beforehand.
func (f *Field) ReplaceAll(voxels []*Voxel) {
	f.voxels = make([]*Voxel, len(voxels))
	copy(f.voxels, voxels)
	f.byId = make(map[VoxelId]*Voxel, len(voxels))
	for _, v := range f.voxels {
		f.byId[v.Id] = v
	}
	f.cellsDirty = true
	f.revision++
}

func (f *Field) Clear() {
	f.ReplaceAll(nil)
}

// MarkMoved invalidates the cell index after positions changed in place.
func (f *Field) MarkMoved() {
	f.cellsDirty = true
}

// Repaint changes a voxel's color and material, bumping the revision on change.
func (f *Field) Repaint(v *Voxel, color Color, material Material) bool {
	if v.Color == color && v.Material == material {
		return false
	}
	v.Color = color
	v.Material = material
	f.revision++
	return true
}

// Snap brings a settled field back onto the grid: positions are rounded, nothing
// sinks under the rest height above floorY, and voxels that round into an occupied
// cell are stacked upward until they find a free one. Shape voxels claim their cells
// before rubble does.
func (f *Field) Snap(floorY float32) {
	minY := int(math.Ceil(float64(floorY + 0.5)))
	f.cells = make(map[Cell]*Voxel, len(f.voxels))
	for _, rubble := range []bool{false, true} {
		for _, v := range f.voxels {
			if v.Rubble != rubble {
				continue
			}
			cell := v.Cell()
			if cell[1] < minY {
				cell[1] = minY
			}
			for f.cells[cell] != nil {
				cell[1]++
			}
			v.Pos = cell.Vec3()
			v.Rest()
			f.cells[cell] = v
		}
	}
	f.cellsDirty = false
}

func (f *Field) reindex() {
	if !f.cellsDirty {
		return
	}
	f.cells = make(map[Cell]*Voxel, len(f.voxels))
	for _, v := range f.voxels {
		f.cells[v.Cell()] = v
	}
	f.cellsDirty = false
}

// Bounds returns the min and max voxel centers, or false for an empty field.
func (f *Field) Bounds() (mgl32.Vec3, mgl32.Vec3, bool) {
	if len(f.voxels) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	minB, maxB := f.voxels[0].Pos, f.voxels[0].Pos
	for _, v := range f.voxels[1:] {
		for i := 0; i < 3; i++ {
			minB[i] = float32(math.Min(float64(minB[i]), float64(v.Pos[i])))
			maxB[i] = float32(math.Max(float64(maxB[i]), float64(v.Pos[i])))
		}
	}
	return minB, maxB, true
}

// ToPersisted projects the field onto its stored fields, coordinates rounded to two
// decimals.
func (f *Field) ToPersisted() []Persisted {
	out := make([]Persisted, len(f.voxels))
	for i, v := range f.voxels {
		out[i] = Persisted{
			X:        round2(v.Pos.X()),
			Y:        round2(v.Pos.Y()),
			Z:        round2(v.Pos.Z()),
			Color:    v.Color,
			Material: v.Material,
		}
	}
	return out
}

// Fingerprint hashes the persisted projection. Equal fields in equal order hash equal.
func (f *Field) Fingerprint() uint64 {
	return Fingerprint(f.ToPersisted())
}

func Fingerprint(ps []Persisted) uint64 {
	d := xxhash.New()
	var buf [17]byte
	for _, p := range ps {
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(p.Z))
		binary.LittleEndian.PutUint32(buf[12:], uint32(p.Color))
		buf[16] = byte(p.Material)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

func round2(v float32) float32 {
	return float32(math.Round(float64(v)*100) / 100)
}
