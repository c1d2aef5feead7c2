package render

import (
	"sync/atomic"

	"github.com/gekko3d/sculpt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Instance matches a per-instance vertex buffer entry: model matrix then linear color.
type Instance struct {
	Transform mgl32.Mat4
	Color     [3]float32
}

// Group is one instanced draw: every voxel sharing a material.
type Group struct {
	Material  core.Material
	Traits    MaterialTraits
	Instances []Instance
}

// Batcher turns the field into per-material instance buffers. Membership is only
// regrouped when the field revision changes; transforms are refreshed every Sync.
// Each Sync returns freshly allocated groups so a published Frame is never rewritten.
type Batcher struct {
	revision uint64
	primed   bool
	members  [3][]*core.Voxel

	Regroups int
}

func NewBatcher() *Batcher {
	return &Batcher{}
}

// Invalidate forces a regroup on the next Sync.
func (b *Batcher) Invalidate() {
	b.primed = false
}

func (b *Batcher) Sync(field *core.Field, voxelSize float32) []Group {
	if voxelSize <= 0 {
		voxelSize = 1
	}
	if !b.primed || field.Revision() != b.revision {
		b.regroup(field)
	}

	groups := make([]Group, 0, len(b.members))
	for m := range b.members {
		voxels := b.members[m]
		if len(voxels) == 0 {
			continue
		}
		g := Group{
			Material:  core.Material(m),
			Traits:    Traits(core.Material(m)),
			Instances: make([]Instance, len(voxels)),
		}
		for i, v := range voxels {
			g.Instances[i] = Instance{
				Transform: instanceTransform(v, voxelSize),
				Color:     v.Color.Normalized(),
			}
		}
		groups = append(groups, g)
	}
	return groups
}

func (b *Batcher) regroup(field *core.Field) {
	for m := range b.members {
		b.members[m] = b.members[m][:0]
	}
	for _, v := range field.Voxels() {
		m := v.Material
		if !m.Valid() {
			m = core.Matte
		}
		b.members[m] = append(b.members[m], v)
	}
	b.revision = field.Revision()
	b.primed = true
	b.Regroups++
}

// M = T * R * S, same composition as an object-to-world transform.
func instanceTransform(v *core.Voxel, size float32) mgl32.Mat4 {
	p := v.Pos.Mul(size)
	translate := mgl32.Translate3D(p.X(), p.Y(), p.Z())
	rotate := mgl32.AnglesToQuat(v.Rot.X(), v.Rot.Y(), v.Rot.Z(), mgl32.XYZ).Mat4()
	scale := mgl32.Scale3D(size, size, size)
	return translate.Mul4(rotate).Mul4(scale)
}

// Frame is the read-only projection handed to a render thread.
type Frame struct {
	Groups []Group
	Count  int
}

// FrameContainer publishes the latest frame without locking the tick loop.
type FrameContainer struct {
	latest atomic.Pointer[Frame]
}

func (c *FrameContainer) Update(f *Frame) {
	c.latest.Store(f)
}

func (c *FrameContainer) Get() *Frame {
	return c.latest.Load()
}
