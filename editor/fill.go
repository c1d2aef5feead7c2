package editor

import "github.com/gekko3d/sculpt/core"

var neighbours = [6]core.Cell{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// PaintBucket flood-fills from the voxel at cell. The fill spreads through face
// neighbours (6-connectivity) that share the start voxel's exact color and material,
// and repaints the whole component. Returns the number of voxels repainted; zero when
// the cell is empty or already painted with the fill.
func (e *Editor) PaintBucket(field *core.Field, cell core.Cell, color core.Color, material core.Material) int {
	start := field.FindAt(cell)
	if start == nil {
		return 0
	}
	if start.Color == color && start.Material == material {
		return 0
	}

	srcColor, srcMaterial := start.Color, start.Material
	component := []*core.Voxel{start}
	visited := map[core.VoxelId]bool{start.Id: true}

	q := []*core.Voxel{start}
	for len(q) > 0 {
		v := q[0]
		q = q[1:]
		c := v.Cell()
		for _, d := range neighbours {
			n := field.FindAt(c.Add(d))
			if n == nil || visited[n.Id] {
				continue
			}
			if n.Color != srcColor || n.Material != srcMaterial {
				continue
			}
			visited[n.Id] = true
			component = append(component, n)
			q = append(q, n)
		}
	}

	e.recorder.Record()
	for _, v := range component {
		field.Repaint(v, color, material)
	}
	return len(component)
}
