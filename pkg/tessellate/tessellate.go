// Package tessellate flattens generated building parts into triangle
// buffers ready for rendering. One buffer set is produced per part.
package tessellate

import (
	"github.com/chazu/facade/pkg/building"
	"github.com/chazu/facade/pkg/kernel"
)

// Buffers is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Buffers struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which building part this came from
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// IsEmpty returns true if the buffers hold no geometry.
func (b *Buffers) IsEmpty() bool {
	return len(b.Vertices) == 0
}

// Tessellate converts every part with geometry into Buffers, in order.
// Parts with a nil or empty mesh are skipped. The parts are not modified.
func Tessellate(parts []building.Part) []*Buffers {
	var out []*Buffers
	for _, p := range parts {
		if p.Mesh == nil || p.Mesh.IsEmpty() {
			continue
		}
		b := Mesh(p.Mesh)
		b.PartName = p.Name
		out = append(out, b)
	}
	return out
}

// Mesh fans the faces of m into triangles and pairs every vertex with
// its area-weighted normal.
func Mesh(m *kernel.Mesh) *Buffers {
	normals := m.VertexNormals()
	b := &Buffers{
		Vertices: make([]float32, 0, 3*len(m.Vertices)),
		Normals:  make([]float32, 0, 3*len(m.Vertices)),
	}
	for i, v := range m.Vertices {
		n := normals[i]
		b.Vertices = append(b.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		b.Normals = append(b.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}

	tris := m.Triangles()
	b.Indices = make([]uint32, 0, 3*len(tris))
	for _, t := range tris {
		b.Indices = append(b.Indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	return b
}
