package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is an indexed polygon mesh. Faces hold vertex indices in winding
// order; a face has at least three indices. Sweeps produce quads,
// marching cubes produces triangles, and both may share one mesh.
type Mesh struct {
	Vertices []v3.Vec
	Faces    [][]int
}

// NewMesh returns an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{}
}

// AddVertex appends v and returns its index.
func (m *Mesh) AddVertex(v v3.Vec) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends a face over existing vertex indices.
func (m *Mesh) AddFace(idx ...int) {
	f := make([]int, len(idx))
	copy(f, idx)
	m.Faces = append(m.Faces, f)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices: make([]v3.Vec, len(m.Vertices)),
		Faces:    make([][]int, len(m.Faces)),
	}
	copy(out.Vertices, m.Vertices)
	for i, f := range m.Faces {
		out.Faces[i] = append([]int(nil), f...)
	}
	return out
}

// Append merges o into m. o's indices are offset past m's vertices.
func (m *Mesh) Append(o *Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		nf := make([]int, len(f))
		for i, idx := range f {
			nf[i] = idx + base
		}
		m.Faces = append(m.Faces, nf)
	}
}

// Transform applies t to every vertex in place.
func (m *Mesh) Transform(t sdf.M44) {
	for i, v := range m.Vertices {
		m.Vertices[i] = t.MulPosition(v)
	}
}

// Transformed returns a transformed copy, leaving m untouched.
func (m *Mesh) Transformed(t sdf.M44) *Mesh {
	out := m.Clone()
	out.Transform(t)
	return out
}

// BoundingBox returns the axis-aligned bounds of the vertices.
func (m *Mesh) BoundingBox() (min, max v3.Vec) {
	if len(m.Vertices) == 0 {
		return v3.Vec{}, v3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = v3.Vec{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
		max = v3.Vec{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
	}
	return min, max
}

// areaVector returns the Newell normal of face f: its direction is the
// face normal for the current winding and its length is twice the area.
func (m *Mesh) areaVector(f int) v3.Vec {
	face := m.Faces[f]
	var n v3.Vec
	for i := range face {
		a := m.Vertices[face[i]]
		b := m.Vertices[face[(i+1)%len(face)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// FaceNormal returns the unit normal of face f, or the zero vector for a
// degenerate face.
func (m *Mesh) FaceNormal(f int) v3.Vec {
	n := m.areaVector(f)
	if l := n.Length(); l > 0 {
		return n.MulScalar(1 / l)
	}
	return v3.Vec{}
}

// FaceCenter returns the average of face f's vertices.
func (m *Mesh) FaceCenter(f int) v3.Vec {
	var c v3.Vec
	for _, idx := range m.Faces[f] {
		c = c.Add(m.Vertices[idx])
	}
	return c.MulScalar(1 / float64(len(m.Faces[f])))
}

// VertexNormals returns area-weighted unit normals, one per vertex.
func (m *Mesh) VertexNormals() []v3.Vec {
	normals := make([]v3.Vec, len(m.Vertices))
	for f, face := range m.Faces {
		n := m.areaVector(f)
		for _, idx := range face {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i, n := range normals {
		if l := n.Length(); l > 0 {
			normals[i] = n.MulScalar(1 / l)
		}
	}
	return normals
}

// Triangles fans every face into triangles.
func (m *Mesh) Triangles() [][3]int {
	var tris [][3]int
	for _, f := range m.Faces {
		for i := 1; i+1 < len(f); i++ {
			tris = append(tris, [3]int{f[0], f[i], f[i+1]})
		}
	}
	return tris
}

// SignedVolume returns the volume enclosed by the faces. It is positive
// when a closed mesh's normals point outward.
func (m *Mesh) SignedVolume() float64 {
	var vol float64
	for _, t := range m.Triangles() {
		a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}

type edgeKey struct{ a, b int }

func undirected(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// edgeFaces maps each undirected edge to the faces using it.
func (m *Mesh) edgeFaces() map[edgeKey][]int {
	edges := make(map[edgeKey][]int)
	for f, face := range m.Faces {
		for i := range face {
			k := undirected(face[i], face[(i+1)%len(face)])
			edges[k] = append(edges[k], f)
		}
	}
	return edges
}

// BoundaryEdges returns the edges used by exactly one face, directed as
// their face traverses them.
func (m *Mesh) BoundaryEdges() [][2]int {
	edges := m.edgeFaces()
	var out [][2]int
	for _, face := range m.Faces {
		for i := range face {
			a, b := face[i], face[(i+1)%len(face)]
			if len(edges[undirected(a, b)]) == 1 {
				out = append(out, [2]int{a, b})
			}
		}
	}
	return out
}

// traverses reports whether face f walks the directed edge a->b.
func (m *Mesh) traverses(f, a, b int) bool {
	face := m.Faces[f]
	for i := range face {
		if face[i] == a && face[(i+1)%len(face)] == b {
			return true
		}
	}
	return false
}

func (m *Mesh) flip(f int) {
	face := m.Faces[f]
	for i, j := 0, len(face)-1; i < j; i, j = i+1, j-1 {
		face[i], face[j] = face[j], face[i]
	}
}

// RecalcNormals makes face winding consistent across shared edges and
// orients each connected component outward. Closed components are
// oriented by the sign of their enclosed volume; open ones so that faces
// on average point away from the component's centroid.
func (m *Mesh) RecalcNormals() {
	edges := m.edgeFaces()
	visited := make([]bool, len(m.Faces))

	for seed := range m.Faces {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		component := []int{seed}
		closed := true

		for q := 0; q < len(component); q++ {
			f := component[q]
			face := m.Faces[f]
			for i := range face {
				a, b := face[i], face[(i+1)%len(face)]
				shared := edges[undirected(a, b)]
				if len(shared) == 1 {
					closed = false
					continue
				}
				// Non-manifold edges do not define a neighbour.
				if len(shared) != 2 {
					closed = false
					continue
				}
				g := shared[0]
				if g == f {
					g = shared[1]
				}
				if visited[g] {
					continue
				}
				if m.traverses(g, a, b) {
					m.flip(g)
				}
				visited[g] = true
				component = append(component, g)
			}
		}

		if m.outwardScore(component, closed) < 0 {
			for _, f := range component {
				m.flip(f)
			}
		}
	}
}

// outwardScore is positive when the component's faces point outward.
func (m *Mesh) outwardScore(component []int, closed bool) float64 {
	var centroid v3.Vec
	var n int
	for _, f := range component {
		for _, idx := range m.Faces[f] {
			centroid = centroid.Add(m.Vertices[idx])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	centroid = centroid.MulScalar(1 / float64(n))

	var score float64
	for _, f := range component {
		if closed {
			face := m.Faces[f]
			a := m.Vertices[face[0]].Sub(centroid)
			for i := 1; i+1 < len(face); i++ {
				b := m.Vertices[face[i]].Sub(centroid)
				c := m.Vertices[face[i+1]].Sub(centroid)
				score += a.Dot(b.Cross(c))
			}
			continue
		}
		score += m.areaVector(f).Dot(m.FaceCenter(f).Sub(centroid))
	}
	return score
}
