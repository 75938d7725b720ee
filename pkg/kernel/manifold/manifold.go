//go:build manifold

// Package manifold is a kernel.Kernel backed by the Manifold C library
// (https://github.com/elalish/manifold). Its booleans always produce
// manifold meshes, which gives cleaner window-under panels than marching
// cubes.
//
// The manifoldc headers and library must be installed under /usr/local.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/facade/pkg/geom"
	"github.com/chazu/facade/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Segments is the number of facets around cylinders and revolved solids.
const Segments = 32

var (
	_ kernel.Kernel = Kernel{}
	_ kernel.Solid  = (*solid)(nil)
)

// solid owns one C manifold. The finalizer releases it.
type solid struct {
	m *C.ManifoldManifold
}

// build allocates a manifold, lets op fill it and wraps the result.
func build(op func(mem *C.ManifoldManifold) *C.ManifoldManifold) *solid {
	s := &solid{m: op(C.manifold_alloc_manifold())}
	runtime.SetFinalizer(s, func(s *solid) {
		if s.m != nil {
			C.manifold_delete_manifold(s.m)
			s.m = nil
		}
	})
	return s
}

func raw(s kernel.Solid) *C.ManifoldManifold {
	return s.(*solid).m
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	b := C.manifold_bounding_box(C.manifold_alloc_box(), s.m)
	defer C.manifold_delete_box(b)

	min = [3]float64{
		float64(C.manifold_box_min_x(b)),
		float64(C.manifold_box_min_y(b)),
		float64(C.manifold_box_min_z(b)),
	}
	max = [3]float64{
		float64(C.manifold_box_max_x(b)),
		float64(C.manifold_box_max_y(b)),
		float64(C.manifold_box_max_z(b)),
	}
	return min, max
}

// Kernel implements kernel.Kernel. It holds no state; every solid owns
// its own C memory.
type Kernel struct{}

// New returns a Manifold kernel.
func New() (kernel.Kernel, error) {
	return Kernel{}, nil
}

// Box has its minimum corner at the origin.
func (Kernel) Box(x, y, z float64) kernel.Solid {
	return build(func(mem *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_cube(mem, C.double(x), C.double(y), C.double(z), 0)
	})
}

// frustum is a truncated cone standing on the XY plane.
func frustum(height, rLow, rHigh float64) *solid {
	return build(func(mem *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_cylinder(mem, C.double(height), C.double(rLow), C.double(rHigh), C.int(Segments), 0)
	})
}

// Cylinder stands on the XY plane around the Z axis.
func (Kernel) Cylinder(height, radius float64) kernel.Solid {
	return frustum(height, radius, radius)
}

// Revolve stacks one frustum per rising segment of the profile. Flat
// segments are covered by their neighbours. A descending segment cannot
// be expressed this way and is rejected.
func (k Kernel) Revolve(p geom.Profile) (kernel.Solid, error) {
	var out kernel.Solid
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		dz := b.Z - a.Z
		if dz < 0 {
			return nil, fmt.Errorf("manifold: revolve: profile descends at point %d", i)
		}
		if dz == 0 {
			continue
		}
		f := k.Translate(frustum(dz, math.Max(a.Y, 0), math.Max(b.Y, 0)), 0, 0, a.Z)
		if out == nil {
			out = f
		} else {
			out = k.Union(out, f)
		}
	}
	if out == nil {
		return nil, fmt.Errorf("manifold: revolve: profile has no height")
	}
	return out, nil
}

func (Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return build(func(mem *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_union(mem, raw(a), raw(b))
	})
}

// Difference removes b from a.
func (Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return build(func(mem *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_difference(mem, raw(a), raw(b))
	})
}

func (Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return build(func(mem *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_translate(mem, raw(s), C.double(x), C.double(y), C.double(z))
	})
}

// RotateZ turns the solid about the Z axis. Manifold takes degrees.
func (Kernel) RotateZ(s kernel.Solid, radians float64) kernel.Solid {
	deg := radians * 180 / math.Pi
	return build(func(mem *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_rotate(mem, raw(s), 0, 0, C.double(deg))
	})
}

// ToMesh copies the solid's triangles out of Manifold's MeshGL. The first
// three vertex properties are always the position.
func (Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), raw(s))
	defer C.manifold_delete_meshgl(gl)

	mesh := kernel.NewMesh()
	nv := int(C.manifold_meshgl_num_vert(gl))
	nt := int(C.manifold_meshgl_num_tri(gl))
	if nv == 0 || nt == 0 {
		return mesh, nil
	}
	stride := int(C.manifold_meshgl_num_prop(gl))
	if stride < 3 {
		return nil, fmt.Errorf("manifold: mesh has %d vertex properties, need 3", stride)
	}

	props := make([]float32, nv*stride)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), gl)
	tris := make([]uint32, nt*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&tris[0])), gl)

	for v := range nv {
		p := props[v*stride:]
		mesh.AddVertex(v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])})
	}
	for t := range nt {
		i, j, k := int(tris[3*t]), int(tris[3*t+1]), int(tris[3*t+2])
		if i >= nv || j >= nv || k >= nv {
			return nil, fmt.Errorf("manifold: triangle %d indexes past %d vertices", t, nv)
		}
		mesh.AddFace(i, j, k)
	}
	return mesh, nil
}
