// Package kernel defines the abstract solid-modeling interface used for
// the facade's CSG ornaments (window-under panels and balusters) and the
// polygon Mesh every generated part is delivered as. Swept parts build
// Meshes directly; solids reach the same representation through ToMesh.
package kernel

import "github.com/chazu/facade/pkg/geom"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Box has its minimum corner at the origin; Cylinder
	// stands on the XY plane around the Z axis.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid

	// Revolve turns a profile about the Z axis. The profile's depth is
	// the radius and its height stays height; it is closed implicitly.
	Revolve(p geom.Profile) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	RotateZ(s Solid, radians float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
