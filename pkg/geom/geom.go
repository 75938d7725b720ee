// Package geom holds the value types shared by the facade generator:
// polylines traced through world space and the cross-section profiles
// swept along them.
package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point3 is a world-space point. Coordinates are in scene units.
type Point3 = v3.Vec

// coincident is the distance below which two points count as the same.
const coincident = 1e-9

// InvalidGeometryError reports input geometry that cannot be processed:
// too few points, coincident consecutive vertices, or a path that folds
// back on itself.
type InvalidGeometryError struct {
	Op     string
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("%s: invalid geometry: %s", e.Op, e.Reason)
}

// Polyline is an ordered sequence of points. A closed polyline has an
// implicit edge from its last point back to its first.
type Polyline struct {
	Points []Point3
	Closed bool
}

// SegmentCount returns the number of edges, counting the closing edge.
func (p Polyline) SegmentCount() int {
	n := len(p.Points)
	if n < 2 {
		return 0
	}
	if p.Closed {
		return n
	}
	return n - 1
}

// Segment returns the endpoints of edge i.
func (p Polyline) Segment(i int) (a, b Point3) {
	n := len(p.Points)
	return p.Points[i], p.Points[(i+1)%n]
}

// Length returns the total edge length.
func (p Polyline) Length() float64 {
	var l float64
	for i := 0; i < p.SegmentCount(); i++ {
		a, b := p.Segment(i)
		l += b.Sub(a).Length()
	}
	return l
}

// Validate checks the invariants shared by every consumer: at least two
// points and no zero-length edges. op names the caller in the error.
func (p Polyline) Validate(op string) error {
	if len(p.Points) < 2 {
		return &InvalidGeometryError{Op: op, Reason: fmt.Sprintf("polyline has %d points, need at least 2", len(p.Points))}
	}
	for i := 0; i < p.SegmentCount(); i++ {
		a, b := p.Segment(i)
		if b.Sub(a).Length() < coincident {
			return &InvalidGeometryError{Op: op, Reason: fmt.Sprintf("vertices %d and %d coincide", i, (i+1)%len(p.Points))}
		}
	}
	return nil
}

// Translate returns a copy of p moved by d.
func (p Polyline) Translate(d Point3) Polyline {
	out := Polyline{Points: make([]Point3, len(p.Points)), Closed: p.Closed}
	for i, pt := range p.Points {
		out.Points[i] = pt.Add(d)
	}
	return out
}

// Profile is a cross-section lying in the local X=0 plane. Y is depth
// (how far the section protrudes from the wall plane) and Z is height.
// A closed profile connects its last point back to its first.
type Profile struct {
	Points []Point3
	Closed bool
}

// P returns a profile point at the given depth and height.
func P(depth, height float64) Point3 {
	return Point3{Y: depth, Z: height}
}

// Bounds returns the depth and height extents of the profile.
func (p Profile) Bounds() (minDepth, maxDepth, minHeight, maxHeight float64) {
	if len(p.Points) == 0 {
		return 0, 0, 0, 0
	}
	minDepth, minHeight = math.Inf(1), math.Inf(1)
	maxDepth, maxHeight = math.Inf(-1), math.Inf(-1)
	for _, pt := range p.Points {
		minDepth = math.Min(minDepth, pt.Y)
		maxDepth = math.Max(maxDepth, pt.Y)
		minHeight = math.Min(minHeight, pt.Z)
		maxHeight = math.Max(maxHeight, pt.Z)
	}
	return minDepth, maxDepth, minHeight, maxHeight
}

// Translate returns a copy of p shifted by depth and height.
func (p Profile) Translate(depth, height float64) Profile {
	out := Profile{Points: make([]Point3, len(p.Points)), Closed: p.Closed}
	for i, pt := range p.Points {
		out.Points[i] = P(pt.Y+depth, pt.Z+height)
	}
	return out
}

// Reverse returns the profile traversed in the opposite direction.
func (p Profile) Reverse() Profile {
	out := Profile{Points: make([]Point3, len(p.Points)), Closed: p.Closed}
	for i, pt := range p.Points {
		out.Points[len(p.Points)-1-i] = pt
	}
	return out
}

// ClipHeight returns the open chain of p below height h. An edge crossing
// h is cut at the crossing; the chain stops at the first such cut.
func (p Profile) ClipHeight(h float64) Profile {
	var out []Point3
	for i, pt := range p.Points {
		if pt.Z <= h {
			out = append(out, pt)
			continue
		}
		if i > 0 {
			prev := p.Points[i-1]
			if prev.Z < h {
				t := (h - prev.Z) / (pt.Z - prev.Z)
				out = append(out, P(prev.Y+t*(pt.Y-prev.Y), h))
			}
		}
		break
	}
	return Profile{Points: out}
}

// Concat joins open profiles end to end. A joint whose endpoints coincide
// is emitted once.
func Concat(parts ...Profile) Profile {
	var out []Point3
	for _, part := range parts {
		for _, pt := range part.Points {
			if n := len(out); n > 0 && out[n-1].Sub(pt).Length() < coincident {
				continue
			}
			out = append(out, pt)
		}
	}
	return Profile{Points: out}
}
