// Package sweep extrudes a cross-section profile along a polyline path.
//
// At every path vertex a ring (a copy of the profile) is placed, rotated
// about Z so the profile's depth axis lies on the corner bisector and
// scaled in plan by the miter factor, so that straight sections keep
// their depth on both sides of a corner. Consecutive rings are joined by
// quads. Nothing caps the ends: the result is an open surface unless both
// the profile and the path are closed.
//
// The profile's depth axis ends up on the left of the direction of
// travel, so a clockwise footprint puts depth on the outside.
package sweep

import (
	"fmt"
	"math"

	"github.com/chazu/facade/pkg/geom"
	"github.com/chazu/facade/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// degenerate is the bisector length below which a corner counts as a
	// straight continuation.
	degenerate = 1e-9
	// folded is the corner angle below which the path doubles back.
	folded = 1e-9
)

// up is the profile's reference direction in plan.
var up = v3.Vec{Y: 1}

// frame is the absolute orientation of one ring.
type frame struct {
	angle float64
	scale float64
}

// Sweep builds the swept surface of profile along path.
func Sweep(profile geom.Profile, path geom.Polyline) (*kernel.Mesh, error) {
	if len(profile.Points) < 2 {
		return nil, &geom.InvalidGeometryError{Op: "sweep", Reason: fmt.Sprintf("profile has %d points, need at least 2", len(profile.Points))}
	}
	if err := path.Validate("sweep"); err != nil {
		return nil, err
	}
	if path.Closed && len(path.Points) < 3 {
		return nil, &geom.InvalidGeometryError{Op: "sweep", Reason: "closed path needs at least 3 points"}
	}

	frames := make([]frame, len(path.Points))
	for i := range path.Points {
		f, err := frameAt(path, i)
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}

	n := len(profile.Points)
	m := kernel.NewMesh()
	rings := make([]int, len(path.Points))
	state := frame{angle: 0, scale: 1}

	for i, p := range path.Points {
		if i == 0 {
			rings[i] = place(m, profile, p)
		} else {
			rings[i] = extrude(m, rings[i-1], n, p.Sub(path.Points[i-1]))
			bridge(m, rings[i-1], rings[i], n, profile.Closed)
		}

		f := frames[i]
		delta := sdf.Translate3d(p).
			Mul(sdf.Scale3d(v3.Vec{X: f.scale / state.scale, Y: f.scale / state.scale, Z: 1})).
			Mul(sdf.RotateZ(state.angle - f.angle)).
			Mul(sdf.Translate3d(p.MulScalar(-1)))
		for j := rings[i]; j < rings[i]+n; j++ {
			m.Vertices[j] = delta.MulPosition(m.Vertices[j])
		}
		state = f
	}

	if path.Closed {
		bridge(m, rings[len(rings)-1], rings[0], n, profile.Closed)
	}

	m.RecalcNormals()
	return m, nil
}

// MiterScale returns the plan scale a ring needs at a corner whose two
// edges meet at interiorAngle radians: 1 for a straight continuation,
// sqrt(2) at a right angle.
func MiterScale(interiorAngle float64) float64 {
	return math.Abs(1 / math.Cos(math.Pi/2-interiorAngle/2))
}

// signedAngle returns the angle from u to v in the XY plane, positive
// clockwise.
func signedAngle(u, v v3.Vec) float64 {
	return math.Atan2(u.Y*v.X-u.X*v.Y, u.X*v.X+u.Y*v.Y)
}

func planDir(v v3.Vec) (v3.Vec, bool) {
	p := v3.Vec{X: v.X, Y: v.Y}
	l := p.Length()
	if l < degenerate {
		return v3.Vec{}, false
	}
	return p.MulScalar(1 / l), true
}

// frameAt computes the absolute ring orientation at path vertex i.
func frameAt(path geom.Polyline, i int) (frame, error) {
	pts := path.Points
	n := len(pts)

	var in, out v3.Vec
	switch {
	case path.Closed:
		in = pts[i].Sub(pts[(i-1+n)%n])
		out = pts[(i+1)%n].Sub(pts[i])
	case i == 0:
		out = pts[1].Sub(pts[0])
		in = out
	case i == n-1:
		in = pts[i].Sub(pts[i-1])
		out = in
	default:
		in = pts[i].Sub(pts[i-1])
		out = pts[i+1].Sub(pts[i])
	}

	prev, ok1 := planDir(in)
	next, ok2 := planDir(out)
	if !ok1 || !ok2 {
		return frame{}, &geom.InvalidGeometryError{Op: "sweep", Reason: fmt.Sprintf("edge at vertex %d has no horizontal extent", i)}
	}
	// Both tangents point into the corner.
	next = next.MulScalar(-1)

	theta := signedAngle(next, prev)
	if math.Abs(theta) < folded {
		return frame{}, &geom.InvalidGeometryError{Op: "sweep", Reason: fmt.Sprintf("path folds back on itself at vertex %d", i)}
	}

	var angle float64
	if sum := prev.Add(next); sum.Length() < degenerate {
		// Straight continuation: the fallback already lands on the left
		// of travel, so the reflex correction must not apply.
		angle = signedAngle(up, next) + math.Pi/2
	} else {
		angle = signedAngle(up, sum)
		if theta > -math.Pi && theta < 0 {
			angle += math.Pi
		}
	}

	return frame{angle: angle, scale: MiterScale(theta)}, nil
}

// place adds the first ring: a pristine copy of the profile moved to p.
func place(m *kernel.Mesh, profile geom.Profile, p geom.Point3) int {
	start := len(m.Vertices)
	for _, pt := range profile.Points {
		m.AddVertex(pt.Add(p))
	}
	return start
}

// extrude duplicates the n-vertex ring at from, moved by d.
func extrude(m *kernel.Mesh, from, n int, d v3.Vec) int {
	start := len(m.Vertices)
	for j := 0; j < n; j++ {
		m.AddVertex(m.Vertices[from+j].Add(d))
	}
	return start
}

// bridge connects two rings with one quad per profile edge.
func bridge(m *kernel.Mesh, a, b, n int, closed bool) {
	for j := 0; j+1 < n; j++ {
		m.AddFace(a+j, a+j+1, b+j+1, b+j)
	}
	if closed && n > 2 {
		m.AddFace(a+n-1, a, b, b+n-1)
	}
}
