package sweep

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/facade/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-9

func near(a, b v3.Vec) bool {
	return a.Sub(b).Length() < tol
}

// depthLine is a flat profile one unit deep.
var depthLine = geom.Profile{Points: []geom.Point3{geom.P(0, 0), geom.P(1, 0)}}

// post is a closed square section.
var post = geom.Profile{Closed: true, Points: []geom.Point3{
	geom.P(0, 0), geom.P(1, 0), geom.P(1, 1), geom.P(0, 1),
}}

func TestStraightPathHasNoRotationOrScale(t *testing.T) {
	profile := geom.Profile{Points: []geom.Point3{geom.P(0, 0), geom.P(0.3, 0.2), geom.P(0, 1)}}
	path := geom.Polyline{Points: []geom.Point3{{X: 2, Y: 3}, {X: 7, Y: 3}}}

	m, err := Sweep(profile, path)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if m.VertexCount() != 6 || m.FaceCount() != 2 {
		t.Fatalf("got %d verts / %d faces, want 6 / 2", m.VertexCount(), m.FaceCount())
	}
	for j, pt := range profile.Points {
		want := pt.Add(path.Points[0])
		if !near(m.Vertices[j], want) {
			t.Errorf("first ring vertex %d = %v, want %v", j, m.Vertices[j], want)
		}
		want = pt.Add(path.Points[1])
		if !near(m.Vertices[3+j], want) {
			t.Errorf("second ring vertex %d = %v, want %v", j, m.Vertices[3+j], want)
		}
	}
}

func TestMiterScale(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  float64
	}{
		{"straight", math.Pi, 1},
		{"right angle", math.Pi / 2, math.Sqrt2},
		{"right angle reflex side", -math.Pi / 2, math.Sqrt2},
		{"120 degrees", 2 * math.Pi / 3, 1 / math.Sin(math.Pi/3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MiterScale(tt.angle); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("MiterScale(%v) = %v, want %v", tt.angle, got, tt.want)
			}
		})
	}
}

func TestClosedSquareMiterCorners(t *testing.T) {
	// Clockwise square: the left of travel is outside, so the depth line
	// should reach diagonally one unit out from every corner.
	path := geom.Polyline{Closed: true, Points: []geom.Point3{
		{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0},
	}}
	m, err := Sweep(depthLine, path)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	want := []v3.Vec{{X: -1, Y: -1}, {X: -1, Y: 11}, {X: 11, Y: 11}, {X: 11, Y: -1}}
	for i, w := range want {
		if got := m.Vertices[2*i+1]; !near(got, w) {
			t.Errorf("corner %d outer vertex = %v, want %v", i, got, w)
		}
		if got := m.Vertices[2*i]; !near(got, path.Points[i]) {
			t.Errorf("corner %d inner vertex = %v, want %v", i, got, path.Points[i])
		}
	}
	if m.FaceCount() != 4 {
		t.Errorf("FaceCount() = %d, want 4", m.FaceCount())
	}
	if got := len(m.BoundaryEdges()); got != 8 {
		t.Errorf("boundary edges = %d, want 8 (inner and outer loops)", got)
	}
}

func TestCounterClockwisePathPutsDepthInside(t *testing.T) {
	path := geom.Polyline{Closed: true, Points: []geom.Point3{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}}
	m, err := Sweep(depthLine, path)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	want := []v3.Vec{{X: 1, Y: 1}, {X: 9, Y: 1}, {X: 9, Y: 9}, {X: 1, Y: 9}}
	for i, w := range want {
		if got := m.Vertices[2*i+1]; !near(got, w) {
			t.Errorf("corner %d depth vertex = %v, want %v", i, got, w)
		}
	}
}

func TestScaleLeavesHeightUntouched(t *testing.T) {
	profile := geom.Profile{Points: []geom.Point3{geom.P(0, 0), geom.P(0.5, 2)}}
	path := geom.Polyline{Points: []geom.Point3{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: -5}}}
	m, err := Sweep(profile, path)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	for i, v := range m.Vertices {
		if i%2 == 1 && math.Abs(v.Z-2) > tol {
			t.Errorf("vertex %d Z = %v, want 2", i, v.Z)
		}
	}
	// Right turn: left of travel is the outside of the corner.
	if got, want := m.Vertices[3], (v3.Vec{X: 5.5, Y: 0.5, Z: 2}); !near(got, want) {
		t.Errorf("corner top vertex = %v, want %v", got, want)
	}
}

func TestClosedProfileClosedPathIsWatertight(t *testing.T) {
	path := geom.Polyline{Closed: true, Points: []geom.Point3{
		{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0},
	}}
	m, err := Sweep(post, path)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if m.FaceCount() != 16 {
		t.Errorf("FaceCount() = %d, want 16", m.FaceCount())
	}
	if got := len(m.BoundaryEdges()); got != 0 {
		t.Errorf("boundary edges = %d, want 0", got)
	}
	// Ring of outer width 12 and inner width 10, one unit tall.
	if got := m.SignedVolume(); math.Abs(got-44) > 1e-6 {
		t.Errorf("SignedVolume() = %v, want 44 with outward normals", got)
	}
}

func TestOpenPathCounts(t *testing.T) {
	path := geom.Polyline{Points: []geom.Point3{{X: 0}, {X: 1}, {X: 2, Y: 1}, {X: 2, Y: 3}}}
	m, err := Sweep(post, path)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if m.VertexCount() != 16 {
		t.Errorf("VertexCount() = %d, want 16", m.VertexCount())
	}
	if m.FaceCount() != 12 {
		t.Errorf("FaceCount() = %d, want 12", m.FaceCount())
	}
	// Open ends stay uncapped.
	if got := len(m.BoundaryEdges()); got != 8 {
		t.Errorf("boundary edges = %d, want 8", got)
	}
}

func TestNearStraightCornersAgree(t *testing.T) {
	// Every variant continues roughly along +X, so the depth point of the
	// middle ring must sit on the left (+Y) regardless of which side of
	// the degenerate tolerance the corner lands.
	for _, dy := range []float64{0, 1e-12, -1e-12, 1e-3, -1e-3} {
		path := geom.Polyline{Points: []geom.Point3{{X: 0}, {X: 5, Y: dy}, {X: 10}}}
		m, err := Sweep(depthLine, path)
		if err != nil {
			t.Fatalf("dy=%g: Sweep() error = %v", dy, err)
		}
		got := m.Vertices[3].Sub(m.Vertices[2])
		if got.Y < 0.99 || math.Abs(got.X) > 0.01 {
			t.Errorf("dy=%g: middle ring depth offset = %v, want about (0, 1)", dy, got)
		}
	}
}

func TestSweepInvalidGeometry(t *testing.T) {
	line := geom.Polyline{Points: []geom.Point3{{}, {X: 1}}}
	tests := []struct {
		name    string
		profile geom.Profile
		path    geom.Polyline
	}{
		{"profile too short", geom.Profile{Points: []geom.Point3{geom.P(0, 0)}}, line},
		{"path too short", depthLine, geom.Polyline{Points: []geom.Point3{{}}}},
		{"coincident path vertices", depthLine, geom.Polyline{Points: []geom.Point3{{}, {}, {X: 1}}}},
		{"closed path of two points", depthLine, geom.Polyline{Closed: true, Points: []geom.Point3{{}, {X: 1}}}},
		{"path folds back", depthLine, geom.Polyline{Points: []geom.Point3{{}, {X: 1}, {}}}},
		{"vertical edge", depthLine, geom.Polyline{Points: []geom.Point3{{}, {Z: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sweep(tt.profile, tt.path)
			var ge *geom.InvalidGeometryError
			if !errors.As(err, &ge) {
				t.Fatalf("Sweep() error = %v, want *geom.InvalidGeometryError", err)
			}
		})
	}
}
