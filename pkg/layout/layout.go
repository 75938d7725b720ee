// Package layout plans where windows, pillars and solid wall runs go
// along a building footprint.
package layout

import (
	"fmt"
	"math"

	"github.com/chazu/facade/pkg/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Params controls window and pillar spacing along each footprint edge.
type Params struct {
	WindowWidth     float64 `toml:"window_width" json:"windowWidth"`
	WindowSpacing   float64 `toml:"window_spacing" json:"windowSpacing"`
	GeneratePillars bool    `toml:"generate_pillars" json:"generatePillars"`
	PillarWidth     float64 `toml:"pillar_width" json:"pillarWidth"`
	WindowPillarGap float64 `toml:"window_pillar_gap" json:"windowPillarGap"`

	// AllowBlankEdges lets edges shorter than ReservedEnds stay
	// windowless instead of failing the plan. Chamfered footprints need it.
	AllowBlankEdges bool `toml:"allow_blank_edges" json:"allowBlankEdges"`
}

// ReservedEnds is the edge length held back from window placement.
func (p Params) ReservedEnds() float64 {
	if p.GeneratePillars {
		return 2*p.WindowPillarGap + p.PillarWidth
	}
	return p.WindowWidth
}

// SinglePillars reports whether neighbouring windows share one pillar.
func (p Params) SinglePillars() bool {
	return 2*p.WindowPillarGap >= p.WindowSpacing
}

// WindowCount returns how many windows fit on an edge of length l.
func WindowCount(l float64, p Params) int {
	reserved := p.ReservedEnds()
	if l < reserved || p.WindowSpacing <= 0 {
		return 0
	}
	return int(math.Floor((l-reserved)/p.WindowSpacing)) + 1
}

// InvalidParameterError reports layout parameters that cannot be honoured.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("layout: invalid %s: %s", e.Param, e.Reason)
}

// Placement positions one instance. The instance's local +X axis is
// turned to RotationZ, which faces away from the footprint for a
// clockwise footprint.
type Placement struct {
	Position  geom.Point3 `json:"position"`
	RotationZ float64     `json:"rotationZ"`
}

// Result is a planned layout.
type Result struct {
	Windows   []Placement     `json:"windows"`
	Pillars   []Placement     `json:"pillars"`
	WallLoops []geom.Polyline `json:"wallLoops"`
}

func plan2(p geom.Point3) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Plan lays windows out evenly along every edge of a closed footprint,
// centred on the edge, and returns the wall runs left between them.
// Windows and pillars are ordered by edge, then along the edge.
//
// Besides the footprint geometry and the reserved-ends check, Plan
// rejects a non-positive window spacing or width and a window wider than
// its spacing, since those would divide by zero or overlap windows.
func Plan(footprint geom.Polyline, p Params) (*Result, error) {
	if !footprint.Closed {
		return nil, &geom.InvalidGeometryError{Op: "layout", Reason: "footprint must be closed"}
	}
	if len(footprint.Points) < 3 {
		return nil, &geom.InvalidGeometryError{Op: "layout", Reason: fmt.Sprintf("footprint has %d points, need at least 3", len(footprint.Points))}
	}
	if err := footprint.Validate("layout"); err != nil {
		return nil, err
	}
	if p.WindowSpacing <= 0 {
		return nil, &InvalidParameterError{Param: "window spacing", Reason: fmt.Sprintf("%g must be positive", p.WindowSpacing)}
	}
	if p.WindowWidth <= 0 {
		return nil, &InvalidParameterError{Param: "window width", Reason: fmt.Sprintf("%g must be positive", p.WindowWidth)}
	}
	if p.WindowWidth > p.WindowSpacing {
		return nil, &InvalidParameterError{Param: "window width", Reason: fmt.Sprintf("%g exceeds the window spacing %g", p.WindowWidth, p.WindowSpacing)}
	}

	reserved := p.ReservedEnds()
	if !p.AllowBlankEdges {
		for i := 0; i < footprint.SegmentCount(); i++ {
			a, b := footprint.Segment(i)
			if l := r2.Norm(r2.Sub(plan2(b), plan2(a))); l < reserved {
				return nil, &InvalidParameterError{
					Param:  "reserved edge length",
					Reason: fmt.Sprintf("edge %d is %.4g long but %.4g is reserved for pillars and gaps", i, l, reserved),
				}
			}
		}
	}

	res := &Result{}
	var initial, current []geom.Point3
	opened := false
	single := p.SinglePillars()

	breakAt := func(pt geom.Point3) {
		if !opened {
			initial = appendPoint(initial, pt)
			opened = true
			return
		}
		current = appendPoint(current, pt)
		if len(current) >= 2 {
			res.WallLoops = append(res.WallLoops, geom.Polyline{Points: current})
		}
		current = nil
	}

	for i := 0; i < footprint.SegmentCount(); i++ {
		v1, v2 := footprint.Segment(i)
		if opened {
			current = appendPoint(current, v1)
		} else {
			initial = appendPoint(initial, v1)
		}

		d := r2.Sub(plan2(v2), plan2(v1))
		l := r2.Norm(d)
		dir := r2.Unit(d)
		rot := math.Atan2(d.Y, d.X) + math.Pi/2

		// at returns the point t along the edge, interpolating height.
		at := func(t float64) geom.Point3 {
			xy := r2.Add(plan2(v1), r2.Scale(t, dir))
			return geom.Point3{X: xy.X, Y: xy.Y, Z: v1.Z + (v2.Z-v1.Z)*t/l}
		}

		count := WindowCount(l, p)
		offset := (l - float64(count-1)*p.WindowSpacing) / 2
		for j := 0; j < count; j++ {
			t := offset + float64(j)*p.WindowSpacing
			res.Windows = append(res.Windows, Placement{Position: at(t), RotationZ: rot})

			breakAt(at(t - p.WindowWidth/2))
			current = appendPoint(current, at(t+p.WindowWidth/2))

			if p.GeneratePillars {
				if j == 0 || !single {
					res.Pillars = append(res.Pillars, Placement{Position: at(t - p.WindowPillarGap), RotationZ: rot})
				}
				res.Pillars = append(res.Pillars, Placement{Position: at(t + p.WindowPillarGap), RotationZ: rot})
			}
		}
	}

	if !opened {
		res.WallLoops = []geom.Polyline{{Points: initial, Closed: true}}
		return res, nil
	}
	for _, pt := range initial {
		current = appendPoint(current, pt)
	}
	if len(current) >= 2 {
		res.WallLoops = append(res.WallLoops, geom.Polyline{Points: current})
	}
	return res, nil
}

// appendPoint appends pt unless it repeats the last point, which happens
// when a window sits flush with a corner or touches its neighbour.
func appendPoint(pts []geom.Point3, pt geom.Point3) []geom.Point3 {
	if n := len(pts); n > 0 && pts[n-1].Sub(pt).Length() < 1e-9 {
		return pts
	}
	return append(pts, pt)
}
