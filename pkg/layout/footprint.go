package layout

import (
	"fmt"

	"github.com/chazu/facade/pkg/geom"
)

// FootprintParams describes a rectangular footprint centred on the
// origin, with optional chamfered corners and a rectangular bay (wedge)
// projecting from the rear edge.
type FootprintParams struct {
	Width      float64 `toml:"width" json:"width"`
	Depth      float64 `toml:"depth" json:"depth"`
	Chamfer    float64 `toml:"chamfer" json:"chamfer"`
	WedgeWidth float64 `toml:"wedge_width" json:"wedgeWidth"`
	WedgeDepth float64 `toml:"wedge_depth" json:"wedgeDepth"`
}

// Validate reports dimensions that would make a self-intersecting or
// degenerate footprint.
func (p FootprintParams) Validate() error {
	switch {
	case p.Width <= 0 || p.Depth <= 0:
		return &InvalidParameterError{Param: "footprint", Reason: fmt.Sprintf("size %gx%g must be positive", p.Width, p.Depth)}
	case p.Chamfer < 0 || 2*p.Chamfer >= p.Width || 2*p.Chamfer >= p.Depth:
		return &InvalidParameterError{Param: "chamfer", Reason: fmt.Sprintf("%g does not fit a %gx%g footprint", p.Chamfer, p.Width, p.Depth)}
	case p.hasWedge() && p.WedgeWidth >= p.Width-2*p.Chamfer:
		return &InvalidParameterError{Param: "wedge width", Reason: fmt.Sprintf("%g does not fit between the rear corners", p.WedgeWidth)}
	}
	return nil
}

func (p FootprintParams) hasWedge() bool {
	return p.WedgeWidth > 0 && p.WedgeDepth > 0
}

// Footprint builds the clockwise (seen from +Z) footprint polygon,
// starting at the front-left corner.
func Footprint(p FootprintParams) (geom.Polyline, error) {
	if err := p.Validate(); err != nil {
		return geom.Polyline{}, err
	}
	w, d, c := p.Width/2, p.Depth/2, p.Chamfer
	var pts []geom.Point3
	corner := func(x, y, dx1, dy1, dx2, dy2 float64) {
		if c > 0 {
			pts = append(pts, geom.Point3{X: x + dx1*c, Y: y + dy1*c}, geom.Point3{X: x + dx2*c, Y: y + dy2*c})
			return
		}
		pts = append(pts, geom.Point3{X: x, Y: y})
	}

	corner(-w, -d, 1, 0, 0, 1) // front left
	corner(-w, d, 0, -1, 1, 0) // rear left
	if p.hasWedge() {
		ww := p.WedgeWidth / 2
		pts = append(pts,
			geom.Point3{X: -ww, Y: d},
			geom.Point3{X: -ww, Y: d + p.WedgeDepth},
			geom.Point3{X: ww, Y: d + p.WedgeDepth},
			geom.Point3{X: ww, Y: d},
		)
	}
	corner(w, d, -1, 0, 0, -1) // rear right
	corner(w, -d, 0, 1, -1, 0) // front right

	return geom.Polyline{Points: pts, Closed: true}, nil
}
