package building

import (
	"fmt"
	"math"

	"github.com/chazu/facade/pkg/geom"
	"github.com/chazu/facade/pkg/kernel"
	"github.com/chazu/facade/pkg/layout"
	"github.com/chazu/facade/pkg/section"
	"github.com/chazu/facade/pkg/sweep"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Part names, in the order they appear in a Result.
const (
	PartSeparators  = "separators"
	PartWalls       = "walls"
	PartPlinth      = "plinth"
	PartPillars     = "pillars"
	PartWindowUnder = "window-under"
)

// builder holds everything the part builders share. It is read-only once
// built, so the builders can run concurrently.
type builder struct {
	p         Params
	kernel    kernel.Kernel
	footprint geom.Polyline
	plan      *layout.Result

	// separator is the realized floor separator section, empty when the
	// separator is flat.
	separator geom.Profile
	// offset is the pillar offset step from (0,0) to (size,size), without
	// the return to the wall plane.
	offset geom.Profile
}

// lift returns a translation by z.
func lift(z float64) sdf.M44 {
	return sdf.Translate3d(v3.Vec{Z: z})
}

// place moves a mesh built in a local frame (+X outward, Y along the
// wall) onto a placement, raised by z.
func place(m *kernel.Mesh, pl layout.Placement, z float64) *kernel.Mesh {
	t := sdf.Translate3d(v3.Vec{X: pl.Position.X, Y: pl.Position.Y, Z: pl.Position.Z + z}).
		Mul(sdf.RotateZ(pl.RotationZ))
	return m.Transformed(t)
}

// perFloor appends one copy of m per floor, raised to each floor's base
// plus dz.
func (b *builder) perFloor(m *kernel.Mesh, dz float64) *kernel.Mesh {
	out := kernel.NewMesh()
	for k := 0; k < b.p.General.FloorCount; k++ {
		out.Append(m.Transformed(lift(b.p.General.FloorBase(k) + dz)))
	}
	return out
}

func (b *builder) separators() (*kernel.Mesh, error) {
	if len(b.separator.Points) < 2 {
		return nil, nil
	}
	ring, err := sweep.Sweep(b.separator, b.footprint)
	if err != nil {
		return nil, err
	}
	return b.perFloor(ring, b.p.General.WallHeight()), nil
}

func (b *builder) walls() (*kernel.Mesh, error) {
	face := section.Wall(b.p.Walls.Face, b.p.General.WallHeight())
	floor := kernel.NewMesh()
	for i, loop := range b.plan.WallLoops {
		m, err := sweep.Sweep(face, loop)
		if err != nil {
			return nil, fmt.Errorf("wall loop %d: %w", i, err)
		}
		floor.Append(m)
	}
	return b.perFloor(floor, 0), nil
}

// plinth wraps the footprint below the first floor with a wall standing
// PlinthOffset proud of the walls above, capped by a ledge back to the
// wall plane.
func (b *builder) plinth() (*kernel.Mesh, error) {
	h := b.p.General.FirstFloorOffset
	if h <= 0 {
		return nil, nil
	}
	off := b.p.Walls.PlinthOffset
	profile := geom.Concat(
		section.Wall(b.p.Walls.Plinth, h).Translate(off, 0),
		geom.Profile{Points: []geom.Point3{geom.P(off, h), geom.P(0, h)}},
	)
	return sweep.Sweep(profile, b.footprint)
}

// pillarFloor is one floor of the pillar section: an optional offset
// band stepping out and back in, then the separator band.
func (b *builder) pillarFloor() geom.Profile {
	pp, top := b.p.Pillar, b.p.General.WallHeight()

	body := section.Line(0, top)
	if off := pp.OffsetSize; off > 0 && len(b.offset.Points) > 0 {
		chain := b.offset.Points
		lower := make([]geom.Point3, 0, len(chain))
		for i := len(chain) - 1; i >= 0; i-- {
			lower = append(lower, geom.P(off-chain[i].Y, pp.OffsetHeight+off-chain[i].Z))
		}
		upper := make([]geom.Point3, 0, len(chain))
		for _, pt := range chain {
			upper = append(upper, geom.P(off-pt.Y, top-off+pt.Z))
		}
		body = geom.Concat(section.Line(0, pp.OffsetHeight), geom.Profile{Points: lower}, geom.Profile{Points: upper})
	}

	band := section.Line(top, b.p.General.FloorHeight)
	if pp.IncludeSeparator && len(b.separator.Points) >= 2 {
		band = b.separator.Translate(0, top)
	}
	return geom.Concat(body, band)
}

// pillarSection stacks pillarFloor over every floor that has pillars.
func (b *builder) pillarSection() geom.Profile {
	g := b.p.General
	floor := b.pillarFloor()
	var parts []geom.Profile
	start := 1
	if b.p.Pillar.IncludeFirstFloor {
		parts = append(parts, section.Line(0, g.FirstFloorOffset))
		start = 0
	}
	for k := start; k < g.FloorCount; k++ {
		parts = append(parts, floor.Translate(0, g.FloorBase(k)))
	}
	return geom.Concat(parts...)
}

// pillarOutline is the plan outline the pillar section is swept along:
// out from the wall, across the front and back. Depth lands outside it.
func pillarOutline(pp Pillar) geom.Polyline {
	w, d, c := pp.Width/2, pp.Depth, pp.Chamfer
	pts := []geom.Point3{{X: 0, Y: w}}
	if c > 0 {
		pts = append(pts,
			geom.Point3{X: d - c, Y: w}, geom.Point3{X: d, Y: w - c},
			geom.Point3{X: d, Y: -w + c}, geom.Point3{X: d - c, Y: -w},
		)
	} else {
		pts = append(pts, geom.Point3{X: d, Y: w}, geom.Point3{X: d, Y: -w})
	}
	pts = append(pts, geom.Point3{X: 0, Y: -w})
	return geom.Polyline{Points: pts}
}

func (b *builder) pillars() (*kernel.Mesh, error) {
	if !b.p.Pillar.Enabled || len(b.plan.Pillars) == 0 {
		return nil, nil
	}
	profile := b.pillarSection()
	if len(profile.Points) < 2 {
		return nil, nil
	}
	pillar, err := sweep.Sweep(profile, pillarOutline(b.p.Pillar))
	if err != nil {
		return nil, err
	}
	out := kernel.NewMesh()
	for _, pl := range b.plan.Pillars {
		out.Append(place(pillar, pl, 0))
	}
	return out, nil
}

func (b *builder) windowUnder() (*kernel.Mesh, error) {
	if b.p.WindowUnder.Kind == UnderNone || b.p.Windows.VerticalOffset <= 0 || len(b.plan.Windows) == 0 {
		return nil, nil
	}
	panel, err := b.underPanel()
	if err != nil || panel == nil {
		return nil, err
	}
	out := kernel.NewMesh()
	for k := 0; k < b.p.General.FloorCount; k++ {
		z := b.p.General.FloorBase(k)
		for _, pl := range b.plan.Windows {
			out.Append(place(panel, pl, z))
		}
	}
	return out, nil
}

// underPanel builds one panel in the local frame, spanning the window
// width along Y and the sill height along Z.
func (b *builder) underPanel() (*kernel.Mesh, error) {
	u, w, h := b.p.WindowUnder, b.p.Windows.Width, b.p.Windows.VerticalOffset

	if u.Kind == UnderWall {
		face := section.Wall(b.p.Walls.Face, b.p.General.WallHeight()).ClipHeight(h)
		if len(face.Points) < 2 {
			return nil, nil
		}
		path := geom.Polyline{Points: []geom.Point3{{Y: w / 2}, {Y: -w / 2}}}
		return sweep.Sweep(face, path)
	}

	k := b.kernel
	if k == nil {
		return nil, fmt.Errorf("%s panels need a geometry kernel", u.Kind)
	}

	var solid kernel.Solid
	switch u.Kind {
	case UnderSimple:
		solid = k.Translate(k.Box(u.Depth, w, h), 0, -w/2, 0)
		iw, ih := w-2*u.FrameWidth, h-2*u.FrameHeight
		if u.InsetDepth > 0 && iw > 0 && ih > 0 {
			// The cutter runs past the front face so no sliver survives.
			inset := k.Translate(k.Box(u.InsetDepth+u.Depth, iw, ih), u.Depth-u.InsetDepth, -iw/2, u.FrameHeight)
			solid = k.Difference(solid, inset)
		}
	case UnderPillars:
		var err error
		if solid, err = b.balustrade(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown window-under kind %v", u.Kind)
	}
	return k.ToMesh(solid)
}

// balustrade is a bottom and top rail with turned balusters between.
func (b *builder) balustrade() (kernel.Solid, error) {
	k, u := b.kernel, b.p.WindowUnder
	w, h := b.p.Windows.Width, b.p.Windows.VerticalOffset
	depth := math.Max(u.Depth, u.BalusterBaseDiameter)

	rail := func(z float64) kernel.Solid {
		return k.Translate(k.Box(depth, w, u.FrameHeight), 0, -w/2, z)
	}
	solid := k.Union(rail(0), rail(h-u.FrameHeight))

	n := int(w / u.BalusterBaseDiameter)
	profile, ok := balusterProfile(u, h-2*u.FrameHeight)
	if n < 1 || !ok {
		return solid, nil
	}
	baluster, err := k.Revolve(profile)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		y := -w/2 + (float64(i)+0.5)*w/float64(n)
		solid = k.Union(solid, k.Translate(baluster, depth/2, y, u.FrameHeight))
	}
	return solid, nil
}

// balusterProfile is the half outline of a baluster of height h: a
// square base and cap with a bellied body between. ok is false when the
// bases leave no room for the body.
func balusterProfile(u WindowUnder, h float64) (geom.Profile, bool) {
	base := u.BalusterBaseHeight
	body := h - 2*base
	if body <= 0 {
		return geom.Profile{}, false
	}
	rb, rmin, rmax := u.BalusterBaseDiameter/2, u.BalusterMinDiameter/2, u.BalusterMaxDiameter/2
	return geom.Concat(geom.Profile{Points: []geom.Point3{
		geom.P(0, 0),
		geom.P(rb, 0),
		geom.P(rb, base),
		geom.P(rmin, base+0.15*body),
		geom.P(rmax, base+0.4*body),
		geom.P(rmin, base+0.85*body),
		geom.P(rb, h-base),
		geom.P(rb, h),
		geom.P(0, h),
	}}), true
}
