// Package building turns a parameter set into the meshes of a procedural
// building facade: floor separators, walls, a plinth, pillars and the
// panels under the windows.
package building

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/chazu/facade/pkg/geom"
	"github.com/chazu/facade/pkg/kernel"
	"github.com/chazu/facade/pkg/layout"
	"github.com/chazu/facade/pkg/section"
	"golang.org/x/sync/errgroup"
)

// Part is one named mesh of a generated building.
type Part struct {
	Name string
	Mesh *kernel.Mesh
}

// Result is a generated building.
type Result struct {
	Design    Design
	Footprint geom.Polyline
	Layout    *layout.Result
	Warnings  []ValidationWarning
	Parts     []Part
}

// Part returns the named part, or nil if it was not generated.
func (r *Result) Part(name string) *Part {
	for i := range r.Parts {
		if r.Parts[i].Name == name {
			return &r.Parts[i]
		}
	}
	return nil
}

// Generate builds every part of d. Parts that the parameters switch off,
// or that come out empty, are left out of the result. k builds the
// window-under panels that need solid modelling and may be nil when
// WindowUnder.Kind is none or wall.
//
// Generation is deterministic for a given design: every random draw
// happens before the part builders fan out. Progress is logged at debug
// level to the logger carried by ctx.
func Generate(ctx context.Context, d Design, k kernel.Kernel) (*Result, error) {
	logger := log.FromContext(ctx).With("building", d.Name)
	p := d.Params

	errs, warnings := Validate(p)
	for _, w := range warnings {
		logger.Warn(w.Message, "param", w.Field)
	}
	if len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	footprint, err := layout.Footprint(p.General.Footprint())
	if err != nil {
		return nil, fmt.Errorf("building: footprint: %w", err)
	}
	plan, err := layout.Plan(footprint, p.Layout())
	if err != nil {
		return nil, fmt.Errorf("building: layout: %w", err)
	}
	logger.Debug("planned layout", "windows", len(plan.Windows), "pillars", len(plan.Pillars), "wall loops", len(plan.WallLoops))

	b := &builder{p: p, kernel: k, footprint: footprint, plan: plan}
	src := section.NewSource(d.Seed)
	if g := p.General; g.SeparatorHeight > 0 && g.SeparatorWidth > 0 {
		b.separator = section.Realize(section.Generate(p.Section, src), g.SeparatorWidth, g.SeparatorHeight)
	}
	if off := p.Pillar.OffsetSize; p.Pillar.Enabled && off > 0 {
		step := section.Realize(section.Generate(section.HorizontalSeparatorParams(), src), off, off)
		// Drop the return to the wall plane.
		b.offset = geom.Profile{Points: step.Points[:len(step.Points)-1]}
	}

	builders := []struct {
		name  string
		build func() (*kernel.Mesh, error)
	}{
		{PartSeparators, b.separators},
		{PartWalls, b.walls},
		{PartPlinth, b.plinth},
		{PartPillars, b.pillars},
		{PartWindowUnder, b.windowUnder},
	}

	meshes := make([]*kernel.Mesh, len(builders))
	g, gctx := errgroup.WithContext(ctx)
	for i, pb := range builders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := pb.build()
			if err != nil {
				return fmt.Errorf("building: %s: %w", pb.name, err)
			}
			if m == nil || m.IsEmpty() {
				logger.Debug("skipped part", "part", pb.name)
				return nil
			}
			logger.Debug("built part", "part", pb.name, "vertices", m.VertexCount(), "faces", m.FaceCount())
			meshes[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Design: d, Footprint: footprint, Layout: plan, Warnings: warnings}
	for i, m := range meshes {
		if m != nil {
			res.Parts = append(res.Parts, Part{Name: builders[i].name, Mesh: m})
		}
	}
	return res, nil
}
