package building

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/facade/pkg/geom"
	"github.com/chazu/facade/pkg/kernel/sdfx"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wallDesign is the default design with wall panels, which need no
// geometry kernel.
func wallDesign() Design {
	d := DefaultDesign()
	d.Params.WindowUnder.Kind = UnderWall
	return d
}

func partNames(r *Result) []string {
	var names []string
	for _, p := range r.Parts {
		names = append(names, p.Name)
	}
	return names
}

func TestGenerateDefaultParts(t *testing.T) {
	res, err := Generate(context.Background(), wallDesign(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{PartSeparators, PartWalls, PartPlinth, PartPillars, PartWindowUnder}, partNames(res))
	assert.Empty(t, res.Warnings)
	// 10 windows on each long edge and 6 on each short one.
	assert.Len(t, res.Layout.Windows, 32)
	assert.Len(t, res.Layout.Pillars, 64)
	for _, p := range res.Parts {
		assert.False(t, p.Mesh.IsEmpty(), p.Name)
	}
}

func TestGenerateSeparatorPlacement(t *testing.T) {
	d := wallDesign()
	res, err := Generate(context.Background(), d, nil)
	require.NoError(t, err)

	g := d.Params.General
	min, max := res.Part(PartSeparators).Mesh.BoundingBox()
	assert.InDelta(t, g.FloorBase(0)+g.WallHeight(), min.Z, 1e-9)
	assert.InDelta(t, g.FloorBase(g.FloorCount), max.Z, 1e-9)

	// Separators stand proud of the footprint by at most their width.
	assert.LessOrEqual(t, min.X, -g.Width/2)
	assert.GreaterOrEqual(t, min.X, -g.Width/2-g.SeparatorWidth-1e-9)
	assert.GreaterOrEqual(t, max.X, g.Width/2)
	assert.LessOrEqual(t, max.X, g.Width/2+g.SeparatorWidth+1e-9)
}

func TestGenerateWallsPerFloor(t *testing.T) {
	d := wallDesign()
	res, err := Generate(context.Background(), d, nil)
	require.NoError(t, err)

	g := d.Params.General
	walls := res.Part(PartWalls).Mesh
	min, max := walls.BoundingBox()
	assert.InDelta(t, g.FirstFloorOffset, min.Z, 1e-9)
	assert.InDelta(t, g.FloorBase(g.FloorCount-1)+g.WallHeight(), max.Z, 1e-9)
	assert.Zero(t, walls.VertexCount()%g.FloorCount)

	under := res.Part(PartWindowUnder).Mesh
	_, max = under.BoundingBox()
	assert.InDelta(t, g.FloorBase(g.FloorCount-1)+d.Params.Windows.VerticalOffset, max.Z, 1e-9)
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(context.Background(), wallDesign(), nil)
	require.NoError(t, err)
	b, err := Generate(context.Background(), wallDesign(), nil)
	require.NoError(t, err)
	for i := range a.Parts {
		if diff := cmp.Diff(a.Parts[i].Mesh, b.Parts[i].Mesh); diff != "" {
			t.Errorf("%s differs between runs (-a +b):\n%s", a.Parts[i].Name, diff)
		}
	}

	other := wallDesign()
	other.Seed = 2
	c, err := Generate(context.Background(), other, nil)
	require.NoError(t, err)
	assert.False(t, cmp.Equal(a.Part(PartSeparators).Mesh, c.Part(PartSeparators).Mesh), "seeds 1 and 2 built the same separators")
}

func TestGenerateOptionalParts(t *testing.T) {
	d := wallDesign()
	d.Params.General.FirstFloorOffset = 0
	d.Params.Pillar.Enabled = false
	d.Params.WindowUnder.Kind = UnderNone
	d.Params.General.SeparatorHeight = 0
	d.Params.General.SeparatorWidth = 0

	res, err := Generate(context.Background(), d, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{PartWalls}, partNames(res))
	assert.Nil(t, res.Part(PartPillars))
}

func TestGenerateRejectsInvalidParams(t *testing.T) {
	d := wallDesign()
	d.Params.General.FloorCount = 0
	d.Params.Windows.Width = 3

	_, err := Generate(context.Background(), d, nil)
	require.Error(t, err)
	var ve ValidationError
	require.True(t, errors.As(err, &ve), "error = %v", err)
	assert.Contains(t, err.Error(), "general.floor_count")
	assert.Contains(t, err.Error(), "windows.width")
}

func TestGenerateNeedsKernelForSolids(t *testing.T) {
	_, err := Generate(context.Background(), DefaultDesign(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), PartWindowUnder)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, wallDesign(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateSolidPanels(t *testing.T) {
	for _, kind := range []UnderKind{UnderSimple, UnderPillars} {
		t.Run(kind.String(), func(t *testing.T) {
			d := DefaultDesign()
			d.Params.General.FloorCount = 1
			d.Params.WindowUnder.Kind = kind

			res, err := Generate(context.Background(), d, sdfx.NewWithCells(24))
			require.NoError(t, err)
			under := res.Part(PartWindowUnder)
			require.NotNil(t, under)
			assert.Zero(t, under.Mesh.VertexCount()%len(res.Layout.Windows))

			min, max := under.Mesh.BoundingBox()
			g := d.Params.General
			// Marching cubes only approximates the faces.
			tol := 0.1
			assert.InDelta(t, g.FirstFloorOffset, min.Z, tol)
			assert.InDelta(t, g.FirstFloorOffset+d.Params.Windows.VerticalOffset, max.Z, tol)
		})
	}
}

func TestPillarSection(t *testing.T) {
	p := DefaultParams()
	b := &builder{p: p}
	b.offset = testOffset(p.Pillar.OffsetSize)
	g := p.General

	for _, first := range []bool{true, false} {
		b.p.Pillar.IncludeFirstFloor = first
		prof := b.pillarSection()
		require.GreaterOrEqual(t, len(prof.Points), 2)

		_, maxD, minH, maxH := prof.Bounds()
		wantMin := 0.0
		if !first {
			wantMin = g.FloorBase(1)
		}
		assert.InDelta(t, wantMin, minH, 1e-9)
		assert.InDelta(t, g.FloorBase(g.FloorCount), maxH, 1e-9)
		assert.InDelta(t, p.Pillar.OffsetSize, maxD, 1e-9)

		for i := 1; i < len(prof.Points); i++ {
			assert.GreaterOrEqual(t, prof.Points[i].Z, prof.Points[i-1].Z, "point %d descends", i)
		}
	}
}

// testOffset is a single square step of the given size.
func testOffset(size float64) geom.Profile {
	return geom.Profile{Points: []geom.Point3{geom.P(0, 0), geom.P(size, 0), geom.P(size, size)}}
}

func TestPillarOutline(t *testing.T) {
	pp := DefaultParams().Pillar
	assert.Len(t, pillarOutline(pp).Points, 6)
	pp.Chamfer = 0
	out := pillarOutline(pp)
	require.Len(t, out.Points, 4)
	assert.InDelta(t, 2*pp.Depth+pp.Width, out.Length(), 1e-12)
}

func TestValidateDefaults(t *testing.T) {
	errs, warnings := Validate(DefaultParams())
	assert.Empty(t, errs)
	assert.Empty(t, warnings)
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		field   string
		warning bool
	}{
		{"floor count", func(p *Params) { p.General.FloorCount = 0 }, "general.floor_count", false},
		{"separator fills floor", func(p *Params) { p.General.SeparatorHeight = 3 }, "general.separator_height", false},
		{"flat separator", func(p *Params) { p.General.SeparatorWidth = 0 }, "general.separator", true},
		{"chamfer too big", func(p *Params) { p.General.Chamfer = 10 }, "general.chamfer", false},
		{"short edges", func(p *Params) { p.General.Chamfer = 1 }, "windows.allow_blank_edges", false},
		{"window above wall", func(p *Params) { p.Windows.Height = 2 }, "windows.height", true},
		{"pillar chamfer", func(p *Params) { p.Pillar.Chamfer = 0.15 }, "pillar.chamfer", false},
		{"pillar offset", func(p *Params) { p.Pillar.OffsetHeight = 2.45 }, "pillar.offset_height", false},
		{"pillar gap", func(p *Params) { p.Windows.PillarGap = 0.5 }, "windows.pillar_gap", true},
		{"plinth offset", func(p *Params) { p.Walls.PlinthOffset = -1 }, "walls.plinth_offset", false},
		{"rows without rows", func(p *Params) { p.Walls.Face.Kind = 1 }, "walls.face.rows", true},
		{"inset too deep", func(p *Params) { p.WindowUnder.InsetDepth = 0.05 }, "window_under.inset_depth", false},
		{"frame fills panel", func(p *Params) { p.WindowUnder.FrameWidth = 0.6 }, "window_under.frame", true},
		{"unknown kind", func(p *Params) { p.WindowUnder.Kind = 9 }, "window_under.kind", false},
		{"no rails", func(p *Params) {
			p.WindowUnder.Kind = UnderPillars
			p.WindowUnder.FrameHeight = 0
		}, "window_under.frame_height", false},
		{"section limits", func(p *Params) { p.Section.SmallRoundLimit = 0.1 }, "section", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			errs, warnings := Validate(p)

			var fields []string
			if tt.warning {
				for _, w := range warnings {
					fields = append(fields, w.Field)
				}
			} else {
				for _, e := range errs {
					fields = append(fields, e.Field)
				}
			}
			assert.Contains(t, fields, tt.field, "errors %v warnings %v", errs, warnings)
		})
	}
}

func TestUnderKindText(t *testing.T) {
	for _, kind := range []UnderKind{UnderNone, UnderWall, UnderSimple, UnderPillars} {
		b, err := kind.MarshalText()
		require.NoError(t, err)
		var got UnderKind
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, kind, got)
	}
	_, err := ParseUnderKind("sine")
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(UnderKind(7).String(), "UnderKind("))
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry()
	assert.Zero(t, r.Len())

	first := r.Replace([]Part{{Name: PartWalls}, {Name: PartPillars}})
	require.Len(t, first, 2)
	assert.Equal(t, []string{PartPillars, PartWalls}, r.Keys())

	second := r.Replace([]Part{{Name: PartWalls}})
	assert.Equal(t, 1, r.Len())
	h, ok := r.Get(PartWalls)
	require.True(t, ok)
	assert.Equal(t, second[0].ID, h.ID)
	assert.NotEqual(t, first[0].ID, h.ID)

	_, ok = r.Get(PartPillars)
	assert.False(t, ok, "replaced result kept a stale part")
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Replace([]Part{{Name: PartWalls}})
		}()
		go func() {
			defer wg.Done()
			r.Get(PartWalls)
			r.Keys()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, r.Len())
}
