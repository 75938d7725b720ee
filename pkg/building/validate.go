package building

import (
	"errors"
	"fmt"

	"github.com/chazu/facade/pkg/layout"
	"github.com/chazu/facade/pkg/section"
)

// ValidationError is a parameter problem that blocks generation.
type ValidationError struct {
	Field   string // dotted parameter path, e.g. "general.floor_height"
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("building: %s: %s", e.Field, e.Message)
}

// ValidationWarning is an advisory finding. Generation still runs, usually
// dropping the detail the warning names.
type ValidationWarning struct {
	Field   string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

type findings struct {
	errs     []ValidationError
	warnings []ValidationWarning
}

func (f *findings) errorf(field, format string, args ...any) {
	f.errs = append(f.errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (f *findings) warnf(field, format string, args ...any) {
	f.warnings = append(f.warnings, ValidationWarning{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks p and returns blocking errors and advisory warnings
// separately. It never mutates p.
func Validate(p Params) ([]ValidationError, []ValidationWarning) {
	var f findings
	validateGeneral(&f, p.General)
	validateWindows(&f, p)
	validatePillar(&f, p)
	validateWalls(&f, p)
	validateWindowUnder(&f, p)
	if err := p.Section.Validate(); err != nil {
		f.errorf("section", "%v", err)
	}
	return f.errs, f.warnings
}

// ValidationErrors joins errs into one error, or returns nil if there are
// none. Each joined error is a ValidationError.
func ValidationErrors(errs []ValidationError) error {
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return errors.Join(joined...)
}

func validateGeneral(f *findings, g General) {
	var fpErr *layout.InvalidParameterError
	if err := g.Footprint().Validate(); errors.As(err, &fpErr) {
		f.errorf("general."+fpErr.Param, "%s", fpErr.Reason)
	}
	if g.FloorCount < 1 {
		f.errorf("general.floor_count", "%d must be at least 1", g.FloorCount)
	}
	if g.FloorHeight <= 0 {
		f.errorf("general.floor_height", "%.4g must be positive", g.FloorHeight)
	}
	if g.FirstFloorOffset < 0 {
		f.errorf("general.first_floor_offset", "%.4g must not be negative", g.FirstFloorOffset)
	}
	if g.SeparatorHeight < 0 || g.SeparatorWidth < 0 {
		f.errorf("general.separator", "size %.4gx%.4g must not be negative", g.SeparatorWidth, g.SeparatorHeight)
	}
	if g.FloorHeight > 0 && g.SeparatorHeight >= g.FloorHeight {
		f.errorf("general.separator_height", "%.4g leaves no wall in a %.4g floor", g.SeparatorHeight, g.FloorHeight)
	}
	if (g.SeparatorHeight == 0) != (g.SeparatorWidth == 0) {
		f.warnf("general.separator", "size %.4gx%.4g is flat, separators are skipped", g.SeparatorWidth, g.SeparatorHeight)
	}
}

func validateWindows(f *findings, p Params) {
	w := p.Windows
	if w.Width <= 0 {
		f.errorf("windows.width", "%.4g must be positive", w.Width)
	}
	if w.Spacing <= 0 {
		f.errorf("windows.spacing", "%.4g must be positive", w.Spacing)
	}
	if w.Width > w.Spacing {
		f.errorf("windows.width", "%.4g exceeds the spacing %.4g", w.Width, w.Spacing)
	}
	if w.VerticalOffset < 0 {
		f.errorf("windows.vertical_offset", "%.4g must not be negative", w.VerticalOffset)
	}
	if w.VerticalOffset+w.Height > p.General.WallHeight() {
		f.warnf("windows.height", "window top at %.4g is above the wall height %.4g", w.VerticalOffset+w.Height, p.General.WallHeight())
	}

	if w.AllowBlankEdges || w.Spacing <= 0 {
		return
	}
	fp, err := layout.Footprint(p.General.Footprint())
	if err != nil {
		return
	}
	reserved := p.Layout().ReservedEnds()
	for i := 0; i < fp.SegmentCount(); i++ {
		a, b := fp.Segment(i)
		if l := b.Sub(a).Length(); l < reserved {
			f.errorf("windows.allow_blank_edges", "footprint edge %d is %.4g long but %.4g is reserved; allow blank edges or shrink the gaps", i, l, reserved)
			return
		}
	}
}

func validatePillar(f *findings, p Params) {
	pp := p.Pillar
	if !pp.Enabled {
		return
	}
	if pp.Width <= 0 || pp.Depth <= 0 {
		f.errorf("pillar", "size %.4gx%.4g must be positive", pp.Width, pp.Depth)
	}
	if pp.Chamfer < 0 || (pp.Chamfer > 0 && (2*pp.Chamfer >= pp.Width || pp.Chamfer >= pp.Depth)) {
		f.errorf("pillar.chamfer", "%.4g does not fit a %.4gx%.4g pillar", pp.Chamfer, pp.Width, pp.Depth)
	}
	if pp.OffsetSize < 0 || pp.OffsetHeight < 0 {
		f.errorf("pillar.offset", "height %.4g and size %.4g must not be negative", pp.OffsetHeight, pp.OffsetSize)
	}
	if pp.OffsetSize > 0 && pp.OffsetHeight+2*pp.OffsetSize >= p.General.WallHeight() {
		f.errorf("pillar.offset_height", "offset needs %.4g but the wall is %.4g high", pp.OffsetHeight+2*pp.OffsetSize, p.General.WallHeight())
	}
	if !pp.IncludeFirstFloor && p.General.FloorCount == 1 {
		f.warnf("pillar.include_first_floor", "a single floor building without first floor pillars has none")
	}
	if half := (p.Windows.Width + pp.Width) / 2; p.Windows.PillarGap < half {
		f.warnf("windows.pillar_gap", "%.4g is less than %.4g, pillars overlap the windows", p.Windows.PillarGap, half)
	}
}

func validateWalls(f *findings, p Params) {
	checkWall := func(field string, spec section.WallSpec, height float64) {
		if spec.Kind != section.WallRows {
			return
		}
		if spec.Rows < 1 {
			f.warnf(field+".rows", "%d rows, the wall is flat", spec.Rows)
			return
		}
		if spec.SectionSize < 0 || spec.MortarSize < 0 {
			f.errorf(field, "section %.4g and mortar %.4g must not be negative", spec.SectionSize, spec.MortarSize)
		}
		if float64(spec.Rows-1)*spec.MortarSize >= height {
			f.warnf(field+".mortar_size", "joints fill the %.4g wall, the wall is flat", height)
		}
	}
	checkWall("walls.face", p.Walls.Face, p.General.WallHeight())
	checkWall("walls.plinth", p.Walls.Plinth, p.General.FirstFloorOffset)
	if p.Walls.PlinthOffset < 0 {
		f.errorf("walls.plinth_offset", "%.4g must not be negative", p.Walls.PlinthOffset)
	}
}

func validateWindowUnder(f *findings, p Params) {
	u, w := p.WindowUnder, p.Windows
	if _, ok := underKindNames[u.Kind]; !ok {
		f.errorf("window_under.kind", "unknown kind %d", int(u.Kind))
		return
	}
	if u.Kind == UnderNone {
		return
	}
	if w.VerticalOffset <= 0 {
		f.warnf("window_under", "windows sit on the floor, no panels are built")
		return
	}
	if u.Kind == UnderWall {
		return
	}

	if u.Depth <= 0 {
		f.errorf("window_under.depth", "%.4g must be positive", u.Depth)
	}
	if u.FrameWidth < 0 || u.FrameHeight < 0 {
		f.errorf("window_under.frame", "size %.4gx%.4g must not be negative", u.FrameWidth, u.FrameHeight)
	}

	switch u.Kind {
	case UnderSimple:
		if u.InsetDepth < 0 || u.InsetDepth >= u.Depth {
			f.errorf("window_under.inset_depth", "%.4g must be within [0, %.4g)", u.InsetDepth, u.Depth)
		}
		if 2*u.FrameWidth >= w.Width || 2*u.FrameHeight >= w.VerticalOffset {
			f.warnf("window_under.frame", "frame fills the panel, no inset is cut")
		}
	case UnderPillars:
		if u.FrameHeight <= 0 {
			f.errorf("window_under.frame_height", "balusters need rails, %.4g must be positive", u.FrameHeight)
		}
		if u.BalusterBaseDiameter <= 0 || u.BalusterMinDiameter <= 0 || u.BalusterMaxDiameter <= 0 {
			f.errorf("window_under.baluster", "diameters must be positive")
			return
		}
		if u.BalusterMaxDiameter > u.BalusterBaseDiameter || u.BalusterMinDiameter > u.BalusterBaseDiameter {
			f.warnf("window_under.baluster", "body is wider than the %.4g base", u.BalusterBaseDiameter)
		}
		if int(w.Width/u.BalusterBaseDiameter) < 1 {
			f.warnf("window_under.baluster_base_diameter", "%.4g is wider than the window, no balusters fit", u.BalusterBaseDiameter)
		}
		if w.VerticalOffset-2*u.FrameHeight-2*u.BalusterBaseHeight <= 0 {
			f.warnf("window_under.frame_height", "rails and baluster bases leave no room for baluster bodies")
		}
	}
}
