package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/facade/pkg/building"
	"github.com/chazu/facade/pkg/section"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builtin is the signature zygomys expects for Go functions.
type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// keyword reports the name of a preprocessed :keyword argument.
func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return strings.TrimPrefix(str.S, kwPrefix), true
}

// formArgs is the argument list of a form, split into keyword values and
// the positional arguments around them.
type formArgs struct {
	named      map[string]zygo.Sexp
	positional []zygo.Sexp
}

func splitArgs(args []zygo.Sexp) formArgs {
	fa := formArgs{named: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := keyword(args[i])
		if !ok {
			fa.positional = append(fa.positional, args[i])
			continue
		}
		// A trailing keyword reads as null.
		var v zygo.Sexp = zygo.SexpNull
		if i+1 < len(args) {
			i++
			v = args[i]
		}
		fa.named[name] = v
	}
	return fa
}

func typeError(want string, s zygo.Sexp) error {
	return fmt.Errorf("expected %s, got %T (%s)", want, s, s.SexpString(nil))
}

func asFloat(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpInt:
		return float64(v.Val), nil
	}
	return 0, typeError("number", s)
}

// asInt accepts integral floats too, so (floors :count 3.0) works.
func asInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if n := int(v.Val); float64(n) == v.Val {
			return n, nil
		}
	}
	return 0, typeError("integer", s)
}

func asBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, typeError("true or false", s)
}

func asString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", typeError("string", s)
}

// asName reads an enumerated value written either as :kind or "kind".
func asName(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", typeError("keyword or string", s)
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func asList(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	}
	if s == zygo.SexpNull {
		return nil, nil
	}
	return nil, typeError("list or array", s)
}

func asWall(s zygo.Sexp) (section.WallSpec, error) {
	if w, ok := s.(*sexpWall); ok {
		return w.spec, nil
	}
	return section.WallSpec{}, typeError("wall", s)
}

func asWallKind(s zygo.Sexp) (section.WallKind, error) {
	name, err := asName(s)
	if err != nil {
		return 0, err
	}
	return section.ParseWallKind(name)
}

func asUnderKind(s zygo.Sexp) (building.UnderKind, error) {
	name, err := asName(s)
	if err != nil {
		return 0, err
	}
	return building.ParseUnderKind(name)
}

func asPreset(s zygo.Sexp) (section.Params, error) {
	name, err := asName(s)
	if err != nil {
		return section.Params{}, err
	}
	switch name {
	case "separator":
		return section.HorizontalSeparatorParams(), nil
	case "normalized":
		return section.NormalizedParams(), nil
	}
	return section.Params{}, fmt.Errorf("unknown preset %q, expected separator or normalized", name)
}

// Values the DSL hands back to scripts. zygomys only needs them to print.

// sexpPatch is a parameter change produced by a section form such as
// (floors ...), applied to a design by (building ...).
type sexpPatch struct {
	form  string
	apply func(d *building.Design) error
}

func (p *sexpPatch) SexpString(*zygo.PrintState) string {
	return "(" + p.form + " ...)"
}
func (p *sexpPatch) Type() *zygo.RegisteredType { return nil }

type sexpWall struct {
	spec section.WallSpec
}

func (w *sexpWall) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(wall :kind :%s :rows %d)", w.spec.Kind, w.spec.Rows)
}
func (w *sexpWall) Type() *zygo.RegisteredType { return nil }

type sexpDesign struct {
	name string
}

func (d *sexpDesign) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(building %q)", d.name)
}
func (d *sexpDesign) Type() *zygo.RegisteredType { return nil }

// field binds one keyword of a form to a location in a T.
type field[T any] struct {
	kw  string
	set func(t *T, v zygo.Sexp) error
}

func bind[T, V any](kw string, conv func(zygo.Sexp) (V, error), at func(t *T) *V) field[T] {
	return field[T]{kw: kw, set: func(t *T, v zygo.Sexp) error {
		x, err := conv(v)
		if err != nil {
			return err
		}
		*at(t) = x
		return nil
	}}
}

// check rejects positional arguments and keywords the form does not know.
func check[T any](form string, fa formArgs, fields []field[T]) error {
	if len(fa.positional) > 0 {
		return fmt.Errorf("%s: unexpected argument %s, expected keywords", form, fa.positional[0].SexpString(nil))
	}
	for kw := range fa.named {
		known := false
		for _, f := range fields {
			if f.kw == kw {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%s: unknown keyword :%s", form, kw)
		}
	}
	return nil
}

// assign sets every field given in named, in table order.
func assign[T any](form string, named map[string]zygo.Sexp, fields []field[T], t *T) error {
	for _, f := range fields {
		v, ok := named[f.kw]
		if !ok {
			continue
		}
		if err := f.set(t, v); err != nil {
			return fmt.Errorf("%s: %s: %w", form, f.kw, err)
		}
	}
	return nil
}

// patchForm returns the builtin for a section form. Arguments are checked
// against a scratch design when the form is evaluated, so a bad value is
// reported where it is written rather than where the style is used.
func patchForm(form string, fields []field[building.Design]) builtin {
	return func(_ *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		fa := splitArgs(args)
		if err := check(form, fa, fields); err != nil {
			return zygo.SexpNull, err
		}
		apply := func(d *building.Design) error { return assign(form, fa.named, fields, d) }
		scratch := building.DefaultDesign()
		if err := apply(&scratch); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPatch{form: form, apply: apply}, nil
	}
}

type designField = field[building.Design]

func num(kw string, at func(p *building.Params) *float64) designField {
	return bind(kw, asFloat, func(d *building.Design) *float64 { return at(&d.Params) })
}

func flag(kw string, at func(p *building.Params) *bool) designField {
	return bind(kw, asBool, func(d *building.Design) *bool { return at(&d.Params) })
}

func wall(kw string, at func(p *building.Params) *section.WallSpec) designField {
	return bind(kw, asWall, func(d *building.Design) *section.WallSpec { return at(&d.Params) })
}

var (
	// (footprint :width 25 :depth 15 :chamfer 0.5 :wedge-width 4 :wedge-depth 1)
	footprintFields = []designField{
		num("width", func(p *building.Params) *float64 { return &p.General.Width }),
		num("depth", func(p *building.Params) *float64 { return &p.General.Depth }),
		num("chamfer", func(p *building.Params) *float64 { return &p.General.Chamfer }),
		num("wedge-width", func(p *building.Params) *float64 { return &p.General.WedgeWidth }),
		num("wedge-depth", func(p *building.Params) *float64 { return &p.General.WedgeDepth }),
	}

	// (floors :count 3 :height 3 :first-offset 0.7 :separator-height 0.5 :separator-width 0.5)
	floorsFields = []designField{
		bind("count", asInt, func(d *building.Design) *int { return &d.Params.General.FloorCount }),
		num("height", func(p *building.Params) *float64 { return &p.General.FloorHeight }),
		num("first-offset", func(p *building.Params) *float64 { return &p.General.FirstFloorOffset }),
		num("separator-height", func(p *building.Params) *float64 { return &p.General.SeparatorHeight }),
		num("separator-width", func(p *building.Params) *float64 { return &p.General.SeparatorWidth }),
	}

	windowsFields = []designField{
		num("width", func(p *building.Params) *float64 { return &p.Windows.Width }),
		num("spacing", func(p *building.Params) *float64 { return &p.Windows.Spacing }),
		num("height", func(p *building.Params) *float64 { return &p.Windows.Height }),
		num("vertical-offset", func(p *building.Params) *float64 { return &p.Windows.VerticalOffset }),
		num("pillar-gap", func(p *building.Params) *float64 { return &p.Windows.PillarGap }),
		flag("allow-blank-edges", func(p *building.Params) *bool { return &p.Windows.AllowBlankEdges }),
	}

	pillarsFields = []designField{
		flag("enabled", func(p *building.Params) *bool { return &p.Pillar.Enabled }),
		num("width", func(p *building.Params) *float64 { return &p.Pillar.Width }),
		num("depth", func(p *building.Params) *float64 { return &p.Pillar.Depth }),
		num("chamfer", func(p *building.Params) *float64 { return &p.Pillar.Chamfer }),
		num("offset-height", func(p *building.Params) *float64 { return &p.Pillar.OffsetHeight }),
		num("offset-size", func(p *building.Params) *float64 { return &p.Pillar.OffsetSize }),
		flag("include-separator", func(p *building.Params) *bool { return &p.Pillar.IncludeSeparator }),
		flag("include-first-floor", func(p *building.Params) *bool { return &p.Pillar.IncludeFirstFloor }),
	}

	// (walls :face (wall ...) :plinth (wall ...) :plinth-offset 0.1)
	wallsFields = []designField{
		wall("face", func(p *building.Params) *section.WallSpec { return &p.Walls.Face }),
		wall("plinth", func(p *building.Params) *section.WallSpec { return &p.Walls.Plinth }),
		num("plinth-offset", func(p *building.Params) *float64 { return &p.Walls.PlinthOffset }),
	}

	underFields = []designField{
		bind("kind", asUnderKind, func(d *building.Design) *building.UnderKind { return &d.Params.WindowUnder.Kind }),
		num("frame-width", func(p *building.Params) *float64 { return &p.WindowUnder.FrameWidth }),
		num("frame-height", func(p *building.Params) *float64 { return &p.WindowUnder.FrameHeight }),
		num("depth", func(p *building.Params) *float64 { return &p.WindowUnder.Depth }),
		num("inset-depth", func(p *building.Params) *float64 { return &p.WindowUnder.InsetDepth }),
		num("baluster-base-diameter", func(p *building.Params) *float64 { return &p.WindowUnder.BalusterBaseDiameter }),
		num("baluster-base-height", func(p *building.Params) *float64 { return &p.WindowUnder.BalusterBaseHeight }),
		num("baluster-min-diameter", func(p *building.Params) *float64 { return &p.WindowUnder.BalusterMinDiameter }),
		num("baluster-max-diameter", func(p *building.Params) *float64 { return &p.WindowUnder.BalusterMaxDiameter }),
	}

	// (section :preset :normalized)
	sectionFields = []designField{
		bind("preset", asPreset, func(d *building.Design) *section.Params { return &d.Params.Section }),
	}

	// (wall :kind :rows :rows 3 :section-size 0.05 :mortar-size 0.02)
	wallFields = []field[section.WallSpec]{
		bind("kind", asWallKind, func(w *section.WallSpec) *section.WallKind { return &w.Kind }),
		bind("rows", asInt, func(w *section.WallSpec) *int { return &w.Rows }),
		bind("section-size", asFloat, func(w *section.WallSpec) *float64 { return &w.SectionSize }),
		bind("mortar-size", asFloat, func(w *section.WallSpec) *float64 { return &w.MortarSize }),
	}
)

// registerBuiltins installs the building DSL into env. Each evaluated
// (building ...) form appends its design to designs.
//
// The source must go through preprocessSource first. zygomys names cannot
// hold hyphens, so window-under is registered as window_under.
func registerBuiltins(env *zygo.Zlisp, designs *[]building.Design) {
	env.AddFunction("footprint", patchForm("footprint", footprintFields))
	env.AddFunction("floors", patchForm("floors", floorsFields))
	env.AddFunction("windows", patchForm("windows", windowsFields))
	env.AddFunction("pillars", patchForm("pillars", pillarsFields))
	env.AddFunction("walls", patchForm("walls", wallsFields))
	env.AddFunction("window_under", patchForm("window-under", underFields))
	env.AddFunction("section", patchForm("section", sectionFields))
	env.AddFunction("wall", wallForm)
	env.AddFunction("seed", seedForm)
	env.AddFunction("building", buildingForm(designs))
}

func wallForm(_ *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
	fa := splitArgs(args)
	if err := check("wall", fa, wallFields); err != nil {
		return zygo.SexpNull, err
	}
	var spec section.WallSpec
	if err := assign("wall", fa.named, wallFields, &spec); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpWall{spec: spec}, nil
}

// (seed 42)
func seedForm(_ *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("seed requires exactly 1 argument, got %d", len(args))
	}
	n, err := asInt(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("seed: %w", err)
	}
	if n < 0 {
		return zygo.SexpNull, fmt.Errorf("seed: %d must not be negative", n)
	}
	return &sexpPatch{form: "seed", apply: func(d *building.Design) error {
		d.Seed = uint64(n)
		return nil
	}}, nil
}

// buildingForm implements (building "name" (footprint ...) (floors ...) ...).
// Section forms may also arrive inside lists, so a shared style can be
// bound once with def and reused.
func buildingForm(designs *[]building.Design) builtin {
	return func(_ *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("building requires a name argument")
		}
		name, err := asString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("building: name: %w", err)
		}
		if name == "" {
			return zygo.SexpNull, fmt.Errorf("building: name must not be empty")
		}
		for _, d := range *designs {
			if d.Name == name {
				return zygo.SexpNull, fmt.Errorf("building: duplicate name %q", name)
			}
		}

		d := building.DefaultDesign()
		d.Name = name

		var apply func(pos int, arg zygo.Sexp) error
		apply = func(pos int, arg zygo.Sexp) error {
			if p, ok := arg.(*sexpPatch); ok {
				return p.apply(&d)
			}
			switch arg.(type) {
			case *zygo.SexpPair, *zygo.SexpArray:
				items, err := asList(arg)
				if err != nil {
					return err
				}
				for _, item := range items {
					if err := apply(pos, item); err != nil {
						return err
					}
				}
				return nil
			}
			return fmt.Errorf("building %q: argument %d: expected a section form such as (floors ...), got %T (%s)",
				name, pos, arg, arg.SexpString(nil))
		}
		for pos, arg := range args[1:] {
			if err := apply(pos+1, arg); err != nil {
				return zygo.SexpNull, err
			}
		}

		*designs = append(*designs, d)
		return &sexpDesign{name: name}, nil
	}
}
