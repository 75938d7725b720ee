package section

import (
	"math"
	"testing"

	"github.com/chazu/facade/pkg/geom"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestGenerateIsNormalized(t *testing.T) {
	for _, preset := range []struct {
		name   string
		params Params
	}{
		{"horizontal separator", HorizontalSeparatorParams()},
		{"normalized", NormalizedParams()},
	} {
		t.Run(preset.name, func(t *testing.T) {
			for seed := uint64(0); seed < 200; seed++ {
				seq := Generate(preset.params, NewSource(seed))
				w, h := seq.Totals()
				if !scalar.EqualWithinAbs(w, 1, 1e-9) || !scalar.EqualWithinAbs(h, 1, 1e-9) {
					t.Fatalf("seed %d: totals = (%v, %v), want (1, 1)", seed, w, h)
				}
				for i, s := range seq {
					if s.Width <= 0 || s.Height <= 0 {
						t.Fatalf("seed %d: segment %d has non-positive size %+v", seed, i, s)
					}
				}
			}
		})
	}
}

func TestGenerateEndsAreSmallSquares(t *testing.T) {
	p := HorizontalSeparatorParams()
	for seed := uint64(0); seed < 100; seed++ {
		seq := Generate(p, NewSource(seed))
		if len(seq) < 3 {
			t.Fatalf("seed %d: %d segments, want at least 3", seed, len(seq))
		}
		for _, s := range []Segment{seq[0], seq[len(seq)-1]} {
			if s.Kind != Square {
				t.Errorf("seed %d: end segment kind = %v, want square", seed, s.Kind)
			}
			if s.Width < p.Small.Min || s.Width > p.Small.Max || s.Height < p.Small.Min || s.Height > p.Small.Max {
				t.Errorf("seed %d: end segment %+v outside small range", seed, s)
			}
		}
	}
}

func TestGenerateNeverDrawsLargeRounded(t *testing.T) {
	p := NormalizedParams()
	for seed := uint64(0); seed < 200; seed++ {
		for _, s := range Generate(p, NewSource(seed)) {
			if s.Kind == Rounded && s.Width > p.Medium.Max && s.Height > p.Medium.Max {
				t.Fatalf("seed %d: rounded segment %+v is larger than the medium class", seed, s)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(HorizontalSeparatorParams(), NewSource(42))
	b := Generate(HorizontalSeparatorParams(), NewSource(42))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different sequences (-a +b):\n%s", diff)
	}
	c := Generate(HorizontalSeparatorParams(), NewSource(43))
	if cmp.Equal(a, c) {
		t.Errorf("seeds 42 and 43 produced identical sequences")
	}
}

func TestParamsValidate(t *testing.T) {
	if err := HorizontalSeparatorParams().Validate(); err != nil {
		t.Errorf("HorizontalSeparatorParams().Validate() = %v", err)
	}
	bad := NormalizedParams()
	bad.SmallRoundLimit = 0.1
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted decreasing limits")
	}
	bad = NormalizedParams()
	bad.Small = SizeRange{Min: 0.3, Max: 0.6}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted end steps wider than the section")
	}
}

func TestRealizeSquares(t *testing.T) {
	seq := Sequence{
		{Kind: Square, Width: 0.5, Height: 0.25},
		{Kind: Square, Width: 0.5, Height: 0.75},
	}
	got := Realize(seq, 2, 4)
	want := []geom.Point3{
		geom.P(0, 0), geom.P(1, 0), geom.P(1, 1), geom.P(2, 1), geom.P(2, 4), geom.P(0, 4),
	}
	if diff := cmp.Diff(want, got.Points); diff != "" {
		t.Errorf("Realize() mismatch (-want +got):\n%s", diff)
	}
}

func TestRealizeRoundedArc(t *testing.T) {
	seq := Sequence{{Kind: Rounded, Width: 1, Height: 1}}
	got := Realize(seq, 1, 1)
	// Origin, ArcResolution arc points, and the return to the wall.
	if len(got.Points) != ArcResolution+2 {
		t.Fatalf("Realize() produced %d points, want %d", len(got.Points), ArcResolution+2)
	}
	for i, pt := range got.Points[1 : ArcResolution+1] {
		// Every arc point lies on the unit circle centred at (0, 1).
		r := math.Hypot(pt.Y, pt.Z-1)
		if !scalar.EqualWithinAbs(r, 1, 1e-12) {
			t.Errorf("arc point %d radius = %v, want 1", i, r)
		}
	}
	end := got.Points[ArcResolution]
	if !scalar.EqualWithinAbs(end.Y, 1, 1e-12) || !scalar.EqualWithinAbs(end.Z, 1, 1e-12) {
		t.Errorf("arc ends at %v, want (1, 1)", end)
	}
}

func TestRealizeSpansRequestedSize(t *testing.T) {
	seq := Generate(HorizontalSeparatorParams(), NewSource(7))
	p := Realize(seq, 0.3, 0.5)
	minD, maxD, minH, maxH := p.Bounds()
	if !scalar.EqualWithinAbs(minD, 0, 1e-12) || maxD > 0.3+1e-9 {
		t.Errorf("depth extent = [%v, %v], want within [0, 0.3]", minD, maxD)
	}
	if !scalar.EqualWithinAbs(minH, 0, 1e-12) || !scalar.EqualWithinAbs(maxH, 0.5, 1e-9) {
		t.Errorf("height extent = [%v, %v], want [0, 0.5]", minH, maxH)
	}
	last := p.Points[len(p.Points)-1]
	if last.Y != 0 {
		t.Errorf("profile should end on the wall plane, got %v", last)
	}
}

func TestWallSections(t *testing.T) {
	flat := Wall(WallSpec{Kind: WallFlat}, 3)
	if len(flat.Points) != 2 {
		t.Errorf("flat wall has %d points, want 2", len(flat.Points))
	}

	rows := Wall(WallSpec{Kind: WallRows, SectionSize: 0.05, MortarSize: 0.02, Rows: 3}, 3.04)
	// Origin, 2 points per block, 2 per joint, top.
	if want := 1 + 3*2 + 2*2 + 1; len(rows.Points) != want {
		t.Fatalf("rows wall has %d points, want %d", len(rows.Points), want)
	}
	_, maxD, _, maxH := rows.Bounds()
	if maxD != 0.05 || !scalar.EqualWithinAbs(maxH, 3.04, 1e-12) {
		t.Errorf("rows wall bounds depth %v height %v, want 0.05 and 3.04", maxD, maxH)
	}
	// Block faces are one metre tall.
	if h := rows.Points[2].Z - rows.Points[1].Z; !scalar.EqualWithinAbs(h, 1, 1e-12) {
		t.Errorf("block height = %v, want 1", h)
	}
}

func TestWallKindText(t *testing.T) {
	var k WallKind
	if err := k.UnmarshalText([]byte("rows")); err != nil || k != WallRows {
		t.Fatalf("UnmarshalText(rows) = %v, %v", k, err)
	}
	if err := k.UnmarshalText([]byte("brick")); err == nil {
		t.Error("UnmarshalText(brick) succeeded, want error")
	}
	b, err := WallFlat.MarshalText()
	if err != nil || string(b) != "flat" {
		t.Errorf("MarshalText() = %q, %v", b, err)
	}
}
