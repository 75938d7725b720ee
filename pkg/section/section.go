// Package section generates the stochastic cross-section profiles used
// for cornices, floor separators and pillar caps.
//
// A section is first described as a normalized Sequence of square and
// rounded steps whose widths and heights each sum to 1, then realized as
// a geom.Profile at a concrete width and height.
package section

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Kind is the shape of one step in a section.
type Kind int

const (
	// Square steps out in depth, then up.
	Square Kind = iota
	// Rounded sweeps a quarter ellipse from the step's bottom-left to its
	// top-right corner.
	Rounded
)

func (k Kind) String() string {
	switch k {
	case Square:
		return "square"
	case Rounded:
		return "rounded"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Segment is one normalized step.
type Segment struct {
	Kind   Kind    `json:"kind"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sequence is an ordered list of steps from the bottom of the section.
type Sequence []Segment

// Totals returns the summed widths and heights.
func (s Sequence) Totals() (width, height float64) {
	for _, seg := range s {
		width += seg.Width
		height += seg.Height
	}
	return width, height
}

// SizeRange bounds the size drawn for one size class.
type SizeRange struct {
	Min float64 `toml:"min" json:"min"`
	Max float64 `toml:"max" json:"max"`
}

// Params tunes the generator. The four limits partition [0,1) into
// small-square, small-rounded, medium-square, medium-rounded and, above
// MediumRoundLimit, large-square draws.
type Params struct {
	Small  SizeRange `toml:"small" json:"small"`
	Medium SizeRange `toml:"medium" json:"medium"`
	Large  SizeRange `toml:"large" json:"large"`

	SmallSquareLimit  float64 `toml:"small_square_limit" json:"smallSquareLimit"`
	SmallRoundLimit   float64 `toml:"small_round_limit" json:"smallRoundLimit"`
	MediumSquareLimit float64 `toml:"medium_square_limit" json:"mediumSquareLimit"`
	MediumRoundLimit  float64 `toml:"medium_round_limit" json:"mediumRoundLimit"`
}

// HorizontalSeparatorParams favours medium and large steps, giving the
// heavy cornices used between floors.
func HorizontalSeparatorParams() Params {
	return Params{
		Small:             SizeRange{Min: 0.05, Max: 0.1},
		Medium:            SizeRange{Min: 0.2, Max: 0.3},
		Large:             SizeRange{Min: 0.4, Max: 0.6},
		SmallSquareLimit:  0.55,
		SmallRoundLimit:   0.62,
		MediumSquareLimit: 0.69,
		MediumRoundLimit:  0.87,
	}
}

// NormalizedParams gives every class an equal share of the draw.
func NormalizedParams() Params {
	return Params{
		Small:             SizeRange{Min: 0.05, Max: 0.1},
		Medium:            SizeRange{Min: 0.2, Max: 0.3},
		Large:             SizeRange{Min: 0.4, Max: 0.6},
		SmallSquareLimit:  0.2,
		SmallRoundLimit:   0.4,
		MediumSquareLimit: 0.6,
		MediumRoundLimit:  0.8,
	}
}

// Validate reports parameters the generator cannot honour.
func (p Params) Validate() error {
	for _, r := range []struct {
		name string
		r    SizeRange
	}{{"small", p.Small}, {"medium", p.Medium}, {"large", p.Large}} {
		if r.r.Min <= 0 || r.r.Max < r.r.Min {
			return fmt.Errorf("section: %s range [%g, %g] is invalid", r.name, r.r.Min, r.r.Max)
		}
	}
	if 2*p.Small.Max >= 1 {
		return fmt.Errorf("section: small max %g leaves no room between the end steps", p.Small.Max)
	}
	limits := []float64{0, p.SmallSquareLimit, p.SmallRoundLimit, p.MediumSquareLimit, p.MediumRoundLimit, 1}
	for i := 1; i < len(limits); i++ {
		if limits[i] < limits[i-1] {
			return fmt.Errorf("section: class limits must be non-decreasing within [0, 1]")
		}
	}
	return nil
}

// RandomSource supplies uniformly distributed bits. It is satisfied by
// every math/rand/v2 Source.
type RandomSource interface {
	Uint64() uint64
}

// NewSource returns the deterministic PCG source used for a seed.
func NewSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Generate draws a normalized Sequence. The first and last steps are
// always small squares; the steps between are drawn by size class and
// the class bound shrinks as the remaining height runs out. A step whose
// class could overshoot either remaining dimension consumes the rest of
// both, so widths and heights each sum to exactly 1.
func Generate(p Params, src RandomSource) Sequence {
	uniform := func(min, max float64) float64 {
		return distuv.Uniform{Min: min, Max: max, Src: src}.Rand()
	}
	small := func() float64 { return uniform(p.Small.Min, p.Small.Max) }

	first := Segment{Kind: Square, Width: small(), Height: small()}
	last := Segment{Kind: Square, Width: small(), Height: small()}
	seq := Sequence{first, last}

	remW := 1 - first.Width - last.Width
	remH := 1 - first.Height - last.Height

	for remW > 0 && remH > 0 {
		bound := 1.0
		switch {
		case remH > p.Large.Min:
		case remH > p.Medium.Min:
			bound = p.MediumRoundLimit
		default:
			bound = p.SmallRoundLimit
		}
		draw := uniform(0, bound)

		var class SizeRange
		seg := Segment{Kind: Square}
		switch {
		case draw < p.SmallRoundLimit:
			class = p.Small
			if draw >= p.SmallSquareLimit {
				seg.Kind = Rounded
			}
		case draw < p.MediumRoundLimit:
			class = p.Medium
			if draw >= p.MediumSquareLimit {
				seg.Kind = Rounded
			}
		default:
			class = p.Large
		}

		if class.Max >= remH || class.Max >= remW {
			seg.Width, seg.Height = remW, remH
		} else {
			seg.Width = uniform(class.Min, class.Max)
			seg.Height = uniform(class.Min, class.Max)
		}
		remW -= seg.Width
		remH -= seg.Height

		// Insert before the closing step.
		seq = append(seq[:len(seq)-1], seg, last)
	}
	return seq
}
