package building

import (
	"fmt"

	"github.com/chazu/facade/pkg/layout"
	"github.com/chazu/facade/pkg/section"
)

// General holds the overall building dimensions.
type General struct {
	Width      float64 `toml:"width" json:"width"`
	Depth      float64 `toml:"depth" json:"depth"`
	Chamfer    float64 `toml:"chamfer" json:"chamfer"`
	WedgeWidth float64 `toml:"wedge_width" json:"wedgeWidth"`
	WedgeDepth float64 `toml:"wedge_depth" json:"wedgeDepth"`

	FloorCount       int     `toml:"floor_count" json:"floorCount"`
	FloorHeight      float64 `toml:"floor_height" json:"floorHeight"`
	FirstFloorOffset float64 `toml:"first_floor_offset" json:"firstFloorOffset"` // plinth height below the first floor
	SeparatorHeight  float64 `toml:"separator_height" json:"separatorHeight"`
	SeparatorWidth   float64 `toml:"separator_width" json:"separatorWidth"`
}

// Footprint returns the footprint parameters of g.
func (g General) Footprint() layout.FootprintParams {
	return layout.FootprintParams{
		Width:      g.Width,
		Depth:      g.Depth,
		Chamfer:    g.Chamfer,
		WedgeWidth: g.WedgeWidth,
		WedgeDepth: g.WedgeDepth,
	}
}

// FloorBase returns the height of floor k's base.
func (g General) FloorBase(k int) float64 {
	return g.FirstFloorOffset + float64(k)*g.FloorHeight
}

// WallHeight is the wall height of one floor, below its separator.
func (g General) WallHeight() float64 {
	return g.FloorHeight - g.SeparatorHeight
}

// Windows controls window placement.
type Windows struct {
	Width   float64 `toml:"width" json:"width"`
	Spacing float64 `toml:"spacing" json:"spacing"`
	Height  float64 `toml:"height" json:"height"`
	// VerticalOffset is the sill height above the floor base; the
	// window-under panel fills it.
	VerticalOffset  float64 `toml:"vertical_offset" json:"verticalOffset"`
	PillarGap       float64 `toml:"pillar_gap" json:"pillarGap"`
	AllowBlankEdges bool    `toml:"allow_blank_edges" json:"allowBlankEdges"`
}

// Pillar describes the pilasters flanking windows.
type Pillar struct {
	Enabled           bool    `toml:"enabled" json:"enabled"`
	Width             float64 `toml:"width" json:"width"`
	Depth             float64 `toml:"depth" json:"depth"`
	Chamfer           float64 `toml:"chamfer" json:"chamfer"`
	OffsetHeight      float64 `toml:"offset_height" json:"offsetHeight"`
	OffsetSize        float64 `toml:"offset_size" json:"offsetSize"`
	IncludeSeparator  bool    `toml:"include_separator" json:"includeSeparator"`
	IncludeFirstFloor bool    `toml:"include_first_floor" json:"includeFirstFloor"`
}

// Walls describes the wall faces and the plinth below the first floor.
type Walls struct {
	Face         section.WallSpec `toml:"face" json:"face"`
	Plinth       section.WallSpec `toml:"plinth" json:"plinth"`
	PlinthOffset float64          `toml:"plinth_offset" json:"plinthOffset"` // how far the plinth stands proud of the wall
}

// UnderKind selects the panel built under each window.
type UnderKind int

const (
	UnderNone UnderKind = iota
	UnderWall
	UnderSimple
	UnderPillars
)

var underKindNames = map[UnderKind]string{
	UnderNone:    "none",
	UnderWall:    "wall",
	UnderSimple:  "simple",
	UnderPillars: "pillars",
}

func (k UnderKind) String() string {
	if s, ok := underKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("UnderKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k UnderKind) MarshalText() ([]byte, error) {
	if s, ok := underKindNames[k]; ok {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("building: unknown window-under kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *UnderKind) UnmarshalText(b []byte) error {
	kind, err := ParseUnderKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseUnderKind maps a name to its UnderKind.
func ParseUnderKind(s string) (UnderKind, error) {
	for k, name := range underKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("building: unknown window-under kind %q, expected none, wall, simple or pillars", s)
}

// WindowUnder sizes the panel under each window.
type WindowUnder struct {
	Kind        UnderKind `toml:"kind" json:"kind"`
	FrameWidth  float64   `toml:"frame_width" json:"frameWidth"`   // side border of simple panels
	FrameHeight float64   `toml:"frame_height" json:"frameHeight"` // top and bottom border, rail height for balusters
	Depth       float64   `toml:"depth" json:"depth"`
	InsetDepth  float64   `toml:"inset_depth" json:"insetDepth"`

	BalusterBaseDiameter float64 `toml:"baluster_base_diameter" json:"balusterBaseDiameter"`
	BalusterBaseHeight   float64 `toml:"baluster_base_height" json:"balusterBaseHeight"`
	BalusterMinDiameter  float64 `toml:"baluster_min_diameter" json:"balusterMinDiameter"`
	BalusterMaxDiameter  float64 `toml:"baluster_max_diameter" json:"balusterMaxDiameter"`
}

// Params is the full parameter set of one building.
type Params struct {
	General     General        `toml:"general" json:"general"`
	Windows     Windows        `toml:"windows" json:"windows"`
	Pillar      Pillar         `toml:"pillar" json:"pillar"`
	Walls       Walls          `toml:"walls" json:"walls"`
	WindowUnder WindowUnder    `toml:"window_under" json:"windowUnder"`
	Section     section.Params `toml:"section" json:"section"`
}

// Layout returns the layout planner parameters of p.
func (p Params) Layout() layout.Params {
	return layout.Params{
		WindowWidth:     p.Windows.Width,
		WindowSpacing:   p.Windows.Spacing,
		GeneratePillars: p.Pillar.Enabled,
		PillarWidth:     p.Pillar.Width,
		WindowPillarGap: p.Windows.PillarGap,
		AllowBlankEdges: p.Windows.AllowBlankEdges,
	}
}

// Design is a named, seeded building.
type Design struct {
	Name   string `toml:"name" json:"name"`
	Seed   uint64 `toml:"seed" json:"seed"`
	Params Params `toml:"params" json:"params"`
}

// DefaultParams returns a three storey, 25x15 block with pillars and
// simple panels under the windows.
func DefaultParams() Params {
	return Params{
		General: General{
			Width:            25,
			Depth:            15,
			FloorCount:       3,
			FloorHeight:      3,
			FirstFloorOffset: 0.7,
			SeparatorHeight:  0.5,
			SeparatorWidth:   0.5,
		},
		Windows: Windows{
			Width:          1.2,
			Spacing:        2.5,
			Height:         1.5,
			VerticalOffset: 0.8,
			PillarGap:      0.8,
		},
		Pillar: Pillar{
			Enabled:           true,
			Width:             0.2,
			Depth:             0.15,
			Chamfer:           0.05,
			OffsetHeight:      0.7,
			OffsetSize:        0.05,
			IncludeSeparator:  true,
			IncludeFirstFloor: true,
		},
		Walls: Walls{
			Face:         section.WallSpec{Kind: section.WallFlat},
			Plinth:       section.WallSpec{Kind: section.WallRows, SectionSize: 0.05, MortarSize: 0.02, Rows: 3},
			PlinthOffset: 0.1,
		},
		WindowUnder: WindowUnder{
			Kind:                 UnderSimple,
			FrameWidth:           0.1,
			FrameHeight:          0.1,
			Depth:                0.05,
			InsetDepth:           0.02,
			BalusterBaseDiameter: 0.15,
			BalusterBaseHeight:   0.05,
			BalusterMinDiameter:  0.06,
			BalusterMaxDiameter:  0.12,
		},
		Section: section.HorizontalSeparatorParams(),
	}
}

// DefaultDesign returns the default building with seed 1.
func DefaultDesign() Design {
	return Design{Name: "building", Seed: 1, Params: DefaultParams()}
}
