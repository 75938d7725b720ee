package section

import (
	"fmt"
	"math"

	"github.com/chazu/facade/pkg/geom"
)

// ArcResolution is the number of straight pieces approximating a rounded
// step's quarter arc.
const ArcResolution = 8

// Realize turns a normalized sequence into a profile spanning width in
// depth and height in height. The chain starts at the origin, walks the
// steps outward and upward, and returns to the wall plane at the top.
func Realize(seq Sequence, width, height float64) geom.Profile {
	pts := []geom.Point3{geom.P(0, 0)}
	var y, z float64
	for _, s := range seq {
		switch s.Kind {
		case Rounded:
			cy, cz := y, z+s.Height
			for i := 1; i <= ArcResolution; i++ {
				a := -math.Pi/2 + float64(i)*(math.Pi/2)/ArcResolution
				pts = append(pts, geom.P(cy+s.Width*math.Cos(a), cz+s.Height*math.Sin(a)))
			}
		default:
			pts = append(pts, geom.P(y+s.Width, z), geom.P(y+s.Width, z+s.Height))
		}
		y += s.Width
		z += s.Height
	}
	pts = append(pts, geom.P(0, z))

	for i, pt := range pts {
		pts[i] = geom.P(pt.Y*width, pt.Z*height)
	}
	return geom.Concat(geom.Profile{Points: pts})
}

// Line is a straight vertical section from height z0 to z1.
func Line(z0, z1 float64) geom.Profile {
	return geom.Profile{Points: []geom.Point3{geom.P(0, z0), geom.P(0, z1)}}
}

// WallKind selects how a wall's face is sectioned.
type WallKind int

const (
	// WallFlat is a plain vertical face.
	WallFlat WallKind = iota
	// WallRows is courses of blocks separated by recessed mortar joints.
	WallRows
)

var wallKindNames = map[WallKind]string{WallFlat: "flat", WallRows: "rows"}

func (k WallKind) String() string {
	if s, ok := wallKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("WallKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k WallKind) MarshalText() ([]byte, error) {
	if s, ok := wallKindNames[k]; ok {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("section: unknown wall kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *WallKind) UnmarshalText(b []byte) error {
	kind, err := ParseWallKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseWallKind maps a name to its WallKind.
func ParseWallKind(s string) (WallKind, error) {
	for k, name := range wallKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("section: unknown wall kind %q, expected flat or rows", s)
}

// WallSpec describes a wall face section.
type WallSpec struct {
	Kind        WallKind `toml:"kind" json:"kind"`
	SectionSize float64  `toml:"section_size" json:"sectionSize"` // block depth proud of the mortar
	MortarSize  float64  `toml:"mortar_size" json:"mortarSize"`   // joint height
	Rows        int      `toml:"rows" json:"rows"`
}

// Wall builds the face section of a wall of the given height.
func Wall(spec WallSpec, height float64) geom.Profile {
	if spec.Kind != WallRows || spec.Rows < 1 {
		return Line(0, height)
	}
	joints := float64(spec.Rows-1) * spec.MortarSize
	row := (height - joints) / float64(spec.Rows)
	if row <= 0 {
		return Line(0, height)
	}

	d := spec.SectionSize
	pts := []geom.Point3{geom.P(0, 0)}
	var z float64
	for r := 0; r < spec.Rows; r++ {
		pts = append(pts, geom.P(d, z), geom.P(d, z+row))
		z += row
		if r < spec.Rows-1 {
			pts = append(pts, geom.P(0, z), geom.P(0, z+spec.MortarSize))
			z += spec.MortarSize
		}
	}
	pts = append(pts, geom.P(0, height))
	return geom.Concat(geom.Profile{Points: pts})
}
