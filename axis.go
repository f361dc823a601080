package covkit

import (
	"fmt"
	"math"
)

// RangeMeaning classifies how the values of an axis behave at its bounds.
type RangeMeaning int

const (
	// Exact axes have fixed, non cyclic bounds (e.g. latitude).
	Exact RangeMeaning = iota
	// Wraparound axes are cyclic: the maximum is followed by the minimum (e.g. longitude).
	Wraparound
	// Unbounded axes have no meaningful bounds.
	Unbounded
)

func (m RangeMeaning) String() string {
	switch m {
	case Exact:
		return "exact"
	case Wraparound:
		return "wraparound"
	case Unbounded:
		return "unbounded"
	default:
		return fmt.Sprintf("RangeMeaning(%d)", int(m))
	}
}

// AxisDirection is the direction in which the values of an axis increase.
type AxisDirection string

const (
	East  AxisDirection = "east"
	North AxisDirection = "north"
	Up    AxisDirection = "up"
	Past  AxisDirection = "past"
	Other AxisDirection = "other"
)

// AxisMetadata gives the per-dimension range information of a coordinate
// reference system. Envelopes only ever read it.
type AxisMetadata interface {
	Dimension() int
	Minimum(dim int) float64
	Maximum(dim int) float64
	RangeMeaning(dim int) RangeMeaning
}

// DomainOfValidity is implemented by AxisMetadata that also declare the area
// in which they are valid. Axes of the domain are matched by direction.
type DomainOfValidity interface {
	AxisDirection(dim int) AxisDirection
	Domain() (Envelope, bool)
}

// Axis describes a single coordinate system axis.
type Axis struct {
	Name      string
	Direction AxisDirection
	Min, Max  float64
	Meaning   RangeMeaning
}

// CRS is a minimal coordinate reference system descriptor: a name and the
// metadata of its axes. It implements AxisMetadata and DomainOfValidity.
type CRS struct {
	Name string
	Axes []Axis
	// Validity, if set, restricts ReduceToDomain(true) further than the axis bounds.
	Validity *Envelope
}

var (
	_ AxisMetadata     = &CRS{}
	_ DomainOfValidity = &CRS{}
)

// NewCRS creates a CRS, checking that every axis has min <= max and that
// wraparound axes have a finite, non zero period.
func NewCRS(name string, axes ...Axis) (*CRS, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("crs %s: no axes", name)
	}
	for i, a := range axes {
		if a.Min > a.Max || math.IsNaN(a.Min) || math.IsNaN(a.Max) {
			return nil, &InvalidRangeError{Dim: i, Lower: a.Min, Upper: a.Max}
		}
		if a.Meaning == Wraparound && (math.IsInf(a.Max-a.Min, 0) || a.Max == a.Min) {
			return nil, fmt.Errorf("crs %s: wraparound axis %q must have a finite period", name, a.Name)
		}
	}
	return &CRS{Name: name, Axes: append([]Axis(nil), axes...)}, nil
}

// WGS84 is a geographic CRS in longitude, latitude order.
var WGS84 = &CRS{
	Name: "WGS 84 (lon/lat)",
	Axes: []Axis{
		{Name: "longitude", Direction: East, Min: -180, Max: 180, Meaning: Wraparound},
		{Name: "latitude", Direction: North, Min: -90, Max: 90, Meaning: Exact},
	},
}

// WGS84LatLon is the same datum as WGS84 in the authority latitude, longitude order.
var WGS84LatLon = &CRS{
	Name: "WGS 84",
	Axes: []Axis{
		{Name: "latitude", Direction: North, Min: -90, Max: 90, Meaning: Exact},
		{Name: "longitude", Direction: East, Min: -180, Max: 180, Meaning: Wraparound},
	},
}

func (c *CRS) Dimension() int {
	return len(c.Axes)
}

func (c *CRS) Minimum(dim int) float64 {
	return c.Axes[dim].Min
}

func (c *CRS) Maximum(dim int) float64 {
	return c.Axes[dim].Max
}

func (c *CRS) RangeMeaning(dim int) RangeMeaning {
	return c.Axes[dim].Meaning
}

func (c *CRS) AxisDirection(dim int) AxisDirection {
	return c.Axes[dim].Direction
}

// Domain returns the declared domain of validity, if any.
func (c *CRS) Domain() (Envelope, bool) {
	if c.Validity == nil {
		return Envelope{}, false
	}
	return *c.Validity, true
}

func (c *CRS) String() string {
	return c.Name
}

// axis helpers tolerate a nil AxisMetadata: every axis is then exact and unbounded.

func meaningOf(md AxisMetadata, dim int) RangeMeaning {
	if md == nil {
		return Exact
	}
	return md.RangeMeaning(dim)
}

func isWraparound(md AxisMetadata, dim int) bool {
	return md != nil && md.RangeMeaning(dim) == Wraparound
}

func axisBounds(md AxisMetadata, dim int) (float64, float64) {
	if md == nil {
		return math.Inf(-1), math.Inf(1)
	}
	return md.Minimum(dim), md.Maximum(dim)
}

// period returns the cycle length of a wraparound axis, or NaN for other axes.
func period(md AxisMetadata, dim int) float64 {
	if !isWraparound(md, dim) {
		return math.NaN()
	}
	return md.Maximum(dim) - md.Minimum(dim)
}

// sameAxes reports whether two axis metadata describe identical axes.
func sameAxes(a, b AxisMetadata) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Dimension() != b.Dimension() {
		return false
	}
	for i := 0; i < a.Dimension(); i++ {
		if a.Minimum(i) != b.Minimum(i) || a.Maximum(i) != b.Maximum(i) || a.RangeMeaning(i) != b.RangeMeaning(i) {
			return false
		}
	}
	return true
}
