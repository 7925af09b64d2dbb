package terrain

import (
	"errors"
	"math"
)

// AreaMode selects how a leveled area blends terrain toward its target
// height. Blending is direction aware: flattening only pulls terrain down,
// raising only pushes terrain up, and terrain already on the correct side
// of the target is left untouched.
type AreaMode int

const (
	// AreaFlatten pulls terrain above the target down, with an eased
	// transition ring around the footprint. The usual building pad.
	AreaFlatten AreaMode = iota
	// AreaFlattenSharp is AreaFlatten without the transition ring, for
	// footprints that want a hard edge.
	AreaFlattenSharp
	// AreaRaise pushes terrain below the target up, with a transition
	// ring. Used for docks reaching over water.
	AreaRaise
	// AreaRaiseSharp is AreaRaise without the transition ring.
	AreaRaiseSharp
)

func (m AreaMode) raises() bool { return m == AreaRaise || m == AreaRaiseSharp }
func (m AreaMode) sharp() bool  { return m == AreaFlattenSharp || m == AreaRaiseSharp }

// LeveledArea is one structure's footprint: a rotated rectangle that
// overrides the natural terrain height near a player-built structure.
type LeveledArea struct {
	CenterX float64
	CenterZ float64
	HalfX   float64
	HalfZ   float64
	Target  float64 // world-space target height
	Angle   float64 // rotation about Y, radians
	Mode    AreaMode
}

// boundingRadius covers the rotated footprint plus its transition ring.
func (a LeveledArea) boundingRadius(transition float64) float64 {
	r := math.Hypot(a.HalfX, a.HalfZ)
	if !a.Mode.sharp() {
		r += transition
	}
	return r
}

// blend returns how strongly this area overrides terrain at (x,z):
// 1 inside the footprint, cubic-eased to 0 across the transition ring,
// 0 beyond it.
func (a LeveledArea) blend(x, z, transition float64) float64 {
	dx := x - a.CenterX
	dz := z - a.CenterZ
	if a.Angle != 0 {
		sin, cos := math.Sincos(-a.Angle)
		dx, dz = cos*dx-sin*dz, sin*dx+cos*dz
	}
	// Signed distance to the rectangle edge, axis aligned in local space.
	d := math.Max(math.Abs(dx)-a.HalfX, math.Abs(dz)-a.HalfZ)
	if d <= 0 {
		return 1
	}
	if a.Mode.sharp() || d >= transition {
		return 0
	}
	t := 1 - d/transition
	return t * t * t // cubic ease toward the footprint edge
}

// apply blends a natural terrain height toward the area target, honoring
// the mode's direction.
func (a LeveledArea) apply(natural, factor float64) float64 {
	if a.Mode.raises() {
		if natural >= a.Target {
			return natural
		}
	} else {
		if natural <= a.Target {
			return natural
		}
	}
	return natural + factor*(a.Target-natural)
}

// ErrOverlap is returned when a new leveled area would overlap an existing
// footprint. Overlap order-dependence is not something the height query can
// resolve, so the placement system must prevent it up front.
var ErrOverlap = errors.New("terrain: leveled area overlaps an existing footprint")

// Areas is the set of leveled areas for all placed structures. It is
// mutated by the placement system between frames and read synchronously
// by every height query inside the frame, so it needs no locking.
type Areas struct {
	transition float64
	areas      []LeveledArea
}

// NewAreas creates an empty set with the given transition ring width.
func NewAreas(transition float64) *Areas {
	return &Areas{transition: transition}
}

// Add inserts a footprint, rejecting any overlap with an existing area.
// The test is conservative (bounding circles), which suits the placement
// grid: two structures that close together should not share terrain anyway.
func (s *Areas) Add(area LeveledArea) error {
	for _, other := range s.areas {
		limit := area.boundingRadius(s.transition) + other.boundingRadius(s.transition)
		if math.Hypot(area.CenterX-other.CenterX, area.CenterZ-other.CenterZ) < limit {
			return ErrOverlap
		}
	}
	s.areas = append(s.areas, area)
	return nil
}

// Remove deletes the area whose center lies within tolerance of (x,z).
// Structures carry no stable back-reference to their area, so demolition
// matches by position. Reports whether an area was removed.
func (s *Areas) Remove(x, z, tolerance float64) bool {
	for i, area := range s.areas {
		if math.Hypot(area.CenterX-x, area.CenterZ-z) <= tolerance {
			s.areas = append(s.areas[:i], s.areas[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every area, for world reset.
func (s *Areas) Clear() {
	s.areas = s.areas[:0]
}

// Len reports the number of placed areas.
func (s *Areas) Len() int { return len(s.areas) }

// override blends the natural height through whichever area covers (x,z).
// Overlaps are rejected at Add time, so at most one area applies.
func (s *Areas) override(x, z, natural float64) float64 {
	for _, area := range s.areas {
		if factor := area.blend(x, z, s.transition); factor > 0 {
			return area.apply(natural, factor)
		}
	}
	return natural
}
