package ocean

import (
	"math"

	"the.quetzal.community/petrel/settings"
)

const gravity = 9.8

// wave is one Gerstner component in evaluation-ready form: direction is
// normalized, the wavenumber k and phase speed c are derived once from the
// wavelength, and the amplitude comes from the steepness so that waves can
// never self-intersect.
type wave struct {
	dx, dz    float64 // unit direction
	k         float64 // wavenumber, 2 pi / wavelength
	amplitude float64
	c         float64 // phase speed, sqrt(g/k) for deep-water waves
}

func newWave(cfg settings.Wave) wave {
	length := math.Hypot(cfg.DirectionX, cfg.DirectionZ)
	k := 2 * math.Pi / cfg.Wavelength
	return wave{
		dx:        cfg.DirectionX / length,
		dz:        cfg.DirectionZ / length,
		k:         k,
		amplitude: cfg.Steepness / k,
		c:         math.Sqrt(gravity / k),
	}
}

func (w wave) phase(x, z, t float64) float64 {
	return w.k * (w.dx*x + w.dz*z - w.c*t)
}

// displace returns this component's contribution: the crest-sharpening
// horizontal motion along the wave direction plus the vertical lift.
func (w wave) displace(x, z, t float64) (ox, oy, oz float64) {
	sin, cos := math.Sincos(w.phase(x, z, t))
	return w.amplitude * cos * w.dx, w.amplitude * sin, w.amplitude * cos * w.dz
}

// slope returns the vertical surface gradient magnitude contribution,
// used by the foam term.
func (w wave) slope(x, z, t float64) float64 {
	_, cos := math.Sincos(w.phase(x, z, t))
	return math.Abs(w.amplitude * w.k * cos)
}

// swell evaluates the full wave stack with depth damping.
type swell struct {
	cfg   settings.Ocean
	waves [4]wave
}

func newSwell(cfg settings.Ocean) swell {
	s := swell{cfg: cfg}
	for i, w := range cfg.Waves {
		s.waves[i] = newWave(w)
	}
	return s
}

// damping ramps wave energy from nothing in the shallows to full strength
// at FullDepth. Below ClampDepth the factor is exactly zero: whatever the
// ramp says, water must never visibly rise above land at the shoreline.
func (s swell) damping(depth float64) float64 {
	if depth <= s.cfg.ClampDepth {
		return 0
	}
	t := depth / s.cfg.FullDepth
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// displace sums all four Gerstner terms at the undisplaced position and
// applies depth damping. Depth must be sampled at the undisplaced
// position too, or the sample point would oscillate with the wave.
func (s swell) displace(x, z, t, depth float64) (ox, oy, oz float64) {
	factor := s.damping(depth)
	if factor == 0 {
		return 0, 0, 0
	}
	for _, w := range s.waves {
		wx, wy, wz := w.displace(x, z, t)
		ox += wx
		oy += wy
		oz += wz
	}
	return ox * factor, oy * factor, oz * factor
}

// height is the cheap two-term approximation of the surface height, for
// gameplay code (floating object bobbing) that cannot afford the full
// stack. The first two components carry most of the energy.
func (s swell) height(x, z, t, depth float64) float64 {
	factor := s.damping(depth)
	if factor == 0 {
		return 0
	}
	var sum float64
	for _, w := range s.waves[:2] {
		_, oy, _ := w.displace(x, z, t)
		sum += oy
	}
	return sum * factor
}

// foam combines the shoreline depth band with the local wave slope:
// shallow water foams, and so do steep crests anywhere.
func (s swell) foam(x, z, t, depth, damping float64) float64 {
	var foam float64
	if depth < s.cfg.FoamDepth {
		foam = 1 - depth/s.cfg.FoamDepth
	}
	var slope float64
	for _, w := range s.waves {
		slope += w.slope(x, z, t)
	}
	foam += damping * slope / s.cfg.FoamSteepest
	if foam > 1 {
		foam = 1
	}
	return foam
}
