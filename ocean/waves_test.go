package ocean

import (
	"math"
	"testing"

	"the.quetzal.community/petrel/settings"
)

func TestWaveDerivation(t *testing.T) {
	w := newWave(settings.Wave{DirectionX: 3, DirectionZ: 4, Steepness: 0.3, Wavelength: 10})
	if math.Abs(math.Hypot(w.dx, w.dz)-1) > 1e-12 {
		t.Errorf("direction not normalized: (%v,%v)", w.dx, w.dz)
	}
	k := 2 * math.Pi / 10
	if w.k != k {
		t.Errorf("wavenumber = %v, want %v", w.k, k)
	}
	if w.amplitude != 0.3/k {
		t.Errorf("amplitude = %v, want %v", w.amplitude, 0.3/k)
	}
	if w.c != math.Sqrt(gravity/k) {
		t.Errorf("phase speed = %v, want %v", w.c, math.Sqrt(gravity/k))
	}
}

func TestWavePropagates(t *testing.T) {
	w := newWave(settings.Wave{DirectionX: 1, DirectionZ: 0, Steepness: 0.3, Wavelength: 8})
	// A crest at time t reappears one wavelength downwind after one period.
	period := 8 / w.c
	_, y0, _ := w.displace(0, 0, 0)
	_, y1, _ := w.displace(8, 0, period)
	if math.Abs(y0-y1) > 1e-9 {
		t.Errorf("wave did not propagate cleanly: %v vs %v", y0, y1)
	}
}

func TestDampingRamp(t *testing.T) {
	s := newSwell(settings.Default().Ocean)
	cfg := settings.Default().Ocean
	if d := s.damping(0); d != 0 {
		t.Errorf("damping at zero depth = %v", d)
	}
	if d := s.damping(cfg.ClampDepth); d != 0 {
		t.Errorf("damping at clamp depth = %v, want 0", d)
	}
	if d := s.damping(cfg.FullDepth); d != 1 {
		t.Errorf("damping at full depth = %v, want 1", d)
	}
	if d := s.damping(cfg.FullDepth * 10); d != 1 {
		t.Errorf("damping beyond full depth = %v, want 1", d)
	}
	prev := 0.0
	for depth := cfg.ClampDepth + 1e-6; depth < cfg.FullDepth; depth += 0.05 {
		d := s.damping(depth)
		if d < prev {
			t.Fatalf("damping not monotonic at depth %g: %v < %v", depth, d, prev)
		}
		prev = d
	}
}

func TestShallowFoamSaturates(t *testing.T) {
	s := newSwell(settings.Default().Ocean)
	// At the waterline the depth band alone saturates the foam.
	if foam := s.foam(12, 34, 1, 0, 0); foam != 1 {
		t.Errorf("foam at zero depth = %v, want 1", foam)
	}
	// In deep calm water the band contributes nothing.
	deep := settings.Default().Ocean.FoamDepth * 10
	foam := s.foam(12, 34, 1, deep, s.damping(deep))
	if foam < 0 || foam > 1 {
		t.Errorf("deep water foam = %v outside [0,1]", foam)
	}
}

func TestDisplaceSumsComponents(t *testing.T) {
	s := newSwell(settings.Default().Ocean)
	x, z, at := 77.0, -31.0, 2.5
	var wx, wy, wz float64
	for _, w := range s.waves {
		ox, oy, oz := w.displace(x, z, at)
		wx += ox
		wy += oy
		wz += oz
	}
	ox, oy, oz := s.displace(x, z, at, 100)
	if ox != wx || oy != wy || oz != wz {
		t.Errorf("displace = (%v,%v,%v), want summed (%v,%v,%v)", ox, oy, oz, wx, wy, wz)
	}
}
