package terrain

import (
	"math"
	"testing"

	"the.quetzal.community/petrel/settings"
)

func testGenerator(seed int64) *Generator {
	return NewGenerator(seed, settings.Default().Terrain)
}

func TestHeightDeterministic(t *testing.T) {
	a := testGenerator(12345)
	b := testGenerator(12345)
	points := [][2]float64{{0, 0}, {1.5, -3.25}, {400, 250}, {-1234.5, 9876.25}, {65536, -65536}}
	for _, p := range points {
		ha := a.HeightAt(p[0], p[1])
		hb := b.HeightAt(p[0], p[1])
		if ha != hb {
			t.Errorf("HeightAt(%g,%g) differs between identical generators: %v vs %v", p[0], p[1], ha, hb)
		}
		// Re-query the same generator: the cache must be transparent.
		if hc := a.HeightAt(p[0], p[1]); hc != ha {
			t.Errorf("HeightAt(%g,%g) changed on re-query: %v vs %v", p[0], p[1], hc, ha)
		}
	}
}

func TestSeedsDiffer(t *testing.T) {
	a := testGenerator(1)
	b := testGenerator(2)
	same := 0
	for i := range 16 {
		x := float64(i) * 137.5
		if a.HeightAt(x, -x) == b.HeightAt(x, -x) {
			same++
		}
	}
	if same == 16 {
		t.Error("different seeds produced an identical height field")
	}
}

func TestHeightRange(t *testing.T) {
	g := testGenerator(7)
	cfg := settings.Default().Terrain
	for i := range 500 {
		x := float64(i%25)*311.7 - 3000
		z := float64(i/25)*287.3 - 3000
		h := g.HeightAt(x, z)
		if h < cfg.MinDepth || h > 1 {
			t.Fatalf("HeightAt(%g,%g) = %v outside [%v, 1]", x, z, h, cfg.MinDepth)
		}
	}
}

func TestSpawnIsInland(t *testing.T) {
	g := testGenerator(12345)
	if mask := g.ContinentMaskAt(0, 0); mask < 1 {
		t.Fatalf("continent mask at origin = %v, want full land", mask)
	}
	if h := g.HeightAt(0, 0); h <= 0 {
		t.Fatalf("spawn height = %v, want above sea level", h)
	}
}

func TestOpenOceanReachesFloor(t *testing.T) {
	g := testGenerator(12345)
	cfg := settings.Default().Terrain
	// Walk outward until the mask reads open ocean; the seabed there must
	// stay underwater and above the clamped floor.
	for r := cfg.HomeRadius; r < cfg.ContinentSpacing*8; r += 64 {
		if g.ContinentMaskAt(r, r) > 0 {
			continue
		}
		h := g.HeightAt(r, r)
		if h > 0 || h < cfg.MinDepth {
			t.Fatalf("open ocean height at (%g,%g) = %v, want within [%v, 0]", r, r, h, cfg.MinDepth)
		}
		return
	}
	t.Skip("no open ocean found in the sampled band")
}

func TestContinentCacheMatchesDirect(t *testing.T) {
	g := testGenerator(42)
	cell := settings.Default().Terrain.MaskCacheCellSize
	// On cache cell corners the bilinear interpolation is exact, so the
	// cached and direct paths must agree to the bit.
	for i := range 50 {
		x := float64(i-25) * cell * 3
		z := float64(i%10-5) * cell * 7
		cached := g.ContinentMaskAt(x, z)
		direct := g.ContinentMaskDirect(x, z)
		if cached != direct {
			t.Fatalf("mask at cell corner (%g,%g): cached %v, direct %v", x, z, cached, direct)
		}
	}
}

func TestContinentMaskRange(t *testing.T) {
	g := testGenerator(3)
	for i := range 400 {
		x := float64(i)*413.9 - 80000
		z := float64(i)*-229.1 + 40000
		m := g.ContinentMaskAt(x, z)
		if m < 0 || m > 1 {
			t.Fatalf("mask at (%g,%g) = %v outside [0,1]", x, z, m)
		}
	}
}

func TestContinentCacheEviction(t *testing.T) {
	cfg := settings.Default().Terrain
	cfg.MaskCacheCells = 64
	g := NewGenerator(5, cfg)
	for i := range 10000 {
		x := float64(i) * cfg.MaskCacheCellSize * 2
		g.ContinentMaskAt(x, x)
	}
	if n := g.CachedCells(); n > cfg.MaskCacheCells {
		t.Fatalf("cache grew to %d cells, capacity %d", n, cfg.MaskCacheCells)
	}
	// Eviction must not change results.
	if a, b := g.ContinentMaskAt(0, 0), g.ContinentMaskDirect(0, 0); a != b {
		t.Fatalf("mask after eviction: cached %v, direct %v", a, b)
	}
}

func TestNormalY(t *testing.T) {
	g := testGenerator(9)
	for i := range 100 {
		x := float64(i)*91.3 - 4000
		ny := g.NormalYAt(x, -x/2)
		if ny <= 0 || ny > 1 {
			t.Fatalf("NormalYAt(%g,%g) = %v outside (0,1]", x, -x/2, ny)
		}
	}
	// A leveled pad is flat, so its normal points straight up.
	pad := LeveledArea{CenterX: 100, CenterZ: 100, HalfX: 20, HalfZ: 20, Target: 10}
	if err := g.Areas().Add(pad); err != nil {
		t.Fatal(err)
	}
	if ny := g.NormalYAt(100, 100); math.Abs(ny-1) > 1e-9 {
		t.Errorf("normal on a flat pad = %v, want 1", ny)
	}
}

func TestDepthAt(t *testing.T) {
	g := testGenerator(12345)
	if d := g.DepthAt(0, 0); d != 0 {
		t.Errorf("depth on land = %v, want 0", d)
	}
	found := false
	for r := 512.0; r < 20000 && !found; r += 128 {
		if d := g.DepthAt(r, -r); d > 0 {
			found = true
			if h := g.WorldHeightAt(r, -r); math.Abs(d+h) > 1e-12 {
				t.Errorf("depth %v does not mirror height %v", d, h)
			}
		}
	}
	if !found {
		t.Error("no water found on the sampled diagonal")
	}
}
