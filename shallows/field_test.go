package shallows

import (
	"math"
	"testing"

	"the.quetzal.community/petrel/settings"
	"the.quetzal.community/petrel/terrain"
)

func testField() (*Field, *terrain.Generator) {
	gen := terrain.NewGenerator(12345, settings.Default().Terrain)
	cfg := settings.Depth{Resolution: 64, Range: 256, Hysteresis: 32, EdgeFade: 4}
	return NewField(gen, cfg), gen
}

func TestHysteresis(t *testing.T) {
	f, _ := testField()
	if !f.Update(0, 0) {
		t.Fatal("first update must render")
	}
	rev := f.Revision()
	// Inside the hysteresis box nothing happens.
	if f.Update(31, -31) {
		t.Error("update within hysteresis re-rendered")
	}
	if f.Revision() != rev {
		t.Error("revision moved without a render")
	}
	// Past the box it recenters.
	if !f.Update(40, 0) {
		t.Error("update past hysteresis did not re-render")
	}
	if f.Revision() == rev {
		t.Error("revision did not move on re-render")
	}
}

func TestCenterSnapsToTexelGrid(t *testing.T) {
	f, _ := testField()
	f.Update(13.7, -41.3)
	texel := f.Range() / float64(f.Resolution())
	cx, cz := f.Center()
	if math.Mod(cx, texel) != 0 || math.Mod(cz, texel) != 0 {
		t.Errorf("center (%g,%g) not on the %g texel grid", cx, cz, texel)
	}
}

func TestTexelsMatchGenerator(t *testing.T) {
	f, gen := testField()
	f.Update(0, 0)
	resolution := f.Resolution()
	texel := f.Range() / float64(resolution)
	cx, cz := f.Center()
	minX := cx - f.Range()/2
	minZ := cz - f.Range()/2
	fade := 4
	for j := fade; j < resolution-fade; j += 7 {
		for i := fade; i < resolution-fade; i += 7 {
			x := minX + (float64(i)+0.5)*texel
			z := minZ + (float64(j)+0.5)*texel
			wantHeight := (gen.HeightAt(x, z) - gen.MinDepth()) / (1 - gen.MinDepth())
			wantMask := gen.ContinentMaskAt(x, z)
			pixels := f.Pixels()
			if got := pixels[(j*resolution+i)*2]; got != float32(wantHeight) {
				t.Fatalf("texel (%d,%d) height = %v, want %v", i, j, got, float32(wantHeight))
			}
			if got := pixels[(j*resolution+i)*2+1]; got != float32(wantMask) {
				t.Fatalf("texel (%d,%d) mask = %v, want %v", i, j, got, float32(wantMask))
			}
		}
	}
}

func TestEdgeFadesToSentinel(t *testing.T) {
	f, _ := testField()
	f.Update(0, 0)
	resolution := f.Resolution()
	pixels := f.Pixels()
	for i := range resolution {
		// The outermost ring multiplies by zero: the deep sentinel.
		if h := pixels[(0*resolution+i)*2]; h != 0 {
			t.Fatalf("border texel (%d,0) height = %v, want 0", i, h)
		}
		if m := pixels[((resolution-1)*resolution+i)*2+1]; m != 0 {
			t.Fatalf("border texel (%d,%d) mask = %v, want 0", i, resolution-1, m)
		}
	}
}

func TestSampleOutsideIsDeep(t *testing.T) {
	f, _ := testField()
	f.Update(0, 0)
	h, m := f.Sample(1e6, 0)
	if h != 0 || m != 0 {
		t.Errorf("outside sample = (%v,%v), want deep sentinel (0,0)", h, m)
	}
	// Deep sentinel decodes to the clamped maximum depth.
	want := -f.MinDepth() * f.HeightScale()
	if d := f.DepthAt(1e6, 0); d != want {
		t.Errorf("outside depth = %v, want %v", d, want)
	}
}

func TestSampleBeforeFirstRenderIsDeep(t *testing.T) {
	f, _ := testField()
	if h, m := f.Sample(0, 0); h != 0 || m != 0 {
		t.Errorf("unrendered sample = (%v,%v), want (0,0)", h, m)
	}
}

func TestDepthMatchesGeneratorInland(t *testing.T) {
	f, gen := testField()
	f.Update(0, 0)
	// Well inside the home island the depth is zero everywhere, on both
	// the field path and the direct path.
	for _, p := range [][2]float64{{0, 0}, {20, -20}, {-48, 36}} {
		if d := gen.DepthAt(p[0], p[1]); d != 0 {
			t.Fatalf("generator depth at (%g,%g) = %v, want land", p[0], p[1], d)
		}
		if d := f.DepthAt(p[0], p[1]); d != 0 {
			t.Errorf("field depth at (%g,%g) = %v, want 0", p[0], p[1], d)
		}
	}
}

func TestSampleInterpolatesBetweenTexels(t *testing.T) {
	f, _ := testField()
	f.Update(0, 0)
	resolution := f.Resolution()
	texel := f.Range() / float64(resolution)
	cx, cz := f.Center()
	minX := cx - f.Range()/2
	minZ := cz - f.Range()/2
	i, j := resolution/2, resolution/2
	x0 := minX + (float64(i)+0.5)*texel
	z := minZ + (float64(j)+0.5)*texel
	pixels := f.Pixels()
	h0 := float64(pixels[(j*resolution+i)*2])
	h1 := float64(pixels[(j*resolution+i+1)*2])
	got, _ := f.Sample(x0+texel/2, z)
	want := (h0 + h1) / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("midpoint sample = %v, want %v", got, want)
	}
}
