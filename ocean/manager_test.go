package ocean

import (
	"math"
	"testing"

	"the.quetzal.community/petrel/settings"
	"the.quetzal.community/petrel/shallows"
	"the.quetzal.community/petrel/terrain"
)

func testManager() *Manager {
	gen := terrain.NewGenerator(12345, settings.Default().Terrain)
	field := shallows.NewField(gen, settings.Default().Depth)
	field.Update(0, 0)
	cfg := settings.Default().Ocean
	cfg.ChunkRadius = 2
	return NewManager(field, cfg)
}

func TestChunkStreaming(t *testing.T) {
	m := testManager()
	var created, removed []Chunk
	m.OnCreate = func(c Chunk) { created = append(created, c) }
	m.OnRemove = func(c Chunk) { removed = append(removed, c) }

	m.Update(0, 0, 1.0/60)
	want := (2*2 + 1) * (2*2 + 1)
	if m.Chunks() != want || len(created) != want {
		t.Fatalf("chunks after first update = %d (created %d), want %d", m.Chunks(), len(created), want)
	}
	if !m.Has(Chunk{0, 0}) || !m.Has(Chunk{2, -2}) || m.Has(Chunk{3, 0}) {
		t.Error("wrong chunk set around the origin")
	}

	// Standing still changes nothing.
	created, removed = nil, nil
	m.Update(1, 1, 1.0/60)
	if len(created) != 0 || len(removed) != 0 {
		t.Errorf("idle update created %d, removed %d", len(created), len(removed))
	}

	// Moving one chunk east swaps exactly one column.
	created, removed = nil, nil
	m.Update(m.ChunkSize()+1, 1, 1.0/60)
	if len(created) != 5 || len(removed) != 5 {
		t.Errorf("one-chunk move created %d, removed %d, want 5 and 5", len(created), len(removed))
	}
	if m.Chunks() != want {
		t.Errorf("chunk count drifted to %d", m.Chunks())
	}
	if m.Has(Chunk{-2, 0}) || !m.Has(Chunk{3, 0}) {
		t.Error("wrong chunks swapped on the move")
	}
}

func TestChunkOrigin(t *testing.T) {
	m := testManager()
	x, z := m.ChunkOrigin(Chunk{X: -1, Z: 2})
	if x != -m.ChunkSize() || z != 2*m.ChunkSize() {
		t.Errorf("origin = (%g,%g), want (%g,%g)", x, z, -m.ChunkSize(), 2*m.ChunkSize())
	}
}

func TestTimeAdvances(t *testing.T) {
	m := testManager()
	m.Update(0, 0, 0.25)
	m.Update(0, 0, 0.25)
	if m.Time() != 0.5 {
		t.Errorf("time = %v, want 0.5", m.Time())
	}
}

func TestWavesDampToZeroOverLand(t *testing.T) {
	m := testManager()
	m.Update(0, 0, 1)
	// The origin is inland, where depth is zero and waves must vanish.
	ox, oy, oz := m.DisplacementAt(0, 0)
	if ox != 0 || oy != 0 || oz != 0 {
		t.Errorf("displacement over land = (%v,%v,%v), want zero", ox, oy, oz)
	}
	if h := m.WaveHeightAt(0, 0); h != 0 {
		t.Errorf("wave height over land = %v, want 0", h)
	}
}

func TestDeepWaterWavesMove(t *testing.T) {
	m := testManager()
	m.Update(0, 0, 1)
	// Outside the depth field everything reads as deep water.
	x, z := 1e6, 1e6
	ox, oy, oz := m.DisplacementAt(x, z)
	if ox == 0 && oy == 0 && oz == 0 {
		t.Error("no displacement in deep water")
	}
	limit := 0.0
	for _, w := range settings.Default().Ocean.Waves {
		limit += w.Steepness / (2 * math.Pi / w.Wavelength)
	}
	if math.Abs(oy) > limit || math.Hypot(ox, oz) > limit {
		t.Errorf("displacement (%v,%v,%v) exceeds amplitude budget %v", ox, oy, oz, limit)
	}
}

func TestWaveHeightUsesTwoTerms(t *testing.T) {
	m := testManager()
	m.Update(0, 0, 3)
	x, z := 2e6, -2e6
	s := newSwell(m.cfg)
	want := 0.0
	for _, w := range s.waves[:2] {
		_, oy, _ := w.displace(x, z, m.Time())
		want += oy
	}
	if got := m.WaveHeightAt(x, z); got != want {
		t.Errorf("two-term height = %v, want %v", got, want)
	}
}

func TestRaisedPadDampsWaves(t *testing.T) {
	gen := terrain.NewGenerator(12345, settings.Default().Terrain)
	field := shallows.NewField(gen, settings.Default().Depth)
	m := NewManager(field, settings.Default().Ocean)

	// Find open water deep enough for undamped waves.
	wx, wz := 0.0, 0.0
	for r := 512.0; r < 50000; r += 128 {
		if gen.DepthAt(r, -r) > settings.Default().Ocean.FullDepth {
			wx, wz = r, -r
			break
		}
	}
	if wx == 0 {
		t.Skip("no deep water found on the sampled diagonal")
	}
	field.Update(wx, wz)
	m.Update(wx, wz, 1)
	if _, oy, _ := m.DisplacementAt(wx, wz); oy == 0 {
		t.Fatal("no waves before the pad, test cannot observe damping")
	}

	// A dock pad raised above sea level turns the water under it to land.
	pad := terrain.LeveledArea{CenterX: wx, CenterZ: wz, HalfX: 10, HalfZ: 10, Target: 2, Mode: terrain.AreaRaiseSharp}
	if err := gen.Areas().Add(pad); err != nil {
		t.Fatal(err)
	}
	field.Update(wx+100, wz) // push past hysteresis so the pad renders
	field.Update(wx, wz)
	m.Update(wx, wz, 1.0/60)
	if ox, oy, oz := m.DisplacementAt(wx, wz); ox != 0 || oy != 0 || oz != 0 {
		t.Errorf("waves over the raised pad = (%v,%v,%v), want zero", ox, oy, oz)
	}
	if h := m.WaveHeightAt(wx, wz); h != 0 {
		t.Errorf("wave height over the raised pad = %v, want 0", h)
	}
}

func TestFoamBounds(t *testing.T) {
	m := testManager()
	m.Update(0, 0, 2)
	for i := range 200 {
		x := float64(i)*97.3 - 5000
		foam := m.FoamAt(x, -x)
		if foam < 0 || foam > 1 {
			t.Fatalf("foam at (%g,%g) = %v outside [0,1]", x, -x, foam)
		}
	}
}
