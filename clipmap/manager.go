// Package clipmap keeps a stack of concentric terrain rings centered on
// the viewer. Each ring doubles the vertex spacing of the one inside it,
// so the mesh renders unbounded terrain at a bounded vertex count; seams
// between rings bridge the resolution change without cracks.
package clipmap

import (
	"log"
	"math"

	"the.quetzal.community/petrel/settings"
	"the.quetzal.community/petrel/terrain"
)

// Manager owns the levels and seams and drives them once per frame. It is
// the only entry point the renderer and gameplay code need: viewer-driven
// updates in, mesh revisions and profiling counters out.
type Manager struct {
	cfg settings.Clipmap
	gen *terrain.Generator

	levels []*Level // index 0 is the coarsest ring
	seams  []*Seam  // seams[i] bridges levels[i+1] into levels[i]

	snappedX, snappedZ float64

	refreshes []refresh
	triangles int
	triRev    uint64
}

type refresh struct {
	x, z, radius float64
}

// NewManager builds the level stack. Levels and seams are created once and
// only ever re-centered afterwards. Ring i has vertex spacing
// base x 2^(levels-1-i); the innermost ring may run at a higher resolution
// than the outer ones.
func NewManager(gen *terrain.Generator, cfg settings.Clipmap) *Manager {
	m := &Manager{cfg: cfg, gen: gen}
	for i := range cfg.Levels {
		n := cfg.Resolution
		if i == cfg.Levels-1 {
			n = cfg.InnerResolution
		}
		if !isPowerOfTwoPlusOne(n) {
			log.Printf("clipmap: level %d resolution %d is not 2^k+1, seams may land between vertices", i, n)
		}
		spacing := cfg.BaseScale * math.Pow(2, float64(cfg.Levels-1-i))
		smooth := i >= cfg.Levels-cfg.SmoothedLevels
		m.levels = append(m.levels, newLevel(i, n, spacing, smooth, cfg.Smoothing, gen))
	}
	for i := 0; i < cfg.Levels-1; i++ {
		m.seams = append(m.seams, newSeam(m.levels[i+1], m.levels[i]))
	}
	return m
}

// Update recenters every level on the viewer and refreshes their data.
// Levels update coarse to fine, because each level's morph heights read
// the coarser level's freshly updated grid; seams come last for the same
// reason. Call exactly once per frame from the render loop.
func (m *Manager) Update(viewerX, viewerZ float64, dt float64) {
	// The render transform snaps to the coarsest grid so that every level
	// and seam, whatever their own data center, share one alignment.
	coarsest := m.levels[0].spacing
	m.snappedX = math.Floor(viewerX/coarsest) * coarsest
	m.snappedZ = math.Floor(viewerZ/coarsest) * coarsest

	for _, r := range m.refreshes {
		for _, level := range m.levels {
			level.refreshRegion(r.x, r.z, r.radius)
		}
	}
	m.refreshes = m.refreshes[:0]

	for i, level := range m.levels {
		var coarser *Level
		if i > 0 {
			coarser = m.levels[i-1]
		}
		level.update(viewerX, viewerZ, coarser, dt)
	}
	for _, seam := range m.seams {
		seam.update()
	}
}

// ForceRefreshRegion queues an instant resample of all levels around a
// point, picked up by the next Update. The placement system calls this
// after adding or removing a leveled area so the terrain snaps to its new
// shape with no smoothing delay.
func (m *Manager) ForceRefreshRegion(x, z, radius float64) {
	m.refreshes = append(m.refreshes, refresh{x: x, z: z, radius: radius})
}

// SnappedOrigin returns the shared render-transform position.
func (m *Manager) SnappedOrigin() (x, z float64) {
	return m.snappedX, m.snappedZ
}

// Levels returns the ring stack, coarsest first.
func (m *Manager) Levels() []*Level { return m.levels }

// Seams returns the bridging strips, coarsest pair first.
func (m *Manager) Seams() []*Seam { return m.seams }

// Finer returns the level drawn inside the given one, or nil for the
// innermost. The renderer needs it to build the interior cutout.
func (m *Manager) Finer(level *Level) *Level {
	if level.index+1 < len(m.levels) {
		return m.levels[level.index+1]
	}
	return nil
}

// TriangleCount reports the triangles across all level and seam meshes,
// for the profiling overlay. Recounted only when geometry changed.
func (m *Manager) TriangleCount() int {
	var rev uint64
	for _, level := range m.levels {
		rev += level.revision
	}
	for _, seam := range m.seams {
		rev += seam.revision
	}
	if rev == m.triRev && m.triangles > 0 {
		return m.triangles
	}
	m.triRev = rev
	m.triangles = 0
	for _, level := range m.levels {
		m.triangles += len(level.BuildMesh(m.snappedX, m.snappedZ, m.Finer(level)).Indices) / 3
	}
	for _, seam := range m.seams {
		m.triangles += len(seam.BuildMesh(m.snappedX, m.snappedZ).Indices) / 3
	}
	return m.triangles
}

// StableLevels reports how many levels have fully settled display
// heights, for the profiling overlay.
func (m *Manager) StableLevels() int {
	stable := 0
	for _, level := range m.levels {
		if level.Stable() {
			stable++
		}
	}
	return stable
}

func isPowerOfTwoPlusOne(n int) bool {
	n--
	return n > 0 && n&(n-1) == 0
}
