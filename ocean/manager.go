// Package ocean streams square water tiles around the viewer and
// evaluates the Gerstner wave field that displaces them. Tiles own no
// height data: wave height and foam are pure functions of position, time
// and the shared depth field.
package ocean

import (
	"math"

	"the.quetzal.community/petrel/settings"
	"the.quetzal.community/petrel/shallows"
)

// Chunk identifies one water tile by its integer grid coordinates.
type Chunk struct {
	X, Z int
}

// Manager keeps exactly the set of chunks within the configured radius of
// the viewer's chunk, creating and destroying tiles as the viewer moves.
// The renderer hooks OnCreate/OnRemove to attach and detach tile meshes.
type Manager struct {
	cfg   settings.Ocean
	swell swell
	field *shallows.Field

	chunks map[Chunk]struct{}
	time   float64

	// OnCreate and OnRemove, when set, are called from Update for each
	// chunk entering or leaving the radius.
	OnCreate func(Chunk)
	OnRemove func(Chunk)
}

// NewManager wires the wave stack to the depth field it damps against.
func NewManager(field *shallows.Field, cfg settings.Ocean) *Manager {
	return &Manager{
		cfg:    cfg,
		swell:  newSwell(cfg),
		field:  field,
		chunks: make(map[Chunk]struct{}),
	}
}

// ChunkSize returns the world-space side length of one tile.
func (m *Manager) ChunkSize() float64 { return m.cfg.ChunkSize }

// ChunkOrigin returns the minimum corner of a chunk in world space.
func (m *Manager) ChunkOrigin(c Chunk) (x, z float64) {
	return float64(c.X) * m.cfg.ChunkSize, float64(c.Z) * m.cfg.ChunkSize
}

// Chunks reports how many tiles are currently alive.
func (m *Manager) Chunks() int { return len(m.chunks) }

// Has reports whether a chunk is currently streamed in.
func (m *Manager) Has(c Chunk) bool {
	_, ok := m.chunks[c]
	return ok
}

// Update advances water time and reconciles the chunk set against the
// viewer position: the set difference in both directions, every frame.
func (m *Manager) Update(viewerX, viewerZ, dt float64) {
	m.time += dt
	cx := int(math.Floor(viewerX / m.cfg.ChunkSize))
	cz := int(math.Floor(viewerZ / m.cfg.ChunkSize))
	radius := m.cfg.ChunkRadius

	wanted := make(map[Chunk]struct{}, (2*radius+1)*(2*radius+1))
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			wanted[Chunk{X: cx + dx, Z: cz + dz}] = struct{}{}
		}
	}
	for c := range m.chunks {
		if _, keep := wanted[c]; !keep {
			delete(m.chunks, c)
			if m.OnRemove != nil {
				m.OnRemove(c)
			}
		}
	}
	for c := range wanted {
		if _, have := m.chunks[c]; !have {
			m.chunks[c] = struct{}{}
			if m.OnCreate != nil {
				m.OnCreate(c)
			}
		}
	}
}

// Time returns the wave clock, which the water shader shares.
func (m *Manager) Time() float64 { return m.time }

// DisplacementAt evaluates the full four-term Gerstner displacement at an
// undisplaced surface position, damped by the local water depth. This is
// the reference the water shader reproduces per vertex.
func (m *Manager) DisplacementAt(x, z float64) (ox, oy, oz float64) {
	return m.swell.displace(x, z, m.time, m.field.DepthAt(x, z))
}

// WaveHeightAt approximates the water surface height at a point using the
// two dominant wave terms, for gameplay code that needs bobbing without
// shader-grade cost.
func (m *Manager) WaveHeightAt(x, z float64) float64 {
	return m.swell.height(x, z, m.time, m.field.DepthAt(x, z))
}

// FoamAt returns foam strength in [0,1] from the shoreline depth band and
// the local wave slope.
func (m *Manager) FoamAt(x, z float64) float64 {
	depth := m.field.DepthAt(x, z)
	return m.swell.foam(x, z, m.time, depth, m.swell.damping(depth))
}
