package terrain

import (
	"math"

	"the.quetzal.community/petrel/settings"
)

// maskCache memoizes the continent distance field on a coarse grid. Full
// resolution queries always bilinearly interpolate between four cached cell
// values; reading a single cell directly would terrace the coastline.
//
// The cache is an approximation grid with bounded memory: once it grows past
// capacity the oldest quarter of the entries is dropped, so a player roaming
// forever never accumulates unbounded state.
type maskCache struct {
	cfg    settings.Terrain
	seed   int64
	values map[int64]float64
	order  []int64 // insertion order, for eviction
}

func newMaskCache(seed int64, cfg settings.Terrain) *maskCache {
	return &maskCache{
		cfg:    cfg,
		seed:   seed,
		values: make(map[int64]float64, cfg.MaskCacheCells),
		order:  make([]int64, 0, cfg.MaskCacheCells),
	}
}

// packCell packs two signed cell coordinates into one map key, avoiding
// per-query key allocations on the hot path.
func packCell(cx, cz int) int64 {
	return int64(uint64(uint32(int32(cx)))<<32 | uint64(uint32(int32(cz))))
}

// at returns the continent mask at world position (x,z), interpolated over
// the four surrounding cache cells.
func (c *maskCache) at(x, z float64) float64 {
	size := c.cfg.MaskCacheCellSize
	fx := math.Floor(x / size)
	fz := math.Floor(z / size)
	cx, cz := int(fx), int(fz)
	tx := x/size - fx
	tz := z/size - fz

	m00 := c.cell(cx, cz)
	m10 := c.cell(cx+1, cz)
	m01 := c.cell(cx, cz+1)
	m11 := c.cell(cx+1, cz+1)

	m0 := m00*(1-tx) + m10*tx
	m1 := m01*(1-tx) + m11*tx
	return m0*(1-tz) + m1*tz
}

func (c *maskCache) cell(cx, cz int) float64 {
	key := packCell(cx, cz)
	if v, ok := c.values[key]; ok {
		return v
	}
	v := computeContinentMask(c.seed, float64(cx)*c.cfg.MaskCacheCellSize, float64(cz)*c.cfg.MaskCacheCellSize, c.cfg)
	if len(c.order) >= c.cfg.MaskCacheCells {
		c.evict()
	}
	c.values[key] = v
	c.order = append(c.order, key)
	return v
}

func (c *maskCache) evict() {
	drop := len(c.order) / 4
	if drop < 1 {
		drop = 1
	}
	for _, key := range c.order[:drop] {
		delete(c.values, key)
	}
	c.order = append(c.order[:0], c.order[drop:]...)
}

func (c *maskCache) len() int { return len(c.values) }

// computeContinentMask evaluates the continent distance field directly,
// without the cache. Continent seeds live on a coarse grid: each grid cell
// deterministically hashes to a seed position and radius, so continents are
// stable forever and need no persistence. The mask is 1 inside the nearest
// seed's radius, eases through a fixed-width coastal ring, and is 0 in the
// open ocean.
func computeContinentMask(seed int64, x, z float64, cfg settings.Terrain) float64 {
	spacing := cfg.ContinentSpacing
	cx := fastFloor(x / spacing)
	cz := fastFloor(z / spacing)

	// The home island guarantees land around the origin, so spawn never
	// lands a player in open ocean regardless of seed.
	coast := math.Hypot(x, z) - cfg.HomeRadius
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			gx, gz := cx+dx, cz+dz
			h := hash2(seed, gx, gz)
			// Jitter keeps seeds off the grid while the margin keeps each
			// seed's radius inside its own cell neighborhood.
			jx := 0.25 + 0.5*hash01(h)
			jz := 0.25 + 0.5*hash01(mix64(h))
			sx := (float64(gx) + jx) * spacing
			sz := (float64(gz) + jz) * spacing
			radius := cfg.ContinentRadiusMin + (cfg.ContinentRadiusMax-cfg.ContinentRadiusMin)*hash01(mix64(mix64(h)))
			d := math.Hypot(x-sx, z-sz) - radius
			if d < coast {
				coast = d
			}
		}
	}
	switch {
	case coast <= 0:
		return 1
	case coast >= cfg.ContinentTransition:
		return 0
	default:
		return 1 - smoothstep(coast/cfg.ContinentTransition)
	}
}

func smoothstep(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
