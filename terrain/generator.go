// Package terrain generates the infinite procedural height field shared by
// the clipmap mesh, the shoreline depth texture and gameplay height queries.
// Every function here is a pure function of (x, z, seed): the mesh path and
// the depth-texture path call the same code, so the two can never disagree.
package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"the.quetzal.community/petrel/settings"
)

// Generator evaluates land height, ocean depth and the continent mask at
// arbitrary world positions. It is a process-lifetime singleton: the only
// mutable state is the continent mask cache and the leveled area set.
type Generator struct {
	cfg    settings.Terrain
	seed   int64
	noise  *simplex
	detail opensimplex.Noise // seabed detail, no derivative needed
	mask   *maskCache
	areas  *Areas
}

// NewGenerator builds a generator for one seed. Settings are frozen in.
func NewGenerator(seed int64, cfg settings.Terrain) *Generator {
	return &Generator{
		cfg:    cfg,
		seed:   seed,
		noise:  newSimplex(seed),
		detail: opensimplex.NewNormalized(seed + 1),
		mask:   newMaskCache(seed, cfg),
		areas:  NewAreas(cfg.LevelTransition),
	}
}

// Areas exposes the leveled area set for the structure placement system.
func (g *Generator) Areas() *Areas { return g.areas }

// HeightScale converts normalized heights to world units.
func (g *Generator) HeightScale() float64 { return g.cfg.HeightScale }

// MinDepth is the normalized ocean floor clamp, a negative value.
func (g *Generator) MinDepth() float64 { return g.cfg.MinDepth }

// ContinentMaskAt returns how landlike (x,z) is: 1 deep inland, 0 in the
// open ocean, eased across the coastal ring. Reads go through the bilinear
// cache; ContinentMaskDirect is the uncached reference.
func (g *Generator) ContinentMaskAt(x, z float64) float64 {
	return g.mask.at(x, z)
}

// ContinentMaskDirect evaluates the continent field without the cache.
func (g *Generator) ContinentMaskDirect(x, z float64) float64 {
	return computeContinentMask(g.seed, x, z, g.cfg)
}

// CachedCells reports how many continent cells are currently memoized.
func (g *Generator) CachedCells() int { return g.mask.len() }

// HeightAt returns the normalized terrain height at (x,z): land in (0,1],
// ocean floor down to MinDepth, blended across the coast by the continent
// mask. No leveled areas and no height scale are applied here; this is the
// exact function the depth texture renders.
func (g *Generator) HeightAt(x, z float64) float64 {
	height := (g.noise.fractal(x/g.cfg.BaseScale, z/g.cfg.BaseScale, g.cfg.Octaves) + 1) / 2
	mask := g.mask.at(x, z)
	if mask >= 1 {
		return height // pure land, skip the ocean blend
	}
	floor := height - (1 - mask)
	floor -= (1 - mask) * g.cfg.OceanDetailStrength * g.detail.Eval2(x/g.cfg.OceanDetailScale, z/g.cfg.OceanDetailScale)
	return math.Max(floor, g.cfg.MinDepth)
}

// NormalizedHeightAt is HeightAt with leveled areas applied, still in
// noise units. The depth field renders this, so a raised dock pad reads
// as land to the water exactly like it renders as land in the mesh.
func (g *Generator) NormalizedHeightAt(x, z float64) float64 {
	h := g.HeightAt(x, z)
	if g.areas.Len() == 0 {
		return h
	}
	return g.areas.override(x, z, h*g.cfg.HeightScale) / g.cfg.HeightScale
}

// WorldHeightAt is the gameplay height query: normalized height scaled to
// world units, then overridden by any leveled area covering the point. It
// is called many times per frame by movement and placement code.
func (g *Generator) WorldHeightAt(x, z float64) float64 {
	h := g.HeightAt(x, z) * g.cfg.HeightScale
	if g.areas.Len() == 0 {
		return h
	}
	return g.areas.override(x, z, h)
}

// NormalYAt returns the Y component of the surface normal at (x,z), the
// walkability slope query. Finite differences over half a cache cell.
func (g *Generator) NormalYAt(x, z float64) float64 {
	const step = 0.5
	fx := (g.WorldHeightAt(x+step, z) - g.WorldHeightAt(x-step, z)) / (2 * step)
	fz := (g.WorldHeightAt(x, z+step) - g.WorldHeightAt(x, z-step)) / (2 * step)
	return 1 / math.Sqrt(1+fx*fx+fz*fz)
}

// DepthAt returns the water depth in world units at (x,z): positive in
// water, zero on land. Sea level is height zero.
func (g *Generator) DepthAt(x, z float64) float64 {
	h := g.WorldHeightAt(x, z)
	if h >= 0 {
		return 0
	}
	return -h
}
