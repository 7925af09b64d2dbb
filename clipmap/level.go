package clipmap

import (
	"math"

	"grow.graphics/xy"
	"grow.graphics/xy/vector3"

	"the.quetzal.community/petrel/terrain"
)

// Morph blend region, as fractions of a level's half extent. Vertices
// closer to the center than the start render at their own height; past it
// they blend toward the coarse height so the LOD transition is invisible.
const (
	MorphStart = 0.7
	MorphWidth = 0.25
)

// Level is one clipmap ring: a fixed N x N vertex grid at a single
// world-space spacing, kept centered near the viewer. The grid is a ring
// buffer: a logical cell (gx,gz) always lives in physical slot
// (gx mod N, gz mod N), so re-centering reuses every cell that stays in
// view and resamples only the newly exposed rows and columns.
type Level struct {
	index   int // 0 is the coarsest ring
	n       int // vertices per side
	spacing float64
	smooth  bool // inner levels ease display heights, outer levels snap
	rate    float64

	gen *terrain.Generator

	originX, originZ int // grid coords of the window's minimum corner
	ready            bool
	revision         uint64
	coarseRev        uint64 // revision of the coarser level last sampled
	stable           bool

	target  []float64 // freshly sampled true heights
	display []float64 // heights eased toward target, what is rendered
	coarse  []float64 // heights as the next coarser level sees them
	normals []xy.Vector3
}

func newLevel(index, n int, spacing float64, smooth bool, rate float64, gen *terrain.Generator) *Level {
	return &Level{
		index:   index,
		n:       n,
		spacing: spacing,
		smooth:  smooth,
		rate:    rate,
		gen:     gen,
		target:  make([]float64, n*n),
		display: make([]float64, n*n),
		coarse:  make([]float64, n*n),
		normals: make([]xy.Vector3, n*n),
	}
}

// Spacing returns the world-space distance between adjacent vertices.
func (l *Level) Spacing() float64 { return l.spacing }

// Resolution returns the number of vertices per side.
func (l *Level) Resolution() int { return l.n }

// Revision increments whenever any vertex data changes, so the renderer
// can skip re-uploading untouched levels.
func (l *Level) Revision() uint64 { return l.revision }

// Stable reports whether every display height has converged onto its
// target, for the profiling overlay.
func (l *Level) Stable() bool { return l.ready && l.stable }

// Extent returns the world-space side length covered by the level.
func (l *Level) Extent() float64 { return float64(l.n-1) * l.spacing }

// Origin returns the world position of the window's minimum corner.
func (l *Level) Origin() (x, z float64) {
	return float64(l.originX) * l.spacing, float64(l.originZ) * l.spacing
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func (l *Level) slot(gx, gz int) int {
	return mod(gz, l.n)*l.n + mod(gx, l.n)
}

// update recenters the grid on the viewer and refreshes vertex data.
// Small moves shift the ring buffer and resample only exposed cells; moves
// beyond a quarter of the grid (teleports) rebuild everything, since the
// bookkeeping would resample nearly every cell anyway.
func (l *Level) update(viewerX, viewerZ float64, coarser *Level, dt float64) {
	half := (l.n - 1) / 2
	newOX := int(math.Floor(viewerX/l.spacing)) - half
	newOZ := int(math.Floor(viewerZ/l.spacing)) - half

	moved := newOX != l.originX || newOZ != l.originZ
	dx := newOX - l.originX
	dz := newOZ - l.originZ
	full := !l.ready || abs(dx) > l.n/4 || abs(dz) > l.n/4

	if moved || full {
		l.originX, l.originZ = newOX, newOZ
		if full {
			// A full rebuild means the old window's data is unrelated to
			// the new terrain, so easing from it would melt the previous
			// location into this one. Snap instead.
			l.sampleRect(newOX, newOZ, l.n, l.n, true)
		} else {
			l.sampleExposed(dx, dz)
		}
		l.revision++
		l.stable = false
	}

	l.ready = true
	l.settle(dt)

	// The coarse (morph target) heights track what the coarser level is
	// rendering, so they go stale whenever that level changes at all,
	// easing included. The coarsest ring morphs onto itself and re-copies
	// whenever anything, forced region refreshes included, bumped it.
	if coarser != nil {
		if moved || full || coarser.revision != l.coarseRev {
			l.sampleCoarse(coarser)
			l.coarseRev = coarser.revision
			l.revision++
		}
	} else if l.revision != l.coarseRev {
		copy(l.coarse, l.display)
		l.coarseRev = l.revision
	}
}

// sampleRect recomputes target heights for a logical rectangle of cells.
// When snap is set the display height follows immediately (full rebuilds
// and forced refreshes); otherwise existing cells ease over (see settle).
func (l *Level) sampleRect(gx0, gz0, w, h int, snap bool) {
	for gz := gz0; gz < gz0+h; gz++ {
		for gx := gx0; gx < gx0+w; gx++ {
			i := l.slot(gx, gz)
			l.target[i] = l.gen.WorldHeightAt(float64(gx)*l.spacing, float64(gz)*l.spacing)
			if snap {
				l.display[i] = l.target[i]
			}
		}
	}
	l.refreshNormals(gx0, gz0, w, h)
}

// sampleExposed recomputes only the rows and columns that scrolled into
// view. Cells that stayed in the window keep both their slot and their
// data, which is what makes the incremental path cheap.
func (l *Level) sampleExposed(dx, dz int) {
	if dx > 0 {
		l.sampleBorder(l.originX+l.n-dx, l.originZ, dx, l.n)
	} else if dx < 0 {
		l.sampleBorder(l.originX, l.originZ, -dx, l.n)
	}
	if dz > 0 {
		l.sampleBorder(l.originX, l.originZ+l.n-dz, l.n, dz)
	} else if dz < 0 {
		l.sampleBorder(l.originX, l.originZ, l.n, -dz)
	}
}

func (l *Level) sampleBorder(gx0, gz0, w, h int) {
	for gz := gz0; gz < gz0+h; gz++ {
		for gx := gx0; gx < gx0+w; gx++ {
			i := l.slot(gx, gz)
			l.target[i] = l.gen.WorldHeightAt(float64(gx)*l.spacing, float64(gz)*l.spacing)
			// Exposed cells on a smoothed ring keep the display height of
			// the cell their slot wrapped over and ease onto the new
			// target, which is the pop-hiding the smoothing exists for.
			if !l.smooth {
				l.display[i] = l.target[i]
			}
		}
	}
	l.refreshNormals(gx0-1, gz0-1, w+2, h+2)
}

// sampleCoarse refreshes every vertex's morph endpoint: the height this
// position renders at on the next coarser ring. Display heights, not
// targets, so the morphed border lands on what the coarse mesh actually
// draws while that mesh is still easing. Bilinear over the coarser grid,
// or straight from the generator while that ring is still filling in.
func (l *Level) sampleCoarse(coarser *Level) {
	for gz := l.originZ; gz < l.originZ+l.n; gz++ {
		for gx := l.originX; gx < l.originX+l.n; gx++ {
			x := float64(gx) * l.spacing
			z := float64(gz) * l.spacing
			l.coarse[l.slot(gx, gz)] = coarser.SampleDisplayHeight(x, z)
		}
	}
}

// refreshNormals recomputes normals for a logical rectangle (clamped to
// the window) using central differences over already-known neighbors, so
// no extra height queries are issued.
func (l *Level) refreshNormals(gx0, gz0, w, h int) {
	x1, z1 := gx0+w, gz0+h
	gx0 = max(gx0, l.originX)
	gz0 = max(gz0, l.originZ)
	x1 = min(x1, l.originX+l.n)
	z1 = min(z1, l.originZ+l.n)
	for gz := gz0; gz < z1; gz++ {
		for gx := gx0; gx < x1; gx++ {
			l.normals[l.slot(gx, gz)] = l.normalAt(gx, gz)
		}
	}
}

func (l *Level) normalAt(gx, gz int) xy.Vector3 {
	// One-sided differences at the window edge, central inside.
	xl, xr := max(gx-1, l.originX), min(gx+1, l.originX+l.n-1)
	zl, zr := max(gz-1, l.originZ), min(gz+1, l.originZ+l.n-1)
	fx := (l.target[l.slot(xr, gz)] - l.target[l.slot(xl, gz)]) / (float64(xr-xl) * l.spacing)
	fz := (l.target[l.slot(gx, zr)] - l.target[l.slot(gx, zl)]) / (float64(zr-zl) * l.spacing)
	return vector3.New(-fx, 1, -fz).Normalized()
}

// settle eases display heights toward their targets, hiding the pop when
// a vertex's height changes. Outer rings skip this: at their distance the
// change is imperceptible and the multiply over N^2 cells is not.
func (l *Level) settle(dt float64) {
	if !l.smooth {
		if !l.stable {
			copy(l.display, l.target)
			l.stable = true
			l.revision++
		}
		return
	}
	step := l.rate * dt
	if step > 1 {
		step = 1
	}
	var worst float64
	for i, t := range l.target {
		d := t - l.display[i]
		if d == 0 {
			continue
		}
		l.display[i] += d * step
		if math.Abs(d) > worst {
			worst = math.Abs(d)
		}
	}
	const settled = 1e-3
	if worst > settled {
		l.stable = false
		l.revision++
	} else if !l.stable {
		copy(l.display, l.target)
		l.stable = true
		l.revision++
	}
}

// refreshRegion instantly resamples every cell within radius of a point,
// snapping display heights. Used after structure placement so the pad
// appears immediately instead of easing in.
func (l *Level) refreshRegion(x, z, radius float64) {
	if !l.ready {
		return
	}
	gx0 := int(math.Floor((x - radius) / l.spacing))
	gz0 := int(math.Floor((z - radius) / l.spacing))
	gx1 := int(math.Ceil((x + radius) / l.spacing))
	gz1 := int(math.Ceil((z + radius) / l.spacing))
	gx0 = max(gx0, l.originX)
	gz0 = max(gz0, l.originZ)
	gx1 = min(gx1, l.originX+l.n-1)
	gz1 = min(gz1, l.originZ+l.n-1)
	if gx0 > gx1 || gz0 > gz1 {
		return
	}
	l.sampleRect(gx0, gz0, gx1-gx0+1, gz1-gz0+1, true)
	l.revision++
}

// SampleHeight bilinearly interpolates the level's own target heights at a
// world position, falling back to the generator when the position is
// outside the window or the level has not been filled yet. Gameplay-facing
// height queries read through this.
func (l *Level) SampleHeight(x, z float64) float64 {
	return l.sample(l.target, x, z)
}

// SampleDisplayHeight interpolates the heights the level is rendering this
// frame rather than the ones it is easing toward. Seams and finer levels
// read their morph endpoints through this so geometry keyed to the level
// matches its mesh mid-ease, not where the mesh will eventually settle.
func (l *Level) SampleDisplayHeight(x, z float64) float64 {
	return l.sample(l.display, x, z)
}

func (l *Level) sample(heights []float64, x, z float64) float64 {
	if !l.ready {
		return l.gen.WorldHeightAt(x, z)
	}
	fx := x / l.spacing
	fz := z / l.spacing
	gx := int(math.Floor(fx))
	gz := int(math.Floor(fz))
	if gx < l.originX || gz < l.originZ || gx+1 > l.originX+l.n-1 || gz+1 > l.originZ+l.n-1 {
		return l.gen.WorldHeightAt(x, z)
	}
	tx := fx - float64(gx)
	tz := fz - float64(gz)
	h00 := heights[l.slot(gx, gz)]
	h10 := heights[l.slot(gx+1, gz)]
	h01 := heights[l.slot(gx, gz+1)]
	h11 := heights[l.slot(gx+1, gz+1)]
	h0 := h00*(1-tx) + h10*tx
	h1 := h01*(1-tx) + h11*tx
	return h0*(1-tz) + h1*tz
}

// HeightAt returns the stored target height of a logical grid vertex.
func (l *Level) HeightAt(gx, gz int) float64 {
	return l.target[l.slot(gx, gz)]
}

// DisplayHeightAt returns the rendered height of a logical grid vertex.
func (l *Level) DisplayHeightAt(gx, gz int) float64 {
	return l.display[l.slot(gx, gz)]
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
