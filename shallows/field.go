// Package shallows maintains the small depth field texture the water
// shader reads for shoreline damping and foam. The field renders the very
// same terrain functions the clipmap mesh samples, so the geometry and
// the water's idea of the coastline can never drift apart.
package shallows

import (
	"math"

	"the.quetzal.community/petrel/settings"
	"the.quetzal.community/petrel/terrain"
)

// Field is a square two-channel buffer centered near the viewer:
// channel 0 is the terrain height normalized to [0,1], channel 1 the
// continent mask. It recenters with hysteresis, so standing still or
// small movements cost nothing per frame.
type Field struct {
	cfg settings.Depth
	gen *terrain.Generator

	centerX, centerZ float64
	ready            bool
	revision         uint64

	pixels []float32 // interleaved height, mask
}

// NewField allocates the buffer once; it is reused for every recenter.
func NewField(gen *terrain.Generator, cfg settings.Depth) *Field {
	return &Field{
		cfg:    cfg,
		gen:    gen,
		pixels: make([]float32, cfg.Resolution*cfg.Resolution*2),
	}
}

// Revision increments on every re-render, so the texture upload can be
// skipped on the (vast majority of) frames where nothing changed.
func (f *Field) Revision() uint64 { return f.revision }

// Resolution returns texels per side.
func (f *Field) Resolution() int { return f.cfg.Resolution }

// Center returns the world position the field is currently rendered
// around, snapped to the texel grid.
func (f *Field) Center() (x, z float64) { return f.centerX, f.centerZ }

// Pixels exposes the interleaved height/mask buffer for texture upload.
// Valid until the next Update that returns true.
func (f *Field) Pixels() []float32 { return f.pixels }

// Range returns the world units covered per texture side.
func (f *Field) Range() float64 { return f.cfg.Range }

// HeightScale forwards the generator's vertical scale, so a sampler can
// turn the normalized red channel back into world heights.
func (f *Field) HeightScale() float64 { return f.gen.HeightScale() }

// MinDepth forwards the generator's ocean floor clamp, the zero point of
// the normalized height encoding.
func (f *Field) MinDepth() float64 { return f.gen.MinDepth() }

// Update recenters and re-renders the field if the viewer moved past the
// hysteresis distance. Returns whether the buffer changed. The early exit
// is the whole point: a full render costs Resolution^2 height queries and
// must not happen per frame.
func (f *Field) Update(viewerX, viewerZ float64) bool {
	if f.ready &&
		math.Abs(viewerX-f.centerX) < f.cfg.Hysteresis &&
		math.Abs(viewerZ-f.centerZ) < f.cfg.Hysteresis {
		return false
	}
	texel := f.cfg.Range / float64(f.cfg.Resolution)
	// Snapping the center to the texel grid keeps texel positions stable
	// across recenters; without it the shoreline cutoff would swim.
	f.centerX = math.Floor(viewerX/texel) * texel
	f.centerZ = math.Floor(viewerZ/texel) * texel
	f.render()
	f.ready = true
	f.revision++
	return true
}

// render fills every texel from the shared terrain functions. Edge texels
// fade toward the deep sentinel instead of hard-clipping, so the water
// beyond the field's range doesn't flicker at the boundary.
func (f *Field) render() {
	resolution := f.cfg.Resolution
	texel := f.cfg.Range / float64(resolution)
	minX := f.centerX - f.cfg.Range/2
	minZ := f.centerZ - f.cfg.Range/2
	for j := range resolution {
		z := minZ + (float64(j)+0.5)*texel
		for i := range resolution {
			x := minX + (float64(i)+0.5)*texel
			height := f.normalized(f.gen.NormalizedHeightAt(x, z))
			mask := f.gen.ContinentMaskAt(x, z)
			if fade := f.edgeFade(i, j); fade < 1 {
				height *= fade // sentinel is 0, the deepest value
				mask *= fade
			}
			f.pixels[(j*resolution+i)*2] = float32(height)
			f.pixels[(j*resolution+i)*2+1] = float32(mask)
		}
	}
}

// normalized maps terrain heights from [MinDepth,1] onto [0,1], with the
// deep sentinel at exactly 0.
func (f *Field) normalized(h float64) float64 {
	minDepth := f.gen.MinDepth()
	return (h - minDepth) / (1 - minDepth)
}

func (f *Field) edgeFade(i, j int) float64 {
	fade := f.cfg.EdgeFade
	if fade <= 0 {
		return 1
	}
	edge := min(min(i, j), min(f.cfg.Resolution-1-i, f.cfg.Resolution-1-j))
	if edge >= fade {
		return 1
	}
	return float64(edge) / float64(fade)
}

// DepthAt returns the water depth in world units at a position, bilinear
// over the field. Positions outside the rendered range read as deep
// water, which leaves far-out waves undamped, exactly like the shader's
// own sampling of the texture.
func (f *Field) DepthAt(x, z float64) float64 {
	height01, _ := f.Sample(x, z)
	minDepth := f.gen.MinDepth()
	height := height01*(1-minDepth) + minDepth // undo normalized
	world := height * f.gen.HeightScale()
	if world >= 0 {
		return 0
	}
	return -world
}

// Sample reads the two channels at a world position with bilinear
// filtering, mirroring the GPU's sampler.
func (f *Field) Sample(x, z float64) (height01, mask float64) {
	if !f.ready {
		return 0, 0
	}
	resolution := f.cfg.Resolution
	texel := f.cfg.Range / float64(resolution)
	fx := (x-(f.centerX-f.cfg.Range/2))/texel - 0.5
	fz := (z-(f.centerZ-f.cfg.Range/2))/texel - 0.5
	i := int(math.Floor(fx))
	j := int(math.Floor(fz))
	if i < 0 || j < 0 || i+1 >= resolution || j+1 >= resolution {
		return 0, 0 // deep sentinel beyond the field
	}
	tx := fx - float64(i)
	tz := fz - float64(j)
	read := func(i, j int) (float64, float64) {
		return float64(f.pixels[(j*resolution+i)*2]), float64(f.pixels[(j*resolution+i)*2+1])
	}
	h00, m00 := read(i, j)
	h10, m10 := read(i+1, j)
	h01, m01 := read(i, j+1)
	h11, m11 := read(i+1, j+1)
	height01 = (h00*(1-tx)+h10*tx)*(1-tz) + (h01*(1-tx)+h11*tx)*tz
	mask = (m00*(1-tx)+m10*tx)*(1-tz) + (m01*(1-tx)+m11*tx)*tz
	return height01, mask
}
