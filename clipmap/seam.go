package clipmap

import (
	"grow.graphics/xy"
	"grow.graphics/xy/vector3"
)

// Seam bridges the boundary between a fine level and the next coarser
// one. For every boundary sample position it keeps two heights: the fine
// level's rendered vertex height and the coarse level's rendered height
// interpolated at the same position. Both edges read display heights, not
// targets, so the strip stays glued to the two meshes even while their
// smoothing is mid-ease; built from those pairs it exactly matches both
// meshes along its edges and no T-junction crack can open.
type Seam struct {
	fine, coarse *Level

	originX, originZ int // fine-level window the seam was built for
	fineRev          uint64
	coarseRev        uint64
	ready            bool
	revision         uint64

	perimX, perimZ []float64 // boundary sample positions, world space
	inner, outer   []float64 // fine / coarse heights per sample
}

func newSeam(fine, coarse *Level) *Seam {
	samples := 4 * (fine.n - 1)
	return &Seam{
		fine:   fine,
		coarse: coarse,
		perimX: make([]float64, samples),
		perimZ: make([]float64, samples),
		inner:  make([]float64, samples),
		outer:  make([]float64, samples),
	}
}

// Revision increments whenever the seam geometry changes.
func (s *Seam) Revision() uint64 { return s.revision }

// update rebuilds the seam heights, but only when the fine window has
// re-snapped or either neighboring level changed its data.
func (s *Seam) update() {
	if s.ready && s.originX == s.fine.originX && s.originZ == s.fine.originZ &&
		s.fineRev == s.fine.revision && s.coarseRev == s.coarse.revision {
		return
	}
	s.originX, s.originZ = s.fine.originX, s.fine.originZ
	s.fineRev, s.coarseRev = s.fine.revision, s.coarse.revision
	s.ready = true
	s.revision++

	n := s.fine.n
	i := 0
	walk := func(gx, gz int) {
		x := float64(gx) * s.fine.spacing
		z := float64(gz) * s.fine.spacing
		s.perimX[i] = x
		s.perimZ[i] = z
		s.inner[i] = s.fine.DisplayHeightAt(gx, gz)
		s.outer[i] = s.coarse.SampleDisplayHeight(x, z)
		i++
	}
	// Clockwise around the fine window's perimeter, corners once each.
	for gx := s.originX; gx < s.originX+n-1; gx++ {
		walk(gx, s.originZ)
	}
	for gz := s.originZ; gz < s.originZ+n-1; gz++ {
		walk(s.originX+n-1, gz)
	}
	for gx := s.originX + n - 1; gx > s.originX; gx-- {
		walk(gx, s.originZ+n-1)
	}
	for gz := s.originZ + n - 1; gz > s.originZ; gz-- {
		walk(s.originX, gz)
	}
}

// Samples exposes the boundary sample count for tests and the renderer.
func (s *Seam) Samples() int { return len(s.perimX) }

// Sample returns one boundary position with its fine and coarse heights.
func (s *Seam) Sample(i int) (x, z, fine, coarse float64) {
	return s.perimX[i], s.perimZ[i], s.inner[i], s.outer[i]
}

// BuildMesh assembles the bridging strip: per boundary sample one vertex
// at the fine height and one at the coarse height, quads between
// neighboring samples. The strip is vertical-only geometry; when the two
// heights agree it degenerates to a line and renders nothing visible,
// which is exactly right.
func (s *Seam) BuildMesh(originX, originZ float64) Mesh {
	samples := len(s.perimX)
	mesh := Mesh{
		Positions: make([]xy.Vector3, samples*2),
		Normals:   make([]xy.Vector3, samples*2),
		Morph:     make([]float32, samples*2),
		Indices:   make([]int32, 0, samples*6),
	}
	for i := range samples {
		x := s.perimX[i] - originX
		z := s.perimZ[i] - originZ
		mesh.Positions[i*2] = vector3.New(x, s.inner[i], z)
		mesh.Positions[i*2+1] = vector3.New(x, s.outer[i], z)
		up := vector3.New(0, 1, 0)
		mesh.Normals[i*2] = up
		mesh.Normals[i*2+1] = up
		mesh.Morph[i*2] = float32(s.outer[i])
		mesh.Morph[i*2+1] = float32(s.outer[i])
	}
	for i := range samples {
		j := (i + 1) % samples
		a := int32(i * 2)
		b := int32(i*2 + 1)
		c := int32(j * 2)
		d := int32(j*2 + 1)
		mesh.Indices = append(mesh.Indices, a, c, b, b, c, d)
	}
	return mesh
}
