package clipmap

import (
	"grow.graphics/xy"
	"grow.graphics/xy/vector3"
)

// Mesh is the renderable geometry of one level or seam, in coordinates
// local to the manager's snapped origin so every surface shares one
// transform.
type Mesh struct {
	Positions []xy.Vector3
	Normals   []xy.Vector3
	Morph     []float32 // coarse height per vertex, the LOD morph endpoint
	Indices   []int32
}

// BuildMesh assembles the level's current vertex grid. Levels with a finer
// ring inside them cut out the interior cells that ring covers; only the
// innermost level passes finer == nil and renders its full grid.
func (l *Level) BuildMesh(originX, originZ float64, finer *Level) Mesh {
	mesh := Mesh{
		Positions: make([]xy.Vector3, l.n*l.n),
		Normals:   make([]xy.Vector3, l.n*l.n),
		Morph:     make([]float32, l.n*l.n),
	}
	// A physical slot holds exactly one logical coordinate of the current
	// window; recover it to place the vertex in world space.
	for sz := range l.n {
		gz := l.originZ + mod(sz-l.originZ, l.n)
		for sx := range l.n {
			gx := l.originX + mod(sx-l.originX, l.n)
			i := sz*l.n + sx
			mesh.Positions[i] = vector3.New(
				float64(gx)*l.spacing-originX,
				l.display[i],
				float64(gz)*l.spacing-originZ,
			)
			mesh.Normals[i] = l.normals[i]
			mesh.Morph[i] = float32(l.coarse[i])
		}
	}

	var cut func(gx, gz int) bool
	if finer != nil {
		// Skip quads fully inside the finer ring's coverage, inset by one
		// fine cell so the seam strip has both edges to bridge.
		fx0, fz0 := finer.Origin()
		fx0 += finer.spacing
		fz0 += finer.spacing
		fx1 := fx0 + finer.Extent() - 2*finer.spacing
		fz1 := fz0 + finer.Extent() - 2*finer.spacing
		cut = func(gx, gz int) bool {
			x0, z0 := float64(gx)*l.spacing, float64(gz)*l.spacing
			return x0 >= fx0 && z0 >= fz0 && x0+l.spacing <= fx1 && z0+l.spacing <= fz1
		}
	}
	mesh.Indices = make([]int32, 0, (l.n-1)*(l.n-1)*6)
	for gz := l.originZ; gz < l.originZ+l.n-1; gz++ {
		for gx := l.originX; gx < l.originX+l.n-1; gx++ {
			if cut != nil && cut(gx, gz) {
				continue
			}
			a := int32(l.slot(gx, gz))
			b := int32(l.slot(gx+1, gz))
			c := int32(l.slot(gx, gz+1))
			d := int32(l.slot(gx+1, gz+1))
			mesh.Indices = append(mesh.Indices, a, b, c, b, d, c)
		}
	}
	return mesh
}
