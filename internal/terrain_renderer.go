package internal

import (
	"graphics.gd/classdb/ArrayMesh"
	"graphics.gd/classdb/Mesh"
	"graphics.gd/classdb/MeshInstance3D"
	"graphics.gd/classdb/Node3D"
	"graphics.gd/classdb/Resource"
	"graphics.gd/classdb/Shader"
	"graphics.gd/classdb/ShaderMaterial"
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector3"
	"grow.graphics/xy"

	"the.quetzal.community/petrel/clipmap"
)

// TerrainRenderer keeps one mesh surface per clipmap level and one per
// seam strip, rebuilding a surface only when its revision moved. All
// surfaces are positioned relative to the manager's snapped origin, so
// re-centering the clipmap is a single node transform update.
type TerrainRenderer struct {
	Node3D.Extension[TerrainRenderer] `gd:"PetrelTerrainRenderer"`

	manager *clipmap.Manager

	levels []*terrainSurface
	seams  []*terrainSurface

	snappedX, snappedZ float64
}

type terrainSurface struct {
	instance MeshInstance3D.Instance
	mesh     ArrayMesh.Instance
	material ShaderMaterial.Instance
	revision uint64
	built    bool
}

// Setup hands the renderer its data source. Called from the world's
// Ready, after the clipmap manager exists; the renderer creates one mesh
// instance per level up front since the level count never changes.
func (tr *TerrainRenderer) Setup(manager *clipmap.Manager) {
	tr.manager = manager

	shader := Resource.Load[Shader.Instance]("res://shader/terrain.gdshader")
	for _, level := range manager.Levels() {
		material := ShaderMaterial.New()
		material.SetShader(shader)
		material.SetShaderParameter("half_extent", level.Extent()/2)
		material.SetShaderParameter("morph_start", clipmap.MorphStart)
		material.SetShaderParameter("morph_width", clipmap.MorphWidth)
		tr.levels = append(tr.levels, tr.newSurface(material))
	}
	// A seam strip shares its fine level's material: its vertices sit on
	// the fine border, so the same morph ramp keeps both in lockstep.
	for i := range manager.Seams() {
		tr.seams = append(tr.seams, tr.newSurface(tr.levels[i+1].material))
	}
}

func (tr *TerrainRenderer) newSurface(material ShaderMaterial.Instance) *terrainSurface {
	s := &terrainSurface{
		instance: MeshInstance3D.New(),
		mesh:     ArrayMesh.New(),
		material: material,
	}
	s.instance.SetMesh(s.mesh.AsMesh())
	tr.AsNode().AddChild(s.instance.AsNode())
	return s
}

// Refresh rebuilds whichever surfaces changed since the last frame.
func (tr *TerrainRenderer) Refresh() {
	if tr.manager == nil {
		return
	}
	ox, oz := tr.manager.SnappedOrigin()
	moved := ox != tr.snappedX || oz != tr.snappedZ
	if moved {
		tr.snappedX, tr.snappedZ = ox, oz
		tr.AsNode3D().SetPosition(Vector3.XYZ{X: Float.X(ox), Z: Float.X(oz)})
	}

	levels := tr.manager.Levels()
	for i, level := range levels {
		s := tr.levels[i]
		// The cutout in this level depends on where the finer ring sits,
		// so the finer revision participates in the rebuild key.
		key := level.Revision()
		finer := tr.manager.Finer(level)
		if finer != nil {
			key += finer.Revision()
		}
		if s.built && !moved && s.revision == key {
			continue
		}
		s.revision = key
		tr.upload(s, level.BuildMesh(ox, oz, finer))
	}
	for i, seam := range tr.manager.Seams() {
		s := tr.seams[i]
		if s.built && !moved && s.revision == seam.Revision() {
			continue
		}
		s.revision = seam.Revision()
		tr.upload(s, seam.BuildMesh(ox, oz))
	}
}

func (tr *TerrainRenderer) upload(s *terrainSurface, geometry clipmap.Mesh) {
	if s.built {
		s.mesh.ClearSurfaces()
	}
	if len(geometry.Indices) == 0 {
		s.built = true
		return
	}
	positions := make([]Vector3.XYZ, len(geometry.Positions))
	normals := make([]Vector3.XYZ, len(geometry.Normals))
	for i := range geometry.Positions {
		positions[i] = toVector3(geometry.Positions[i])
		normals[i] = toVector3(geometry.Normals[i])
	}
	attributes := [Mesh.ArrayMax]any{
		Mesh.ArrayVertex:  positions,
		Mesh.ArrayNormal:  normals,
		Mesh.ArrayCustom0: geometry.Morph,
		Mesh.ArrayIndex:   geometry.Indices,
	}
	ArrayMesh.Expanded(s.mesh).AddSurfaceFromArrays(Mesh.PrimitiveTriangles, attributes[:], nil, nil,
		Mesh.ArrayFormatVertex|Mesh.ArrayFormatNormal|Mesh.ArrayFormatIndex|
			Mesh.ArrayFormat(Mesh.ArrayCustomRFloat)<<Mesh.ArrayFormatCustom0Shift,
	)
	s.instance.SetSurfaceOverrideMaterial(0, s.material.AsMaterial())
	s.built = true
}

func toVector3(v xy.Vector3) Vector3.XYZ {
	return Vector3.XYZ{X: Float.X(v[0]), Y: Float.X(v[1]), Z: Float.X(v[2])}
}
