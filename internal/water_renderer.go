package internal

import (
	"graphics.gd/classdb/MeshInstance3D"
	"graphics.gd/classdb/Node3D"
	"graphics.gd/classdb/PlaneMesh"
	"graphics.gd/classdb/Resource"
	"graphics.gd/classdb/Shader"
	"graphics.gd/classdb/ShaderMaterial"
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector2"
	"graphics.gd/variant/Vector3"

	"the.quetzal.community/petrel/ocean"
	"the.quetzal.community/petrel/settings"
	"the.quetzal.community/petrel/shallows"
)

// WaterRenderer keeps one mesh instance per live water chunk. Every
// instance shares one subdivided plane mesh and one shader material; the
// Gerstner displacement runs on the GPU with the same wave parameters the
// CPU queries use, so a floating object and the surface under it agree.
type WaterRenderer struct {
	Node3D.Extension[WaterRenderer] `gd:"PetrelWaterRenderer"`

	manager  *ocean.Manager
	shallows *shallows.Field
	depthmap *depthTexture

	plane    PlaneMesh.Instance
	material ShaderMaterial.Instance

	tiles map[ocean.Chunk]MeshInstance3D.Instance
}

// Setup hands the renderer its data sources and hooks the chunk
// lifecycle callbacks; the manager diffs the wanted set, the renderer
// only ever reacts.
func (wr *WaterRenderer) Setup(manager *ocean.Manager, field *shallows.Field, cfg settings.Ocean) {
	wr.manager = manager
	wr.shallows = field
	wr.depthmap = newDepthTexture(field)
	wr.tiles = make(map[ocean.Chunk]MeshInstance3D.Instance)

	size := Float.X(cfg.ChunkSize)
	wr.plane = PlaneMesh.New()
	wr.plane.SetSize(Vector2.New(size, size))
	// One subdivision per world unit keeps the Gerstner displacement
	// smooth without the vertex count mattering next to the terrain's.
	wr.plane.SetSubdivideWidth(int(cfg.ChunkSize))
	wr.plane.SetSubdivideDepth(int(cfg.ChunkSize))

	wr.material = ShaderMaterial.New()
	wr.material.SetShader(Resource.Load[Shader.Instance]("res://shader/water.gdshader"))
	for i, wave := range cfg.Waves {
		prefix := []string{"wave_a", "wave_b", "wave_c", "wave_d"}[i]
		wr.material.SetShaderParameter(prefix, Vector3.XYZ{
			X: Float.X(wave.DirectionX),
			Y: Float.X(wave.Steepness),
			Z: Float.X(wave.DirectionZ),
		})
		wr.material.SetShaderParameter(prefix+"_wavelength", wave.Wavelength)
	}
	wr.material.SetShaderParameter("full_depth", cfg.FullDepth)
	wr.material.SetShaderParameter("clamp_depth", cfg.ClampDepth)
	wr.material.SetShaderParameter("foam_depth", cfg.FoamDepth)
	wr.material.SetShaderParameter("foam_steepest", cfg.FoamSteepest)

	manager.OnCreate = wr.create
	manager.OnRemove = wr.remove
}

func (wr *WaterRenderer) create(c ocean.Chunk) {
	tile := MeshInstance3D.New()
	tile.SetMesh(wr.plane.AsMesh())
	tile.AsGeometryInstance3D().SetMaterialOverride(wr.material.AsMaterial())
	x, z := wr.manager.ChunkOrigin(c)
	half := Float.X(wr.manager.ChunkSize() / 2)
	tile.AsNode3D().SetPosition(Vector3.XYZ{X: Float.X(x) + half, Z: Float.X(z) + half})
	wr.AsNode().AddChild(tile.AsNode())
	wr.tiles[c] = tile
}

func (wr *WaterRenderer) remove(c ocean.Chunk) {
	tile, ok := wr.tiles[c]
	if !ok {
		return
	}
	delete(wr.tiles, c)
	tile.AsNode().QueueFree()
}

// Refresh advances the shader clock and re-uploads the depth texture
// when the field re-rendered.
func (wr *WaterRenderer) Refresh() {
	if wr.manager == nil {
		return
	}
	wr.material.SetShaderParameter("wave_time", wr.manager.Time())
	if wr.depthmap.refresh() {
		cx, cz := wr.shallows.Center()
		wr.material.SetShaderParameter("depth_texture", wr.depthmap.texture)
		wr.material.SetShaderParameter("depth_center", Vector2.New(Float.X(cx), Float.X(cz)))
		wr.material.SetShaderParameter("depth_range", wr.shallows.Range())
		wr.material.SetShaderParameter("height_scale", wr.shallows.HeightScale())
		wr.material.SetShaderParameter("min_depth", wr.shallows.MinDepth())
	}
}
