package internal

import (
	"fmt"
	"math"

	"graphics.gd/classdb/Camera3D"
	"graphics.gd/classdb/DirectionalLight3D"
	"graphics.gd/classdb/Environment"
	"graphics.gd/classdb/Input"
	"graphics.gd/classdb/Node3D"
	"graphics.gd/classdb/WorldEnvironment"
	"graphics.gd/variant/Angle"
	"graphics.gd/variant/Color"
	"graphics.gd/variant/Euler"
	"graphics.gd/variant/Float"
	"graphics.gd/variant/Vector3"

	"the.quetzal.community/petrel/clipmap"
	"the.quetzal.community/petrel/ocean"
	"the.quetzal.community/petrel/settings"
	"the.quetzal.community/petrel/shallows"
	"the.quetzal.community/petrel/terrain"
)

// World is the root node of the terrain and ocean scene. It owns the
// engine singletons and drives them once per frame from Process: the
// focal point moves, the clipmap re-centers, the depth field re-renders
// when it has drifted far enough, and the water chunk set reconciles.
type World struct {
	Node3D.Extension[World] `gd:"PetrelWorld"`

	Light DirectionalLight3D.Instance

	// FocalPoint is the position that terrain detail and water tiles
	// follow. The camera hangs off it so flying around exercises the
	// streaming.
	FocalPoint struct {
		Node3D.Instance

		Camera Camera3D.Instance
	}

	Terrain *TerrainRenderer
	Water   *WaterRenderer

	settings  settings.Settings
	generator *terrain.Generator
	clipmaps  *clipmap.Manager
	depth     *shallows.Field
	waves     *ocean.Manager
}

func (w *World) Ready() {
	w.settings = loadSettings()
	w.generator = terrain.NewGenerator(w.settings.Seed, w.settings.Terrain)
	w.clipmaps = clipmap.NewManager(w.generator, w.settings.Clipmap)
	w.depth = shallows.NewField(w.generator, w.settings.Depth)
	w.waves = ocean.NewManager(w.depth, w.settings.Ocean)

	w.Terrain.Setup(w.clipmaps)
	w.Water.Setup(w.waves, w.depth, w.settings.Ocean)

	w.FocalPoint.Camera.AsNode3D().SetPosition(Vector3.New(0, 24, 48))
	w.FocalPoint.Camera.AsNode3D().LookAt(Vector3.Zero)

	w.Light.AsNode3D().SetRotation(Euler.Radians{X: Angle.InRadians(-math.Pi / 3), Y: Angle.InRadians(0.5)})
	w.Light.AsLight3D().SetLightEnergy(1)
	w.Light.AsLight3D().SetShadowEnabled(true)
	w.Light.SetDirectionalShadowMode(DirectionalLight3D.ShadowOrthogonal)

	env := Environment.New()
	env.SetBackgroundMode(Environment.BgClearColor)
	env.SetAmbientLightColor(Color.X11.White)
	env.SetAmbientLightSkyContribution(0)
	env.SetAmbientLightSource(Environment.AmbientSourceColor)
	env.SetAmbientLightEnergy(0.5)
	worldenv := WorldEnvironment.New()
	worldenv.SetEnvironment(env)
	w.AsNode().AddChild(worldenv.AsNode())
}

func (w *World) Process(dt Float.X) {
	w.moveFocalPoint(dt)
	pos := w.FocalPoint.AsNode3D().Position()
	x, z := float64(pos.X), float64(pos.Z)

	w.clipmaps.Update(x, z, float64(dt))
	w.depth.Update(x, z)
	w.waves.Update(x, z, float64(dt))

	w.Terrain.Refresh()
	w.Water.Refresh()

	// The focal point rests on the terrain so the camera follows hills
	// and never ends up underneath a leveled pad.
	pos.Y = Float.X(math.Max(0, w.generator.WorldHeightAt(x, z)))
	w.FocalPoint.AsNode3D().SetPosition(pos)
}

func (w *World) moveFocalPoint(dt Float.X) {
	const speed = 24
	pos := w.FocalPoint.AsNode3D().Position()
	if Input.IsKeyPressed(Input.KeyA) || Input.IsKeyPressed(Input.KeyLeft) {
		pos.X -= speed * dt
	}
	if Input.IsKeyPressed(Input.KeyD) || Input.IsKeyPressed(Input.KeyRight) {
		pos.X += speed * dt
	}
	if Input.IsKeyPressed(Input.KeyW) || Input.IsKeyPressed(Input.KeyUp) {
		pos.Z -= speed * dt
	}
	if Input.IsKeyPressed(Input.KeyS) || Input.IsKeyPressed(Input.KeyDown) {
		pos.Z += speed * dt
	}
	w.FocalPoint.AsNode3D().SetPosition(pos)
}

// PlaceStructure registers a leveled pad under a structure footprint and
// forces the affected terrain to rebuild immediately, with no smoothing
// delay. The returned error is [terrain.ErrOverlap] when the footprint
// collides with an existing pad.
func (w *World) PlaceStructure(center Vector3.XYZ, halfX, halfZ, rotation Float.X, mode terrain.AreaMode) error {
	area := terrain.LeveledArea{
		CenterX: float64(center.X),
		CenterZ: float64(center.Z),
		HalfX:   float64(halfX),
		HalfZ:   float64(halfZ),
		Target:  float64(center.Y),
		Angle:   float64(rotation),
		Mode:    mode,
	}
	if err := w.generator.Areas().Add(area); err != nil {
		return err
	}
	radius := math.Hypot(float64(halfX), float64(halfZ)) + w.settings.Terrain.LevelTransition
	w.clipmaps.ForceRefreshRegion(float64(center.X), float64(center.Z), radius)
	return nil
}

// RemoveStructure reverts the terrain under a demolished structure.
func (w *World) RemoveStructure(center Vector3.XYZ, tolerance, radius Float.X) bool {
	if !w.generator.Areas().Remove(float64(center.X), float64(center.Z), float64(tolerance)) {
		return false
	}
	w.clipmaps.ForceRefreshRegion(float64(center.X), float64(center.Z), float64(radius))
	return true
}

// WorldHeightAt is the cheap single-point height query for movement and
// placement logic.
func (w *World) WorldHeightAt(x, z Float.X) Float.X {
	return Float.X(w.generator.WorldHeightAt(float64(x), float64(z)))
}

// NormalYAt is the walkability slope query.
func (w *World) NormalYAt(x, z Float.X) Float.X {
	return Float.X(w.generator.NormalYAt(float64(x), float64(z)))
}

// WaveHeightAt approximates the water surface height for floating objects.
func (w *World) WaveHeightAt(x, z Float.X) Float.X {
	return Float.X(w.waves.WaveHeightAt(float64(x), float64(z)))
}

// Profile summarizes the per-frame cost drivers.
func (w *World) Profile() string {
	return fmt.Sprintf("triangles=%d stable=%d/%d chunks=%d cells=%d",
		w.clipmaps.TriangleCount(),
		w.clipmaps.StableLevels(), w.settings.Clipmap.Levels,
		w.waves.Chunks(),
		w.generator.CachedCells(),
	)
}

func loadSettings() settings.Settings {
	s, err := settings.Load("petrel.yaml")
	if err != nil {
		// The defaults are a complete configuration; a missing or
		// broken settings file is not fatal.
		fmt.Println("petrel: using default settings:", err)
		return settings.Default()
	}
	return s
}
