package main

import (
	"graphics.gd/classdb"
	"graphics.gd/classdb/SceneTree"
	"graphics.gd/startup"
	"the.quetzal.community/petrel/internal"
)

func main() {
	classdb.Register[internal.World]()
	classdb.Register[internal.TerrainRenderer]()
	classdb.Register[internal.WaterRenderer]()
	startup.LoadingScene()
	SceneTree.Add(new(internal.World))
	startup.Scene()
}
