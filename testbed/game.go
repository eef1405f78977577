// Package testbed is a minimal example host for the engine package: a
// fly camera over a single imported model, demonstrating the
// Boot/Initialize/Update/Render/OnResize/Shutdown hook sequence.
//
// Grounded on the teacher's testbed/game.go (FnInitialize/FnUpdate wiring
// a WASD fly camera against core.InputIsKeyDown, a periodic FPS log
// line), generalized from the teacher's fixed skybox/car/sponza scene
// setup to this engine's asset-import + scene-node path.
package testbed

import (
	"github.com/hadean/forge/engine"
	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/math"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	frame int
}

// moveSpeed and lookSpeed mirror the teacher's tempMoveSpeed fly-camera
// constant, scaled to this engine's deltaTime-in-seconds convention.
const (
	moveSpeed = 5.0
	lookSpeed = 1.0
)

func NewTestGame() (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartPosX:   100,
				StartPosY:   100,
				StartWidth:  1280,
				StartHeight: 720,
				Name:        "Forge Testbed",
				LogLevel:    core.DebugLevel,
				AssetRoot:   "assets",
			},
			State: &gameState{},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting testbed...")
	return nil
}

// Initialize imports the sample model, waits for its one embedded static
// mesh to load, and places it as a single child of the scene root.
func (g *TestGame) Initialize() error {
	core.LogDebug("testbed initialize")

	e := g.Engine
	e.Camera().SetPosition(math.NewVec3(0, 0, 3))

	assetsMgr := e.Assets()
	modelUUID, err := assetsMgr.ImportAsset("triangle.gltf")
	if err != nil {
		core.LogWarn("testbed: no sample model to import: %s", err.Error())
		return nil
	}

	job := assetsMgr.Acquire(modelUUID)
	assetsMgr.WaitLoaded(job)

	embedded := assetsMgr.GetEmbeddedAssets(modelUUID)
	for _, child := range embedded {
		meshJob := assetsMgr.Acquire(child)
		if !assetsMgr.WaitLoaded(meshJob) {
			continue
		}

		root := e.Scene().Root()
		node := e.Scene().AddChild(root, "triangle", *math.TransformCreate())
		e.Scene().Node(node).StaticMeshUUID = uint64(child)
	}

	return nil
}

// Update drives a simple WASD + arrow-key fly camera and logs FPS every
// couple of seconds.
func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	camera := g.Engine.Camera()
	dt := float32(deltaTime)

	if core.InputIsKeyDown(core.KEY_W) {
		camera.MoveForward(moveSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_S) {
		camera.MoveBackward(moveSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_A) {
		camera.MoveLeft(moveSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_D) {
		camera.MoveRight(moveSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_SPACE) {
		camera.MoveUp(moveSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_LEFT) {
		camera.Yaw(-lookSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_RIGHT) {
		camera.Yaw(lookSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_UP) {
		camera.Pitch(lookSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_DOWN) {
		camera.Pitch(-lookSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_ESCAPE) {
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, g, core.EventContext{})
	}

	state.frame++
	if state.frame%120 == 0 {
		fps, frameTime := core.MetricsFrame()
		pos := camera.GetPosition()
		core.LogInfo("FPS: %5.1f (%4.1fms) pos=[%7.3f %7.3f %7.3f]", fps, frameTime, pos.X, pos.Y, pos.Z)
	}

	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("testbed resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	return nil
}
