package engine

// Game is the host application's hook table, called at the points named
// in parentheses during Engine.Initialize/Run/Shutdown. Engine is wired
// in by New before FnBoot runs, so the hooks can reach the scene, asset
// manager, and resource pool through it.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Engine            *Engine
	State             interface{}

	FnBoot       Boot
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

// Boot runs once, before the renderer and asset manager exist, for
// config-only setup (e.g. choosing AssetRoot).
type Boot func() error

// Initialize runs once the renderer, asset pool, and scene are live, for
// importing assets and populating the initial scene tree.
type Initialize func() error

// Update runs every frame before BeginFrame, for input and game logic.
type Update func(deltaTime float64) error

// Render runs every frame after BeginFrame and before the graph is walked
// (the scene is parsed into render packets during that walk), for any last
// per-frame state a game wants reflected this frame.
type Render func(deltaTime float64) error

// OnResize runs when the framebuffer dimensions change.
type OnResize func(width uint32, height uint32) error

// Shutdown runs once, before the engine tears down its own subsystems.
type Shutdown func() error
