// Package engine wires the asset manager, renderer resource pool, render
// graph, frame scheduler, and scene tree into the host application's
// boot/run/shutdown lifecycle (§4.7, §5, §9).
//
// Grounded on the teacher's engine/engine.go New/Initialize/Run/Shutdown
// shape (platform startup, input/event subsystem bring-up, a fixed-step
// main loop with sleep-to-target-frame-time), generalized from the
// teacher's renderer.Renderer + systems.SystemManager wiring to this
// engine's respool/rendergraph/scheduler/assets stack.
package engine

import (
	"fmt"

	"github.com/hadean/forge/engine/assets"
	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
	"github.com/hadean/forge/engine/math"
	"github.com/hadean/forge/engine/platform"
	"github.com/hadean/forge/engine/rendergraph"
	"github.com/hadean/forge/engine/renderer/components"
	"github.com/hadean/forge/engine/renderer/respool"
	"github.com/hadean/forge/engine/renderer/vulkan"
	"github.com/hadean/forge/engine/scene"
	"github.com/hadean/forge/engine/scheduler"
	"github.com/hadean/forge/engine/settings"
)

// targetFrameSeconds paces the main loop the way the teacher's Run loop
// did, sleeping off whatever time is left once a frame completes early.
const targetFrameSeconds = 1.0 / 60.0

// transferBufferSize bounds in-flight texture/mesh upload staging per
// §6's defaults table ("transfer buffer size | 512 MiB").
const transferBufferSize = 512 * 1024 * 1024

const (
	defaultFovRadians = 45.0 * (3.14159265 / 180.0)
	nearClip          = 0.1
	farClip           = 1000.0
)

// Engine owns every subsystem a Game's hooks are allowed to reach through
// its Game.Engine back-pointer.
type Engine struct {
	game     *Game
	platform *platform.Platform
	clock    *core.Clock

	isRunning   bool
	isSuspended bool
	width       uint32
	height      uint32
	lastTime    float64

	renderer *vulkan.VulkanRenderer
	pool     *respool.Manager
	assets   *assets.Manager
	resolver *assetResolver
	graph    *rendergraph.Graph
	sched    *scheduler.Scheduler
	scene        *scene.Scene
	settings     settings.Settings
	settingsPath string
	camera       *components.Camera

	defaultMaterial handle.Handle
}

// New constructs an Engine bound to game; Initialize performs the actual
// subsystem bring-up.
func New(game *Game) (*Engine, error) {
	if game == nil {
		return nil, fmt.Errorf("engine: New: game is nil")
	}
	if game.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine: New: game.ApplicationConfig is nil")
	}

	p, err := platform.New()
	if err != nil {
		return nil, fmt.Errorf("engine: New: platform.New: %w", err)
	}

	e := &Engine{
		game:     game,
		platform: p,
		clock:    core.NewClock(),
		width:    game.ApplicationConfig.StartWidth,
		height:   game.ApplicationConfig.StartHeight,
	}
	game.Engine = e
	return e, nil
}

// Scene returns the live scene tree, for a Game's Initialize/Update
// hooks to populate or walk.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Assets returns the live asset manager.
func (e *Engine) Assets() *assets.Manager { return e.assets }

// Pool returns the live renderer resource pool.
func (e *Engine) Pool() *respool.Manager { return e.pool }

// Camera returns the default scene camera.
func (e *Engine) Camera() *components.Camera { return e.camera }

// DefaultMaterial returns the fallback material used by parse_scene
// whenever a node has no material override resolved yet (§4.4, §8 Scn-3).
func (e *Engine) DefaultMaterial() handle.Handle { return e.defaultMaterial }

// Settings returns the currently applied runtime settings.
func (e *Engine) Settings() settings.Settings { return e.settings }

// ApplySettings implements §4.9's runtime-mutable settings flow: validate
// next, and on a graph-affecting change (MSAA, frames-in-flight) wait for
// the GPU to idle before resizing the scheduler's per-frame state and
// recompiling the render graph (Scn-5); on an anisotropy change, recreate
// the default sampler and reupdate every material bound to it. Persists
// the new settings to disk on success.
func (e *Engine) ApplySettings(next settings.Settings) error {
	current := e.settings
	graphAffecting, err := settings.Apply(current, next)
	if err != nil {
		return err
	}

	anisotropyChanged := settings.AnisotropyChanged(current, next)
	if graphAffecting || anisotropyChanged {
		if err := e.renderer.WaitIdle(); err != nil {
			return fmt.Errorf("engine: apply settings: wait idle: %w", err)
		}
	}
	if graphAffecting {
		if next.FramesInFlight != current.FramesInFlight {
			e.pool.SetFramesInFlight(next.FramesInFlight)
			e.sched.SetFramesInFlight(next.FramesInFlight)
		}
		if err := e.sched.SetMSAA(uint32(next.MSAA)); err != nil {
			return fmt.Errorf("engine: apply settings: set msaa: %w", err)
		}
	}
	if anisotropyChanged {
		e.pool.SetAnisotropy(next.Anisotropy)
	}

	e.settings = next
	return settings.Save(e.settingsPath, next)
}

// Initialize brings up every subsystem in dependency order: input/event,
// platform window, renderer, resource pool, asset manager, render
// graph, scheduler, and scene, then calls the game's Boot and Initialize
// hooks at the points each becomes usable.
func (e *Engine) Initialize() error {
	config := e.game.ApplicationConfig
	core.SetLevel(config.LogLevel)

	if err := core.InputInitialize(); err != nil {
		return fmt.Errorf("engine: InputInitialize: %w", err)
	}
	if !core.EventInitialize() {
		return fmt.Errorf("engine: EventInitialize failed")
	}
	if err := core.MetricsInitialize(); err != nil {
		return fmt.Errorf("engine: MetricsInitialize: %w", err)
	}
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onQuit)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	if e.game.FnBoot != nil {
		if err := e.game.FnBoot(); err != nil {
			return fmt.Errorf("engine: game boot: %w", err)
		}
	}

	if err := e.platform.Startup(config.Name, config.StartPosX, config.StartPosY, e.width, e.height); err != nil {
		return fmt.Errorf("engine: platform startup: %w", err)
	}

	e.renderer = vulkan.New(e.platform)
	if err := e.renderer.Initialize(config.Name, e.width, e.height); err != nil {
		return fmt.Errorf("engine: renderer initialize: %w", err)
	}

	settingsPath := config.SettingsPath
	if settingsPath == "" {
		settingsPath = "settings.toml"
	}
	loaded, err := settings.Load(settingsPath)
	if err != nil {
		return fmt.Errorf("engine: settings load: %w", err)
	}
	e.settings = loaded
	e.settingsPath = settingsPath

	driver := respool.NewVulkanDriver(e.renderer)
	e.pool = respool.New(driver, e.settings.FramesInFlight, transferBufferSize)
	e.pool.SetAnisotropy(e.settings.Anisotropy)

	e.assets = assets.New()
	assetRoot := config.AssetRoot
	if assetRoot == "" {
		assetRoot = "assets"
	}
	if err := e.assets.Init(assetRoot); err != nil {
		core.LogWarn("engine: asset manager init: %s", err.Error())
	}
	e.assets.SetGPUBackend(e.pool)
	e.resolver = newAssetResolver(e.assets)

	e.graph = rendergraph.New(e.pool, e.width, e.height, uint32(e.settings.MSAA), e.settings.FramesInFlight)
	e.declareGraph()
	if err := e.graph.Compile(); err != nil {
		return fmt.Errorf("engine: graph compile: %w", err)
	}

	e.sched = scheduler.New(e.graph, e.pool, e.renderer, e.renderer, e.settings.FramesInFlight, e.width, e.height, uint32(e.settings.MSAA))

	scenePath := config.DefaultScenePath
	if scenePath == "" {
		scenePath = "scenes/main.hascene"
	}
	if _, err := e.assets.ImportScene(scenePath); err != nil {
		core.LogWarn("engine: scene bootstrap: %s", err.Error())
		e.scene = scene.New()
	} else if parsed, err := e.assets.ParseScene(scenePath); err != nil {
		core.LogWarn("engine: scene bootstrap: parse %q: %s", scenePath, err.Error())
		e.scene = scene.New()
	} else {
		e.scene = scene.FromParsed(parsed)
	}
	e.camera = components.NewCamera()

	defaultShader, err := e.pool.CreateShader(nil)
	if err != nil {
		return fmt.Errorf("engine: default shader: %w", err)
	}
	e.defaultMaterial, err = e.pool.CreateMaterial(defaultShader, nil)
	if err != nil {
		return fmt.Errorf("engine: default material: %w", err)
	}

	if e.game.FnInitialize != nil {
		if err := e.game.FnInitialize(); err != nil {
			return fmt.Errorf("engine: game initialize: %w", err)
		}
	}

	e.isRunning = true
	e.lastTime = platform.GetAbsoluteTime()
	return nil
}

// declareGraph builds the default two-node pipeline: an opaque pass that
// clears and produces "color", and a ui pass that loads it back and is
// marked presentable (§4.6).
func (e *Engine) declareGraph() {
	e.graph.AddNode("opaque", []rendergraph.TargetDesc{
		{
			Name:      "color",
			Operation: rendergraph.OpClear,
			Info: &rendergraph.AttachmentInfo{
				Format:    "rgba8",
				Resizable: true,
				ScaleX:    1.0,
				ScaleY:    1.0,
			},
		},
	}, e.renderOpaque)

	e.graph.AddNode("ui", []rendergraph.TargetDesc{
		{Name: "color", Operation: rendergraph.OpLoad},
	}, e.renderUI)

	e.graph.SetPresentableAttachment("color")
}

// renderOpaque parses the current scene into object data and per-pass
// packet buckets. Issuing the actual draw commands for each packet is
// outside this backend's narrow CommandRecorder seam (see DESIGN.md):
// the render graph here governs pass ordering and attachment lifetime,
// not draw submission.
func (e *Engine) renderOpaque(ctx *rendergraph.RenderContext) {
	result := scene.ParseScene(e.scene, e.resolver, e.pool, e.defaultMaterial, nil)
	core.LogDebug("opaque: %d object(s), %d packet(s)", len(result.ObjectData), len(result.Packets["opaque"]))
}

func (e *Engine) renderUI(ctx *rendergraph.RenderContext) {}

// Run drives the fixed-step main loop: pump platform messages, update
// input/game state, begin_frame/render/end_frame, sleep off any leftover
// frame budget (§4.7, §5).
func (e *Engine) Run() error {
	e.clock.Start()
	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}
		if e.isSuspended {
			continue
		}

		now := platform.GetAbsoluteTime()
		deltaTime := now - e.lastTime
		e.lastTime = now
		frameStart := now

		core.MetricsUpdate(deltaTime)
		if err := core.InputUpdate(deltaTime); err != nil {
			return err
		}
		if e.game.FnUpdate != nil {
			if err := e.game.FnUpdate(deltaTime); err != nil {
				return err
			}
		}

		view := scheduler.SceneView{
			View:           e.camera.GetView().Data,
			Projection:     e.projection().Data,
			LightColor:     [3]float32{1, 1, 1},
			LightDir:       [3]float32{-0.5, -1, -0.5},
			LightIntensity: 1.0,
		}
		if err := e.sched.BeginFrame(view); err != nil {
			if err == core.ErrSwapchainBooting {
				continue
			}
			return err
		}

		if e.game.FnRender != nil {
			if err := e.game.FnRender(deltaTime); err != nil {
				return err
			}
		}
		if err := e.sched.Render(); err != nil {
			return err
		}
		if err := e.sched.EndFrame(); err != nil && err != core.ErrSwapchainBooting {
			return err
		}

		frameElapsed := platform.GetAbsoluteTime() - frameStart
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 {
			e.platform.Sleep(remaining * 1000.0)
		}
	}
	return nil
}

// projection computes the default perspective matrix for the current
// framebuffer aspect ratio.
func (e *Engine) projection() math.Mat4 {
	aspect := float32(e.width) / float32(e.height)
	if e.height == 0 {
		aspect = 1.0
	}
	return math.NewMat4Perspective(defaultFovRadians, aspect, nearClip, farClip)
}

// Shutdown tears down every subsystem in reverse dependency order.
func (e *Engine) Shutdown() error {
	e.isRunning = false

	if e.game.FnShutdown != nil {
		if err := e.game.FnShutdown(); err != nil {
			core.LogError("engine: game shutdown: %s", err.Error())
		}
	}

	if e.assets != nil {
		if err := e.assets.Deinit(); err != nil {
			core.LogError("engine: asset manager deinit: %s", err.Error())
		}
	}
	if e.renderer != nil {
		if err := e.renderer.Shutdow(); err != nil {
			core.LogError("engine: renderer shutdown: %s", err.Error())
		}
	}
	if err := core.EventShutdown(); err != nil {
		core.LogError("engine: event shutdown: %s", err.Error())
	}
	if err := core.InputShutdown(); err != nil {
		core.LogError("engine: input shutdown: %s", err.Error())
	}
	return e.platform.Shutdown()
}

func (e *Engine) onQuit(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	e.isRunning = false
	return true
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	width := uint32(data.Data.U16[0])
	height := uint32(data.Data.U16[1])
	if width == 0 || height == 0 {
		e.isSuspended = true
		return false
	}
	e.isSuspended = false
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height

	if err := e.renderer.Resized(uint16(width), uint16(height)); err != nil {
		core.LogError("engine: renderer resize: %s", err.Error())
	}
	if err := e.sched.Resize(width, height); err != nil {
		core.LogError("engine: scheduler resize: %s", err.Error())
	}
	if e.game.FnOnResize != nil {
		if err := e.game.FnOnResize(width, height); err != nil {
			core.LogError("engine: game resize: %s", err.Error())
		}
	}
	return false
}
