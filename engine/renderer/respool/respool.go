// Package respool is the renderer resource manager (§4.4): fixed-capacity
// handle pools for every GPU primitive named in the spec, a single
// render-commands mutex serializing backend calls, and the material
// property reflection that drives set_property/use_material.
//
// Grounded on the teacher's engine/handle pool idiom generalized across
// resource kinds, with a single serializing mutex per §4.4 ("All create/destroy/update operations serialize
// through a single render-commands mutex").
package respool

import (
	"sync"

	"github.com/hadean/forge/engine/alloc"
	"github.com/hadean/forge/engine/assets"
	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
)

var _ assets.GPUBackend = (*Manager)(nil)

const defaultCapacity = 4096

// Manager owns every renderer resource pool named in §4.4 plus the
// transfer buffer backing uploads (§4.8). It implements
// github.com/hadean/forge/engine/assets.GPUBackend.
type Manager struct {
	mu sync.Mutex // the render-commands mutex

	driver Driver

	buffers          *handle.Pool[Buffer]
	textures         *handle.Pool[Texture]
	samplers         *handle.Pool[Sampler]
	shaders          *handle.Pool[Shader]
	shaderGroups     *handle.Pool[ShaderGroup]
	pipelineStates   *handle.Pool[PipelineState]
	bindGroupLayouts *handle.Pool[BindGroupLayout]
	bindGroups       *handle.Pool[BindGroup]
	renderPasses     *handle.Pool[RenderPass]
	frameBuffers     *handle.Pool[FrameBuffer]
	staticMeshes     *handle.Pool[StaticMesh]
	materials        *handle.Pool[Material]
	semaphores       *handle.Pool[Semaphore]

	transfer *alloc.FreeList

	whitePixel     handle.Handle
	defaultSampler handle.Handle

	framesInFlight int
}

// Driver is the narrow seam onto the underlying graphics API (§2 "Backend
// abstraction (Vulkan-like driver facade)"). The real implementation
// wraps engine/renderer/vulkan; a headless/testing implementation can
// stub every method out.
type Driver interface {
	UploadTexture(width, height uint32, channelCount uint8, pixels []byte, generateMips bool) error
	CreateWriteableTexture(width, height uint32, sampleCount uint32) error
	CompileShaderModule(spirv []byte) (uint64, error)
}

// New builds an empty resource manager sized per the defaults table (§6):
// frames_in_flight copies of anything per-frame, a transfer buffer, and
// one fixed-capacity pool per primitive.
func New(driver Driver, framesInFlight int, transferBufferSize uint64) *Manager {
	if framesInFlight <= 0 {
		framesInFlight = 3
	}
	m := &Manager{
		driver:           driver,
		buffers:          handle.New[Buffer](defaultCapacity),
		textures:         handle.New[Texture](4096), // §6 defaults table: max textures
		samplers:         handle.New[Sampler](256),
		shaders:          handle.New[Shader](512),
		shaderGroups:     handle.New[ShaderGroup](512),
		pipelineStates:   handle.New[PipelineState](512),
		bindGroupLayouts: handle.New[BindGroupLayout](512),
		bindGroups:       handle.New[BindGroup](4096),
		renderPasses:     handle.New[RenderPass](64),
		frameBuffers:     handle.New[FrameBuffer](64 * framesInFlight),
		staticMeshes:     handle.New[StaticMesh](defaultCapacity),
		materials:        handle.New[Material](defaultCapacity),
		semaphores:       handle.New[Semaphore](64),
		transfer:         alloc.NewFreeList(transferBufferSize),
		framesInFlight:   framesInFlight,
	}
	m.createWhitePixel()
	m.createDefaultSampler(16) // settings.Default().Anisotropy; engine.go calls SetAnisotropy once settings load
	return m
}

// createWhitePixel seeds the fallback texture used whenever a material's
// texture reference is not yet Loaded (§4.4 set_property, §8 Scn-3).
func (m *Manager) createWhitePixel() {
	pixels := []byte{255, 255, 255, 255}
	h, err := m.CreateTexture(1, 1, 4, pixels, false)
	if err != nil {
		core.Assert(false, "respool: failed to create white pixel fallback texture: %v", err)
	}
	m.whitePixel = h
}

// WhitePixelTexture implements assets.GPUBackend.
func (m *Manager) WhitePixelTexture() handle.Handle {
	return m.whitePixel
}

func (m *Manager) FramesInFlight() int {
	return m.framesInFlight
}

// SetFramesInFlight updates the count future CreateMaterial calls size
// their per-frame buffer/bind-group sets to (§4.9 triple buffering).
// Materials created under the old count keep whatever slots they already
// have; callers apply this only as part of a graph-affecting settings
// change, which waits for the GPU to idle first.
func (m *Manager) SetFramesInFlight(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.framesInFlight = n
}
