package assets

import "github.com/hadean/forge/engine/handle"

// GPUBackend is the narrow seam through which built-in asset loaders reach
// the renderer resource manager (engine/renderer/respool) without the two
// packages importing each other: assets owns the registry and decides
// *when* a resource must exist, respool owns pools and decides *how* it is
// represented on the GPU. The concrete implementation is injected once at
// startup via Manager.SetGPUBackend (§9 "Global mutable state ...
// encapsulate behind a context value passed explicitly").
type GPUBackend interface {
	CreateTexture(width, height uint32, channelCount uint8, pixels []byte, generateMips bool) (handle.Handle, error)
	CreateShader(spirv []byte) (handle.Handle, error)
	CreateMaterial(shader handle.Handle, properties []byte) (handle.Handle, error)
	CreateStaticMesh(vertices []byte, indices []uint32) (handle.Handle, error)
	WhitePixelTexture() handle.Handle
}

// SetGPUBackend wires the resource manager into the asset manager. Must be
// called once, before any asset whose load_fn touches the GPU is acquired.
func (m *Manager) SetGPUBackend(b GPUBackend) {
	m.mu.Lock()
	m.gpu = b
	m.mu.Unlock()
}

func (m *Manager) backend() GPUBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gpu
}
