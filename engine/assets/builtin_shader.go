package assets

import (
	"os"

	"github.com/hadean/forge/engine/core"
)

// loadShader reads a compiled SPIR-V module and hands the raw bytes to the
// GPU backend for reflection and module creation. Grounded on the
// teacher's engine/assets/loaders/shader.go (raw os.ReadFile, no parsing
// in the asset layer) — SPIR-V reflection itself belongs to the resource
// manager (§4.4 create_shader), not the asset manager.
func loadShader(m *Manager, effectivePath string, embed *EmbedParams) (LoadResult, error) {
	spirv, err := os.ReadFile(m.resolvePath(effectivePath))
	if err != nil {
		return LoadResult{}, err
	}
	backend := m.backend()
	if backend == nil {
		return LoadResult{}, core.ErrNoGPUBackend
	}
	h, err := backend.CreateShader(spirv)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{OK: true, Handle: h}, nil
}

func unloadShader(m *Manager, result LoadResult) {
	_ = result
}
