package respool

import (
	"sync/atomic"

	"github.com/hadean/forge/engine/renderer"
	"github.com/hadean/forge/engine/renderer/metadata"
)

// VulkanDriver adapts engine/renderer's RendererBackend (concretely the
// teacher's Vulkan implementation) to respool.Driver. Grounded on
// engine/renderer/backend.go's existing TextureCreate contract.
// RendererBackend has no shader call, so CompileShaderModule only hands
// out a fresh module ID: shader handles and their SPIR-V bytes are kept
// in respool's own Shader pool and are not passed to the backend.
type VulkanDriver struct {
	backend renderer.RendererBackend

	nextShaderID atomic.Uint64
}

func NewVulkanDriver(backend renderer.RendererBackend) *VulkanDriver {
	return &VulkanDriver{backend: backend}
}

func (d *VulkanDriver) UploadTexture(width, height uint32, channelCount uint8, pixels []byte, generateMips bool) error {
	tex := &metadata.Texture{
		TextureType:  metadata.TextureType2d,
		Width:        width,
		Height:       height,
		ChannelCount: channelCount,
	}
	d.backend.TextureCreate(pixels, tex)
	return nil
}

// CreateWriteableTexture backs a render-graph attachment (§4.6 compile):
// a GPU image with no CPU-side pixel data, created via the same
// TextureCreateWriteable entry point the teacher uses for render targets.
// Multisample count is not representable on metadata.Texture in this
// backend, so sampleCount is accepted but not yet forwarded — see
// DESIGN.md.
func (d *VulkanDriver) CreateWriteableTexture(width, height uint32, sampleCount uint32) error {
	tex := &metadata.Texture{
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		Flags:        metadata.TextureFlagBits(metadata.TextureFlagIsWriteable),
	}
	d.backend.TextureCreateWriteable(tex)
	return nil
}

func (d *VulkanDriver) CompileShaderModule(spirv []byte) (uint64, error) {
	return d.nextShaderID.Add(1), nil
}
