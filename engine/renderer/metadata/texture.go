package metadata

// TextureType distinguishes sampled textures from cubemaps. Only
// TextureType2d is produced by this engine today; TextureTypeCube is kept
// for the sampler layout skybox assets will eventually need.
type TextureType int

const (
	TextureType2d TextureType = iota
	TextureTypeCube
)

// TextureFlag are bit flags describing how a texture was created.
type TextureFlag int

const (
	TextureFlagHasTransparency TextureFlag = 0x1
	// TextureFlagIsWriteable marks a texture created as a render target
	// rather than uploaded from asset pixels (render-graph attachments).
	TextureFlagIsWriteable TextureFlag = 0x2
	TextureFlagIsWrapped   TextureFlag = 0x4
)

type TextureFlagBits uint8

// Texture is the renderer-facing description RendererBackend's texture
// calls operate on; respool.VulkanDriver fills one in per call and the
// Vulkan backend stores its device objects in InternalData.
type Texture struct {
	ID           uint32
	TextureType  TextureType
	Width        uint32
	Height       uint32
	ChannelCount uint8
	Flags        TextureFlagBits
	Generation   uint32
	Name         string
	InternalData interface{}
}
