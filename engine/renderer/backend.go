package renderer

import "github.com/hadean/forge/engine/renderer/metadata"

// RendererBackend is the narrow seam respool.VulkanDriver calls through:
// device lifecycle plus the handful of texture operations the resource
// pools need (sampled textures for assets, writeable ones for render-graph
// attachments). Everything the teacher's original backend exposed beyond
// this (geometry, shaders, render targets, generic render buffers) moved
// into engine/renderer/respool and engine/rendergraph, which talk to the
// GPU only through this interface's texture calls plus the Driver seam in
// respool.Manager.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdow() error
	Resized(width, height uint16) error

	TextureCreate(pixels []uint8, texture *metadata.Texture)
	TextureCreateWriteable(texture *metadata.Texture)
	TextureResize(texture *metadata.Texture, newWidth, newHeight uint32)
	TextureWriteData(texture *metadata.Texture, offset, size uint32, pixels []uint8)
	TextureDestroy(texture *metadata.Texture)
}
