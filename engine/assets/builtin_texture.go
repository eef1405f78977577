package assets

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/hadean/forge/engine/core"
)

// loadTexture decodes a PNG or JPEG file and hands the raw RGBA pixels to
// the GPU backend. Grounded on the teacher's
// engine/assets/loaders/texture.go (image.Decode over a registered codec
// set), generalized from a fixed Resource wrapper to the load_fn contract
// of §4.3. TGA support named in §4.3's extension list has no grounded
// decoder anywhere in the pack, so it is dropped here rather than
// hand-rolled.
func loadTexture(m *Manager, effectivePath string, embed *EmbedParams) (LoadResult, error) {
	f, err := os.Open(m.resolvePath(effectivePath))
	if err != nil {
		return LoadResult{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return LoadResult{}, fmt.Errorf("texture: decode %q: %w", effectivePath, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}

	backend := m.backend()
	if backend == nil {
		return LoadResult{}, core.ErrNoGPUBackend
	}
	h, err := backend.CreateTexture(uint32(width), uint32(height), 4, rgba.Pix, true)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{OK: true, Handle: h}, nil
}

func unloadTexture(m *Manager, result LoadResult) {
	// Texture destruction is driven by the resource pool's own lifetime
	// tracking (engine/renderer/respool); the asset manager only forgets
	// the handle.
	_ = result
}
