package respool

import (
	"fmt"

	"github.com/hadean/forge/engine/handle"
)

// CreateTexture implements assets.GPUBackend and §4.4 create_texture: a
// transfer-buffer range the size of the pixel payload is reserved, the
// driver is asked to upload the pixels, and the mip level count is
// computed at creation time rather than as a separate pass (§12
// supplemented feature).
func (m *Manager) CreateTexture(width, height uint32, channelCount uint8, pixels []byte, generateMips bool) (handle.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	offset, err := m.transfer.Alloc(uint64(len(pixels)), 16)
	if err != nil {
		return handle.Invalid(), fmt.Errorf("respool: texture transfer allocation: %w", err)
	}
	if m.driver != nil {
		if err := m.driver.UploadTexture(width, height, channelCount, pixels, generateMips); err != nil {
			m.transfer.Free(offset)
			return handle.Invalid(), err
		}
	}

	mips := uint32(1)
	if generateMips {
		mips = mipLevelsFor(width, height)
	}

	h := m.textures.Acquire()
	*m.textures.Get(h) = Texture{
		Width:        width,
		Height:       height,
		ChannelCount: channelCount,
		MipLevels:    mips,
	}
	return h, nil
}

// CreateAttachmentTexture allocates a transient render-graph attachment
// (§4.6 compile): no CPU pixel data, no transfer-buffer upload, just a
// GPU-side image of the given sample count. Separate from CreateTexture
// because attachments are never populated from disk.
func (m *Manager) CreateAttachmentTexture(width, height, samples uint32) (handle.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.driver != nil {
		if err := m.driver.CreateWriteableTexture(width, height, samples); err != nil {
			return handle.Invalid(), err
		}
	}

	h := m.textures.Acquire()
	*m.textures.Get(h) = Texture{
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		MipLevels:    1,
		SampleCount:  samples,
	}
	return h, nil
}

func mipLevelsFor(width, height uint32) uint32 {
	levels := uint32(1)
	for width > 1 || height > 1 {
		width /= 2
		height /= 2
		levels++
	}
	return levels
}

// CreateSampler implements §4.4 create_sampler. Manager's own boot-time
// default sampler and every later SetAnisotropy recreation go through
// this same path.
func (m *Manager) CreateSampler(minFilter, magFilter, mipFilter FilterMode, anisotropy int) handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createSamplerLocked(minFilter, magFilter, mipFilter, anisotropy)
}

func (m *Manager) createSamplerLocked(minFilter, magFilter, mipFilter FilterMode, anisotropy int) handle.Handle {
	h := m.samplers.Acquire()
	*m.samplers.Get(h) = Sampler{MinFilter: minFilter, MagFilter: magFilter, MipFilter: mipFilter, AnisotropyLevel: anisotropy}
	return h
}

// recreateSamplerLocked implements the Open Question decision for sampler
// identity changes (SPEC_FULL.md): release the old sampler slot and
// acquire a fresh one at the new anisotropy level, so SetAnisotropy's
// reupdate pass can tell every bind group bound to the old handle to
// switch to the new one.
func (m *Manager) recreateSamplerLocked(old handle.Handle, anisotropy int) handle.Handle {
	s := *m.samplers.Get(old)
	m.samplers.Release(old)
	s.AnisotropyLevel = anisotropy
	h := m.samplers.Acquire()
	*m.samplers.Get(h) = s
	return h
}

// createDefaultSampler seeds the sampler every material's bind group
// starts bound to (linear filtering, trilinear mips, the boot-time
// anisotropy level), mirroring createWhitePixel's boot-time default.
func (m *Manager) createDefaultSampler(anisotropy int) {
	m.defaultSampler = m.createSamplerLocked(FilterLinear, FilterLinear, FilterLinear, anisotropy)
}

// DefaultSampler returns the sampler seeded at construction (or last
// recreated by SetAnisotropy) that new materials' bind groups reference.
func (m *Manager) DefaultSampler() handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaultSampler
}

// SetAnisotropy implements the anisotropy half of §4.9: recreates the
// default sampler at the new level and reupdates every live material's
// bind groups to the recreated handle, per the sampler-identity Open
// Question's resolution (wait-idle, recreate, reupdate every binding).
// Callers wait for the GPU to idle before calling this.
func (m *Manager) SetAnisotropy(anisotropy int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.recreateSamplerLocked(m.defaultSampler, anisotropy)
	m.defaultSampler = h

	m.materials.Iterate(func(_ handle.Handle, mat *Material) bool {
		for i := range mat.BindGroups {
			if bg, ok := m.bindGroups.TryGet(mat.BindGroups[i]); ok {
				bg.Sampler = h
			}
		}
		return true
	})
}
