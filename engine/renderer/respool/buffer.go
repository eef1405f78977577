package respool

import (
	"fmt"

	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
)

// CreateBuffer implements §4.4 create_buffer. Device-local buffers are
// not transfer-backed; host-coherent buffers sub-allocate from the
// transfer buffer and record their offset for later memcpy (§4.8).
func (m *Manager) CreateBuffer(size uint64, usage BufferUsage, isDeviceLocal bool) (handle.Handle, error) {
	if size == 0 {
		return handle.Invalid(), fmt.Errorf("respool: create_buffer: size must be > 0")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var offset uint64
	if !isDeviceLocal {
		var err error
		offset, err = m.transfer.Alloc(size, 16)
		if err != nil {
			return handle.Invalid(), fmt.Errorf("respool: create_buffer: %w", err)
		}
	}

	h := m.buffers.Acquire()
	*m.buffers.Get(h) = Buffer{Size: size, Usage: usage, IsDeviceLocal: isDeviceLocal, TransferOffset: offset}
	return h, nil
}

// WriteBuffer implements the "map and memcpy" half of §4.7 begin_frame
// step 2 for any host-coherent buffer, not just the per-frame globals:
// the driver's real mapped-pointer write is modeled here as a plain copy
// into the buffer's CPU shadow.
func (m *Manager) WriteBuffer(h handle.Handle, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeBufferLocked(h, data)
}

// writeBufferLocked is WriteBuffer's body for callers that already hold
// m.mu (UseMaterial's per-frame shadow copy).
func (m *Manager) writeBufferLocked(h handle.Handle, data []byte) {
	buf := m.buffers.Get(h)
	core.Assert(!buf.IsDeviceLocal, "respool: WriteBuffer: buffer is device-local, not host-coherent")
	if buf.Data == nil || uint64(len(buf.Data)) != buf.Size {
		buf.Data = make([]byte, buf.Size)
	}
	copy(buf.Data, data)
}

// DestroyBuffer releases a buffer's transfer-buffer allocation (if any)
// and its pool slot.
func (m *Manager) DestroyBuffer(h handle.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := m.buffers.Get(h)
	if !buf.IsDeviceLocal {
		m.transfer.Free(buf.TransferOffset)
	}
	m.buffers.Release(h)
}

// FreeTransfer releases a transfer-buffer allocation directly, for
// callers (engine/scheduler's AllocationGroup) that track raw offsets
// rather than a pool handle.
func (m *Manager) FreeTransfer(offset uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfer.Free(offset)
}

// CreateRenderPass implements §4.4's render-pass-per-node need (§4.6
// compile).
func (m *Manager) CreateRenderPass(depth float32, stencil uint32) handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.renderPasses.Acquire()
	*m.renderPasses.Get(h) = RenderPass{Depth: depth, Stencil: stencil}
	return h
}

// CreateFrameBuffer bundles attachments into one frame buffer for a given
// frame-in-flight slot (§4.6 compile: "a frame buffer per (node,
// frame-in-flight)").
func (m *Manager) CreateFrameBuffer(attachments []handle.Handle, width, height uint32) handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.frameBuffers.Acquire()
	*m.frameBuffers.Get(h) = FrameBuffer{Attachments: attachments, Width: width, Height: height}
	return h
}

// DestroyFrameBuffer releases a frame buffer's pool slot, used by
// invalidate (§4.6).
func (m *Manager) DestroyFrameBuffer(h handle.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameBuffers.Release(h)
}

// DestroyTexture releases a texture's pool slot, used by invalidate.
func (m *Manager) DestroyTexture(h handle.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textures.Release(h)
}

// CreateSemaphore backs one allocation group's completion signal (§4.8).
func (m *Manager) CreateSemaphore() handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.semaphores.Acquire()
	*m.semaphores.Get(h) = Semaphore{}
	return h
}

// SignalSemaphore marks a semaphore signaled; the frame scheduler polls
// this to release an allocation group's pending transfer allocations
// (§4.8).
func (m *Manager) SignalSemaphore(h handle.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semaphores.Get(h).Signaled = true
}

// PollSemaphore reports and clears a semaphore's signaled state.
func (m *Manager) PollSemaphore(h handle.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.semaphores.Get(h)
	signaled := s.Signaled
	s.Signaled = false
	return signaled
}
