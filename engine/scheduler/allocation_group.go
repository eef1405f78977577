package scheduler

import (
	"sync"

	"github.com/hadean/forge/engine/handle"
	"github.com/hadean/forge/engine/renderer/respool"
)

// AllocationGroup implements §4.8: a named bundle of pending transfer
// allocations tied to one completion semaphore. The frame scheduler
// polls the semaphore each frame; once signaled, every allocation in the
// group is freed back to the transfer free-list in one shot.
type AllocationGroup struct {
	Name      string
	Semaphore handle.Handle

	mu      sync.Mutex
	pending []uint64 // transfer-buffer offsets
}

// NewAllocationGroup creates a group and its completion semaphore.
func NewAllocationGroup(pool *respool.Manager, name string) *AllocationGroup {
	return &AllocationGroup{Name: name, Semaphore: pool.CreateSemaphore()}
}

// Track records a pending transfer allocation, keyed by the offset
// returned from the allocator that backs it.
func (g *AllocationGroup) Track(offset uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = append(g.pending, offset)
}

// ReleaseIfSignaled frees every tracked allocation back to transfer if
// the group's semaphore has signaled since the last poll, per §4.8 "The
// frame scheduler polls each group's semaphore; when signaled, the
// free-list entries in the group are released back."
func (g *AllocationGroup) ReleaseIfSignaled(pool *respool.Manager) bool {
	if !pool.PollSemaphore(g.Semaphore) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, offset := range g.pending {
		pool.FreeTransfer(offset)
	}
	g.pending = g.pending[:0]
	return true
}
