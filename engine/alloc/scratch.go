package alloc

import "sync"

// defaultScratchSize matches the teacher's tendency toward generous,
// simple fixed sizes (e.g. TextureSystemConfig.MaxTextureCount = 1000)
// rather than dynamically-sized pools.
const defaultScratchSize = 4 * 1024 * 1024

// scratchPool is a process-wide pool of thread-local arenas used for
// transient allocations within a function body (§4.2 "Scratch memory").
// sync.Pool already gives per-P reuse without us hand-rolling a
// thread-local map, which is the idiomatic Go substitute for the
// teacher's C-style TLS scratch arenas.
var scratchPool = sync.Pool{
	New: func() interface{} {
		return NewArena(defaultScratchSize)
	},
}

// ScratchScope is a borrowed arena plus the offset to release it back to.
type ScratchScope struct {
	arena *Arena
	mark  Scope
}

// Arena exposes the underlying scratch arena for allocation.
func (s *ScratchScope) Arena() *Arena {
	return s.arena
}

// GetScratch borrows a scratch arena for the duration of a function. The
// caller must defer Release() on every exit path (§4.2: "The scope release
// must happen on every exit path"):
//
//	scratch := alloc.GetScratch()
//	defer scratch.Release()
func GetScratch() *ScratchScope {
	a := scratchPool.Get().(*Arena)
	return &ScratchScope{arena: a, mark: a.Mark()}
}

// Release rewinds the arena to the state it was borrowed in and returns it
// to the pool for reuse by another goroutine.
func (s *ScratchScope) Release() {
	s.mark.Restore()
	scratchPool.Put(s.arena)
}
