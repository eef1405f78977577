// Package alloc implements the engine's manual memory allocators: a bump
// arena, a thread-local scratch-arena pool, and a free-list allocator for
// long-lived heterogeneous allocations (§4.2).
//
// Grounded on the teacher's plain slice-backed style (no external allocator
// library) and on the transfer-buffer free-list description in §4.8; the
// teacher repo has no direct analogue
// since the original C++ does this with raw pointers, so this package
// follows the "typed allocator returning both a mapped pointer and an
// offset" guidance from §9 Design Notes instead.
package alloc

import "github.com/hadean/forge/engine/core"

// Arena is a bump allocator backed by a contiguous byte region.
type Arena struct {
	buf    []byte
	offset int
	parent *Arena // set for sub-arenas, nil for root arenas
}

// NewArena creates a root arena owning size bytes.
func NewArena(size int) *Arena {
	return &Arena{buf: make([]byte, size)}
}

// CreateSubArena carves out a size-byte sub-region of a, advancing a's
// offset. The returned arena has its own independent offset starting at 0.
func (a *Arena) CreateSubArena(size int) (*Arena, error) {
	base, err := a.alloc(size)
	if err != nil {
		return nil, err
	}
	return &Arena{buf: a.buf[base : base+size], parent: a}, nil
}

func (a *Arena) alloc(size int) (int, error) {
	if a.offset+size > len(a.buf) {
		return 0, core.ErrPoolExhausted
	}
	base := a.offset
	a.offset += size
	return base, nil
}

// Alloc returns a size-byte slice carved from the arena's remaining space.
func (a *Arena) Alloc(size int) ([]byte, error) {
	base, err := a.alloc(size)
	if err != nil {
		return nil, err
	}
	return a.buf[base : base+size : base+size], nil
}

// Offset returns the current bump offset, usable as a scope-entry marker.
func (a *Arena) Offset() int {
	return a.offset
}

// Reset rewinds the arena to empty.
func (a *Arena) Reset() {
	a.offset = 0
}

// Mark returns the current offset and a Restore function that rewinds the
// arena back to it. The guarantee from §4.2 is that offset-at-scope-exit
// equals offset-at-scope-entry; callers defer the returned function so the
// restore happens on every exit path, including panics.
//
//	mark := arena.Mark()
//	defer mark.Restore()
func (a *Arena) Mark() Scope {
	return Scope{arena: a, offset: a.offset}
}

// Scope is a saved arena offset to rewind back to.
type Scope struct {
	arena  *Arena
	offset int
}

// Restore rewinds the arena back to the offset captured by Mark.
func (s Scope) Restore() {
	core.Assert(s.offset <= s.arena.offset, "alloc.Scope.Restore: arena shrunk below scope mark")
	s.arena.offset = s.offset
}

// Cap returns the arena's total byte capacity.
func (a *Arena) Cap() int {
	return len(a.buf)
}

// Used returns the number of bytes currently in use.
func (a *Arena) Used() int {
	return a.offset
}
