package alloc

import (
	"sort"

	"github.com/hadean/forge/engine/core"
)

// block is a free or allocated byte range within a FreeList's backing
// buffer, tracked by offset and size only — the allocator never needs to
// touch the bytes themselves, mirroring the "pointer-as-offset" contract
// from §4.8 (pointer - allocator.base yields the GPU-side source offset).
type block struct {
	offset uint64
	size   uint64
}

// FreeList is a first-fit free-list allocator over a fixed-size backing
// region. It underpins both long-lived heterogeneous allocations (asset
// data, shader reflection, §4.2) and the engine's single large transfer
// buffer (§4.8), parameterized only by total size.
type FreeList struct {
	capacity uint64
	free     []block // kept sorted by offset, coalesced on Free
	used     map[uint64]uint64
}

// NewFreeList creates a free-list allocator managing `capacity` bytes
// starting at offset 0.
func NewFreeList(capacity uint64) *FreeList {
	return &FreeList{
		capacity: capacity,
		free:     []block{{offset: 0, size: capacity}},
		used:     make(map[uint64]uint64),
	}
}

func align(n, a uint64) uint64 {
	if a <= 1 {
		return n
	}
	return (n + a - 1) &^ (a - 1)
}

// Alloc reserves `size` bytes aligned to `align` and returns the offset
// into the backing region. Returns core.ErrPoolExhausted if no first-fit
// block of sufficient (aligned) size exists.
func (f *FreeList) Alloc(size, alignment uint64) (uint64, error) {
	for i, b := range f.free {
		start := align(b.offset, alignment)
		padding := start - b.offset
		if b.size < size+padding {
			continue
		}
		// Carve [start, start+size) out of block i.
		remainderOffset := start + size
		remainderSize := b.offset + b.size - remainderOffset
		leadingSize := padding

		newFree := make([]block, 0, len(f.free)+1)
		newFree = append(newFree, f.free[:i]...)
		if leadingSize > 0 {
			newFree = append(newFree, block{offset: b.offset, size: leadingSize})
		}
		if remainderSize > 0 {
			newFree = append(newFree, block{offset: remainderOffset, size: remainderSize})
		}
		newFree = append(newFree, f.free[i+1:]...)
		f.free = newFree

		f.used[start] = size
		return start, nil
	}
	return 0, core.ErrPoolExhausted
}

// Free releases a previously allocated offset back to the pool, coalescing
// it with adjacent free blocks.
func (f *FreeList) Free(offset uint64) {
	size, ok := f.used[offset]
	core.Assert(ok, "alloc.FreeList.Free: offset %d was not allocated by this list", offset)
	delete(f.used, offset)

	f.free = append(f.free, block{offset: offset, size: size})
	f.coalesce()
}

func (f *FreeList) coalesce() {
	sort.Slice(f.free, func(i, j int) bool { return f.free[i].offset < f.free[j].offset })

	coalesced := f.free[:0]
	for _, b := range f.free {
		if n := len(coalesced); n > 0 && coalesced[n-1].offset+coalesced[n-1].size == b.offset {
			coalesced[n-1].size += b.size
		} else {
			coalesced = append(coalesced, b)
		}
	}
	f.free = coalesced
}

// Realloc shrinks an existing allocation in place; to grow one it frees the
// block and allocates a fresh first-fit block, which may or may not start
// at the same offset (the caller is responsible for copying payload bytes —
// this allocator only tracks offsets/sizes).
func (f *FreeList) Realloc(offset, newSize, alignment uint64) (uint64, error) {
	oldSize, ok := f.used[offset]
	if !ok {
		return 0, core.ErrHandleStale
	}
	if newSize <= oldSize {
		f.used[offset] = newSize
		if newSize < oldSize {
			f.free = append(f.free, block{offset: offset + newSize, size: oldSize - newSize})
			f.coalesce()
		}
		return offset, nil
	}
	f.Free(offset)
	return f.Alloc(newSize, alignment)
}

// Capacity returns the allocator's total managed byte count.
func (f *FreeList) Capacity() uint64 {
	return f.capacity
}

// FreeBytes returns the total number of currently unallocated bytes.
func (f *FreeList) FreeBytes() uint64 {
	var total uint64
	for _, b := range f.free {
		total += b.size
	}
	return total
}
