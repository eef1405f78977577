package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseGenerationSafety(t *testing.T) {
	p := New[int](4)

	h1 := p.Acquire()
	*p.Get(h1) = 42
	require.True(t, p.IsValid(h1))

	p.Release(h1)
	assert.False(t, p.IsValid(h1))

	h2 := p.Acquire()
	assert.True(t, p.IsValid(h2))

	if h1.Index == h2.Index {
		assert.NotEqual(t, h1.Generation, h2.Generation)
	}
	assert.False(t, p.IsValid(h1))
}

func TestGetOnStaleHandlePanics(t *testing.T) {
	p := New[int](2)
	h := p.Acquire()
	p.Release(h)

	assert.Panics(t, func() {
		p.Get(h)
	})
}

func TestAcquireExhaustionIsFatal(t *testing.T) {
	p := New[int](1)
	p.Acquire()

	assert.Panics(t, func() {
		p.Acquire()
	})
}

func TestIterateVisitsOnlyAllocated(t *testing.T) {
	p := New[int](3)
	a := p.Acquire()
	*p.Get(a) = 1
	b := p.Acquire()
	*p.Get(b) = 2
	p.Release(a)

	seen := map[uint32]int{}
	p.Iterate(func(h Handle, v *int) bool {
		seen[h.Index] = *v
		return true
	})

	assert.Len(t, seen, 1)
	assert.Equal(t, 2, seen[b.Index])
}
