package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaScopeRestoresOffset(t *testing.T) {
	a := NewArena(64)
	_, err := a.Alloc(8)
	require.NoError(t, err)

	entry := a.Offset()
	scope := a.Mark()
	_, err = a.Alloc(16)
	require.NoError(t, err)
	assert.NotEqual(t, entry, a.Offset())

	scope.Restore()
	assert.Equal(t, entry, a.Offset())
}

func TestArenaExhaustion(t *testing.T) {
	a := NewArena(4)
	_, err := a.Alloc(8)
	assert.Error(t, err)
}

func TestScratchReleaseOnEveryExitPath(t *testing.T) {
	useScratch := func(fail bool) (err error) {
		scratch := GetScratch()
		defer scratch.Release()

		mark := scratch.Arena().Offset()
		_, allocErr := scratch.Arena().Alloc(128)
		require.NoError(t, allocErr)
		_ = mark

		if fail {
			return assert.AnError
		}
		return nil
	}

	assert.NoError(t, useScratch(false))
	assert.Error(t, useScratch(true))
}

func TestFreeListAllocFreeCoalesces(t *testing.T) {
	fl := NewFreeList(256)

	a, err := fl.Alloc(64, 16)
	require.NoError(t, err)
	b, err := fl.Alloc(64, 16)
	require.NoError(t, err)

	assert.Equal(t, uint64(256-128), fl.FreeBytes())

	fl.Free(a)
	fl.Free(b)

	assert.Equal(t, uint64(256), fl.FreeBytes())
}

func TestFreeListFirstFitRespectsAlignment(t *testing.T) {
	fl := NewFreeList(128)
	off, err := fl.Alloc(10, 16)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), off%16)
}

func TestFreeListExhaustion(t *testing.T) {
	fl := NewFreeList(16)
	_, err := fl.Alloc(16, 1)
	require.NoError(t, err)

	_, err = fl.Alloc(1, 1)
	assert.Error(t, err)
}

func TestFreeListReallocShrinkAndGrow(t *testing.T) {
	fl := NewFreeList(128)
	off, err := fl.Alloc(32, 1)
	require.NoError(t, err)

	shrunk, err := fl.Realloc(off, 16, 1)
	require.NoError(t, err)
	assert.Equal(t, off, shrunk)
	assert.Equal(t, uint64(128-16), fl.FreeBytes())

	grown, err := fl.Realloc(shrunk, 64, 1)
	require.NoError(t, err)
	_ = grown
	assert.Equal(t, uint64(128-64), fl.FreeBytes())
}
