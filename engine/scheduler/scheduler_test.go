package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
	"github.com/hadean/forge/engine/rendergraph"
	"github.com/hadean/forge/engine/renderer/respool"
)

type fakeSwapchain struct {
	outOfDateOnce bool
	acquired      int
	presented     int
}

func (s *fakeSwapchain) AcquireNextImage() (uint32, bool) {
	s.acquired++
	if s.outOfDateOnce {
		s.outOfDateOnce = false
		return 0, true
	}
	return 0, false
}

func (s *fakeSwapchain) Present(imageIndex uint32) bool {
	s.presented++
	return false
}

type alwaysOutOfDateSwapchain struct {
	acquired int
}

func (s *alwaysOutOfDateSwapchain) AcquireNextImage() (uint32, bool) {
	s.acquired++
	return 0, true
}

func (s *alwaysOutOfDateSwapchain) Present(imageIndex uint32) bool { return false }

type fakeRecorder struct {
	begun, ended int
}

func (r *fakeRecorder) BeginRenderPass(pass, frameBuffer handle.Handle) { r.begun++ }
func (r *fakeRecorder) EndRenderPass()                                 { r.ended++ }

func newTestGraph(t *testing.T) *rendergraph.Graph {
	pool := respool.New(nil, 2, 1<<20)
	g := rendergraph.New(pool, 1280, 720, 1, 2)
	g.AddNode("opaque", []rendergraph.TargetDesc{
		{Name: "color", Operation: rendergraph.OpClear, Info: &rendergraph.AttachmentInfo{ScaleX: 1, ScaleY: 1}},
	}, nil)
	g.SetPresentableAttachment("color")
	require.NoError(t, g.Compile())
	return g
}

func TestBeginRenderEndFrameCycle(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	graph := newTestGraph(t)
	swap := &fakeSwapchain{}
	rec := &fakeRecorder{}
	sched := New(graph, pool, swap, rec, 2, 1280, 720, 1)

	err := sched.BeginFrame(SceneView{})
	require.NoError(t, err)
	require.NoError(t, sched.Render())
	require.NoError(t, sched.EndFrame())

	assert.Equal(t, 1, rec.begun)
	assert.Equal(t, 1, swap.presented)
	assert.Equal(t, 1, sched.CurrentFrame())
}

func TestBeginFrameReacquiresOnOutOfDate(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	graph := newTestGraph(t)
	swap := &fakeSwapchain{outOfDateOnce: true}
	sched := New(graph, pool, swap, &fakeRecorder{}, 2, 1280, 720, 1)

	require.NoError(t, sched.BeginFrame(SceneView{}))
	assert.Equal(t, 2, swap.acquired)
}

func TestBeginFrameStillBootingLeavesFenceReadyForRetry(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	graph := newTestGraph(t)
	swap := &alwaysOutOfDateSwapchain{}
	sched := New(graph, pool, swap, &fakeRecorder{}, 2, 1280, 720, 1)

	// Swapchain never comes back up: both attempts inside this call see
	// out-of-date, so begin_frame reports ErrSwapchainBooting without ever
	// submitting anything on this slot.
	err := sched.BeginFrame(SceneView{})
	assert.ErrorIs(t, err, core.ErrSwapchainBooting)

	// A second BeginFrame on the same still-booting slot must retry, not
	// panic on the fence-already-in-flight assert — the frame was skipped
	// outright, so nothing was left in flight to wait on.
	assert.NotPanics(t, func() {
		err = sched.BeginFrame(SceneView{})
	})
	assert.ErrorIs(t, err, core.ErrSwapchainBooting)
}

func TestBeginFrameAssertsOnDoubleBegin(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	graph := newTestGraph(t)
	sched := New(graph, pool, &fakeSwapchain{}, &fakeRecorder{}, 2, 1280, 720, 1)

	require.NoError(t, sched.BeginFrame(SceneView{}))
	assert.Panics(t, func() {
		sched.BeginFrame(SceneView{})
	})
}

func TestSetFramesInFlightResizesPerSlotState(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	graph := newTestGraph(t)
	sched := New(graph, pool, &fakeSwapchain{}, &fakeRecorder{}, 2, 1280, 720, 1)

	sched.SetFramesInFlight(3)
	assert.Len(t, sched.fenceReady, 3)
	assert.Len(t, sched.globalsBuffers, 3)
	// Every slot's globals buffer must be a real, writable handle, not a
	// zero-value placeholder from the resize.
	for _, h := range sched.globalsBuffers {
		assert.NotPanics(t, func() { pool.WriteBuffer(h, make([]byte, globalsBufferSize)) })
	}

	// Shrinking back must not leave currentFrame pointing past the new
	// bound.
	sched.currentFrame = 2
	sched.SetFramesInFlight(1)
	assert.Len(t, sched.fenceReady, 1)
	assert.Equal(t, 0, sched.currentFrame)
}

func TestSetMSAAInvalidatesGraph(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	graph := newTestGraph(t)
	sched := New(graph, pool, &fakeSwapchain{}, &fakeRecorder{}, 2, 1280, 720, 1)

	require.NoError(t, sched.SetMSAA(4))
	assert.EqualValues(t, 4, sched.msaa)
}

func TestAllocationGroupReleasesOnSignal(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	graph := newTestGraph(t)
	sched := New(graph, pool, &fakeSwapchain{}, &fakeRecorder{}, 2, 1280, 720, 1)

	group := sched.AllocationGroup("texture-upload")
	group.Track(0)

	assert.False(t, group.ReleaseIfSignaled(pool))
	pool.SignalSemaphore(group.Semaphore)
	assert.True(t, group.ReleaseIfSignaled(pool))
}
