package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadean/forge/engine/handle"
)

// fakeBackend is a headless Backend for tests: it hands out pool-free
// handles from an incrementing counter rather than going through
// engine/renderer/respool, mirroring §9's "exception-free failure"
// guidance that every fallible op return a discriminated result rather
// than depend on a live GPU.
type fakeBackend struct {
	next      uint32
	created   int
	destroyed int
}

func (f *fakeBackend) nextHandle() handle.Handle {
	f.next++
	return handle.Handle{Index: f.next, Generation: 0}
}

func (f *fakeBackend) CreateAttachmentTexture(width, height, samples uint32) (handle.Handle, error) {
	f.created++
	return f.nextHandle(), nil
}

func (f *fakeBackend) DestroyTexture(h handle.Handle) { f.destroyed++ }

func (f *fakeBackend) CreateRenderPass(depth float32, stencil uint32) handle.Handle {
	return f.nextHandle()
}

func (f *fakeBackend) CreateFrameBuffer(attachments []handle.Handle, width, height uint32) handle.Handle {
	return f.nextHandle()
}

func (f *fakeBackend) DestroyFrameBuffer(h handle.Handle) {}

type fakeRecorder struct {
	begun, ended int
}

func (r *fakeRecorder) BeginRenderPass(pass, frameBuffer handle.Handle) { r.begun++ }
func (r *fakeRecorder) EndRenderPass()                                 { r.ended++ }

func TestCompileOrdersProducerBeforeConsumer(t *testing.T) {
	backend := &fakeBackend{}
	g := New(backend, 1280, 720, 4, 3)

	var ran []string
	g.AddNode("opaque", []TargetDesc{
		{Name: "color", Operation: OpClear, Info: &AttachmentInfo{ScaleX: 1, ScaleY: 1}},
	}, func(ctx *RenderContext) { ran = append(ran, "opaque") })

	g.AddNode("ui", []TargetDesc{
		{Name: "color", Operation: OpLoad},
	}, func(ctx *RenderContext) { ran = append(ran, "ui") })

	g.SetPresentableAttachment("color")

	require.NoError(t, g.Compile())
	assert.True(t, g.IsPresentable("color"))

	rec := &fakeRecorder{}
	require.NoError(t, g.Render(rec, 0))

	assert.Equal(t, []string{"opaque", "ui"}, ran)
	assert.Equal(t, 2, rec.begun)
	assert.Equal(t, 2, rec.ended)
}

func TestCompileRejectsCycle(t *testing.T) {
	backend := &fakeBackend{}
	g := New(backend, 1280, 720, 1, 2)

	g.AddNode("a", []TargetDesc{
		{Name: "x", Operation: OpLoad},
		{Name: "y", Operation: OpClear, Info: &AttachmentInfo{ScaleX: 1, ScaleY: 1}},
	}, nil)
	g.AddNode("b", []TargetDesc{
		{Name: "y", Operation: OpLoad},
		{Name: "x", Operation: OpClear, Info: &AttachmentInfo{ScaleX: 1, ScaleY: 1}},
	}, nil)

	err := g.Compile()
	require.Error(t, err)
}

func TestCompileRejectsUndeclaredAttachment(t *testing.T) {
	backend := &fakeBackend{}
	g := New(backend, 1280, 720, 1, 2)
	g.AddNode("only", []TargetDesc{{Name: "missing", Operation: OpLoad}}, nil)

	err := g.Compile()
	require.Error(t, err)
}

func TestInvalidateRecreatesAttachments(t *testing.T) {
	backend := &fakeBackend{}
	g := New(backend, 1280, 720, 4, 3)
	g.AddNode("opaque", []TargetDesc{
		{Name: "color", Operation: OpClear, Info: &AttachmentInfo{ScaleX: 1, ScaleY: 1}},
	}, nil)

	require.NoError(t, g.Compile())
	createdBeforeResize := backend.created

	require.NoError(t, g.Invalidate(1920, 1080, 4))

	assert.Greater(t, backend.destroyed, 0)
	assert.Greater(t, backend.created, createdBeforeResize)

	tex, err := g.AttachmentTexture("color")
	require.NoError(t, err)
	assert.False(t, tex.IsNil())
}

func TestRenderBeforeCompileFails(t *testing.T) {
	backend := &fakeBackend{}
	g := New(backend, 1280, 720, 1, 2)
	g.AddNode("n", nil, nil)

	err := g.Render(&fakeRecorder{}, 0)
	assert.Error(t, err)
}
