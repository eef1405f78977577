package rendergraph

import (
	"fmt"

	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
)

// CommandRecorder is the narrow seam onto the active command buffer,
// grounded on engine/renderer/vulkan/renderpass.go's
// RenderpassBegin/RenderpassEnd pair generalized from one hard-coded
// pass to whichever node is currently executing.
type CommandRecorder interface {
	BeginRenderPass(pass, frameBuffer handle.Handle)
	EndRenderPass()
}

// Render implements §4.7 render's per-node walk: "For each node in graph
// order: begin render pass, invoke render_fn, end render pass." Nodes run
// sequentially in topological order within a single command buffer, per
// §4.6's state machine.
func (g *Graph) Render(cr CommandRecorder, frameIndex int) error {
	g.mu.Lock()
	if !g.compiled {
		g.mu.Unlock()
		return core.ErrGraphNotCompiled
	}
	order := g.order
	g.mu.Unlock()

	for _, n := range order {
		if frameIndex < 0 || frameIndex >= len(n.frameBuffers) {
			return fmt.Errorf("rendergraph: render %q: frame index %d out of range", n.Name, frameIndex)
		}

		n.state = NodeBeginPass
		cr.BeginRenderPass(n.renderPass, n.frameBuffers[frameIndex])

		n.state = NodeRenderFn
		if n.RenderFn != nil {
			n.RenderFn(&RenderContext{FrameIndex: frameIndex, Node: n})
		}

		n.state = NodeEndPass
		cr.EndRenderPass()

		n.state = NodeIdle
	}
	return nil
}

// IsPresentable reports whether name is the attachment marked by
// set_presentable_attachment, whose final layout must stay
// presentation-ready (§4.6, Scn-4).
func (g *Graph) IsPresentable(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.presentable == name
}
