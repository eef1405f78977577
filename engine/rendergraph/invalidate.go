package rendergraph

// Invalidate implements §4.6 invalidate: destroys every attachment
// texture and frame buffer and recompiles with the graph's current
// dimensions and sample count. Called on swapchain resize (Scn-4) and
// MSAA setting change (Scn-5); callers are responsible for waiting for
// GPU idle first (§4.9, §9 sampler-identity Open Question applies the
// same discipline to attachment textures).
func (g *Graph) Invalidate(backBufferWidth, backBufferHeight, msaaSamples uint32) error {
	g.mu.Lock()
	for _, n := range g.nodes {
		for _, fb := range n.frameBuffers {
			g.backend.DestroyFrameBuffer(fb)
		}
		n.frameBuffers = nil
	}
	for name, a := range g.attachments {
		g.backend.DestroyTexture(a.texture)
		delete(g.attachments, name)
	}
	g.backBufferWidth = backBufferWidth
	g.backBufferHeight = backBufferHeight
	g.msaaSamples = msaaSamples
	g.compiled = false
	g.mu.Unlock()

	return g.Compile()
}

// SetFramesInFlight updates the frame-in-flight count ahead of the next
// compile/invalidate (§4.9 triple buffering).
func (g *Graph) SetFramesInFlight(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.framesInFlight = n
	g.compiled = false
}
