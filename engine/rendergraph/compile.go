package rendergraph

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
)

// Compile implements §4.6 compile: topologically orders nodes by their
// input→output attachment dependencies, creates or reuses one texture
// per unique produced attachment, a render pass per node, and a frame
// buffer per (node, frame-in-flight).
func (g *Graph) Compile() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	order, err := g.topologicalOrder()
	if err != nil {
		return err
	}
	g.order = order

	if err := g.createAttachments(); err != nil {
		return err
	}

	for _, n := range order {
		n.renderPass = g.backend.CreateRenderPass(1.0, 0)

		var attachments []handle.Handle
		for _, t := range n.Targets {
			a, ok := g.attachments[t.Name]
			if !ok {
				return fmt.Errorf("rendergraph: compile %q: %w: %s", n.Name, core.ErrUnknownAttachment, t.Name)
			}
			attachments = append(attachments, a.texture)
		}

		width, height := g.backBufferWidth, g.backBufferHeight
		if len(n.Targets) > 0 {
			if a := g.attachments[n.Targets[0].Name]; a != nil {
				width, height = a.width, a.height
			}
		}

		n.frameBuffers = make([]handle.Handle, g.framesInFlight)
		for i := 0; i < g.framesInFlight; i++ {
			n.frameBuffers[i] = g.backend.CreateFrameBuffer(attachments, width, height)
		}
		n.state = NodeIdle
	}

	g.compiled = true
	return nil
}

// topologicalOrder builds producer→consumer edges from attachment usage:
// a target with non-nil Info produces that attachment name; a target
// with nil Info consumes the attachment of the same name produced by
// another node, and must run after it.
func (g *Graph) topologicalOrder() ([]*Node, error) {
	producer := make(map[string]*Node)
	for _, n := range g.nodes {
		for _, t := range n.Targets {
			if t.Info != nil {
				producer[t.Name] = n
			}
		}
	}

	indegree := make(map[*Node]int, len(g.nodes))
	edges := make(map[*Node][]*Node)
	for _, n := range g.nodes {
		indegree[n] = 0
	}
	for _, n := range g.nodes {
		for _, t := range n.Targets {
			if t.Info != nil {
				continue
			}
			p, ok := producer[t.Name]
			if !ok {
				return nil, fmt.Errorf("rendergraph: node %q reads undeclared attachment %q: %w", n.Name, t.Name, core.ErrUnknownAttachment)
			}
			if p == n {
				continue
			}
			edges[p] = append(edges[p], n)
			indegree[n]++
		}
	}

	var queue, order []*Node
	for _, n := range g.nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, c := range edges[n] {
			indegree[c]--
			if indegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, core.ErrGraphCycle
	}
	return order, nil
}

// createAttachments creates or reuses one texture per unique produced
// attachment name. Independent attachments have no data dependency on
// each other, so creation fans out through an errgroup rather than a
// sequential loop.
func (g *Graph) createAttachments() error {
	type job struct {
		name string
		info AttachmentInfo
		node *Node
	}
	var jobs []job
	for _, n := range g.nodes {
		for _, t := range n.Targets {
			if t.Info == nil {
				continue
			}
			if _, exists := g.attachments[t.Name]; exists {
				continue
			}
			jobs = append(jobs, job{name: t.Name, info: *t.Info, node: n})
			g.attachments[t.Name] = &attachment{info: *t.Info, producer: n}
		}
	}

	var eg errgroup.Group
	for _, j := range jobs {
		j := j
		eg.Go(func() error {
			width := uint32(float32(g.backBufferWidth) * orDefault(j.info.ScaleX))
			height := uint32(float32(g.backBufferHeight) * orDefault(j.info.ScaleY))
			samples := uint32(1)
			if j.info.ResizableSample {
				samples = g.msaaSamples
			}
			tex, err := g.backend.CreateAttachmentTexture(width, height, samples)
			if err != nil {
				return fmt.Errorf("rendergraph: create attachment %q: %w", j.name, err)
			}
			a := g.attachments[j.name]
			a.texture = tex
			a.width, a.height = width, height
			return nil
		})
	}
	return eg.Wait()
}

func orDefault(scale float32) float32 {
	if scale == 0 {
		return 1
	}
	return scale
}
