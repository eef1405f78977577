// Package rendergraph implements the declarative frame render graph
// (§4.6): node/attachment declaration, compile, invalidate, and the
// per-node Idle → BeginPass → RenderFn → EndPass state machine.
//
// Grounded on engine/renderer/vulkan/renderpass.go and framebuffer.go for
// the render-pass-begin/end idiom, generalized from a single
// hard-coded color+depth pass to the graph's node-declared attachment
// set, and on engine/renderer/respool for every GPU resource it creates.
package rendergraph

import (
	"fmt"
	"sync"

	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
	"github.com/hadean/forge/engine/renderer/respool"
)

var _ Backend = (*respool.Manager)(nil)

// Operation is a target's load operation, mirroring §4.6's
// Clear/Load/DontCare enum.
type Operation int

const (
	OpClear Operation = iota
	OpLoad
	OpDontCare
)

// AttachmentInfo describes a produced attachment (§4.6 add_node: "info
// supplies (format, resizable_sample, resizable, scale_x, scale_y) for
// produced attachments"). A nil *AttachmentInfo on a TargetDesc means the
// node reads an attachment produced elsewhere in the graph.
type AttachmentInfo struct {
	Format          string
	ResizableSample bool
	Resizable       bool
	ScaleX, ScaleY  float32
}

// TargetDesc is one of a node's declared render targets.
type TargetDesc struct {
	Name      string
	Operation Operation
	Info      *AttachmentInfo
}

// RenderContext is handed to a node's RenderFn during render() (§4.7
// render: "For each node in graph order: begin render pass, invoke
// render_fn, end render pass").
type RenderContext struct {
	FrameIndex int
	Node       *Node
}

type RenderFn func(ctx *RenderContext)

// NodeState is the per-node, per-frame state machine (§4.6).
type NodeState int

const (
	NodeIdle NodeState = iota
	NodeBeginPass
	NodeRenderFn
	NodeEndPass
)

// Node is one pass in the graph.
type Node struct {
	Name     string
	Targets  []TargetDesc
	RenderFn RenderFn

	// ResolveMultisampleName/ResolveResolvedName record a call to
	// add_resolve_color_attachment, if any.
	ResolveMultisampleName string
	ResolveResolvedName    string

	state        NodeState
	renderPass   handle.Handle
	frameBuffers []handle.Handle // one per frame in flight, filled by compile
}

// Backend is the narrow seam onto engine/renderer/respool that compile
// and invalidate need: attachment textures, render passes, and frame
// buffers. engine/renderer/respool.Manager satisfies this structurally.
type Backend interface {
	CreateAttachmentTexture(width, height, samples uint32) (handle.Handle, error)
	DestroyTexture(h handle.Handle)
	CreateRenderPass(depth float32, stencil uint32) handle.Handle
	CreateFrameBuffer(attachments []handle.Handle, width, height uint32) handle.Handle
	DestroyFrameBuffer(h handle.Handle)
}

// attachment is the compiled state of one unique attachment name.
type attachment struct {
	info     AttachmentInfo
	texture  handle.Handle
	producer *Node
	width    uint32
	height   uint32
}

// Graph owns every node, attachment, and the compiled execution order.
// Not safe for concurrent declaration and compile; render() itself is
// expected to be driven only from the main thread per §5.
type Graph struct {
	mu sync.Mutex

	backend Backend

	nodes  []*Node
	byName map[string]*Node

	attachments map[string]*attachment
	presentable string

	backBufferWidth, backBufferHeight uint32
	msaaSamples                       uint32
	framesInFlight                    int

	order    []*Node
	compiled bool
}

// New creates an empty graph sized to the current back buffer, MSAA
// setting, and frame-in-flight count (§4.9 settings feed these in and
// trigger invalidate/recompile on change).
func New(backend Backend, backBufferWidth, backBufferHeight, msaaSamples uint32, framesInFlight int) *Graph {
	return &Graph{
		backend:          backend,
		byName:           make(map[string]*Node),
		attachments:      make(map[string]*attachment),
		backBufferWidth:  backBufferWidth,
		backBufferHeight: backBufferHeight,
		msaaSamples:      msaaSamples,
		framesInFlight:   framesInFlight,
	}
}

// AddNode implements §4.6 add_node. Declaration-only: no GPU resources
// are created until compile.
func (g *Graph) AddNode(name string, targets []TargetDesc, renderFn RenderFn) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	core.Assert(g.byName[name] == nil, "rendergraph: duplicate node %q", name)

	n := &Node{Name: name, Targets: targets, RenderFn: renderFn}
	g.nodes = append(g.nodes, n)
	g.byName[name] = n
	g.compiled = false
	return n
}

// AddResolveColorAttachment implements §4.6
// add_resolve_color_attachment.
func (g *Graph) AddResolveColorAttachment(node *Node, multisampleName, resolvedName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node.ResolveMultisampleName = multisampleName
	node.ResolveResolvedName = resolvedName
	g.compiled = false
}

// SetPresentableAttachment implements §4.6 set_presentable_attachment.
func (g *Graph) SetPresentableAttachment(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.presentable = name
	g.compiled = false
}

// Node looks up a declared node by name, for test and wiring code.
func (g *Graph) Node(name string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.byName[name]
}

// AttachmentTexture returns the compiled texture handle for a produced
// attachment, used by a node's render_fn to sample a prior pass's output.
func (g *Graph) AttachmentTexture(name string) (handle.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.attachments[name]
	if !ok {
		return handle.Invalid(), fmt.Errorf("rendergraph: %w: %s", core.ErrUnknownAttachment, name)
	}
	return a.texture, nil
}
