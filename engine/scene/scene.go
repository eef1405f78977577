package scene

import (
	"sync"

	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/math"
)

// Scene owns the node arena plus the two scene-level fields §3 Scene
// names outside the tree: ambient color and the skybox material.
// `root` is implicit and never destroyed (§3).
type Scene struct {
	mu sync.Mutex

	nodes []Node
	root  NodeIndex

	AmbientColor   [3]float32
	SkyboxMaterial uint64
}

// New creates a scene containing only the root node.
func New() *Scene {
	s := &Scene{root: 0}
	s.nodes = []Node{{
		Name:       "root",
		Local:      identityLocal(),
		Parent:     NoneIndex,
		FirstChild: NoneIndex,
		LastChild:  NoneIndex,
		NextSibling: NoneIndex,
	}}
	return s
}

// Root returns the always-present root node's index.
func (s *Scene) Root() NodeIndex {
	return s.root
}

// Node returns a pointer into the arena. The pointer is invalidated by
// any subsequent AddChild call that grows the backing slice — callers
// needing to retain a reference across mutation should re-look-up by
// index.
func (s *Scene) Node(i NodeIndex) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &s.nodes[i]
}

// AddChild appends a new node under parent, linking it into parent's
// first_child/last_child/next_sibling chain.
func (s *Scene) AddChild(parent NodeIndex, name string, local math.Transform) NodeIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	core.Assert(int(parent) >= 0 && int(parent) < len(s.nodes), "scene: AddChild: invalid parent index %d", parent)

	idx := NodeIndex(len(s.nodes))
	s.nodes = append(s.nodes, Node{
		Name:        name,
		Local:       local,
		Parent:      parent,
		FirstChild:  NoneIndex,
		LastChild:   NoneIndex,
		NextSibling: NoneIndex,
	})

	p := &s.nodes[parent]
	if p.FirstChild == NoneIndex {
		p.FirstChild = idx
	} else {
		s.nodes[p.LastChild].NextSibling = idx
	}
	p.LastChild = idx
	return idx
}

// Children returns i's direct children in sibling order.
func (s *Scene) Children(i NodeIndex) []NodeIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []NodeIndex
	for c := s.nodes[i].FirstChild; c != NoneIndex; c = s.nodes[c].NextSibling {
		out = append(out, c)
	}
	return out
}

// Len returns the number of nodes in the arena, including root.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}
