// Package scene implements the runtime scene tree and §4.5's
// parse_scene traversal: combining transforms, filling per-frame
// ObjectData, and bucketing RenderPackets by render pass.
//
// Grounded on the teacher's engine/math.Transform
// (Position/Rotation/Scale, GetLocal/GetWorld composing Parent chains),
// generalized per §9's design note from owning *Transform pointers to
// indices into a flat node arena with a None sentinel, since the scene
// tree is reparented and walked far more often than the teacher's fixed
// object hierarchies.
package scene

import "github.com/hadean/forge/engine/math"

// NodeIndex indexes into a Scene's node arena. NoneIndex is the sentinel
// for "no such node" (root's Parent, a leaf's FirstChild, etc).
type NodeIndex int32

const NoneIndex NodeIndex = -1

// Node mirrors §3 Scene's per-node fields, with parent/child/sibling
// pointers replaced by arena indices (§9).
type Node struct {
	Name  string
	Local math.Transform

	Parent, FirstChild, LastChild, NextSibling NodeIndex

	StaticMeshUUID    uint64
	MaterialOverrides []uint64 // index-aligned with the static mesh's sub-meshes
}

// identityLocal returns a Transform with no position/rotation/scale
// offset, matching math.TransformCreate's defaults.
func identityLocal() math.Transform {
	return *math.TransformCreate()
}
