package scene

import (
	"github.com/hadean/forge/engine/assets"
	"github.com/hadean/forge/engine/math"
)

// FromParsed builds a runtime Scene from a decoded `.hascene` file
// (engine/assets.ParsedScene), composing each node's math.Transform from
// the textual position/rotation/scale triple and copying its
// static-mesh/material-override references as plain uint64s so this
// package never has to import engine/assets.UUID's wrapper type.
func FromParsed(parsed *assets.ParsedScene) *Scene {
	s := New()
	s.AmbientColor = parsed.AmbientColor
	s.SkyboxMaterial = uint64(parsed.SkyboxMaterial)

	applyNodeData(s, s.Root(), parsed.Root)
	for _, child := range parsed.Root.Children {
		addSubtree(s, s.Root(), child)
	}
	return s
}

func addSubtree(s *Scene, parent NodeIndex, data *assets.SceneNodeData) {
	idx := s.AddChild(parent, data.Name, transformFromData(data))
	applyNodeData(s, idx, data)
	for _, child := range data.Children {
		addSubtree(s, idx, child)
	}
}

func applyNodeData(s *Scene, idx NodeIndex, data *assets.SceneNodeData) {
	n := s.Node(idx)
	n.StaticMeshUUID = uint64(data.StaticMeshUUID)
	n.MaterialOverrides = make([]uint64, len(data.MaterialOverrides))
	for i, m := range data.MaterialOverrides {
		n.MaterialOverrides[i] = uint64(m)
	}
}

func transformFromData(data *assets.SceneNodeData) math.Transform {
	t := math.TransformFromPositionRotationScale(
		math.Vec3{X: data.Position[0], Y: data.Position[1], Z: data.Position[2]},
		math.Quaternion{X: data.Rotation[0], Y: data.Rotation[1], Z: data.Rotation[2], W: data.Rotation[3]},
		math.Vec3{X: data.Scale[0], Y: data.Scale[1], Z: data.Scale[2]},
	)
	return *t
}
