package scene

import (
	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
	"github.com/hadean/forge/engine/math"
	"github.com/hadean/forge/engine/renderer/respool"
)

// MaxObjectDataCount caps the per-frame storage buffer per §6's defaults
// table ("max object data | 65,535").
const MaxObjectDataCount = 65535

// ObjectData is one entry of the per-frame storage buffer (§4.5 step 2).
type ObjectData struct {
	Model math.Mat4
}

// RenderPacket is one draw command awaiting dispatch into its target
// render pass's bucket (§4.5 step 3).
type RenderPacket struct {
	Material       handle.Handle
	StaticMesh     handle.Handle
	SubMeshIndex   uint32
	TransformIndex uint32
}

// AssetResolver is the narrow seam onto engine/assets that traversal
// needs: whether an asset is Loaded, and its resolved GPU handle.
// Implemented by a small adapter over assets.Manager + respool.Manager
// in the engine's wiring code, avoiding a direct import cycle between
// engine/scene and engine/assets beyond the plain-data ParsedScene type.
type AssetResolver interface {
	IsLoaded(uuid uint64) bool
	ResolveStaticMesh(uuid uint64) (handle.Handle, bool)
	ResolveMaterial(uuid uint64) (handle.Handle, bool)
}

// PassRouter decides which render-graph node's bucket a packet belongs
// in, given the resolved material UUID (0 if the node had no override).
type PassRouter func(materialUUID uint64) string

// Result is parse_scene's output: the per-frame ObjectData buffer and
// render passes' packet buckets, with the opaque bucket sorted by
// SortOpaque (a deterministic, not stable, sort).
type Result struct {
	ObjectData []ObjectData
	Packets    map[string][]RenderPacket
}

// ParseScene implements §4.5 parse_scene: walks the tree from root,
// composing global = parent * local, filling ObjectData for every node
// with a Loaded static mesh, and appending one RenderPacket per sub-mesh
// with pass routing and the default-material fallback baked in.
func ParseScene(s *Scene, resolver AssetResolver, pool *respool.Manager, defaultMaterial handle.Handle, route PassRouter) *Result {
	result := &Result{Packets: make(map[string][]RenderPacket)}

	var walk func(idx NodeIndex, parentWorld math.Mat4)
	walk = func(idx NodeIndex, parentWorld math.Mat4) {
		n := s.Node(idx)
		local := n.Local.GetLocal()
		world := local.Mul(parentWorld)

		if n.StaticMeshUUID != 0 && resolver.IsLoaded(n.StaticMeshUUID) {
			meshHandle, ok := resolver.ResolveStaticMesh(n.StaticMeshUUID)
			if ok {
				appendObjectAndPackets(result, pool, n, world, meshHandle, resolver, defaultMaterial, route)
			}
		}

		for _, c := range s.Children(idx) {
			walk(c, world)
		}
	}
	walk(s.Root(), math.NewMat4Identity())

	SortOpaque(result.Packets["opaque"], pool)
	return result
}

func appendObjectAndPackets(result *Result, pool *respool.Manager, n *Node, world math.Mat4, meshHandle handle.Handle, resolver AssetResolver, defaultMaterial handle.Handle, route PassRouter) {
	core.Assert(len(result.ObjectData) < MaxObjectDataCount, "scene: ObjectData overflow: more than %d visible meshes", MaxObjectDataCount)
	transformIndex := uint32(len(result.ObjectData))
	result.ObjectData = append(result.ObjectData, ObjectData{Model: world})

	for i, sm := range pool.SubMeshes(meshHandle) {
		_ = sm
		var materialUUID uint64
		if i < len(n.MaterialOverrides) {
			materialUUID = n.MaterialOverrides[i]
		}

		matHandle := defaultMaterial
		if materialUUID != 0 {
			if resolved, ok := resolver.ResolveMaterial(materialUUID); ok && resolver.IsLoaded(materialUUID) {
				matHandle = resolved
			}
		}

		pass := "opaque"
		if route != nil {
			pass = route(materialUUID)
		}
		result.Packets[pass] = append(result.Packets[pass], RenderPacket{
			Material:       matHandle,
			StaticMesh:     meshHandle,
			SubMeshIndex:   uint32(i),
			TransformIndex: transformIndex,
		})
	}
}
