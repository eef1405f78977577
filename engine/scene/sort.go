package scene

import (
	"sort"

	"github.com/hadean/forge/engine/renderer/respool"
)

// SortOpaque implements §4.5's ordering: "(pipeline, material,
// static_mesh, sub_mesh_index) ascending; ties broken by ascending
// handle index. Stable sort not required" (§8 property 6 only demands
// that sorting the same scene twice reproduces the identical sequence,
// which a deterministic comparator guarantees regardless of sort
// stability).
func SortOpaque(packets []RenderPacket, pool *respool.Manager) {
	sort.Slice(packets, func(i, j int) bool {
		a, b := packets[i], packets[j]
		pa, pb := pool.MaterialPipeline(a.Material), pool.MaterialPipeline(b.Material)
		if pa.Index != pb.Index {
			return pa.Index < pb.Index
		}
		if a.Material.Index != b.Material.Index {
			return a.Material.Index < b.Material.Index
		}
		if a.StaticMesh.Index != b.StaticMesh.Index {
			return a.StaticMesh.Index < b.StaticMesh.Index
		}
		if a.SubMeshIndex != b.SubMeshIndex {
			return a.SubMeshIndex < b.SubMeshIndex
		}
		return a.TransformIndex < b.TransformIndex
	})
}
