package respool

import "github.com/hadean/forge/engine/handle"

// CreateStaticMesh implements assets.GPUBackend and the vertex/index
// upload half of §4.4. Unlike CreateTexture it reserves no transfer-buffer
// range: the vertex and index slices are kept on the pool entry as given.
// Sub-mesh ranges are derived trivially here — one sub-mesh covering the
// whole index buffer — since builtin_staticmesh.go concatenates every GLTF
// primitive's indices into a single buffer.
func (m *Manager) CreateStaticMesh(vertices []byte, indices []uint32) (handle.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.staticMeshes.Acquire()
	*m.staticMeshes.Get(h) = StaticMesh{
		VertexData: vertices,
		Indices:    indices,
		SubMeshes:  []SubMesh{{FirstIndex: 0, IndexCount: uint32(len(indices))}},
	}
	return h, nil
}

// DestroyStaticMesh releases a static mesh's pool slot.
func (m *Manager) DestroyStaticMesh(h handle.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staticMeshes.Release(h)
}

// SubMeshes returns the drawable ranges for a static mesh, used by scene
// traversal (§4.5: "For each sub-mesh of that static mesh, resolve the
// material UUID ...").
func (m *Manager) SubMeshes(h handle.Handle) []SubMesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.staticMeshes.Get(h).SubMeshes
}
