package assets

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/hadean/forge/engine/core"
)

// loadStaticMesh decodes one GLTF mesh's vertex/index accessors into flat
// buffers and hands them to the GPU backend. Grounded on
// flywave-go-mst/gltf_to_mst.go's transMesh — manual BufferView/Buffer
// slicing plus encoding/binary.Read per accessor, since qmuntal/gltf
// exposes raw accessor geometry rather than a typed mesh API. Standalone
// (non-embedded) .hamesh files are not produced by any importer in this
// engine today; static meshes only arise embedded in a model.
func loadStaticMesh(m *Manager, effectivePath string, embed *EmbedParams) (LoadResult, error) {
	if embed == nil {
		return LoadResult{}, fmt.Errorf("static_mesh: %q: standalone static meshes are not supported", effectivePath)
	}
	doc, err := gltf.Open(m.resolvePath(effectivePath))
	if err != nil {
		return LoadResult{}, err
	}
	idx := int(embed.DataID)
	if idx < 0 || idx >= len(doc.Meshes) {
		return LoadResult{}, fmt.Errorf("gltf %q: mesh index %d out of range", effectivePath, idx)
	}
	mesh := doc.Meshes[idx]

	var vertices []byte
	var indices []uint32
	for _, prim := range mesh.Primitives {
		if prim.Indices != nil {
			idxVals, err := readIndexAccessor(doc, int(*prim.Indices))
			if err != nil {
				return LoadResult{}, err
			}
			indices = append(indices, idxVals...)
		}
		if posIdx, ok := prim.Attributes["POSITION"]; ok {
			posBytes, err := readAccessorRaw(doc, int(posIdx))
			if err != nil {
				return LoadResult{}, err
			}
			vertices = append(vertices, posBytes...)
		}
	}

	backend := m.backend()
	if backend == nil {
		return LoadResult{}, core.ErrNoGPUBackend
	}
	h, err := backend.CreateStaticMesh(vertices, indices)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{OK: true, Handle: h}, nil
}

func unloadStaticMesh(m *Manager, result LoadResult) {
	_ = result
}

func readAccessorRaw(doc *gltf.Document, accIdx int) ([]byte, error) {
	acc := doc.Accessors[accIdx]
	if acc.BufferView == nil {
		return nil, fmt.Errorf("accessor %d has no buffer view", accIdx)
	}
	view := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[view.Buffer]
	start := int(view.ByteOffset) + int(acc.ByteOffset)
	length := int(view.ByteLength)
	if length <= 0 || start+length > len(buf.Data) {
		return nil, fmt.Errorf("accessor %d: buffer view out of range", accIdx)
	}
	out := make([]byte, length)
	copy(out, buf.Data[start:start+length])
	return out, nil
}

func readIndexAccessor(doc *gltf.Document, accIdx int) ([]uint32, error) {
	acc := doc.Accessors[accIdx]
	if acc.BufferView == nil {
		return nil, fmt.Errorf("index accessor %d has no buffer view", accIdx)
	}
	view := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[view.Buffer]

	bytesPer := 4
	switch acc.ComponentType {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		bytesPer = 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		bytesPer = 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		bytesPer = 4
	}

	start := int(view.ByteOffset) + int(acc.ByteOffset)
	length := int(acc.Count) * bytesPer
	if start+length > len(buf.Data) {
		return nil, fmt.Errorf("index accessor %d: out of range", accIdx)
	}
	r := bytes.NewReader(buf.Data[start : start+length])
	out := make([]uint32, acc.Count)
	for i := range out {
		switch bytesPer {
		case 1:
			var v uint8
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			out[i] = uint32(v)
		case 2:
			var v uint16
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			out[i] = uint32(v)
		default:
			var v uint32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			out[i] = v
		}
	}
	return out, nil
}
