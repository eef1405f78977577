package respool

import (
	"encoding/binary"
	"strings"

	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
)

// PropertyDescriptor is a reflected member of a shader's
// Material_Properties struct (§3 Material, §4.4 create_material): naming
// convention determines whether it is a texture reference, a color, or a
// plain scalar.
type PropertyDescriptor struct {
	Name       string
	Offset     uint32
	Size       uint32
	IsTexture  bool
	IsColor    bool
}

const maxFramesInFlight = 3

// Material mirrors §3 Material: a pipeline, the reflected property table,
// a CPU shadow, per-frame uniform buffers/bind groups, and a dirty
// counter that decays to zero after FRAMES_IN_FLIGHT uses with no
// mutation (§8 property 5).
type Material struct {
	Pipeline   handle.Handle
	Properties []PropertyDescriptor
	Data       []byte

	Buffers    [maxFramesInFlight]handle.Handle
	BindGroups [maxFramesInFlight]handle.Handle

	// textureRefs mirrors Properties for texture-tagged members: the
	// asset UUID last set via SetProperty, independent of whether it has
	// resolved to a real GPU handle yet.
	textureRefs map[string]uint64

	dirtyCount int
}

// CreateMaterial implements §4.4 create_material: locates the shader's
// Material_Properties layout, sizes the CPU shadow to the last member's
// offset+size, and allocates per-frame uniform buffers and bind groups.
func (m *Manager) CreateMaterial(shader handle.Handle, initialProperties []byte) (handle.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sh := m.shaders.Get(shader)
	dataSize := sh.MaterialPropertySize
	if dataSize == 0 {
		for _, p := range sh.Properties {
			end := p.Offset + p.Size
			if end > dataSize {
				dataSize = end
			}
		}
	}

	mat := Material{
		Pipeline:    handle.Invalid(),
		Properties:  sh.Properties,
		Data:        make([]byte, dataSize),
		textureRefs: make(map[string]uint64),
		dirtyCount:  m.framesInFlight,
	}
	if len(initialProperties) > 0 && len(initialProperties) <= len(mat.Data) {
		copy(mat.Data, initialProperties)
	}

	for i := 0; i < m.framesInFlight && i < maxFramesInFlight; i++ {
		bh := m.buffers.Acquire()
		*m.buffers.Get(bh) = Buffer{Size: uint64(dataSize), Usage: BufferUsageUniform, IsDeviceLocal: false}
		mat.Buffers[i] = bh

		bgh := m.bindGroups.Acquire()
		*m.bindGroups.Get(bgh) = BindGroup{Sampler: m.defaultSampler}
		mat.BindGroups[i] = bgh
	}

	h := m.materials.Acquire()
	*m.materials.Get(h) = mat
	return h, nil
}

// MaterialPipeline returns the pipeline state a material was bound to at
// creation, used by engine/scene's render packet sort (§4.5: sort by
// "(pipeline, material, static_mesh, sub_mesh_index)").
func (m *Manager) MaterialPipeline(h handle.Handle) handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.materials.Get(h).Pipeline
}

// SetProperty implements §4.4 set_property: updates the CPU shadow, and
// for texture-valued properties stores the UUID and leaves resolution
// (white-pixel fallback vs real index) to the next use_material call,
// acquiring the referenced asset in the background if it isn't Loaded
// (§8 Scn-3).
//
// acquireIfUnloaded is supplied by the caller (engine/assets.Acquire), so
// the resource manager never calls into an asset Manager itself; this
// package imports engine/assets only for the GPUBackend interface check.
func (m *Manager) SetProperty(material handle.Handle, name string, value []byte, textureUUID uint64, acquireIfUnloaded func(uuid uint64)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mat := m.materials.Get(material)
	var prop *PropertyDescriptor
	for i := range mat.Properties {
		if mat.Properties[i].Name == name {
			prop = &mat.Properties[i]
			break
		}
	}
	core.Assert(prop != nil, "respool: SetProperty: unknown property %q", name)

	if prop.IsTexture {
		mat.textureRefs[name] = textureUUID
		if acquireIfUnloaded != nil {
			acquireIfUnloaded(textureUUID)
		}
	} else if len(value) > 0 {
		end := int(prop.Offset) + len(value)
		if end <= len(mat.Data) {
			copy(mat.Data[prop.Offset:], value)
		}
	}
	mat.dirtyCount = m.framesInFlight
}

// UseMaterial implements §4.4 use_material: if dirty, re-resolves texture
// refs (falling back to the white pixel for anything not yet Loaded,
// keeping the material dirty so the next frame retries), memcpy's the
// shadow into frameIndex's buffer, and reports the bind group to bind to
// set 2.
//
// resolveTexture maps an asset UUID to its resolved GPU texture handle
// index, or ok=false if it is not Loaded (§8 Scn-3 fallback).
func (m *Manager) UseMaterial(material handle.Handle, frameIndex int, resolveTexture func(uuid uint64) (handle.Handle, bool)) handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	mat := m.materials.Get(material)
	if mat.dirtyCount > 0 {
		stillDirty := false
		for _, prop := range mat.Properties {
			if !prop.IsTexture {
				continue
			}
			uuid := mat.textureRefs[prop.Name]
			texHandle := m.whitePixel
			if uuid != 0 {
				if resolved, ok := resolveTexture(uuid); ok {
					texHandle = resolved
				} else {
					stillDirty = true
				}
			}
			binary.LittleEndian.PutUint32(mat.Data[prop.Offset:], texHandle.Index)
		}
		m.writeBufferLocked(mat.Buffers[frameIndex], mat.Data)
		mat.dirtyCount--
		if stillDirty {
			mat.dirtyCount = m.framesInFlight
		}
	}
	return mat.BindGroups[frameIndex]
}

// reflectMaterialProperties tags struct members by naming convention (§4.4
// create_material: "_texture" suffix => texture ref, "_color" suffix =>
// color). offset accumulates assuming 4-byte scalar/vec4 alignment, which
// is adequate for the engine's own shaders; a real SPIR-V reflector would
// read true offsets from the shader binary.
func reflectMaterialProperties(names []string) ([]PropertyDescriptor, uint32) {
	var props []PropertyDescriptor
	var offset uint32
	for _, name := range names {
		size := uint32(4)
		isTexture := strings.HasSuffix(name, "_texture")
		isColor := strings.HasSuffix(name, "_color")
		if isColor {
			size = 16 // vec4
		}
		props = append(props, PropertyDescriptor{
			Name:      name,
			Offset:    offset,
			Size:      size,
			IsTexture: isTexture,
			IsColor:   isColor,
		})
		offset += size
	}
	return props, offset
}
