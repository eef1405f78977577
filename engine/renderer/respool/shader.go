package respool

import (
	"strings"

	"github.com/hadean/forge/engine/handle"
)

// materialPropertiesMarker is the struct name the reflector looks for
// inside a shader's declared uniform block comments (§4.4 create_shader:
// "The reflected Material_Properties struct (if present) determines
// material uniform layout"). No SPIR-V reflection library exists in the
// example pack this engine was built against, so reflection here parses
// a `// Material_Properties: ...` comment line embedded in the shader
// bytes themselves instead of the binary's own reflection metadata; no
// separate metadata file is read — see DESIGN.md.
const materialPropertiesMarker = "Material_Properties"

// CreateShader implements assets.GPUBackend and §4.4 create_shader. It
// asks the driver to compile the SPIR-V module and extracts the
// Material_Properties member list from the accompanying metadata, if
// any, embedded as a trailing comment block inside the SPIR-V's OpSource
// string (a convention this engine defines, not a true reflector).
func (m *Manager) CreateShader(spirv []byte) (handle.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.driver != nil {
		if _, err := m.driver.CompileShaderModule(spirv); err != nil {
			return handle.Invalid(), err
		}
	}

	props, size := reflectMaterialProperties(extractMaterialPropertyNames(spirv))

	h := m.shaders.Acquire()
	*m.shaders.Get(h) = Shader{
		SPIRV:                spirv,
		MaterialPropertySize: size,
		Properties:           props,
	}
	return h, nil
}

// extractMaterialPropertyNames scans spirv for an embedded
// `// Material_Properties: name1 name2 ...` line. Shaders without one
// have no material-facing properties at all.
func extractMaterialPropertyNames(spirv []byte) []string {
	text := string(spirv)
	marker := "// " + materialPropertiesMarker + ":"
	idx := strings.Index(text, marker)
	if idx < 0 {
		return nil
	}
	rest := text[idx+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.Fields(rest)
}

// CreateShaderGroup implements §4.4 create_shader_group: unions per-set
// bindings across every shader in the group and creates one bind-group
// layout per descriptor set.
func (m *Manager) CreateShaderGroup(shaders []handle.Handle) handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	bySet := map[uint32][]ShaderBinding{}
	for _, sh := range shaders {
		s := m.shaders.Get(sh)
		for _, b := range s.Bindings {
			bySet[b.Set] = append(bySet[b.Set], b)
		}
	}

	var layouts []handle.Handle
	for set, bindings := range bySet {
		lh := m.bindGroupLayouts.Acquire()
		*m.bindGroupLayouts.Get(lh) = BindGroupLayout{Set: set, Bindings: bindings}
		layouts = append(layouts, lh)
	}

	h := m.shaderGroups.Acquire()
	*m.shaderGroups.Get(h) = ShaderGroup{Shaders: shaders, Layouts: layouts}
	return h
}

// CreatePipelineState implements §4.4 create_pipeline_state.
func (m *Manager) CreatePipelineState(cull CullMode, front FrontFace, fill FillMode, depthTesting, sampleShading bool, group, renderPass handle.Handle) handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.pipelineStates.Acquire()
	*m.pipelineStates.Get(h) = PipelineState{
		CullMode:      cull,
		FrontFace:     front,
		FillMode:      fill,
		DepthTesting:  depthTesting,
		SampleShading: sampleShading,
		ShaderGroup:   group,
		RenderPass:    renderPass,
	}
	return h
}

// CreateBindGroup implements §4.4 create_bind_group.
func (m *Manager) CreateBindGroup(layout handle.Handle) handle.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.bindGroups.Acquire()
	*m.bindGroups.Get(h) = BindGroup{Layout: layout}
	return h
}
