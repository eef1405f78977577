package assets

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
)

// MaterialPropertyValue is one parsed `(property_name, data_type, value)`
// triple from a `.hamaterial` file (§6). Texture-valued properties carry a
// UUID in TextureRef rather than Scalars.
type MaterialPropertyValue struct {
	Name       string
	DataType   string // "float", "vec3", "vec4", "texture", "color"
	Scalars    []float32
	TextureRef UUID
}

// ParsedMaterial is the intermediate form loadMaterial hands to the GPU
// backend, and the form OnImport needs to discover the implicit shader
// parent.
type ParsedMaterial struct {
	ShaderUUID UUID
	Properties []MaterialPropertyValue
}

// loadMaterial parses a `.hamaterial` text file and asks the GPU backend
// to instantiate it against its (already-loaded, since it's the implicit
// parent) shader. Grounded on the teacher's
// engine/assets/loaders/material.go `key = value` scanner idiom, adapted
// from a fixed MaterialConfig schema to the open property list of §4.4's
// reflected Material_Properties struct.
func loadMaterial(m *Manager, effectivePath string, embed *EmbedParams) (LoadResult, error) {
	var parsed *ParsedMaterial
	var err error
	if embed != nil {
		parsed, err = parseGLTFMaterial(m, effectivePath, embed)
		if err == nil {
			parsed.ShaderUUID = m.parentOf(embed.ParentUUID)
		}
	} else {
		parsed, err = parseMaterialFile(m.resolvePath(effectivePath))
	}
	if err != nil {
		return LoadResult{}, err
	}

	backend := m.backend()
	if backend == nil {
		return LoadResult{}, core.ErrNoGPUBackend
	}
	if parsed.ShaderUUID != InvalidUUID && !m.IsLoaded(parsed.ShaderUUID) {
		return LoadResult{}, fmt.Errorf("material %q: shader %d is not loaded", effectivePath, uint64(parsed.ShaderUUID))
	}
	var shaderHandle handle.Handle
	if parsed.ShaderUUID != InvalidUUID {
		shaderHandle = m.Get(parsed.ShaderUUID).Handle
	}

	encoded := encodeMaterialProperties(parsed.Properties)
	h, err := backend.CreateMaterial(shaderHandle, encoded)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{OK: true, Handle: h}, nil
}

// parseGLTFMaterial derives a ParsedMaterial from the GLTF material at
// embed.DataID, mapping the PBR metallic-roughness base color factor onto
// an albedo_color property (§4.6 Scn-2: "Acquiring the model first
// acquires the opaque_pbr shader ... then the materials"). The caller
// fills in ShaderUUID from the model's own parent, since the shader is
// the model's implicit parent, not the material's.
func parseGLTFMaterial(m *Manager, gltfPath string, embed *EmbedParams) (*ParsedMaterial, error) {
	doc, err := gltf.Open(m.resolvePath(gltfPath))
	if err != nil {
		return nil, err
	}
	idx := int(embed.DataID)
	if idx < 0 || idx >= len(doc.Materials) {
		return nil, fmt.Errorf("gltf %q: material index %d out of range", gltfPath, idx)
	}
	mat := doc.Materials[idx]
	out := &ParsedMaterial{}
	if mat.PBRMetallicRoughness != nil {
		c := [4]float32{1, 1, 1, 1}
		if mat.PBRMetallicRoughness.BaseColorFactor != nil {
			c = *mat.PBRMetallicRoughness.BaseColorFactor
		}
		out.Properties = append(out.Properties, MaterialPropertyValue{
			Name:     "albedo_color",
			DataType: "color",
			Scalars:  []float32{c[0], c[1], c[2], c[3]},
		})
	}
	return out, nil
}

func unloadMaterial(m *Manager, result LoadResult) {
	_ = result
}

// onImportMaterial registers the implicit shader dependency the first
// time a standalone `.hamaterial` file is imported (embedded materials
// produced by the model loader set their parent directly instead).
func onImportMaterial(m *Manager, self UUID, path string) error {
	if isEmbeddedPath(path) {
		return nil
	}
	parsed, err := parseMaterialFile(m.resolvePath(path))
	if err != nil {
		return err
	}
	if parsed.ShaderUUID != InvalidUUID {
		m.setParent(self, parsed.ShaderUUID)
	}
	return nil
}

func parseMaterialFile(path string) (*ParsedMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := &ParsedMaterial{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "shader":
			if len(fields) != 2 {
				return nil, fmt.Errorf("material %q: malformed shader line", path)
			}
			id, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("material %q: bad shader uuid: %w", path, err)
			}
			out.ShaderUUID = UUID(id)
		case "property":
			if len(fields) < 3 {
				core.LogWarn("material %q: skipping malformed property line %q", path, line)
				continue
			}
			prop := MaterialPropertyValue{Name: fields[1], DataType: fields[2]}
			if fields[2] == "texture" {
				if len(fields) != 4 {
					core.LogWarn("material %q: texture property %q missing uuid", path, fields[1])
					continue
				}
				id, err := strconv.ParseUint(fields[3], 10, 64)
				if err != nil {
					core.LogWarn("material %q: texture property %q bad uuid", path, fields[1])
					continue
				}
				prop.TextureRef = UUID(id)
			} else {
				for _, v := range fields[3:] {
					f64, err := strconv.ParseFloat(v, 32)
					if err != nil {
						core.LogWarn("material %q: property %q bad scalar %q", path, fields[1], v)
						continue
					}
					prop.Scalars = append(prop.Scalars, float32(f64))
				}
			}
			out.Properties = append(out.Properties, prop)
		default:
			core.LogWarn("material %q: unknown key %q", path, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// encodeMaterialProperties flattens the parsed properties into the raw
// byte blob CreateMaterial expects to copy into a Material_Properties CPU
// shadow (§4.4 create_material); texture refs are passed through as raw
// UUID values for the backend to resolve against the white-pixel fallback.
func encodeMaterialProperties(props []MaterialPropertyValue) []byte {
	var buf []byte
	for _, p := range props {
		if p.DataType == "texture" {
			buf = appendUint64(buf, uint64(p.TextureRef))
			continue
		}
		for _, s := range p.Scalars {
			buf = appendFloat32(buf, s)
		}
	}
	return buf
}

func appendUint64(buf []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(v>>(8*i)))
	}
	return buf
}

func appendFloat32(buf []byte, v float32) []byte {
	bits := math.Float32bits(v)
	for i := 0; i < 4; i++ {
		buf = append(buf, byte(bits>>(8*i)))
	}
	return buf
}
