package assets

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hadean/forge/engine/core"
)

// SceneNodeData is one textual `.hascene` tree node (§6): a name,
// transform left opaque here (engine/scene owns the transform type and
// traversal), a static mesh reference, and per-submesh material
// overrides.
type SceneNodeData struct {
	Name              string
	Position          [3]float32
	Rotation          [4]float32 // quaternion (x, y, z, w)
	Scale             [3]float32
	StaticMeshUUID    UUID
	MaterialOverrides []UUID
	Children          []*SceneNodeData
}

// defaultScale and defaultRotation are the transform a node_begin line
// starts with in the absence of an explicit `transform` line.
var (
	defaultScale    = [3]float32{1, 1, 1}
	defaultRotation = [4]float32{0, 0, 0, 1}
)

// ParsedScene is the decoded form of a `.hascene` file.
type ParsedScene struct {
	SkyboxMaterial UUID
	AmbientColor   [3]float32
	Root           *SceneNodeData
}

// loadScene parses the scene file. A scene has no GPU handle of its own —
// it is consumed by engine/scene's traversal, not the resource manager —
// so the load_fn only validates the file is well-formed.
func loadScene(m *Manager, effectivePath string, embed *EmbedParams) (LoadResult, error) {
	if _, err := parseSceneFile(m.resolvePath(effectivePath)); err != nil {
		return LoadResult{}, err
	}
	return LoadResult{OK: true}, nil
}

func unloadScene(m *Manager, result LoadResult) {
	_ = result
}

// onImportScene registers the skybox material as the scene's implicit
// parent when present.
func onImportScene(m *Manager, self UUID, path string) error {
	parsed, err := parseSceneFile(m.resolvePath(path))
	if err != nil {
		return err
	}
	if parsed.SkyboxMaterial != InvalidUUID {
		m.setParent(self, parsed.SkyboxMaterial)
	}
	return nil
}

// ImportScene implements Scn-1: importing a scene path that does not yet
// exist on disk creates and persists a default scene (root node only,
// ambient color (0,0,0), no skybox material) before the ordinary
// import_asset flow runs, so re-importing after a restart returns the
// same UUID rather than failing on a missing file.
func (m *Manager) ImportScene(path string) (UUID, error) {
	m.mu.Lock()
	root := m.root
	m.mu.Unlock()

	full := filepath.Join(root, path)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		if err := writeDefaultSceneFile(full); err != nil {
			return InvalidUUID, fmt.Errorf("assets: creating default scene %q: %w", path, err)
		}
		core.LogInfo("assets: created default scene %q", path)
	}
	return m.ImportAsset(path)
}

// ParseScene exposes the `.hascene` parser to engine/scene, which owns
// the actual node arena and transform composition (§9: scene tree
// lives outside the asset manager).
func (m *Manager) ParseScene(path string) (*ParsedScene, error) {
	return parseSceneFile(m.resolvePath(path))
}

func parseSceneFile(path string) (*ParsedScene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := &ParsedScene{Root: &SceneNodeData{Name: "root", Scale: defaultScale, Rotation: defaultRotation}}
	sc := bufio.NewScanner(f)
	var stack []*SceneNodeData
	cur := out.Root

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "skybox_material":
			if len(fields) != 2 {
				return nil, fmt.Errorf("scene %q: malformed skybox_material", path)
			}
			id, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("scene %q: bad skybox_material uuid: %w", path, err)
			}
			out.SkyboxMaterial = UUID(id)
		case "ambient_color":
			if len(fields) != 4 {
				return nil, fmt.Errorf("scene %q: malformed ambient_color", path)
			}
			for i := 0; i < 3; i++ {
				v, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("scene %q: bad ambient_color component: %w", path, err)
				}
				out.AmbientColor[i] = float32(v)
			}
		case "node_begin":
			if len(fields) != 2 {
				return nil, fmt.Errorf("scene %q: malformed node_begin", path)
			}
			child := &SceneNodeData{Name: fields[1], Scale: defaultScale, Rotation: defaultRotation}
			cur.Children = append(cur.Children, child)
			stack = append(stack, cur)
			cur = child
		case "transform":
			if len(fields) != 11 {
				return nil, fmt.Errorf("scene %q: malformed transform", path)
			}
			vals := make([]float32, 10)
			for i := 0; i < 10; i++ {
				v, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("scene %q: bad transform component: %w", path, err)
				}
				vals[i] = float32(v)
			}
			copy(cur.Position[:], vals[0:3])
			copy(cur.Rotation[:], vals[3:7])
			copy(cur.Scale[:], vals[7:10])
		case "static_mesh":
			if len(fields) != 2 {
				return nil, fmt.Errorf("scene %q: malformed static_mesh", path)
			}
			id, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("scene %q: bad static_mesh uuid: %w", path, err)
			}
			cur.StaticMeshUUID = UUID(id)
		case "material_override":
			if len(fields) != 2 {
				return nil, fmt.Errorf("scene %q: malformed material_override", path)
			}
			id, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("scene %q: bad material_override uuid: %w", path, err)
			}
			cur.MaterialOverrides = append(cur.MaterialOverrides, UUID(id))
		case "node_end":
			if len(stack) == 0 {
				return nil, fmt.Errorf("scene %q: unbalanced node_end", path)
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		default:
			core.LogWarn("scene %q: unknown key %q", path, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("scene %q: missing node_end", path)
	}
	return out, nil
}

func writeDefaultSceneFile(full string) error {
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "ambient_color 0 0 0\n")
	return w.Flush()
}
