package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadean/forge/engine/assets"
	"github.com/hadean/forge/engine/handle"
	"github.com/hadean/forge/engine/math"
	"github.com/hadean/forge/engine/renderer/respool"
)

func TestAddChildLinksSiblingChain(t *testing.T) {
	s := New()
	a := s.AddChild(s.Root(), "a", *math.TransformCreate())
	b := s.AddChild(s.Root(), "b", *math.TransformCreate())
	c := s.AddChild(a, "c", *math.TransformCreate())

	children := s.Children(s.Root())
	require.Len(t, children, 2)
	assert.Equal(t, a, children[0])
	assert.Equal(t, b, children[1])

	grandchildren := s.Children(a)
	require.Len(t, grandchildren, 1)
	assert.Equal(t, c, grandchildren[0])
	assert.Equal(t, 4, s.Len())
}

func TestFromParsedBuildsTreeAndTransforms(t *testing.T) {
	parsed := &assets.ParsedScene{
		AmbientColor:   [3]float32{0.1, 0.2, 0.3},
		SkyboxMaterial: assets.UUID(7),
		Root: &assets.SceneNodeData{
			Name:  "root",
			Scale: [3]float32{1, 1, 1},
			Rotation: [4]float32{0, 0, 0, 1},
			Children: []*assets.SceneNodeData{
				{
					Name:           "mesh0",
					Position:       [3]float32{1, 2, 3},
					Rotation:       [4]float32{0, 0, 0, 1},
					Scale:          [3]float32{1, 1, 1},
					StaticMeshUUID: assets.UUID(42),
					MaterialOverrides: []assets.UUID{99},
				},
			},
		},
	}

	s := FromParsed(parsed)
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, s.AmbientColor)
	assert.Equal(t, uint64(7), s.SkyboxMaterial)

	children := s.Children(s.Root())
	require.Len(t, children, 1)
	child := s.Node(children[0])
	assert.Equal(t, uint64(42), child.StaticMeshUUID)
	assert.Equal(t, []uint64{99}, child.MaterialOverrides)
	assert.Equal(t, float32(1), child.Local.Position.X)
}

type fakeResolver struct {
	loaded    map[uint64]bool
	meshes    map[uint64]handle.Handle
	materials map[uint64]handle.Handle
}

func (f *fakeResolver) IsLoaded(uuid uint64) bool { return f.loaded[uuid] }
func (f *fakeResolver) ResolveStaticMesh(uuid uint64) (handle.Handle, bool) {
	h, ok := f.meshes[uuid]
	return h, ok
}
func (f *fakeResolver) ResolveMaterial(uuid uint64) (handle.Handle, bool) {
	h, ok := f.materials[uuid]
	return h, ok
}

func TestParseSceneFillsObjectDataAndPackets(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	meshHandle, err := pool.CreateStaticMesh(make([]byte, 12), []uint32{0, 1, 2})
	require.NoError(t, err)

	s := New()
	s.AddChild(s.Root(), "mesh0", *math.TransformFromPosition(math.Vec3{X: 1, Y: 0, Z: 0}))
	child := s.Children(s.Root())[0]
	s.Node(child).StaticMeshUUID = 42
	s.Node(child).MaterialOverrides = []uint64{0}

	resolver := &fakeResolver{
		loaded: map[uint64]bool{42: true},
		meshes: map[uint64]handle.Handle{42: meshHandle},
	}

	defaultMaterial := handle.Handle{Index: 1, Generation: 0}
	result := ParseScene(s, resolver, pool, defaultMaterial, nil)

	require.Len(t, result.ObjectData, 1)
	require.Len(t, result.Packets["opaque"], 1)
	assert.Equal(t, defaultMaterial, result.Packets["opaque"][0].Material)
	assert.Equal(t, meshHandle, result.Packets["opaque"][0].StaticMesh)
}

func TestParseSceneSkipsUnloadedMesh(t *testing.T) {
	pool := respool.New(nil, 2, 1<<20)
	s := New()
	s.AddChild(s.Root(), "mesh0", *math.TransformCreate())
	child := s.Children(s.Root())[0]
	s.Node(child).StaticMeshUUID = 42

	resolver := &fakeResolver{loaded: map[uint64]bool{}}
	result := ParseScene(s, resolver, pool, handle.Handle{}, nil)

	assert.Len(t, result.ObjectData, 0)
	assert.Len(t, result.Packets["opaque"], 0)
}
