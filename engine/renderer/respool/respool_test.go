package respool

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadean/forge/engine/handle"
)

// stubDriver never touches a real GPU: it exists so Manager's pools can be
// exercised without engine/renderer/vulkan.
type stubDriver struct{}

func (stubDriver) UploadTexture(width, height uint32, channelCount uint8, pixels []byte, generateMips bool) error {
	return nil
}

func (stubDriver) CreateWriteableTexture(width, height uint32, sampleCount uint32) error {
	return nil
}

func (stubDriver) CompileShaderModule(spirv []byte) (uint64, error) {
	return 1, nil
}

func newTestManager() *Manager {
	return New(stubDriver{}, 3, 1<<20)
}

func TestNewSeedsWhitePixelTexture(t *testing.T) {
	m := newTestManager()
	assert.True(t, m.textures.IsValid(m.WhitePixelTexture()))
}

func TestCreateShaderReflectsMaterialProperties(t *testing.T) {
	m := newTestManager()
	spirv := []byte("fake-spirv\n// Material_Properties: albedo_color albedo_texture roughness\n")

	h, err := m.CreateShader(spirv)
	require.NoError(t, err)

	sh := m.shaders.Get(h)
	require.Len(t, sh.Properties, 3)
	assert.Equal(t, "albedo_color", sh.Properties[0].Name)
	assert.True(t, sh.Properties[0].IsColor)
	assert.EqualValues(t, 16, sh.Properties[0].Size)

	assert.Equal(t, "albedo_texture", sh.Properties[1].Name)
	assert.True(t, sh.Properties[1].IsTexture)

	assert.Equal(t, "roughness", sh.Properties[2].Name)
	assert.False(t, sh.Properties[2].IsTexture)
	assert.False(t, sh.Properties[2].IsColor)
}

func TestCreateShaderWithNoMarkerHasNoProperties(t *testing.T) {
	m := newTestManager()
	h, err := m.CreateShader([]byte("fake-spirv, no marker"))
	require.NoError(t, err)
	assert.Empty(t, m.shaders.Get(h).Properties)
}

func TestCreateMaterialSizesDataToPropertyLayout(t *testing.T) {
	m := newTestManager()
	spirv := []byte("// Material_Properties: albedo_color\n")
	shader, err := m.CreateShader(spirv)
	require.NoError(t, err)

	mat, err := m.CreateMaterial(shader, nil)
	require.NoError(t, err)

	data := m.materials.Get(mat)
	assert.EqualValues(t, 16, len(data.Data))
}

func TestSetPropertyThenUseMaterialFallsBackToWhitePixel(t *testing.T) {
	m := newTestManager()
	spirv := []byte("// Material_Properties: albedo_texture\n")
	shader, err := m.CreateShader(spirv)
	require.NoError(t, err)
	mat, err := m.CreateMaterial(shader, nil)
	require.NoError(t, err)

	m.SetProperty(mat, "albedo_texture", nil, 42, nil)

	bg := m.UseMaterial(mat, 0, func(uuid uint64) (handle.Handle, bool) {
		return handle.Invalid(), false
	})
	assert.True(t, m.bindGroups.IsValid(bg))
	assert.EqualValues(t, m.WhitePixelTexture().Index, binary.LittleEndian.Uint32(m.materials.Get(mat).Data))

	// Still dirty (fallback resolution didn't find the texture), so a
	// second UseMaterial call must re-attempt resolution rather than
	// treating the material as settled.
	assert.Equal(t, 3, m.materials.Get(mat).dirtyCount)
	m.UseMaterial(mat, 0, func(uuid uint64) (handle.Handle, bool) {
		return handle.Handle{Index: 99, Generation: 1}, true
	})
	assert.EqualValues(t, 99, binary.LittleEndian.Uint32(m.materials.Get(mat).Data))
}

func TestUseMaterialCopiesShadowIntoFrameBuffer(t *testing.T) {
	m := newTestManager()
	spirv := []byte("// Material_Properties: albedo_texture\n")
	shader, err := m.CreateShader(spirv)
	require.NoError(t, err)
	mat, err := m.CreateMaterial(shader, nil)
	require.NoError(t, err)

	resolved := handle.Handle{Index: 7, Generation: 2}
	m.SetProperty(mat, "albedo_texture", nil, 42, nil)
	m.UseMaterial(mat, 0, func(uuid uint64) (handle.Handle, bool) {
		return resolved, true
	})

	data := m.materials.Get(mat)
	buf := m.buffers.Get(data.Buffers[0])
	require.Len(t, buf.Data, len(data.Data))
	assert.Equal(t, data.Data, buf.Data)
	assert.EqualValues(t, resolved.Index, binary.LittleEndian.Uint32(buf.Data))
}

func TestMaterialDirtyCountTracksConfiguredFramesInFlight(t *testing.T) {
	// frames_in_flight=2 is spec-valid (settings.validFramesInFlight); dirty
	// count must track this Manager's actual count, not the 3-frame array
	// capacity, or it reports dirty one frame longer than it should.
	m := New(stubDriver{}, 2, 1<<20)
	spirv := []byte("// Material_Properties: albedo_color\n")
	shader, err := m.CreateShader(spirv)
	require.NoError(t, err)

	mat, err := m.CreateMaterial(shader, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.materials.Get(mat).dirtyCount)

	m.SetProperty(mat, "albedo_color", []byte{1, 2, 3, 4}, 0, nil)
	assert.Equal(t, 2, m.materials.Get(mat).dirtyCount)
}

func TestNewSeedsDefaultSampler(t *testing.T) {
	m := newTestManager()
	assert.True(t, m.samplers.IsValid(m.DefaultSampler()))
}

func TestSetAnisotropyRecreatesSamplerAndReupdatesBindGroups(t *testing.T) {
	m := newTestManager()
	spirv := []byte("// Material_Properties: albedo_texture\n")
	shader, err := m.CreateShader(spirv)
	require.NoError(t, err)
	mat, err := m.CreateMaterial(shader, nil)
	require.NoError(t, err)

	oldSampler := m.DefaultSampler()
	oldBindGroup := *m.bindGroups.Get(m.materials.Get(mat).BindGroups[0])
	assert.Equal(t, oldSampler, oldBindGroup.Sampler)

	m.SetAnisotropy(4)

	newSampler := m.DefaultSampler()
	assert.NotEqual(t, oldSampler, newSampler)
	assert.False(t, m.samplers.IsValid(oldSampler))
	assert.EqualValues(t, 4, m.samplers.Get(newSampler).AnisotropyLevel)

	// Every bind group the material already holds must follow the
	// recreated sampler, not keep pointing at the released old one.
	for _, bgh := range m.materials.Get(mat).BindGroups {
		if !m.bindGroups.IsValid(bgh) {
			continue
		}
		assert.Equal(t, newSampler, m.bindGroups.Get(bgh).Sampler)
	}
}

func TestCreateSamplerIsIndependentOfDefault(t *testing.T) {
	m := newTestManager()
	h := m.CreateSampler(FilterNearest, FilterNearest, FilterNearest, 1)
	assert.True(t, m.samplers.IsValid(h))
	assert.NotEqual(t, m.DefaultSampler(), h)
}

func TestCreateTextureAndWriteableTexture(t *testing.T) {
	m := newTestManager()

	pixels := []byte{255, 0, 0, 255}
	h, err := m.CreateTexture(1, 1, 4, pixels, false)
	require.NoError(t, err)
	assert.True(t, m.textures.IsValid(h))

	wh, err := m.CreateAttachmentTexture(64, 64, 1)
	require.NoError(t, err)
	assert.True(t, m.textures.IsValid(wh))
}
