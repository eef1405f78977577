package respool

import "github.com/hadean/forge/engine/handle"

// BufferUsage enumerates the kinds a Buffer may be created for (§4.4
// create_buffer).
type BufferUsage int

const (
	BufferUsageTransfer BufferUsage = iota
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
)

type Buffer struct {
	Size           uint64
	Usage          BufferUsage
	IsDeviceLocal  bool
	TransferOffset uint64 // valid only for host-coherent buffers backed by the transfer allocator
	Data           []byte // CPU shadow for host-coherent buffers, written via Manager.WriteBuffer
}

type Texture struct {
	Width, Height uint32
	ChannelCount  uint8
	MipLevels     uint32
	IsCubemap     bool
	LayerCount    uint32
	// SampleCount is >1 for a multisampled render-graph attachment; asset
	// textures loaded from disk are always single-sample.
	SampleCount uint32
}

type AddressMode int
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

type Sampler struct {
	MinFilter, MagFilter, MipFilter FilterMode
	AddressU, AddressV, AddressW    AddressMode
	AnisotropyLevel                 int
}

// ShaderBinding is one reflected descriptor binding (§4.4 create_shader).
type ShaderBinding struct {
	Set     uint32
	Binding uint32
	Name    string
}

type Shader struct {
	SPIRV    []byte
	Bindings []ShaderBinding
	// MaterialPropertySize is the byte size of the reflected
	// Material_Properties struct, 0 if the shader has none.
	MaterialPropertySize uint32
	Properties           []PropertyDescriptor
}

type ShaderGroup struct {
	Shaders []handle.Handle
	Layouts []handle.Handle
}

type CullMode int
type FrontFace int
type FillMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

const (
	FrontFaceCW FrontFace = iota
	FrontFaceCCW
)

const (
	FillSolid FillMode = iota
	FillWireframe
)

type PipelineState struct {
	CullMode      CullMode
	FrontFace     FrontFace
	FillMode      FillMode
	DepthTesting  bool
	SampleShading bool
	ShaderGroup   handle.Handle
	RenderPass    handle.Handle
}

type BindGroupLayout struct {
	Set      uint32
	Bindings []ShaderBinding
}

type BindGroup struct {
	Layout handle.Handle
	// Sampler is the texture sampler this bind group's texture bindings
	// use, recreated in place across every material's bind groups by
	// Manager.SetAnisotropy (§4.9 sampler-identity Open Question).
	Sampler handle.Handle
}

type RenderPass struct {
	Depth   float32
	Stencil uint32
}

type FrameBuffer struct {
	Attachments []handle.Handle
	Width, Height uint32
}

type StaticMesh struct {
	VertexData []byte
	Indices    []uint32
	SubMeshes  []SubMesh
}

// SubMesh is one drawable range within a static mesh's index buffer (§4.5
// "For each sub-mesh of that static mesh ...").
type SubMesh struct {
	FirstIndex, IndexCount uint32
}

type Semaphore struct {
	Signaled bool
}
