package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/renderer/metadata"
)

// uploadPixels copies pixels into image via a host-visible staging
// buffer and a one-time-use command buffer, the same
// AllocateAndBeginSingleUse/EndSingleUse pair command_buffer.go defines
// for exactly this purpose.
func (vr VulkanRenderer) uploadPixels(image *VulkanImage, pixels []uint8) error {
	device := vr.context.Device

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(pixels)),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		SharingMode: vk.SharingModeExclusive,
	}
	var staging vk.Buffer
	if res := vk.CreateBuffer(device.LogicalDevice, &bufferCreateInfo, vr.context.Allocator, &staging); res != vk.Success {
		err := fmt.Errorf("failed to create staging buffer: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	defer vk.DestroyBuffer(device.LogicalDevice, staging, vr.context.Allocator)

	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device.LogicalDevice, staging, &memRequirements)
	memRequirements.Deref()

	memIndex := vr.context.FindMemoryIndex(memRequirements.MemoryTypeBits, uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if memIndex < 0 {
		return fmt.Errorf("failed to find suitable memory type for staging buffer")
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: uint32(memIndex),
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(device.LogicalDevice, &allocInfo, vr.context.Allocator, &mem); res != vk.Success {
		return fmt.Errorf("failed to allocate staging buffer memory: %s", VulkanResultString(res, true))
	}
	defer vk.FreeMemory(device.LogicalDevice, mem, vr.context.Allocator)
	vk.BindBufferMemory(device.LogicalDevice, staging, mem, 0)

	var data unsafe.Pointer
	vk.MapMemory(device.LogicalDevice, mem, 0, vk.DeviceSize(len(pixels)), 0, &data)
	vk.Memcopy(data, pixels)
	vk.UnmapMemory(device.LogicalDevice, mem)

	cmd, err := AllocateAndBeginSingleUse(vr.context, device.GraphicsCommandPool)
	if err != nil {
		return err
	}

	toTransferDst := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           vk.ImageLayoutUndefined,
		NewLayout:           vk.ImageLayoutTransferDstOptimal,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		SrcAccessMask: 0,
		DstAccessMask: vk.AccessFlags(vk.AccessTransferWriteBit),
	}
	vk.CmdPipelineBarrier(cmd.Handle, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit), 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toTransferDst})

	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{Width: image.Width, Height: image.Height, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cmd.Handle, staging, image.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

	toShaderRead := toTransferDst
	toShaderRead.OldLayout = vk.ImageLayoutTransferDstOptimal
	toShaderRead.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
	toShaderRead.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
	toShaderRead.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
	vk.CmdPipelineBarrier(cmd.Handle, vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toShaderRead})

	return cmd.EndSingleUse(vr.context, device.GraphicsCommandPool, device.GraphicsQueue)
}

// TextureCreate implements renderer.RendererBackend: uploads pixels into
// a new sampled 2D image, going through a staging buffer and an
// immediate single-use command buffer rather than a queued transfer
// since this backend has no transfer queue distinct from the graphics
// queue.
func (vr VulkanRenderer) TextureCreate(pixels []uint8, texture *metadata.Texture) {
	image, err := ImageCreate(vr.context, vk.ImageType2d, texture.Width, texture.Height,
		vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		core.LogError("vulkan texture create failed: %s", err.Error())
		return
	}
	if err := vr.uploadPixels(image, pixels); err != nil {
		core.LogError("vulkan texture upload failed: %s", err.Error())
	}
	texture.InternalData = image
	texture.Generation++
}

// TextureCreateWriteable implements renderer.RendererBackend: allocates a
// GPU-only color attachment image with no staging upload, backing a
// render-graph attachment.
func (vr VulkanRenderer) TextureCreateWriteable(texture *metadata.Texture) {
	image, err := ImageCreate(vr.context, vk.ImageType2d, texture.Width, texture.Height,
		vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		core.LogError("vulkan writeable texture create failed: %s", err.Error())
		return
	}
	texture.InternalData = image
	texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagIsWriteable)
	texture.Generation++
}

// TextureResize replaces the backing image in place, matching
// TextureCreateWriteable's allocation path, for a render-graph attachment
// whose dimensions changed.
func (vr VulkanRenderer) TextureResize(texture *metadata.Texture, newWidth, newHeight uint32) {
	vr.TextureDestroy(texture)
	texture.Width, texture.Height = newWidth, newHeight
	vr.TextureCreateWriteable(texture)
}

// TextureWriteData re-uploads a region of pixels into an existing
// device-local texture, reusing the same staging-buffer path as
// TextureCreate.
func (vr VulkanRenderer) TextureWriteData(texture *metadata.Texture, offset, size uint32, pixels []uint8) {
	image, ok := texture.InternalData.(*VulkanImage)
	if !ok {
		core.LogError("vulkan TextureWriteData: texture has no backing image")
		return
	}
	if err := vr.uploadPixels(image, pixels); err != nil {
		core.LogError("vulkan texture write failed: %s", err.Error())
	}
	texture.Generation++
}

// TextureDestroy releases the view, memory, and image backing texture.
func (vr VulkanRenderer) TextureDestroy(texture *metadata.Texture) {
	image, ok := texture.InternalData.(*VulkanImage)
	if !ok || image == nil {
		return
	}
	image.ImageDestroy(vr.context)
	texture.InternalData = nil
}
