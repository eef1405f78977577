package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	"github.com/hadean/forge/engine/core"
	"github.com/hadean/forge/engine/handle"
)

// AcquireNextImage implements scheduler.Swapchain: waits on the current
// frame's in-flight fence, acquires the next swapchain image, and begins
// recording the frame's single command buffer. This is BeginFrame's body
// minus the MainRenderpass.RenderpassBegin call, which moves to
// BeginRenderPass below so the render graph's nodes control when the
// real render pass opens.
func (vr VulkanRenderer) AcquireNextImage() (uint32, bool) {
	device := vr.context.Device

	if vr.context.RecreatingSwapchain || vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		if result := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(result) {
			core.LogError("AcquireNextImage: vkDeviceWaitIdle failed: %s", VulkanResultString(result, true))
			return 0, true
		}
		if !vr.context.RecreatingSwapchain {
			if !vr.recreateSwapchain() {
				core.LogError("AcquireNextImage: failed to recreate swapchain")
			}
		}
		return 0, true
	}

	if !vr.context.InFlightFences[vr.context.CurrentFrame].FenceWait(vr.context, math.MaxUint64) {
		core.LogWarn("AcquireNextImage: in-flight fence wait failure")
		return 0, true
	}

	imageIndex, ok := vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, math.MaxUint64, vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame], vk.NullFence)
	if !ok {
		return 0, true
	}
	vr.context.ImageIndex = imageIndex
	vr.context.renderPassOpen = false

	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	commandBuffer.Reset()
	commandBuffer.Begin(false, false, false)

	viewport := vk.Viewport{
		X:        0.0,
		Y:        float32(vr.context.FramebufferHeight),
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: vr.context.FramebufferWidth, Height: vr.context.FramebufferHeight},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	return imageIndex, false
}

// Present implements scheduler.Swapchain: closes the main render pass if
// still open, ends the command buffer, submits, and presents. This is
// EndFrame's body, with the RenderpassEnd call guarded so it only runs if
// BeginRenderPass actually opened one this frame.
func (vr VulkanRenderer) Present(imageIndex uint32) bool {
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]

	if vr.context.renderPassOpen {
		vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
		vr.context.renderPassOpen = false
	}

	if err := commandBuffer.End(); err != nil {
		core.LogError("Present: failed to end command buffer: %s", err.Error())
		return true
	}

	if vr.context.ImagesInFlight[vr.context.ImageIndex] != (*VulkanFence)(vk.NullHandle) {
		vr.context.ImagesInFlight[vr.context.ImageIndex].FenceWait(vr.context, math.MaxUint64)
	}
	vr.context.ImagesInFlight[vr.context.ImageIndex] = vr.context.InFlightFences[vr.context.CurrentFrame]
	vr.context.InFlightFences[vr.context.CurrentFrame].FenceReset(vr.context)

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	if result := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vr.context.InFlightFences[vr.context.CurrentFrame].Handle); result != vk.Success {
		core.LogError("Present: vkQueueSubmit failed: %s", VulkanResultString(result, true))
		return true
	}
	commandBuffer.UpdateSubmitted()

	vr.context.Swapchain.SwapchainPresent(
		vr.context,
		vr.context.Device.GraphicsQueue,
		vr.context.Device.PresentQueue,
		vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame],
		vr.context.ImageIndex)

	return false
}

// BeginRenderPass implements rendergraph.CommandRecorder. pass and
// frameBuffer are respool pool handles identifying the logical node's
// render pass and target, which this backend does not translate into
// distinct real VkRenderPass/VkFramebuffer objects (see DESIGN.md): every
// node shares the one real MainRenderpass against the acquired swapchain
// image, opened by whichever node runs first in a frame.
func (vr VulkanRenderer) BeginRenderPass(pass, frameBuffer handle.Handle) {
	if vr.context.renderPassOpen {
		return
	}
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.ImageIndex]
	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[vr.context.ImageIndex].Handle)
	vr.context.renderPassOpen = true
}

// EndRenderPass implements rendergraph.CommandRecorder. The real
// renderpass closes once, in Present, after the last node has recorded
// into it, so this is a no-op.
func (vr VulkanRenderer) EndRenderPass() {}
