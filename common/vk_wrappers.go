package common

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"
)

// Thin wrappers turning the out parameter plus vk.Result style of the bindings into (handle, error) returns.

func vkCreate[H any](create func(out *H) vk.Result) (H, error) {
	var h H
	if err := vk.Error(create(&h)); err != nil {
		var zero H
		return zero, err
	}
	return h, nil
}

func VkCreateInstance(info *vk.InstanceCreateInfo, alloc *vk.AllocationCallbacks) (vk.Instance, error) {
	in, err := vkCreate(func(out *vk.Instance) vk.Result { return vk.CreateInstance(info, alloc, out) })
	if err != nil {
		return nil, err
	}
	return in, vk.InitInstance(in)
}

func SdlCreateVkSurface(win *sdl.Window, instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := win.VulkanCreateSurface(instance)
	if err != nil {
		return nil, err
	}
	return vk.SurfaceFromPointer(uintptr(surfPtr)), nil
}

func VkCreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo, alloc *vk.AllocationCallbacks) (vk.Device, error) {
	return vkCreate(func(out *vk.Device) vk.Result { return vk.CreateDevice(pd, info, alloc, out) })
}

func VkGetDeviceQueue(device vk.Device, queueFamilyIndex *uint32, queueIndex uint32) (vk.Queue, error) {
	if queueFamilyIndex == nil {
		return nil, errors.New("QueueFamily index was nil")
	}
	var q vk.Queue
	vk.GetDeviceQueue(device, *queueFamilyIndex, queueIndex, &q)
	return q, nil
}

func VkCreateSwapChain(device vk.Device, info *vk.SwapchainCreateInfo, alloc *vk.AllocationCallbacks) (vk.Swapchain, error) {
	return vkCreate(func(out *vk.Swapchain) vk.Result { return vk.CreateSwapchain(device, info, alloc, out) })
}

func VkCreateImage(device vk.Device, info *vk.ImageCreateInfo, alloc *vk.AllocationCallbacks) (vk.Image, error) {
	return vkCreate(func(out *vk.Image) vk.Result { return vk.CreateImage(device, info, alloc, out) })
}

func VkCreateImageView(device vk.Device, info *vk.ImageViewCreateInfo, alloc *vk.AllocationCallbacks) (vk.ImageView, error) {
	return vkCreate(func(out *vk.ImageView) vk.Result { return vk.CreateImageView(device, info, alloc, out) })
}

func VkCreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo, alloc *vk.AllocationCallbacks) (vk.RenderPass, error) {
	return vkCreate(func(out *vk.RenderPass) vk.Result { return vk.CreateRenderPass(device, info, alloc, out) })
}

func VkCreateFrameBuffer(device vk.Device, info *vk.FramebufferCreateInfo, alloc *vk.AllocationCallbacks) (vk.Framebuffer, error) {
	return vkCreate(func(out *vk.Framebuffer) vk.Result { return vk.CreateFramebuffer(device, info, alloc, out) })
}

func VkCreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo, alloc *vk.AllocationCallbacks) (vk.ShaderModule, error) {
	return vkCreate(func(out *vk.ShaderModule) vk.Result { return vk.CreateShaderModule(device, info, alloc, out) })
}

func VkCreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo, alloc *vk.AllocationCallbacks) (vk.PipelineLayout, error) {
	return vkCreate(func(out *vk.PipelineLayout) vk.Result { return vk.CreatePipelineLayout(device, info, alloc, out) })
}

func VkCreateGraphicsPipelines(device vk.Device, cache vk.PipelineCache, infos []vk.GraphicsPipelineCreateInfo, alloc *vk.AllocationCallbacks) ([]vk.Pipeline, error) {
	pipelines := make([]vk.Pipeline, len(infos))
	if err := vk.Error(vk.CreateGraphicsPipelines(device, cache, uint32(len(infos)), infos, alloc, pipelines)); err != nil {
		return nil, err
	}
	return pipelines, nil
}

func VkCreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo, alloc *vk.AllocationCallbacks) (vk.CommandPool, error) {
	return vkCreate(func(out *vk.CommandPool) vk.Result { return vk.CreateCommandPool(device, info, alloc, out) })
}

func VkAllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	if err := vk.Error(vk.AllocateCommandBuffers(device, info, buffers)); err != nil {
		return nil, err
	}
	return buffers, nil
}

func VkCreateSemaphore(device vk.Device, info *vk.SemaphoreCreateInfo, alloc *vk.AllocationCallbacks) (vk.Semaphore, error) {
	return vkCreate(func(out *vk.Semaphore) vk.Result { return vk.CreateSemaphore(device, info, alloc, out) })
}

func VkCreateFence(device vk.Device, info *vk.FenceCreateInfo, alloc *vk.AllocationCallbacks) (vk.Fence, error) {
	return vkCreate(func(out *vk.Fence) vk.Result { return vk.CreateFence(device, info, alloc, out) })
}

func VkCreateBuffer(device vk.Device, info *vk.BufferCreateInfo, alloc *vk.AllocationCallbacks) (vk.Buffer, error) {
	return vkCreate(func(out *vk.Buffer) vk.Result { return vk.CreateBuffer(device, info, alloc, out) })
}

func VkAllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo, alloc *vk.AllocationCallbacks) (vk.DeviceMemory, error) {
	return vkCreate(func(out *vk.DeviceMemory) vk.Result { return vk.AllocateMemory(device, info, alloc, out) })
}

func VkBindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	return vk.Error(vk.BindBufferMemory(device, buffer, memory, offset))
}

func VkBindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	return vk.Error(vk.BindImageMemory(device, image, memory, offset))
}

func VkMapMemory(device vk.Device, memory vk.DeviceMemory, offset vk.DeviceSize, size vk.DeviceSize, flags vk.MemoryMapFlags) (unsafe.Pointer, error) {
	return vkCreate(func(out *unsafe.Pointer) vk.Result { return vk.MapMemory(device, memory, offset, size, flags, out) })
}
