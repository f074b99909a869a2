package common

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"vcr_renderer/renderer"
)

var DEVICE_EXTENSIONS = []string{
	"VK_KHR_swapchain",
}

// Device represents the interfacing objects between the surface, the hardware running Vulkan and the rest of the
// rendering engine. It owns the logical device, its graphics and present queues and the command pool all command
// buffers of the renderer are allocated from. It implements renderer.DeviceContext.
type Device struct {
	PhysicalDevice vk.PhysicalDevice
	PdProps        vk.PhysicalDeviceProperties
	PdMemoryProps  vk.PhysicalDeviceMemoryProperties
	QFamilies      QueueFamilyIndices

	D           vk.Device
	GraphicsQ   *Queue
	PresentQ    *Queue
	CommandPool vk.CommandPool

	destroyed bool
}

// NewDevice picks a physical device able to draw to and present on the surface, creates the logical device, fetches
// its queues and creates the command pool. Validation layers are enabled on the device when provided.
func NewDevice(instance vk.Instance, surface vk.Surface, validationLayers []string) (*Device, error) {
	dc := &Device{}
	if err := dc.selectPhysicalDevice(instance, surface); err != nil {
		return nil, renderer.Mark(err, renderer.ErrResourceCreation, "select physical device")
	}
	if err := dc.createLogicalDevice(validationLayers); err != nil {
		return nil, renderer.Mark(err, renderer.ErrResourceCreation, "create logical device")
	}
	pool, err := VKSCreateCommandPool(
		dc.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		dc.GraphicsQ.FamilyIndex,
	)
	if err != nil {
		vk.DestroyDevice(dc.D, nil)
		return nil, renderer.Mark(err, renderer.ErrResourceCreation, "create command pool")
	}
	dc.CommandPool = pool
	log.Printf("Successfully created logical device on %q", vk.ToString(dc.PdProps.DeviceName[:]))
	return dc, nil
}

// Destroy releases the command pool and the logical device. It does not destroy the surface or instance it was
// created for.
func (dc *Device) Destroy() {
	if dc.destroyed {
		return
	}
	dc.destroyed = true
	vk.DestroyCommandPool(dc.D, dc.CommandPool, nil)
	vk.DestroyDevice(dc.D, nil)
}

func (dc *Device) selectPhysicalDevice(in vk.Instance, su vk.Surface) error {
	availableDevices, err := ReadPhysicalDevices(in)
	if err != nil {
		return err
	}
	var candidates []deviceCandidate
	for i := range availableDevices {
		c, err := rateDevice(availableDevices[i], su)
		if err != nil {
			log.Printf("Skipping physical device [%d]: %v", i, err)
			continue
		}
		candidates = append(candidates, c)
	}
	best, ok := pickDevice(candidates)
	if !ok {
		return errors.New("no suitable physical device (GPU) found")
	}

	dc.PhysicalDevice = best.pd
	dc.QFamilies = best.families
	dc.PdProps = best.props
	dc.PdMemoryProps = ReadDeviceMemoryProperties(dc.PhysicalDevice)
	log.Printf("Selected physical device %q", vk.ToString(dc.PdProps.DeviceName[:]))
	return nil
}

type deviceCandidate struct {
	pd       vk.PhysicalDevice
	props    vk.PhysicalDeviceProperties
	families QueueFamilyIndices
	score    int
}

// rateDevice checks that the device can draw and present to the surface and scores it. Discrete GPUs win over
// integrated ones, which win over everything else.
func rateDevice(pd vk.PhysicalDevice, su vk.Surface) (deviceCandidate, error) {
	pdProps := ReadPhysicalDeviceProperties(pd)
	pdFeatures := ReadPhysicalDeviceFeatures(pd)
	log.Printf("Physical device\n%s", DescribePhysicalDevice(pdProps, pdFeatures, ReadQueueFamilies(pd)))

	indices, err := findQueueFamilies(pd, su)
	if err != nil {
		return deviceCandidate{}, err
	}
	if err := checkDeviceExtensionSupport(pd, DEVICE_EXTENSIONS); err != nil {
		return deviceCandidate{}, err
	}
	if err := checkSwapChainAdequacy(pd, su); err != nil {
		return deviceCandidate{}, err
	}
	return deviceCandidate{
		pd:       pd,
		props:    pdProps,
		families: *indices,
		score:    deviceTypeScore(pdProps.DeviceType),
	}, nil
}

func deviceTypeScore(dt vk.PhysicalDeviceType) int {
	switch dt {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 3
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 2
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 1
	default:
		return 0
	}
}

// pickDevice returns the candidate with the highest score, the first one on ties.
func pickDevice(candidates []deviceCandidate) (deviceCandidate, bool) {
	if len(candidates) == 0 {
		return deviceCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	return best, true
}

func (dc *Device) createLogicalDevice(validationLayers []string) error {
	queueInfos, err := dc.QFamilies.toQueueCreateInfos()
	if err != nil {
		return err
	}
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(DEVICE_EXTENSIONS)),
		PpEnabledExtensionNames: TerminatedStrs(DEVICE_EXTENSIONS),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}
	if len(validationLayers) > 0 {
		deviceCreateInfo.EnabledLayerCount = uint32(len(validationLayers))
		deviceCreateInfo.PpEnabledLayerNames = TerminatedStrs(validationLayers)
	}

	dc.D, err = VkCreateDevice(dc.PhysicalDevice, deviceCreateInfo, nil)
	if err != nil {
		return err
	}
	graphicsQ, err := VkGetDeviceQueue(dc.D, dc.QFamilies.GraphicsFamily, 0)
	if err != nil {
		vk.DestroyDevice(dc.D, nil)
		return errors.Wrap(err, "get graphics device queue")
	}
	presentQ, err := VkGetDeviceQueue(dc.D, dc.QFamilies.PresentFamily, 0)
	if err != nil {
		vk.DestroyDevice(dc.D, nil)
		return errors.Wrap(err, "get present device queue")
	}
	dc.GraphicsQ = &Queue{VKQueue: graphicsQ, FamilyIndex: *dc.QFamilies.GraphicsFamily}
	dc.PresentQ = &Queue{VKQueue: presentQ, FamilyIndex: *dc.QFamilies.PresentFamily}
	return nil
}

func checkDeviceExtensionSupport(pd vk.PhysicalDevice, requiredDeviceExt []string) error {
	supportedExtNames, err := ReadDeviceExtensionPropertyNames(pd)
	if err != nil {
		return err
	}
	log.Printf("Required device extensions: %v", requiredDeviceExt)
	log.Printf("Available device extensions (%d) [...]", len(supportedExtNames))
	if !AllOfAinB(requiredDeviceExt, supportedExtNames) {
		return errors.Newf("device does not support all of %v", requiredDeviceExt)
	}
	return nil
}

func checkSwapChainAdequacy(pd vk.PhysicalDevice, surface vk.Surface) error {
	scDetails, err := ReadSwapChainSupportDetails(pd, surface)
	if err != nil {
		return err
	}
	if len(scDetails.Formats) == 0 || len(scDetails.PresentModes) == 0 {
		return errors.Newf("surface offers %d formats and %d present modes", len(scDetails.Formats), len(scDetails.PresentModes))
	}
	return nil
}

// The following methods implement renderer.DeviceContext.

func (dc *Device) GraphicsQueue() renderer.Queue {
	return dc.GraphicsQ
}

func (dc *Device) AllocateCommandBuffers(count int) ([]renderer.CommandBuffer, error) {
	raw, err := VKSAllocateCommandBuffersPrimary(dc.D, dc.CommandPool, uint32(count))
	if err != nil {
		return nil, err
	}
	buffers := make([]renderer.CommandBuffer, len(raw))
	for i := range raw {
		buffers[i] = &CommandBuffer{VKBuffer: raw[i]}
	}
	log.Printf("Successfully allocated %d command buffers", len(buffers))
	return buffers, nil
}

func (dc *Device) FreeCommandBuffers(buffers []renderer.CommandBuffer) {
	raw := make([]vk.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		if cb, err := AsVkCommandBuffer(b); err == nil {
			raw = append(raw, cb)
		}
	}
	if len(raw) == 0 {
		return
	}
	vk.FreeCommandBuffers(dc.D, dc.CommandPool, uint32(len(raw)), raw)
}

func (dc *Device) CreateSemaphore() (renderer.Semaphore, error) {
	semInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	s, err := VkCreateSemaphore(dc.D, &semInfo, nil)
	if err != nil {
		return nil, err
	}
	return &Semaphore{device: dc.D, VKSem: s}, nil
}

func (dc *Device) CreateFence(signaled bool) (renderer.Fence, error) {
	fenInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	f, err := VkCreateFence(dc.D, &fenInfo, nil)
	if err != nil {
		return nil, err
	}
	return &Fence{device: dc.D, VKFence: f}, nil
}

func (dc *Device) WaitIdle() error {
	return vk.Error(vk.DeviceWaitIdle(dc.D))
}

// CopyBuffer copies size bytes from src to dst on the graphics queue and waits for the copy to finish.
func (dc *Device) CopyBuffer(src *Buffer, dst *Buffer, size vk.DeviceSize) error {
	cmdBuf, err := VKSBeginSingleTimeCommands(dc.D, dc.CommandPool)
	if err != nil {
		return err
	}
	copyRegions := []vk.BufferCopy{{Size: size}}
	vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
	return VKSEndSingleTimeCommands(dc.D, dc.CommandPool, dc.GraphicsQ.VKQueue, cmdBuf)
}
