package common

import (
	"log"
	"math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"vcr_renderer/renderer"
)

// SwapChainOptions are the preferences used every time the swapchain is (re)created.
type SwapChainOptions struct {
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	PresentMode vk.PresentMode
	ClearColor  [4]float32
}

func DefaultSwapChainOptions() SwapChainOptions {
	return SwapChainOptions{
		Format:      vk.FormatB8g8r8a8Srgb,
		ColorSpace:  vk.ColorSpaceSrgbNonlinear,
		PresentMode: vk.PresentModeMailbox,
		ClearColor:  [4]float32{0.01, 0.01, 0.01, 1},
	}
}

// SwapChain owns the presentable images of a surface together with their views and framebuffers. It can be torn
// down and rebuilt for a new surface size without touching the device or any pipeline. It implements
// renderer.Swapchain.
type SwapChain struct {
	dc      *Device
	surface vk.Surface
	window  renderer.SurfaceProvider
	opts    SwapChainOptions

	Handle      vk.Swapchain
	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extend      vk.Extent2D

	Images       []vk.Image
	ImgViews     []vk.ImageView
	FrameBuffers []vk.Framebuffer
	Aspect       float32

	// DepthFormat is fixed for the lifetime of the swapchain as the render pass is created for it. The depth image
	// itself is sized to the extent and rebuilt with everything else.
	DepthFormat vk.Format
	Depth       *Image

	targets    imageTargets
	renderPass vk.RenderPass
	destroyed  bool
}

// imageTargets creates and releases the per image attachments. The swapchain uses the Vulkan backed version, tests
// substitute their own.
type imageTargets struct {
	createView         func(img vk.Image) (vk.ImageView, error)
	createFramebuffer  func(renderPass vk.RenderPass, attachments []vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error)
	destroyView        func(view vk.ImageView)
	destroyFramebuffer func(fb vk.Framebuffer)
}

// NewSwapChain creates the swapchain handle, reads its images and creates the depth image. Views and framebuffers
// need a render pass, which itself depends on the chosen formats, so they are created by
// CreateImageViewsAndFramebuffers afterwards.
func NewSwapChain(dc *Device, surface vk.Surface, window renderer.SurfaceProvider, opts SwapChainOptions) (*SwapChain, error) {
	depthFormat, err := FindDepthFormat(dc.PhysicalDevice)
	if err != nil {
		return nil, renderer.Mark(err, renderer.ErrSwapchainCreation, "select depth format")
	}
	sc := &SwapChain{
		dc:          dc,
		surface:     surface,
		window:      window,
		opts:        opts,
		DepthFormat: depthFormat,
	}
	sc.targets = sc.vkImageTargets()
	if err := sc.create(toVkExtent(window.DrawableExtent())); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *SwapChain) create(desired vk.Extent2D) error {
	details, err := ReadSwapChainSupportDetails(sc.dc.PhysicalDevice, sc.surface)
	if err != nil {
		return renderer.Mark(err, renderer.ErrSwapchainCreation, "read surface support")
	}
	format, err := SelectSurfaceFormat(details.Formats, sc.opts.Format, sc.opts.ColorSpace)
	if err != nil {
		return renderer.Mark(err, renderer.ErrSwapchainCreation, "select surface format")
	}
	sc.Format = format
	sc.PresentMode = SelectPresentMode(details.PresentModes, sc.opts.PresentMode)
	sc.Extend = SelectSwapExtent(details.Capabilities, desired)
	imgCount := SelectImageCount(details.Capabilities)

	// Depending on whether our queue families are the same for graphics and presentation, we need to choose different
	// swap chain configurations: https://vulkan-tutorial.com/Drawing_a_triangle/Presentation/Swap_chain
	sharingMode := vk.SharingModeExclusive
	var qFamIndices []uint32
	if !sc.dc.QFamilies.IsShared() {
		sharingMode = vk.SharingModeConcurrent
		qFamIndices = sc.dc.QFamilies.UniqueIndices()
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               sc.surface,
		MinImageCount:         imgCount,
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extend,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(qFamIndices)),
		PQueueFamilyIndices:   qFamIndices,
		PreTransform:          details.Capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
	}
	sc.Handle, err = VkCreateSwapChain(sc.dc.D, createInfo, nil)
	if err != nil {
		return renderer.Mark(err, renderer.ErrSwapchainCreation, "create swapchain")
	}
	sc.Images, err = ReadSwapChainImages(sc.dc.D, sc.Handle)
	if err != nil {
		vk.DestroySwapchain(sc.dc.D, sc.Handle, nil)
		sc.Handle = nil
		return renderer.Mark(err, renderer.ErrSwapchainCreation, "read swapchain images")
	}

	sc.Depth, err = createDepthImage(sc.dc, sc.Extend, sc.DepthFormat)
	if err != nil {
		vk.DestroySwapchain(sc.dc.D, sc.Handle, nil)
		sc.Handle = nil
		sc.Images = nil
		return errors.Wrap(err, "create depth resources")
	}

	// Precalculate the images' aspect ratio for later
	sc.Aspect = float32(sc.Extend.Width) / float32(sc.Extend.Height)
	log.Printf("Created swapchain\n%s", DescribeSwapChain(sc))
	return nil
}

// CreateImageViewsAndFramebuffers creates one view and one framebuffer per swapchain image, every framebuffer also
// attaches the shared depth image. Either all of them exist afterwards or none: on failure everything created by
// this call is released again.
func (sc *SwapChain) CreateImageViewsAndFramebuffers(renderPass vk.RenderPass) error {
	views, framebuffers, err := buildImageTargets(sc.targets, sc.Images, sc.Depth.View, renderPass, sc.Extend)
	if err != nil {
		return err
	}
	sc.ImgViews = views
	sc.FrameBuffers = framebuffers
	sc.renderPass = renderPass
	log.Printf("Successfully created %d image views and frame buffers", len(sc.FrameBuffers))
	return nil
}

func buildImageTargets(t imageTargets, images []vk.Image, depthView vk.ImageView, renderPass vk.RenderPass, extent vk.Extent2D) ([]vk.ImageView, []vk.Framebuffer, error) {
	views := make([]vk.ImageView, 0, len(images))
	framebuffers := make([]vk.Framebuffer, 0, len(images))

	for i := range images {
		view, err := t.createView(images[i])
		if err != nil {
			releaseImageTargets(t, views, framebuffers)
			return nil, nil, renderer.Mark(err, renderer.ErrResourceCreation, "create image view [%d]", i)
		}
		views = append(views, view)
	}
	for i := range views {
		fb, err := t.createFramebuffer(renderPass, []vk.ImageView{views[i], depthView}, extent)
		if err != nil {
			releaseImageTargets(t, views, framebuffers)
			return nil, nil, renderer.Mark(err, renderer.ErrResourceCreation, "create frame buffer [%d]", i)
		}
		framebuffers = append(framebuffers, fb)
	}
	return views, framebuffers, nil
}

// releaseImageTargets destroys framebuffers before the views they reference.
func releaseImageTargets(t imageTargets, views []vk.ImageView, framebuffers []vk.Framebuffer) {
	for _, fb := range framebuffers {
		t.destroyFramebuffer(fb)
	}
	for _, v := range views {
		t.destroyView(v)
	}
}

func (sc *SwapChain) vkImageTargets() imageTargets {
	device := sc.dc.D
	return imageTargets{
		createView: func(img vk.Image) (vk.ImageView, error) {
			return CreateImageView(device, img, sc.Format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		},
		createFramebuffer: func(renderPass vk.RenderPass, attachments []vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
			framebufferInfo := vk.FramebufferCreateInfo{
				SType:           vk.StructureTypeFramebufferCreateInfo,
				RenderPass:      renderPass,
				AttachmentCount: uint32(len(attachments)),
				PAttachments:    attachments,
				Width:           extent.Width,
				Height:          extent.Height,
				Layers:          1,
			}
			return VkCreateFrameBuffer(device, &framebufferInfo, nil)
		},
		destroyView: func(view vk.ImageView) {
			vk.DestroyImageView(device, view, nil)
		},
		destroyFramebuffer: func(fb vk.Framebuffer) {
			vk.DestroyFramebuffer(device, fb, nil)
		},
	}
}

// Recreate waits for the device to go idle, releases everything sized to the old surface and builds it again for
// the current drawable size, reusing the render pass of the last CreateImageViewsAndFramebuffers call.
func (sc *SwapChain) Recreate() error {
	if sc.destroyed {
		return renderer.Newf(renderer.ErrSwapchainCreation, "recreate of destroyed swapchain")
	}
	if err := sc.dc.WaitIdle(); err != nil {
		return renderer.Mark(err, renderer.ErrSwapchainCreation, "wait for device idle")
	}
	sc.release()
	if err := sc.create(toVkExtent(sc.window.DrawableExtent())); err != nil {
		return err
	}
	return sc.CreateImageViewsAndFramebuffers(sc.renderPass)
}

func (sc *SwapChain) release() {
	releaseImageTargets(sc.targets, sc.ImgViews, sc.FrameBuffers)
	if sc.Depth != nil {
		sc.Depth.Destroy()
		sc.Depth = nil
	}
	if sc.Handle != nil {
		vk.DestroySwapchain(sc.dc.D, sc.Handle, nil)
	}
	sc.FrameBuffers = nil
	sc.ImgViews = nil
	sc.Images = nil
	sc.Handle = nil
}

// Destroy releases framebuffers, views, the depth image and the swapchain handle. The render pass belongs to the caller.
func (sc *SwapChain) Destroy() {
	if sc.destroyed {
		return
	}
	sc.destroyed = true
	sc.release()
}

// The following methods implement renderer.Swapchain.

func (sc *SwapChain) AcquireNextImage(signal renderer.Semaphore) (uint32, renderer.AcquireStatus, error) {
	sem, err := asVkSemaphore(signal)
	if err != nil {
		return 0, renderer.AcquireSuccess, renderer.Mark(err, renderer.ErrAcquire, "acquire next image")
	}
	var imgIdx uint32
	result := vk.AcquireNextImage(sc.dc.D, sc.Handle, math.MaxUint64, sem, vk.NullFence, &imgIdx)
	status, err := acquireStatus(result)
	if err != nil || status == renderer.AcquireOutOfDate {
		return 0, status, err
	}
	return imgIdx, status, nil
}

// acquireStatus maps the result of vkAcquireNextImageKHR. Suboptimal still hands out a usable image.
func acquireStatus(result vk.Result) (renderer.AcquireStatus, error) {
	switch result {
	case vk.Success:
		return renderer.AcquireSuccess, nil
	case vk.Suboptimal:
		return renderer.AcquireSuboptimal, nil
	case vk.ErrorOutOfDate:
		return renderer.AcquireOutOfDate, nil
	default:
		return renderer.AcquireSuccess, renderer.Mark(vk.Error(result), renderer.ErrAcquire, "AcquireNextImage(...) result code: %d", result)
	}
}

func (sc *SwapChain) Present(imageIndex uint32, wait renderer.Semaphore) (renderer.PresentStatus, error) {
	sem, err := asVkSemaphore(wait)
	if err != nil {
		return renderer.PresentSuccess, renderer.Mark(err, renderer.ErrPresent, "present image %d", imageIndex)
	}
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sem},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	return presentStatus(vk.QueuePresent(sc.dc.PresentQ.VKQueue, &presentInfo))
}

func presentStatus(result vk.Result) (renderer.PresentStatus, error) {
	switch result {
	case vk.Success:
		return renderer.PresentSuccess, nil
	case vk.Suboptimal:
		return renderer.PresentSuboptimal, nil
	case vk.ErrorOutOfDate:
		return renderer.PresentOutOfDate, nil
	default:
		return renderer.PresentSuccess, renderer.Mark(vk.Error(result), renderer.ErrPresent, "QueuePresent(...) result code: %d", result)
	}
}

func (sc *SwapChain) BeginRenderPass(cb renderer.CommandBuffer, imageIndex uint32) error {
	buffer, err := AsVkCommandBuffer(cb)
	if err != nil {
		return err
	}
	if int(imageIndex) >= len(sc.FrameBuffers) {
		return errors.Newf("no frame buffer for image %d, have %d", imageIndex, len(sc.FrameBuffers))
	}
	// One clear value per attachment, in attachment order
	clearValues := []vk.ClearValue{
		vk.NewClearValue(sc.opts.ClearColor[:]),
		vk.NewClearDepthStencil(1, 0),
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  sc.renderPass,
		Framebuffer: sc.FrameBuffers[imageIndex],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: sc.Extend,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)
	return nil
}

func (sc *SwapChain) EndRenderPass(cb renderer.CommandBuffer) error {
	buffer, err := AsVkCommandBuffer(cb)
	if err != nil {
		return err
	}
	vk.CmdEndRenderPass(buffer)
	return nil
}

func (sc *SwapChain) ImageCount() int {
	return len(sc.Images)
}

func (sc *SwapChain) Extent() renderer.Extent {
	return renderer.Extent{Width: sc.Extend.Width, Height: sc.Extend.Height}
}

func toVkExtent(e renderer.Extent) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}

func CreateImageView(device vk.Device, image vk.Image, format vk.Format, aspectFlags vk.ImageAspectFlags) (vk.ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspectFlags,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	return VkCreateImageView(device, createInfo, nil)
}
