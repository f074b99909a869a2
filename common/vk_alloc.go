package common

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// This Code section contains allocation helper functions. It aims to simplify the allocation of buffers on the
// selected device.

type Buffer struct {
	Handle    vk.Buffer
	DeviceMem vk.DeviceMemory
	Size      vk.DeviceSize
	Usage     vk.BufferUsageFlags
	props     vk.MemoryPropertyFlags

	dc        *Device
	destroyed bool
}

func CreateBuffer(dc *Device, size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	buf, err := VkCreateBuffer(dc.D, &bufferInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create buffer of %d bytes", size)
	}

	bufRequirements := ReadBufferMemoryRequirements(dc.D, buf)
	memType, err := findMemoryType(dc.PdMemoryProps, bufRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  bufRequirements.Size,
		MemoryTypeIndex: memType,
	}
	deviceMem, err := VkAllocateMemory(dc.D, &allocInfo, nil)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		return nil, errors.Wrapf(err, "allocate %d bytes of buffer memory", bufRequirements.Size)
	}

	// Associate allocated memory with buffer Handle
	err = VkBindBufferMemory(dc.D, buf, deviceMem, 0)
	if err != nil {
		vk.DestroyBuffer(dc.D, buf, nil)
		vk.FreeMemory(dc.D, deviceMem, nil)
		return nil, errors.Wrap(err, "bind device memory to buffer")
	}

	return &Buffer{
		Handle:    buf,
		DeviceMem: deviceMem,
		Size:      size,
		Usage:     usage,
		props:     props,
		dc:        dc,
	}, nil
}

// CopyToDeviceBuffer is a convenience method to simplify the process of mapping device memory to CPU memory,
// copy bytes over to the GPU and unmapping the memory again. This requires the buffer to:
// - have the stated Usage: vk.BufferUsageTransferSrcBit
// - be: vk.MemoryPropertyHostVisibleBit and vk.MemoryPropertyHostCoherentBit
func CopyToDeviceBuffer(deviceBuf *Buffer, payload []byte) error {
	hasTransferUsage := deviceBuf.Usage&vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit) != 0
	hostVisCoh := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	if !hasTransferUsage || deviceBuf.props&hostVisCoh != hostVisCoh {
		return errors.New("cant copy to device buffer as buffer is not host visible transfer source")
	}
	// This function only allows to copy a "full buffer" worth of payload starting at offset = 0
	if deviceBuf.Size != vk.DeviceSize(uint64(len(payload))) {
		return errors.Newf("buffer of %d bytes cant take payload of %d bytes", deviceBuf.Size, len(payload))
	}
	pData, err := VkMapMemory(deviceBuf.dc.D, deviceBuf.DeviceMem, 0, deviceBuf.Size, 0)
	if err != nil {
		return errors.Wrap(err, "map device memory")
	}
	bCopied := vk.Memcopy(pData, payload)
	vk.UnmapMemory(deviceBuf.dc.D, deviceBuf.DeviceMem)
	if bCopied != len(payload) {
		return errors.Newf("copied %d of %d bytes to device", bCopied, len(payload))
	}
	return nil
}

// UploadDeviceLocal creates a device local buffer with the given usage and fills it with payload through a host
// visible staging buffer, which is released again before returning.
func UploadDeviceLocal(dc *Device, payload []byte, usage vk.BufferUsageFlags) (*Buffer, error) {
	size := vk.DeviceSize(len(payload))
	stgBuf, err := CreateBuffer(
		dc,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create staging buffer")
	}
	defer stgBuf.Destroy()

	if err := CopyToDeviceBuffer(stgBuf, payload); err != nil {
		return nil, err
	}

	buf, err := CreateBuffer(
		dc,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	)
	if err != nil {
		return nil, err
	}
	if err := dc.CopyBuffer(stgBuf, buf, size); err != nil {
		buf.Destroy()
		return nil, errors.Wrap(err, "copy staging buffer")
	}
	log.Printf("Uploaded %d bytes into device local buffer", size)
	return buf, nil
}

func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	vk.DestroyBuffer(b.dc.D, b.Handle, nil)
	vk.FreeMemory(b.dc.D, b.DeviceMem, nil)
}

// Image is a 2D device image with its own memory and a single view covering it.
type Image struct {
	Handle    vk.Image
	DeviceMem vk.DeviceMemory
	View      vk.ImageView
	Format    vk.Format

	dc        *Device
	destroyed bool
}

// CreateImage creates a single mip, single layer 2D image in memory with the given properties plus a view over
// the aspect. On failure nothing is left behind.
func CreateImage(dc *Device, extent vk.Extent2D, format vk.Format, usage vk.ImageUsageFlags, props vk.MemoryPropertyFlags, aspect vk.ImageAspectFlags) (*Image, error) {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	img, err := VkCreateImage(dc.D, &imageInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create %dx%d image", extent.Width, extent.Height)
	}

	memRequirements := ReadImageMemoryRequirements(dc.D, img)
	memType, err := findMemoryType(dc.PdMemoryProps, memRequirements.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}
	mem, err := VkAllocateMemory(dc.D, &allocInfo, nil)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		return nil, errors.Wrapf(err, "allocate %d bytes of image memory", memRequirements.Size)
	}
	if err := VkBindImageMemory(dc.D, img, mem, 0); err != nil {
		vk.DestroyImage(dc.D, img, nil)
		vk.FreeMemory(dc.D, mem, nil)
		return nil, errors.Wrap(err, "bind device memory to image")
	}

	view, err := CreateImageView(dc.D, img, format, aspect)
	if err != nil {
		vk.DestroyImage(dc.D, img, nil)
		vk.FreeMemory(dc.D, mem, nil)
		return nil, errors.Wrap(err, "create image view")
	}
	return &Image{Handle: img, DeviceMem: mem, View: view, Format: format, dc: dc}, nil
}

func (img *Image) Destroy() {
	if img.destroyed {
		return
	}
	img.destroyed = true
	vk.DestroyImageView(img.dc.D, img.View, nil)
	vk.DestroyImage(img.dc.D, img.Handle, nil)
	vk.FreeMemory(img.dc.D, img.DeviceMem, nil)
}

func findMemoryType(memProps vk.PhysicalDeviceMemoryProperties, typeFilter uint32, propFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		ofType := (typeFilter & (1 << i)) > 0
		hasProperties := memProps.MemoryTypes[i].PropertyFlags&propFlags == propFlags
		if ofType && hasProperties {
			return i, nil
		}
	}
	return 0, errors.Newf("no memory type in filter %032b with flags %b", typeFilter, propFlags)
}
