package common

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"vcr_renderer/renderer"
)

var depthFormatCandidates = []vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint}

// FindDepthFormat returns the first depth format the physical device can use as an optimally tiled depth
// attachment.
func FindDepthFormat(pd vk.PhysicalDevice) (vk.Format, error) {
	format, err := selectSupportedFormat(
		depthFormatCandidates,
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
		func(f vk.Format) vk.FormatProperties { return ReadFormatProperties(pd, f) },
	)
	if err != nil {
		return vk.FormatUndefined, renderer.Mark(err, renderer.ErrResourceCreation, "find depth format")
	}
	return format, nil
}

func selectSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags, props func(vk.Format) vk.FormatProperties) (vk.Format, error) {
	for _, format := range candidates {
		fProps := props(format)
		switch {
		case tiling == vk.ImageTilingLinear && fProps.LinearTilingFeatures&features == features:
			return format, nil
		case tiling == vk.ImageTilingOptimal && fProps.OptimalTilingFeatures&features == features:
			return format, nil
		}
	}
	return vk.FormatUndefined, errors.Newf("none of %d candidate formats supports features %b", len(candidates), features)
}

func hasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

// createDepthImage creates a device local depth attachment of the swapchain extent.
func createDepthImage(dc *Device, extent vk.Extent2D, format vk.Format) (*Image, error) {
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if hasStencilComponent(format) {
		// A view used as a depth stencil attachment must cover both aspects
		aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	img, err := CreateImage(
		dc,
		extent,
		format,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		aspect,
	)
	if err != nil {
		return nil, renderer.Mark(err, renderer.ErrResourceCreation, "create depth image")
	}
	return img, nil
}
