package common

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// SwapChainDetails is everything the surface tells us about the swapchains it supports.
type SwapChainDetails struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// SelectSurfaceFormat returns the desired format/color space pair if the surface offers it and the first offered
// format otherwise. A surface without any format cannot back a swapchain.
func SelectSurfaceFormat(formats []vk.SurfaceFormat, desiredFormat vk.Format, desiredColorSpace vk.ColorSpace) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("surface reports no formats")
	}
	for _, af := range formats {
		if af.Format == desiredFormat && af.ColorSpace == desiredColorSpace {
			return af, nil
		}
	}
	fallbackFormat := formats[0]
	log.Printf("Did not find preferred SurfaceFormat, selecting first one available. (%v)", fallbackFormat)
	return fallbackFormat, nil
}

// SelectPresentMode returns the desired mode when available and FIFO otherwise, which every surface supports.
func SelectPresentMode(modes []vk.PresentMode, desiredMode vk.PresentMode) vk.PresentMode {
	for _, pm := range modes {
		if pm == desiredMode {
			return pm
		}
	}
	if desiredMode != vk.PresentModeFifo {
		log.Printf("Did not find preferred PresentMode %s, selecting %s", PresentModeName(desiredMode), PresentModeName(vk.PresentModeFifo))
	}
	return vk.PresentModeFifo
}

// SelectSwapExtent uses the current extent of the surface unless the surface leaves the choice to us, which it
// signals by a current width of UINT32_MAX. In that case the drawable size is clamped into the supported range.
func SelectSwapExtent(caps vk.SurfaceCapabilities, drawable vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != uint32(vk.MaxUint32) {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(drawable.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(drawable.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// SelectImageCount asks for one image more than the minimum so we never wait on the driver to release one. A max
// count of zero means there is no upper limit.
func SelectImageCount(caps vk.SurfaceCapabilities) uint32 {
	imgCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imgCount > caps.MaxImageCount {
		imgCount = caps.MaxImageCount
	}
	return imgCount
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
