package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// VK_COLOR_SPACE_EXTENDED_SRGB_LINEAR_EXT
const colorSpaceLinear = vk.ColorSpace(1000104002)

func TestSelectSurfaceFormat(t *testing.T) {
	for _, tc := range []struct {
		name    string
		formats []vk.SurfaceFormat
		want    vk.SurfaceFormat
	}{
		{
			name:    "fallback to first",
			formats: []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
			want:    vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		{
			name: "preferred not first",
			formats: []vk.SurfaceFormat{
				{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: colorSpaceLinear},
				{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			},
			want: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		{
			name: "format matches but color space does not",
			formats: []vk.SurfaceFormat{
				{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
				{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: colorSpaceLinear},
			},
			want: vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SelectSurfaceFormat(tc.formats, vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSelectSurfaceFormatEmpty(t *testing.T) {
	_, err := SelectSurfaceFormat(nil, vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	assert.Error(t, err)
}

func TestSelectPresentMode(t *testing.T) {
	assert.Equal(t, vk.PresentModeMailbox,
		SelectPresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeMailbox))
	assert.Equal(t, vk.PresentModeFifo,
		SelectPresentMode([]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}, vk.PresentModeMailbox))
	assert.Equal(t, vk.PresentModeImmediate,
		SelectPresentMode([]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}, vk.PresentModeImmediate))
	// FIFO is guaranteed to exist even if the list does not say so
	assert.Equal(t, vk.PresentModeFifo, SelectPresentMode(nil, vk.PresentModeMailbox))
}

func TestSelectSwapExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
		CurrentExtent:  vk.Extent2D{Width: uint32(vk.MaxUint32), Height: uint32(vk.MaxUint32)},
	}
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 4096}, SelectSwapExtent(caps, vk.Extent2D{Width: 10000, Height: 10000}))
	assert.Equal(t, vk.Extent2D{Width: 1, Height: 1}, SelectSwapExtent(caps, vk.Extent2D{Width: 0, Height: 0}))
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, SelectSwapExtent(caps, vk.Extent2D{Width: 1024, Height: 768}))

	caps.CurrentExtent = vk.Extent2D{Width: 800, Height: 600}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, SelectSwapExtent(caps, vk.Extent2D{Width: 10000, Height: 10000}))
}

func TestSelectImageCount(t *testing.T) {
	for _, tc := range []struct {
		min, max, want uint32
	}{
		{min: 2, max: 0, want: 3},
		{min: 2, max: 8, want: 3},
		{min: 3, max: 3, want: 3},
		{min: 1, max: 2, want: 2},
	} {
		caps := vk.SurfaceCapabilities{MinImageCount: tc.min, MaxImageCount: tc.max}
		assert.Equal(t, tc.want, SelectImageCount(caps), "min=%d max=%d", tc.min, tc.max)
	}
}
