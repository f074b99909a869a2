package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresentMode(t *testing.T) {
	for name, want := range map[string]vk.PresentMode{
		"mailbox":      vk.PresentModeMailbox,
		"FIFO":         vk.PresentModeFifo,
		" immediate ":  vk.PresentModeImmediate,
		"fifo_relaxed": vk.PresentModeFifoRelaxed,
	} {
		got, err := ParsePresentMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParsePresentMode("vsync")
	assert.Error(t, err)
}

func TestPresentModeNameRoundTrip(t *testing.T) {
	for _, mode := range []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeFifo, vk.PresentModeImmediate} {
		got, err := ParsePresentMode(PresentModeName(mode))
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
	assert.Equal(t, "PresentMode(42)", PresentModeName(vk.PresentMode(42)))
}

func TestQueueFlagNames(t *testing.T) {
	flags := vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)
	assert.Equal(t, []string{"GRAPHICS", "TRANSFER"}, queueFlagNames(flags))
	assert.Empty(t, queueFlagNames(0))
}

func TestDriverVersion(t *testing.T) {
	// 535.113.1.0 packed the NVIDIA way
	raw := uint32(535<<22 | 113<<14 | 1<<6)
	assert.Equal(t, "535.113.1.0", asDriverVersion(0x10DE, raw))
	assert.Equal(t, "unknown", asVendorName(0x1234))
}
