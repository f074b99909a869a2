package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcr_renderer/renderer"
)

var (
	_ renderer.DeviceContext = (*Device)(nil)
	_ renderer.Swapchain     = (*SwapChain)(nil)
	_ renderer.Queue         = (*Queue)(nil)
	_ renderer.Fence         = (*Fence)(nil)
	_ renderer.Semaphore     = (*Semaphore)(nil)
	_ renderer.CommandBuffer = (*CommandBuffer)(nil)
)

func TestPickDevicePrefersDiscrete(t *testing.T) {
	mk := func(name string, dt vk.PhysicalDeviceType) deviceCandidate {
		var props vk.PhysicalDeviceProperties
		copy(props.DeviceName[:], name)
		props.DeviceType = dt
		return deviceCandidate{props: props, score: deviceTypeScore(dt)}
	}
	name := func(c deviceCandidate) string { return vk.ToString(c.props.DeviceName[:]) }

	best, ok := pickDevice([]deviceCandidate{
		mk("llvmpipe", vk.PhysicalDeviceTypeCpu),
		mk("igpu", vk.PhysicalDeviceTypeIntegratedGpu),
		mk("dgpu", vk.PhysicalDeviceTypeDiscreteGpu),
		mk("dgpu2", vk.PhysicalDeviceTypeDiscreteGpu),
	})
	require.True(t, ok)
	assert.Equal(t, "dgpu", name(best))

	best, ok = pickDevice([]deviceCandidate{mk("llvmpipe", vk.PhysicalDeviceTypeCpu)})
	require.True(t, ok)
	assert.Equal(t, "llvmpipe", name(best))

	_, ok = pickDevice(nil)
	assert.False(t, ok)
}

type foreignCommandBuffer struct{ renderer.CommandBuffer }

func TestAsVkCommandBufferRejectsForeignTypes(t *testing.T) {
	_, err := AsVkCommandBuffer(foreignCommandBuffer{})
	assert.Error(t, err)

	cb, err := AsVkCommandBuffer(&CommandBuffer{})
	require.NoError(t, err)
	assert.Nil(t, cb)
}

func TestToVkStage(t *testing.T) {
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit), toVkStage(renderer.StageColorAttachmentOutput))
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit), toVkStage(renderer.StageTopOfPipe))
}
