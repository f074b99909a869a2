package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32(v uint32) *uint32 {
	return &v
}

func TestQueueFamilyIndicesUnique(t *testing.T) {
	shared := QueueFamilyIndices{GraphicsFamily: u32(0), PresentFamily: u32(0)}
	assert.True(t, shared.IsShared())
	assert.Equal(t, []uint32{0}, shared.UniqueIndices())

	split := QueueFamilyIndices{GraphicsFamily: u32(0), PresentFamily: u32(2)}
	assert.False(t, split.IsShared())
	assert.Equal(t, []uint32{0, 2}, split.UniqueIndices())

	infos, err := split.toQueueCreateInfos()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, uint32(2), infos[1].QueueFamilyIndex)
	assert.Equal(t, uint32(1), infos[1].QueueCount)
}

func TestQueueFamilyIndicesIncomplete(t *testing.T) {
	q := QueueFamilyIndices{GraphicsFamily: u32(1)}
	assert.False(t, q.isAllQueuesFound())
	assert.False(t, q.IsShared())
	_, err := q.toQueueCreateInfos()
	assert.Error(t, err)
}
