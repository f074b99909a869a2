package common

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// QueueFamilyIndices stores the families picked for drawing and presenting. Both may point to the same family,
// nil means no suitable family was found (yet).
type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	PresentFamily  *uint32
}

func findQueueFamilies(pd vk.PhysicalDevice, surf vk.Surface) (*QueueFamilyIndices, error) {
	indices := &QueueFamilyIndices{}
	qFamilies := ReadQueueFamilies(pd)

	for i := range qFamilies {
		if indices.GraphicsFamily == nil && isBitSet(qFamilies[i], vk.QueueGraphicsBit) {
			indices.GraphicsFamily = new(uint32)
			*indices.GraphicsFamily = uint32(i)
		}
		if indices.PresentFamily == nil {
			var presentSupport vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surf, &presentSupport)
			if presentSupport > 0 {
				indices.PresentFamily = new(uint32)
				*indices.PresentFamily = uint32(i)
			}
		}
		if indices.isAllQueuesFound() {
			break
		}
	}
	if indices.GraphicsFamily == nil {
		return nil, errors.New("unable to find graphics capable queue family")
	}
	if indices.PresentFamily == nil {
		return nil, errors.New("unable to find present capable queue family for given surface")
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func (q *QueueFamilyIndices) isAllQueuesFound() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// IsShared reports whether drawing and presenting happen on the same family, which allows exclusive image sharing.
func (q *QueueFamilyIndices) IsShared() bool {
	return q.isAllQueuesFound() && *q.GraphicsFamily == *q.PresentFamily
}

// UniqueIndices lists every family once, graphics first.
func (q *QueueFamilyIndices) UniqueIndices() []uint32 {
	var uniq []uint32
	for _, idx := range []*uint32{q.GraphicsFamily, q.PresentFamily} {
		if idx != nil && !inList(*idx, uniq) {
			uniq = append(uniq, *idx)
		}
	}
	return uniq
}

func (q *QueueFamilyIndices) toQueueCreateInfos() ([]vk.DeviceQueueCreateInfo, error) {
	if !q.isAllQueuesFound() {
		return nil, errors.New("queue family indices are incomplete")
	}
	uniqIndices := q.UniqueIndices()
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos, nil
}

func inList(e uint32, l []uint32) bool {
	for i := range l {
		if l[i] == e {
			return true
		}
	}
	return false
}
