package model

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"vcr_renderer/common"
	"vcr_renderer/renderer"
)

// Model is geometry living in device local memory. It is shared by every object drawn with it and has to outlive
// all frames that may still reference it.
type Model struct {
	vertexBuffer *common.Buffer
	indexBuffer  *common.Buffer
	vertexCount  uint32
	indexCount   uint32
	destroyed    bool
}

// NewModel uploads the builder's vertices, and indices if there are any, through staging buffers.
func NewModel(dc *common.Device, b Builder) (*Model, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		vertexCount: uint32(len(b.Vertices)),
		indexCount:  uint32(len(b.Indices)),
	}

	vBytes, err := common.RawBytes(b.Vertices)
	if err != nil {
		return nil, err
	}
	m.vertexBuffer, err = common.UploadDeviceLocal(dc, vBytes, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, renderer.Mark(err, renderer.ErrResourceCreation, "create vertex buffer")
	}

	if m.indexCount > 0 {
		iBytes, err := common.RawBytes(b.Indices)
		if err != nil {
			m.vertexBuffer.Destroy()
			return nil, err
		}
		m.indexBuffer, err = common.UploadDeviceLocal(dc, iBytes, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
		if err != nil {
			m.vertexBuffer.Destroy()
			return nil, renderer.Mark(err, renderer.ErrResourceCreation, "create index buffer")
		}
	}
	log.Printf("Created model with %d vertices and %d indices", m.vertexCount, m.indexCount)
	return m, nil
}

func (m *Model) Bind(cb vk.CommandBuffer) error {
	if m.destroyed {
		return errors.New("bind of destroyed model")
	}
	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{m.vertexBuffer.Handle}, []vk.DeviceSize{0})
	if m.indexBuffer != nil {
		vk.CmdBindIndexBuffer(cb, m.indexBuffer.Handle, 0, vk.IndexTypeUint32)
	}
	return nil
}

func (m *Model) Draw(cb vk.CommandBuffer) {
	if m.indexBuffer != nil {
		vk.CmdDrawIndexed(cb, m.indexCount, 1, 0, 0, 0)
		return
	}
	vk.CmdDraw(cb, m.vertexCount, 1, 0, 0)
}

func (m *Model) VertexCount() uint32 { return m.vertexCount }

func (m *Model) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	if m.indexBuffer != nil {
		m.indexBuffer.Destroy()
	}
	m.vertexBuffer.Destroy()
}
