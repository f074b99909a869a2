// Package systems contains the render systems recording draw commands into a frame's render pass.
package systems

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/xlab/linmath"

	"vcr_renderer/common"
	"vcr_renderer/renderer"
	"vcr_renderer/scene"
)

// SimplePushConstantData is the per object data of the simple shader, laid out as two std430 members.
type SimplePushConstantData struct {
	Transform linmath.Mat4x4
	Color     linmath.Vec4
}

const pushConstantsSize = uint32(unsafe.Sizeof(SimplePushConstantData{}))

var pushConstantStages = vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit)

// SimpleRenderSystem draws every object of a world with its own transform and color, seen through a camera. It
// implements renderer.RenderPassExecutor.
type SimpleRenderSystem struct {
	device         vk.Device
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline
	world          *scene.World
	camera         *scene.Camera
	destroyed      bool
}

func NewSimpleRenderSystem(dc *common.Device, renderPass vk.RenderPass, shaders ShaderPaths, world *scene.World, camera *scene.Camera) (*SimpleRenderSystem, error) {
	layout, err := createPipelineLayout(dc.D)
	if err != nil {
		return nil, err
	}
	pipeline, err := createGraphicsPipeline(dc.D, renderPass, layout, shaders)
	if err != nil {
		vk.DestroyPipelineLayout(dc.D, layout, nil)
		return nil, err
	}
	return &SimpleRenderSystem{
		device:         dc.D,
		pipelineLayout: layout,
		pipeline:       pipeline,
		world:          world,
		camera:         camera,
	}, nil
}

func (s *SimpleRenderSystem) Record(frame renderer.FrameInfo) error {
	cb, err := common.AsVkCommandBuffer(frame.CommandBuffer)
	if err != nil {
		return err
	}
	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, s.pipeline)
	vk.CmdSetViewport(cb, 0, 1, []vk.Viewport{viewportFor(frame.Extent)})
	vk.CmdSetScissor(cb, 0, 1, []vk.Rect2D{scissorFor(frame.Extent)})

	projectionView := s.camera.ProjectionView()
	for _, obj := range s.world.Objects() {
		if obj.Model == nil {
			continue
		}
		push, err := common.RawBytes(pushConstantsFor(projectionView, obj))
		if err != nil {
			return err
		}
		vk.CmdPushConstants(cb, s.pipelineLayout, pushConstantStages, 0, pushConstantsSize, unsafe.Pointer(&push[0]))
		if err := obj.Model.Bind(cb); err != nil {
			return err
		}
		obj.Model.Draw(cb)
	}
	return nil
}

func (s *SimpleRenderSystem) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	vk.DestroyPipeline(s.device, s.pipeline, nil)
	vk.DestroyPipelineLayout(s.device, s.pipelineLayout, nil)
}

// pushConstantsFor combines the camera with the object's model matrix into one model to clip space transform.
func pushConstantsFor(projectionView linmath.Mat4x4, obj *scene.GameObject) SimplePushConstantData {
	model := obj.ModelMatrix()
	var transform linmath.Mat4x4
	transform.Mult(&projectionView, &model)
	return SimplePushConstantData{
		Transform: transform,
		Color:     linmath.Vec4{obj.Color[0], obj.Color[1], obj.Color[2], 1},
	}
}

func viewportFor(e renderer.Extent) vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(e.Width),
		Height:   float32(e.Height),
		MinDepth: 0,
		MaxDepth: 1.0,
	}
}

func scissorFor(e renderer.Extent) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: e.Width, Height: e.Height},
	}
}
