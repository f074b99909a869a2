package systems

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlab/linmath"

	"vcr_renderer/common"
	"vcr_renderer/renderer"
	"vcr_renderer/scene"
)

var _ renderer.RenderPassExecutor = (*SimpleRenderSystem)(nil)

func TestPushConstantsFitGuaranteedLimit(t *testing.T) {
	// every Vulkan device supports at least 128 Byte of push constants
	assert.Equal(t, uint32(80), pushConstantsSize)
	assert.LessOrEqual(t, pushConstantsSize, uint32(128))
}

func TestPushConstantsLayout(t *testing.T) {
	w := scene.NewWorld()
	obj := w.Spawn(scene.TagBody, nil, linmath.Vec3{0.25, 0.5, 0.75})
	obj.Transform.Translation = linmath.Vec2{3, 4}

	// an unconfigured camera passes the model matrix through
	b, err := common.RawBytes(pushConstantsFor(scene.NewCamera(scene.OrthographicProjection, 0, 0, 1).ProjectionView(), obj))
	require.NoError(t, err)
	require.Len(t, b, int(pushConstantsSize))

	f := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	// translation sits in the last column
	assert.Equal(t, float32(3), f(12))
	assert.Equal(t, float32(4), f(13))
	assert.Equal(t, float32(1), f(15))
	assert.Equal(t, []float32{0.25, 0.5, 0.75, 1}, []float32{f(16), f(17), f(18), f(19)})
}

func TestPushConstantsApplyCamera(t *testing.T) {
	cam := scene.NewCamera(scene.OrthographicProjection, 0, 0, 1)
	cam.SetOrthographicProjection(-2, 2, -2, 2, 0, 1)

	w := scene.NewWorld()
	flat := w.Spawn(scene.TagBody, nil, linmath.Vec3{1, 1, 1})
	flat.Transform.Translation = linmath.Vec2{3, 4}
	push := pushConstantsFor(cam.ProjectionView(), flat)
	assert.Equal(t, linmath.Vec4{1.5, 2, 0, 1}, push.Transform[3])

	cube := w.Spawn(scene.TagBody, nil, linmath.Vec3{1, 1, 1})
	tr := scene.NewTransform3D()
	tr.Translation = linmath.Vec3{0, 0, 0.5}
	cube.Transform3D = &tr
	push = pushConstantsFor(cam.ProjectionView(), cube)
	assert.Equal(t, linmath.Vec4{0, 0, 0.5, 1}, push.Transform[3])
	assert.Equal(t, float32(0.5), push.Transform[0][0])
}

func TestViewportAndScissorFollowExtent(t *testing.T) {
	e := renderer.Extent{Width: 1024, Height: 768}
	vp := viewportFor(e)
	assert.Equal(t, float32(1024), vp.Width)
	assert.Equal(t, float32(768), vp.Height)
	assert.Equal(t, float32(1), vp.MaxDepth)

	sc := scissorFor(e)
	assert.Equal(t, uint32(1024), sc.Extent.Width)
	assert.Equal(t, uint32(768), sc.Extent.Height)
}
