package window

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/xlab/linmath"

	"vcr_renderer/scene"
)

var _ KeyState = (*Window)(nil)

type heldKeys map[sdl.Scancode]bool

func (h heldKeys) Pressed(code sdl.Scancode) bool { return h[code] }

func assertVec3(t *testing.T, want, got linmath.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestMoveInPlaneXZ(t *testing.T) {
	diag := float32(3 / math.Sqrt2)
	for _, tc := range []struct {
		name string
		keys heldKeys
		want linmath.Vec3
	}{
		{name: "idle", keys: heldKeys{}},
		{name: "forward", keys: heldKeys{sdl.SCANCODE_W: true}, want: linmath.Vec3{0, 0, 3}},
		{name: "backward", keys: heldKeys{sdl.SCANCODE_S: true}, want: linmath.Vec3{0, 0, -3}},
		{name: "strafe right", keys: heldKeys{sdl.SCANCODE_D: true}, want: linmath.Vec3{3, 0, 0}},
		{name: "up is negative y", keys: heldKeys{sdl.SCANCODE_SPACE: true}, want: linmath.Vec3{0, -3, 0}},
		{name: "down", keys: heldKeys{sdl.SCANCODE_LCTRL: true}, want: linmath.Vec3{0, 3, 0}},
		{name: "diagonal is not faster", keys: heldKeys{sdl.SCANCODE_W: true, sdl.SCANCODE_D: true}, want: linmath.Vec3{diag, 0, diag}},
		{name: "opposite keys cancel", keys: heldKeys{sdl.SCANCODE_W: true, sdl.SCANCODE_S: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tr := scene.NewTransform3D()
			NewKeyboardController(3, 1.5).MoveInPlaneXZ(tc.keys, 1, &tr)
			assertVec3(t, tc.want, tr.Translation)
			assertVec3(t, linmath.Vec3{}, tr.Rotation)
		})
	}
}

func TestMoveFollowsYaw(t *testing.T) {
	c := NewKeyboardController(3, 1.5)
	tr := scene.NewTransform3D()

	c.MoveInPlaneXZ(heldKeys{sdl.SCANCODE_RIGHT: true}, 1, &tr)
	assert.InDelta(t, 1.5, tr.Rotation[1], 1e-6)
	assertVec3(t, linmath.Vec3{}, tr.Translation)

	c.MoveInPlaneXZ(heldKeys{sdl.SCANCODE_W: true}, 0.5, &tr)
	assertVec3(t, linmath.Vec3{float32(1.5 * math.Sin(1.5)), 0, float32(1.5 * math.Cos(1.5))}, tr.Translation)

	// looking down does not tilt the walking direction
	tr = scene.NewTransform3D()
	c.MoveInPlaneXZ(heldKeys{sdl.SCANCODE_DOWN: true}, 0.5, &tr)
	c.MoveInPlaneXZ(heldKeys{sdl.SCANCODE_W: true}, 1, &tr)
	assert.InDelta(t, -0.75, tr.Rotation[0], 1e-6)
	assertVec3(t, linmath.Vec3{0, 0, 3}, tr.Translation)
}

func TestLookLimits(t *testing.T) {
	c := NewKeyboardController(3, 1)
	tr := scene.NewTransform3D()

	c.MoveInPlaneXZ(heldKeys{sdl.SCANCODE_UP: true}, 10, &tr)
	assert.InDelta(t, maxPitch, tr.Rotation[0], 1e-6)
	c.MoveInPlaneXZ(heldKeys{sdl.SCANCODE_DOWN: true}, 10, &tr)
	assert.InDelta(t, -maxPitch, tr.Rotation[0], 1e-6)

	tr = scene.NewTransform3D()
	c.MoveInPlaneXZ(heldKeys{sdl.SCANCODE_LEFT: true}, 1, &tr)
	assert.InDelta(t, 2*math.Pi-1, tr.Rotation[1], 1e-5)
	c.MoveInPlaneXZ(heldKeys{sdl.SCANCODE_RIGHT: true}, 2, &tr)
	assert.InDelta(t, 1, tr.Rotation[1], 1e-5)
}
