package window

import (
	"math"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/xlab/linmath"

	"vcr_renderer/scene"
)

// KeyState reports whether a key is held down right now.
type KeyState interface {
	Pressed(code sdl.Scancode) bool
}

// Pressed reads the keyboard state SDL updated during the last PollEvents or WaitEvents.
func (w *Window) Pressed(code sdl.Scancode) bool {
	keys := sdl.GetKeyboardState()
	return int(code) < len(keys) && keys[code] != 0
}

type KeyMappings struct {
	MoveLeft     sdl.Scancode
	MoveRight    sdl.Scancode
	MoveForward  sdl.Scancode
	MoveBackward sdl.Scancode
	MoveUp       sdl.Scancode
	MoveDown     sdl.Scancode
	LookLeft     sdl.Scancode
	LookRight    sdl.Scancode
	LookUp       sdl.Scancode
	LookDown     sdl.Scancode
}

func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		MoveLeft:     sdl.SCANCODE_A,
		MoveRight:    sdl.SCANCODE_D,
		MoveForward:  sdl.SCANCODE_W,
		MoveBackward: sdl.SCANCODE_S,
		MoveUp:       sdl.SCANCODE_SPACE,
		MoveDown:     sdl.SCANCODE_LCTRL,
		LookLeft:     sdl.SCANCODE_LEFT,
		LookRight:    sdl.SCANCODE_RIGHT,
		LookUp:       sdl.SCANCODE_UP,
		LookDown:     sdl.SCANCODE_DOWN,
	}
}

// maxPitch keeps the viewer from looking past straight up or down, where yaw flips.
const maxPitch = 1.5

// KeyboardController turns held keys into movement of a viewer transform. It walks in the XZ plane of the world
// like a first person camera, so looking up or down does not change the walking direction.
type KeyboardController struct {
	Keys KeyMappings
	// MoveSpeed is in world units and LookSpeed in radians, both per second.
	MoveSpeed float32
	LookSpeed float32
}

func NewKeyboardController(moveSpeed, lookSpeed float32) KeyboardController {
	return KeyboardController{Keys: DefaultKeyMappings(), MoveSpeed: moveSpeed, LookSpeed: lookSpeed}
}

// MoveInPlaneXZ advances t by dt seconds of the currently held keys. Pitch is clamped to maxPitch and yaw wrapped
// into [0, 2pi).
func (c KeyboardController) MoveInPlaneXZ(keys KeyState, dt float32, t *scene.Transform3D) {
	var rotate linmath.Vec3
	rotate[1] += axis(keys, c.Keys.LookRight, c.Keys.LookLeft)
	rotate[0] += axis(keys, c.Keys.LookUp, c.Keys.LookDown)
	if linmath.Vec3MultInner(&rotate, &rotate) > 0 {
		var dir linmath.Vec3
		dir.Norm(&rotate)
		for i := range t.Rotation {
			t.Rotation[i] += c.LookSpeed * dt * dir[i]
		}
	}
	t.Rotation[0] = float32(math.Max(-maxPitch, math.Min(maxPitch, float64(t.Rotation[0]))))
	yaw := math.Mod(float64(t.Rotation[1]), 2*math.Pi)
	if yaw < 0 {
		yaw += 2 * math.Pi
	}
	t.Rotation[1] = float32(yaw)

	sinYaw, cosYaw := math.Sincos(yaw)
	forward := linmath.Vec3{float32(sinYaw), 0, float32(cosYaw)}
	right := linmath.Vec3{forward[2], 0, -forward[0]}
	up := linmath.Vec3{0, -1, 0}

	var move linmath.Vec3
	for _, d := range []struct {
		amount float32
		dir    linmath.Vec3
	}{
		{axis(keys, c.Keys.MoveForward, c.Keys.MoveBackward), forward},
		{axis(keys, c.Keys.MoveRight, c.Keys.MoveLeft), right},
		{axis(keys, c.Keys.MoveUp, c.Keys.MoveDown), up},
	} {
		for i := range move {
			move[i] += d.amount * d.dir[i]
		}
	}
	if linmath.Vec3MultInner(&move, &move) > 0 {
		var dir linmath.Vec3
		dir.Norm(&move)
		for i := range t.Translation {
			t.Translation[i] += c.MoveSpeed * dt * dir[i]
		}
	}
}

// axis is +1 for positive, -1 for negative and 0 when both or neither are held.
func axis(keys KeyState, positive, negative sdl.Scancode) float32 {
	var v float32
	if keys.Pressed(positive) {
		v++
	}
	if keys.Pressed(negative) {
		v--
	}
	return v
}
