// Package scene holds the objects drawn by the renderer, the camera looking at them and the small physics systems
// moving them.
package scene

import (
	"math"

	"github.com/xlab/linmath"

	"vcr_renderer/model"
)

type Transform2D struct {
	Translation linmath.Vec2
	Scale       linmath.Vec2
	Rotation    float32
}

func NewTransform2D() Transform2D {
	return Transform2D{Scale: linmath.Vec2{1, 1}}
}

// Mat4 returns rotation * scale in the upper left 2x2 block and the translation in the last column. Matrices are
// column major, m[col][row], as the shaders expect.
func (t Transform2D) Mat4() linmath.Mat4x4 {
	s, c := math.Sincos(float64(t.Rotation))
	sin, cos := float32(s), float32(c)

	var m linmath.Mat4x4
	m.Identity()
	m[0][0], m[0][1] = cos*t.Scale[0], sin*t.Scale[0]
	m[1][0], m[1][1] = -sin*t.Scale[1], cos*t.Scale[1]
	m[3][0], m[3][1] = t.Translation[0], t.Translation[1]
	return m
}

// Apply transforms a point the same way the vertex shader does.
func (t Transform2D) Apply(p linmath.Vec2) linmath.Vec2 {
	m := t.Mat4()
	return linmath.Vec2{
		m[0][0]*p[0] + m[1][0]*p[1] + m[3][0],
		m[0][1]*p[0] + m[1][1]*p[1] + m[3][1],
	}
}

type RigidBody2D struct {
	Velocity linmath.Vec2
	Mass     float32
}

// GameObject is one drawable instance of a shared model. The physics systems only move the 2D Transform, objects
// with a Transform3D are placed by it instead.
type GameObject struct {
	ID          ID
	Tag         string
	Model       *model.Model
	Color       linmath.Vec3
	Transform   Transform2D
	Transform3D *Transform3D
	RigidBody   RigidBody2D
}

// ModelMatrix is the model to world transform of the object.
func (o *GameObject) ModelMatrix() linmath.Mat4x4 {
	if o.Transform3D != nil {
		return o.Transform3D.Mat4()
	}
	return o.Transform.Mat4()
}
