package scene

import (
	"github.com/xlab/linmath"
)

// Transform3D places an object in world space. Rotation holds Tait-Bryan angles in radians applied as
// X * Y * Z, so on a column vector the z rotation happens first.
type Transform3D struct {
	Translation linmath.Vec3
	Scale       linmath.Vec3
	Rotation    linmath.Vec3
}

func NewTransform3D() Transform3D {
	return Transform3D{Scale: linmath.Vec3{1, 1, 1}}
}

// rotation returns the columns of Rx * Ry * Rz.
func (t Transform3D) rotation() [3]linmath.Vec3 {
	sx, cx := sincos(t.Rotation[0])
	sy, cy := sincos(t.Rotation[1])
	sz, cz := sincos(t.Rotation[2])

	return [3]linmath.Vec3{
		{cy * cz, cx*sz + sx*sy*cz, sx*sz - cx*sy*cz},
		{-cy * sz, cx*cz - sx*sy*sz, sx*cz + cx*sy*sz},
		{sy, -sx * cy, cx * cy},
	}
}

// Mat4 returns translate * Rx * Ry * Rz * scale, column major like Transform2D.Mat4.
func (t Transform3D) Mat4() linmath.Mat4x4 {
	r := t.rotation()
	var m linmath.Mat4x4
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col][row] = r[col][row] * t.Scale[col]
		}
	}
	m[3] = linmath.Vec4{t.Translation[0], t.Translation[1], t.Translation[2], 1}
	return m
}

// NormalMatrix is the inverse transpose of the upper 3x3 of Mat4, which for a rotation times a scale reduces to
// the rotation times the inverse scale. A zero scale axis yields a zero column instead of infinities.
func (t Transform3D) NormalMatrix() linmath.Mat4x4 {
	r := t.rotation()
	var m linmath.Mat4x4
	for col := 0; col < 3; col++ {
		var inv float32
		if t.Scale[col] != 0 {
			inv = 1 / t.Scale[col]
		}
		for row := 0; row < 3; row++ {
			m[col][row] = r[col][row] * inv
		}
	}
	m[3][3] = 1
	return m
}

// Apply transforms a point the same way the vertex shader does.
func (t Transform3D) Apply(p linmath.Vec3) linmath.Vec3 {
	return mulPoint(t.Mat4(), p)
}

func mulPoint(m linmath.Mat4x4, p linmath.Vec3) linmath.Vec3 {
	var out linmath.Vec3
	for row := 0; row < 3; row++ {
		out[row] = m[0][row]*p[0] + m[1][row]*p[1] + m[2][row]*p[2] + m[3][row]
	}
	return out
}
