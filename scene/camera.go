package scene

import (
	"log"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/xlab/linmath"
)

type Projection int

const (
	PerspectiveProjection Projection = iota
	OrthographicProjection
)

func (p Projection) String() string {
	switch p {
	case PerspectiveProjection:
		return "perspective"
	case OrthographicProjection:
		return "orthographic"
	default:
		return "unknown"
	}
}

func ParseProjection(s string) (Projection, error) {
	switch s {
	case "perspective":
		return PerspectiveProjection, nil
	case "orthographic":
		return OrthographicProjection, nil
	default:
		return 0, errors.Newf("unknown projection %q, want perspective or orthographic", s)
	}
}

// Camera maps world space into Vulkan's canonical view volume, which spans (-1, -1, 0) to (1, 1, 1) with y
// pointing down. The camera looks along +z of its own space.
type Camera struct {
	Kind Projection
	// FovY is the vertical field of view in radians, only used by the perspective projection.
	FovY float32
	Near float32
	Far  float32

	projection linmath.Mat4x4
	view       linmath.Mat4x4
}

func NewCamera(kind Projection, fovY, near, far float32) *Camera {
	c := &Camera{Kind: kind, FovY: fovY, Near: near, Far: far}
	c.projection.Identity()
	c.view.Identity()
	return c
}

// SetAspect rebuilds the projection for a viewport of the given width / height ratio. The orthographic volume
// spans [-aspect, aspect] horizontally and [-1, 1] vertically so nothing is stretched.
func (c *Camera) SetAspect(aspect float32) {
	switch c.Kind {
	case PerspectiveProjection:
		c.SetPerspectiveProjection(c.FovY, aspect, c.Near, c.Far)
	case OrthographicProjection:
		c.SetOrthographicProjection(-aspect, aspect, -1, 1, c.Near, c.Far)
	default:
		log.Printf("Failed to select projection type %d, keeping the previous projection", c.Kind)
	}
}

// SetPerspectiveProjection maps the frustum of the given vertical field of view between near and far onto depth
// 0 to 1.
func (c *Camera) SetPerspectiveProjection(fovY, aspect, near, far float32) {
	focalLen := float32(1 / math.Tan(float64(fovY)/2))
	var m linmath.Mat4x4
	m[0][0] = focalLen / aspect
	m[1][1] = focalLen
	m[2][2] = far / (far - near)
	m[2][3] = 1
	m[3][2] = -(far * near) / (far - near)
	c.projection = m
}

// SetOrthographicProjection maps the box from (left, top, near) to (right, bottom, far) onto the view volume.
func (c *Camera) SetOrthographicProjection(left, right, top, bottom, near, far float32) {
	var m linmath.Mat4x4
	m.Identity()
	m[0][0] = 2 / (right - left)
	m[1][1] = 2 / (bottom - top)
	m[2][2] = 1 / (far - near)
	m[3][0] = -(right + left) / (right - left)
	m[3][1] = -(bottom + top) / (bottom - top)
	m[3][2] = -near / (far - near)
	c.projection = m
}

// SetViewDirection looks from position along direction. up only needs to be roughly perpendicular to direction,
// the world uses y pointing down so up is usually (0, -1, 0).
func (c *Camera) SetViewDirection(position, direction, up linmath.Vec3) {
	var w, u, v, cross linmath.Vec3
	w.Norm(&direction)
	cross.MultCross(&w, &up)
	u.Norm(&cross)
	v.MultCross(&w, &u)
	c.setViewBasis(position, u, v, w)
}

// SetViewTarget looks from position at target. A target on top of the camera falls back to looking along +z.
func (c *Camera) SetViewTarget(position, target, up linmath.Vec3) {
	var direction linmath.Vec3
	direction.Sub(&target, &position)
	if direction.Len() == 0 {
		log.Printf("Failed to calculate view direction, target equals camera position. Looking along +z")
		direction = linmath.Vec3{0, 0, 1}
	}
	c.SetViewDirection(position, direction, up)
}

// SetViewYXZ builds the view of a camera at position turned by the Tait-Bryan angles in rotation, applied in Y,
// X, Z order. It is the inverse of placing an object with yaw, then pitch, then roll.
func (c *Camera) SetViewYXZ(position, rotation linmath.Vec3) {
	s1, c1 := sincos(rotation[1])
	s2, c2 := sincos(rotation[0])
	s3, c3 := sincos(rotation[2])
	u := linmath.Vec3{c1*c3 + s1*s2*s3, c2 * s3, c1*s2*s3 - c3*s1}
	v := linmath.Vec3{c3*s1*s2 - c1*s3, c2 * c3, c1*c3*s2 + s1*s3}
	w := linmath.Vec3{c2 * s1, -s2, c1 * c2}
	c.setViewBasis(position, u, v, w)
}

// setViewBasis writes the orthonormal camera axes as the rows of the rotation part, followed by the camera
// position moved into the origin.
func (c *Camera) setViewBasis(position, u, v, w linmath.Vec3) {
	var m linmath.Mat4x4
	m.Identity()
	for i := 0; i < 3; i++ {
		m[i][0] = u[i]
		m[i][1] = v[i]
		m[i][2] = w[i]
	}
	m[3][0] = -linmath.Vec3MultInner(&u, &position)
	m[3][1] = -linmath.Vec3MultInner(&v, &position)
	m[3][2] = -linmath.Vec3MultInner(&w, &position)
	c.view = m
}

func (c *Camera) Projection() linmath.Mat4x4 {
	return c.projection
}

func (c *Camera) View() linmath.Mat4x4 {
	return c.view
}

// ProjectionView is projection * view, the world to clip space transform.
func (c *Camera) ProjectionView() linmath.Mat4x4 {
	var m linmath.Mat4x4
	m.Mult(&c.projection, &c.view)
	return m
}

func sincos(angle float32) (float32, float32) {
	s, c := math.Sincos(float64(angle))
	return float32(s), float32(c)
}
