package scene

import (
	"math"

	"github.com/xlab/linmath"
)

const (
	TagBody  = "body"
	TagArrow = "arrow"
)

// minDistanceSquared guards against the singularity of two bodies sharing a position.
const minDistanceSquared = 1e-8

// GravitySystem integrates pairwise inverse square attraction between bodies.
type GravitySystem struct {
	Strength float32
}

// Update advances objs by dt split into substeps equal steps.
func (g GravitySystem) Update(objs []*GameObject, dt float32, substeps int) {
	if substeps < 1 {
		substeps = 1
	}
	stepDelta := dt / float32(substeps)
	for i := 0; i < substeps; i++ {
		g.step(objs, stepDelta)
	}
}

// ComputeForce is the force pulling to towards from.
func (g GravitySystem) ComputeForce(from, to *GameObject) linmath.Vec2 {
	offset := linmath.Vec2{
		from.Transform.Translation[0] - to.Transform.Translation[0],
		from.Transform.Translation[1] - to.Transform.Translation[1],
	}
	distanceSquared := offset[0]*offset[0] + offset[1]*offset[1]
	if distanceSquared < minDistanceSquared {
		return linmath.Vec2{}
	}
	force := g.Strength * to.RigidBody.Mass * from.RigidBody.Mass / distanceSquared
	distance := float32(math.Sqrt(float64(distanceSquared)))
	return linmath.Vec2{force * offset[0] / distance, force * offset[1] / distance}
}

func (g GravitySystem) step(objs []*GameObject, dt float32) {
	for i, a := range objs {
		for _, b := range objs[i+1:] {
			f := g.ComputeForce(a, b)
			a.RigidBody.Velocity[0] -= dt * f[0] / a.RigidBody.Mass
			a.RigidBody.Velocity[1] -= dt * f[1] / a.RigidBody.Mass
			b.RigidBody.Velocity[0] += dt * f[0] / b.RigidBody.Mass
			b.RigidBody.Velocity[1] += dt * f[1] / b.RigidBody.Mass
		}
	}
	for _, obj := range objs {
		obj.Transform.Translation[0] += dt * obj.RigidBody.Velocity[0]
		obj.Transform.Translation[1] += dt * obj.RigidBody.Velocity[1]
	}
}

// VectorFieldSystem points every arrow of a field along the net gravity at its position.
type VectorFieldSystem struct{}

// Update scales each arrow logarithmically with the field strength and rotates it into the field direction.
func (VectorFieldSystem) Update(gravity GravitySystem, bodies []*GameObject, field []*GameObject) {
	for _, arrow := range field {
		var direction linmath.Vec2
		for _, body := range bodies {
			f := gravity.ComputeForce(body, arrow)
			direction[0] += f[0]
			direction[1] += f[1]
		}
		length := math.Hypot(float64(direction[0]), float64(direction[1]))
		arrow.Transform.Scale[0] = float32(0.005 + 0.045*clamp(math.Log(length+1)/3, 0, 1))
		arrow.Transform.Rotation = float32(math.Atan2(float64(direction[1]), float64(direction[0])))
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
