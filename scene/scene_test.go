package scene

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlab/linmath"
)

func body(x, y, mass float32) *GameObject {
	return &GameObject{
		Transform: Transform2D{Translation: linmath.Vec2{x, y}, Scale: linmath.Vec2{1, 1}},
		RigidBody: RigidBody2D{Mass: mass},
	}
}

func TestTransformMat4(t *testing.T) {
	tr := Transform2D{
		Translation: linmath.Vec2{1, 2},
		Scale:       linmath.Vec2{2, 3},
		Rotation:    math.Pi / 2,
	}
	// scale first, then rotate by 90 degrees, then translate
	p := tr.Apply(linmath.Vec2{1, 0})
	assert.InDelta(t, 1, p[0], 1e-6)
	assert.InDelta(t, 4, p[1], 1e-6)

	p = tr.Apply(linmath.Vec2{0, 1})
	assert.InDelta(t, -2, p[0], 1e-6)
	assert.InDelta(t, 2, p[1], 1e-6)

	m := NewTransform2D().Mat4()
	var id linmath.Mat4x4
	id.Identity()
	assert.Equal(t, id, m)
}

func TestComputeForce(t *testing.T) {
	g := GravitySystem{Strength: 1}
	a, b := body(0, 0, 2), body(2, 0, 3)

	f := g.ComputeForce(b, a)
	// pulls a towards b with 1*2*3/4
	assert.InDelta(t, 1.5, f[0], 1e-6)
	assert.InDelta(t, 0, f[1], 1e-6)

	back := g.ComputeForce(a, b)
	assert.InDelta(t, -f[0], back[0], 1e-6)
	assert.InDelta(t, -f[1], back[1], 1e-6)

	assert.Equal(t, linmath.Vec2{}, g.ComputeForce(a, body(0, 0, 1)))
}

func TestGravityConservesMomentum(t *testing.T) {
	g := GravitySystem{Strength: 0.81}
	a, b := body(0.5, 0.5, 1), body(-0.45, -0.25, 2)
	a.RigidBody.Velocity = linmath.Vec2{-0.5, 0}
	b.RigidBody.Velocity = linmath.Vec2{0.25, 0}

	momentum := func() (float32, float32) {
		return a.RigidBody.Mass*a.RigidBody.Velocity[0] + b.RigidBody.Mass*b.RigidBody.Velocity[0],
			a.RigidBody.Mass*a.RigidBody.Velocity[1] + b.RigidBody.Mass*b.RigidBody.Velocity[1]
	}
	px, py := momentum()
	for i := 0; i < 60; i++ {
		g.Update([]*GameObject{a, b}, 1.0/60, 5)
	}
	qx, qy := momentum()
	assert.InDelta(t, px, qx, 1e-4)
	assert.InDelta(t, py, qy, 1e-4)
	// they attract, so the y gap shrinks
	assert.Less(t, a.Transform.Translation[1]-b.Transform.Translation[1], float32(0.75))
}

func TestGravityZeroSubstepsStillSteps(t *testing.T) {
	g := GravitySystem{Strength: 1}
	a := body(0, 0, 1)
	a.RigidBody.Velocity = linmath.Vec2{1, 0}
	g.Update([]*GameObject{a}, 0.5, 0)
	assert.InDelta(t, 0.5, a.Transform.Translation[0], 1e-6)
}

func TestVectorField(t *testing.T) {
	g := GravitySystem{Strength: 1}
	bodies := []*GameObject{body(1, 0, 1)}
	near, far, inside := body(0, 0, 1), body(101, 0, 1), body(1, 0, 1)

	VectorFieldSystem{}.Update(g, bodies, []*GameObject{near, far, inside})

	// |F| = 1 at distance 1
	assert.InDelta(t, 0.005+0.045*math.Log(2)/3, near.Transform.Scale[0], 1e-6)
	assert.InDelta(t, 0, near.Transform.Rotation, 1e-6)

	assert.InDelta(t, 0.005, far.Transform.Scale[0], 1e-4)
	assert.InDelta(t, math.Pi, far.Transform.Rotation, 1e-6)

	// no force on top of a body
	assert.InDelta(t, 0.005, inside.Transform.Scale[0], 1e-9)

	strong := body(0, 0, 1)
	VectorFieldSystem{}.Update(GravitySystem{Strength: 1e6}, bodies, []*GameObject{strong})
	assert.InDelta(t, 0.05, strong.Transform.Scale[0], 1e-6)
}

func TestIDAllocator(t *testing.T) {
	var a IDAllocator
	var wg sync.WaitGroup
	ids := make(chan ID, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- a.Next()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[ID]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, ID(100), a.Next())

	a.Reset()
	assert.Equal(t, ID(0), a.Next())
}

func TestWorld(t *testing.T) {
	w := NewWorld()
	a := w.Spawn(TagBody, nil, linmath.Vec3{1, 0, 0})
	b := w.Spawn(TagArrow, nil, linmath.Vec3{1, 1, 1})
	c := w.Spawn(TagBody, nil, linmath.Vec3{0, 0, 1})

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, float32(1), a.RigidBody.Mass)
	assert.Equal(t, linmath.Vec2{1, 1}, a.Transform.Scale)
	assert.Equal(t, []*GameObject{a, c}, w.Tagged(TagBody))

	require.True(t, w.Remove(a.ID))
	assert.False(t, w.Remove(a.ID))
	assert.Equal(t, []*GameObject{b, c}, w.Objects())

	w.Reset()
	assert.Equal(t, 0, w.Len())
	// a reloaded scene is numbered like the first one
	assert.Equal(t, a.ID, w.Spawn(TagBody, nil, linmath.Vec3{}).ID)
	assert.Equal(t, b.ID, w.Spawn(TagArrow, nil, linmath.Vec3{}).ID)
}

func TestSeedGravityDemo(t *testing.T) {
	w := NewWorld()
	SeedGravityDemo(w, nil, nil, 4)
	assert.Len(t, w.Tagged(TagBody), 2)
	arrows := w.Tagged(TagArrow)
	require.Len(t, arrows, 16)
	assert.InDelta(t, -0.75, arrows[0].Transform.Translation[0], 1e-6)
	assert.InDelta(t, 0.75, arrows[15].Transform.Translation[1], 1e-6)
}
