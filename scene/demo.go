package scene

import (
	"github.com/xlab/linmath"

	"vcr_renderer/model"
)

// SeedGravityDemo places two orbiting bodies drawn with body and a grid x grid field of arrows drawn with arrow.
func SeedGravityDemo(w *World, body, arrow *model.Model, grid int) {
	red := w.Spawn(TagBody, body, linmath.Vec3{1, 0, 0})
	red.Transform.Scale = linmath.Vec2{0.05, 0.05}
	red.Transform.Translation = linmath.Vec2{0.5, 0.5}
	red.RigidBody.Velocity = linmath.Vec2{-0.5, 0}

	blue := w.Spawn(TagBody, body, linmath.Vec3{0, 0, 1})
	blue.Transform.Scale = linmath.Vec2{0.05, 0.05}
	blue.Transform.Translation = linmath.Vec2{-0.45, -0.25}
	blue.RigidBody.Velocity = linmath.Vec2{0.5, 0}

	for i := 0; i < grid; i++ {
		for j := 0; j < grid; j++ {
			a := w.Spawn(TagArrow, arrow, linmath.Vec3{1, 1, 1})
			a.Transform.Scale = linmath.Vec2{0.005, 0.005}
			a.Transform.Translation = linmath.Vec2{
				-1 + (float32(i)+0.5)*2/float32(grid),
				-1 + (float32(j)+0.5)*2/float32(grid),
			}
		}
	}
}
