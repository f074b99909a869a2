package scene

import (
	"log"
	"sync"

	"github.com/xlab/linmath"

	"vcr_renderer/model"
)

type ID uint32

// IDAllocator hands out object IDs, unique and increasing until the next Reset. It is safe for concurrent use.
type IDAllocator struct {
	mu   sync.Mutex
	next ID
}

func (a *IDAllocator) Next() ID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}

// Reset starts numbering from zero again. IDs handed out before are no longer unique against new ones.
func (a *IDAllocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next = 0
}

// World owns the game objects of a scene in spawn order, which is also the draw order.
type World struct {
	ids     IDAllocator
	objects []*GameObject
}

func NewWorld() *World {
	return &World{}
}

// Spawn adds a new object with an identity transform and unit mass.
func (w *World) Spawn(tag string, m *model.Model, color linmath.Vec3) *GameObject {
	obj := &GameObject{
		ID:        w.ids.Next(),
		Tag:       tag,
		Model:     m,
		Color:     color,
		Transform: NewTransform2D(),
		RigidBody: RigidBody2D{Mass: 1},
	}
	w.objects = append(w.objects, obj)
	return obj
}

// Remove drops the object with the given ID and reports whether it existed.
func (w *World) Remove(id ID) bool {
	for i, obj := range w.objects {
		if obj.ID == id {
			w.objects = append(w.objects[:i], w.objects[i+1:]...)
			return true
		}
	}
	return false
}

func (w *World) Objects() []*GameObject {
	return w.objects
}

func (w *World) Tagged(tag string) []*GameObject {
	var out []*GameObject
	for _, obj := range w.objects {
		if obj.Tag == tag {
			out = append(out, obj)
		}
	}
	return out
}

func (w *World) Len() int {
	return len(w.objects)
}

// Reset removes all objects and restarts ID numbering, so a reloaded scene gets the same IDs as the first load.
// Models are not destroyed, they are owned by whoever created them.
func (w *World) Reset() {
	if len(w.objects) > 0 {
		log.Printf("Clearing %d objects from world", len(w.objects))
	}
	w.objects = nil
	w.ids.Reset()
}
