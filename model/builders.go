package model

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/xlab/linmath"
)

// Builder collects the geometry of a model on the host before it is uploaded by NewModel. Indices are optional,
// without them every three vertices form one triangle.
type Builder struct {
	Vertices []Vertex
	Indices  []uint32
}

var white = linmath.Vec3{1, 1, 1}

// Square is a unit square made of two triangles, centered on offset.
func Square(offset linmath.Vec2) Builder {
	corners := []linmath.Vec2{
		{-0.5, -0.5},
		{0.5, 0.5},
		{-0.5, 0.5},
		{-0.5, -0.5},
		{0.5, -0.5},
		{0.5, 0.5},
	}
	b := Builder{Vertices: make([]Vertex, len(corners))}
	for i, c := range corners {
		b.Vertices[i] = Vertex{Position: flat(linmath.Vec2{c[0] + offset[0], c[1] + offset[1]}), Color: white}
	}
	return b
}

// Line is a unit square shifted to start at the origin and reach along +x, so scaling x sets its length and a
// rotation turns it around its start point. It is used for vector field arrows.
func Line() Builder {
	return Square(linmath.Vec2{0.5, 0})
}

// Circle approximates a unit circle by a triangle fan of numSides triangles around the origin.
func Circle(numSides int) (Builder, error) {
	if numSides < 3 {
		return Builder{}, errors.Newf("circle needs at least 3 sides, got %d", numSides)
	}
	rim := make([]Vertex, numSides)
	for i := range rim {
		angle := float64(i) * 2 * math.Pi / float64(numSides)
		rim[i] = Vertex{Position: linmath.Vec3{float32(math.Cos(angle)), float32(math.Sin(angle)), 0}, Color: white}
	}
	center := Vertex{Color: white}

	b := Builder{Vertices: make([]Vertex, 0, 3*numSides)}
	for i := 0; i < numSides; i++ {
		b.Vertices = append(b.Vertices, rim[i], rim[(i+1)%numSides], center)
	}
	return b, nil
}

// Sierpinski subdivides the triangle (top, left, right) depth times and keeps the three corner triangles of every
// step, giving 3^(depth+1) vertices.
func Sierpinski(depth int, top, left, right linmath.Vec2) Builder {
	b := Builder{}
	sierpinski(&b.Vertices, depth, top, left, right)
	return b
}

func sierpinski(vertices *[]Vertex, depth int, top, left, right linmath.Vec2) {
	if depth <= 0 {
		*vertices = append(*vertices,
			Vertex{Position: flat(top), Color: white},
			Vertex{Position: flat(left), Color: white},
			Vertex{Position: flat(right), Color: white},
		)
		return
	}
	midLeft := mid(top, left)
	midRight := mid(top, right)
	midBottom := mid(left, right)
	sierpinski(vertices, depth-1, top, midLeft, midRight)
	sierpinski(vertices, depth-1, midLeft, left, midBottom)
	sierpinski(vertices, depth-1, midRight, midBottom, right)
}

func mid(a, b linmath.Vec2) linmath.Vec2 {
	return linmath.Vec2{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

func flat(p linmath.Vec2) linmath.Vec3 {
	return linmath.Vec3{p[0], p[1], 0}
}

// Triangle is the colored hello-world triangle.
func Triangle() Builder {
	return Builder{Vertices: []Vertex{
		{Position: linmath.Vec3{0, -0.5, 0}, Color: linmath.Vec3{1, 0, 0}},
		{Position: linmath.Vec3{0.5, 0.5, 0}, Color: linmath.Vec3{0, 1, 0}},
		{Position: linmath.Vec3{-0.5, 0.5, 0}, Color: linmath.Vec3{0, 0, 1}},
	}}
}

// cubeFaces lists the corners of every face in the order of two triangles, followed by the face color.
var cubeFaces = []struct {
	corners [4]linmath.Vec3
	color   linmath.Vec3
}{
	// left
	{[4]linmath.Vec3{{-.5, -.5, -.5}, {-.5, .5, .5}, {-.5, -.5, .5}, {-.5, .5, -.5}}, linmath.Vec3{.9, .9, .9}},
	// right
	{[4]linmath.Vec3{{.5, -.5, -.5}, {.5, .5, .5}, {.5, -.5, .5}, {.5, .5, -.5}}, linmath.Vec3{.8, .8, .1}},
	// top, y points down
	{[4]linmath.Vec3{{-.5, -.5, -.5}, {.5, -.5, .5}, {-.5, -.5, .5}, {.5, -.5, -.5}}, linmath.Vec3{.9, .6, .1}},
	// bottom
	{[4]linmath.Vec3{{-.5, .5, -.5}, {.5, .5, .5}, {-.5, .5, .5}, {.5, .5, -.5}}, linmath.Vec3{.8, .1, .1}},
	// nose, toward the viewer at -z
	{[4]linmath.Vec3{{-.5, -.5, -.5}, {.5, .5, -.5}, {-.5, .5, -.5}, {.5, -.5, -.5}}, linmath.Vec3{.1, .1, .8}},
	// tail
	{[4]linmath.Vec3{{-.5, -.5, .5}, {.5, .5, .5}, {-.5, .5, .5}, {.5, -.5, .5}}, linmath.Vec3{.1, .8, .1}},
}

// Cube is a unit cube centered on the origin with one color per face. Every face is two indexed triangles over
// its four corners.
func Cube() Builder {
	b := Builder{
		Vertices: make([]Vertex, 0, 4*len(cubeFaces)),
		Indices:  make([]uint32, 0, 6*len(cubeFaces)),
	}
	for _, face := range cubeFaces {
		base := uint32(len(b.Vertices))
		for _, c := range face.corners {
			b.Vertices = append(b.Vertices, Vertex{Position: c, Color: face.color})
		}
		b.Indices = append(b.Indices, base, base+1, base+2, base, base+3, base+1)
	}
	return b
}

// Validate checks that the builder describes at least one triangle and that all indices are in range.
func (b Builder) Validate() error {
	if len(b.Vertices) < 3 {
		return errors.Newf("model needs at least 3 vertices, got %d", len(b.Vertices))
	}
	if len(b.Indices) == 0 {
		return nil
	}
	if len(b.Indices)%3 != 0 {
		return errors.Newf("index count %d is not a multiple of 3", len(b.Indices))
	}
	for i, idx := range b.Indices {
		if int(idx) >= len(b.Vertices) {
			return errors.Newf("index %d at %d out of range for %d vertices", idx, i, len(b.Vertices))
		}
	}
	return nil
}
