package model

import (
	"encoding/binary"
	"log"
	"math"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/xlab/linmath"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// LoadSTL reads a binary STL file and flattens it onto the XY plane. The outline is centered on the origin and
// scaled so its larger side spans [-1, 1], which makes it a drop in replacement for the unit shapes.
func LoadSTL(path string) (Builder, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Builder{}, errors.Wrapf(err, "read stl file %s", path)
	}
	builder, err := parseSTL(b)
	if err != nil {
		return Builder{}, errors.Wrapf(err, "parse stl file %s", path)
	}
	log.Printf("Read stl file %s with %d triangles", path, len(builder.Vertices)/3)
	return builder, nil
}

func parseSTL(b []byte) (Builder, error) {
	if len(b) < stlHeaderSize+4 {
		return Builder{}, errors.Newf("%d bytes are too short for a binary stl header", len(b))
	}
	triangleCnt := int(binary.LittleEndian.Uint32(b[stlHeaderSize : stlHeaderSize+4]))
	body := b[stlHeaderSize+4:]
	if triangleCnt == 0 || len(body) < triangleCnt*stlTriangleSize {
		return Builder{}, errors.Newf("stl announces %d triangles but holds %d bytes", triangleCnt, len(body))
	}

	vertices := make([]Vertex, 0, triangleCnt*3)
	minP := linmath.Vec2{math.MaxFloat32, math.MaxFloat32}
	maxP := linmath.Vec2{-math.MaxFloat32, -math.MaxFloat32}
	for i := 0; i < triangleCnt; i++ {
		tri := body[i*stlTriangleSize:]
		// the normal in tri[0:12] and the attribute bytes at the end carry nothing for a flat outline
		for c := 0; c < 3; c++ {
			off := 12 + c*12
			p := linmath.Vec2{toFloat32(tri[off : off+4]), toFloat32(tri[off+4 : off+8])}
			for k := 0; k < 2; k++ {
				minP[k] = float32(math.Min(float64(minP[k]), float64(p[k])))
				maxP[k] = float32(math.Max(float64(maxP[k]), float64(p[k])))
			}
			vertices = append(vertices, Vertex{Position: flat(p), Color: white})
		}
	}

	center := linmath.Vec2{(minP[0] + maxP[0]) / 2, (minP[1] + maxP[1]) / 2}
	extent := math.Max(float64(maxP[0]-minP[0]), float64(maxP[1]-minP[1])) / 2
	if extent == 0 {
		return Builder{}, errors.New("stl outline has no area on the XY plane")
	}
	for i := range vertices {
		p := &vertices[i].Position
		p[0] = float32(float64(p[0]-center[0]) / extent)
		p[1] = float32(float64(p[1]-center[1]) / extent)
	}
	return Builder{Vertices: vertices}, nil
}

func toFloat32(bytes []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(bytes))
}
