package model

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlab/linmath"
)

func encodeSTL(triangles [][3][3]float32) []byte {
	b := make([]byte, stlHeaderSize+4, stlHeaderSize+4+len(triangles)*stlTriangleSize)
	binary.LittleEndian.PutUint32(b[stlHeaderSize:], uint32(len(triangles)))
	for _, tri := range triangles {
		rec := make([]byte, stlTriangleSize)
		for c, p := range tri {
			for k, v := range p {
				binary.LittleEndian.PutUint32(rec[12+c*12+k*4:], math.Float32bits(v))
			}
		}
		b = append(b, rec...)
	}
	return b
}

func TestLoadSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.stl")
	data := encodeSTL([][3][3]float32{
		{{10, 20, 5}, {14, 20, 5}, {10, 22, 5}},
		{{14, 20, 0}, {14, 22, 0}, {10, 22, 0}},
	})
	require.NoError(t, os.WriteFile(path, data, 0o644))

	b, err := LoadSTL(path)
	require.NoError(t, err)
	require.Len(t, b.Vertices, 6)
	require.NoError(t, b.Validate())

	// 4x2 outline centered on (12, 21) and scaled by its half width
	assert.Equal(t, linmath.Vec3{-1, -0.5, 0}, b.Vertices[0].Position)
	assert.Equal(t, linmath.Vec3{1, -0.5, 0}, b.Vertices[1].Position)
	assert.Equal(t, linmath.Vec3{-1, 0.5, 0}, b.Vertices[2].Position)
	assert.Equal(t, linmath.Vec3{1, 0.5, 0}, b.Vertices[4].Position)
}

func TestParseSTLRejects(t *testing.T) {
	_, err := parseSTL(make([]byte, 10))
	assert.Error(t, err)

	truncated := encodeSTL([][3][3]float32{{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}})
	binary.LittleEndian.PutUint32(truncated[stlHeaderSize:], 2)
	_, err = parseSTL(truncated)
	assert.Error(t, err)

	_, err = parseSTL(encodeSTL(nil))
	assert.Error(t, err)

	// edge on, nothing left after flattening
	_, err = parseSTL(encodeSTL([][3][3]float32{{{1, 1, 0}, {1, 1, 1}, {1, 1, 2}}}))
	assert.Error(t, err)

	_, err = LoadSTL(filepath.Join(t.TempDir(), "missing.stl"))
	assert.Error(t, err)
}
