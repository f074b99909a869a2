// Package shaders holds the GLSL sources of the render systems. The compiled SPIR-V is loaded at runtime from the
// paths in the config, regenerate it with go generate and glslc on the PATH.
package shaders

//go:generate glslc simple_shader.vert -o simple_shader.vert.spv
//go:generate glslc simple_shader.frag -o simple_shader.frag.spv
