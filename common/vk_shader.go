package common

import (
	"log"
	"os"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"vcr_renderer/renderer"
)

// LoadVert reads a '.spv' file with the expectation of it containing a vertex shader for later use in a
// render pipeline. For this, a shader module (containing the shader code) and its vk.PipelineShaderStageCreateInfo
// is returned. Which is required to bind the shader to the pipeline.
func LoadVert(d vk.Device, path string) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	return loadShaderStage(d, path, vk.ShaderStageVertexBit)
}

// LoadFrag is the fragment shader counterpart of LoadVert.
func LoadFrag(d vk.Device, path string) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	return loadShaderStage(d, path, vk.ShaderStageFragmentBit)
}

// DeleteShaderMod discards a shader module. As vk.ShaderModule is only meant as a container to move the shader code
// onto device memory, it can be destroyed right after the pipeline using it has been created.
func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

func loadShaderStage(d vk.Device, path string, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	mod, err := readShaderCode(d, path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	log.Printf("Created shader module for stage %d from %s", stage, path)

	stageInfo := vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: mod,
		PName:  "main\x00", // entrypoint -> function name in the shader
	}
	return mod, stageInfo, nil
}

func readShaderCode(d vk.Device, shaderFile string) (vk.ShaderModule, error) {
	shaderCodeB, err := os.ReadFile(shaderFile)
	if err != nil {
		return nil, renderer.Mark(err, renderer.ErrResourceCreation, "read shader file %s", shaderFile)
	}
	if len(shaderCodeB) == 0 || len(shaderCodeB)%4 != 0 {
		return nil, renderer.Newf(renderer.ErrResourceCreation,
			"shader file %s has %d bytes, SPIR-V needs a non-empty multiple of 4", shaderFile, len(shaderCodeB))
	}
	log.Printf("Read shader file (%s) of size: %dByte", shaderFile, len(shaderCodeB))

	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(shaderCodeB)),
		PCode:    AsUint32Arr(shaderCodeB),
	}
	module, err := VkCreateShaderModule(d, createInfo, nil)
	if err != nil {
		return nil, renderer.Mark(errors.Wrap(err, shaderFile), renderer.ErrResourceCreation, "create shader module")
	}
	return module, nil
}
