package window

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	"vcr_renderer/common"
	"vcr_renderer/renderer"
)

const APPLICATION_NAME = "VCR renderer"
const APP_MAJOR, APP_MINOR, APP_PATCH = 1, 0, 0
const ENGINE_NAME = "No Engine"
const ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH = 1, 0, 0

// Vulkan spec go bindings = v1.0.7, as per: https://github.com/goki/vulkan = 1.3.239
const VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH int = 1, 3, 239

func initVulkan() error {
	// Find and load Vulkan addresses to be able to call driver level functions via provided mechanism
	vk.SetGetInstanceProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err := vk.Init(); err != nil {
		return renderer.Mark(err, renderer.ErrResourceCreation, "initialize Vulkan API")
	}
	return nil
}

func createVulkanInstance(win *sdl.Window, validationLayers []string) (vk.Instance, error) {
	requiredExtensions := win.VulkanGetInstanceExtensions()
	if err := checkInstanceExtensionSupport(requiredExtensions); err != nil {
		return nil, err
	}
	enableValidation := len(validationLayers) > 0
	if enableValidation {
		log.Printf("Validation enabled, checking layer support")
		if err := checkValidationLayerSupport(validationLayers); err != nil {
			return nil, err
		}
	}
	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   common.TerminatedStr(APPLICATION_NAME),
		ApplicationVersion: vk.MakeVersion(APP_MAJOR, APP_MINOR, APP_PATCH),
		PEngineName:        common.TerminatedStr(ENGINE_NAME),
		EngineVersion:      vk.MakeVersion(ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH),
		ApiVersion:         vk.MakeVersion(VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        applicationInfo,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: common.TerminatedStrs(requiredExtensions),
	}
	if enableValidation {
		createInfo.EnabledLayerCount = uint32(len(validationLayers))
		createInfo.PpEnabledLayerNames = common.TerminatedStrs(validationLayers)
	}
	ins, err := common.VkCreateInstance(createInfo, nil)
	if err != nil {
		return nil, renderer.Mark(err, renderer.ErrResourceCreation, "create vk instance")
	}
	return ins, nil
}

func checkInstanceExtensionSupport(requiredInstanceExt []string) error {
	supportedExtNames, err := common.ReadInstanceExtensionPropertyNames()
	if err != nil {
		return renderer.Mark(err, renderer.ErrResourceCreation, "check instance extensions")
	}
	log.Printf("Required instance extensions: %v", requiredInstanceExt)
	log.Printf("Available extensions (%d): %v", len(supportedExtNames), supportedExtNames)

	if missing := common.MissingFromB(requiredInstanceExt, supportedExtNames); len(missing) > 0 {
		return renderer.Newf(renderer.ErrResourceCreation, "instance extensions not supported: %v", missing)
	}
	log.Println("Success - All required instance extensions are supported")
	return nil
}

func checkValidationLayerSupport(requiredLayers []string) error {
	supportedLayerNames, err := common.ReadInstanceLayerPropertyNames()
	if err != nil {
		return errors.Wrap(err, "check validation layers")
	}
	log.Printf("Desired validation layers: %v", requiredLayers)
	log.Printf("Supported layers (%d): %v", len(supportedLayerNames), supportedLayerNames)

	if missing := common.MissingFromB(requiredLayers, supportedLayerNames); len(missing) > 0 {
		return renderer.Newf(renderer.ErrResourceCreation, "validation layers not supported: %v", missing)
	}
	log.Println("Success - All desired validation layers are supported")
	return nil
}
