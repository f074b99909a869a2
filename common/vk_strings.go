package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/xlab/tablewriter"
)

// DescribePhysicalDevice renders the properties that matter for device selection as a table for the startup log.
func DescribePhysicalDevice(
	pdProps vk.PhysicalDeviceProperties,
	pdFeatures vk.PhysicalDeviceFeatures,
	qFamilies []vk.QueueFamilyProperties,
) string {
	vendor := vk.VendorId(pdProps.VendorID)

	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle(vk.ToString(pdProps.DeviceName[:]))
	table.AddRow("API", vk.Version(pdProps.ApiVersion).String())
	table.AddRow("Driver", asDriverVersion(vendor, pdProps.DriverVersion))
	table.AddRow("Vendor", fmt.Sprintf("%#x (%s)", pdProps.VendorID, asVendorName(vendor)))
	table.AddRow("Device type", DeviceTypeName(pdProps.DeviceType))
	table.AddRow("Pipeline cache UUID", hex.EncodeToString(pdProps.PipelineCacheUUID[:]))
	table.AddRow("Geometry shader", pdFeatures.GeometryShader == vk.True)
	table.AddRow("Max push constants", fmt.Sprintf("%d B", pdProps.Limits.MaxPushConstantsSize))
	table.AddSeparator()
	for i, q := range qFamilies {
		table.AddRow(fmt.Sprintf("Qfamily[%d]", i), fmt.Sprintf("count: %d, %s", q.QueueCount,
			strings.Join(queueFlagNames(q.QueueFlags), " | ")))
	}
	return table.Render()
}

func DescribeSwapChain(sc *SwapChain) string {
	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("SWAPCHAIN")
	table.AddRow("Images", len(sc.Images))
	table.AddRow("Extent", fmt.Sprintf("%dx%d", sc.Extend.Width, sc.Extend.Height))
	table.AddRow("Format", FormatName(sc.Format.Format))
	table.AddRow("Color space", colorSpaceName(sc.Format.ColorSpace))
	table.AddRow("Present mode", PresentModeName(sc.PresentMode))
	table.AddRow("Depth format", FormatName(sc.DepthFormat))
	return table.Render()
}

var presentModeNames = map[vk.PresentMode]string{
	vk.PresentModeImmediate:   "immediate",
	vk.PresentModeMailbox:     "mailbox",
	vk.PresentModeFifo:        "fifo",
	vk.PresentModeFifoRelaxed: "fifo_relaxed",
}

func PresentModeName(mode vk.PresentMode) string {
	if name, ok := presentModeNames[mode]; ok {
		return name
	}
	return fmt.Sprintf("PresentMode(%d)", mode)
}

// ParsePresentMode is the inverse of PresentModeName for the four core modes.
func ParsePresentMode(name string) (vk.PresentMode, error) {
	for mode, n := range presentModeNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return mode, nil
		}
	}
	return vk.PresentModeFifo, errors.Newf("unknown present mode %q", name)
}

func FormatName(f vk.Format) string {
	switch f {
	case vk.FormatB8g8r8a8Srgb:
		return "B8G8R8A8_SRGB"
	case vk.FormatB8g8r8a8Unorm:
		return "B8G8R8A8_UNORM"
	case vk.FormatR8g8b8a8Srgb:
		return "R8G8B8A8_SRGB"
	case vk.FormatR8g8b8a8Unorm:
		return "R8G8B8A8_UNORM"
	case vk.FormatD32Sfloat:
		return "D32_SFLOAT"
	case vk.FormatD32SfloatS8Uint:
		return "D32_SFLOAT_S8_UINT"
	case vk.FormatD24UnormS8Uint:
		return "D24_UNORM_S8_UINT"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

func colorSpaceName(cs vk.ColorSpace) string {
	if cs == vk.ColorSpaceSrgbNonlinear {
		return "SRGB_NONLINEAR"
	}
	return fmt.Sprintf("ColorSpace(%d)", cs)
}

func DeviceTypeName(dt vk.PhysicalDeviceType) string {
	switch dt {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated Gpu"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete Gpu"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual Gpu"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	case vk.PhysicalDeviceTypeOther:
		return "other"
	default:
		return "unknown"
	}
}

func asVendorName(v vk.VendorId) string {
	// There seem to only be a handful of vendors and Ids as stated in:
	// https://www.reddit.com/r/vulkan/comments/4ta9nj/is_there_a_comprehensive_list_of_the_names_and/
	switch v {
	case 0x1002:
		return "AMD"
	case 0x1010:
		return "ImgTec"
	case 0x10DE:
		return "NVIDIA"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x8086:
		return "INTEL"
	case 0x10005:
		return "Mesa"
	default:
		return "unknown"
	}
}

func asDriverVersion(vendor vk.VendorId, raw uint32) string {
	// NVIDIA packs its driver version differently
	if vendor == 0x10DE {
		return fmt.Sprintf("%d.%d.%d.%d", (raw>>22)&0x3ff, (raw>>14)&0x0ff, (raw>>6)&0x0ff, raw&0x003f)
	}
	return vk.Version(raw).String()
}

func queueFlagNames(bits vk.QueueFlags) []string {
	var names []string
	flags := vk.QueueFlagBits(bits)
	if flags&vk.QueueGraphicsBit > 0 {
		names = append(names, "GRAPHICS")
	}
	if flags&vk.QueueComputeBit > 0 {
		names = append(names, "COMPUTE")
	}
	if flags&vk.QueueTransferBit > 0 {
		names = append(names, "TRANSFER")
	}
	if flags&vk.QueueSparseBindingBit > 0 {
		names = append(names, "SPARSE_BINDING")
	}
	if flags&vk.QueueProtectedBit > 0 {
		names = append(names, "PROTECTED")
	}
	return names
}
