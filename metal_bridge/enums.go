package metal_bridge

import (
	"fmt"
	"strings"
)

func enumName[T ~uint | ~int](names map[T]string, kind string, v T) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

func optionNames[T ~uint](names []struct {
	bit  T
	name string
}, kind string, v T) string {
	if v == 0 {
		return "None"
	}
	var parts []string
	rest := v
	for _, n := range names {
		if v&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%s(%#x)", kind, uint(rest)))
	}
	return strings.Join(parts, "|")
}

// PixelFormat is MTLPixelFormat. Only the uncompressed formats are named.
type PixelFormat uint

const (
	PixelFormatInvalid               PixelFormat = 0
	PixelFormatA8Unorm               PixelFormat = 1
	PixelFormatR8Unorm               PixelFormat = 10
	PixelFormatR8UnormSRGB           PixelFormat = 11
	PixelFormatR8Snorm               PixelFormat = 12
	PixelFormatR8Uint                PixelFormat = 13
	PixelFormatR8Sint                PixelFormat = 14
	PixelFormatR16Unorm              PixelFormat = 20
	PixelFormatR16Snorm              PixelFormat = 22
	PixelFormatR16Uint               PixelFormat = 23
	PixelFormatR16Sint               PixelFormat = 24
	PixelFormatR16Float              PixelFormat = 25
	PixelFormatRG8Unorm              PixelFormat = 30
	PixelFormatRG8UnormSRGB          PixelFormat = 31
	PixelFormatRG8Snorm              PixelFormat = 32
	PixelFormatRG8Uint               PixelFormat = 33
	PixelFormatRG8Sint               PixelFormat = 34
	PixelFormatR32Uint               PixelFormat = 53
	PixelFormatR32Sint               PixelFormat = 54
	PixelFormatR32Float              PixelFormat = 55
	PixelFormatRG16Unorm             PixelFormat = 60
	PixelFormatRG16Snorm             PixelFormat = 62
	PixelFormatRG16Uint              PixelFormat = 63
	PixelFormatRG16Sint              PixelFormat = 64
	PixelFormatRG16Float             PixelFormat = 65
	PixelFormatRGBA8Unorm            PixelFormat = 70
	PixelFormatRGBA8UnormSRGB        PixelFormat = 71
	PixelFormatRGBA8Snorm            PixelFormat = 72
	PixelFormatRGBA8Uint             PixelFormat = 73
	PixelFormatRGBA8Sint             PixelFormat = 74
	PixelFormatBGRA8Unorm            PixelFormat = 80
	PixelFormatBGRA8UnormSRGB        PixelFormat = 81
	PixelFormatRGB10A2Unorm          PixelFormat = 90
	PixelFormatRGB10A2Uint           PixelFormat = 91
	PixelFormatRG11B10Float          PixelFormat = 92
	PixelFormatRGB9E5Float           PixelFormat = 93
	PixelFormatBGR10A2Unorm          PixelFormat = 94
	PixelFormatRG32Uint              PixelFormat = 103
	PixelFormatRG32Sint              PixelFormat = 104
	PixelFormatRG32Float             PixelFormat = 105
	PixelFormatRGBA16Unorm           PixelFormat = 110
	PixelFormatRGBA16Snorm           PixelFormat = 112
	PixelFormatRGBA16Uint            PixelFormat = 113
	PixelFormatRGBA16Sint            PixelFormat = 114
	PixelFormatRGBA16Float           PixelFormat = 115
	PixelFormatRGBA32Uint            PixelFormat = 123
	PixelFormatRGBA32Sint            PixelFormat = 124
	PixelFormatRGBA32Float           PixelFormat = 125
	PixelFormatDepth16Unorm          PixelFormat = 250
	PixelFormatDepth32Float          PixelFormat = 252
	PixelFormatStencil8              PixelFormat = 253
	PixelFormatDepth24UnormStencil8  PixelFormat = 255
	PixelFormatDepth32FloatStencil8  PixelFormat = 260
	PixelFormatX32Stencil8           PixelFormat = 261
	PixelFormatX24Stencil8           PixelFormat = 262
	PixelFormatBGRA10XR              PixelFormat = 552
	PixelFormatBGRA10XRSRGB          PixelFormat = 553
	PixelFormatBGR10XR               PixelFormat = 554
	PixelFormatBGR10XRSRGB           PixelFormat = 555
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatInvalid:              "Invalid",
	PixelFormatA8Unorm:              "A8Unorm",
	PixelFormatR8Unorm:              "R8Unorm",
	PixelFormatR8UnormSRGB:          "R8Unorm_sRGB",
	PixelFormatR8Snorm:              "R8Snorm",
	PixelFormatR8Uint:               "R8Uint",
	PixelFormatR8Sint:               "R8Sint",
	PixelFormatR16Unorm:             "R16Unorm",
	PixelFormatR16Snorm:             "R16Snorm",
	PixelFormatR16Uint:              "R16Uint",
	PixelFormatR16Sint:              "R16Sint",
	PixelFormatR16Float:             "R16Float",
	PixelFormatRG8Unorm:             "RG8Unorm",
	PixelFormatRG8UnormSRGB:         "RG8Unorm_sRGB",
	PixelFormatRG8Snorm:             "RG8Snorm",
	PixelFormatRG8Uint:              "RG8Uint",
	PixelFormatRG8Sint:              "RG8Sint",
	PixelFormatR32Uint:              "R32Uint",
	PixelFormatR32Sint:              "R32Sint",
	PixelFormatR32Float:             "R32Float",
	PixelFormatRG16Unorm:            "RG16Unorm",
	PixelFormatRG16Snorm:            "RG16Snorm",
	PixelFormatRG16Uint:             "RG16Uint",
	PixelFormatRG16Sint:             "RG16Sint",
	PixelFormatRG16Float:            "RG16Float",
	PixelFormatRGBA8Unorm:           "RGBA8Unorm",
	PixelFormatRGBA8UnormSRGB:       "RGBA8Unorm_sRGB",
	PixelFormatRGBA8Snorm:           "RGBA8Snorm",
	PixelFormatRGBA8Uint:            "RGBA8Uint",
	PixelFormatRGBA8Sint:            "RGBA8Sint",
	PixelFormatBGRA8Unorm:           "BGRA8Unorm",
	PixelFormatBGRA8UnormSRGB:       "BGRA8Unorm_sRGB",
	PixelFormatRGB10A2Unorm:         "RGB10A2Unorm",
	PixelFormatRGB10A2Uint:          "RGB10A2Uint",
	PixelFormatRG11B10Float:         "RG11B10Float",
	PixelFormatRGB9E5Float:          "RGB9E5Float",
	PixelFormatBGR10A2Unorm:         "BGR10A2Unorm",
	PixelFormatRG32Uint:             "RG32Uint",
	PixelFormatRG32Sint:             "RG32Sint",
	PixelFormatRG32Float:            "RG32Float",
	PixelFormatRGBA16Unorm:          "RGBA16Unorm",
	PixelFormatRGBA16Snorm:          "RGBA16Snorm",
	PixelFormatRGBA16Uint:           "RGBA16Uint",
	PixelFormatRGBA16Sint:           "RGBA16Sint",
	PixelFormatRGBA16Float:          "RGBA16Float",
	PixelFormatRGBA32Uint:           "RGBA32Uint",
	PixelFormatRGBA32Sint:           "RGBA32Sint",
	PixelFormatRGBA32Float:          "RGBA32Float",
	PixelFormatDepth16Unorm:         "Depth16Unorm",
	PixelFormatDepth32Float:         "Depth32Float",
	PixelFormatStencil8:             "Stencil8",
	PixelFormatDepth24UnormStencil8: "Depth24Unorm_Stencil8",
	PixelFormatDepth32FloatStencil8: "Depth32Float_Stencil8",
	PixelFormatX32Stencil8:          "X32_Stencil8",
	PixelFormatX24Stencil8:          "X24_Stencil8",
	PixelFormatBGRA10XR:             "BGRA10_XR",
	PixelFormatBGRA10XRSRGB:         "BGRA10_XR_sRGB",
	PixelFormatBGR10XR:              "BGR10_XR",
	PixelFormatBGR10XRSRGB:          "BGR10_XR_sRGB",
}

func (f PixelFormat) String() string { return enumName(pixelFormatNames, "PixelFormat", f) }

// pixelFormatBytes lists bytes per pixel for the formats ReplaceRegion and
// GetBytes can compute a row pitch for.
var pixelFormatBytes = map[PixelFormat]uint{
	PixelFormatA8Unorm: 1, PixelFormatR8Unorm: 1, PixelFormatR8UnormSRGB: 1, PixelFormatR8Snorm: 1,
	PixelFormatR8Uint: 1, PixelFormatR8Sint: 1, PixelFormatStencil8: 1,
	PixelFormatR16Unorm: 2, PixelFormatR16Snorm: 2, PixelFormatR16Uint: 2, PixelFormatR16Sint: 2,
	PixelFormatR16Float: 2, PixelFormatRG8Unorm: 2, PixelFormatRG8UnormSRGB: 2, PixelFormatRG8Snorm: 2,
	PixelFormatRG8Uint: 2, PixelFormatRG8Sint: 2, PixelFormatDepth16Unorm: 2,
	PixelFormatR32Uint: 4, PixelFormatR32Sint: 4, PixelFormatR32Float: 4, PixelFormatRG16Unorm: 4,
	PixelFormatRG16Snorm: 4, PixelFormatRG16Uint: 4, PixelFormatRG16Sint: 4, PixelFormatRG16Float: 4,
	PixelFormatRGBA8Unorm: 4, PixelFormatRGBA8UnormSRGB: 4, PixelFormatRGBA8Snorm: 4,
	PixelFormatRGBA8Uint: 4, PixelFormatRGBA8Sint: 4, PixelFormatBGRA8Unorm: 4,
	PixelFormatBGRA8UnormSRGB: 4, PixelFormatRGB10A2Unorm: 4, PixelFormatRGB10A2Uint: 4,
	PixelFormatRG11B10Float: 4, PixelFormatRGB9E5Float: 4, PixelFormatBGR10A2Unorm: 4,
	PixelFormatDepth32Float: 4, PixelFormatBGR10XR: 4, PixelFormatBGR10XRSRGB: 4,
	PixelFormatRG32Uint: 8, PixelFormatRG32Sint: 8, PixelFormatRG32Float: 8,
	PixelFormatRGBA16Unorm: 8, PixelFormatRGBA16Snorm: 8, PixelFormatRGBA16Uint: 8,
	PixelFormatRGBA16Sint: 8, PixelFormatRGBA16Float: 8, PixelFormatBGRA10XR: 8,
	PixelFormatBGRA10XRSRGB: 8, PixelFormatDepth32FloatStencil8: 8,
	PixelFormatRGBA32Uint: 16, PixelFormatRGBA32Sint: 16, PixelFormatRGBA32Float: 16,
}

// BytesPerPixel returns the size of one pixel, or zero for formats without a
// fixed per-pixel size.
func (f PixelFormat) BytesPerPixel() uint {
	return pixelFormatBytes[f]
}

// IsDepthStencil reports whether f can back a depth or stencil attachment.
func (f PixelFormat) IsDepthStencil() bool {
	switch f {
	case PixelFormatDepth16Unorm, PixelFormatDepth32Float, PixelFormatStencil8,
		PixelFormatDepth24UnormStencil8, PixelFormatDepth32FloatStencil8,
		PixelFormatX32Stencil8, PixelFormatX24Stencil8:
		return true
	}
	return false
}

// StorageMode is MTLStorageMode.
type StorageMode uint

const (
	StorageModeShared     StorageMode = 0
	StorageModeManaged    StorageMode = 1
	StorageModePrivate    StorageMode = 2
	StorageModeMemoryless StorageMode = 3
)

var storageModeNames = map[StorageMode]string{
	StorageModeShared:     "Shared",
	StorageModeManaged:    "Managed",
	StorageModePrivate:    "Private",
	StorageModeMemoryless: "Memoryless",
}

func (m StorageMode) String() string { return enumName(storageModeNames, "StorageMode", m) }

// CPUCacheMode is MTLCPUCacheMode.
type CPUCacheMode uint

const (
	CPUCacheModeDefaultCache  CPUCacheMode = 0
	CPUCacheModeWriteCombined CPUCacheMode = 1
)

var cpuCacheModeNames = map[CPUCacheMode]string{
	CPUCacheModeDefaultCache:  "DefaultCache",
	CPUCacheModeWriteCombined: "WriteCombined",
}

func (m CPUCacheMode) String() string { return enumName(cpuCacheModeNames, "CPUCacheMode", m) }

// HazardTrackingMode is MTLHazardTrackingMode.
type HazardTrackingMode uint

const (
	HazardTrackingModeDefault   HazardTrackingMode = 0
	HazardTrackingModeUntracked HazardTrackingMode = 1
	HazardTrackingModeTracked   HazardTrackingMode = 2
)

var hazardTrackingModeNames = map[HazardTrackingMode]string{
	HazardTrackingModeDefault:   "Default",
	HazardTrackingModeUntracked: "Untracked",
	HazardTrackingModeTracked:   "Tracked",
}

func (m HazardTrackingMode) String() string {
	return enumName(hazardTrackingModeNames, "HazardTrackingMode", m)
}

// ResourceOptions is MTLResourceOptions: a CPU cache mode, storage mode and
// hazard tracking mode packed into one word.
type ResourceOptions uint

const (
	resourceCPUCacheModeShift       = 0
	resourceStorageModeShift        = 4
	resourceHazardTrackingModeShift = 8

	resourceCPUCacheModeMask       = 0xf << resourceCPUCacheModeShift
	resourceStorageModeMask        = 0xf << resourceStorageModeShift
	resourceHazardTrackingModeMask = 0x3 << resourceHazardTrackingModeShift
)

const (
	ResourceCPUCacheModeDefaultCache  = ResourceOptions(CPUCacheModeDefaultCache) << resourceCPUCacheModeShift
	ResourceCPUCacheModeWriteCombined = ResourceOptions(CPUCacheModeWriteCombined) << resourceCPUCacheModeShift

	ResourceStorageModeShared     = ResourceOptions(StorageModeShared) << resourceStorageModeShift
	ResourceStorageModeManaged    = ResourceOptions(StorageModeManaged) << resourceStorageModeShift
	ResourceStorageModePrivate    = ResourceOptions(StorageModePrivate) << resourceStorageModeShift
	ResourceStorageModeMemoryless = ResourceOptions(StorageModeMemoryless) << resourceStorageModeShift

	ResourceHazardTrackingModeDefault   = ResourceOptions(HazardTrackingModeDefault) << resourceHazardTrackingModeShift
	ResourceHazardTrackingModeUntracked = ResourceOptions(HazardTrackingModeUntracked) << resourceHazardTrackingModeShift
	ResourceHazardTrackingModeTracked   = ResourceOptions(HazardTrackingModeTracked) << resourceHazardTrackingModeShift
)

// MakeResourceOptions packs the three modes.
func MakeResourceOptions(storage StorageMode, cache CPUCacheMode, hazard HazardTrackingMode) ResourceOptions {
	return ResourceOptions(cache)<<resourceCPUCacheModeShift |
		ResourceOptions(storage)<<resourceStorageModeShift |
		ResourceOptions(hazard)<<resourceHazardTrackingModeShift
}

func (o ResourceOptions) StorageMode() StorageMode {
	return StorageMode((o & resourceStorageModeMask) >> resourceStorageModeShift)
}

func (o ResourceOptions) CPUCacheMode() CPUCacheMode {
	return CPUCacheMode((o & resourceCPUCacheModeMask) >> resourceCPUCacheModeShift)
}

func (o ResourceOptions) HazardTrackingMode() HazardTrackingMode {
	return HazardTrackingMode((o & resourceHazardTrackingModeMask) >> resourceHazardTrackingModeShift)
}

func (o ResourceOptions) String() string {
	return fmt.Sprintf("%s|%s|%s", o.StorageMode(), o.CPUCacheMode(), o.HazardTrackingMode())
}

// TextureType is MTLTextureType.
type TextureType uint

const (
	TextureType1D                 TextureType = 0
	TextureType1DArray            TextureType = 1
	TextureType2D                 TextureType = 2
	TextureType2DArray            TextureType = 3
	TextureType2DMultisample      TextureType = 4
	TextureTypeCube               TextureType = 5
	TextureTypeCubeArray          TextureType = 6
	TextureType3D                 TextureType = 7
	TextureType2DMultisampleArray TextureType = 8
	TextureTypeTextureBuffer      TextureType = 9
)

var textureTypeNames = map[TextureType]string{
	TextureType1D:                 "1D",
	TextureType1DArray:            "1DArray",
	TextureType2D:                 "2D",
	TextureType2DArray:            "2DArray",
	TextureType2DMultisample:      "2DMultisample",
	TextureTypeCube:               "Cube",
	TextureTypeCubeArray:          "CubeArray",
	TextureType3D:                 "3D",
	TextureType2DMultisampleArray: "2DMultisampleArray",
	TextureTypeTextureBuffer:      "TextureBuffer",
}

func (t TextureType) String() string { return enumName(textureTypeNames, "TextureType", t) }

// TextureUsage is MTLTextureUsage, a bit set.
type TextureUsage uint

const (
	TextureUsageUnknown         TextureUsage = 0
	TextureUsageShaderRead      TextureUsage = 1 << 0
	TextureUsageShaderWrite     TextureUsage = 1 << 1
	TextureUsageRenderTarget    TextureUsage = 1 << 2
	TextureUsagePixelFormatView TextureUsage = 1 << 4
	TextureUsageShaderAtomic    TextureUsage = 1 << 5
)

var textureUsageNames = []struct {
	bit  TextureUsage
	name string
}{
	{TextureUsageShaderRead, "ShaderRead"},
	{TextureUsageShaderWrite, "ShaderWrite"},
	{TextureUsageRenderTarget, "RenderTarget"},
	{TextureUsagePixelFormatView, "PixelFormatView"},
	{TextureUsageShaderAtomic, "ShaderAtomic"},
}

func (u TextureUsage) String() string { return optionNames(textureUsageNames, "TextureUsage", u) }

// SamplerMinMagFilter is MTLSamplerMinMagFilter.
type SamplerMinMagFilter uint

const (
	SamplerMinMagFilterNearest SamplerMinMagFilter = 0
	SamplerMinMagFilterLinear  SamplerMinMagFilter = 1
)

var samplerMinMagFilterNames = map[SamplerMinMagFilter]string{
	SamplerMinMagFilterNearest: "Nearest",
	SamplerMinMagFilterLinear:  "Linear",
}

func (f SamplerMinMagFilter) String() string {
	return enumName(samplerMinMagFilterNames, "SamplerMinMagFilter", f)
}

// SamplerMipFilter is MTLSamplerMipFilter.
type SamplerMipFilter uint

const (
	SamplerMipFilterNotMipmapped SamplerMipFilter = 0
	SamplerMipFilterNearest      SamplerMipFilter = 1
	SamplerMipFilterLinear       SamplerMipFilter = 2
)

var samplerMipFilterNames = map[SamplerMipFilter]string{
	SamplerMipFilterNotMipmapped: "NotMipmapped",
	SamplerMipFilterNearest:      "Nearest",
	SamplerMipFilterLinear:       "Linear",
}

func (f SamplerMipFilter) String() string {
	return enumName(samplerMipFilterNames, "SamplerMipFilter", f)
}

// SamplerAddressMode is MTLSamplerAddressMode.
type SamplerAddressMode uint

const (
	SamplerAddressModeClampToEdge        SamplerAddressMode = 0
	SamplerAddressModeMirrorClampToEdge  SamplerAddressMode = 1
	SamplerAddressModeRepeat             SamplerAddressMode = 2
	SamplerAddressModeMirrorRepeat       SamplerAddressMode = 3
	SamplerAddressModeClampToZero        SamplerAddressMode = 4
	SamplerAddressModeClampToBorderColor SamplerAddressMode = 5
)

var samplerAddressModeNames = map[SamplerAddressMode]string{
	SamplerAddressModeClampToEdge:        "ClampToEdge",
	SamplerAddressModeMirrorClampToEdge:  "MirrorClampToEdge",
	SamplerAddressModeRepeat:             "Repeat",
	SamplerAddressModeMirrorRepeat:       "MirrorRepeat",
	SamplerAddressModeClampToZero:        "ClampToZero",
	SamplerAddressModeClampToBorderColor: "ClampToBorderColor",
}

func (m SamplerAddressMode) String() string {
	return enumName(samplerAddressModeNames, "SamplerAddressMode", m)
}

// SamplerBorderColor is MTLSamplerBorderColor.
type SamplerBorderColor uint

const (
	SamplerBorderColorTransparentBlack SamplerBorderColor = 0
	SamplerBorderColorOpaqueBlack      SamplerBorderColor = 1
	SamplerBorderColorOpaqueWhite      SamplerBorderColor = 2
)

var samplerBorderColorNames = map[SamplerBorderColor]string{
	SamplerBorderColorTransparentBlack: "TransparentBlack",
	SamplerBorderColorOpaqueBlack:      "OpaqueBlack",
	SamplerBorderColorOpaqueWhite:      "OpaqueWhite",
}

func (c SamplerBorderColor) String() string {
	return enumName(samplerBorderColorNames, "SamplerBorderColor", c)
}

// CompareFunction is MTLCompareFunction.
type CompareFunction uint

const (
	CompareFunctionNever        CompareFunction = 0
	CompareFunctionLess         CompareFunction = 1
	CompareFunctionEqual        CompareFunction = 2
	CompareFunctionLessEqual    CompareFunction = 3
	CompareFunctionGreater      CompareFunction = 4
	CompareFunctionNotEqual     CompareFunction = 5
	CompareFunctionGreaterEqual CompareFunction = 6
	CompareFunctionAlways       CompareFunction = 7
)

var compareFunctionNames = map[CompareFunction]string{
	CompareFunctionNever:        "Never",
	CompareFunctionLess:         "Less",
	CompareFunctionEqual:        "Equal",
	CompareFunctionLessEqual:    "LessEqual",
	CompareFunctionGreater:      "Greater",
	CompareFunctionNotEqual:     "NotEqual",
	CompareFunctionGreaterEqual: "GreaterEqual",
	CompareFunctionAlways:       "Always",
}

func (f CompareFunction) String() string {
	return enumName(compareFunctionNames, "CompareFunction", f)
}

// StencilOperation is MTLStencilOperation.
type StencilOperation uint

const (
	StencilOperationKeep           StencilOperation = 0
	StencilOperationZero           StencilOperation = 1
	StencilOperationReplace        StencilOperation = 2
	StencilOperationIncrementClamp StencilOperation = 3
	StencilOperationDecrementClamp StencilOperation = 4
	StencilOperationInvert         StencilOperation = 5
	StencilOperationIncrementWrap  StencilOperation = 6
	StencilOperationDecrementWrap  StencilOperation = 7
)

var stencilOperationNames = map[StencilOperation]string{
	StencilOperationKeep:           "Keep",
	StencilOperationZero:           "Zero",
	StencilOperationReplace:        "Replace",
	StencilOperationIncrementClamp: "IncrementClamp",
	StencilOperationDecrementClamp: "DecrementClamp",
	StencilOperationInvert:         "Invert",
	StencilOperationIncrementWrap:  "IncrementWrap",
	StencilOperationDecrementWrap:  "DecrementWrap",
}

func (o StencilOperation) String() string {
	return enumName(stencilOperationNames, "StencilOperation", o)
}

// LoadAction is MTLLoadAction.
type LoadAction uint

const (
	LoadActionDontCare LoadAction = 0
	LoadActionLoad     LoadAction = 1
	LoadActionClear    LoadAction = 2
)

var loadActionNames = map[LoadAction]string{
	LoadActionDontCare: "DontCare",
	LoadActionLoad:     "Load",
	LoadActionClear:    "Clear",
}

func (a LoadAction) String() string { return enumName(loadActionNames, "LoadAction", a) }

// StoreAction is MTLStoreAction.
type StoreAction uint

const (
	StoreActionDontCare                   StoreAction = 0
	StoreActionStore                      StoreAction = 1
	StoreActionMultisampleResolve         StoreAction = 2
	StoreActionStoreAndMultisampleResolve StoreAction = 3
	StoreActionUnknown                    StoreAction = 4
	StoreActionCustomSampleDepthStore     StoreAction = 5
)

var storeActionNames = map[StoreAction]string{
	StoreActionDontCare:                   "DontCare",
	StoreActionStore:                      "Store",
	StoreActionMultisampleResolve:         "MultisampleResolve",
	StoreActionStoreAndMultisampleResolve: "StoreAndMultisampleResolve",
	StoreActionUnknown:                    "Unknown",
	StoreActionCustomSampleDepthStore:     "CustomSampleDepthStore",
}

func (a StoreAction) String() string { return enumName(storeActionNames, "StoreAction", a) }

// PrimitiveType is MTLPrimitiveType.
type PrimitiveType uint

const (
	PrimitiveTypePoint         PrimitiveType = 0
	PrimitiveTypeLine          PrimitiveType = 1
	PrimitiveTypeLineStrip     PrimitiveType = 2
	PrimitiveTypeTriangle      PrimitiveType = 3
	PrimitiveTypeTriangleStrip PrimitiveType = 4
)

var primitiveTypeNames = map[PrimitiveType]string{
	PrimitiveTypePoint:         "Point",
	PrimitiveTypeLine:          "Line",
	PrimitiveTypeLineStrip:     "LineStrip",
	PrimitiveTypeTriangle:      "Triangle",
	PrimitiveTypeTriangleStrip: "TriangleStrip",
}

func (p PrimitiveType) String() string { return enumName(primitiveTypeNames, "PrimitiveType", p) }

// IndexType is MTLIndexType.
type IndexType uint

const (
	IndexTypeUInt16 IndexType = 0
	IndexTypeUInt32 IndexType = 1
)

var indexTypeNames = map[IndexType]string{
	IndexTypeUInt16: "UInt16",
	IndexTypeUInt32: "UInt32",
}

func (t IndexType) String() string { return enumName(indexTypeNames, "IndexType", t) }

// Size returns the size of one index in bytes.
func (t IndexType) Size() uint {
	if t == IndexTypeUInt32 {
		return 4
	}
	return 2
}

// CullMode is MTLCullMode.
type CullMode uint

const (
	CullModeNone  CullMode = 0
	CullModeFront CullMode = 1
	CullModeBack  CullMode = 2
)

var cullModeNames = map[CullMode]string{
	CullModeNone:  "None",
	CullModeFront: "Front",
	CullModeBack:  "Back",
}

func (m CullMode) String() string { return enumName(cullModeNames, "CullMode", m) }

// Winding is MTLWinding.
type Winding uint

const (
	WindingClockwise        Winding = 0
	WindingCounterClockwise Winding = 1
)

var windingNames = map[Winding]string{
	WindingClockwise:        "Clockwise",
	WindingCounterClockwise: "CounterClockwise",
}

func (w Winding) String() string { return enumName(windingNames, "Winding", w) }

// CommandBufferStatus is MTLCommandBufferStatus.
type CommandBufferStatus uint

const (
	CommandBufferStatusNotEnqueued CommandBufferStatus = 0
	CommandBufferStatusEnqueued    CommandBufferStatus = 1
	CommandBufferStatusCommitted   CommandBufferStatus = 2
	CommandBufferStatusScheduled   CommandBufferStatus = 3
	CommandBufferStatusCompleted   CommandBufferStatus = 4
	CommandBufferStatusError       CommandBufferStatus = 5
)

var commandBufferStatusNames = map[CommandBufferStatus]string{
	CommandBufferStatusNotEnqueued: "NotEnqueued",
	CommandBufferStatusEnqueued:    "Enqueued",
	CommandBufferStatusCommitted:   "Committed",
	CommandBufferStatusScheduled:   "Scheduled",
	CommandBufferStatusCompleted:   "Completed",
	CommandBufferStatusError:       "Error",
}

func (s CommandBufferStatus) String() string {
	return enumName(commandBufferStatusNames, "CommandBufferStatus", s)
}

// Done reports whether the command buffer has finished, successfully or not.
func (s CommandBufferStatus) Done() bool {
	return s == CommandBufferStatusCompleted || s == CommandBufferStatusError
}

// CommandBufferError is MTLCommandBufferError, the code of errors in
// MTLCommandBufferErrorDomain.
type CommandBufferError uint

const (
	CommandBufferErrorNone              CommandBufferError = 0
	CommandBufferErrorInternal          CommandBufferError = 1
	CommandBufferErrorTimeout           CommandBufferError = 2
	CommandBufferErrorPageFault         CommandBufferError = 3
	CommandBufferErrorAccessRevoked     CommandBufferError = 4
	CommandBufferErrorNotPermitted      CommandBufferError = 7
	CommandBufferErrorOutOfMemory       CommandBufferError = 8
	CommandBufferErrorInvalidResource   CommandBufferError = 9
	CommandBufferErrorMemoryless        CommandBufferError = 10
	CommandBufferErrorDeviceRemoved     CommandBufferError = 11
	CommandBufferErrorStackOverflow     CommandBufferError = 12
)

var commandBufferErrorNames = map[CommandBufferError]string{
	CommandBufferErrorNone:            "None",
	CommandBufferErrorInternal:        "Internal",
	CommandBufferErrorTimeout:         "Timeout",
	CommandBufferErrorPageFault:       "PageFault",
	CommandBufferErrorAccessRevoked:   "AccessRevoked",
	CommandBufferErrorNotPermitted:    "NotPermitted",
	CommandBufferErrorOutOfMemory:     "OutOfMemory",
	CommandBufferErrorInvalidResource: "InvalidResource",
	CommandBufferErrorMemoryless:      "Memoryless",
	CommandBufferErrorDeviceRemoved:   "DeviceRemoved",
	CommandBufferErrorStackOverflow:   "StackOverflow",
}

func (e CommandBufferError) String() string {
	return enumName(commandBufferErrorNames, "CommandBufferError", e)
}

// GPUFamily is MTLGPUFamily.
type GPUFamily int

const (
	GPUFamilyApple1   GPUFamily = 1001
	GPUFamilyApple2   GPUFamily = 1002
	GPUFamilyApple3   GPUFamily = 1003
	GPUFamilyApple4   GPUFamily = 1004
	GPUFamilyApple5   GPUFamily = 1005
	GPUFamilyApple6   GPUFamily = 1006
	GPUFamilyApple7   GPUFamily = 1007
	GPUFamilyApple8   GPUFamily = 1008
	GPUFamilyApple9   GPUFamily = 1009
	GPUFamilyApple10  GPUFamily = 1010
	GPUFamilyMac2     GPUFamily = 2002
	GPUFamilyCommon1  GPUFamily = 3001
	GPUFamilyCommon2  GPUFamily = 3002
	GPUFamilyCommon3  GPUFamily = 3003
	GPUFamilyMetal3   GPUFamily = 5001
	GPUFamilyMetal4   GPUFamily = 5002
)

var gpuFamilyNames = map[GPUFamily]string{
	GPUFamilyApple1:  "Apple1",
	GPUFamilyApple2:  "Apple2",
	GPUFamilyApple3:  "Apple3",
	GPUFamilyApple4:  "Apple4",
	GPUFamilyApple5:  "Apple5",
	GPUFamilyApple6:  "Apple6",
	GPUFamilyApple7:  "Apple7",
	GPUFamilyApple8:  "Apple8",
	GPUFamilyApple9:  "Apple9",
	GPUFamilyApple10: "Apple10",
	GPUFamilyMac2:    "Mac2",
	GPUFamilyCommon1: "Common1",
	GPUFamilyCommon2: "Common2",
	GPUFamilyCommon3: "Common3",
	GPUFamilyMetal3:  "Metal3",
	GPUFamilyMetal4:  "Metal4",
}

func (f GPUFamily) String() string { return enumName(gpuFamilyNames, "GPUFamily", f) }

// AllGPUFamilies lists the families SupportsFamily can be asked about, in
// ascending order.
var AllGPUFamilies = []GPUFamily{
	GPUFamilyApple1, GPUFamilyApple2, GPUFamilyApple3, GPUFamilyApple4, GPUFamilyApple5,
	GPUFamilyApple6, GPUFamilyApple7, GPUFamilyApple8, GPUFamilyApple9, GPUFamilyApple10,
	GPUFamilyMac2, GPUFamilyCommon1, GPUFamilyCommon2, GPUFamilyCommon3,
	GPUFamilyMetal3, GPUFamilyMetal4,
}

// LanguageVersion is MTLLanguageVersion: major in the high half, minor in the
// low.
type LanguageVersion uint

const (
	LanguageVersion2_0 LanguageVersion = 2<<16 | 0
	LanguageVersion2_1 LanguageVersion = 2<<16 | 1
	LanguageVersion2_2 LanguageVersion = 2<<16 | 2
	LanguageVersion2_3 LanguageVersion = 2<<16 | 3
	LanguageVersion2_4 LanguageVersion = 2<<16 | 4
	LanguageVersion3_0 LanguageVersion = 3<<16 | 0
	LanguageVersion3_1 LanguageVersion = 3<<16 | 1
	LanguageVersion3_2 LanguageVersion = 3<<16 | 2
	LanguageVersion4_0 LanguageVersion = 4<<16 | 0
)

func (v LanguageVersion) Major() uint { return uint(v >> 16) }
func (v LanguageVersion) Minor() uint { return uint(v & 0xffff) }

func (v LanguageVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// FunctionType is MTLFunctionType.
type FunctionType uint

const (
	FunctionTypeVertex       FunctionType = 1
	FunctionTypeFragment     FunctionType = 2
	FunctionTypeKernel       FunctionType = 3
	FunctionTypeVisible      FunctionType = 5
	FunctionTypeIntersection FunctionType = 6
	FunctionTypeMesh         FunctionType = 7
	FunctionTypeObject       FunctionType = 8
)

var functionTypeNames = map[FunctionType]string{
	FunctionTypeVertex:       "Vertex",
	FunctionTypeFragment:     "Fragment",
	FunctionTypeKernel:       "Kernel",
	FunctionTypeVisible:      "Visible",
	FunctionTypeIntersection: "Intersection",
	FunctionTypeMesh:         "Mesh",
	FunctionTypeObject:       "Object",
}

func (t FunctionType) String() string { return enumName(functionTypeNames, "FunctionType", t) }

// PurgeableState is MTLPurgeableState.
type PurgeableState uint

const (
	PurgeableStateKeepCurrent PurgeableState = 1
	PurgeableStateNonVolatile PurgeableState = 2
	PurgeableStateVolatile    PurgeableState = 3
	PurgeableStateEmpty       PurgeableState = 4
)

var purgeableStateNames = map[PurgeableState]string{
	PurgeableStateKeepCurrent: "KeepCurrent",
	PurgeableStateNonVolatile: "NonVolatile",
	PurgeableStateVolatile:    "Volatile",
	PurgeableStateEmpty:       "Empty",
}

func (s PurgeableState) String() string { return enumName(purgeableStateNames, "PurgeableState", s) }

// HeapType is MTLHeapType.
type HeapType int

const (
	HeapTypeAutomatic HeapType = 0
	HeapTypePlacement HeapType = 1
	HeapTypeSparse    HeapType = 2
)

var heapTypeNames = map[HeapType]string{
	HeapTypeAutomatic: "Automatic",
	HeapTypePlacement: "Placement",
	HeapTypeSparse:    "Sparse",
}

func (t HeapType) String() string { return enumName(heapTypeNames, "HeapType", t) }

// CaptureDestination is MTLCaptureDestination.
type CaptureDestination int

const (
	CaptureDestinationDeveloperTools   CaptureDestination = 1
	CaptureDestinationGPUTraceDocument CaptureDestination = 2
)

var captureDestinationNames = map[CaptureDestination]string{
	CaptureDestinationDeveloperTools:   "DeveloperTools",
	CaptureDestinationGPUTraceDocument: "GPUTraceDocument",
}

func (d CaptureDestination) String() string {
	return enumName(captureDestinationNames, "CaptureDestination", d)
}

// ParseCaptureDestination accepts the names String returns.
func ParseCaptureDestination(s string) (CaptureDestination, error) {
	for d, name := range captureDestinationNames {
		if strings.EqualFold(name, s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown capture destination %q", s)
}

// CaptureError is MTLCaptureError, the code of errors in
// MTLCaptureErrorDomain.
type CaptureError int

const (
	CaptureErrorNotSupported      CaptureError = 1
	CaptureErrorAlreadyCapturing  CaptureError = 2
	CaptureErrorInvalidDescriptor CaptureError = 3
)

var captureErrorNames = map[CaptureError]string{
	CaptureErrorNotSupported:      "NotSupported",
	CaptureErrorAlreadyCapturing:  "AlreadyCapturing",
	CaptureErrorInvalidDescriptor: "InvalidDescriptor",
}

func (e CaptureError) String() string { return enumName(captureErrorNames, "CaptureError", e) }

// IOPriority is MTLIOPriority.
type IOPriority int

const (
	IOPriorityHigh   IOPriority = 0
	IOPriorityNormal IOPriority = 1
	IOPriorityLow    IOPriority = 2
)

var ioPriorityNames = map[IOPriority]string{
	IOPriorityHigh:   "High",
	IOPriorityNormal: "Normal",
	IOPriorityLow:    "Low",
}

func (p IOPriority) String() string { return enumName(ioPriorityNames, "IOPriority", p) }

// IOCommandQueueType is MTLIOCommandQueueType.
type IOCommandQueueType int

const (
	IOCommandQueueTypeConcurrent IOCommandQueueType = 0
	IOCommandQueueTypeSerial     IOCommandQueueType = 1
)

var ioCommandQueueTypeNames = map[IOCommandQueueType]string{
	IOCommandQueueTypeConcurrent: "Concurrent",
	IOCommandQueueTypeSerial:     "Serial",
}

func (t IOCommandQueueType) String() string {
	return enumName(ioCommandQueueTypeNames, "IOCommandQueueType", t)
}

// IOStatus is MTLIOStatus.
type IOStatus int

const (
	IOStatusPending   IOStatus = 0
	IOStatusCancelled IOStatus = 1
	IOStatusError     IOStatus = 2
	IOStatusComplete  IOStatus = 3
)

var ioStatusNames = map[IOStatus]string{
	IOStatusPending:   "Pending",
	IOStatusCancelled: "Cancelled",
	IOStatusError:     "Error",
	IOStatusComplete:  "Complete",
}

func (s IOStatus) String() string { return enumName(ioStatusNames, "IOStatus", s) }

// IOCompressionMethod is MTLIOCompressionMethod.
type IOCompressionMethod int

const (
	IOCompressionMethodZlib     IOCompressionMethod = 0
	IOCompressionMethodLZFSE    IOCompressionMethod = 1
	IOCompressionMethodLZ4      IOCompressionMethod = 2
	IOCompressionMethodLZMA     IOCompressionMethod = 3
	IOCompressionMethodLZBitmap IOCompressionMethod = 4
)

var ioCompressionMethodNames = map[IOCompressionMethod]string{
	IOCompressionMethodZlib:     "Zlib",
	IOCompressionMethodLZFSE:    "LZFSE",
	IOCompressionMethodLZ4:      "LZ4",
	IOCompressionMethodLZMA:     "LZMA",
	IOCompressionMethodLZBitmap: "LZBitmap",
}

func (m IOCompressionMethod) String() string {
	return enumName(ioCompressionMethodNames, "IOCompressionMethod", m)
}

// TensorDataType is MTLTensorDataType; its values are those of MTLDataType.
type TensorDataType int

const (
	TensorDataTypeNone     TensorDataType = 0
	TensorDataTypeFloat32  TensorDataType = 3
	TensorDataTypeFloat16  TensorDataType = 16
	TensorDataTypeInt32    TensorDataType = 29
	TensorDataTypeUInt32   TensorDataType = 33
	TensorDataTypeInt16    TensorDataType = 37
	TensorDataTypeUInt16   TensorDataType = 41
	TensorDataTypeInt8     TensorDataType = 45
	TensorDataTypeUInt8    TensorDataType = 49
	TensorDataTypeBFloat16 TensorDataType = 121
)

var tensorDataTypeNames = map[TensorDataType]string{
	TensorDataTypeNone:     "None",
	TensorDataTypeFloat32:  "Float32",
	TensorDataTypeFloat16:  "Float16",
	TensorDataTypeInt32:    "Int32",
	TensorDataTypeUInt32:   "UInt32",
	TensorDataTypeInt16:    "Int16",
	TensorDataTypeUInt16:   "UInt16",
	TensorDataTypeInt8:     "Int8",
	TensorDataTypeUInt8:    "UInt8",
	TensorDataTypeBFloat16: "BFloat16",
}

func (t TensorDataType) String() string { return enumName(tensorDataTypeNames, "TensorDataType", t) }

// Size returns the size of one element in bytes.
func (t TensorDataType) Size() int {
	switch t {
	case TensorDataTypeFloat32, TensorDataTypeInt32, TensorDataTypeUInt32:
		return 4
	case TensorDataTypeFloat16, TensorDataTypeBFloat16, TensorDataTypeInt16, TensorDataTypeUInt16:
		return 2
	case TensorDataTypeInt8, TensorDataTypeUInt8:
		return 1
	}
	return 0
}

// TensorUsage is MTLTensorUsage, a bit set.
type TensorUsage uint

const (
	TensorUsageCompute         TensorUsage = 1 << 0
	TensorUsageRender          TensorUsage = 1 << 1
	TensorUsageMachineLearning TensorUsage = 1 << 2
)

var tensorUsageNames = []struct {
	bit  TensorUsage
	name string
}{
	{TensorUsageCompute, "Compute"},
	{TensorUsageRender, "Render"},
	{TensorUsageMachineLearning, "MachineLearning"},
}

func (u TensorUsage) String() string { return optionNames(tensorUsageNames, "TensorUsage", u) }

// TensorError is MTLTensorError, the code of errors in MTLTensorDomain.
type TensorError int

const (
	TensorErrorNone              TensorError = 0
	TensorErrorInternalError     TensorError = 1
	TensorErrorInvalidDescriptor TensorError = 2
)

// AccelerationStructureUsage is MTLAccelerationStructureUsage, a bit set.
type AccelerationStructureUsage uint

const (
	AccelerationStructureUsageNone           AccelerationStructureUsage = 0
	AccelerationStructureUsageRefit          AccelerationStructureUsage = 1 << 0
	AccelerationStructureUsagePreferFastBuild AccelerationStructureUsage = 1 << 1
	AccelerationStructureUsageExtendedLimits AccelerationStructureUsage = 1 << 2
)

var accelerationStructureUsageNames = []struct {
	bit  AccelerationStructureUsage
	name string
}{
	{AccelerationStructureUsageRefit, "Refit"},
	{AccelerationStructureUsagePreferFastBuild, "PreferFastBuild"},
	{AccelerationStructureUsageExtendedLimits, "ExtendedLimits"},
}

func (u AccelerationStructureUsage) String() string {
	return optionNames(accelerationStructureUsageNames, "AccelerationStructureUsage", u)
}

// BinaryArchiveError is MTLBinaryArchiveError, the code of errors in
// MTLBinaryArchiveDomain.
type BinaryArchiveError uint

const (
	BinaryArchiveErrorNone               BinaryArchiveError = 0
	BinaryArchiveErrorInvalidFile        BinaryArchiveError = 1
	BinaryArchiveErrorUnexpectedElement  BinaryArchiveError = 2
	BinaryArchiveErrorCompilationFailure BinaryArchiveError = 3
	BinaryArchiveErrorInternalError      BinaryArchiveError = 4
)

var binaryArchiveErrorNames = map[BinaryArchiveError]string{
	BinaryArchiveErrorNone:               "None",
	BinaryArchiveErrorInvalidFile:        "InvalidFile",
	BinaryArchiveErrorUnexpectedElement:  "UnexpectedElement",
	BinaryArchiveErrorCompilationFailure: "CompilationFailure",
	BinaryArchiveErrorInternalError:      "InternalError",
}

func (e BinaryArchiveError) String() string {
	return enumName(binaryArchiveErrorNames, "BinaryArchiveError", e)
}

// BarrierScope is MTLBarrierScope, a bit set.
type BarrierScope uint

const (
	BarrierScopeBuffers       BarrierScope = 1 << 0
	BarrierScopeTextures      BarrierScope = 1 << 1
	BarrierScopeRenderTargets BarrierScope = 1 << 2
)

var barrierScopeNames = []struct {
	bit  BarrierScope
	name string
}{
	{BarrierScopeBuffers, "Buffers"},
	{BarrierScopeTextures, "Textures"},
	{BarrierScopeRenderTargets, "RenderTargets"},
}

func (s BarrierScope) String() string { return optionNames(barrierScopeNames, "BarrierScope", s) }

// ResourceUsage is MTLResourceUsage, a bit set.
type ResourceUsage uint

const (
	ResourceUsageRead  ResourceUsage = 1 << 0
	ResourceUsageWrite ResourceUsage = 1 << 1
)

var resourceUsageNames = []struct {
	bit  ResourceUsage
	name string
}{
	{ResourceUsageRead, "Read"},
	{ResourceUsageWrite, "Write"},
}

func (u ResourceUsage) String() string { return optionNames(resourceUsageNames, "ResourceUsage", u) }

// RenderStages is MTLRenderStages, a bit set.
type RenderStages uint

const (
	RenderStageVertex   RenderStages = 1 << 0
	RenderStageFragment RenderStages = 1 << 1
	RenderStageTile     RenderStages = 1 << 2
	RenderStageObject   RenderStages = 1 << 3
	RenderStageMesh     RenderStages = 1 << 4
)

var renderStagesNames = []struct {
	bit  RenderStages
	name string
}{
	{RenderStageVertex, "Vertex"},
	{RenderStageFragment, "Fragment"},
	{RenderStageTile, "Tile"},
	{RenderStageObject, "Object"},
	{RenderStageMesh, "Mesh"},
}

func (s RenderStages) String() string { return optionNames(renderStagesNames, "RenderStages", s) }

// DispatchType is MTLDispatchType.
type DispatchType uint

const (
	DispatchTypeSerial     DispatchType = 0
	DispatchTypeConcurrent DispatchType = 1
)

var dispatchTypeNames = map[DispatchType]string{
	DispatchTypeSerial:     "Serial",
	DispatchTypeConcurrent: "Concurrent",
}

func (t DispatchType) String() string { return enumName(dispatchTypeNames, "DispatchType", t) }
