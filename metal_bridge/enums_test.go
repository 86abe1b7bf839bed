package metal_bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "RGBA8Unorm", PixelFormatRGBA8Unorm.String())
	assert.Equal(t, "BGRA8Unorm", PixelFormatBGRA8Unorm.String())
	assert.Equal(t, "PixelFormat(9999)", PixelFormat(9999).String())
	assert.Equal(t, "Private", StorageModePrivate.String())
	assert.Equal(t, "Completed", CommandBufferStatusCompleted.String())
	assert.Equal(t, "Apple7", GPUFamilyApple7.String())
	assert.Equal(t, "GPUFamily(42)", GPUFamily(42).String())
	assert.Equal(t, "Kernel", FunctionTypeKernel.String())
	assert.Equal(t, "Complete", IOStatusComplete.String())
	assert.Equal(t, "LZ4", IOCompressionMethodLZ4.String())
	assert.Equal(t, "BFloat16", TensorDataTypeBFloat16.String())
}

func TestOptionStrings(t *testing.T) {
	assert.Equal(t, "None", TextureUsage(0).String())
	assert.Equal(t, "ShaderRead|ShaderWrite", (TextureUsageShaderRead | TextureUsageShaderWrite).String())
	assert.Equal(t, "RenderTarget|TextureUsage(0x100)", (TextureUsageRenderTarget | 1<<8).String())
	assert.Equal(t, "Compute|MachineLearning", (TensorUsageCompute | TensorUsageMachineLearning).String())
}

func TestResourceOptions(t *testing.T) {
	opts := MakeResourceOptions(StorageModePrivate, CPUCacheModeWriteCombined, HazardTrackingModeUntracked)
	assert.Equal(t, ResourceStorageModePrivate|ResourceCPUCacheModeWriteCombined|ResourceHazardTrackingModeUntracked, opts)
	assert.Equal(t, StorageModePrivate, opts.StorageMode())
	assert.Equal(t, CPUCacheModeWriteCombined, opts.CPUCacheMode())
	assert.Equal(t, HazardTrackingModeUntracked, opts.HazardTrackingMode())
	assert.Equal(t, "Private|WriteCombined|Untracked", opts.String())

	assert.EqualValues(t, 0, ResourceStorageModeShared)
	assert.EqualValues(t, 0x20, ResourceStorageModePrivate)
	assert.EqualValues(t, 0x100, ResourceHazardTrackingModeUntracked)
	assert.Equal(t, StorageModeShared, ResourceOptions(0).StorageMode())
}

func TestPixelFormatProperties(t *testing.T) {
	assert.EqualValues(t, 4, PixelFormatRGBA8Unorm.BytesPerPixel())
	assert.EqualValues(t, 8, PixelFormatRGBA16Float.BytesPerPixel())
	assert.EqualValues(t, 16, PixelFormatRGBA32Float.BytesPerPixel())
	assert.EqualValues(t, 0, PixelFormatInvalid.BytesPerPixel())

	assert.True(t, PixelFormatDepth32Float.IsDepthStencil())
	assert.False(t, PixelFormatR32Float.IsDepthStencil())
}

func TestCommandBufferStatusDone(t *testing.T) {
	assert.False(t, CommandBufferStatusCommitted.Done())
	assert.True(t, CommandBufferStatusCompleted.Done())
	assert.True(t, CommandBufferStatusError.Done())
}

func TestLanguageVersion(t *testing.T) {
	assert.EqualValues(t, 3, LanguageVersion3_1.Major())
	assert.EqualValues(t, 1, LanguageVersion3_1.Minor())
	assert.Equal(t, "2.4", LanguageVersion2_4.String())
	assert.EqualValues(t, 0x30001, LanguageVersion3_1)
}

func TestParseCaptureDestination(t *testing.T) {
	d, err := ParseCaptureDestination("gputracedocument")
	require.NoError(t, err)
	assert.Equal(t, CaptureDestinationGPUTraceDocument, d)

	d, err = ParseCaptureDestination(CaptureDestinationDeveloperTools.String())
	require.NoError(t, err)
	assert.Equal(t, CaptureDestinationDeveloperTools, d)

	_, err = ParseCaptureDestination("printer")
	assert.Error(t, err)
}

func TestElementSizes(t *testing.T) {
	assert.Equal(t, 4, TensorDataTypeFloat32.Size())
	assert.Equal(t, 2, TensorDataTypeBFloat16.Size())
	assert.Equal(t, 1, TensorDataTypeUInt8.Size())
	assert.Equal(t, 0, TensorDataTypeNone.Size())

	assert.EqualValues(t, 2, IndexTypeUInt16.Size())
	assert.EqualValues(t, 4, IndexTypeUInt32.Size())
}

func TestAllGPUFamiliesSorted(t *testing.T) {
	for i := 1; i < len(AllGPUFamilies); i++ {
		assert.Less(t, AllGPUFamilies[i-1], AllGPUFamilies[i])
	}
}
