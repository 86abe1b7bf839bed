package metal_bridge

import (
	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
)

// ComputePipelineDescriptor is an MTLComputePipelineDescriptor.
type ComputePipelineDescriptor struct {
	*objc.Object
}

func NewComputePipelineDescriptor() *ComputePipelineDescriptor {
	return wrap[ComputePipelineDescriptor](objc.New("MTLComputePipelineDescriptor"))
}

func (cd *ComputePipelineDescriptor) Label() string     { return label(cd) }
func (cd *ComputePipelineDescriptor) SetLabel(s string) { setLabel(cd, s) }

func (cd *ComputePipelineDescriptor) ComputeFunction() *Function {
	return wrap[Function](objc.Send(cd, "computeFunction"))
}

func (cd *ComputePipelineDescriptor) SetComputeFunction(f *Function) {
	objc.SendVoid(cd, "setComputeFunction:", f)
}

func (cd *ComputePipelineDescriptor) ThreadGroupSizeIsMultipleOfThreadExecutionWidth() bool {
	return objc.SendBool(cd, "threadGroupSizeIsMultipleOfThreadExecutionWidth")
}

func (cd *ComputePipelineDescriptor) SetThreadGroupSizeIsMultipleOfThreadExecutionWidth(b bool) {
	objc.SendVoid(cd, "setThreadGroupSizeIsMultipleOfThreadExecutionWidth:", b)
}

func (cd *ComputePipelineDescriptor) MaxTotalThreadsPerThreadgroup() uint {
	return uint(objc.SendUint(cd, "maxTotalThreadsPerThreadgroup"))
}

func (cd *ComputePipelineDescriptor) SetMaxTotalThreadsPerThreadgroup(n uint) {
	objc.SendVoid(cd, "setMaxTotalThreadsPerThreadgroup:", n)
}

// SetBinaryArchives lists archives Metal searches for precompiled code
// before compiling.
func (cd *ComputePipelineDescriptor) SetBinaryArchives(archives ...*BinaryArchive) {
	rs := make([]objc.Receiver, len(archives))
	for i, a := range archives {
		rs[i] = a
	}
	arr := foundation.NewArray(rs...)
	defer arr.Release()
	objc.SendVoid(cd, "setBinaryArchives:", arr)
}

// ComputePipelineState is a compiled MTLComputePipelineState. It is safe for
// concurrent use.
type ComputePipelineState struct {
	*objc.Object
}

func (d *Device) NewComputePipelineStateWithFunction(fn *Function) (*ComputePipelineState, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := createWithError("compute pipeline state", d, "newComputePipelineStateWithFunction:error:", fn)
	return wrap[ComputePipelineState](obj), err
}

// NewComputePipelineState compiles a pipeline from a descriptor, consulting
// its binary archives.
func (d *Device) NewComputePipelineState(desc *ComputePipelineDescriptor) (*ComputePipelineState, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "compute pipeline state", Err: errNilDescriptor}
	}
	obj, err := createWithError("compute pipeline state", d,
		"newComputePipelineStateWithDescriptor:options:reflection:error:", desc, uint(0), nil)
	return wrap[ComputePipelineState](obj), err
}

func (ps *ComputePipelineState) Label() string   { return label(ps) }
func (ps *ComputePipelineState) Device() *Device { return deviceOf(ps) }

func (ps *ComputePipelineState) MaxTotalThreadsPerThreadgroup() uint {
	return uint(objc.SendUint(ps, "maxTotalThreadsPerThreadgroup"))
}

// ThreadExecutionWidth is the SIMD width; threadgroup sizes should be a
// multiple of it.
func (ps *ComputePipelineState) ThreadExecutionWidth() uint {
	return uint(objc.SendUint(ps, "threadExecutionWidth"))
}

func (ps *ComputePipelineState) StaticThreadgroupMemoryLength() uint {
	return uint(objc.SendUint(ps, "staticThreadgroupMemoryLength"))
}

func (ps *ComputePipelineState) GPUResourceID() ResourceID {
	return objc.InvokeReturn[ResourceID](ps, "gpuResourceID")
}

// BlendFactor is MTLBlendFactor.
type BlendFactor uint

const (
	BlendFactorZero                     BlendFactor = 0
	BlendFactorOne                      BlendFactor = 1
	BlendFactorSourceColor              BlendFactor = 2
	BlendFactorOneMinusSourceColor      BlendFactor = 3
	BlendFactorSourceAlpha              BlendFactor = 4
	BlendFactorOneMinusSourceAlpha      BlendFactor = 5
	BlendFactorDestinationColor         BlendFactor = 6
	BlendFactorOneMinusDestinationColor BlendFactor = 7
	BlendFactorDestinationAlpha         BlendFactor = 8
	BlendFactorOneMinusDestinationAlpha BlendFactor = 9
)

// BlendOperation is MTLBlendOperation.
type BlendOperation uint

const (
	BlendOperationAdd             BlendOperation = 0
	BlendOperationSubtract        BlendOperation = 1
	BlendOperationReverseSubtract BlendOperation = 2
	BlendOperationMin             BlendOperation = 3
	BlendOperationMax             BlendOperation = 4
)

// ColorWriteMask is MTLColorWriteMask.
type ColorWriteMask uint

const (
	ColorWriteMaskNone  ColorWriteMask = 0
	ColorWriteMaskAlpha ColorWriteMask = 1 << 0
	ColorWriteMaskBlue  ColorWriteMask = 1 << 1
	ColorWriteMaskGreen ColorWriteMask = 1 << 2
	ColorWriteMaskRed   ColorWriteMask = 1 << 3
	ColorWriteMaskAll   ColorWriteMask = 0xf
)

// RenderPipelineColorAttachmentDescriptor configures one color output of a
// render pipeline.
type RenderPipelineColorAttachmentDescriptor struct {
	*objc.Object
}

func (a *RenderPipelineColorAttachmentDescriptor) PixelFormat() PixelFormat {
	return PixelFormat(objc.SendUint(a, "pixelFormat"))
}

func (a *RenderPipelineColorAttachmentDescriptor) SetPixelFormat(f PixelFormat) {
	objc.SendVoid(a, "setPixelFormat:", f)
}

func (a *RenderPipelineColorAttachmentDescriptor) IsBlendingEnabled() bool {
	return objc.SendBool(a, "isBlendingEnabled")
}

func (a *RenderPipelineColorAttachmentDescriptor) SetBlendingEnabled(b bool) {
	objc.SendVoid(a, "setBlendingEnabled:", b)
}

// SetBlend sets the factors and operation for both the RGB and alpha
// channels.
func (a *RenderPipelineColorAttachmentDescriptor) SetBlend(src, dst BlendFactor, op BlendOperation) {
	objc.SendVoid(a, "setSourceRGBBlendFactor:", src)
	objc.SendVoid(a, "setDestinationRGBBlendFactor:", dst)
	objc.SendVoid(a, "setRgbBlendOperation:", op)
	objc.SendVoid(a, "setSourceAlphaBlendFactor:", src)
	objc.SendVoid(a, "setDestinationAlphaBlendFactor:", dst)
	objc.SendVoid(a, "setAlphaBlendOperation:", op)
}

func (a *RenderPipelineColorAttachmentDescriptor) SourceRGBBlendFactor() BlendFactor {
	return BlendFactor(objc.SendUint(a, "sourceRGBBlendFactor"))
}

func (a *RenderPipelineColorAttachmentDescriptor) DestinationRGBBlendFactor() BlendFactor {
	return BlendFactor(objc.SendUint(a, "destinationRGBBlendFactor"))
}

func (a *RenderPipelineColorAttachmentDescriptor) RGBBlendOperation() BlendOperation {
	return BlendOperation(objc.SendUint(a, "rgbBlendOperation"))
}

func (a *RenderPipelineColorAttachmentDescriptor) WriteMask() ColorWriteMask {
	return ColorWriteMask(objc.SendUint(a, "writeMask"))
}

func (a *RenderPipelineColorAttachmentDescriptor) SetWriteMask(m ColorWriteMask) {
	objc.SendVoid(a, "setWriteMask:", m)
}

// RenderPipelineDescriptor is an MTLRenderPipelineDescriptor.
type RenderPipelineDescriptor struct {
	*objc.Object
}

func NewRenderPipelineDescriptor() *RenderPipelineDescriptor {
	return wrap[RenderPipelineDescriptor](objc.New("MTLRenderPipelineDescriptor"))
}

func (rd *RenderPipelineDescriptor) Label() string     { return label(rd) }
func (rd *RenderPipelineDescriptor) SetLabel(s string) { setLabel(rd, s) }

func (rd *RenderPipelineDescriptor) VertexFunction() *Function {
	return wrap[Function](objc.Send(rd, "vertexFunction"))
}

func (rd *RenderPipelineDescriptor) SetVertexFunction(f *Function) {
	objc.SendVoid(rd, "setVertexFunction:", f)
}

func (rd *RenderPipelineDescriptor) FragmentFunction() *Function {
	return wrap[Function](objc.Send(rd, "fragmentFunction"))
}

func (rd *RenderPipelineDescriptor) SetFragmentFunction(f *Function) {
	objc.SendVoid(rd, "setFragmentFunction:", f)
}

func (rd *RenderPipelineDescriptor) RasterSampleCount() uint {
	return uint(objc.SendUint(rd, "rasterSampleCount"))
}

func (rd *RenderPipelineDescriptor) SetRasterSampleCount(n uint) {
	objc.SendVoid(rd, "setRasterSampleCount:", n)
}

func (rd *RenderPipelineDescriptor) IsAlphaToCoverageEnabled() bool {
	return objc.SendBool(rd, "isAlphaToCoverageEnabled")
}

func (rd *RenderPipelineDescriptor) SetAlphaToCoverageEnabled(b bool) {
	objc.SendVoid(rd, "setAlphaToCoverageEnabled:", b)
}

func (rd *RenderPipelineDescriptor) DepthAttachmentPixelFormat() PixelFormat {
	return PixelFormat(objc.SendUint(rd, "depthAttachmentPixelFormat"))
}

func (rd *RenderPipelineDescriptor) SetDepthAttachmentPixelFormat(f PixelFormat) {
	objc.SendVoid(rd, "setDepthAttachmentPixelFormat:", f)
}

func (rd *RenderPipelineDescriptor) StencilAttachmentPixelFormat() PixelFormat {
	return PixelFormat(objc.SendUint(rd, "stencilAttachmentPixelFormat"))
}

func (rd *RenderPipelineDescriptor) SetStencilAttachmentPixelFormat(f PixelFormat) {
	objc.SendVoid(rd, "setStencilAttachmentPixelFormat:", f)
}

// ColorAttachment returns the descriptor of color output i. Changes to it
// modify rd.
func (rd *RenderPipelineDescriptor) ColorAttachment(i uint) *RenderPipelineColorAttachmentDescriptor {
	arr := objc.Send(rd, "colorAttachments")
	if arr == nil {
		return nil
	}
	defer arr.Release()
	return wrap[RenderPipelineColorAttachmentDescriptor](objc.Send(arr, "objectAtIndexedSubscript:", i))
}

// RenderPipelineState is a compiled MTLRenderPipelineState. It is safe for
// concurrent use.
type RenderPipelineState struct {
	*objc.Object
}

func (d *Device) NewRenderPipelineState(desc *RenderPipelineDescriptor) (*RenderPipelineState, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "render pipeline state", Err: errNilDescriptor}
	}
	obj, err := createWithError("render pipeline state", d, "newRenderPipelineStateWithDescriptor:error:", desc)
	return wrap[RenderPipelineState](obj), err
}

func (ps *RenderPipelineState) Label() string   { return label(ps) }
func (ps *RenderPipelineState) Device() *Device { return deviceOf(ps) }
