package metal_bridge

import (
	"unsafe"

	"github.com/tsawler/go-mtl/objc"
)

// CommandEncoder is the part of MTLCommandEncoder every encoder shares.
// Encoders are not safe for concurrent use and must be ended before the
// command buffer is committed.
type CommandEncoder interface {
	objc.Receiver
	Label() string
	SetLabel(string)
	Device() *Device
	EndEncoding()
	PushDebugGroup(string)
	PopDebugGroup()
	InsertDebugSignpost(string)
	Release()
}

var (
	_ CommandEncoder = (*ComputeCommandEncoder)(nil)
	_ CommandEncoder = (*RenderCommandEncoder)(nil)
	_ CommandEncoder = (*BlitCommandEncoder)(nil)
	_ CommandEncoder = (*AccelerationStructureCommandEncoder)(nil)
)

func endEncoding(e objc.Receiver)                 { objc.SendVoid(e, "endEncoding") }
func pushDebugGroup(e objc.Receiver, name string) { objc.SendVoid(e, "pushDebugGroup:", name) }
func popDebugGroup(e objc.Receiver)               { objc.SendVoid(e, "popDebugGroup") }
func insertDebugSignpost(e objc.Receiver, s string) {
	objc.SendVoid(e, "insertDebugSignpost:", s)
}

func bytesPointer(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// ComputeCommandEncoder is an MTLComputeCommandEncoder.
type ComputeCommandEncoder struct {
	*objc.Object
}

func (e *ComputeCommandEncoder) Label() string                { return label(e) }
func (e *ComputeCommandEncoder) SetLabel(s string)            { setLabel(e, s) }
func (e *ComputeCommandEncoder) Device() *Device              { return deviceOf(e) }
func (e *ComputeCommandEncoder) EndEncoding()                 { endEncoding(e) }
func (e *ComputeCommandEncoder) PushDebugGroup(name string)   { pushDebugGroup(e, name) }
func (e *ComputeCommandEncoder) PopDebugGroup()               { popDebugGroup(e) }
func (e *ComputeCommandEncoder) InsertDebugSignpost(s string) { insertDebugSignpost(e, s) }

func (e *ComputeCommandEncoder) DispatchType() DispatchType {
	return DispatchType(objc.SendUint(e, "dispatchType"))
}

func (e *ComputeCommandEncoder) SetComputePipelineState(ps *ComputePipelineState) {
	objc.SendVoid(e, "setComputePipelineState:", ps)
}

func (e *ComputeCommandEncoder) SetBuffer(buffer *Buffer, offset, index uint) {
	objc.SendVoid(e, "setBuffer:offset:atIndex:", buffer, offset, index)
}

func (e *ComputeCommandEncoder) SetBufferOffset(offset, index uint) {
	objc.SendVoid(e, "setBufferOffset:atIndex:", offset, index)
}

// SetBytes copies up to 4 KB of constant data into the argument table.
func (e *ComputeCommandEncoder) SetBytes(data []byte, index uint) {
	objc.SendVoid(e, "setBytes:length:atIndex:", bytesPointer(data), uint(len(data)), index)
}

func (e *ComputeCommandEncoder) SetTexture(texture *Texture, index uint) {
	objc.SendVoid(e, "setTexture:atIndex:", texture, index)
}

func (e *ComputeCommandEncoder) SetSamplerState(sampler *SamplerState, index uint) {
	objc.SendVoid(e, "setSamplerState:atIndex:", sampler, index)
}

func (e *ComputeCommandEncoder) SetAccelerationStructure(as *AccelerationStructure, index uint) {
	objc.SendVoid(e, "setAccelerationStructure:atBufferIndex:", as, index)
}

func (e *ComputeCommandEncoder) SetThreadgroupMemoryLength(length, index uint) {
	objc.SendVoid(e, "setThreadgroupMemoryLength:atIndex:", length, index)
}

// DispatchThreads launches a grid of exactly gridSize threads, which need not
// be a multiple of the threadgroup size.
func (e *ComputeCommandEncoder) DispatchThreads(gridSize, threadsPerThreadgroup Size) {
	objc.Invoke(e, "dispatchThreads:threadsPerThreadgroup:", "v", nil,
		objc.Value(gridSize), objc.Value(threadsPerThreadgroup))
}

func (e *ComputeCommandEncoder) DispatchThreadgroups(threadgroups, threadsPerThreadgroup Size) {
	objc.Invoke(e, "dispatchThreadgroups:threadsPerThreadgroup:", "v", nil,
		objc.Value(threadgroups), objc.Value(threadsPerThreadgroup))
}

// DispatchThreadgroupsIndirect reads the threadgroup count from a
// DispatchThreadgroupsIndirectArguments stored in buffer at offset.
func (e *ComputeCommandEncoder) DispatchThreadgroupsIndirect(buffer *Buffer, offset uint, threadsPerThreadgroup Size) {
	objc.Invoke(e, "dispatchThreadgroupsWithIndirectBuffer:indirectBufferOffset:threadsPerThreadgroup:", "v", nil,
		objc.Value(objectOf(buffer)), objc.Value(offset), objc.Value(threadsPerThreadgroup))
}

func (e *ComputeCommandEncoder) UseResource(r Resource, usage ResourceUsage) {
	objc.SendVoid(e, "useResource:usage:", r, usage)
}

func (e *ComputeCommandEncoder) UseHeap(h *Heap) { objc.SendVoid(e, "useHeap:", h) }

func (e *ComputeCommandEncoder) UpdateFence(f *Fence)  { objc.SendVoid(e, "updateFence:", f) }
func (e *ComputeCommandEncoder) WaitForFence(f *Fence) { objc.SendVoid(e, "waitForFence:", f) }

func (e *ComputeCommandEncoder) MemoryBarrier(scope BarrierScope) {
	objc.SendVoid(e, "memoryBarrierWithScope:", scope)
}

// MemoryBarrierResources orders accesses to the listed resources only.
func (e *ComputeCommandEncoder) MemoryBarrierResources(resources ...Resource) {
	ids := resourceIDs(resources)
	if len(ids) == 0 {
		return
	}
	objc.SendVoid(e, "memoryBarrierWithResources:count:", unsafe.Pointer(&ids[0]), uint(len(ids)))
}

func resourceIDs(resources []Resource) []objc.ID {
	ids := make([]objc.ID, 0, len(resources))
	for _, r := range resources {
		if id := objc.IDOf(r); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// RenderCommandEncoder is an MTLRenderCommandEncoder.
type RenderCommandEncoder struct {
	*objc.Object
}

func (e *RenderCommandEncoder) Label() string                { return label(e) }
func (e *RenderCommandEncoder) SetLabel(s string)            { setLabel(e, s) }
func (e *RenderCommandEncoder) Device() *Device              { return deviceOf(e) }
func (e *RenderCommandEncoder) EndEncoding()                 { endEncoding(e) }
func (e *RenderCommandEncoder) PushDebugGroup(name string)   { pushDebugGroup(e, name) }
func (e *RenderCommandEncoder) PopDebugGroup()               { popDebugGroup(e) }
func (e *RenderCommandEncoder) InsertDebugSignpost(s string) { insertDebugSignpost(e, s) }

func (e *RenderCommandEncoder) SetRenderPipelineState(ps *RenderPipelineState) {
	objc.SendVoid(e, "setRenderPipelineState:", ps)
}

func (e *RenderCommandEncoder) SetDepthStencilState(ds *DepthStencilState) {
	objc.SendVoid(e, "setDepthStencilState:", ds)
}

func (e *RenderCommandEncoder) SetVertexBuffer(buffer *Buffer, offset, index uint) {
	objc.SendVoid(e, "setVertexBuffer:offset:atIndex:", buffer, offset, index)
}

func (e *RenderCommandEncoder) SetVertexBytes(data []byte, index uint) {
	objc.SendVoid(e, "setVertexBytes:length:atIndex:", bytesPointer(data), uint(len(data)), index)
}

func (e *RenderCommandEncoder) SetVertexTexture(texture *Texture, index uint) {
	objc.SendVoid(e, "setVertexTexture:atIndex:", texture, index)
}

func (e *RenderCommandEncoder) SetVertexSamplerState(sampler *SamplerState, index uint) {
	objc.SendVoid(e, "setVertexSamplerState:atIndex:", sampler, index)
}

func (e *RenderCommandEncoder) SetFragmentBuffer(buffer *Buffer, offset, index uint) {
	objc.SendVoid(e, "setFragmentBuffer:offset:atIndex:", buffer, offset, index)
}

func (e *RenderCommandEncoder) SetFragmentBytes(data []byte, index uint) {
	objc.SendVoid(e, "setFragmentBytes:length:atIndex:", bytesPointer(data), uint(len(data)), index)
}

func (e *RenderCommandEncoder) SetFragmentTexture(texture *Texture, index uint) {
	objc.SendVoid(e, "setFragmentTexture:atIndex:", texture, index)
}

func (e *RenderCommandEncoder) SetFragmentSamplerState(sampler *SamplerState, index uint) {
	objc.SendVoid(e, "setFragmentSamplerState:atIndex:", sampler, index)
}

func (e *RenderCommandEncoder) SetViewport(v Viewport) {
	objc.Invoke(e, "setViewport:", "v", nil, objc.Value(v))
}

func (e *RenderCommandEncoder) SetScissorRect(r ScissorRect) {
	objc.Invoke(e, "setScissorRect:", "v", nil, objc.Value(r))
}

func (e *RenderCommandEncoder) SetCullMode(m CullMode) { objc.SendVoid(e, "setCullMode:", m) }

func (e *RenderCommandEncoder) SetFrontFacingWinding(w Winding) {
	objc.SendVoid(e, "setFrontFacingWinding:", w)
}

func (e *RenderCommandEncoder) SetStencilReferenceValue(v uint32) {
	objc.SendVoid(e, "setStencilReferenceValue:", v)
}

func (e *RenderCommandEncoder) SetBlendColor(r, g, b, a float32) {
	objc.SendVoid(e, "setBlendColorRed:green:blue:alpha:", r, g, b, a)
}

func (e *RenderCommandEncoder) DrawPrimitives(t PrimitiveType, vertexStart, vertexCount uint) {
	objc.SendVoid(e, "drawPrimitives:vertexStart:vertexCount:", t, vertexStart, vertexCount)
}

func (e *RenderCommandEncoder) DrawPrimitivesInstanced(t PrimitiveType, vertexStart, vertexCount, instanceCount uint) {
	objc.SendVoid(e, "drawPrimitives:vertexStart:vertexCount:instanceCount:", t, vertexStart, vertexCount, instanceCount)
}

func (e *RenderCommandEncoder) DrawIndexedPrimitives(t PrimitiveType, indexCount uint, indexType IndexType, indexBuffer *Buffer, indexBufferOffset uint) {
	objc.SendVoid(e, "drawIndexedPrimitives:indexCount:indexType:indexBuffer:indexBufferOffset:",
		t, indexCount, indexType, indexBuffer, indexBufferOffset)
}

func (e *RenderCommandEncoder) DrawIndexedPrimitivesInstanced(t PrimitiveType, indexCount uint, indexType IndexType, indexBuffer *Buffer, indexBufferOffset, instanceCount uint) {
	objc.SendVoid(e, "drawIndexedPrimitives:indexCount:indexType:indexBuffer:indexBufferOffset:instanceCount:",
		t, indexCount, indexType, indexBuffer, indexBufferOffset, instanceCount)
}

func (e *RenderCommandEncoder) UseResource(r Resource, usage ResourceUsage, stages RenderStages) {
	objc.SendVoid(e, "useResource:usage:stages:", r, usage, stages)
}

func (e *RenderCommandEncoder) UseHeap(h *Heap, stages RenderStages) {
	objc.SendVoid(e, "useHeap:stages:", h, stages)
}

func (e *RenderCommandEncoder) UpdateFence(f *Fence, after RenderStages) {
	objc.SendVoid(e, "updateFence:afterStages:", f, after)
}

func (e *RenderCommandEncoder) WaitForFence(f *Fence, before RenderStages) {
	objc.SendVoid(e, "waitForFence:beforeStages:", f, before)
}

func (e *RenderCommandEncoder) MemoryBarrier(scope BarrierScope, after, before RenderStages) {
	objc.SendVoid(e, "memoryBarrierWithScope:afterStages:beforeStages:", scope, after, before)
}

// BlitCommandEncoder is an MTLBlitCommandEncoder.
type BlitCommandEncoder struct {
	*objc.Object
}

func (e *BlitCommandEncoder) Label() string                { return label(e) }
func (e *BlitCommandEncoder) SetLabel(s string)            { setLabel(e, s) }
func (e *BlitCommandEncoder) Device() *Device              { return deviceOf(e) }
func (e *BlitCommandEncoder) EndEncoding()                 { endEncoding(e) }
func (e *BlitCommandEncoder) PushDebugGroup(name string)   { pushDebugGroup(e, name) }
func (e *BlitCommandEncoder) PopDebugGroup()               { popDebugGroup(e) }
func (e *BlitCommandEncoder) InsertDebugSignpost(s string) { insertDebugSignpost(e, s) }

func (e *BlitCommandEncoder) CopyFromBuffer(src *Buffer, srcOffset uint, dst *Buffer, dstOffset, size uint) {
	objc.SendVoid(e, "copyFromBuffer:sourceOffset:toBuffer:destinationOffset:size:",
		src, srcOffset, dst, dstOffset, size)
}

// CopyFromTexture copies every slice and level both textures have in common.
func (e *BlitCommandEncoder) CopyFromTexture(src, dst *Texture) {
	objc.SendVoid(e, "copyFromTexture:toTexture:", src, dst)
}

// CopyFromBufferToTexture uploads rows of pixels from src into one slice
// and level of dst.
func (e *BlitCommandEncoder) CopyFromBufferToTexture(src *Buffer, srcOffset, bytesPerRow, bytesPerImage uint, size Size, dst *Texture, slice, level uint, origin Origin) {
	objc.Invoke(e, "copyFromBuffer:sourceOffset:sourceBytesPerRow:sourceBytesPerImage:sourceSize:toTexture:destinationSlice:destinationLevel:destinationOrigin:", "v", nil,
		objc.Value(objectOf(src)), objc.Value(srcOffset), objc.Value(bytesPerRow), objc.Value(bytesPerImage),
		objc.Value(size), objc.Value(objectOf(dst)), objc.Value(slice), objc.Value(level), objc.Value(origin))
}

// CopyFromTextureToBuffer reads back a region of one slice and level of src.
func (e *BlitCommandEncoder) CopyFromTextureToBuffer(src *Texture, slice, level uint, origin Origin, size Size, dst *Buffer, dstOffset, bytesPerRow, bytesPerImage uint) {
	objc.Invoke(e, "copyFromTexture:sourceSlice:sourceLevel:sourceOrigin:sourceSize:toBuffer:destinationOffset:destinationBytesPerRow:destinationBytesPerImage:", "v", nil,
		objc.Value(objectOf(src)), objc.Value(slice), objc.Value(level), objc.Value(origin), objc.Value(size),
		objc.Value(objectOf(dst)), objc.Value(dstOffset), objc.Value(bytesPerRow), objc.Value(bytesPerImage))
}

// FillBuffer sets every byte in r to value.
func (e *BlitCommandEncoder) FillBuffer(buffer *Buffer, r Range, value uint8) {
	objc.Invoke(e, "fillBuffer:range:value:", "v", nil,
		objc.Value(objectOf(buffer)), objc.Value(r), objc.Value(value))
}

func (e *BlitCommandEncoder) GenerateMipmaps(texture *Texture) {
	objc.SendVoid(e, "generateMipmapsForTexture:", texture)
}

// Synchronize makes GPU writes to a managed resource visible to the CPU.
func (e *BlitCommandEncoder) Synchronize(r Resource) {
	objc.SendVoid(e, "synchronizeResource:", r)
}

func (e *BlitCommandEncoder) SynchronizeTexture(texture *Texture, slice, level uint) {
	objc.SendVoid(e, "synchronizeTexture:slice:level:", texture, slice, level)
}

func (e *BlitCommandEncoder) OptimizeContentsForGPUAccess(texture *Texture) {
	objc.SendVoid(e, "optimizeContentsForGPUAccess:", texture)
}

func (e *BlitCommandEncoder) UpdateFence(f *Fence)  { objc.SendVoid(e, "updateFence:", f) }
func (e *BlitCommandEncoder) WaitForFence(f *Fence) { objc.SendVoid(e, "waitForFence:", f) }

// AccelerationStructureCommandEncoder is an
// MTLAccelerationStructureCommandEncoder.
type AccelerationStructureCommandEncoder struct {
	*objc.Object
}

func (e *AccelerationStructureCommandEncoder) Label() string                { return label(e) }
func (e *AccelerationStructureCommandEncoder) SetLabel(s string)            { setLabel(e, s) }
func (e *AccelerationStructureCommandEncoder) Device() *Device              { return deviceOf(e) }
func (e *AccelerationStructureCommandEncoder) EndEncoding()                 { endEncoding(e) }
func (e *AccelerationStructureCommandEncoder) PushDebugGroup(name string)   { pushDebugGroup(e, name) }
func (e *AccelerationStructureCommandEncoder) PopDebugGroup()               { popDebugGroup(e) }
func (e *AccelerationStructureCommandEncoder) InsertDebugSignpost(s string) { insertDebugSignpost(e, s) }

// Build encodes a build of as from desc. scratch must hold at least
// BuildScratchBufferSize bytes from offset.
func (e *AccelerationStructureCommandEncoder) Build(as *AccelerationStructure, desc *PrimitiveAccelerationStructureDescriptor, scratch *Buffer, offset uint) {
	objc.SendVoid(e, "buildAccelerationStructure:descriptor:scratchBuffer:scratchBufferOffset:",
		as, desc, scratch, offset)
}

// Refit updates src's bounds in place when dst is nil, or into dst.
func (e *AccelerationStructureCommandEncoder) Refit(src *AccelerationStructure, desc *PrimitiveAccelerationStructureDescriptor, dst *AccelerationStructure, scratch *Buffer, offset uint) {
	objc.SendVoid(e, "refitAccelerationStructure:descriptor:destination:scratchBuffer:scratchBufferOffset:",
		src, desc, dst, scratch, offset)
}

func (e *AccelerationStructureCommandEncoder) Copy(src, dst *AccelerationStructure) {
	objc.SendVoid(e, "copyAccelerationStructure:toAccelerationStructure:", src, dst)
}

func (e *AccelerationStructureCommandEncoder) CopyAndCompact(src, dst *AccelerationStructure) {
	objc.SendVoid(e, "copyAndCompactAccelerationStructure:toAccelerationStructure:", src, dst)
}

// WriteCompactedSize stores the compacted size of as, a uint32, into buffer
// at offset.
func (e *AccelerationStructureCommandEncoder) WriteCompactedSize(as *AccelerationStructure, buffer *Buffer, offset uint) {
	objc.SendVoid(e, "writeCompactedAccelerationStructureSize:toBuffer:offset:", as, buffer, offset)
}

func (e *AccelerationStructureCommandEncoder) UseResource(r Resource, usage ResourceUsage) {
	objc.SendVoid(e, "useResource:usage:", r, usage)
}

func (e *AccelerationStructureCommandEncoder) UpdateFence(f *Fence) {
	objc.SendVoid(e, "updateFence:", f)
}

func (e *AccelerationStructureCommandEncoder) WaitForFence(f *Fence) {
	objc.SendVoid(e, "waitForFence:", f)
}
