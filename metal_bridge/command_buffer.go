package metal_bridge

import (
	"github.com/tsawler/go-mtl/objc"
)

// CommandBuffer is an MTLCommandBuffer. Encode into it from one goroutine;
// after Commit, Status, Error, the GPU times and the Wait methods may be
// called from any goroutine.
type CommandBuffer struct {
	*objc.Object
}

func (cb *CommandBuffer) Label() string     { return label(cb) }
func (cb *CommandBuffer) SetLabel(s string) { setLabel(cb, s) }
func (cb *CommandBuffer) Device() *Device   { return deviceOf(cb) }

func (cb *CommandBuffer) CommandQueue() *CommandQueue {
	return wrap[CommandQueue](objc.Send(cb, "commandQueue"))
}

func (cb *CommandBuffer) Status() CommandBufferStatus {
	return CommandBufferStatus(objc.SendUint(cb, "status"))
}

// Error returns the failure of a command buffer whose status is
// CommandBufferStatusError as a *foundation.Error, or nil.
func (cb *CommandBuffer) Error() error {
	return nsError(cb, "error")
}

func (cb *CommandBuffer) Enqueue()            { objc.SendVoid(cb, "enqueue") }
func (cb *CommandBuffer) Commit()             { objc.SendVoid(cb, "commit") }
func (cb *CommandBuffer) WaitUntilScheduled() { objc.SendVoid(cb, "waitUntilScheduled") }
func (cb *CommandBuffer) WaitUntilCompleted() { objc.SendVoid(cb, "waitUntilCompleted") }

// GPUStartTime is the host time, in seconds, at which the GPU started
// executing the buffer.
func (cb *CommandBuffer) GPUStartTime() float64 { return objc.SendFloat64(cb, "GPUStartTime") }

func (cb *CommandBuffer) GPUEndTime() float64 { return objc.SendFloat64(cb, "GPUEndTime") }

func (cb *CommandBuffer) addHandler(sel string, handler func(*CommandBuffer)) {
	block := objc.NewBlock(func(a, _ uintptr) {
		borrowed := wrap[CommandBuffer](objc.Retain(objc.ID(a)))
		defer borrowed.Release()
		handler(borrowed)
	})
	if block == nil {
		return
	}
	defer block.Release()
	objc.SendVoid(cb, sel, block)
}

// AddCompletedHandler registers handler to run once the GPU has finished the
// buffer, successfully or not. It must be called before Commit. handler runs
// on a Metal thread; the buffer it receives is released when it returns.
func (cb *CommandBuffer) AddCompletedHandler(handler func(*CommandBuffer)) {
	cb.addHandler("addCompletedHandler:", handler)
}

// AddScheduledHandler registers handler to run once the buffer is scheduled.
func (cb *CommandBuffer) AddScheduledHandler(handler func(*CommandBuffer)) {
	cb.addHandler("addScheduledHandler:", handler)
}

func (cb *CommandBuffer) ComputeCommandEncoder() (*ComputeCommandEncoder, error) {
	obj, err := created("compute command encoder", objc.Send(cb, "computeCommandEncoder"))
	return wrap[ComputeCommandEncoder](obj), err
}

func (cb *CommandBuffer) ComputeCommandEncoderWithDispatchType(t DispatchType) (*ComputeCommandEncoder, error) {
	obj, err := created("compute command encoder", objc.Send(cb, "computeCommandEncoderWithDispatchType:", t))
	return wrap[ComputeCommandEncoder](obj), err
}

func (cb *CommandBuffer) RenderCommandEncoder(desc *RenderPassDescriptor) (*RenderCommandEncoder, error) {
	if desc == nil {
		return nil, &CreateError{Object: "render command encoder", Err: errNilDescriptor}
	}
	obj, err := created("render command encoder", objc.Send(cb, "renderCommandEncoderWithDescriptor:", desc))
	return wrap[RenderCommandEncoder](obj), err
}

func (cb *CommandBuffer) BlitCommandEncoder() (*BlitCommandEncoder, error) {
	obj, err := created("blit command encoder", objc.Send(cb, "blitCommandEncoder"))
	return wrap[BlitCommandEncoder](obj), err
}

func (cb *CommandBuffer) AccelerationStructureCommandEncoder() (*AccelerationStructureCommandEncoder, error) {
	obj, err := created("acceleration structure command encoder", objc.Send(cb, "accelerationStructureCommandEncoder"))
	return wrap[AccelerationStructureCommandEncoder](obj), err
}

// EncodeSignalEvent sets event to value once the GPU reaches this point.
func (cb *CommandBuffer) EncodeSignalEvent(event Eventer, value uint64) {
	objc.SendVoid(cb, "encodeSignalEvent:value:", event, value)
}

// EncodeWaitForEvent blocks later GPU work until event reaches value.
func (cb *CommandBuffer) EncodeWaitForEvent(event Eventer, value uint64) {
	objc.SendVoid(cb, "encodeWaitForEvent:value:", event, value)
}

// PresentDrawable schedules a drawable, such as a quartzcore.MetalDrawable,
// to be shown once the buffer completes.
func (cb *CommandBuffer) PresentDrawable(drawable objc.Receiver) {
	objc.SendVoid(cb, "presentDrawable:", drawable)
}

func (cb *CommandBuffer) UseResidencySet(set *ResidencySet) {
	objc.SendVoid(cb, "useResidencySet:", set)
}

func (cb *CommandBuffer) PushDebugGroup(name string) { objc.SendVoid(cb, "pushDebugGroup:", name) }
func (cb *CommandBuffer) PopDebugGroup()             { objc.SendVoid(cb, "popDebugGroup") }
