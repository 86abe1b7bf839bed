package metal_bridge

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
)

// IOCommandQueueDescriptor is an MTLIOCommandQueueDescriptor.
type IOCommandQueueDescriptor struct {
	*objc.Object
}

func NewIOCommandQueueDescriptor() *IOCommandQueueDescriptor {
	return wrap[IOCommandQueueDescriptor](objc.New("MTLIOCommandQueueDescriptor"))
}

func (qd *IOCommandQueueDescriptor) MaxCommandBufferCount() uint {
	return uint(objc.SendUint(qd, "maxCommandBufferCount"))
}

func (qd *IOCommandQueueDescriptor) SetMaxCommandBufferCount(n uint) {
	objc.SendVoid(qd, "setMaxCommandBufferCount:", n)
}

func (qd *IOCommandQueueDescriptor) Priority() IOPriority {
	return IOPriority(objc.SendInt(qd, "priority"))
}

func (qd *IOCommandQueueDescriptor) SetPriority(p IOPriority) { objc.SendVoid(qd, "setPriority:", p) }

func (qd *IOCommandQueueDescriptor) Type() IOCommandQueueType {
	return IOCommandQueueType(objc.SendInt(qd, "type"))
}

func (qd *IOCommandQueueDescriptor) SetType(t IOCommandQueueType) { objc.SendVoid(qd, "setType:", t) }

func (qd *IOCommandQueueDescriptor) MaxCommandsInFlight() uint {
	return uint(objc.SendUint(qd, "maxCommandsInFlight"))
}

func (qd *IOCommandQueueDescriptor) SetMaxCommandsInFlight(n uint) {
	objc.SendVoid(qd, "setMaxCommandsInFlight:", n)
}

// IOFileHandle is an MTLIOFileHandle, an open file IO command buffers load
// from.
type IOFileHandle struct {
	*objc.Object
}

func (h *IOFileHandle) Label() string     { return label(h) }
func (h *IOFileHandle) SetLabel(s string) { setLabel(h, s) }

// NewIOFileHandle opens the uncompressed file at path.
func (d *Device) NewIOFileHandle(path string) (*IOFileHandle, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	u := foundation.NewFileURL(path)
	defer u.Release()
	obj, err := createWithError("IO file handle", d, "newIOFileHandleWithURL:error:", u)
	return wrap[IOFileHandle](obj), err
}

// NewIOFileHandleWithCompression opens a file written by an MTLIOCompression
// context using method.
func (d *Device) NewIOFileHandleWithCompression(path string, method IOCompressionMethod) (*IOFileHandle, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	u := foundation.NewFileURL(path)
	defer u.Release()
	obj, err := createWithError("IO file handle", d, "newIOFileHandleWithURL:compressionMethod:error:", u, method)
	return wrap[IOFileHandle](obj), err
}

// IOCommandQueue is an MTLIOCommandQueue. It is safe for concurrent use.
type IOCommandQueue struct {
	*objc.Object
}

func (d *Device) NewIOCommandQueue(desc *IOCommandQueueDescriptor) (*IOCommandQueue, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "IO command queue", Err: errNilDescriptor}
	}
	obj, err := createWithError("IO command queue", d, "newIOCommandQueueWithDescriptor:error:", desc)
	return wrap[IOCommandQueue](obj), err
}

func (q *IOCommandQueue) Label() string     { return label(q) }
func (q *IOCommandQueue) SetLabel(s string) { setLabel(q, s) }

func (q *IOCommandQueue) CommandBuffer() (*IOCommandBuffer, error) {
	obj, err := created("IO command buffer", objc.Send(q, "commandBuffer"))
	return wrap[IOCommandBuffer](obj), err
}

// EnqueueBarrier makes command buffers enqueued later wait for every earlier
// one.
func (q *IOCommandQueue) EnqueueBarrier() { objc.SendVoid(q, "enqueueBarrier") }

// IOCommandBuffer is an MTLIOCommandBuffer: a batch of file loads executed
// together.
type IOCommandBuffer struct {
	*objc.Object
}

func (cb *IOCommandBuffer) Label() string     { return label(cb) }
func (cb *IOCommandBuffer) SetLabel(s string) { setLabel(cb, s) }

// LoadBuffer copies size bytes at handleOffset in handle into buffer at
// offset.
func (cb *IOCommandBuffer) LoadBuffer(buffer *Buffer, offset, size uint, handle *IOFileHandle, handleOffset uint) {
	objc.SendVoid(cb, "loadBuffer:offset:size:sourceHandle:sourceHandleOffset:",
		buffer, offset, size, handle, handleOffset)
}

// LoadBytes copies size bytes into memory at dst, which must stay valid
// until the command buffer completes. dst must not point into Go-managed
// memory; use the contents of a shared Buffer or memory from C.
func (cb *IOCommandBuffer) LoadBytes(dst unsafe.Pointer, size uint, handle *IOFileHandle, handleOffset uint) {
	objc.SendVoid(cb, "loadBytes:size:sourceHandle:sourceHandleOffset:", dst, size, handle, handleOffset)
}

func (cb *IOCommandBuffer) AddBarrier() { objc.SendVoid(cb, "addBarrier") }
func (cb *IOCommandBuffer) Commit()     { objc.SendVoid(cb, "commit") }
func (cb *IOCommandBuffer) Enqueue()    { objc.SendVoid(cb, "enqueue") }
func (cb *IOCommandBuffer) TryCancel()  { objc.SendVoid(cb, "tryCancel") }

func (cb *IOCommandBuffer) WaitUntilCompleted() { objc.SendVoid(cb, "waitUntilCompleted") }

func (cb *IOCommandBuffer) Status() IOStatus { return IOStatus(objc.SendInt(cb, "status")) }

// Error returns the failure of a buffer whose status is IOStatusError, or
// nil.
func (cb *IOCommandBuffer) Error() error { return nsError(cb, "error") }

func (cb *IOCommandBuffer) SignalEvent(e *SharedEvent, value uint64) {
	objc.SendVoid(cb, "signalEvent:value:", e, value)
}

func (cb *IOCommandBuffer) WaitForEvent(e *SharedEvent, value uint64) {
	objc.SendVoid(cb, "waitForEvent:value:", e, value)
}

// AddCompletedHandler registers handler to run when the loads finish. It
// must be called before Commit.
func (cb *IOCommandBuffer) AddCompletedHandler(handler func(*IOCommandBuffer)) {
	block := objc.NewBlock(func(a, _ uintptr) {
		borrowed := wrap[IOCommandBuffer](objc.Retain(objc.ID(a)))
		defer borrowed.Release()
		handler(borrowed)
	})
	if block == nil {
		return
	}
	defer block.Release()
	objc.SendVoid(cb, "addCompletedHandler:", block)
}

// Wait blocks until a committed buffer finishes or ctx is done, and returns
// the buffer's error if it failed. A buffer still running when ctx ends is
// cancelled.
func (cb *IOCommandBuffer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	held := Clone(cb)
	go func() {
		defer held.Release()
		held.WaitUntilCompleted()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		cb.TryCancel()
		return ctx.Err()
	}
	switch cb.Status() {
	case IOStatusComplete:
		return nil
	case IOStatusCancelled:
		return context.Canceled
	}
	if err := cb.Error(); err != nil {
		return fmt.Errorf("IO command buffer: %w", err)
	}
	return fmt.Errorf("IO command buffer finished with status %s", cb.Status())
}
