package async

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
	"github.com/tsawler/go-mtl/objc/objctest"
)

// fakeQueue scripts a device whose command buffers run blits when they
// complete. With hold set, completion waits in a goroutine until hold is
// closed, the way the GPU finishes work after commit returns.
type fakeQueue struct {
	rt *objctest.Runtime

	mu       sync.Mutex
	memory   map[objc.ID][]byte
	blits    map[objc.ID][]func()
	handlers map[objc.ID][]objc.ID
	done     map[objc.ID]chan struct{}
	hold     chan struct{}
	failing  bool
	commits  int
}

func newFakeQueue(t *testing.T) (*fakeQueue, *metal_bridge.Device, *metal_bridge.CommandQueue) {
	t.Helper()
	f := &fakeQueue{
		rt:       objctest.Install(t),
		memory:   make(map[objc.ID][]byte),
		blits:    make(map[objc.ID][]func()),
		handlers: make(map[objc.ID][]objc.ID),
		done:     make(map[objc.ID]chan struct{}),
	}
	rt := f.rt
	rt.Function("MTLCreateSystemDefaultDevice", func() objc.ID { return rt.NewObject("MTLDevice") })
	rt.Handle("MTLDevice.newBufferWithLength:options:", func(self objc.ID, args []uintptr) uintptr {
		id := rt.NewObject("MTLBuffer")
		f.mu.Lock()
		f.memory[id] = make([]byte, args[0])
		f.mu.Unlock()
		return uintptr(id)
	})
	rt.Handle("MTLBuffer.length", func(self objc.ID, args []uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return uintptr(len(f.memory[self]))
	})
	rt.Handle("MTLBuffer.contents", func(self objc.ID, args []uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		return uintptr(unsafe.Pointer(unsafe.SliceData(f.memory[self])))
	})
	rt.Handle("MTLDevice.newCommandQueue", func(self objc.ID, args []uintptr) uintptr {
		q := rt.NewObject("MTLCommandQueue")
		objc.SendVoid(q, "setDevice:", self)
		return uintptr(q)
	})
	rt.Handle("MTLCommandQueue.commandBuffer", func(self objc.ID, args []uintptr) uintptr {
		return uintptr(rt.Autorelease(rt.NewObject("MTLCommandBuffer")))
	})
	encoders := make(map[objc.ID]objc.ID)
	rt.Handle("MTLCommandBuffer.blitCommandEncoder", func(self objc.ID, args []uintptr) uintptr {
		enc := rt.NewObject("MTLBlitCommandEncoder")
		f.mu.Lock()
		encoders[enc] = self
		f.mu.Unlock()
		return uintptr(rt.Autorelease(enc))
	})
	rt.Handle("MTLBlitCommandEncoder.copyFromBuffer:sourceOffset:toBuffer:destinationOffset:size:", func(self objc.ID, args []uintptr) uintptr {
		src, srcOff, dst, dstOff, size := objc.ID(args[0]), args[1], objc.ID(args[2]), args[3], args[4]
		f.mu.Lock()
		defer f.mu.Unlock()
		cb := encoders[self]
		f.blits[cb] = append(f.blits[cb], func() {
			copy(f.memory[dst][dstOff:dstOff+size], f.memory[src][srcOff:srcOff+size])
		})
		return 0
	})
	rt.Handle("MTLCommandBuffer.addCompletedHandler:", func(self objc.ID, args []uintptr) uintptr {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handlers[self] = append(f.handlers[self], rt.Retain(objc.ID(args[0])))
		return 0
	})
	rt.Handle("MTLCommandBuffer.commit", func(self objc.ID, args []uintptr) uintptr {
		// Metal keeps a committed buffer alive until it completes.
		rt.Retain(self)
		f.mu.Lock()
		blits := f.blits[self]
		delete(f.blits, self)
		handlers := f.handlers[self]
		delete(f.handlers, self)
		hold, failing := f.hold, f.failing
		done := make(chan struct{})
		f.done[self] = done
		f.commits++
		f.mu.Unlock()

		complete := func() {
			if hold != nil {
				<-hold
			}
			if failing {
				nsErr := rt.NewError("MTLCommandBufferErrorDomain", int(metal_bridge.CommandBufferErrorInternal), "internal error")
				objc.SendVoid(self, "setError:", nsErr)
				rt.Release(nsErr)
				objc.SendVoid(self, "setStatus:", metal_bridge.CommandBufferStatusError)
			} else {
				f.mu.Lock()
				for _, blit := range blits {
					blit()
				}
				f.mu.Unlock()
				objc.SendVoid(self, "setStatus:", metal_bridge.CommandBufferStatusCompleted)
			}
			for _, h := range handlers {
				rt.CallBlock(h, uintptr(self), 0)
				rt.Release(h)
			}
			close(done)
			rt.Release(self)
		}
		if hold != nil {
			go complete()
		} else {
			complete()
		}
		return 0
	})
	rt.Handle("MTLCommandBuffer.waitUntilCompleted", func(self objc.ID, args []uintptr) uintptr {
		f.mu.Lock()
		done := f.done[self]
		f.mu.Unlock()
		if done != nil {
			<-done
		}
		return 0
	})

	device, err := metal_bridge.SystemDefaultDevice()
	require.NoError(t, err)
	t.Cleanup(device.Release)
	queue, err := device.NewCommandQueue()
	require.NoError(t, err)
	t.Cleanup(queue.Release)
	return f, device, queue
}

// holdCompletions makes command buffers committed from now on wait for the
// returned release func.
func (f *fakeQueue) holdCompletions() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hold := make(chan struct{})
	f.hold = hold
	return func() {
		f.mu.Lock()
		f.hold = nil
		f.mu.Unlock()
		close(hold)
	}
}

func (f *fakeQueue) setFailing(b bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = b
}

func (f *fakeQueue) bytes(b *metal_bridge.Buffer) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.memory[b.ObjectID()]...)
}

func (f *fakeQueue) commitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}
