package metal_bridge

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-mtl/objc"
	"github.com/tsawler/go-mtl/objc/objctest"
)

// kernelFunc runs a kernel on the CPU. args holds the memory bound at each
// buffer index.
type kernelFunc func(args map[uint][]byte, grid Size)

type fakeEncoding struct {
	kernel string
	args   map[uint][]byte
	grid   Size
}

// fakeGPU scripts a Metal device on the fake runtime. Buffers are Go memory
// and committed command buffers run their kernels as Go functions.
type fakeGPU struct {
	rt *objctest.Runtime

	mu        sync.Mutex
	memory    map[objc.ID][]byte
	kernels   map[string]kernelFunc
	names     map[objc.ID]string
	encodings map[objc.ID]*fakeEncoding
	work      map[objc.ID][]*fakeEncoding
	handlers  map[objc.ID][]objc.ID
	failing   map[string]bool
	committed []string
}

func newFakeGPU(t *testing.T) *fakeGPU {
	g := &fakeGPU{
		rt:        objctest.Install(t),
		memory:    make(map[objc.ID][]byte),
		kernels:   make(map[string]kernelFunc),
		names:     make(map[objc.ID]string),
		encodings: make(map[objc.ID]*fakeEncoding),
		work:      make(map[objc.ID][]*fakeEncoding),
		handlers:  make(map[objc.ID][]objc.ID),
		failing:   make(map[string]bool),
	}
	g.script()
	for name, fn := range cpuKernels {
		g.kernels[name] = fn
	}
	return g
}

// device returns the scripted system default device, released when the test
// ends.
func (g *fakeGPU) device(t *testing.T) *Device {
	d, err := SystemDefaultDevice()
	require.NoError(t, err)
	t.Cleanup(d.Release)
	return d
}

func pointerArg(args []uintptr, i int) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&args[i]))
}

func (g *fakeGPU) script() {
	rt := g.rt
	rt.Function("MTLCreateSystemDefaultDevice", func() objc.ID { return rt.NewObject("MTLDevice") })
	rt.Handle("MTLDevice.newCommandQueue", func(self objc.ID, args []uintptr) uintptr {
		return uintptr(rt.NewObject("MTLCommandQueue"))
	})

	newBuffer := func(mem []byte) uintptr {
		id := rt.NewObject("MTLBuffer")
		g.mu.Lock()
		g.memory[id] = mem
		g.mu.Unlock()
		return uintptr(id)
	}
	rt.Handle("MTLDevice.newBufferWithLength:options:", func(self objc.ID, args []uintptr) uintptr {
		return newBuffer(make([]byte, args[0]))
	})
	rt.Handle("MTLDevice.newBufferWithBytes:length:options:", func(self objc.ID, args []uintptr) uintptr {
		return newBuffer(append([]byte(nil), unsafe.Slice((*byte)(pointerArg(args, 0)), args[1])...))
	})
	rt.Handle("MTLBuffer.length", func(self objc.ID, args []uintptr) uintptr {
		g.mu.Lock()
		defer g.mu.Unlock()
		return uintptr(len(g.memory[self]))
	})
	rt.Handle("MTLBuffer.contents", func(self objc.ID, args []uintptr) uintptr {
		g.mu.Lock()
		defer g.mu.Unlock()
		return uintptr(unsafe.Pointer(unsafe.SliceData(g.memory[self])))
	})

	rt.HandleError("MTLDevice.newLibraryWithSource:options:error:", func(self objc.ID, args []uintptr) (uintptr, objc.ID) {
		return uintptr(rt.NewObject("MTLLibrary")), 0
	})
	rt.Handle("MTLLibrary.newFunctionWithName:", func(self objc.ID, args []uintptr) uintptr {
		name := objc.GoString(objc.ID(args[0]))
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.kernels[name] == nil {
			return 0
		}
		id := rt.NewObject("MTLFunction")
		g.names[id] = name
		return uintptr(id)
	})
	rt.HandleError("MTLDevice.newComputePipelineStateWithFunction:error:", func(self objc.ID, args []uintptr) (uintptr, objc.ID) {
		id := rt.NewObject("MTLComputePipelineState")
		g.mu.Lock()
		g.names[id] = g.names[objc.ID(args[0])]
		g.mu.Unlock()
		return uintptr(id), 0
	})

	rt.Handle("MTLCommandQueue.commandBuffer", func(self objc.ID, args []uintptr) uintptr {
		return uintptr(rt.Autorelease(rt.NewObject("MTLCommandBuffer")))
	})
	rt.Handle("MTLCommandBuffer.computeCommandEncoder", func(self objc.ID, args []uintptr) uintptr {
		enc := rt.NewObject("MTLComputeCommandEncoder")
		e := &fakeEncoding{args: make(map[uint][]byte)}
		g.mu.Lock()
		g.encodings[enc] = e
		g.work[self] = append(g.work[self], e)
		g.mu.Unlock()
		return uintptr(rt.Autorelease(enc))
	})
	rt.Handle("MTLComputeCommandEncoder.setComputePipelineState:", func(self objc.ID, args []uintptr) uintptr {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.encodings[self].kernel = g.names[objc.ID(args[0])]
		return 0
	})
	rt.Handle("MTLComputeCommandEncoder.setBuffer:offset:atIndex:", func(self objc.ID, args []uintptr) uintptr {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.encodings[self].args[uint(args[2])] = g.memory[objc.ID(args[0])][args[1]:]
		return 0
	})
	rt.Handle("MTLComputeCommandEncoder.setBytes:length:atIndex:", func(self objc.ID, args []uintptr) uintptr {
		b := append([]byte(nil), unsafe.Slice((*byte)(pointerArg(args, 0)), args[1])...)
		g.mu.Lock()
		defer g.mu.Unlock()
		g.encodings[self].args[uint(args[2])] = b
		return 0
	})
	rt.HandleInvoke("MTLComputeCommandEncoder.dispatchThreads:threadsPerThreadgroup:", func(self objc.ID, args []unsafe.Pointer, ret unsafe.Pointer) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.encodings[self].grid = *(*Size)(args[0])
	})

	rt.Handle("MTLCommandBuffer.addCompletedHandler:", func(self objc.ID, args []uintptr) uintptr {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.handlers[self] = append(g.handlers[self], rt.Retain(objc.ID(args[0])))
		return 0
	})
	rt.Handle("MTLCommandBuffer.commit", func(self objc.ID, args []uintptr) uintptr {
		g.commit(self)
		return 0
	})
}

// commit runs the command buffer's encodings and completes it, failing it if
// any kernel was marked with fail.
func (g *fakeGPU) commit(cb objc.ID) {
	g.mu.Lock()
	work := g.work[cb]
	delete(g.work, cb)
	handlers := g.handlers[cb]
	delete(g.handlers, cb)
	failed := false
	for _, e := range work {
		g.committed = append(g.committed, e.kernel)
		if g.failing[e.kernel] {
			failed = true
			continue
		}
		if fn := g.kernels[e.kernel]; fn != nil {
			fn(e.args, e.grid)
		}
	}
	g.mu.Unlock()

	status := CommandBufferStatusCompleted
	if failed {
		status = CommandBufferStatusError
		nsErr := g.rt.NewError("MTLCommandBufferErrorDomain", int(CommandBufferErrorPageFault), "kernel faulted")
		objc.SendVoid(cb, "setError:", nsErr)
		g.rt.Release(nsErr)
	}
	objc.SendVoid(cb, "setStatus:", status)
	for _, h := range handlers {
		g.rt.CallBlock(h, uintptr(cb), 0)
		g.rt.Release(h)
	}
}

func (g *fakeGPU) fail(kernel string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing[kernel] = true
}

func (g *fakeGPU) committedKernels() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.committed...)
}

func view[T any](b []byte) []T {
	var zero T
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/int(unsafe.Sizeof(zero)))
}

func binary[T float32 | int32](op func(a, b T) T) kernelFunc {
	return func(args map[uint][]byte, grid Size) {
		a, b, out := view[T](args[0]), view[T](args[1]), view[T](args[2])
		for i := range int(grid.Width) {
			out[i] = op(a[i], b[i])
		}
	}
}

func unary[T float32 | int32](op func(a T) T) kernelFunc {
	return func(args map[uint][]byte, grid Size) {
		in, out := view[T](args[0]), view[T](args[1])
		for i := range int(grid.Width) {
			out[i] = op(in[i])
		}
	}
}

// cpuKernels mirror MetalKernelSource.
var cpuKernels = map[string]kernelFunc{
	"vadd_f32": binary(func(a, b float32) float32 { return a + b }),
	"vadd_i32":   binary(func(a, b int32) int32 { return a + b }),
	"vmul_f32": binary(func(a, b float32) float32 { return a * b }),
	"vmul_i32":   binary(func(a, b int32) int32 { return a * b }),
	"relu_f32":       unary(func(a float32) float32 { return max(a, 0) }),
	"relu_i32":         unary(func(a int32) int32 { return max(a, 0) }),
	"sigmoid_f32":    unary(func(a float32) float32 { return 1 / (1 + math32.Exp(-a)) }),
	"matmul_f32": func(args map[uint][]byte, grid Size) {
		a, b, out := view[float32](args[0]), view[float32](args[1]), view[float32](args[2])
		dims := view[uint32](args[3])
		n, p := int(dims[1]), int(dims[2])
		for row := range int(grid.Height) {
			for col := range int(grid.Width) {
				var sum float32
				for k := range n {
					sum += a[row*n+k] * b[k*p+col]
				}
				out[row*p+col] = sum
			}
		}
	},
}
