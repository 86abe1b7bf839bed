package metal_bridge

import (
	"fmt"
	"sync"
	"unsafe"
)

// DefaultKernels are the kernels in MetalKernelSource that NewComputeEngine
// compiles up front.
var DefaultKernels = []string{
	"vadd_f32",
	"vadd_i32",
	"vmul_f32",
	"vmul_i32",
	"relu_f32",
	"relu_i32",
	"sigmoid_f32",
	"matmul_f32",
}

// ComputeEngine runs the element-wise and matrix kernels of a library on one
// command queue. Pipelines are compiled on first use and cached. It is safe
// for concurrent use.
type ComputeEngine struct {
	device  *Device
	queue   *CommandQueue
	library *Library

	mu        sync.Mutex
	kernels   map[string]*Function
	pipelines map[string]*ComputePipelineState
}

// NewComputeEngine compiles MetalKernelSource on the system default device
// and loads DefaultKernels.
func NewComputeEngine() (*ComputeEngine, error) {
	device, err := SystemDefaultDevice()
	if err != nil {
		return nil, fmt.Errorf("failed to create Metal device: %w", err)
	}
	defer device.Release()

	library, err := device.NewLibraryWithSource(MetalKernelSource, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Metal library: %w", err)
	}
	defer library.Release()

	engine, err := NewComputeEngineWithLibrary(device, library)
	if err != nil {
		return nil, err
	}
	for _, name := range DefaultKernels {
		if err := engine.LoadKernel(name); err != nil {
			engine.Close()
			return nil, fmt.Errorf("failed to load kernel %s: %w", name, err)
		}
	}
	return engine, nil
}

// NewComputeEngineWithLibrary runs kernels from library, which may have been
// compiled from MSL or translated from WGSL. The engine keeps its own
// references to device and library.
func NewComputeEngineWithLibrary(device *Device, library *Library) (*ComputeEngine, error) {
	if err := device.check(); err != nil {
		return nil, err
	}
	if library == nil || library.IsNil() {
		return nil, fmt.Errorf("compute engine needs a library")
	}
	queue, err := device.NewCommandQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to create command queue: %w", err)
	}
	queue.SetLabel("go-mtl compute engine")
	return &ComputeEngine{
		device:    Clone(device),
		queue:     queue,
		library:   Clone(library),
		kernels:   make(map[string]*Function),
		pipelines: make(map[string]*ComputePipelineState),
	}, nil
}

func (e *ComputeEngine) Device() *Device { return e.device }

// Close releases the engine's Metal objects. Work already committed still
// completes.
func (e *ComputeEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, p := range e.pipelines {
		p.Release()
		delete(e.pipelines, name)
	}
	for name, f := range e.kernels {
		f.Release()
		delete(e.kernels, name)
	}
	e.queue.Release()
	e.library.Release()
	e.device.Release()
}

// LoadKernel compiles kernelName into a pipeline if it isn't cached yet.
func (e *ComputeEngine) LoadKernel(kernelName string) error {
	_, err := e.pipeline(kernelName)
	return err
}

func (e *ComputeEngine) pipeline(kernelName string) (*ComputePipelineState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.pipelines[kernelName]; ok {
		return p, nil
	}

	function, err := e.library.NewFunction(kernelName)
	if err != nil {
		return nil, err
	}
	pipeline, err := e.device.NewComputePipelineStateWithFunction(function)
	if err != nil {
		function.Release()
		return nil, fmt.Errorf("failed to create pipeline state for %s: %w", kernelName, err)
	}
	logger().Debug("compiled compute pipeline",
		"kernel", kernelName,
		"threadExecutionWidth", pipeline.ThreadExecutionWidth(),
		"maxTotalThreadsPerThreadgroup", pipeline.MaxTotalThreadsPerThreadgroup())

	e.kernels[kernelName] = function
	e.pipelines[kernelName] = pipeline
	return pipeline, nil
}

// threadgroupSize picks a threadgroup for a 1D or 2D grid from the
// pipeline's SIMD width and thread limit.
func threadgroupSize(p *ComputePipelineState, twoD bool) Size {
	width := p.ThreadExecutionWidth()
	if width == 0 {
		width = 32
	}
	limit := p.MaxTotalThreadsPerThreadgroup()
	if limit == 0 {
		limit = 64
	}
	if !twoD {
		if limit < 64 {
			return Size{Width: limit, Height: 1, Depth: 1}
		}
		return Size{Width: 64, Height: 1, Depth: 1}
	}
	if width > limit {
		width = limit
	}
	return Size{Width: width, Height: max(limit/width, 1), Depth: 1}
}

// dispatch is one kernel launch: the pipeline, its grid and its arguments.
type dispatch struct {
	kernel  string
	grid    Size
	twoD    bool
	buffers []*Buffer
	bytes   [][]byte
}

// encode records d into a new command buffer.
func (e *ComputeEngine) encode(d dispatch) (*CommandBuffer, error) {
	pipeline, err := e.pipeline(d.kernel)
	if err != nil {
		return nil, err
	}

	commandBuffer, err := e.queue.CommandBuffer()
	if err != nil {
		return nil, err
	}
	commandBuffer.SetLabel(d.kernel)

	encoder, err := commandBuffer.ComputeCommandEncoder()
	if err != nil {
		commandBuffer.Release()
		return nil, err
	}
	defer encoder.Release()

	encoder.SetComputePipelineState(pipeline)
	for i, buffer := range d.buffers {
		encoder.SetBuffer(buffer, 0, uint(i))
	}
	for i, b := range d.bytes {
		encoder.SetBytes(b, uint(len(d.buffers)+i))
	}
	encoder.DispatchThreads(d.grid, threadgroupSize(pipeline, d.twoD))
	encoder.EndEncoding()
	return commandBuffer, nil
}

// run executes d and waits for it.
func (e *ComputeEngine) run(d dispatch) error {
	commandBuffer, err := e.encode(d)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	commandBuffer.Commit()
	commandBuffer.WaitUntilCompleted()
	if status := commandBuffer.Status(); status != CommandBufferStatusCompleted {
		if err := commandBuffer.Error(); err != nil {
			return fmt.Errorf("kernel %s: %w", d.kernel, err)
		}
		return fmt.Errorf("kernel %s finished with status %s", d.kernel, status)
	}
	return nil
}

// RunAsync launches kernelName over count threads with buffers bound at
// indices 0..n-1 and returns without waiting. completion, if not nil, runs
// on a Metal thread with the command buffer's error.
func (e *ComputeEngine) RunAsync(kernelName string, count uint, completion func(error), buffers ...*Buffer) error {
	commandBuffer, err := e.encode(dispatch{
		kernel:  kernelName,
		grid:    Size{Width: count, Height: 1, Depth: 1},
		buffers: buffers,
	})
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	if completion != nil {
		commandBuffer.AddCompletedHandler(func(cb *CommandBuffer) {
			completion(cb.Error())
		})
	}
	commandBuffer.Commit()
	return nil
}

// element is an element type the built-in kernels are compiled for.
type element interface {
	~float32 | ~int32
}

// newSharedBuffer copies values into a shared buffer.
func newSharedBuffer[T element](d *Device, values []T) (*Buffer, error) {
	return d.NewBufferWithBytes(AsBytes(values), ResourceStorageModeShared)
}

// readBuffer copies the first n values out of a shared buffer.
func readBuffer[T element](b *Buffer, n int) []T {
	out := make([]T, n)
	if p := b.Contents(); p != nil && n > 0 {
		copy(out, unsafe.Slice((*T)(p), n))
	}
	return out
}

// elementwise runs a kernel reading len(inputs) arrays and writing one.
func elementwise[T element](e *ComputeEngine, kernel string, inputs ...[]T) ([]T, error) {
	n := len(inputs[0])
	for _, in := range inputs[1:] {
		if len(in) != n {
			return nil, fmt.Errorf("input arrays must have same length")
		}
	}
	if n == 0 {
		return []T{}, nil
	}

	buffers := make([]*Buffer, 0, len(inputs)+1)
	defer func() {
		for _, b := range buffers {
			b.Release()
		}
	}()
	for i, in := range inputs {
		b, err := newSharedBuffer(e.device, in)
		if err != nil {
			return nil, fmt.Errorf("failed to create input buffer %d: %w", i, err)
		}
		buffers = append(buffers, b)
	}
	var zero T
	result, err := e.device.NewBuffer(uint(n)*uint(unsafe.Sizeof(zero)), ResourceStorageModeShared)
	if err != nil {
		return nil, fmt.Errorf("failed to create result buffer: %w", err)
	}
	buffers = append(buffers, result)

	if err := e.run(dispatch{kernel: kernel, grid: Size{Width: uint(n), Height: 1, Depth: 1}, buffers: buffers}); err != nil {
		return nil, fmt.Errorf("failed to execute kernel: %w", err)
	}
	return readBuffer[T](result, n), nil
}

// AddArraysFloat32 performs element-wise addition of two float32 arrays on GPU
func (e *ComputeEngine) AddArraysFloat32(inputA, inputB []float32) ([]float32, error) {
	return elementwise(e, "vadd_f32", inputA, inputB)
}

// AddArraysInt32 performs element-wise addition of two int32 arrays on GPU
func (e *ComputeEngine) AddArraysInt32(inputA, inputB []int32) ([]int32, error) {
	return elementwise(e, "vadd_i32", inputA, inputB)
}

func (e *ComputeEngine) MulArraysFloat32(inputA, inputB []float32) ([]float32, error) {
	return elementwise(e, "vmul_f32", inputA, inputB)
}

func (e *ComputeEngine) MulArraysInt32(inputA, inputB []int32) ([]int32, error) {
	return elementwise(e, "vmul_i32", inputA, inputB)
}

// ReLUFloat32 applies ReLU activation to float32 array on GPU
func (e *ComputeEngine) ReLUFloat32(input []float32) ([]float32, error) {
	return elementwise(e, "relu_f32", input)
}

func (e *ComputeEngine) ReLUInt32(input []int32) ([]int32, error) {
	return elementwise(e, "relu_i32", input)
}

func (e *ComputeEngine) SigmoidFloat32(input []float32) ([]float32, error) {
	return elementwise(e, "sigmoid_f32", input)
}

// MatMulFloat32 multiplies the row-major M×N matrix A by the N×P matrix B.
func (e *ComputeEngine) MatMulFloat32(matrixA, matrixB []float32, M, N, P uint) ([]float32, error) {
	if len(matrixA) != int(M*N) {
		return nil, fmt.Errorf("matrix A size mismatch: expected %d, got %d", M*N, len(matrixA))
	}
	if len(matrixB) != int(N*P) {
		return nil, fmt.Errorf("matrix B size mismatch: expected %d, got %d", N*P, len(matrixB))
	}
	if M == 0 || P == 0 {
		return []float32{}, nil
	}
	if N == 0 {
		return make([]float32, M*P), nil
	}

	bufferA, err := newSharedBuffer(e.device, matrixA)
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer A: %w", err)
	}
	defer bufferA.Release()
	bufferB, err := newSharedBuffer(e.device, matrixB)
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer B: %w", err)
	}
	defer bufferB.Release()
	bufferResult, err := e.device.NewBuffer(M*P*4, ResourceStorageModeShared)
	if err != nil {
		return nil, fmt.Errorf("failed to create result buffer: %w", err)
	}
	defer bufferResult.Release()

	err = e.run(dispatch{
		kernel:  "matmul_f32",
		grid:    Size{Width: P, Height: M, Depth: 1},
		twoD:    true,
		buffers: []*Buffer{bufferA, bufferB, bufferResult},
		bytes:   [][]byte{AsBytes([]uint32{uint32(M), uint32(N), uint32(P)})},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute matmul kernel: %w", err)
	}
	return readBuffer[float32](bufferResult, int(M*P)), nil
}
