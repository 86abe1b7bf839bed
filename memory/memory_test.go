package memory

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
	"github.com/tsawler/go-mtl/objc/objctest"
)

var shared = metal_bridge.ResourceStorageModeShared

// fakeDevice scripts a device whose buffers are Go memory and whose blits
// run when committed.
type fakeDevice struct {
	rt     *objctest.Runtime
	mu     sync.Mutex
	memory map[objc.ID][]byte
	blits  map[objc.ID][]func()
}

func newFakeDevice(t *testing.T) (*fakeDevice, *metal_bridge.Device) {
	t.Helper()
	f := &fakeDevice{
		rt:     objctest.Install(t),
		memory: make(map[objc.ID][]byte),
		blits:  make(map[objc.ID][]func()),
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
		return uintptr(rt.NewObject("MTLCommandQueue"))
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
	rt.Handle("MTLCommandBuffer.commit", func(self objc.ID, args []uintptr) uintptr {
		f.mu.Lock()
		for _, blit := range f.blits[self] {
			blit()
		}
		delete(f.blits, self)
		f.mu.Unlock()
		objc.SendVoid(self, "setStatus:", metal_bridge.CommandBufferStatusCompleted)
		return 0
	})

	device, err := metal_bridge.SystemDefaultDevice()
	require.NoError(t, err)
	t.Cleanup(device.Release)
	return f, device
}

// TestDataType tests DataType constants and behavior
func TestDataType(t *testing.T) {
	// Test DataType values
	if Float32 != 0 {
		t.Errorf("Expected Float32 to be 0, got %d", Float32)
	}
	if Int32 != 1 {
		t.Errorf("Expected Int32 to be 1, got %d", Int32)
	}
	if Float16 != 2 {
		t.Errorf("Expected Float16 to be 2, got %d", Float16)
	}
	if Int8 != 3 {
		t.Errorf("Expected Int8 to be 3, got %d", Int8)
	}

	assert.Equal(t, "Float16", Float16.String())
	assert.Equal(t, "DataType(99)", DataType(99).String())
	assert.Equal(t, metal_bridge.TensorDataTypeInt8, Int8.MetalType())
	assert.Equal(t, metal_bridge.TensorDataTypeNone, DataType(99).MetalType())
}

// TestCalculateSize tests the calculateSize function
func TestCalculateSize(t *testing.T) {
	tests := []struct {
		name     string
		shape    []int
		dtype    DataType
		expected int
	}{
		{"empty_shape", []int{}, Float32, 0},
		{"scalar", []int{1}, Float32, 4},
		{"vector", []int{10}, Float32, 40},
		{"matrix", []int{3, 4}, Float32, 48},
		{"tensor_3d", []int{2, 3, 4}, Float32, 96},
		{"int32_vector", []int{10}, Int32, 40},
		{"float16_vector", []int{10}, Float16, 20},
		{"int8_vector", []int{10}, Int8, 10},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := calculateSize(test.shape, test.dtype)
			if err != nil {
				t.Fatalf("calculateSize(%v, %s) failed: %v", test.shape, test.dtype, err)
			}
			if result != test.expected {
				t.Errorf("calculateSize(%v, %s) = %d; expected %d",
					test.shape, test.dtype, result, test.expected)
			}
		})
	}
}

func TestCalculateSizeErrors(t *testing.T) {
	_, err := calculateSize([]int{10}, DataType(99))
	assert.ErrorContains(t, err, "unsupported data type")
	_, err = calculateSize([]int{2, -1}, Float32)
	assert.ErrorContains(t, err, "negative dimension")
}

// TestMemoryManagerCreation tests memory manager creation
func TestMemoryManagerCreation(t *testing.T) {
	f, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	if mm.device.ObjectID() != device.ObjectID() {
		t.Error("Memory manager should have correct device")
	}
	if mm.pools == nil {
		t.Error("Memory manager pools should be initialized")
	}
	if mm.bufferSizes == nil {
		t.Error("Memory manager bufferSizes should be initialized")
	}
	if len(mm.poolSizes) == 0 {
		t.Error("Memory manager should have default pool sizes")
	}
	assert.Equal(t, 2, f.rt.RetainCount(device.ObjectID()))
}

// TestBufferPoolCreation tests buffer pool creation
func TestBufferPoolCreation(t *testing.T) {
	_, device := newFakeDevice(t)
	pool := NewBufferPool(device, 1024, 10, shared)
	defer pool.Close()

	if pool.bufferSize != 1024 {
		t.Errorf("Expected buffer size 1024, got %d", pool.bufferSize)
	}
	if pool.maxSize != 10 {
		t.Errorf("Expected max size 10, got %d", pool.maxSize)
	}
	if pool.options != shared {
		t.Errorf("Expected options %s, got %s", shared, pool.options)
	}
	if pool.allocated != 0 {
		t.Errorf("Expected allocated count 0, got %d", pool.allocated)
	}
}

func TestBufferPoolGetReturn(t *testing.T) {
	f, device := newFakeDevice(t)
	pool := NewBufferPool(device, 256, 2, shared)

	a, err := pool.Get()
	require.NoError(t, err)
	assert.EqualValues(t, 256, a.Length())
	b, err := pool.Get()
	require.NoError(t, err)

	_, err = pool.Get()
	assert.ErrorIs(t, err, ErrPoolExhausted)

	pool.Return(a)
	available, allocated, maxSize := pool.Stats()
	assert.Equal(t, 1, available)
	assert.Equal(t, 2, allocated)
	assert.Equal(t, 2, maxSize)

	// The idle buffer is handed out again.
	again, err := pool.Get()
	require.NoError(t, err)
	assert.Equal(t, a.ObjectID(), again.ObjectID())

	aID, bID := a.ObjectID(), b.ObjectID()
	pool.Return(again)
	pool.Return(b)
	pool.Return(nil)
	pool.Close()
	assert.False(t, f.rt.Alive(aID))
	assert.False(t, f.rt.Alive(bID))
	assert.Equal(t, 1, f.rt.RetainCount(device.ObjectID()))
}

func TestBufferPoolReturnAfterClose(t *testing.T) {
	f, device := newFakeDevice(t)
	pool := NewBufferPool(device, 64, 2, shared)

	a, err := pool.Get()
	require.NoError(t, err)
	id := a.ObjectID()
	pool.Close()
	pool.Close()
	assert.True(t, f.rt.Alive(id), "checked-out buffers survive Close")

	pool.Return(a)
	assert.False(t, f.rt.Alive(id))
	available, allocated, _ := pool.Stats()
	assert.Equal(t, 0, available)
	assert.Equal(t, 0, allocated)

	_, err = pool.Get()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 1, f.rt.RetainCount(device.ObjectID()))
}

func TestBufferPoolReleasesWhenFull(t *testing.T) {
	f, device := newFakeDevice(t)
	pool := NewBufferPool(device, 64, 1, shared)
	defer pool.Close()

	a, err := pool.Get()
	require.NoError(t, err)
	extra, err := device.NewBuffer(64, shared)
	require.NoError(t, err)

	extraID := extra.ObjectID()
	pool.Return(a)
	pool.Return(extra)
	assert.True(t, f.rt.Alive(a.ObjectID()))
	assert.False(t, f.rt.Alive(extraID))
}

// TestMemoryManagerFindPoolSize tests pool size selection
func TestMemoryManagerFindPoolSize(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	tests := []struct {
		size     int
		expected int
	}{
		{1, 1024},
		{1024, 1024},
		{1025, 4096},
		{50000, 65536},
		{67108864, 67108864},
		{100000000, 100000000},
	}
	for _, test := range tests {
		if got := mm.findPoolSize(test.size); got != test.expected {
			t.Errorf("findPoolSize(%d) = %d; expected %d", test.size, got, test.expected)
		}
	}
}

// TestCalculateMaxPoolSize tests pool capacity by buffer size
func TestCalculateMaxPoolSize(t *testing.T) {
	tests := []struct {
		size     int
		expected int
	}{
		{1024, 100},
		{4096, 100},
		{65536, 50},
		{1048576, 20},
		{16777216, 10},
		{67108864, 5},
	}
	for _, test := range tests {
		if got := calculateMaxPoolSize(test.size); got != test.expected {
			t.Errorf("calculateMaxPoolSize(%d) = %d; expected %d", test.size, got, test.expected)
		}
	}
}

func TestMemoryManagerGetReturn(t *testing.T) {
	f, device := newFakeDevice(t)
	mm := NewMemoryManager(device)

	buf, err := mm.GetBuffer(1000, shared)
	require.NoError(t, err)
	assert.EqualValues(t, 1024, buf.Length())

	private, err := mm.GetBuffer(1000, metal_bridge.ResourceStorageModePrivate)
	require.NoError(t, err)

	stats := mm.Stats()
	assert.Len(t, stats, 2)
	assert.Equal(t, "available=0, allocated=1, max=100", stats[PoolKey{Size: 1024, Options: shared}])

	mm.ReturnBuffer(buf)
	assert.Equal(t, "available=1, allocated=1, max=100", mm.Stats()[PoolKey{Size: 1024, Options: shared}])

	reused, err := mm.GetBuffer(512, shared)
	require.NoError(t, err)
	assert.Equal(t, buf.ObjectID(), reused.ObjectID())
	mm.ReturnBuffer(reused)

	_, err = mm.GetBuffer(0, shared)
	assert.Error(t, err)

	// Buffers the manager never handed out are released.
	stray, err := device.NewBuffer(16, shared)
	require.NoError(t, err)
	strayID := stray.ObjectID()
	mm.ReturnBuffer(stray)
	assert.False(t, f.rt.Alive(strayID))

	bufID, privateID := buf.ObjectID(), private.ObjectID()
	mm.Close()
	assert.False(t, f.rt.Alive(bufID))
	assert.True(t, f.rt.Alive(privateID))

	// Checked-out buffers are released on return after Close.
	mm.ReturnBuffer(private)
	assert.False(t, f.rt.Alive(privateID))
	assert.Equal(t, 1, f.rt.RetainCount(device.ObjectID()))

	_, err = mm.GetBuffer(16, shared)
	assert.ErrorIs(t, err, ErrClosed)
	mm.Close()
}

func TestMemoryManagerConcurrentAccess(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				buf, err := mm.GetBuffer(512*(id%3+1), shared)
				if err != nil {
					t.Errorf("GetBuffer failed: %v", err)
					return
				}
				mm.ReturnBuffer(buf)
			}
		}(i)
	}
	wg.Wait()

	for key, stat := range mm.Stats() {
		assert.Contains(t, stat, "available=", key.String())
	}
}

func TestTensorCreation(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	tests := []struct {
		name  string
		shape []int
		dtype DataType
		size  int
	}{
		{"float32_vector", []int{10}, Float32, 40},
		{"int32_matrix", []int{3, 4}, Int32, 48},
		{"float16_tensor", []int{2, 3, 4}, Float16, 48},
		{"int8_scalar", []int{1}, Int8, 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tensor, err := NewTensor(mm, test.shape, test.dtype, shared)
			if err != nil {
				t.Fatalf("Failed to create tensor: %v", err)
			}
			defer tensor.Release()

			if tensor.DType() != test.dtype {
				t.Errorf("Expected dtype %s, got %s", test.dtype, tensor.DType())
			}
			assert.Equal(t, test.shape, tensor.Shape())
			assert.Equal(t, test.size, tensor.Size())
			assert.EqualValues(t, 1, tensor.RefCount())
			assert.Equal(t, shared, tensor.Options())
			assert.GreaterOrEqual(t, int(tensor.Buffer().Length()), test.size)
		})
	}

	_, err := NewTensor(mm, nil, Float32, shared)
	assert.Error(t, err)
	_, err = NewTensor(mm, []int{4}, DataType(42), shared)
	assert.Error(t, err)
}

// TestTensorReferenceCountingBasic tests basic reference counting
func TestTensorReferenceCountingBasic(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	tensor, err := NewTensor(mm, []int{10}, Float32, shared)
	if err != nil {
		t.Fatalf("Failed to create tensor: %v", err)
	}
	buf := tensor.Buffer()

	tensor2 := tensor.Retain()
	if tensor2 != tensor {
		t.Error("Retain should return the same tensor")
	}
	tensor3 := tensor.Clone()
	if tensor.RefCount() != 3 {
		t.Errorf("Expected ref count 3 after clone, got %d", tensor.RefCount())
	}

	tensor2.Release()
	tensor3.Release()
	if tensor.RefCount() != 1 {
		t.Errorf("Expected ref count 1 after two releases, got %d", tensor.RefCount())
	}

	tensor.Release()
	assert.EqualValues(t, 0, tensor.RefCount())
	assert.Nil(t, tensor.Shape())
	tensor.Release()

	// The buffer went back to its pool.
	reused, err := mm.GetBuffer(40, shared)
	require.NoError(t, err)
	assert.Equal(t, buf.ObjectID(), reused.ObjectID())
	mm.ReturnBuffer(reused)

	assert.Panics(t, func() { tensor.Retain() })
	assert.Panics(t, func() { tensor.Buffer() })
}

// TestTensorReferenceCountingConcurrent tests concurrent reference counting
func TestTensorReferenceCountingConcurrent(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	tensor, err := NewTensor(mm, []int{100}, Float32, shared)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tensor.Retain()
				runtime.Gosched()
				tensor.Release()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, tensor.RefCount())
	tensor.Release()
}

// TestTensorDataOperations tests host copies in and out of shared tensors
func TestTensorDataOperations(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	f, err := NewTensor(mm, []int{2, 2}, Float32, shared)
	require.NoError(t, err)
	defer f.Release()
	require.NoError(t, f.CopyFloat32Data([]float32{1.5, 2.5, 3.5, 4.5}))
	got, err := f.ToFloat32Slice()
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, 2.5, 3.5, 4.5}, got)

	assert.ErrorContains(t, f.CopyFloat32Data([]float32{1}), "doesn't match tensor shape")
	assert.ErrorContains(t, f.CopyInt32Data([]int32{1, 2, 3, 4}), "expected Int32")
	_, err = f.ToInt32Slice()
	assert.Error(t, err)

	i, err := NewTensor(mm, []int{3}, Int32, shared)
	require.NoError(t, err)
	defer i.Release()
	require.NoError(t, i.CopyInt32Data([]int32{-1, 0, 7}))
	ints, err := i.ToInt32Slice()
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, 0, 7}, ints)

	private, err := NewTensor(mm, []int{4}, Float32, metal_bridge.ResourceStorageModePrivate)
	require.NoError(t, err)
	defer private.Release()
	assert.ErrorContains(t, private.CopyFloat32Data([]float32{1, 2, 3, 4}), "not CPU-accessible")
}

// TestTensorConvertTo tests CPU type conversion
func TestTensorConvertTo(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	src, err := NewTensor(mm, []int{4}, Float32, shared)
	require.NoError(t, err)
	defer src.Release()
	require.NoError(t, src.CopyFloat32Data([]float32{1.9, -2.2, 0, 40}))

	same, err := src.ConvertTo(Float32)
	require.NoError(t, err)
	assert.Same(t, src, same)
	assert.EqualValues(t, 2, src.RefCount())
	same.Release()

	ints, err := src.ConvertTo(Int32)
	require.NoError(t, err)
	defer ints.Release()
	got, err := ints.ToInt32Slice()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -2, 0, 40}, got)

	back, err := ints.ConvertTo(Float32)
	require.NoError(t, err)
	defer back.Release()
	floats, err := back.ToFloat32Slice()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2, 0, 40}, floats)

	_, err = src.ConvertTo(Float16)
	assert.ErrorContains(t, err, "no conversion from Float32 to Float16")
}

// TestTensorCopyAPI tests the GPU copy path and its validation
func TestTensorCopyAPI(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()
	queue, err := device.NewCommandQueue()
	require.NoError(t, err)
	defer queue.Release()

	src, err := NewTensor(mm, []int{2, 4}, Float32, shared)
	require.NoError(t, err)
	defer src.Release()
	require.NoError(t, src.CopyFloat32Data([]float32{1, 2, 3, 4, 5, 6, 7, 8}))
	dst, err := NewTensor(mm, []int{2, 4}, Float32, shared)
	require.NoError(t, err)
	defer dst.Release()

	t.Run("CopyFromNilTensor", func(t *testing.T) {
		err := dst.CopyFrom(nil, queue)
		if err == nil || err.Error() != "source tensor is nil" {
			t.Errorf("Expected 'source tensor is nil' error, got: %v", err)
		}
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		other, err := NewTensor(mm, []int{4, 2}, Float32, shared)
		require.NoError(t, err)
		defer other.Release()
		assert.ErrorContains(t, dst.CopyFrom(other, queue), "shapes don't match")
	})

	t.Run("DataTypeMismatch", func(t *testing.T) {
		other, err := NewTensor(mm, []int{2, 4}, Int32, shared)
		require.NoError(t, err)
		defer other.Release()
		assert.ErrorContains(t, dst.CopyFrom(other, queue), "data types don't match")
	})

	t.Run("NilQueue", func(t *testing.T) {
		assert.Error(t, dst.CopyFrom(src, nil))
	})

	t.Run("Blit", func(t *testing.T) {
		require.NoError(t, dst.CopyFrom(src, queue))
		got, err := dst.ToFloat32Slice()
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, got)
	})
}

func TestTensorMetalTensor(t *testing.T) {
	f, device := newFakeDevice(t)
	rt := f.rt
	var offset uintptr
	rt.HandleError("MTLBuffer.newTensorWithDescriptor:offset:error:", func(self objc.ID, args []uintptr) (uintptr, objc.ID) {
		if objc.SendInt(objc.ID(args[0]), "dataType") == 0 {
			return 0, rt.NewError(metal_bridge.TensorDomain, int(metal_bridge.TensorErrorInvalidDescriptor), "no data type")
		}
		offset = args[1]
		return uintptr(rt.NewObject("MTLTensor")), 0
	})

	mm := NewMemoryManager(device)
	defer mm.Close()
	tensor, err := NewTensor(mm, []int{2, 3}, Float32, shared)
	require.NoError(t, err)
	defer tensor.Release()

	mt, err := tensor.MetalTensor(metal_bridge.TensorUsageCompute)
	require.NoError(t, err)
	defer mt.Release()
	assert.Zero(t, offset)

	bad, err := NewTensor(mm, []int{2}, Float16, shared)
	require.NoError(t, err)
	defer bad.Release()
	bad.dtype = DataType(7)
	_, err = bad.MetalTensor(metal_bridge.TensorUsageCompute)
	assert.ErrorIs(t, err, metal_bridge.ErrCreate)
	var nsErr *foundation.Error
	require.True(t, errors.As(err, &nsErr))
	assert.Equal(t, metal_bridge.TensorDomain, nsErr.Domain)
}

// TestTensorString tests the debug representation
func TestTensorString(t *testing.T) {
	_, device := newFakeDevice(t)
	mm := NewMemoryManager(device)
	defer mm.Close()

	tensor, err := NewTensor(mm, []int{2, 3}, Int8, shared)
	require.NoError(t, err)
	defer tensor.Release()
	s := tensor.String()
	assert.Contains(t, s, "shape=[2 3]")
	assert.Contains(t, s, "dtype=Int8")
	assert.Contains(t, s, "refs=1")
}
