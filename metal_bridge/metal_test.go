package metal_bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
	"github.com/tsawler/go-mtl/objc/objctest"
)

func TestSystemDefaultDevice(t *testing.T) {
	rt := objctest.Install(t)
	rt.Function("MTLCreateSystemDefaultDevice", func() objc.ID {
		id := rt.NewObject("MTLDevice")
		objc.SendVoid(id, "setName:", "Fake GPU")
		objc.SendVoid(id, "setHasUnifiedMemory:", true)
		return id
	})

	d, err := SystemDefaultDevice()
	require.NoError(t, err)
	assert.Equal(t, "Fake GPU", d.Name())
	assert.True(t, d.HasUnifiedMemory())
	assert.Equal(t, 1, rt.RetainCount(d.ObjectID()))

	id := d.ObjectID()
	d.Release()
	d.Release()
	assert.False(t, rt.Alive(id))
	assert.True(t, d.IsNil())
}

func TestNoDevice(t *testing.T) {
	objctest.Install(t)
	_, err := SystemDefaultDevice()
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.Nil(t, CreateSystemDefaultDevice())
}

func TestFactoriesOnNilDevice(t *testing.T) {
	objctest.Install(t)
	var d *Device

	_, err := d.NewCommandQueue()
	assert.ErrorIs(t, err, ErrNilDevice)
	_, err = d.NewBuffer(16, ResourceStorageModeShared)
	assert.ErrorIs(t, err, ErrNilDevice)
	_, err = d.NewLibraryWithSource("kernel void k() {}", nil)
	assert.ErrorIs(t, err, ErrNilDevice)
	assert.Equal(t, "", d.Name())
}

func TestCreateErrorWithoutNSError(t *testing.T) {
	gpu := newFakeGPU(t)
	d := gpu.device(t)

	desc := NewHeapDescriptor()
	defer desc.Release()
	_, err := d.NewHeap(desc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCreate)

	var ce *CreateError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "heap", ce.Object)
	assert.Nil(t, ce.Err)
	assert.Equal(t, "failed to create heap", err.Error())
}

func TestLibraryCompileError(t *testing.T) {
	rt := objctest.Install(t)
	rt.Function("MTLCreateSystemDefaultDevice", func() objc.ID { return rt.NewObject("MTLDevice") })
	var errID objc.ID
	rt.HandleError("MTLDevice.newLibraryWithSource:options:error:", func(self objc.ID, args []uintptr) (uintptr, objc.ID) {
		errID = rt.NewError("MTLLibraryErrorDomain", 3, "program_source:1:8: error: unknown type name 'kernal'")
		return 0, errID
	})

	d, err := SystemDefaultDevice()
	require.NoError(t, err)
	defer d.Release()

	lib, err := d.NewLibraryWithSource("kernal void k() {}", nil)
	assert.Nil(t, lib)
	assert.ErrorIs(t, err, ErrCreate)
	assert.ErrorIs(t, err, &foundation.Error{Domain: "MTLLibraryErrorDomain", Code: 3})

	var nsErr *foundation.Error
	require.ErrorAs(t, err, &nsErr)
	assert.Contains(t, nsErr.Description, "unknown type name")
	assert.Contains(t, err.Error(), "failed to create library")
	assert.False(t, rt.Alive(errID))
}

func TestBuffers(t *testing.T) {
	gpu := newFakeGPU(t)
	d := gpu.device(t)

	b, err := d.NewBufferWithBytes([]int32{1, -2, 3}, ResourceStorageModeShared)
	require.NoError(t, err)
	defer b.Release()
	assert.EqualValues(t, 12, b.Length())
	assert.Equal(t, []int32{1, -2, 3}, b.ContentsAsInt32())

	b.ContentsAsInt32()[1] = 20
	assert.Equal(t, []byte{20, 0, 0, 0}, b.Bytes()[4:8])

	_, err = d.NewBufferWithBytes([]string{"x"}, ResourceStorageModeShared)
	assert.Error(t, err)
	_, err = d.NewBufferWithBytes([]float32{}, ResourceStorageModeShared)
	assert.Error(t, err)
	_, err = d.NewBuffer(0, ResourceStorageModeShared)
	assert.ErrorIs(t, err, ErrCreate)
}

func TestAsBytes(t *testing.T) {
	assert.Nil(t, AsBytes([]float32(nil)))
	assert.Equal(t, []byte{1, 0, 2, 0}, AsBytes([]uint16{1, 2}))
}

func TestClone(t *testing.T) {
	gpu := newFakeGPU(t)
	d := gpu.device(t)

	c := Clone(d)
	require.NotNil(t, c)
	assert.Equal(t, d.ObjectID(), c.ObjectID())
	assert.Equal(t, 2, gpu.rt.RetainCount(d.ObjectID()))
	c.Release()
	assert.Equal(t, 1, gpu.rt.RetainCount(d.ObjectID()))

	var nilDevice *Device
	assert.Nil(t, Clone(nilDevice))
}

func TestDescriptorRoundTrip(t *testing.T) {
	objctest.Install(t)

	td := NewTextureDescriptor()
	require.NotNil(t, td)
	defer td.Release()
	td.SetTextureType(TextureType2DArray)
	td.SetPixelFormat(PixelFormatRGBA16Float)
	td.SetWidth(640)
	td.SetHeight(480)
	td.SetArrayLength(4)
	td.SetUsage(TextureUsageShaderRead | TextureUsageRenderTarget)
	td.SetStorageMode(StorageModePrivate)
	td.SetAllowGPUOptimizedContents(true)

	assert.Equal(t, TextureType2DArray, td.TextureType())
	assert.Equal(t, PixelFormatRGBA16Float, td.PixelFormat())
	assert.EqualValues(t, 640, td.Width())
	assert.EqualValues(t, 480, td.Height())
	assert.EqualValues(t, 4, td.ArrayLength())
	assert.Equal(t, TextureUsageShaderRead|TextureUsageRenderTarget, td.Usage())
	assert.Equal(t, StorageModePrivate, td.StorageMode())
	assert.True(t, td.AllowGPUOptimizedContents())

	snapshot := Copy(td)
	require.NotNil(t, snapshot)
	defer snapshot.Release()
	td.SetWidth(1)
	assert.EqualValues(t, 640, snapshot.Width())
	assert.EqualValues(t, 1, td.Width())

	hd := NewHeapDescriptor()
	defer hd.Release()
	hd.SetSize(1 << 20)
	hd.SetType(HeapTypePlacement)
	hd.SetHazardTrackingMode(HazardTrackingModeTracked)
	assert.EqualValues(t, 1<<20, hd.Size())
	assert.Equal(t, HeapTypePlacement, hd.Type())
	assert.Equal(t, HazardTrackingModeTracked, hd.HazardTrackingMode())

	opts := NewCompileOptions()
	defer opts.Release()
	opts.SetFastMathEnabled(true)
	opts.SetLanguageVersion(LanguageVersion3_1)
	assert.True(t, opts.FastMathEnabled())
	assert.Equal(t, LanguageVersion3_1, opts.LanguageVersion())
}

func TestLabels(t *testing.T) {
	gpu := newFakeGPU(t)
	d := gpu.device(t)

	q, err := d.NewCommandQueue()
	require.NoError(t, err)
	defer q.Release()

	assert.Equal(t, "", q.Label())
	q.SetLabel("uploads")
	assert.Equal(t, "uploads", q.Label())
	q.SetLabel("")
	assert.Equal(t, "", q.Label())
}

func TestCommandBufferCompletedHandler(t *testing.T) {
	gpu := newFakeGPU(t)
	d := gpu.device(t)
	q, err := d.NewCommandQueue()
	require.NoError(t, err)
	defer q.Release()

	cb, err := q.CommandBuffer()
	require.NoError(t, err)
	defer cb.Release()
	assert.Equal(t, 1, gpu.rt.RetainCount(cb.ObjectID()))

	var status CommandBufferStatus
	var handlerErr error
	calls := 0
	cb.AddCompletedHandler(func(done *CommandBuffer) {
		calls++
		status = done.Status()
		handlerErr = done.Error()
		assert.Equal(t, cb.ObjectID(), done.ObjectID())
	})
	cb.Commit()
	cb.WaitUntilCompleted()

	assert.Equal(t, 1, calls)
	assert.Equal(t, CommandBufferStatusCompleted, status)
	assert.NoError(t, handlerErr)
	assert.Equal(t, CommandBufferStatusCompleted, cb.Status())
	assert.Equal(t, 1, gpu.rt.RetainCount(cb.ObjectID()))
}

// scriptSharedEvents makes shared events fire their listeners when signaled
// from the CPU.
func scriptSharedEvents(t *testing.T, rt *objctest.Runtime) {
	type listener struct {
		value uint64
		block objc.ID
	}
	var (
		mu        sync.Mutex
		signaled  = make(map[objc.ID]uint64)
		listeners = make(map[objc.ID][]listener)
	)
	rt.Handle("MTLDevice.newSharedEvent", func(self objc.ID, args []uintptr) uintptr {
		return uintptr(rt.NewObject("MTLSharedEvent"))
	})
	rt.Handle("MTLSharedEvent.signaledValue", func(self objc.ID, args []uintptr) uintptr {
		mu.Lock()
		defer mu.Unlock()
		return uintptr(signaled[self])
	})
	rt.Handle("MTLSharedEvent.notifyListener:atValue:block:", func(self objc.ID, args []uintptr) uintptr {
		mu.Lock()
		if cur := signaled[self]; cur >= uint64(args[1]) {
			mu.Unlock()
			rt.CallBlock(objc.ID(args[2]), uintptr(self), uintptr(cur))
			return 0
		}
		listeners[self] = append(listeners[self], listener{uint64(args[1]), rt.Retain(objc.ID(args[2]))})
		mu.Unlock()
		return 0
	})
	rt.Handle("MTLSharedEvent.setSignaledValue:", func(self objc.ID, args []uintptr) uintptr {
		v := uint64(args[0])
		mu.Lock()
		signaled[self] = v
		var fire, keep []listener
		for _, l := range listeners[self] {
			if v >= l.value {
				fire = append(fire, l)
			} else {
				keep = append(keep, l)
			}
		}
		listeners[self] = keep
		mu.Unlock()
		for _, l := range fire {
			rt.CallBlock(l.block, uintptr(self), uintptr(v))
			rt.Release(l.block)
		}
		return 0
	})
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		for _, ls := range listeners {
			for _, l := range ls {
				rt.Release(l.block)
			}
		}
	})
}

func TestSharedEventNotify(t *testing.T) {
	gpu := newFakeGPU(t)
	scriptSharedEvents(t, gpu.rt)
	d := gpu.device(t)

	e, err := d.NewSharedEvent()
	require.NoError(t, err)
	defer e.Release()

	got := make(chan uint64, 1)
	require.NoError(t, e.Notify(3, func(v uint64) { got <- v }))
	e.SetSignaledValue(1)
	assert.Empty(t, got)
	e.SetSignaledValue(4)
	assert.Equal(t, uint64(4), <-got)
	assert.EqualValues(t, 4, e.SignaledValue())
}

func TestSharedEventWait(t *testing.T) {
	gpu := newFakeGPU(t)
	scriptSharedEvents(t, gpu.rt)
	d := gpu.device(t)

	e, err := d.NewSharedEvent()
	require.NoError(t, err)
	defer e.Release()

	done := make(chan error, 1)
	go func() { done <- e.Wait(context.Background(), 5) }()
	e.SetSignaledValue(5)
	require.NoError(t, <-done)

	assert.NoError(t, e.Wait(context.Background(), 2))
	assert.True(t, e.WaitUntilSignaledValue(5, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = e.Wait(ctx, 10)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, e.WaitUntilSignaledValue(10, 10*time.Millisecond))
}
