package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
)

func TestStagingBufferPoolCreation(t *testing.T) {
	_, _, queue := newFakeQueue(t)

	_, err := NewStagingBufferPool(nil, 0, 4)
	assert.Error(t, err)
	_, err = NewStagingBufferPool(queue, 0, 0)
	assert.Error(t, err)

	pool, err := NewStagingBufferPool(queue, 0, 4)
	require.NoError(t, err)
	defer pool.Cleanup()

	stats := pool.Stats()
	assert.Equal(t, StagingPoolStats{
		TotalBuffers:     2,
		AvailableBuffers: 2,
		BufferSize:       DefaultStagingBufferSize,
		MaxBuffers:       4,
	}, stats)
}

func TestStagingBufferPoolGetReturn(t *testing.T) {
	f, _, queue := newFakeQueue(t)
	pool, err := NewStagingBufferPool(queue, 16, 2)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := pool.GetBuffer(ctx)
	require.NoError(t, err)
	second, err := pool.GetBuffer(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.EqualValues(t, 16, second.Buffer().Length())
	assert.Equal(t, 2, pool.Stats().InUseBuffers)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = pool.GetBuffer(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pool.ReturnBuffer(first)
	again, err := pool.GetBuffer(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)

	// A waiter is woken by a return.
	got := make(chan *StagingBuffer)
	go func() {
		sb, err := pool.GetBuffer(ctx)
		assert.NoError(t, err)
		got <- sb
	}()
	pool.ReturnBuffer(second)
	assert.Same(t, second, <-got)

	pool.ReturnBuffer(again)
	pool.ReturnBuffer(second)
	pool.ReturnBuffer(nil)
	assert.Equal(t, 0, pool.Stats().InUseBuffers)

	ids := []objc.ID{first.Buffer().ObjectID(), second.Buffer().ObjectID()}
	pool.Cleanup()
	for _, id := range ids {
		assert.False(t, f.rt.Alive(id))
	}
	_, err = pool.GetBuffer(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	pool.ReturnBuffer(first)
	pool.Cleanup()
}

func TestTransferToGPU(t *testing.T) {
	f, device, queue := newFakeQueue(t)
	pool, err := NewStagingBufferPool(queue, 16, 2)
	require.NoError(t, err)
	defer pool.Cleanup()
	ctx := context.Background()

	dst, err := device.NewBuffer(64, metal_bridge.ResourceStorageModePrivate)
	require.NoError(t, err)
	defer dst.Release()

	data := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.NoError(t, pool.TransferToGPUSync(ctx, data, dst, 8))
	assert.Equal(t, 3, f.commitCount(), "40 bytes through 16-byte staging buffers")
	assert.Equal(t, metal_bridge.AsBytes(data), f.bytes(dst)[8:48])
	assert.Equal(t, make([]byte, 8), f.bytes(dst)[:8])

	out := make([]byte, 40)
	require.NoError(t, pool.TransferFromGPU(ctx, dst, 8, out))
	assert.Equal(t, metal_bridge.AsBytes(data), out)

	assert.ErrorContains(t, pool.TransferToGPUSync(ctx, data, dst, 32), "overflows")
	assert.ErrorContains(t, pool.TransferToGPUSync(ctx, []float64{1}, dst, 0), "unsupported")
	assert.Error(t, pool.TransferToGPUSync(ctx, data, nil, 0))
	assert.ErrorContains(t, pool.TransferFromGPU(ctx, dst, 60, out), "overflows")

	var called int
	require.NoError(t, pool.TransferToGPU(ctx, []byte{}, dst, 0, func(err error) {
		assert.NoError(t, err)
		called++
	}))
	assert.Equal(t, 1, called)
	assert.Equal(t, 0, pool.Stats().InUseBuffers)
	assert.NoError(t, pool.WaitForTransferCompletion())
}

func TestTransferToGPUAsync(t *testing.T) {
	f, device, queue := newFakeQueue(t)
	pool, err := NewStagingBufferPool(queue, 8, 4)
	require.NoError(t, err)
	defer pool.Cleanup()

	dst, err := device.NewBuffer(32, metal_bridge.ResourceStorageModePrivate)
	require.NoError(t, err)
	defer dst.Release()

	release := f.holdCompletions()
	var completions atomic.Int32
	data := []int32{1, -1, 2, -2, 3, -3}
	require.NoError(t, pool.TransferToGPU(context.Background(), data, dst, 0, func(err error) {
		assert.NoError(t, err)
		completions.Add(1)
	}))
	// The caller's slice is free to reuse once encoding is done.
	data[0] = 99

	assert.Equal(t, int32(0), completions.Load())
	assert.Equal(t, 3, pool.Stats().InUseBuffers)
	assert.Equal(t, make([]byte, 32), f.bytes(dst))

	release()
	require.NoError(t, pool.WaitForTransferCompletion())
	assert.Equal(t, int32(1), completions.Load())
	assert.Equal(t, metal_bridge.AsBytes([]int32{1, -1, 2, -2, 3, -3}), f.bytes(dst)[:24])
	assert.Equal(t, 0, pool.Stats().InUseBuffers)
}

func TestTransferFailure(t *testing.T) {
	f, device, queue := newFakeQueue(t)
	pool, err := NewStagingBufferPool(queue, 16, 2)
	require.NoError(t, err)
	defer pool.Cleanup()

	dst, err := device.NewBuffer(16, metal_bridge.ResourceStorageModePrivate)
	require.NoError(t, err)
	defer dst.Release()

	f.setFailing(true)
	err = pool.TransferToGPUSync(context.Background(), []byte{1, 2, 3}, dst, 0)
	var nsErr *foundation.Error
	require.True(t, errors.As(err, &nsErr))
	assert.Equal(t, "MTLCommandBufferErrorDomain", nsErr.Domain)
	assert.Equal(t, "internal error", nsErr.Description)

	assert.Error(t, pool.WaitForTransferCompletion())
	assert.NoError(t, pool.WaitForTransferCompletion(), "errors are reported once")

	err = pool.TransferFromGPU(context.Background(), dst, 0, make([]byte, 4))
	assert.ErrorContains(t, err, "readback failed")
	assert.Equal(t, 0, pool.Stats().InUseBuffers)
}
