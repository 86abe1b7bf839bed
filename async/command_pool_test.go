package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-mtl/metal_bridge"
)

func TestCommandBufferPoolCreation(t *testing.T) {
	_, _, queue := newFakeQueue(t)

	_, err := NewCommandBufferPool(nil, 2)
	assert.Error(t, err)
	_, err = NewCommandBufferPool(queue, 0)
	assert.Error(t, err)

	pool, err := NewCommandBufferPool(queue, 3)
	require.NoError(t, err)
	assert.Equal(t, CommandPoolStats{MaxBuffers: 3}, pool.Stats())
	pool.Cleanup()
	pool.Cleanup()

	_, err = pool.GetBuffer(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCommandBufferPoolLimitsInFlight(t *testing.T) {
	f, _, queue := newFakeQueue(t)
	pool, err := NewCommandBufferPool(queue, 2)
	require.NoError(t, err)
	defer pool.Cleanup()
	ctx := context.Background()

	release := f.holdCompletions()
	a, err := pool.GetBuffer(ctx)
	require.NoError(t, err)
	b, err := pool.GetBuffer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, a.GetID())
	assert.Equal(t, 2, b.GetID())
	assert.Equal(t, "pool-2", b.Label())

	var completed atomic.Int32
	done := func(err error) {
		assert.NoError(t, err)
		completed.Add(1)
	}
	require.NoError(t, pool.ExecuteAsync(a, done))
	require.NoError(t, pool.ExecuteAsync(b, done))
	assert.Equal(t, 2, pool.Stats().InFlight)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = pool.GetBuffer(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	waiting := make(chan *CommandBuffer)
	go func() {
		cb, err := pool.GetBuffer(ctx)
		assert.NoError(t, err)
		waiting <- cb
	}()
	release()
	c := <-waiting
	pool.ReturnBuffer(c)
	pool.Wait()

	assert.Equal(t, int32(2), completed.Load())
	assert.Equal(t, CommandPoolStats{MaxBuffers: 2, Submitted: 2, Completed: 2}, pool.Stats())
}

func TestCommandBufferPoolCleanupRejectsWaiters(t *testing.T) {
	f, _, queue := newFakeQueue(t)
	pool, err := NewCommandBufferPool(queue, 1)
	require.NoError(t, err)
	ctx := context.Background()

	release := f.holdCompletions()
	held, err := pool.GetBuffer(ctx)
	require.NoError(t, err)

	waiterErr := make(chan error)
	go func() {
		_, err := pool.GetBuffer(ctx)
		waiterErr <- err
	}()

	cleaned := make(chan struct{})
	go func() {
		pool.Cleanup()
		close(cleaned)
	}()

	// The waiter is turned away while the held buffer is still in flight.
	select {
	case err := <-waiterErr:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("GetBuffer still blocked after Cleanup started")
	}
	_, err = pool.GetBuffer(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	select {
	case <-cleaned:
		t.Fatal("Cleanup returned with a buffer in flight")
	default:
	}
	require.NoError(t, pool.ExecuteAsync(held, nil))
	release()
	<-cleaned

	assert.Equal(t, 1, f.commitCount())
	created := 0
	for _, key := range f.rt.Sent() {
		if key == "MTLCommandQueue.commandBuffer" {
			created++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, CommandPoolStats{MaxBuffers: 1, Submitted: 1, Completed: 1}, pool.Stats())
}

func TestCommandBufferPoolMisuse(t *testing.T) {
	_, _, queue := newFakeQueue(t)
	pool, err := NewCommandBufferPool(queue, 1)
	require.NoError(t, err)
	defer pool.Cleanup()
	other, err := NewCommandBufferPool(queue, 1)
	require.NoError(t, err)
	defer other.Cleanup()
	ctx := context.Background()

	assert.Error(t, pool.ExecuteAsync(nil, nil))

	cb, err := pool.GetBuffer(ctx)
	require.NoError(t, err)
	assert.ErrorContains(t, other.ExecuteAsync(cb, nil), "another pool")
	pool.ReturnBuffer(cb)
	pool.ReturnBuffer(cb)
	assert.ErrorContains(t, pool.ExecuteAsync(cb, nil), "already submitted")

	// The returned slot is usable again.
	cb, err = pool.GetBuffer(ctx)
	require.NoError(t, err)
	require.NoError(t, pool.ExecuteAsync(cb, nil))
	assert.ErrorContains(t, pool.ExecuteAsync(cb, nil), "already submitted")
}

func TestExecuteBatch(t *testing.T) {
	f, device, queue := newFakeQueue(t)
	pool, err := NewCommandBufferPool(queue, 1)
	require.NoError(t, err)
	defer pool.Cleanup()
	ctx := context.Background()

	src, err := device.NewBuffer(4, metal_bridge.ResourceStorageModeShared)
	require.NoError(t, err)
	defer src.Release()
	copy(src.Bytes(), []byte{1, 2, 3, 4})
	dst, err := device.NewBuffer(8, metal_bridge.ResourceStorageModePrivate)
	require.NoError(t, err)
	defer dst.Release()

	copyTo := func(offset uint) func(*metal_bridge.CommandBuffer) error {
		return func(cb *metal_bridge.CommandBuffer) error {
			blit, err := cb.BlitCommandEncoder()
			if err != nil {
				return err
			}
			defer blit.Release()
			blit.CopyFromBuffer(src, 0, dst, offset, 4)
			blit.EndEncoding()
			return nil
		}
	}

	var results []error
	record := func(err error) { results = append(results, err) }
	require.NoError(t, pool.ExecuteBatch(ctx, []BatchOperation{
		{Name: "low", Encode: copyTo(0), Completion: record},
		{Name: "high", Encode: copyTo(4), Completion: record},
	}))
	pool.Wait()
	assert.Equal(t, []error{nil, nil}, results)
	assert.Equal(t, 1, f.commitCount())
	assert.Equal(t, []byte{1, 2, 3, 4, 1, 2, 3, 4}, f.bytes(dst))

	boom := errors.New("boom")
	err = pool.ExecuteBatch(ctx, []BatchOperation{
		{Name: "ok", Encode: copyTo(0)},
		{Name: "bad", Encode: func(*metal_bridge.CommandBuffer) error { return boom }},
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, pool.ExecuteBatch(ctx, []BatchOperation{{Name: "empty"}}), "no encoder")
	assert.Error(t, pool.ExecuteBatch(ctx, nil))
	assert.Equal(t, 1, f.commitCount())
	assert.Equal(t, 0, pool.Stats().InFlight)
}

func TestCommandBufferPoolFailure(t *testing.T) {
	f, _, queue := newFakeQueue(t)
	pool, err := NewCommandBufferPool(queue, 2)
	require.NoError(t, err)
	defer pool.Cleanup()

	f.setFailing(true)
	cb, err := pool.GetBuffer(context.Background())
	require.NoError(t, err)
	var got error
	require.NoError(t, pool.ExecuteAsync(cb, func(err error) { got = err }))
	pool.Wait()
	assert.ErrorContains(t, got, "internal error")
	assert.EqualValues(t, 1, pool.Stats().Failed)
}
