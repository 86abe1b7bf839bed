package async

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
)

// CommandBuffer is a command buffer checked out of a CommandBufferPool. It
// holds one of the pool's in-flight slots until it completes or is returned.
type CommandBuffer struct {
	*metal_bridge.CommandBuffer
	id   int
	pool *CommandBufferPool
	done bool
}

// GetID returns the buffer's sequence number within its pool.
func (cb *CommandBuffer) GetID() int { return cb.id }

// CommandBufferPool bounds how many command buffers are in flight on a queue.
// Metal command buffers are single use, so the pool recycles slots rather
// than buffers: GetBuffer blocks while maxBuffers are encoding or executing.
type CommandBufferPool struct {
	queue      *metal_bridge.CommandQueue
	slots      chan struct{}
	maxBuffers int
	mutex      sync.Mutex
	nextID     int
	active     int
	closed     bool
	inFlight   sync.WaitGroup

	submitted int64
	completed int64
	failed    int64
}

// NewCommandBufferPool creates a pool allowing maxBuffers command buffers on
// queue at once.
func NewCommandBufferPool(queue *metal_bridge.CommandQueue, maxBuffers int) (*CommandBufferPool, error) {
	if queue == nil || queue.IsNil() {
		return nil, fmt.Errorf("command queue cannot be nil")
	}
	if maxBuffers <= 0 {
		return nil, fmt.Errorf("maxBuffers must be positive, got %d", maxBuffers)
	}
	pool := &CommandBufferPool{
		queue:      metal_bridge.Clone(queue),
		slots:      make(chan struct{}, maxBuffers),
		maxBuffers: maxBuffers,
		nextID:     1,
	}
	for i := 0; i < maxBuffers; i++ {
		pool.slots <- struct{}{}
	}
	return pool, nil
}

// GetBuffer waits for a free slot and returns a new command buffer in it.
// It fails with ErrClosed once Cleanup has started.
func (cbp *CommandBufferPool) GetBuffer(ctx context.Context) (*CommandBuffer, error) {
	select {
	case _, ok := <-cbp.slots:
		if !ok {
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	cbp.mutex.Lock()
	if cbp.closed {
		cbp.mutex.Unlock()
		return nil, ErrClosed
	}
	id := cbp.nextID
	cbp.nextID++
	cbp.active++
	cbp.inFlight.Add(1)
	cbp.mutex.Unlock()

	var (
		buffer *metal_bridge.CommandBuffer
		err    error
	)
	objc.AutoreleasePool(func() {
		buffer, err = cbp.queue.CommandBuffer()
	})
	if err != nil {
		cbp.release()
		return nil, fmt.Errorf("failed to create Metal command buffer: %w", err)
	}
	buffer.SetLabel(fmt.Sprintf("pool-%d", id))
	return &CommandBuffer{CommandBuffer: buffer, id: id, pool: cbp}, nil
}

// freeSlot lets another GetBuffer proceed.
func (cbp *CommandBufferPool) freeSlot() {
	cbp.mutex.Lock()
	defer cbp.mutex.Unlock()
	cbp.active--
	if !cbp.closed {
		cbp.slots <- struct{}{}
	}
}

func (cbp *CommandBufferPool) release() {
	cbp.freeSlot()
	cbp.inFlight.Done()
}

// ReturnBuffer gives back a buffer that will not be committed.
func (cbp *CommandBufferPool) ReturnBuffer(buffer *CommandBuffer) {
	if buffer == nil || buffer.done {
		return
	}
	buffer.done = true
	buffer.CommandBuffer.Release()
	cbp.release()
}

// ExecuteAsync commits buffer. completion, if not nil, runs on a Metal thread
// with the buffer's error once the GPU is done; the slot is freed just
// before. buffer must not be used after ExecuteAsync.
func (cbp *CommandBufferPool) ExecuteAsync(buffer *CommandBuffer, completion func(error)) error {
	if buffer == nil {
		return fmt.Errorf("command buffer is nil")
	}
	if buffer.pool != cbp {
		return fmt.Errorf("command buffer %d belongs to another pool", buffer.id)
	}
	if buffer.done {
		return fmt.Errorf("command buffer %d was already submitted", buffer.id)
	}
	buffer.done = true

	cbp.mutex.Lock()
	cbp.submitted++
	cbp.mutex.Unlock()

	id := buffer.id
	buffer.AddCompletedHandler(func(cb *metal_bridge.CommandBuffer) {
		err := cb.Error()
		cbp.mutex.Lock()
		if err != nil {
			cbp.failed++
		} else {
			cbp.completed++
		}
		cbp.mutex.Unlock()
		if err != nil {
			logger().Debug("pooled command buffer failed", "id", id, "err", err)
		}
		cbp.freeSlot()
		if completion != nil {
			completion(err)
		}
		cbp.inFlight.Done()
	})
	buffer.Commit()
	buffer.CommandBuffer.Release()
	return nil
}

// BatchOperation is one piece of work encoded into a shared command buffer.
type BatchOperation struct {
	// Name labels the operation's debug group.
	Name string
	// Encode records the operation's commands.
	Encode func(*metal_bridge.CommandBuffer) error
	// Completion, if not nil, receives the command buffer's error.
	Completion func(error)
}

// ExecuteBatch encodes every operation into one command buffer and commits
// it. If any Encode fails, nothing is committed and the error is returned.
func (cbp *CommandBufferPool) ExecuteBatch(ctx context.Context, operations []BatchOperation) error {
	if len(operations) == 0 {
		return fmt.Errorf("no operations provided")
	}
	buffer, err := cbp.GetBuffer(ctx)
	if err != nil {
		return fmt.Errorf("failed to get command buffer: %w", err)
	}

	var completions []func(error)
	for _, op := range operations {
		if op.Encode == nil {
			cbp.ReturnBuffer(buffer)
			return fmt.Errorf("operation %q has no encoder", op.Name)
		}
		objc.AutoreleasePool(func() {
			if op.Name != "" {
				buffer.PushDebugGroup(op.Name)
				defer buffer.PopDebugGroup()
			}
			err = op.Encode(buffer.CommandBuffer)
		})
		if err != nil {
			cbp.ReturnBuffer(buffer)
			return fmt.Errorf("encoding %q: %w", op.Name, err)
		}
		if op.Completion != nil {
			completions = append(completions, op.Completion)
		}
	}

	return cbp.ExecuteAsync(buffer, func(err error) {
		for _, completion := range completions {
			completion(err)
		}
	})
}

// Wait blocks until every checked-out buffer has completed or been returned.
func (cbp *CommandBufferPool) Wait() { cbp.inFlight.Wait() }

// CommandPoolStats provides statistics about the command buffer pool
type CommandPoolStats struct {
	InFlight   int
	MaxBuffers int
	Submitted  int64
	Completed  int64
	Failed     int64
}

func (cbp *CommandBufferPool) Stats() CommandPoolStats {
	cbp.mutex.Lock()
	defer cbp.mutex.Unlock()
	return CommandPoolStats{
		InFlight:   cbp.active,
		MaxBuffers: cbp.maxBuffers,
		Submitted:  cbp.submitted,
		Completed:  cbp.completed,
		Failed:     cbp.failed,
	}
}

// Cleanup closes the pool, so pending and later GetBuffer calls fail with
// ErrClosed, then waits for in-flight buffers before releasing the queue.
func (cbp *CommandBufferPool) Cleanup() {
	cbp.mutex.Lock()
	if cbp.closed {
		cbp.mutex.Unlock()
		return
	}
	cbp.closed = true
	close(cbp.slots)
	cbp.mutex.Unlock()

	cbp.inFlight.Wait()
	cbp.queue.Release()
}
