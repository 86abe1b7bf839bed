// Package async moves data between host memory and GPU buffers and paces
// command buffer submission, without blocking callers on every copy.
package async

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
)

// ErrClosed is returned by pools after Cleanup.
var ErrClosed = errors.New("async: pool is closed")

// DefaultStagingBufferSize is the staging buffer size used when none is given.
const DefaultStagingBufferSize = 4 * 1024 * 1024

// StagingBuffer is a shared-storage buffer the CPU fills before a blit copies
// it into GPU memory.
type StagingBuffer struct {
	buffer *metal_bridge.Buffer
	size   int
	inUse  bool
	id     int
}

// Buffer returns the underlying buffer, borrowed from the pool.
func (sb *StagingBuffer) Buffer() *metal_bridge.Buffer { return sb.buffer }

func (sb *StagingBuffer) ID() int { return sb.id }

// StagingBufferPool manages staging buffers for CPU to GPU transfers and
// readbacks. Transfers larger than one staging buffer are split.
type StagingBufferPool struct {
	device     *metal_bridge.Device
	queue      *metal_bridge.CommandQueue
	buffers    []*StagingBuffer
	available  chan *StagingBuffer
	maxBuffers int
	bufferSize int
	mutex      sync.Mutex
	nextID     int
	closed     bool
	pending    sync.WaitGroup

	errMu   sync.Mutex
	lastErr error
}

// NewStagingBufferPool creates a pool whose transfers are encoded on queue.
// bufferSize <= 0 selects DefaultStagingBufferSize.
func NewStagingBufferPool(queue *metal_bridge.CommandQueue, bufferSize, maxBuffers int) (*StagingBufferPool, error) {
	if queue == nil || queue.IsNil() {
		return nil, fmt.Errorf("command queue cannot be nil")
	}
	if maxBuffers <= 0 {
		return nil, fmt.Errorf("maxBuffers must be positive, got %d", maxBuffers)
	}
	if bufferSize <= 0 {
		bufferSize = DefaultStagingBufferSize
	}
	device := queue.Device()
	if device == nil {
		return nil, metal_bridge.ErrNilDevice
	}

	pool := &StagingBufferPool{
		device:     device,
		queue:      metal_bridge.Clone(queue),
		buffers:    make([]*StagingBuffer, 0, maxBuffers),
		available:  make(chan *StagingBuffer, maxBuffers),
		maxBuffers: maxBuffers,
		bufferSize: bufferSize,
		nextID:     1,
	}

	// Pre-allocate half the pool.
	initial := min(max(maxBuffers/2, 1), maxBuffers)
	for i := 0; i < initial; i++ {
		pool.mutex.Lock()
		buffer, err := pool.createBuffer()
		pool.mutex.Unlock()
		if err != nil {
			pool.Cleanup()
			return nil, fmt.Errorf("failed to create initial staging buffer %d: %w", i, err)
		}
		pool.available <- buffer
	}
	return pool, nil
}

// createBuffer allocates a staging buffer. The caller holds sbp.mutex.
func (sbp *StagingBufferPool) createBuffer() (*StagingBuffer, error) {
	buffer, err := sbp.device.NewBuffer(uint(sbp.bufferSize), metal_bridge.ResourceStorageModeShared)
	if err != nil {
		return nil, err
	}
	sb := &StagingBuffer{buffer: buffer, size: sbp.bufferSize, id: sbp.nextID}
	buffer.SetLabel(fmt.Sprintf("staging-%d", sb.id))
	sbp.nextID++
	sbp.buffers = append(sbp.buffers, sb)
	return sb, nil
}

// GetBuffer takes a staging buffer, allocating one if the pool is under its
// limit and otherwise waiting for one to be returned.
func (sbp *StagingBufferPool) GetBuffer(ctx context.Context) (*StagingBuffer, error) {
	select {
	case buffer, ok := <-sbp.available:
		if !ok {
			return nil, ErrClosed
		}
		return sbp.take(buffer), nil
	default:
	}

	sbp.mutex.Lock()
	if sbp.closed {
		sbp.mutex.Unlock()
		return nil, ErrClosed
	}
	if len(sbp.buffers) < sbp.maxBuffers {
		buffer, err := sbp.createBuffer()
		if err == nil {
			buffer.inUse = true
		}
		sbp.mutex.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to create new staging buffer: %w", err)
		}
		return buffer, nil
	}
	sbp.mutex.Unlock()

	select {
	case buffer, ok := <-sbp.available:
		if !ok {
			return nil, ErrClosed
		}
		return sbp.take(buffer), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (sbp *StagingBufferPool) take(buffer *StagingBuffer) *StagingBuffer {
	sbp.mutex.Lock()
	buffer.inUse = true
	sbp.mutex.Unlock()
	return buffer
}

// ReturnBuffer hands a staging buffer back to the pool.
func (sbp *StagingBufferPool) ReturnBuffer(buffer *StagingBuffer) {
	if buffer == nil {
		return
	}
	sbp.mutex.Lock()
	defer sbp.mutex.Unlock()
	buffer.inUse = false
	if sbp.closed {
		return
	}
	select {
	case sbp.available <- buffer:
	default:
		// Every buffer the pool created fits in the channel.
		logger().Warn("staging buffer returned to a full pool", "id", buffer.id)
	}
}

func toBytes(data any) ([]byte, error) {
	switch d := data.(type) {
	case []byte:
		return d, nil
	case []float32:
		return metal_bridge.AsBytes(d), nil
	case []int32:
		return metal_bridge.AsBytes(d), nil
	case []uint32:
		return metal_bridge.AsBytes(d), nil
	case []uint16:
		return metal_bridge.AsBytes(d), nil
	default:
		return nil, fmt.Errorf("unsupported data type for GPU transfer: %T", data)
	}
}

// TransferToGPU copies data ([]byte, []float32, []int32, []uint32 or
// []uint16) into dst at dstOffset. It returns once every chunk is encoded and
// committed; completion, if not nil, runs on a Metal thread after the last
// chunk lands, with the first error any chunk hit. data may be reused as soon
// as TransferToGPU returns.
func (sbp *StagingBufferPool) TransferToGPU(ctx context.Context, data any, dst *metal_bridge.Buffer, dstOffset uint, completion func(error)) error {
	dataBytes, err := toBytes(data)
	if err != nil {
		return err
	}
	if dst == nil || dst.IsNil() {
		return fmt.Errorf("destination buffer cannot be nil")
	}
	if end := dstOffset + uint(len(dataBytes)); end > dst.Length() {
		return fmt.Errorf("transfer of %d bytes at offset %d overflows %d-byte buffer", len(dataBytes), dstOffset, dst.Length())
	}
	if len(dataBytes) == 0 {
		if completion != nil {
			completion(nil)
		}
		return nil
	}

	chunks := (len(dataBytes) + sbp.bufferSize - 1) / sbp.bufferSize
	done := newFanIn(chunks, completion)
	for off := 0; off < len(dataBytes); off += sbp.bufferSize {
		chunk := dataBytes[off:min(off+sbp.bufferSize, len(dataBytes))]
		if err := sbp.upload(ctx, chunk, dst, dstOffset+uint(off), done.finish); err != nil {
			// Chunks already committed still report through done.
			done.abandon(chunks-off/sbp.bufferSize, err)
			return err
		}
	}
	return nil
}

// upload copies one chunk through a staging buffer and commits the blit.
func (sbp *StagingBufferPool) upload(ctx context.Context, chunk []byte, dst *metal_bridge.Buffer, dstOffset uint, finish func(error)) error {
	staging, err := sbp.GetBuffer(ctx)
	if err != nil {
		return fmt.Errorf("failed to get staging buffer: %w", err)
	}
	copy(staging.buffer.Bytes(), chunk)

	var cb *metal_bridge.CommandBuffer
	objc.AutoreleasePool(func() {
		cb, err = sbp.queue.CommandBuffer()
		if err != nil {
			return
		}
		var blit *metal_bridge.BlitCommandEncoder
		blit, err = cb.BlitCommandEncoder()
		if err != nil {
			return
		}
		blit.CopyFromBuffer(staging.buffer, 0, dst, dstOffset, uint(len(chunk)))
		blit.EndEncoding()
		blit.Release()
	})
	if err != nil {
		if cb != nil {
			cb.Release()
		}
		sbp.ReturnBuffer(staging)
		return fmt.Errorf("failed to encode transfer: %w", err)
	}
	defer cb.Release()

	sbp.pending.Add(1)
	cb.AddCompletedHandler(func(cb *metal_bridge.CommandBuffer) {
		defer sbp.pending.Done()
		err := cb.Error()
		if err != nil {
			sbp.recordError(err)
		}
		sbp.ReturnBuffer(staging)
		finish(err)
	})
	cb.Commit()
	return nil
}

// TransferToGPUSync is TransferToGPU followed by a wait for completion.
func (sbp *StagingBufferPool) TransferToGPUSync(ctx context.Context, data any, dst *metal_bridge.Buffer, dstOffset uint) error {
	result := make(chan error, 1)
	if err := sbp.TransferToGPU(ctx, data, dst, dstOffset, func(err error) { result <- err }); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TransferFromGPU copies len(out) bytes of src, starting at srcOffset, into
// out through staging buffers and waits for the copies.
func (sbp *StagingBufferPool) TransferFromGPU(ctx context.Context, src *metal_bridge.Buffer, srcOffset uint, out []byte) error {
	if src == nil || src.IsNil() {
		return fmt.Errorf("source buffer cannot be nil")
	}
	if end := srcOffset + uint(len(out)); end > src.Length() {
		return fmt.Errorf("readback of %d bytes at offset %d overflows %d-byte buffer", len(out), srcOffset, src.Length())
	}
	for off := 0; off < len(out); off += sbp.bufferSize {
		chunk := out[off:min(off+sbp.bufferSize, len(out))]
		if err := sbp.download(ctx, src, srcOffset+uint(off), chunk); err != nil {
			return err
		}
	}
	return nil
}

func (sbp *StagingBufferPool) download(ctx context.Context, src *metal_bridge.Buffer, srcOffset uint, chunk []byte) error {
	staging, err := sbp.GetBuffer(ctx)
	if err != nil {
		return fmt.Errorf("failed to get staging buffer: %w", err)
	}
	defer sbp.ReturnBuffer(staging)

	objc.AutoreleasePool(func() {
		var cb *metal_bridge.CommandBuffer
		cb, err = sbp.queue.CommandBuffer()
		if err != nil {
			return
		}
		defer cb.Release()
		var blit *metal_bridge.BlitCommandEncoder
		blit, err = cb.BlitCommandEncoder()
		if err != nil {
			return
		}
		blit.CopyFromBuffer(src, srcOffset, staging.buffer, 0, uint(len(chunk)))
		blit.EndEncoding()
		blit.Release()
		cb.Commit()
		cb.WaitUntilCompleted()
		err = cb.Error()
	})
	if err != nil {
		return fmt.Errorf("readback failed: %w", err)
	}
	copy(chunk, staging.buffer.Bytes())
	return nil
}

func (sbp *StagingBufferPool) recordError(err error) {
	sbp.errMu.Lock()
	defer sbp.errMu.Unlock()
	if sbp.lastErr == nil {
		sbp.lastErr = err
	}
}

// WaitForTransferCompletion blocks until every committed transfer has
// finished and returns the first error any of them hit since the last call.
func (sbp *StagingBufferPool) WaitForTransferCompletion() error {
	sbp.pending.Wait()
	sbp.errMu.Lock()
	defer sbp.errMu.Unlock()
	err := sbp.lastErr
	sbp.lastErr = nil
	return err
}

// StagingPoolStats provides statistics about the staging buffer pool
type StagingPoolStats struct {
	TotalBuffers     int
	AvailableBuffers int
	InUseBuffers     int
	BufferSize       int
	MaxBuffers       int
}

func (sbp *StagingBufferPool) Stats() StagingPoolStats {
	sbp.mutex.Lock()
	defer sbp.mutex.Unlock()
	inUse := 0
	for _, buffer := range sbp.buffers {
		if buffer.inUse {
			inUse++
		}
	}
	return StagingPoolStats{
		TotalBuffers:     len(sbp.buffers),
		AvailableBuffers: len(sbp.available),
		InUseBuffers:     inUse,
		BufferSize:       sbp.bufferSize,
		MaxBuffers:       sbp.maxBuffers,
	}
}

// Cleanup waits for pending transfers and releases every staging buffer.
func (sbp *StagingBufferPool) Cleanup() {
	sbp.pending.Wait()

	sbp.mutex.Lock()
	defer sbp.mutex.Unlock()
	if sbp.closed {
		return
	}
	sbp.closed = true
	close(sbp.available)
	for range sbp.available {
	}
	for _, buffer := range sbp.buffers {
		buffer.buffer.Release()
		buffer.buffer = nil
	}
	sbp.buffers = nil
	sbp.queue.Release()
	sbp.device.Release()
}
