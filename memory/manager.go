package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tsawler/go-mtl/metal_bridge"
)

// ErrPoolExhausted is returned by Get when a pool has handed out its maximum
// number of buffers.
var ErrPoolExhausted = errors.New("buffer pool at capacity")

// ErrClosed is returned after a MemoryManager or BufferPool has been closed.
var ErrClosed = errors.New("memory manager closed")

var defaultLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger for pool warnings. nil restores slog.Default.
func SetLogger(l *slog.Logger) { defaultLogger.Store(l) }

func logger() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// BufferPool manages a pool of Metal buffers of a specific size
type BufferPool struct {
	buffers    chan *metal_bridge.Buffer // Available MTLBuffers
	maxSize    int                       // Pool size limit
	bufferSize int                       // Fixed buffer size for this pool
	options    metal_bridge.ResourceOptions
	device     *metal_bridge.Device
	allocated  int          // Current number of allocated buffers
	closed     bool
	mutex      sync.RWMutex // Protects allocated and closed
}

// NewBufferPool creates a pool of buffers of bufferSize bytes allocated on
// device with opts. The pool keeps its own reference to device.
func NewBufferPool(device *metal_bridge.Device, bufferSize int, maxSize int, opts metal_bridge.ResourceOptions) *BufferPool {
	return &BufferPool{
		buffers:    make(chan *metal_bridge.Buffer, maxSize),
		maxSize:    maxSize,
		bufferSize: bufferSize,
		options:    opts,
		device:     metal_bridge.Clone(device),
	}
}

// Get retrieves a buffer from the pool or allocates a new one. The caller
// owns the buffer until it hands it back with Return.
func (bp *BufferPool) Get() (*metal_bridge.Buffer, error) {
	select {
	case buffer := <-bp.buffers:
		return buffer, nil
	default:
		// Pool is empty, allocate new buffer
		bp.mutex.Lock()
		if bp.closed {
			bp.mutex.Unlock()
			return nil, ErrClosed
		}
		canAllocate := bp.allocated < bp.maxSize
		if canAllocate {
			bp.allocated++
		}
		bp.mutex.Unlock()

		if !canAllocate {
			return nil, fmt.Errorf("%w (%d buffers of %d bytes)", ErrPoolExhausted, bp.maxSize, bp.bufferSize)
		}

		buffer, err := bp.device.NewBuffer(uint(bp.bufferSize), bp.options)
		if err != nil {
			bp.mutex.Lock()
			bp.allocated--
			bp.mutex.Unlock()
			return nil, fmt.Errorf("failed to allocate Metal buffer: %w", err)
		}
		return buffer, nil
	}
}

// Return puts a buffer back into the pool, releasing it if the pool is
// already full or closed.
func (bp *BufferPool) Return(buffer *metal_bridge.Buffer) {
	if buffer == nil || buffer.IsNil() {
		return
	}

	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	if !bp.closed {
		select {
		case bp.buffers <- buffer:
			return
		default:
		}
	}
	// Pool is full or closed, deallocate the buffer
	buffer.Release()
	bp.allocated--
}

// Stats returns pool statistics
func (bp *BufferPool) Stats() (available int, allocated int, maxSize int) {
	bp.mutex.RLock()
	defer bp.mutex.RUnlock()
	return len(bp.buffers), bp.allocated, bp.maxSize
}

// BufferSize is the length in bytes of every buffer in the pool.
func (bp *BufferPool) BufferSize() int { return bp.bufferSize }

// Close releases the idle buffers and the pool's device reference. Buffers
// still checked out stay valid and are released by Return.
func (bp *BufferPool) Close() {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	if bp.closed {
		return
	}
	bp.closed = true
	for {
		select {
		case buffer := <-bp.buffers:
			buffer.Release()
			bp.allocated--
		default:
			bp.device.Release()
			return
		}
	}
}

// MemoryManager manages GPU buffer lifecycle and pooling
type MemoryManager struct {
	pools      map[PoolKey]*BufferPool // Pools by size and resource options
	poolsMutex sync.RWMutex            // Protects pools map and closed
	device     *metal_bridge.Device
	closed     bool

	// Pool size tiers (in bytes)
	poolSizes []int

	// Buffer size tracking
	bufferSizes      map[*metal_bridge.Buffer]PoolKey // Maps a checked-out buffer to its pool
	bufferSizesMutex sync.RWMutex                     // Protects bufferSizes map
}

// PoolKey represents a key for the buffer pool map
type PoolKey struct {
	Size    int
	Options metal_bridge.ResourceOptions
}

func (k PoolKey) String() string {
	return fmt.Sprintf("%d bytes %s", k.Size, k.Options)
}

// Default pool sizes: 1KB, 4KB, 16KB, 64KB, 256KB, 1MB, 4MB, 16MB, 64MB
var defaultPoolSizes = []int{
	1024, 4096, 16384, 65536, 262144, 1048576, 4194304, 16777216, 67108864,
}

// NewMemoryManager creates a memory manager that keeps its own reference to
// device.
func NewMemoryManager(device *metal_bridge.Device) *MemoryManager {
	return &MemoryManager{
		pools:       make(map[PoolKey]*BufferPool),
		device:      metal_bridge.Clone(device),
		poolSizes:   defaultPoolSizes,
		bufferSizes: make(map[*metal_bridge.Buffer]PoolKey),
	}
}

// Device returns the manager's device, borrowed from the manager.
func (mm *MemoryManager) Device() *metal_bridge.Device { return mm.device }

// GetBuffer gets a buffer of at least the specified size
func (mm *MemoryManager) GetBuffer(size int, opts metal_bridge.ResourceOptions) (*metal_bridge.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("buffer size must be positive, got %d", size)
	}
	// Find the smallest pool that can accommodate this size
	key := PoolKey{Size: mm.findPoolSize(size), Options: opts}

	pool, err := mm.getOrCreatePool(key)
	if err != nil {
		return nil, err
	}

	buffer, err := pool.Get()
	if err != nil {
		return nil, err
	}

	mm.bufferSizesMutex.Lock()
	mm.bufferSizes[buffer] = key
	mm.bufferSizesMutex.Unlock()

	return buffer, nil
}

// ReturnBuffer hands a buffer obtained from GetBuffer back to its pool.
// Buffers the manager did not hand out are released.
func (mm *MemoryManager) ReturnBuffer(buffer *metal_bridge.Buffer) {
	if buffer == nil {
		return
	}

	mm.bufferSizesMutex.Lock()
	key, tracked := mm.bufferSizes[buffer]
	delete(mm.bufferSizes, buffer)
	mm.bufferSizesMutex.Unlock()

	if !tracked {
		logger().Warn("releasing untracked buffer", "length", buffer.Length())
		buffer.Release()
		return
	}

	mm.poolsMutex.RLock()
	defer mm.poolsMutex.RUnlock()
	pool, exists := mm.pools[key]

	if !exists {
		buffer.Release()
		return
	}
	pool.Return(buffer)
}

// findPoolSize finds the smallest pool size that can accommodate the request
func (mm *MemoryManager) findPoolSize(size int) int {
	for _, poolSize := range mm.poolSizes {
		if poolSize >= size {
			return poolSize
		}
	}
	// If size is larger than largest pool, use the requested size
	return size
}

// getOrCreatePool gets an existing pool or creates a new one
func (mm *MemoryManager) getOrCreatePool(key PoolKey) (*BufferPool, error) {
	mm.poolsMutex.RLock()
	pool, exists := mm.pools[key]
	closed := mm.closed
	mm.poolsMutex.RUnlock()

	if closed {
		return nil, ErrClosed
	}
	if exists {
		return pool, nil
	}

	mm.poolsMutex.Lock()
	defer mm.poolsMutex.Unlock()

	// Double-check after acquiring write lock
	if mm.closed {
		return nil, ErrClosed
	}
	if pool, exists := mm.pools[key]; exists {
		return pool, nil
	}

	pool = NewBufferPool(mm.device, key.Size, calculateMaxPoolSize(key.Size), key.Options)
	mm.pools[key] = pool
	logger().Debug("created buffer pool", "size", key.Size, "options", key.Options, "max", pool.maxSize)
	return pool, nil
}

// calculateMaxPoolSize determines the maximum number of buffers for a pool
func calculateMaxPoolSize(bufferSize int) int {
	// Smaller buffers get larger pools
	switch {
	case bufferSize <= 4096: // <= 4KB
		return 100
	case bufferSize <= 65536: // <= 64KB
		return 50
	case bufferSize <= 1048576: // <= 1MB
		return 20
	case bufferSize <= 16777216: // <= 16MB
		return 10
	default: // > 16MB
		return 5
	}
}

// Stats returns memory manager statistics
func (mm *MemoryManager) Stats() map[PoolKey]string {
	mm.poolsMutex.RLock()
	defer mm.poolsMutex.RUnlock()

	stats := make(map[PoolKey]string)
	for key, pool := range mm.pools {
		available, allocated, maxSize := pool.Stats()
		stats[key] = fmt.Sprintf("available=%d, allocated=%d, max=%d",
			available, allocated, maxSize)
	}

	return stats
}

// Close releases every idle pooled buffer and the manager's device
// reference. Buffers still checked out are released when returned.
func (mm *MemoryManager) Close() {
	mm.poolsMutex.Lock()
	if mm.closed {
		mm.poolsMutex.Unlock()
		return
	}
	mm.closed = true
	pools := make([]*BufferPool, 0, len(mm.pools))
	for _, pool := range mm.pools {
		pools = append(pools, pool)
	}
	mm.poolsMutex.Unlock()

	for _, pool := range pools {
		pool.Close()
	}
	mm.device.Release()
}
