package memory

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/tsawler/go-mtl/metal_bridge"
)

// DataType represents the data type of tensor elements
type DataType int

const (
	Float32 DataType = iota
	Int32
	Float16
	Int8
)

func (d DataType) String() string {
	switch d {
	case Float32:
		return "Float32"
	case Int32:
		return "Int32"
	case Float16:
		return "Float16"
	case Int8:
		return "Int8"
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// MetalType is the matching MTLTensorDataType.
func (d DataType) MetalType() metal_bridge.TensorDataType {
	switch d {
	case Float32:
		return metal_bridge.TensorDataTypeFloat32
	case Int32:
		return metal_bridge.TensorDataTypeInt32
	case Float16:
		return metal_bridge.TensorDataTypeFloat16
	case Int8:
		return metal_bridge.TensorDataTypeInt8
	}
	return metal_bridge.TensorDataTypeNone
}

// Tensor is a shaped array in a pooled Metal buffer with reference
// counting. The buffer goes back to its pool when the last reference is
// released.
type Tensor struct {
	manager    *MemoryManager
	buffer     *metal_bridge.Buffer
	shape      []int
	dtype      DataType
	options    metal_bridge.ResourceOptions
	refCount   *int32 // Atomic reference count
	generation uint64 // For debugging use-after-free
	size       int    // Total size in bytes
}

// Global generation counter for debugging
var globalGeneration atomic.Uint64

// NewTensor allocates a tensor from mm's pools.
func NewTensor(mm *MemoryManager, shape []int, dtype DataType, opts metal_bridge.ResourceOptions) (*Tensor, error) {
	size, err := calculateSize(shape, dtype)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("tensor shape %v has no elements", shape)
	}

	buffer, err := mm.GetBuffer(size, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate buffer: %w", err)
	}

	refCount := int32(1) // Start with 1 reference
	return &Tensor{
		manager:    mm,
		buffer:     buffer,
		shape:      slices.Clone(shape),
		dtype:      dtype,
		options:    opts,
		refCount:   &refCount,
		generation: globalGeneration.Add(1),
		size:       size,
	}, nil
}

// Retain increments the reference count and returns the same tensor
func (t *Tensor) Retain() *Tensor {
	if t.refCount == nil {
		panic("tensor already released")
	}
	atomic.AddInt32(t.refCount, 1)
	return t
}

// Release decrements the reference count and returns buffer to pool when it reaches 0
func (t *Tensor) Release() {
	if t.refCount == nil {
		return // Already released
	}

	if atomic.AddInt32(t.refCount, -1) == 0 {
		t.manager.ReturnBuffer(t.buffer)

		// Clear fields to prevent use-after-free
		t.buffer = nil
		t.refCount = nil
		t.shape = nil
	}
}

// Clone returns the same tensor with incremented reference count
func (t *Tensor) Clone() *Tensor {
	return t.Retain()
}

// Shape returns the tensor shape (defensive copy)
func (t *Tensor) Shape() []int {
	return slices.Clone(t.shape)
}

// DType returns the data type
func (t *Tensor) DType() DataType {
	return t.dtype
}

// Options returns the resource options of the backing buffer.
func (t *Tensor) Options() metal_bridge.ResourceOptions {
	return t.options
}

// Buffer returns the backing buffer, borrowed from the tensor. It may be
// longer than Size.
func (t *Tensor) Buffer() *metal_bridge.Buffer {
	if t.buffer == nil {
		panic("tensor buffer is nil - tensor may have been released")
	}
	return t.buffer
}

// Size returns the total size in bytes
func (t *Tensor) Size() int {
	return t.size
}

// Elements returns the number of elements.
func (t *Tensor) Elements() int {
	n := 1
	for _, dim := range t.shape {
		n *= dim
	}
	return n
}

// RefCount returns the current reference count (for debugging)
func (t *Tensor) RefCount() int32 {
	if t.refCount == nil {
		return 0
	}
	return atomic.LoadInt32(t.refCount)
}

// calculateSize computes the total size in bytes for the given shape and dtype
func calculateSize(shape []int, dtype DataType) (int, error) {
	var elementSize int
	switch dtype {
	case Float32, Int32:
		elementSize = 4
	case Float16:
		elementSize = 2
	case Int8:
		elementSize = 1
	default:
		return 0, fmt.Errorf("unsupported data type: %s", dtype)
	}

	if len(shape) == 0 {
		return 0, nil
	}
	elements := 1
	for _, dim := range shape {
		if dim < 0 {
			return 0, fmt.Errorf("negative dimension in shape %v", shape)
		}
		elements *= dim
	}
	return elements * elementSize, nil
}

// hostBytes returns the tensor's bytes in CPU-visible memory.
func (t *Tensor) hostBytes() ([]byte, error) {
	if t.buffer == nil {
		return nil, fmt.Errorf("tensor has been released")
	}
	if t.options.StorageMode() == metal_bridge.StorageModePrivate {
		return nil, fmt.Errorf("tensor in private storage is not CPU-accessible")
	}
	b := t.buffer.Bytes()
	if len(b) < t.size {
		return nil, fmt.Errorf("tensor buffer holds %d bytes, need %d", len(b), t.size)
	}
	return b[:t.size], nil
}

func (t *Tensor) checkElements(n int) error {
	if expected := t.Elements(); n != expected {
		return fmt.Errorf("data length %d doesn't match tensor shape %v (expected %d elements)",
			n, t.shape, expected)
	}
	return nil
}

// CopyFloat32Data copies float32 data into a CPU-accessible tensor.
func (t *Tensor) CopyFloat32Data(data []float32) error {
	if t.dtype != Float32 {
		return fmt.Errorf("tensor data type is %s, expected Float32", t.dtype)
	}
	if err := t.checkElements(len(data)); err != nil {
		return err
	}
	dst, err := t.hostBytes()
	if err != nil {
		return err
	}
	copy(dst, metal_bridge.AsBytes(data))
	t.didModify()
	return nil
}

// CopyInt32Data copies int32 data into a CPU-accessible tensor.
func (t *Tensor) CopyInt32Data(data []int32) error {
	if t.dtype != Int32 {
		return fmt.Errorf("tensor data type is %s, expected Int32", t.dtype)
	}
	if err := t.checkElements(len(data)); err != nil {
		return err
	}
	dst, err := t.hostBytes()
	if err != nil {
		return err
	}
	copy(dst, metal_bridge.AsBytes(data))
	t.didModify()
	return nil
}

// didModify flushes CPU writes to a managed buffer.
func (t *Tensor) didModify() {
	if t.options.StorageMode() == metal_bridge.StorageModeManaged {
		t.buffer.DidModifyRange(metal_bridge.Range{Location: 0, Length: uint(t.size)})
	}
}

// ToFloat32Slice copies a Float32 tensor out of CPU-accessible memory.
func (t *Tensor) ToFloat32Slice() ([]float32, error) {
	if t.dtype != Float32 {
		return nil, fmt.Errorf("tensor data type is %s, expected Float32", t.dtype)
	}
	src, err := t.hostBytes()
	if err != nil {
		return nil, err
	}
	out := make([]float32, t.Elements())
	copy(metal_bridge.AsBytes(out), src)
	return out, nil
}

// ToInt32Slice copies an Int32 tensor out of CPU-accessible memory.
func (t *Tensor) ToInt32Slice() ([]int32, error) {
	if t.dtype != Int32 {
		return nil, fmt.Errorf("tensor data type is %s, expected Int32", t.dtype)
	}
	src, err := t.hostBytes()
	if err != nil {
		return nil, err
	}
	out := make([]int32, t.Elements())
	copy(metal_bridge.AsBytes(out), src)
	return out, nil
}

// ConvertTo creates a new tensor with the specified data type. Conversion
// between Float32 and Int32 runs on the CPU and needs CPU-accessible
// storage; converting to the same type retains t.
func (t *Tensor) ConvertTo(dtype DataType) (*Tensor, error) {
	if t.dtype == dtype {
		// Already the correct type, just retain and return
		return t.Retain(), nil
	}

	newTensor, err := NewTensor(t.manager, t.shape, dtype, t.options)
	if err != nil {
		return nil, fmt.Errorf("failed to create converted tensor: %w", err)
	}

	switch {
	case t.dtype == Float32 && dtype == Int32:
		var src []float32
		if src, err = t.ToFloat32Slice(); err == nil {
			dst := make([]int32, len(src))
			for i, v := range src {
				dst[i] = int32(v)
			}
			err = newTensor.CopyInt32Data(dst)
		}
	case t.dtype == Int32 && dtype == Float32:
		var src []int32
		if src, err = t.ToInt32Slice(); err == nil {
			dst := make([]float32, len(src))
			for i, v := range src {
				dst[i] = float32(v)
			}
			err = newTensor.CopyFloat32Data(dst)
		}
	default:
		err = fmt.Errorf("no conversion from %s to %s", t.dtype, dtype)
	}
	if err != nil {
		newTensor.Release()
		return nil, fmt.Errorf("failed to convert tensor type: %w", err)
	}
	return newTensor, nil
}

// CopyFrom copies src into t with a blit on queue and waits for it. The
// copy stays on the GPU, so it works for private storage too.
func (t *Tensor) CopyFrom(src *Tensor, queue *metal_bridge.CommandQueue) error {
	// Validate tensors are compatible
	if src == nil {
		return fmt.Errorf("source tensor is nil")
	}

	if t.buffer == nil {
		return fmt.Errorf("destination tensor has nil metal buffer")
	}

	if src.buffer == nil {
		return fmt.Errorf("source tensor has nil metal buffer")
	}

	if !slices.Equal(t.shape, src.shape) {
		return fmt.Errorf("tensor shapes don't match: dst %v vs src %v", t.shape, src.shape)
	}

	if t.dtype != src.dtype {
		return fmt.Errorf("tensor data types don't match: dst %s vs src %s", t.dtype, src.dtype)
	}

	if queue == nil || queue.IsNil() {
		return fmt.Errorf("tensor copy needs a command queue")
	}

	cb, err := queue.CommandBuffer()
	if err != nil {
		return err
	}
	defer cb.Release()
	blit, err := cb.BlitCommandEncoder()
	if err != nil {
		return err
	}
	blit.CopyFromBuffer(src.buffer, 0, t.buffer, 0, uint(t.size))
	blit.EndEncoding()
	blit.Release()

	cb.Commit()
	cb.WaitUntilCompleted()
	if status := cb.Status(); status != metal_bridge.CommandBufferStatusCompleted {
		if err := cb.Error(); err != nil {
			return fmt.Errorf("tensor copy: %w", err)
		}
		return fmt.Errorf("tensor copy finished with status %s", status)
	}
	return nil
}

// MetalTensor creates an MTLTensor over the tensor's buffer. Metal orders
// dimensions innermost first, so the shape is reversed.
func (t *Tensor) MetalTensor(usage metal_bridge.TensorUsage) (*metal_bridge.Tensor, error) {
	if t.buffer == nil {
		return nil, fmt.Errorf("tensor has been released")
	}
	desc := metal_bridge.NewTensorDescriptor()
	if desc == nil {
		return nil, metal_bridge.ErrUnsupported
	}
	defer desc.Release()

	extents := make(metal_bridge.TensorExtents, len(t.shape))
	for i, dim := range t.shape {
		extents[len(t.shape)-1-i] = dim
	}
	if err := desc.SetDimensions(extents); err != nil {
		return nil, err
	}
	desc.SetDataType(t.dtype.MetalType())
	desc.SetUsage(usage)
	desc.SetStorageMode(t.options.StorageMode())
	return t.buffer.NewTensor(desc, 0)
}

// String returns a string representation for debugging
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor{shape=%v, dtype=%s, options=%s, refs=%d, gen=%d}",
		t.shape, t.dtype, t.options, t.RefCount(), t.generation)
}
