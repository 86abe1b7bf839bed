package metal_bridge

import (
	"fmt"
	"unsafe"

	"gorgonia.org/tensor"

	"github.com/tsawler/go-mtl/objc"
)

// TensorDomain is the NSError domain of tensor creation failures; the code
// is a TensorError.
const TensorDomain = "MTLTensorDomain"

// newTensorExtentsObject builds an MTLTensorExtents. It returns nil for an
// invalid rank.
func newTensorExtentsObject(e TensorExtents) *objc.Object {
	if e.Validate() != nil {
		return nil
	}
	vals := make([]int64, len(e))
	for i, v := range e {
		vals[i] = int64(v)
	}
	var p unsafe.Pointer
	if len(vals) > 0 {
		p = unsafe.Pointer(&vals[0])
	}
	return objc.Init(objc.Alloc("MTLTensorExtents"), "initWithRank:values:", uint(len(vals)), p)
}

// tensorExtentsFrom reads an MTLTensorExtents and releases it.
func tensorExtentsFrom(obj *objc.Object) TensorExtents {
	if obj == nil {
		return nil
	}
	defer obj.Release()
	rank := int(objc.SendUint(obj, "rank"))
	if rank > MaxTensorRank {
		rank = MaxTensorRank
	}
	e := make(TensorExtents, rank)
	for i := range e {
		e[i] = int(objc.SendInt(obj, "extentAtDimensionIndex:", uint(i)))
	}
	return e
}

// TensorDescriptor is an MTLTensorDescriptor.
type TensorDescriptor struct {
	*objc.Object
}

func NewTensorDescriptor() *TensorDescriptor {
	return wrap[TensorDescriptor](objc.New("MTLTensorDescriptor"))
}

func (td *TensorDescriptor) Dimensions() TensorExtents {
	return tensorExtentsFrom(objc.Send(td, "dimensions"))
}

// SetDimensions sets the extents, innermost dimension first.
func (td *TensorDescriptor) SetDimensions(e TensorExtents) error {
	obj := newTensorExtentsObject(e)
	if obj == nil {
		if err := e.Validate(); err != nil {
			return err
		}
		return ErrUnsupported
	}
	defer obj.Release()
	objc.SendVoid(td, "setDimensions:", obj)
	return nil
}

func (td *TensorDescriptor) Strides() TensorExtents {
	return tensorExtentsFrom(objc.Send(td, "strides"))
}

// SetStrides sets the distance in elements between consecutive entries of
// each dimension. The innermost stride must be 1.
func (td *TensorDescriptor) SetStrides(e TensorExtents) error {
	if len(e) > 0 && e[0] != 1 {
		return fmt.Errorf("innermost tensor stride must be 1, got %d", e[0])
	}
	obj := newTensorExtentsObject(e)
	if obj == nil {
		if err := e.Validate(); err != nil {
			return err
		}
		return ErrUnsupported
	}
	defer obj.Release()
	objc.SendVoid(td, "setStrides:", obj)
	return nil
}

func (td *TensorDescriptor) DataType() TensorDataType {
	return TensorDataType(objc.SendInt(td, "dataType"))
}

func (td *TensorDescriptor) SetDataType(t TensorDataType) { objc.SendVoid(td, "setDataType:", t) }

func (td *TensorDescriptor) Usage() TensorUsage { return TensorUsage(objc.SendUint(td, "usage")) }

func (td *TensorDescriptor) SetUsage(u TensorUsage) { objc.SendVoid(td, "setUsage:", u) }

func (td *TensorDescriptor) StorageMode() StorageMode { return storageMode(td) }

func (td *TensorDescriptor) SetStorageMode(m StorageMode) { objc.SendVoid(td, "setStorageMode:", m) }

func (td *TensorDescriptor) ResourceOptions() ResourceOptions { return resourceOptions(td) }

func (td *TensorDescriptor) SetResourceOptions(o ResourceOptions) {
	objc.SendVoid(td, "setResourceOptions:", o)
}

// Tensor is an MTLTensor: a multi-dimensional resource for machine learning
// shaders.
type Tensor struct {
	*objc.Object
}

func (d *Device) NewTensor(desc *TensorDescriptor) (*Tensor, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "tensor", Err: errNilDescriptor}
	}
	obj, err := createWithError("tensor", d, "newTensorWithDescriptor:error:", desc)
	return wrap[Tensor](obj), err
}

// NewTensor creates a tensor over the buffer's memory starting at offset.
func (b *Buffer) NewTensor(desc *TensorDescriptor, offset uint) (*Tensor, error) {
	if desc == nil {
		return nil, &CreateError{Object: "tensor", Err: errNilDescriptor}
	}
	obj, err := createWithError("tensor", b, "newTensorWithDescriptor:offset:error:", desc, offset)
	return wrap[Tensor](obj), err
}

func (t *Tensor) Dimensions() TensorExtents { return tensorExtentsFrom(objc.Send(t, "dimensions")) }
func (t *Tensor) Strides() TensorExtents    { return tensorExtentsFrom(objc.Send(t, "strides")) }
func (t *Tensor) DataType() TensorDataType  { return TensorDataType(objc.SendInt(t, "dataType")) }
func (t *Tensor) Usage() TensorUsage        { return TensorUsage(objc.SendUint(t, "usage")) }
func (t *Tensor) BufferOffset() uint        { return uint(objc.SendUint(t, "bufferOffset")) }
func (t *Tensor) Buffer() *Buffer           { return wrap[Buffer](objc.Send(t, "buffer")) }

func (t *Tensor) GPUResourceID() ResourceID {
	return objc.InvokeReturn[ResourceID](t, "gpuResourceID")
}

// tensorCopy sends one of the whole-tensor copy messages. The slice origin
// is zero and the slice covers every dimension.
func (t *Tensor) tensorCopy(sel string, data []byte) error {
	dims := t.Dimensions()
	if want := dims.Elements() * t.DataType().Size(); len(data) != want {
		return fmt.Errorf("tensor copy needs %d bytes, got %d", want, len(data))
	}
	if len(data) == 0 {
		return nil
	}
	origin := newTensorExtentsObject(make(TensorExtents, len(dims)))
	size := newTensorExtentsObject(dims)
	strides := newTensorExtentsObject(dims.PackedStrides())
	defer origin.Release()
	defer size.Release()
	defer strides.Release()
	if origin == nil || size == nil || strides == nil {
		return ErrUnsupported
	}
	switch sel {
	case "replaceSliceOrigin:sliceDimensions:withBytes:strides:":
		objc.SendVoid(t, sel, origin, size, unsafe.Pointer(&data[0]), strides)
	default:
		objc.SendVoid(t, sel, unsafe.Pointer(&data[0]), strides, origin, size)
	}
	return nil
}

// ReplaceContents copies data, densely packed with the innermost dimension
// first, into a tensor with shared storage.
func (t *Tensor) ReplaceContents(data []byte) error {
	return t.tensorCopy("replaceSliceOrigin:sliceDimensions:withBytes:strides:", data)
}

// GetContents copies the whole tensor into dst, densely packed.
func (t *Tensor) GetContents(dst []byte) error {
	return t.tensorCopy("getBytes:strides:fromSliceOrigin:sliceDimensions:", dst)
}

// ExtentsFromShape converts a row-major shape, outermost dimension first, to
// extents, innermost first.
func ExtentsFromShape(s tensor.Shape) TensorExtents {
	e := make(TensorExtents, len(s))
	for i, v := range s {
		e[len(s)-1-i] = v
	}
	return e
}

// ShapeFromExtents is the inverse of ExtentsFromShape.
func ShapeFromExtents(e TensorExtents) tensor.Shape {
	s := make(tensor.Shape, len(e))
	for i, v := range e {
		s[len(e)-1-i] = v
	}
	return s
}

// TensorDataTypeFromDtype maps a gorgonia element type to the Metal one.
func TensorDataTypeFromDtype(dt tensor.Dtype) (TensorDataType, error) {
	switch dt {
	case tensor.Float32:
		return TensorDataTypeFloat32, nil
	case tensor.Int32:
		return TensorDataTypeInt32, nil
	case tensor.Uint32:
		return TensorDataTypeUInt32, nil
	case tensor.Int16:
		return TensorDataTypeInt16, nil
	case tensor.Uint16:
		return TensorDataTypeUInt16, nil
	case tensor.Int8:
		return TensorDataTypeInt8, nil
	case tensor.Uint8:
		return TensorDataTypeUInt8, nil
	}
	return TensorDataTypeNone, fmt.Errorf("no Metal tensor type for %v", dt)
}

// isRowMajorContiguous reports whether d has the densely packed row-major
// layout Metal tensors use.
func isRowMajorContiguous(d *tensor.Dense) bool {
	shape, strides := d.Shape(), d.Strides()
	if len(shape) != len(strides) {
		return false
	}
	want := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] > 1 && strides[i] != want {
			return false
		}
		want *= shape[i]
	}
	return true
}

// denseBytes returns the backing bytes of a contiguous dense tensor.
func denseBytes(d *tensor.Dense) ([]byte, error) {
	if !isRowMajorContiguous(d) {
		return nil, fmt.Errorf("tensor with shape %v and strides %v is not row-major contiguous", d.Shape(), d.Strides())
	}
	var b []byte
	switch v := d.Data().(type) {
	case []float32:
		b = AsBytes(v)
	case []int32:
		b = AsBytes(v)
	case []uint32:
		b = AsBytes(v)
	case []int16:
		b = AsBytes(v)
	case []uint16:
		b = AsBytes(v)
	case []int8:
		b = AsBytes(v)
	case []uint8:
		b = v
	default:
		return nil, fmt.Errorf("unsupported tensor backing %T", d.Data())
	}
	dt, _ := TensorDataTypeFromDtype(d.Dtype())
	if n := d.Shape().TotalSize() * dt.Size(); len(b) > n {
		b = b[:n]
	}
	return b, nil
}

// TensorDescriptorFor describes a shared tensor matching d's shape and
// element type.
func TensorDescriptorFor(d *tensor.Dense, usage TensorUsage) (*TensorDescriptor, error) {
	dt, err := TensorDataTypeFromDtype(d.Dtype())
	if err != nil {
		return nil, err
	}
	desc := NewTensorDescriptor()
	if desc == nil {
		return nil, ErrUnsupported
	}
	if err := desc.SetDimensions(ExtentsFromShape(d.Shape())); err != nil {
		desc.Release()
		return nil, err
	}
	desc.SetDataType(dt)
	desc.SetUsage(usage)
	desc.SetStorageMode(StorageModeShared)
	return desc, nil
}

// NewTensorFromDense creates a shared tensor holding a copy of d.
func (dev *Device) NewTensorFromDense(d *tensor.Dense, usage TensorUsage) (*Tensor, error) {
	data, err := denseBytes(d)
	if err != nil {
		return nil, err
	}
	desc, err := TensorDescriptorFor(d, usage)
	if err != nil {
		return nil, err
	}
	defer desc.Release()
	t, err := dev.NewTensor(desc)
	if err != nil {
		return nil, err
	}
	if err := t.ReplaceContents(data); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// CopyToDense copies the tensor into d, which must have the same shape and
// element type.
func (t *Tensor) CopyToDense(d *tensor.Dense) error {
	dt, err := TensorDataTypeFromDtype(d.Dtype())
	if err != nil {
		return err
	}
	if got := t.DataType(); got != dt {
		return fmt.Errorf("tensor holds %s, destination holds %s", got, dt)
	}
	if s := ShapeFromExtents(t.Dimensions()); !s.Eq(d.Shape()) {
		return fmt.Errorf("tensor shape %v does not match destination shape %v", s, d.Shape())
	}
	data, err := denseBytes(d)
	if err != nil {
		return err
	}
	return t.GetContents(data)
}
