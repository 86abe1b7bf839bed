package metal_bridge

import (
	"unsafe"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
)

// AccelerationStructure is an MTLAccelerationStructure, the ray tracing
// resource built by an AccelerationStructureCommandEncoder.
type AccelerationStructure struct {
	*objc.Object
}

func (a *AccelerationStructure) Size() uint { return uint(objc.SendUint(a, "size")) }

func (a *AccelerationStructure) GPUResourceID() ResourceID {
	return objc.InvokeReturn[ResourceID](a, "gpuResourceID")
}

// NewAccelerationStructure allocates storage of size bytes, normally
// AccelerationStructureSizes.AccelerationStructureSize.
func (d *Device) NewAccelerationStructure(size uint) (*AccelerationStructure, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := created("acceleration structure", objc.Send(d, "newAccelerationStructureWithSize:", size))
	return wrap[AccelerationStructure](obj), err
}

// NewAccelerationStructureWithDescriptor allocates storage sized for desc.
func (d *Device) NewAccelerationStructureWithDescriptor(desc *PrimitiveAccelerationStructureDescriptor) (*AccelerationStructure, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "acceleration structure", Err: errNilDescriptor}
	}
	obj, err := created("acceleration structure", objc.Send(d, "newAccelerationStructureWithDescriptor:", desc))
	return wrap[AccelerationStructure](obj), err
}

// AccelerationStructureSizes reports the storage and scratch memory a build
// of desc needs.
func (d *Device) AccelerationStructureSizes(desc *PrimitiveAccelerationStructureDescriptor) AccelerationStructureSizes {
	return objc.InvokeReturn[AccelerationStructureSizes](d, "accelerationStructureSizesWithDescriptor:",
		objc.Value(objectOf(desc)))
}

// Geometry is a geometry descriptor that can be added to a
// PrimitiveAccelerationStructureDescriptor.
type Geometry interface {
	objc.Receiver
	Label() string
}

var (
	_ Geometry = (*BoundingBoxGeometryDescriptor)(nil)
	_ Geometry = (*TriangleGeometryDescriptor)(nil)
)

// Properties shared by every MTLAccelerationStructureGeometryDescriptor.
func geometryOpaque(g objc.Receiver) bool { return objc.SendBool(g, "opaque") }

func setGeometryOpaque(g objc.Receiver, v bool) { objc.SendVoid(g, "setOpaque:", v) }

// BoundingBoxGeometryDescriptor is an
// MTLAccelerationStructureBoundingBoxGeometryDescriptor: a buffer of
// AxisAlignedBoundingBox values intersected by custom functions.
type BoundingBoxGeometryDescriptor struct {
	*objc.Object
}

func NewBoundingBoxGeometryDescriptor() *BoundingBoxGeometryDescriptor {
	return wrap[BoundingBoxGeometryDescriptor](objc.SendClass("MTLAccelerationStructureBoundingBoxGeometryDescriptor", "descriptor"))
}

func (g *BoundingBoxGeometryDescriptor) Label() string     { return label(g) }
func (g *BoundingBoxGeometryDescriptor) SetLabel(s string) { setLabel(g, s) }
func (g *BoundingBoxGeometryDescriptor) Opaque() bool      { return geometryOpaque(g) }
func (g *BoundingBoxGeometryDescriptor) SetOpaque(v bool)  { setGeometryOpaque(g, v) }

func (g *BoundingBoxGeometryDescriptor) BoundingBoxBuffer() *Buffer {
	return wrap[Buffer](objc.Send(g, "boundingBoxBuffer"))
}

// SetBoundingBoxBuffer sets the buffer of boxes and the stride between them,
// which defaults to the size of AxisAlignedBoundingBox when zero.
func (g *BoundingBoxGeometryDescriptor) SetBoundingBoxBuffer(b *Buffer, offset, stride uint) {
	if stride == 0 {
		stride = uint(unsafe.Sizeof(AxisAlignedBoundingBox{}))
	}
	objc.SendVoid(g, "setBoundingBoxBuffer:", b)
	objc.SendVoid(g, "setBoundingBoxBufferOffset:", offset)
	objc.SendVoid(g, "setBoundingBoxStride:", stride)
}

func (g *BoundingBoxGeometryDescriptor) BoundingBoxBufferOffset() uint {
	return uint(objc.SendUint(g, "boundingBoxBufferOffset"))
}

func (g *BoundingBoxGeometryDescriptor) BoundingBoxStride() uint {
	return uint(objc.SendUint(g, "boundingBoxStride"))
}

func (g *BoundingBoxGeometryDescriptor) BoundingBoxCount() uint {
	return uint(objc.SendUint(g, "boundingBoxCount"))
}

func (g *BoundingBoxGeometryDescriptor) SetBoundingBoxCount(n uint) {
	objc.SendVoid(g, "setBoundingBoxCount:", n)
}

// TriangleGeometryDescriptor is an
// MTLAccelerationStructureTriangleGeometryDescriptor.
type TriangleGeometryDescriptor struct {
	*objc.Object
}

func NewTriangleGeometryDescriptor() *TriangleGeometryDescriptor {
	return wrap[TriangleGeometryDescriptor](objc.SendClass("MTLAccelerationStructureTriangleGeometryDescriptor", "descriptor"))
}

func (g *TriangleGeometryDescriptor) Label() string     { return label(g) }
func (g *TriangleGeometryDescriptor) SetLabel(s string) { setLabel(g, s) }
func (g *TriangleGeometryDescriptor) Opaque() bool      { return geometryOpaque(g) }
func (g *TriangleGeometryDescriptor) SetOpaque(v bool)  { setGeometryOpaque(g, v) }

func (g *TriangleGeometryDescriptor) VertexBuffer() *Buffer {
	return wrap[Buffer](objc.Send(g, "vertexBuffer"))
}

// SetVertexBuffer sets the vertex positions, which default to tightly
// packed PackedFloat3 values when stride is zero.
func (g *TriangleGeometryDescriptor) SetVertexBuffer(b *Buffer, offset, stride uint) {
	if stride == 0 {
		stride = uint(unsafe.Sizeof(PackedFloat3{}))
	}
	objc.SendVoid(g, "setVertexBuffer:", b)
	objc.SendVoid(g, "setVertexBufferOffset:", offset)
	objc.SendVoid(g, "setVertexStride:", stride)
}

func (g *TriangleGeometryDescriptor) VertexStride() uint {
	return uint(objc.SendUint(g, "vertexStride"))
}

func (g *TriangleGeometryDescriptor) IndexBuffer() *Buffer {
	return wrap[Buffer](objc.Send(g, "indexBuffer"))
}

func (g *TriangleGeometryDescriptor) SetIndexBuffer(b *Buffer, offset uint, t IndexType) {
	objc.SendVoid(g, "setIndexBuffer:", b)
	objc.SendVoid(g, "setIndexBufferOffset:", offset)
	objc.SendVoid(g, "setIndexType:", t)
}

func (g *TriangleGeometryDescriptor) IndexType() IndexType {
	return IndexType(objc.SendUint(g, "indexType"))
}

func (g *TriangleGeometryDescriptor) TriangleCount() uint {
	return uint(objc.SendUint(g, "triangleCount"))
}

func (g *TriangleGeometryDescriptor) SetTriangleCount(n uint) {
	objc.SendVoid(g, "setTriangleCount:", n)
}

// PrimitiveAccelerationStructureDescriptor is an
// MTLPrimitiveAccelerationStructureDescriptor.
type PrimitiveAccelerationStructureDescriptor struct {
	*objc.Object
}

func NewPrimitiveAccelerationStructureDescriptor() *PrimitiveAccelerationStructureDescriptor {
	return wrap[PrimitiveAccelerationStructureDescriptor](
		objc.SendClass("MTLPrimitiveAccelerationStructureDescriptor", "descriptor"))
}

func (pd *PrimitiveAccelerationStructureDescriptor) Usage() AccelerationStructureUsage {
	return AccelerationStructureUsage(objc.SendUint(pd, "usage"))
}

func (pd *PrimitiveAccelerationStructureDescriptor) SetUsage(u AccelerationStructureUsage) {
	objc.SendVoid(pd, "setUsage:", u)
}

// SetGeometry replaces the descriptor's geometry list.
func (pd *PrimitiveAccelerationStructureDescriptor) SetGeometry(geometry ...Geometry) {
	objs := make([]objc.Receiver, len(geometry))
	for i, g := range geometry {
		objs[i] = g
	}
	arr := foundation.NewArray(objs...)
	defer arr.Release()
	objc.SendVoid(pd, "setGeometryDescriptors:", arr)
}

// GeometryCount returns the number of geometry descriptors.
func (pd *PrimitiveAccelerationStructureDescriptor) GeometryCount() int {
	arr := foundation.ArrayFrom(objc.Send(pd, "geometryDescriptors"))
	if arr == nil {
		return 0
	}
	defer arr.Release()
	return arr.Count()
}
