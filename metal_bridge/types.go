// Package metal_bridge exposes Metal to Go.
//
// Every Metal object is held by a Go wrapper embedding *objc.Object, which
// owns one retain and gives it back on Release (or from a finalizer). Getters
// that return objects hand back new owners; call Release on them when done.
// Descriptors are plain configuration objects: Copy snapshots them and the
// factory methods that consume them copy what they need.
//
// Devices, queues, resources, pipeline states, libraries, fences, events and
// heaps may be shared between goroutines. Command buffers, encoders and
// descriptors must be used from one goroutine at a time.
package metal_bridge

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Size is MTLSize.
type Size struct {
	Width, Height, Depth uint
}

func (Size) Encoding() string { return "{MTLSize=QQQ}" }

// MakeSize is a shorthand for Size{w, h, d}.
func MakeSize(w, h, d uint) Size {
	return Size{Width: w, Height: h, Depth: d}
}

// Volume returns Width*Height*Depth.
func (s Size) Volume() uint {
	return s.Width * s.Height * s.Depth
}

// Origin is MTLOrigin.
type Origin struct {
	X, Y, Z uint
}

func (Origin) Encoding() string { return "{MTLOrigin=QQQ}" }

// Region is MTLRegion.
type Region struct {
	Origin Origin
	Size   Size
}

func (Region) Encoding() string { return "{MTLRegion={MTLOrigin=QQQ}{MTLSize=QQQ}}" }

// Region2D returns the region covering a 2D rectangle.
func Region2D(x, y, width, height uint) Region {
	return Region{Origin: Origin{X: x, Y: y}, Size: Size{Width: width, Height: height, Depth: 1}}
}

// Region3D returns the region covering a box.
func Region3D(x, y, z, width, height, depth uint) Region {
	return Region{Origin: Origin{X: x, Y: y, Z: z}, Size: Size{Width: width, Height: height, Depth: depth}}
}

// ClearColor is MTLClearColor.
type ClearColor struct {
	Red, Green, Blue, Alpha float64
}

func (ClearColor) Encoding() string { return "{MTLClearColor=dddd}" }

// Viewport is MTLViewport.
type Viewport struct {
	OriginX, OriginY, Width, Height, ZNear, ZFar float64
}

func (Viewport) Encoding() string { return "{MTLViewport=dddddd}" }

// ScissorRect is MTLScissorRect.
type ScissorRect struct {
	X, Y, Width, Height uint
}

func (ScissorRect) Encoding() string { return "{MTLScissorRect=QQQQ}" }

// SamplePosition is MTLSamplePosition, in the range [0, 1).
type SamplePosition struct {
	X, Y float32
}

func (SamplePosition) Encoding() string { return "{MTLSamplePosition=ff}" }

// ResourceID is MTLResourceID, the handle argument buffers use to refer to a
// texture, sampler or acceleration structure.
type ResourceID struct {
	Impl uint64
}

func (ResourceID) Encoding() string { return "{MTLResourceID=Q}" }

// IsZero reports whether the resource has no GPU handle.
func (r ResourceID) IsZero() bool { return r.Impl == 0 }

// PackedFloat3 is MTLPackedFloat3: three floats without padding.
type PackedFloat3 struct {
	X, Y, Z float32
}

func (PackedFloat3) Encoding() string { return "{_MTLPackedFloat3=fff}" }

func (p PackedFloat3) Add(q PackedFloat3) PackedFloat3 {
	return PackedFloat3{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

func (p PackedFloat3) Sub(q PackedFloat3) PackedFloat3 {
	return PackedFloat3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

func (p PackedFloat3) Scale(s float32) PackedFloat3 {
	return PackedFloat3{p.X * s, p.Y * s, p.Z * s}
}

func (p PackedFloat3) Length() float32 {
	return math32.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

func (p PackedFloat3) Min(q PackedFloat3) PackedFloat3 {
	return PackedFloat3{math32.Min(p.X, q.X), math32.Min(p.Y, q.Y), math32.Min(p.Z, q.Z)}
}

func (p PackedFloat3) Max(q PackedFloat3) PackedFloat3 {
	return PackedFloat3{math32.Max(p.X, q.X), math32.Max(p.Y, q.Y), math32.Max(p.Z, q.Z)}
}

// PackedFloatQuaternion is MTLPackedFloatQuaternion.
type PackedFloatQuaternion struct {
	X, Y, Z, W float32
}

func (PackedFloatQuaternion) Encoding() string { return "{MTLPackedFloatQuaternion=ffff}" }

// IdentityQuaternion is the rotation that does nothing.
var IdentityQuaternion = PackedFloatQuaternion{W: 1}

// QuaternionFromAxisAngle returns the rotation of angle radians about axis.
func QuaternionFromAxisAngle(axis PackedFloat3, angle float32) PackedFloatQuaternion {
	l := axis.Length()
	if l == 0 {
		return IdentityQuaternion
	}
	s := math32.Sin(angle/2) / l
	return PackedFloatQuaternion{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: math32.Cos(angle / 2)}
}

// PackedFloat4x3 is MTLPackedFloat4x3: four packed columns of a 4x3
// transform, the layout instance descriptors use.
type PackedFloat4x3 struct {
	Columns [4]PackedFloat3
}

func (PackedFloat4x3) Encoding() string { return "{_MTLPackedFloat4x3=[4{_MTLPackedFloat3=fff}]}" }

// IdentityTransform is the 4x3 identity.
var IdentityTransform = PackedFloat4x3{Columns: [4]PackedFloat3{{X: 1}, {Y: 1}, {Z: 1}, {}}}

// Apply transforms point p.
func (m PackedFloat4x3) Apply(p PackedFloat3) PackedFloat3 {
	c := m.Columns
	return c[0].Scale(p.X).Add(c[1].Scale(p.Y)).Add(c[2].Scale(p.Z)).Add(c[3])
}

// AxisAlignedBoundingBox is MTLAxisAlignedBoundingBox, the element format of
// bounding-box geometry buffers.
type AxisAlignedBoundingBox struct {
	Min, Max PackedFloat3
}

func (AxisAlignedBoundingBox) Encoding() string {
	return "{_MTLAxisAlignedBoundingBox={_MTLPackedFloat3=fff}{_MTLPackedFloat3=fff}}"
}

// BoundingBoxOf returns the smallest box containing every point.
func BoundingBoxOf(points ...PackedFloat3) AxisAlignedBoundingBox {
	if len(points) == 0 {
		return AxisAlignedBoundingBox{}
	}
	box := AxisAlignedBoundingBox{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}

// Union returns the smallest box containing b and o.
func (b AxisAlignedBoundingBox) Union(o AxisAlignedBoundingBox) AxisAlignedBoundingBox {
	return AxisAlignedBoundingBox{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

func (b AxisAlignedBoundingBox) Center() PackedFloat3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b AxisAlignedBoundingBox) Extent() PackedFloat3 {
	return b.Max.Sub(b.Min)
}

// AccelerationStructureSizes is MTLAccelerationStructureSizes.
type AccelerationStructureSizes struct {
	AccelerationStructureSize uint
	BuildScratchBufferSize    uint
	RefitScratchBufferSize    uint
}

func (AccelerationStructureSizes) Encoding() string { return "{MTLAccelerationStructureSizes=QQQ}" }

// SizeAndAlign is MTLSizeAndAlign, returned by the heap size queries.
type SizeAndAlign struct {
	Size, Align uint
}

func (SizeAndAlign) Encoding() string { return "{MTLSizeAndAlign=QQ}" }

// Range is NSRange.
type Range struct {
	Location, Length uint
}

func (Range) Encoding() string { return "{_NSRange=QQ}" }

// DispatchThreadgroupsIndirectArguments is the layout an indirect compute
// dispatch reads from its argument buffer.
type DispatchThreadgroupsIndirectArguments struct {
	ThreadgroupsPerGrid [3]uint32
}

func (DispatchThreadgroupsIndirectArguments) Encoding() string {
	return "{MTLDispatchThreadgroupsIndirectArguments=[3I]}"
}

// MaxTensorRank is the highest rank a tensor can have.
const MaxTensorRank = 16

// TensorExtents holds the size of each tensor dimension, innermost first.
// Metal represents extents as MTLTensorExtents objects; see
// newTensorExtentsObject.
type TensorExtents []int

// Rank returns the number of dimensions.
func (e TensorExtents) Rank() int { return len(e) }

// Validate checks the rank limit and that no extent is negative.
func (e TensorExtents) Validate() error {
	if len(e) > MaxTensorRank {
		return fmt.Errorf("tensor rank %d exceeds %d", len(e), MaxTensorRank)
	}
	for i, v := range e {
		if v < 0 {
			return fmt.Errorf("tensor extent %d is negative (%d)", i, v)
		}
	}
	return nil
}

// Elements returns the product of the extents.
func (e TensorExtents) Elements() int {
	if len(e) == 0 {
		return 0
	}
	n := 1
	for _, v := range e {
		n *= v
	}
	return n
}

// PackedStrides returns the strides, in elements, of a densely packed tensor
// with these extents.
func (e TensorExtents) PackedStrides() TensorExtents {
	strides := make(TensorExtents, len(e))
	s := 1
	for i, v := range e {
		strides[i] = s
		s *= v
	}
	return strides
}
