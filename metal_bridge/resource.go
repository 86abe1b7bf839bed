package metal_bridge

import (
	"github.com/tsawler/go-mtl/objc"
)

// Allocation is anything that occupies GPU memory and can be added to a
// ResidencySet: resources and heaps.
type Allocation interface {
	objc.Receiver
	AllocatedSize() uint
}

// Resource is the MTLResource protocol shared by buffers, textures,
// acceleration structures and tensors. Resources are safe for concurrent
// use; their contents are not synchronized.
type Resource interface {
	Allocation
	Label() string
	SetLabel(string)
	Device() *Device
	StorageMode() StorageMode
	CPUCacheMode() CPUCacheMode
	HazardTrackingMode() HazardTrackingMode
	ResourceOptions() ResourceOptions
	SetPurgeableState(PurgeableState) PurgeableState
	MakeAliasable()
	IsAliasable() bool
	Heap() *Heap
	HeapOffset() uint
	Release()
}

var (
	_ Resource = (*Buffer)(nil)
	_ Resource = (*Texture)(nil)
	_ Resource = (*AccelerationStructure)(nil)
	_ Resource = (*Tensor)(nil)
	_ Allocation = (*Heap)(nil)
)

func allocatedSize(r objc.Receiver) uint { return uint(objc.SendUint(r, "allocatedSize")) }

func storageMode(r objc.Receiver) StorageMode { return StorageMode(objc.SendUint(r, "storageMode")) }

func cpuCacheMode(r objc.Receiver) CPUCacheMode { return CPUCacheMode(objc.SendUint(r, "cpuCacheMode")) }

func hazardTrackingMode(r objc.Receiver) HazardTrackingMode {
	return HazardTrackingMode(objc.SendUint(r, "hazardTrackingMode"))
}

func resourceOptions(r objc.Receiver) ResourceOptions {
	return ResourceOptions(objc.SendUint(r, "resourceOptions"))
}

// setPurgeableState returns the previous state. PurgeableStateKeepCurrent
// only queries it.
func setPurgeableState(r objc.Receiver, s PurgeableState) PurgeableState {
	return PurgeableState(objc.SendUint(r, "setPurgeableState:", s))
}

func heapOf(r objc.Receiver) *Heap { return wrap[Heap](objc.Send(r, "heap")) }

func (b *Buffer) Label() string                                     { return label(b) }
func (b *Buffer) SetLabel(s string)                                 { setLabel(b, s) }
func (b *Buffer) Device() *Device                                   { return deviceOf(b) }
func (b *Buffer) AllocatedSize() uint                               { return allocatedSize(b) }
func (b *Buffer) StorageMode() StorageMode                          { return storageMode(b) }
func (b *Buffer) CPUCacheMode() CPUCacheMode                        { return cpuCacheMode(b) }
func (b *Buffer) HazardTrackingMode() HazardTrackingMode            { return hazardTrackingMode(b) }
func (b *Buffer) ResourceOptions() ResourceOptions                  { return resourceOptions(b) }
func (b *Buffer) SetPurgeableState(s PurgeableState) PurgeableState { return setPurgeableState(b, s) }
func (b *Buffer) MakeAliasable()                                    { objc.SendVoid(b, "makeAliasable") }
func (b *Buffer) IsAliasable() bool                                 { return objc.SendBool(b, "isAliasable") }
func (b *Buffer) Heap() *Heap                                       { return heapOf(b) }
func (b *Buffer) HeapOffset() uint                                  { return uint(objc.SendUint(b, "heapOffset")) }

func (t *Texture) Label() string                                     { return label(t) }
func (t *Texture) SetLabel(s string)                                 { setLabel(t, s) }
func (t *Texture) Device() *Device                                   { return deviceOf(t) }
func (t *Texture) AllocatedSize() uint                               { return allocatedSize(t) }
func (t *Texture) StorageMode() StorageMode                          { return storageMode(t) }
func (t *Texture) CPUCacheMode() CPUCacheMode                        { return cpuCacheMode(t) }
func (t *Texture) HazardTrackingMode() HazardTrackingMode            { return hazardTrackingMode(t) }
func (t *Texture) ResourceOptions() ResourceOptions                  { return resourceOptions(t) }
func (t *Texture) SetPurgeableState(s PurgeableState) PurgeableState { return setPurgeableState(t, s) }
func (t *Texture) MakeAliasable()                                    { objc.SendVoid(t, "makeAliasable") }
func (t *Texture) IsAliasable() bool                                 { return objc.SendBool(t, "isAliasable") }
func (t *Texture) Heap() *Heap                                       { return heapOf(t) }
func (t *Texture) HeapOffset() uint                                  { return uint(objc.SendUint(t, "heapOffset")) }

func (a *AccelerationStructure) Label() string                                     { return label(a) }
func (a *AccelerationStructure) SetLabel(s string)                                 { setLabel(a, s) }
func (a *AccelerationStructure) Device() *Device                                   { return deviceOf(a) }
func (a *AccelerationStructure) AllocatedSize() uint                               { return allocatedSize(a) }
func (a *AccelerationStructure) StorageMode() StorageMode                          { return storageMode(a) }
func (a *AccelerationStructure) CPUCacheMode() CPUCacheMode                        { return cpuCacheMode(a) }
func (a *AccelerationStructure) HazardTrackingMode() HazardTrackingMode            { return hazardTrackingMode(a) }
func (a *AccelerationStructure) ResourceOptions() ResourceOptions                  { return resourceOptions(a) }
func (a *AccelerationStructure) SetPurgeableState(s PurgeableState) PurgeableState { return setPurgeableState(a, s) }
func (a *AccelerationStructure) MakeAliasable()                                    { objc.SendVoid(a, "makeAliasable") }
func (a *AccelerationStructure) IsAliasable() bool                                 { return objc.SendBool(a, "isAliasable") }
func (a *AccelerationStructure) Heap() *Heap                                       { return heapOf(a) }
func (a *AccelerationStructure) HeapOffset() uint                                  { return uint(objc.SendUint(a, "heapOffset")) }

func (t *Tensor) Label() string                                     { return label(t) }
func (t *Tensor) SetLabel(s string)                                 { setLabel(t, s) }
func (t *Tensor) Device() *Device                                   { return deviceOf(t) }
func (t *Tensor) AllocatedSize() uint                               { return allocatedSize(t) }
func (t *Tensor) StorageMode() StorageMode                          { return storageMode(t) }
func (t *Tensor) CPUCacheMode() CPUCacheMode                        { return cpuCacheMode(t) }
func (t *Tensor) HazardTrackingMode() HazardTrackingMode            { return hazardTrackingMode(t) }
func (t *Tensor) ResourceOptions() ResourceOptions                  { return resourceOptions(t) }
func (t *Tensor) SetPurgeableState(s PurgeableState) PurgeableState { return setPurgeableState(t, s) }
func (t *Tensor) MakeAliasable()                                    { objc.SendVoid(t, "makeAliasable") }
func (t *Tensor) IsAliasable() bool                                 { return objc.SendBool(t, "isAliasable") }
func (t *Tensor) Heap() *Heap                                       { return heapOf(t) }
func (t *Tensor) HeapOffset() uint                                  { return uint(objc.SendUint(t, "heapOffset")) }
