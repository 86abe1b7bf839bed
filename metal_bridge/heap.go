package metal_bridge

import (
	"github.com/tsawler/go-mtl/objc"
)

// HeapDescriptor is an MTLHeapDescriptor.
type HeapDescriptor struct {
	*objc.Object
}

func NewHeapDescriptor() *HeapDescriptor {
	return wrap[HeapDescriptor](objc.New("MTLHeapDescriptor"))
}

func (hd *HeapDescriptor) Size() uint     { return uint(objc.SendUint(hd, "size")) }
func (hd *HeapDescriptor) SetSize(n uint) { objc.SendVoid(hd, "setSize:", n) }

func (hd *HeapDescriptor) Type() HeapType     { return HeapType(objc.SendInt(hd, "type")) }
func (hd *HeapDescriptor) SetType(t HeapType) { objc.SendVoid(hd, "setType:", t) }

func (hd *HeapDescriptor) StorageMode() StorageMode { return storageMode(hd) }

func (hd *HeapDescriptor) SetStorageMode(m StorageMode) { objc.SendVoid(hd, "setStorageMode:", m) }

func (hd *HeapDescriptor) CPUCacheMode() CPUCacheMode { return cpuCacheMode(hd) }

func (hd *HeapDescriptor) SetCPUCacheMode(m CPUCacheMode) { objc.SendVoid(hd, "setCpuCacheMode:", m) }

func (hd *HeapDescriptor) HazardTrackingMode() HazardTrackingMode { return hazardTrackingMode(hd) }

func (hd *HeapDescriptor) SetHazardTrackingMode(m HazardTrackingMode) {
	objc.SendVoid(hd, "setHazardTrackingMode:", m)
}

func (hd *HeapDescriptor) ResourceOptions() ResourceOptions { return resourceOptions(hd) }

func (hd *HeapDescriptor) SetResourceOptions(o ResourceOptions) {
	objc.SendVoid(hd, "setResourceOptions:", o)
}

// Heap is an MTLHeap, a block of memory resources are suballocated from.
// It is safe for concurrent use.
type Heap struct {
	*objc.Object
}

func (d *Device) NewHeap(desc *HeapDescriptor) (*Heap, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "heap", Err: errNilDescriptor}
	}
	obj, err := created("heap", objc.Send(d, "newHeapWithDescriptor:", desc))
	return wrap[Heap](obj), err
}

func (h *Heap) Label() string     { return label(h) }
func (h *Heap) SetLabel(s string) { setLabel(h, s) }
func (h *Heap) Device() *Device   { return deviceOf(h) }

func (h *Heap) Type() HeapType                   { return HeapType(objc.SendInt(h, "type")) }
func (h *Heap) StorageMode() StorageMode         { return storageMode(h) }
func (h *Heap) Size() uint                       { return uint(objc.SendUint(h, "size")) }
func (h *Heap) UsedSize() uint                   { return uint(objc.SendUint(h, "usedSize")) }
func (h *Heap) CurrentAllocatedSize() uint       { return uint(objc.SendUint(h, "currentAllocatedSize")) }
func (h *Heap) AllocatedSize() uint              { return h.CurrentAllocatedSize() }
func (h *Heap) ResourceOptions() ResourceOptions { return resourceOptions(h) }

// MaxAvailableSize returns the largest allocation with the given alignment
// the heap can still satisfy.
func (h *Heap) MaxAvailableSize(alignment uint) uint {
	return uint(objc.SendUint(h, "maxAvailableSizeWithAlignment:", alignment))
}

func (h *Heap) SetPurgeableState(s PurgeableState) PurgeableState { return setPurgeableState(h, s) }

// NewBuffer suballocates a buffer. Its storage and cache modes must match
// the heap's.
func (h *Heap) NewBuffer(length uint, opts ResourceOptions) (*Buffer, error) {
	obj, err := created("heap buffer", objc.Send(h, "newBufferWithLength:options:", length, opts))
	return wrap[Buffer](obj), err
}

// NewBufferAtOffset places a buffer in a HeapTypePlacement heap.
func (h *Heap) NewBufferAtOffset(length uint, opts ResourceOptions, offset uint) (*Buffer, error) {
	obj, err := created("heap buffer", objc.Send(h, "newBufferWithLength:options:offset:", length, opts, offset))
	return wrap[Buffer](obj), err
}

func (h *Heap) NewTexture(desc *TextureDescriptor) (*Texture, error) {
	if desc == nil {
		return nil, &CreateError{Object: "heap texture", Err: errNilDescriptor}
	}
	obj, err := created("heap texture", objc.Send(h, "newTextureWithDescriptor:", desc))
	return wrap[Texture](obj), err
}
