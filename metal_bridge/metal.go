package metal_bridge

import (
	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
)

// Device is an MTLDevice. It is safe for concurrent use.
type Device struct {
	*objc.Object
}

// SystemDefaultDevice returns the preferred system device.
func SystemDefaultDevice() (*Device, error) {
	if !objc.Available() {
		return nil, ErrUnsupported
	}
	d := CreateSystemDefaultDevice()
	if d == nil {
		return nil, ErrNoDevice
	}
	return d, nil
}

// CreateSystemDefaultDevice is SystemDefaultDevice without the error; it
// returns nil when there is no device.
func CreateSystemDefaultDevice() *Device {
	id := objc.CurrentRuntime().CallCreateFunction("MTLCreateSystemDefaultDevice")
	return wrap[Device](objc.Adopt(id))
}

// CopyAllDevices returns every device in the system. The caller releases
// each one.
func CopyAllDevices() []*Device {
	arr := foundation.ArrayFrom(objc.Adopt(objc.CurrentRuntime().CallCreateFunction("MTLCopyAllDevices")))
	if arr == nil {
		return nil
	}
	defer arr.Release()
	n := arr.Count()
	devices := make([]*Device, 0, n)
	for i := 0; i < n; i++ {
		if d := wrap[Device](arr.ObjectAt(i).Retain()); d != nil {
			devices = append(devices, d)
		}
	}
	return devices
}

func (d *Device) check() error {
	if d == nil || d.IsNil() {
		return ErrNilDevice
	}
	return nil
}

func (d *Device) Name() string { return objc.SendString(d, "name") }

func (d *Device) RegistryID() uint64 { return objc.SendUint(d, "registryID") }

func (d *Device) MaxThreadsPerThreadgroup() Size {
	return objc.InvokeReturn[Size](d, "maxThreadsPerThreadgroup")
}

func (d *Device) RecommendedMaxWorkingSetSize() uint64 {
	return objc.SendUint(d, "recommendedMaxWorkingSetSize")
}

func (d *Device) CurrentAllocatedSize() uint { return uint(objc.SendUint(d, "currentAllocatedSize")) }

func (d *Device) MaxBufferLength() uint { return uint(objc.SendUint(d, "maxBufferLength")) }

func (d *Device) HasUnifiedMemory() bool { return objc.SendBool(d, "hasUnifiedMemory") }

func (d *Device) IsLowPower() bool { return objc.SendBool(d, "isLowPower") }

func (d *Device) IsHeadless() bool { return objc.SendBool(d, "isHeadless") }

func (d *Device) SupportsRaytracing() bool { return objc.SendBool(d, "supportsRaytracing") }

func (d *Device) SupportsFamily(f GPUFamily) bool {
	return objc.SendBool(d, "supportsFamily:", f)
}

// Families returns the families from AllGPUFamilies the device supports.
func (d *Device) Families() []GPUFamily {
	var out []GPUFamily
	for _, f := range AllGPUFamilies {
		if d.SupportsFamily(f) {
			out = append(out, f)
		}
	}
	return out
}

// MinimumLinearTextureAlignment returns the row alignment required for a
// texture created from a buffer with the given pixel format.
func (d *Device) MinimumLinearTextureAlignment(f PixelFormat) uint {
	return uint(objc.SendUint(d, "minimumLinearTextureAlignmentForPixelFormat:", f))
}

// HeapBufferSizeAndAlign reports how much heap space a buffer needs.
func (d *Device) HeapBufferSizeAndAlign(length uint, opts ResourceOptions) SizeAndAlign {
	return objc.InvokeReturn[SizeAndAlign](d, "heapBufferSizeAndAlignWithLength:options:",
		objc.Value(length), objc.Value(uint(opts)))
}

// HeapTextureSizeAndAlign reports how much heap space a texture needs.
func (d *Device) HeapTextureSizeAndAlign(desc *TextureDescriptor) SizeAndAlign {
	return objc.InvokeReturn[SizeAndAlign](d, "heapTextureSizeAndAlignWithDescriptor:", objc.Value(objectOf(desc)))
}

// CommandQueue is an MTLCommandQueue. It is safe for concurrent use.
type CommandQueue struct {
	*objc.Object
}

func (d *Device) NewCommandQueue() (*CommandQueue, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := created("command queue", objc.Send(d, "newCommandQueue"))
	return wrap[CommandQueue](obj), err
}

// NewCommandQueueWithMaxCount limits the number of uncompleted command
// buffers the queue hands out.
func (d *Device) NewCommandQueueWithMaxCount(n uint) (*CommandQueue, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := created("command queue", objc.Send(d, "newCommandQueueWithMaxCommandBufferCount:", n))
	return wrap[CommandQueue](obj), err
}

func (q *CommandQueue) Label() string     { return label(q) }
func (q *CommandQueue) SetLabel(s string) { setLabel(q, s) }
func (q *CommandQueue) Device() *Device   { return deviceOf(q) }

// CommandBuffer returns a new command buffer that retains the resources
// encoded into it.
func (q *CommandQueue) CommandBuffer() (*CommandBuffer, error) {
	obj, err := created("command buffer", objc.Send(q, "commandBuffer"))
	return wrap[CommandBuffer](obj), err
}

// CommandBufferWithUnretainedReferences returns a command buffer that does
// not retain its resources; the caller keeps them alive until completion.
func (q *CommandQueue) CommandBufferWithUnretainedReferences() (*CommandBuffer, error) {
	obj, err := created("command buffer", objc.Send(q, "commandBufferWithUnretainedReferences"))
	return wrap[CommandBuffer](obj), err
}
