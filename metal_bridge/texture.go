package metal_bridge

import (
	"fmt"
	"unsafe"

	"github.com/tsawler/go-mtl/objc"
)

// TextureDescriptor is an MTLTextureDescriptor. A fresh descriptor
// describes a 1x1 RGBA8Unorm 2D texture with one mipmap level.
type TextureDescriptor struct {
	*objc.Object
}

func NewTextureDescriptor() *TextureDescriptor {
	return wrap[TextureDescriptor](objc.New("MTLTextureDescriptor"))
}

// Texture2DDescriptor returns a descriptor for a 2D texture, with a full
// mipmap chain when mipmapped is set.
func Texture2DDescriptor(format PixelFormat, width, height uint, mipmapped bool) *TextureDescriptor {
	return wrap[TextureDescriptor](objc.SendClass("MTLTextureDescriptor",
		"texture2DDescriptorWithPixelFormat:width:height:mipmapped:", format, width, height, mipmapped))
}

func (td *TextureDescriptor) TextureType() TextureType {
	return TextureType(objc.SendUint(td, "textureType"))
}

func (td *TextureDescriptor) SetTextureType(t TextureType) { objc.SendVoid(td, "setTextureType:", t) }

func (td *TextureDescriptor) PixelFormat() PixelFormat {
	return PixelFormat(objc.SendUint(td, "pixelFormat"))
}

func (td *TextureDescriptor) SetPixelFormat(f PixelFormat) { objc.SendVoid(td, "setPixelFormat:", f) }

func (td *TextureDescriptor) Width() uint       { return uint(objc.SendUint(td, "width")) }
func (td *TextureDescriptor) SetWidth(w uint)   { objc.SendVoid(td, "setWidth:", w) }
func (td *TextureDescriptor) Height() uint      { return uint(objc.SendUint(td, "height")) }
func (td *TextureDescriptor) SetHeight(h uint)  { objc.SendVoid(td, "setHeight:", h) }
func (td *TextureDescriptor) Depth() uint       { return uint(objc.SendUint(td, "depth")) }
func (td *TextureDescriptor) SetDepth(d uint)   { objc.SendVoid(td, "setDepth:", d) }
func (td *TextureDescriptor) ArrayLength() uint { return uint(objc.SendUint(td, "arrayLength")) }

func (td *TextureDescriptor) SetArrayLength(n uint) { objc.SendVoid(td, "setArrayLength:", n) }

func (td *TextureDescriptor) MipmapLevelCount() uint {
	return uint(objc.SendUint(td, "mipmapLevelCount"))
}

func (td *TextureDescriptor) SetMipmapLevelCount(n uint) {
	objc.SendVoid(td, "setMipmapLevelCount:", n)
}

func (td *TextureDescriptor) SampleCount() uint     { return uint(objc.SendUint(td, "sampleCount")) }
func (td *TextureDescriptor) SetSampleCount(n uint) { objc.SendVoid(td, "setSampleCount:", n) }

func (td *TextureDescriptor) Usage() TextureUsage     { return TextureUsage(objc.SendUint(td, "usage")) }
func (td *TextureDescriptor) SetUsage(u TextureUsage) { objc.SendVoid(td, "setUsage:", u) }

func (td *TextureDescriptor) StorageMode() StorageMode { return storageMode(td) }

func (td *TextureDescriptor) SetStorageMode(m StorageMode) { objc.SendVoid(td, "setStorageMode:", m) }

func (td *TextureDescriptor) CPUCacheMode() CPUCacheMode { return cpuCacheMode(td) }

func (td *TextureDescriptor) SetCPUCacheMode(m CPUCacheMode) {
	objc.SendVoid(td, "setCpuCacheMode:", m)
}

func (td *TextureDescriptor) HazardTrackingMode() HazardTrackingMode { return hazardTrackingMode(td) }

func (td *TextureDescriptor) SetHazardTrackingMode(m HazardTrackingMode) {
	objc.SendVoid(td, "setHazardTrackingMode:", m)
}

func (td *TextureDescriptor) ResourceOptions() ResourceOptions { return resourceOptions(td) }

// SetResourceOptions sets the storage, cache and hazard tracking modes at
// once.
func (td *TextureDescriptor) SetResourceOptions(o ResourceOptions) {
	objc.SendVoid(td, "setResourceOptions:", o)
}

func (td *TextureDescriptor) AllowGPUOptimizedContents() bool {
	return objc.SendBool(td, "allowGPUOptimizedContents")
}

func (td *TextureDescriptor) SetAllowGPUOptimizedContents(b bool) {
	objc.SendVoid(td, "setAllowGPUOptimizedContents:", b)
}

// Texture is an MTLTexture.
type Texture struct {
	*objc.Object
}

func (d *Device) NewTexture(desc *TextureDescriptor) (*Texture, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "texture", Err: errNilDescriptor}
	}
	obj, err := created("texture", objc.Send(d, "newTextureWithDescriptor:", desc))
	return wrap[Texture](obj), err
}

func (t *Texture) TextureType() TextureType { return TextureType(objc.SendUint(t, "textureType")) }
func (t *Texture) PixelFormat() PixelFormat { return PixelFormat(objc.SendUint(t, "pixelFormat")) }
func (t *Texture) Width() uint              { return uint(objc.SendUint(t, "width")) }
func (t *Texture) Height() uint             { return uint(objc.SendUint(t, "height")) }
func (t *Texture) Depth() uint              { return uint(objc.SendUint(t, "depth")) }
func (t *Texture) MipmapLevelCount() uint   { return uint(objc.SendUint(t, "mipmapLevelCount")) }
func (t *Texture) ArrayLength() uint        { return uint(objc.SendUint(t, "arrayLength")) }
func (t *Texture) SampleCount() uint        { return uint(objc.SendUint(t, "sampleCount")) }
func (t *Texture) Usage() TextureUsage      { return TextureUsage(objc.SendUint(t, "usage")) }
func (t *Texture) IsFramebufferOnly() bool  { return objc.SendBool(t, "isFramebufferOnly") }

// Size returns the texture's extent at mipmap level 0.
func (t *Texture) Size() Size {
	return Size{Width: t.Width(), Height: t.Height(), Depth: t.Depth()}
}

// ParentTexture returns the texture t is a view of, or nil.
func (t *Texture) ParentTexture() *Texture {
	return wrap[Texture](objc.Send(t, "parentTexture"))
}

// Buffer returns the buffer backing a linear texture, or nil.
func (t *Texture) Buffer() *Buffer {
	return wrap[Buffer](objc.Send(t, "buffer"))
}

func (t *Texture) GPUResourceID() ResourceID {
	return objc.InvokeReturn[ResourceID](t, "gpuResourceID")
}

func checkRegion(region Region, data []byte, bytesPerRow uint) error {
	rows := region.Size.Height * region.Size.Depth
	if rows == 0 || region.Size.Width == 0 {
		return fmt.Errorf("empty region %+v", region.Size)
	}
	if need := bytesPerRow * rows; uint(len(data)) < need {
		return fmt.Errorf("region needs %d bytes, have %d", need, len(data))
	}
	return nil
}

// ReplaceRegion copies pixel rows from data into a region of a CPU
// accessible texture.
func (t *Texture) ReplaceRegion(region Region, level uint, data []byte, bytesPerRow uint) error {
	if err := checkRegion(region, data, bytesPerRow); err != nil {
		return err
	}
	objc.Invoke(t, "replaceRegion:mipmapLevel:withBytes:bytesPerRow:", "v", nil,
		objc.Value(region), objc.Value(level), objc.Value(unsafe.Pointer(&data[0])), objc.Value(bytesPerRow))
	return nil
}

// GetBytes copies pixel rows from a region of a CPU accessible texture into
// dst.
func (t *Texture) GetBytes(dst []byte, bytesPerRow uint, region Region, level uint) error {
	if err := checkRegion(region, dst, bytesPerRow); err != nil {
		return err
	}
	objc.Invoke(t, "getBytes:bytesPerRow:fromRegion:mipmapLevel:", "v", nil,
		objc.Value(unsafe.Pointer(&dst[0])), objc.Value(bytesPerRow), objc.Value(region), objc.Value(level))
	return nil
}

// NewTextureView reinterprets the texture's storage with another,
// compatible pixel format. The texture must have TextureUsagePixelFormatView.
func (t *Texture) NewTextureView(f PixelFormat) (*Texture, error) {
	obj, err := created("texture view", objc.Send(t, "newTextureViewWithPixelFormat:", f))
	return wrap[Texture](obj), err
}
