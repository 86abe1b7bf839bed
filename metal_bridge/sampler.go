package metal_bridge

import (
	"github.com/tsawler/go-mtl/objc"
)

// SamplerDescriptor is an MTLSamplerDescriptor. Fresh descriptors use
// nearest filtering, clamp-to-edge addressing and normalized coordinates.
type SamplerDescriptor struct {
	*objc.Object
}

func NewSamplerDescriptor() *SamplerDescriptor {
	return wrap[SamplerDescriptor](objc.New("MTLSamplerDescriptor"))
}

func (sd *SamplerDescriptor) Label() string     { return label(sd) }
func (sd *SamplerDescriptor) SetLabel(s string) { setLabel(sd, s) }

func (sd *SamplerDescriptor) MinFilter() SamplerMinMagFilter {
	return SamplerMinMagFilter(objc.SendUint(sd, "minFilter"))
}

func (sd *SamplerDescriptor) SetMinFilter(f SamplerMinMagFilter) { objc.SendVoid(sd, "setMinFilter:", f) }

func (sd *SamplerDescriptor) MagFilter() SamplerMinMagFilter {
	return SamplerMinMagFilter(objc.SendUint(sd, "magFilter"))
}

func (sd *SamplerDescriptor) SetMagFilter(f SamplerMinMagFilter) { objc.SendVoid(sd, "setMagFilter:", f) }

func (sd *SamplerDescriptor) MipFilter() SamplerMipFilter {
	return SamplerMipFilter(objc.SendUint(sd, "mipFilter"))
}

func (sd *SamplerDescriptor) SetMipFilter(f SamplerMipFilter) { objc.SendVoid(sd, "setMipFilter:", f) }

func (sd *SamplerDescriptor) MaxAnisotropy() uint { return uint(objc.SendUint(sd, "maxAnisotropy")) }

func (sd *SamplerDescriptor) SetMaxAnisotropy(n uint) { objc.SendVoid(sd, "setMaxAnisotropy:", n) }

func (sd *SamplerDescriptor) SAddressMode() SamplerAddressMode {
	return SamplerAddressMode(objc.SendUint(sd, "sAddressMode"))
}

func (sd *SamplerDescriptor) SetSAddressMode(m SamplerAddressMode) {
	objc.SendVoid(sd, "setSAddressMode:", m)
}

func (sd *SamplerDescriptor) TAddressMode() SamplerAddressMode {
	return SamplerAddressMode(objc.SendUint(sd, "tAddressMode"))
}

func (sd *SamplerDescriptor) SetTAddressMode(m SamplerAddressMode) {
	objc.SendVoid(sd, "setTAddressMode:", m)
}

func (sd *SamplerDescriptor) RAddressMode() SamplerAddressMode {
	return SamplerAddressMode(objc.SendUint(sd, "rAddressMode"))
}

func (sd *SamplerDescriptor) SetRAddressMode(m SamplerAddressMode) {
	objc.SendVoid(sd, "setRAddressMode:", m)
}

// SetAddressMode sets the s, t and r address modes together.
func (sd *SamplerDescriptor) SetAddressMode(m SamplerAddressMode) {
	sd.SetSAddressMode(m)
	sd.SetTAddressMode(m)
	sd.SetRAddressMode(m)
}

// BorderColor applies with SamplerAddressModeClampToBorderColor.
func (sd *SamplerDescriptor) BorderColor() SamplerBorderColor {
	return SamplerBorderColor(objc.SendUint(sd, "borderColor"))
}

func (sd *SamplerDescriptor) SetBorderColor(c SamplerBorderColor) {
	objc.SendVoid(sd, "setBorderColor:", c)
}

func (sd *SamplerDescriptor) NormalizedCoordinates() bool {
	return objc.SendBool(sd, "normalizedCoordinates")
}

func (sd *SamplerDescriptor) SetNormalizedCoordinates(b bool) {
	objc.SendVoid(sd, "setNormalizedCoordinates:", b)
}

func (sd *SamplerDescriptor) LodMinClamp() float32 { return objc.SendFloat32(sd, "lodMinClamp") }

func (sd *SamplerDescriptor) SetLodMinClamp(v float32) { objc.SendVoid(sd, "setLodMinClamp:", v) }

func (sd *SamplerDescriptor) LodMaxClamp() float32 { return objc.SendFloat32(sd, "lodMaxClamp") }

func (sd *SamplerDescriptor) SetLodMaxClamp(v float32) { objc.SendVoid(sd, "setLodMaxClamp:", v) }

func (sd *SamplerDescriptor) CompareFunction() CompareFunction {
	return CompareFunction(objc.SendUint(sd, "compareFunction"))
}

func (sd *SamplerDescriptor) SetCompareFunction(f CompareFunction) {
	objc.SendVoid(sd, "setCompareFunction:", f)
}

// SupportArgumentBuffers must be set for GPUResourceID to be usable.
func (sd *SamplerDescriptor) SupportArgumentBuffers() bool {
	return objc.SendBool(sd, "supportArgumentBuffers")
}

func (sd *SamplerDescriptor) SetSupportArgumentBuffers(b bool) {
	objc.SendVoid(sd, "setSupportArgumentBuffers:", b)
}

// SamplerState is an immutable MTLSamplerState. It is safe for concurrent
// use.
type SamplerState struct {
	*objc.Object
}

func (d *Device) NewSamplerState(desc *SamplerDescriptor) (*SamplerState, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "sampler state", Err: errNilDescriptor}
	}
	obj, err := created("sampler state", objc.Send(d, "newSamplerStateWithDescriptor:", desc))
	return wrap[SamplerState](obj), err
}

func (s *SamplerState) Label() string   { return label(s) }
func (s *SamplerState) Device() *Device { return deviceOf(s) }

func (s *SamplerState) GPUResourceID() ResourceID {
	return objc.InvokeReturn[ResourceID](s, "gpuResourceID")
}
