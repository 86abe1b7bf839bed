package metal_bridge

import (
	"github.com/tsawler/go-mtl/objc"
)

// StencilDescriptor is an MTLStencilDescriptor.
type StencilDescriptor struct {
	*objc.Object
}

func NewStencilDescriptor() *StencilDescriptor {
	return wrap[StencilDescriptor](objc.New("MTLStencilDescriptor"))
}

func (sd *StencilDescriptor) StencilCompareFunction() CompareFunction {
	return CompareFunction(objc.SendUint(sd, "stencilCompareFunction"))
}

func (sd *StencilDescriptor) SetStencilCompareFunction(f CompareFunction) {
	objc.SendVoid(sd, "setStencilCompareFunction:", f)
}

func (sd *StencilDescriptor) StencilFailureOperation() StencilOperation {
	return StencilOperation(objc.SendUint(sd, "stencilFailureOperation"))
}

func (sd *StencilDescriptor) SetStencilFailureOperation(op StencilOperation) {
	objc.SendVoid(sd, "setStencilFailureOperation:", op)
}

func (sd *StencilDescriptor) DepthFailureOperation() StencilOperation {
	return StencilOperation(objc.SendUint(sd, "depthFailureOperation"))
}

func (sd *StencilDescriptor) SetDepthFailureOperation(op StencilOperation) {
	objc.SendVoid(sd, "setDepthFailureOperation:", op)
}

func (sd *StencilDescriptor) DepthStencilPassOperation() StencilOperation {
	return StencilOperation(objc.SendUint(sd, "depthStencilPassOperation"))
}

func (sd *StencilDescriptor) SetDepthStencilPassOperation(op StencilOperation) {
	objc.SendVoid(sd, "setDepthStencilPassOperation:", op)
}

func (sd *StencilDescriptor) ReadMask() uint32 { return uint32(objc.SendUint(sd, "readMask")) }

func (sd *StencilDescriptor) SetReadMask(m uint32) { objc.SendVoid(sd, "setReadMask:", m) }

func (sd *StencilDescriptor) WriteMask() uint32 { return uint32(objc.SendUint(sd, "writeMask")) }

func (sd *StencilDescriptor) SetWriteMask(m uint32) { objc.SendVoid(sd, "setWriteMask:", m) }

// DepthStencilDescriptor is an MTLDepthStencilDescriptor. A fresh
// descriptor always passes the depth test and does not write depth.
type DepthStencilDescriptor struct {
	*objc.Object
}

func NewDepthStencilDescriptor() *DepthStencilDescriptor {
	return wrap[DepthStencilDescriptor](objc.New("MTLDepthStencilDescriptor"))
}

func (dd *DepthStencilDescriptor) Label() string     { return label(dd) }
func (dd *DepthStencilDescriptor) SetLabel(s string) { setLabel(dd, s) }

func (dd *DepthStencilDescriptor) DepthCompareFunction() CompareFunction {
	return CompareFunction(objc.SendUint(dd, "depthCompareFunction"))
}

func (dd *DepthStencilDescriptor) SetDepthCompareFunction(f CompareFunction) {
	objc.SendVoid(dd, "setDepthCompareFunction:", f)
}

func (dd *DepthStencilDescriptor) IsDepthWriteEnabled() bool {
	return objc.SendBool(dd, "isDepthWriteEnabled")
}

func (dd *DepthStencilDescriptor) SetDepthWriteEnabled(b bool) {
	objc.SendVoid(dd, "setDepthWriteEnabled:", b)
}

// FrontFaceStencil returns the stencil state for front-facing primitives,
// or nil when stencil testing is off for them.
func (dd *DepthStencilDescriptor) FrontFaceStencil() *StencilDescriptor {
	return wrap[StencilDescriptor](objc.Send(dd, "frontFaceStencil"))
}

// SetFrontFaceStencil copies sd into the descriptor.
func (dd *DepthStencilDescriptor) SetFrontFaceStencil(sd *StencilDescriptor) {
	objc.SendVoid(dd, "setFrontFaceStencil:", sd)
}

func (dd *DepthStencilDescriptor) BackFaceStencil() *StencilDescriptor {
	return wrap[StencilDescriptor](objc.Send(dd, "backFaceStencil"))
}

func (dd *DepthStencilDescriptor) SetBackFaceStencil(sd *StencilDescriptor) {
	objc.SendVoid(dd, "setBackFaceStencil:", sd)
}

// DepthStencilState is an immutable MTLDepthStencilState.
type DepthStencilState struct {
	*objc.Object
}

func (d *Device) NewDepthStencilState(desc *DepthStencilDescriptor) (*DepthStencilState, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "depth stencil state", Err: errNilDescriptor}
	}
	obj, err := created("depth stencil state", objc.Send(d, "newDepthStencilStateWithDescriptor:", desc))
	return wrap[DepthStencilState](obj), err
}

func (s *DepthStencilState) Label() string   { return label(s) }
func (s *DepthStencilState) Device() *Device { return deviceOf(s) }
