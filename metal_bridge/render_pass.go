package metal_bridge

import (
	"github.com/tsawler/go-mtl/objc"
)

// RenderPassDescriptor is an MTLRenderPassDescriptor: the attachments a
// render command encoder draws into.
type RenderPassDescriptor struct {
	*objc.Object
}

func NewRenderPassDescriptor() *RenderPassDescriptor {
	return wrap[RenderPassDescriptor](objc.SendClass("MTLRenderPassDescriptor", "renderPassDescriptor"))
}

// ColorAttachment returns color attachment i. Changes to it modify rp.
func (rp *RenderPassDescriptor) ColorAttachment(i uint) *RenderPassColorAttachmentDescriptor {
	arr := objc.Send(rp, "colorAttachments")
	if arr == nil {
		return nil
	}
	defer arr.Release()
	return wrap[RenderPassColorAttachmentDescriptor](objc.Send(arr, "objectAtIndexedSubscript:", i))
}

func (rp *RenderPassDescriptor) DepthAttachment() *RenderPassDepthAttachmentDescriptor {
	return wrap[RenderPassDepthAttachmentDescriptor](objc.Send(rp, "depthAttachment"))
}

func (rp *RenderPassDescriptor) StencilAttachment() *RenderPassStencilAttachmentDescriptor {
	return wrap[RenderPassStencilAttachmentDescriptor](objc.Send(rp, "stencilAttachment"))
}

func (rp *RenderPassDescriptor) RenderTargetWidth() uint {
	return uint(objc.SendUint(rp, "renderTargetWidth"))
}

func (rp *RenderPassDescriptor) SetRenderTargetWidth(w uint) {
	objc.SendVoid(rp, "setRenderTargetWidth:", w)
}

func (rp *RenderPassDescriptor) RenderTargetHeight() uint {
	return uint(objc.SendUint(rp, "renderTargetHeight"))
}

func (rp *RenderPassDescriptor) SetRenderTargetHeight(h uint) {
	objc.SendVoid(rp, "setRenderTargetHeight:", h)
}

func (rp *RenderPassDescriptor) DefaultRasterSampleCount() uint {
	return uint(objc.SendUint(rp, "defaultRasterSampleCount"))
}

func (rp *RenderPassDescriptor) SetDefaultRasterSampleCount(n uint) {
	objc.SendVoid(rp, "setDefaultRasterSampleCount:", n)
}

// Properties shared by every MTLRenderPassAttachmentDescriptor.
func attachmentTexture(a objc.Receiver) *Texture { return wrap[Texture](objc.Send(a, "texture")) }

func setAttachmentTexture(a objc.Receiver, t *Texture) { objc.SendVoid(a, "setTexture:", t) }

func loadAction(a objc.Receiver) LoadAction { return LoadAction(objc.SendUint(a, "loadAction")) }

func storeAction(a objc.Receiver) StoreAction { return StoreAction(objc.SendUint(a, "storeAction")) }

// RenderPassColorAttachmentDescriptor is an
// MTLRenderPassColorAttachmentDescriptor.
type RenderPassColorAttachmentDescriptor struct {
	*objc.Object
}

func (a *RenderPassColorAttachmentDescriptor) Texture() *Texture     { return attachmentTexture(a) }
func (a *RenderPassColorAttachmentDescriptor) SetTexture(t *Texture) { setAttachmentTexture(a, t) }
func (a *RenderPassColorAttachmentDescriptor) LoadAction() LoadAction {
	return loadAction(a)
}

func (a *RenderPassColorAttachmentDescriptor) SetLoadAction(l LoadAction) {
	objc.SendVoid(a, "setLoadAction:", l)
}

func (a *RenderPassColorAttachmentDescriptor) StoreAction() StoreAction { return storeAction(a) }

func (a *RenderPassColorAttachmentDescriptor) SetStoreAction(s StoreAction) {
	objc.SendVoid(a, "setStoreAction:", s)
}

func (a *RenderPassColorAttachmentDescriptor) Level() uint     { return uint(objc.SendUint(a, "level")) }
func (a *RenderPassColorAttachmentDescriptor) SetLevel(l uint) { objc.SendVoid(a, "setLevel:", l) }
func (a *RenderPassColorAttachmentDescriptor) Slice() uint     { return uint(objc.SendUint(a, "slice")) }
func (a *RenderPassColorAttachmentDescriptor) SetSlice(s uint) { objc.SendVoid(a, "setSlice:", s) }

func (a *RenderPassColorAttachmentDescriptor) ResolveTexture() *Texture {
	return wrap[Texture](objc.Send(a, "resolveTexture"))
}

func (a *RenderPassColorAttachmentDescriptor) SetResolveTexture(t *Texture) {
	objc.SendVoid(a, "setResolveTexture:", t)
}

func (a *RenderPassColorAttachmentDescriptor) ClearColor() ClearColor {
	return objc.InvokeReturn[ClearColor](a, "clearColor")
}

func (a *RenderPassColorAttachmentDescriptor) SetClearColor(c ClearColor) {
	objc.Invoke(a, "setClearColor:", "v", nil, objc.Value(c))
}

// RenderPassDepthAttachmentDescriptor is an
// MTLRenderPassDepthAttachmentDescriptor.
type RenderPassDepthAttachmentDescriptor struct {
	*objc.Object
}

func (a *RenderPassDepthAttachmentDescriptor) Texture() *Texture     { return attachmentTexture(a) }
func (a *RenderPassDepthAttachmentDescriptor) SetTexture(t *Texture) { setAttachmentTexture(a, t) }
func (a *RenderPassDepthAttachmentDescriptor) LoadAction() LoadAction {
	return loadAction(a)
}

func (a *RenderPassDepthAttachmentDescriptor) SetLoadAction(l LoadAction) {
	objc.SendVoid(a, "setLoadAction:", l)
}

func (a *RenderPassDepthAttachmentDescriptor) StoreAction() StoreAction { return storeAction(a) }

func (a *RenderPassDepthAttachmentDescriptor) SetStoreAction(s StoreAction) {
	objc.SendVoid(a, "setStoreAction:", s)
}

func (a *RenderPassDepthAttachmentDescriptor) ClearDepth() float64 {
	return objc.SendFloat64(a, "clearDepth")
}

func (a *RenderPassDepthAttachmentDescriptor) SetClearDepth(v float64) {
	objc.SendVoid(a, "setClearDepth:", v)
}

// RenderPassStencilAttachmentDescriptor is an
// MTLRenderPassStencilAttachmentDescriptor.
type RenderPassStencilAttachmentDescriptor struct {
	*objc.Object
}

func (a *RenderPassStencilAttachmentDescriptor) Texture() *Texture     { return attachmentTexture(a) }
func (a *RenderPassStencilAttachmentDescriptor) SetTexture(t *Texture) { setAttachmentTexture(a, t) }
func (a *RenderPassStencilAttachmentDescriptor) LoadAction() LoadAction {
	return loadAction(a)
}

func (a *RenderPassStencilAttachmentDescriptor) SetLoadAction(l LoadAction) {
	objc.SendVoid(a, "setLoadAction:", l)
}

func (a *RenderPassStencilAttachmentDescriptor) StoreAction() StoreAction { return storeAction(a) }

func (a *RenderPassStencilAttachmentDescriptor) SetStoreAction(s StoreAction) {
	objc.SendVoid(a, "setStoreAction:", s)
}

func (a *RenderPassStencilAttachmentDescriptor) ClearStencil() uint32 {
	return uint32(objc.SendUint(a, "clearStencil"))
}

func (a *RenderPassStencilAttachmentDescriptor) SetClearStencil(v uint32) {
	objc.SendVoid(a, "setClearStencil:", v)
}
