package quartzcore

import (
	"time"

	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
)

// MetalDrawable is a CAMetalDrawable: one texture of a layer's swap chain.
// Pass it to CommandBuffer.PresentDrawable or call Present after rendering.
type MetalDrawable struct {
	*objc.Object
}

// Texture returns the texture to render into. It belongs to the drawable;
// release it before the drawable.
func (d *MetalDrawable) Texture() *metal_bridge.Texture {
	obj := objc.Send(d, "texture")
	if obj == nil {
		return nil
	}
	return &metal_bridge.Texture{Object: obj}
}

// Layer returns the layer that vended the drawable.
func (d *MetalDrawable) Layer() *MetalLayer {
	obj := objc.Send(d, "layer")
	if obj == nil {
		return nil
	}
	return &MetalLayer{obj}
}

// DrawableID identifies the drawable within its layer.
func (d *MetalDrawable) DrawableID() uint { return uint(objc.SendUint(d, "drawableID")) }

// Present shows the drawable as soon as possible. Prefer
// CommandBuffer.PresentDrawable, which waits for rendering to finish.
func (d *MetalDrawable) Present() { objc.SendVoid(d, "present") }

// PresentAtTime shows the drawable at a host time in seconds, as measured by
// CACurrentMediaTime.
func (d *MetalDrawable) PresentAtTime(seconds float64) {
	objc.SendVoid(d, "presentAtTime:", seconds)
}

// PresentAfterMinimumDuration shows the drawable no sooner than min after the
// previous drawable was shown.
func (d *MetalDrawable) PresentAfterMinimumDuration(min time.Duration) {
	objc.SendVoid(d, "presentAfterMinimumDuration:", min.Seconds())
}

// PresentedTime is the host time the drawable was shown, or zero.
func (d *MetalDrawable) PresentedTime() float64 { return objc.SendFloat64(d, "presentedTime") }

// AddPresentedHandler registers handler to run once the drawable is on
// screen. Register before presenting.
func (d *MetalDrawable) AddPresentedHandler(handler func(*MetalDrawable)) {
	block := objc.NewBlock(func(a, _ uintptr) {
		borrowed := &MetalDrawable{objc.Retain(objc.ID(a))}
		defer borrowed.Release()
		handler(borrowed)
	})
	if block == nil {
		return
	}
	defer block.Release()
	objc.SendVoid(d, "addPresentedHandler:", block)
}
