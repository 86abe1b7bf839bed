// Package quartzcore wraps CAMetalLayer and CAMetalDrawable, the Core
// Animation types that put Metal textures on screen.
package quartzcore

import (
	"fmt"

	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
)

// Size is a CGSize.
type Size struct {
	Width  float64
	Height float64
}

func (Size) Encoding() string { return "{CGSize=dd}" }

// MetalLayer is a CAMetalLayer. Configure it on the main thread; NextDrawable
// may be called from any thread.
type MetalLayer struct {
	*objc.Object
}

// NewMetalLayer creates a layer with Core Animation's defaults: BGRA8Unorm,
// framebuffer only, three drawables.
func NewMetalLayer() (*MetalLayer, error) {
	obj := objc.New("CAMetalLayer")
	if obj == nil {
		if !objc.Available() {
			return nil, &metal_bridge.CreateError{Object: "metal layer", Err: metal_bridge.ErrUnsupported}
		}
		return nil, &metal_bridge.CreateError{Object: "metal layer"}
	}
	return &MetalLayer{obj}, nil
}

// Device returns the layer's device, or nil if none has been set.
func (l *MetalLayer) Device() *metal_bridge.Device {
	obj := objc.Send(l, "device")
	if obj == nil {
		return nil
	}
	return &metal_bridge.Device{Object: obj}
}

// SetDevice sets the device drawables are allocated from. The layer retains
// it.
func (l *MetalLayer) SetDevice(d *metal_bridge.Device) { objc.SendVoid(l, "setDevice:", d) }

func (l *MetalLayer) PixelFormat() metal_bridge.PixelFormat {
	return metal_bridge.PixelFormat(objc.SendUint(l, "pixelFormat"))
}

// SetPixelFormat sets the drawable format. Core Animation accepts only
// BGRA8Unorm, BGRA8Unorm_sRGB, RGBA16Float, BGR10A2Unorm and RGB10A2Unorm;
// other formats return an error instead of raising.
func (l *MetalLayer) SetPixelFormat(f metal_bridge.PixelFormat) error {
	switch f {
	case metal_bridge.PixelFormatBGRA8Unorm, metal_bridge.PixelFormatBGRA8UnormSRGB,
		metal_bridge.PixelFormatRGBA16Float, metal_bridge.PixelFormatBGR10A2Unorm,
		metal_bridge.PixelFormatRGB10A2Unorm:
	default:
		return fmt.Errorf("quartzcore: %s is not a layer pixel format", f)
	}
	objc.SendVoid(l, "setPixelFormat:", f)
	return nil
}

// DrawableSize is the size in pixels of the layer's textures.
func (l *MetalLayer) DrawableSize() Size {
	return objc.InvokeReturn[Size](l, "drawableSize")
}

func (l *MetalLayer) SetDrawableSize(s Size) {
	objc.Invoke(l, "setDrawableSize:", "v", nil, objc.Value(s))
}

// FramebufferOnly reports whether drawable textures may only be render
// targets.
func (l *MetalLayer) FramebufferOnly() bool { return objc.SendBool(l, "framebufferOnly") }

func (l *MetalLayer) SetFramebufferOnly(b bool) { objc.SendVoid(l, "setFramebufferOnly:", b) }

func (l *MetalLayer) MaximumDrawableCount() uint {
	return uint(objc.SendUint(l, "maximumDrawableCount"))
}

// SetMaximumDrawableCount sets the swap chain length, which must be 2 or 3.
func (l *MetalLayer) SetMaximumDrawableCount(n uint) error {
	if n < 2 || n > 3 {
		return fmt.Errorf("quartzcore: maximum drawable count must be 2 or 3, got %d", n)
	}
	objc.SendVoid(l, "setMaximumDrawableCount:", n)
	return nil
}

func (l *MetalLayer) PresentsWithTransaction() bool {
	return objc.SendBool(l, "presentsWithTransaction")
}

func (l *MetalLayer) SetPresentsWithTransaction(b bool) {
	objc.SendVoid(l, "setPresentsWithTransaction:", b)
}

func (l *MetalLayer) DisplaySyncEnabled() bool { return objc.SendBool(l, "displaySyncEnabled") }

func (l *MetalLayer) SetDisplaySyncEnabled(b bool) { objc.SendVoid(l, "setDisplaySyncEnabled:", b) }

// AllowsNextDrawableTimeout reports whether NextDrawable gives up after one
// second instead of waiting indefinitely.
func (l *MetalLayer) AllowsNextDrawableTimeout() bool {
	return objc.SendBool(l, "allowsNextDrawableTimeout")
}

func (l *MetalLayer) SetAllowsNextDrawableTimeout(b bool) {
	objc.SendVoid(l, "setAllowsNextDrawableTimeout:", b)
}

func (l *MetalLayer) Opaque() bool { return objc.SendBool(l, "isOpaque") }

func (l *MetalLayer) SetOpaque(b bool) { objc.SendVoid(l, "setOpaque:", b) }

// ContentsScale maps layer points to drawable pixels.
func (l *MetalLayer) ContentsScale() float64 { return objc.SendFloat64(l, "contentsScale") }

func (l *MetalLayer) SetContentsScale(scale float64) {
	objc.SendVoid(l, "setContentsScale:", scale)
}

// NextDrawable waits for the next free drawable. It returns nil when the
// layer has no device or size, or the wait timed out. Release the drawable
// as soon as it has been presented; holding it stalls the swap chain.
func (l *MetalLayer) NextDrawable() *MetalDrawable {
	obj := objc.Send(l, "nextDrawable")
	if obj == nil {
		return nil
	}
	return &MetalDrawable{obj}
}

func (l *MetalLayer) String() string {
	s := l.DrawableSize()
	return fmt.Sprintf("CAMetalLayer{pixelFormat=%s, drawableSize=%gx%g, framebufferOnly=%t, maximumDrawableCount=%d}",
		l.PixelFormat(), s.Width, s.Height, l.FramebufferOnly(), l.MaximumDrawableCount())
}
