package metal_bridge

import (
	"github.com/tsawler/go-mtl/objc"
)

// handle is the underlying type of every wrapper in this package.
type handle interface {
	~struct{ *objc.Object }
}

func wrap[T handle](obj *objc.Object) *T {
	if obj == nil {
		return nil
	}
	t := T{obj}
	return &t
}

func objectOf[T handle](h *T) *objc.Object {
	if h == nil {
		return nil
	}
	return struct{ *objc.Object }(*h).Object
}

// Clone returns a second owner of the same Metal object. Both must be
// released.
func Clone[T handle](h *T) *T {
	return wrap[T](objectOf(h).Clone())
}

// Copy returns an owned snapshot of a descriptor. Changes to either copy do
// not affect the other.
func Copy[T handle](h *T) *T {
	return wrap[T](objectOf(h).Copy())
}

func label(r objc.Receiver) string {
	return objc.SendString(r, "label")
}

func setLabel(r objc.Receiver, s string) {
	if s == "" {
		objc.SendVoid(r, "setLabel:", nil)
		return
	}
	objc.SendVoid(r, "setLabel:", s)
}

func deviceOf(r objc.Receiver) *Device {
	return wrap[Device](objc.Send(r, "device"))
}
