package objc

import (
	"runtime"
	"sync/atomic"
)

// Object owns exactly one retain of an Objective-C object. Release gives it
// back; if the Object becomes unreachable first, a finalizer releases it.
//
// Object is safe for concurrent use. Types built on Object inherit that
// property only where the wrapped Objective-C class is itself documented as
// thread-safe.
type Object struct {
	id       ID
	rt       Runtime
	released atomic.Bool
}

func newObject(id ID, rt Runtime) *Object {
	obj := &Object{id: id, rt: rt}
	runtime.SetFinalizer(obj, func(o *Object) {
		if o.released.CompareAndSwap(false, true) {
			logger().Debug("objc: releasing unreleased object from finalizer", "id", o.id)
			o.rt.Release(o.id)
		}
	})
	return obj
}

// Adopt takes over a +1 reference, as returned by alloc/new/copy/init
// methods and Create-rule functions. It returns nil for nil.
func Adopt(id ID) *Object {
	if id == 0 {
		return nil
	}
	return newObject(id, current().rt)
}

// Retain retains a borrowed (+0) reference and returns its owner. It returns
// nil for nil.
func Retain(id ID) *Object {
	if id == 0 {
		return nil
	}
	rt := current().rt
	return newObject(rt.Retain(id), rt)
}

// Wrap owns the object returned by the message sel: the result is adopted if
// sel belongs to an ownership-transferring method family and retained
// otherwise. Objects returned through Send are already +1 whatever the family,
// so Wrap is for results obtained some other way, such as Invoke.
func Wrap(id ID, sel string) *Object {
	if ReturnsRetained(sel) {
		return Adopt(id)
	}
	return Retain(id)
}

// ObjectID returns the wrapped pointer, or nil after Release.
func (o *Object) ObjectID() ID {
	if o == nil || o.released.Load() {
		return 0
	}
	return o.id
}

// IsNil reports whether o is nil or released.
func (o *Object) IsNil() bool {
	return o.ObjectID() == 0
}

// Release gives up the retain held by o. Only the first call has any effect.
func (o *Object) Release() {
	if o == nil {
		return
	}
	if o.released.CompareAndSwap(false, true) {
		o.rt.Release(o.id)
		runtime.SetFinalizer(o, nil)
	}
}

// Clone retains the object again and returns a second, independent owner.
func (o *Object) Clone() *Object {
	id := o.ObjectID()
	if id == 0 {
		return nil
	}
	c := newObject(o.rt.Retain(id), o.rt)
	runtime.KeepAlive(o)
	return c
}

// Copy sends copy and owns the result. For descriptors this is a snapshot
// that later setters on o do not affect.
func (o *Object) Copy() *Object {
	id := o.ObjectID()
	if id == 0 {
		return nil
	}
	return Send(id, "copy")
}

// Ref returns a borrowed view of o that is valid while o is neither released
// nor unreachable.
func (o *Object) Ref() Ref {
	return Ref{id: o.ObjectID()}
}

// ClassName returns the name of the object's class.
func (o *Object) ClassName() string {
	id := o.ObjectID()
	if id == 0 {
		return ""
	}
	name := o.rt.ClassName(id)
	runtime.KeepAlive(o)
	return name
}

func (o *Object) String() string {
	if o.IsNil() {
		return "<nil>"
	}
	return "<" + o.ClassName() + " " + o.id.String() + ">"
}

// Ref is a borrowed object pointer. It never retains or releases.
type Ref struct {
	id ID
}

// Borrow returns a Ref for id.
func Borrow(id ID) Ref {
	return Ref{id: id}
}

// ObjectID implements Receiver.
func (r Ref) ObjectID() ID { return r.id }

func (r Ref) IsNil() bool { return r.id == 0 }

// Retain promotes the borrowed reference to an owned one.
func (r Ref) Retain() *Object {
	return Retain(r.id)
}
