package foundation

import (
	"unsafe"

	"github.com/tsawler/go-mtl/objc"
)

// Array is an owned NSArray.
type Array struct {
	*objc.Object
}

// NewArray returns an NSArray holding the given objects. nil receivers are
// skipped since NSArray can't hold nil.
func NewArray(objs ...objc.Receiver) *Array {
	ids := make([]objc.ID, 0, len(objs))
	for _, o := range objs {
		if id := objc.IDOf(o); id != 0 {
			ids = append(ids, id)
		}
	}
	var p unsafe.Pointer
	if len(ids) > 0 {
		p = unsafe.Pointer(&ids[0])
	}
	arr := objc.SendClass("NSArray", "arrayWithObjects:count:", p, uint(len(ids)))
	if arr == nil {
		return nil
	}
	return &Array{arr}
}

// ArrayFrom takes ownership of an NSArray.
func ArrayFrom(obj *objc.Object) *Array {
	if obj == nil {
		return nil
	}
	return &Array{obj}
}

func (a *Array) Count() int {
	if a == nil {
		return 0
	}
	return int(objc.SendUint(a, "count"))
}

// ObjectAt returns the element at i, borrowed from the array.
func (a *Array) ObjectAt(i int) objc.Ref {
	return objc.Borrow(objc.ID(objc.SendUint(a, "objectAtIndex:", uint(i))))
}

// Strings copies an array of NSString.
func (a *Array) Strings() []string {
	n := a.Count()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, String(a.ObjectAt(i)))
	}
	return out
}

// Release is safe to call on a nil *Array.
func (a *Array) Release() {
	if a != nil {
		a.Object.Release()
	}
}
