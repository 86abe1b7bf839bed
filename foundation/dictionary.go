package foundation

import (
	"sort"
	"unsafe"

	"github.com/tsawler/go-mtl/objc"
)

// NewStringDictionary builds an NSDictionary of NSString keys and values.
// Keys are inserted in sorted order.
func NewStringDictionary(m map[string]string) *objc.Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	owned := make([]*objc.Object, 0, 2*len(keys))
	defer func() {
		for _, o := range owned {
			o.Release()
		}
	}()
	ks := make([]objc.ID, 0, len(keys))
	vs := make([]objc.ID, 0, len(keys))
	for _, k := range keys {
		ko, vo := NewString(k), NewString(m[k])
		owned = append(owned, ko, vo)
		ks = append(ks, ko.ObjectID())
		vs = append(vs, vo.ObjectID())
	}
	var kp, vp unsafe.Pointer
	if len(ks) > 0 {
		kp, vp = unsafe.Pointer(&ks[0]), unsafe.Pointer(&vs[0])
	}
	return objc.SendClass("NSDictionary", "dictionaryWithObjects:forKeys:count:", vp, kp, uint(len(ks)))
}

// NewNumber returns an NSNumber holding an unsigned integer.
func NewNumber(v uint64) *objc.Object {
	return objc.SendClass("NSNumber", "numberWithUnsignedLongLong:", v)
}

// NumberValue reads an NSNumber as an unsigned integer.
func NumberValue(n objc.Receiver) uint64 {
	return objc.SendUint(n, "unsignedLongLongValue")
}
