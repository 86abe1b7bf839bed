package foundation

import (
	"unsafe"

	"github.com/tsawler/go-mtl/objc"
)

// Data is an owned NSData.
type Data struct {
	*objc.Object
}

// NewData copies b into a new NSData.
func NewData(b []byte) *Data {
	var p unsafe.Pointer
	if len(b) > 0 {
		p = unsafe.Pointer(&b[0])
	}
	d := objc.SendClass("NSData", "dataWithBytes:length:", p, uint(len(b)))
	if d == nil {
		return nil
	}
	return &Data{d}
}

// DataFrom takes ownership of an NSData.
func DataFrom(obj *objc.Object) *Data {
	if obj == nil {
		return nil
	}
	return &Data{obj}
}

func (d *Data) Len() int {
	if d == nil {
		return 0
	}
	return int(objc.SendUint(d, "length"))
}

// Bytes copies the contents of d.
func (d *Data) Bytes() []byte {
	n := d.Len()
	if n == 0 {
		return nil
	}
	p := objc.SendPointer(d, "bytes")
	if p == nil {
		return nil
	}
	return append([]byte(nil), unsafe.Slice((*byte)(p), n)...)
}

// Release is safe to call on a nil *Data.
func (d *Data) Release() {
	if d != nil {
		d.Object.Release()
	}
}
