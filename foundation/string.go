package foundation

import "github.com/tsawler/go-mtl/objc"

// NewString returns an owned NSString.
func NewString(s string) *objc.Object {
	return objc.NewString(s)
}

// String copies an NSString into Go. nil reads as "".
func String(str objc.Receiver) string {
	return objc.GoString(str)
}
