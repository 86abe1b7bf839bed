package foundation

import "github.com/tsawler/go-mtl/objc"

// URL is an owned NSURL.
type URL struct {
	*objc.Object
}

// NewFileURL returns a file URL for path.
func NewFileURL(path string) *URL {
	u := objc.SendClass("NSURL", "fileURLWithPath:", path)
	if u == nil {
		return nil
	}
	return &URL{u}
}

// URLFrom takes ownership of an NSURL.
func URLFrom(obj *objc.Object) *URL {
	if obj == nil {
		return nil
	}
	return &URL{obj}
}

func (u *URL) Path() string {
	return objc.SendString(u, "path")
}

func (u *URL) AbsoluteString() string {
	return objc.SendString(u, "absoluteString")
}

// Release is safe to call on a nil *URL.
func (u *URL) Release() {
	if u != nil {
		u.Object.Release()
	}
}
