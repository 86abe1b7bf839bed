package objc

import "runtime"

// NewString returns an owned NSString holding a copy of s.
func NewString(s string) *Object {
	rt := current().rt
	id := rt.NewString(s)
	if id == 0 {
		return nil
	}
	return newObject(id, rt)
}

// GoString copies the contents of an NSString. nil reads as "".
func GoString(str Receiver) string {
	id := idOf(str)
	if id == 0 {
		return ""
	}
	s := current().rt.StringValue(id)
	runtime.KeepAlive(str)
	return s
}
