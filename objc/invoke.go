package objc

import (
	"fmt"
	"reflect"
	"runtime"
	"unsafe"
)

// Encoder is implemented by fixed-layout structs that cross the bridge by
// value. Encoding returns the Objective-C type encoding of the struct, such as
// "{MTLSize=QQQ}", which must describe the Go struct's memory layout exactly.
type Encoder interface {
	Encoding() string
}

// Arg is one argument of an Invoke call.
type Arg struct {
	Encoding string
	ptr      unsafe.Pointer
	keep     any
}

// Pointer returns the address of the argument's value.
func (a Arg) Pointer() unsafe.Pointer { return a.ptr }

// Value boxes v as an Invoke argument. v must be an Encoder, a Receiver or a
// scalar kind with a standard encoding.
func Value[T any](v T) Arg {
	enc := EncodingOf(v)
	if r, ok := any(v).(Receiver); ok {
		id := idOf(r)
		return Arg{Encoding: enc, ptr: unsafe.Pointer(&id), keep: r}
	}
	p := new(T)
	*p = v
	return Arg{Encoding: enc, ptr: unsafe.Pointer(p)}
}

// EncodingOf returns the Objective-C type encoding for v's type.
func EncodingOf(v any) string {
	switch x := v.(type) {
	case Encoder:
		return x.Encoding()
	case Receiver:
		return "@"
	case Sel:
		return ":"
	case unsafe.Pointer:
		return "^v"
	}
	return encodingOfKind(reflect.TypeOf(v))
}

func encodingOfKind(t reflect.Type) string {
	if t == nil {
		return "@"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "B"
	case reflect.Int8:
		return "c"
	case reflect.Uint8:
		return "C"
	case reflect.Int16:
		return "s"
	case reflect.Uint16:
		return "S"
	case reflect.Int32:
		return "i"
	case reflect.Uint32:
		return "I"
	case reflect.Int, reflect.Int64:
		return "q"
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return "Q"
	case reflect.Float32:
		return "f"
	case reflect.Float64:
		return "d"
	case reflect.Pointer, reflect.UnsafePointer:
		return "^v"
	}
	panic(fmt.Sprintf("objc: no type encoding for %v", t))
}

// Invoke sends sel with arguments described by their encodings and stores the
// result, whose encoding is ret, into *out. out may be nil for "v". It is the
// call form for methods that take or return structs by value.
func Invoke(target Receiver, sel string, ret string, out unsafe.Pointer, args ...Arg) {
	invoke(target, sel, ret, out, false, args)
}

func invoke(target Receiver, sel string, ret string, out unsafe.Pointer, retain bool, args []Arg) {
	id := idOf(target)
	if id == 0 {
		return
	}
	st := current()
	types := ret + "@:"
	ptrs := make([]unsafe.Pointer, len(args))
	for i, a := range args {
		types += a.Encoding
		ptrs[i] = a.ptr
	}
	var size uintptr
	if out != nil {
		size = EncodingSize(ret)
	}
	err := st.rt.Invoke(id, st.sel(sel), types, out, size, retain, ptrs)
	runtime.KeepAlive(target)
	for i := range args {
		runtime.KeepAlive(args[i].keep)
	}
	if err != nil && err != ErrUnsupported {
		panic(fmt.Sprintf("objc: %s: %v", sel, err))
	}
}

// InvokeReturn is Invoke for a by-value result of type T.
func InvokeReturn[T any](target Receiver, sel string, args ...Arg) T {
	var out T
	Invoke(target, sel, EncodingOf(out), unsafe.Pointer(&out), args...)
	return out
}

// InvokeObject is Invoke for an object result, owned by the caller.
func InvokeObject(target Receiver, sel string, args ...Arg) *Object {
	var out ID
	invoke(target, sel, "@", unsafe.Pointer(&out), !ReturnsRetained(sel), args)
	if out == 0 {
		return nil
	}
	return newObject(out, current().rt)
}
