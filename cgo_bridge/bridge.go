//go:build darwin && cgo

package cgo_bridge

/*
#cgo CFLAGS: -fno-objc-arc -Wno-deprecated-declarations
#cgo LDFLAGS: -framework Foundation -framework Metal -framework QuartzCore -lobjc
#include "objc_bridge.h"
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"
)

// BlockFunc is the Go side of an Objective-C block. Blocks taking fewer than
// two word-sized arguments see zero-valued or unspecified trailing arguments
// and must ignore them.
type BlockFunc func(a, b uintptr)

// Available reports whether the Objective-C runtime can be called.
func Available() bool {
	return true
}

// GetClass looks up an Objective-C class by name. Zero means the class is not
// registered (framework not loaded or name misspelled).
func GetClass(name string) uintptr {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return uintptr(C.bridge_get_class(cName))
}

// RegisterSelector registers (or looks up) a selector.
func RegisterSelector(name string) uintptr {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return uintptr(C.bridge_register_selector(cName))
}

// SelectorName returns the name a selector was registered with.
func SelectorName(sel uintptr) string {
	if sel == 0 {
		return ""
	}
	return C.GoString(C.bridge_selector_name(C.uintptr_t(sel)))
}

func Retain(obj uintptr) uintptr {
	return uintptr(C.bridge_retain(C.uintptr_t(obj)))
}

func Release(obj uintptr) {
	C.bridge_release(C.uintptr_t(obj))
}

// RetainCount is for diagnostics only; the value Foundation reports is not
// reliable for objects managed by the framework itself.
func RetainCount(obj uintptr) uint {
	return uint(C.bridge_retain_count(C.uintptr_t(obj)))
}

func ClassName(obj uintptr) string {
	cName := C.bridge_class_name(C.uintptr_t(obj))
	if cName == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cName))
	return C.GoString(cName)
}

// Send performs objc_msgSend with up to MaxArgs word arguments and
// MaxFloatArgs floating point arguments. float32Args selects whether the
// floating point arguments are passed as float or double.
func Send(obj, sel uintptr, ret ReturnKind, flags SendFlags, args []uintptr, floats []float64, float32Args bool) (Result, error) {
	nargs := len(args)
	if flags&ErrorOut != 0 {
		nargs++
	}
	if nargs > MaxArgs {
		return Result{}, fmt.Errorf("cgo_bridge: %d word arguments exceed the limit of %d", nargs, MaxArgs)
	}
	if len(floats) > MaxFloatArgs {
		return Result{}, fmt.Errorf("cgo_bridge: %d float arguments exceed the limit of %d", len(floats), MaxFloatArgs)
	}

	var cArgs *C.uintptr_t
	if len(args) > 0 {
		cArgs = (*C.uintptr_t)(unsafe.Pointer(&args[0]))
	}
	var cFloats *C.double
	if len(floats) > 0 {
		cFloats = (*C.double)(unsafe.Pointer(&floats[0]))
	}
	var f32 C.int
	if float32Args {
		f32 = 1
	}

	r := C.bridge_send(C.uintptr_t(obj), C.uintptr_t(sel), C.int(ret), C.int(flags),
		cArgs, C.int(len(args)), cFloats, C.int(len(floats)), f32)

	return Result{
		Word:    uintptr(r.word),
		Float32: float32(r.f32),
		Float64: float64(r.f64),
		Err:     uintptr(r.err),
	}, nil
}

// Invoke sends a message through NSInvocation. types is the full Objective-C
// method type encoding (return type, "@:", then one entry per argument) and
// args holds one pointer per argument, each pointing at memory laid out as the
// matching encoding describes. ret receives the return value and may be nil.
// With retainResult set, an object return value is retained before the
// invocation's autorelease pool drains.
func Invoke(obj, sel uintptr, types string, ret unsafe.Pointer, retSize uintptr, retainResult bool, args []unsafe.Pointer) error {
	cTypes := C.CString(types)
	defer C.free(unsafe.Pointer(cTypes))

	inv := C.bridge_invocation_new(C.uintptr_t(obj), C.uintptr_t(sel), cTypes)
	if inv == 0 {
		return fmt.Errorf("cgo_bridge: invalid method signature %q", types)
	}
	for i, arg := range args {
		C.bridge_invocation_set_arg(inv, C.int(i), arg)
	}
	var retain C.int
	if retainResult {
		retain = 1
	}
	C.bridge_invocation_invoke(inv, ret, C.size_t(retSize), retain)
	return nil
}

// NewBlock returns a +1 heap block that calls fn. The Go function stays
// reachable until the block is deallocated by the Objective-C runtime.
func NewBlock(fn BlockFunc) uintptr {
	h := cgo.NewHandle(fn)
	return uintptr(C.bridge_block_new(C.uintptr_t(h)))
}

//export goBlockInvoke
func goBlockInvoke(handle, a, b C.uintptr_t) {
	fn := cgo.Handle(handle).Value().(BlockFunc)
	fn(uintptr(a), uintptr(b))
}

//export goBlockRelease
func goBlockRelease(handle C.uintptr_t) {
	cgo.Handle(handle).Delete()
}

// PushAutoreleasePool must be paired with PopAutoreleasePool on the same OS
// thread.
func PushAutoreleasePool() uintptr {
	return uintptr(C.bridge_pool_push())
}

func PopAutoreleasePool(pool uintptr) {
	C.bridge_pool_pop(C.uintptr_t(pool))
}

// NewString returns a +1 NSString holding a copy of s.
func NewString(s string) uintptr {
	if len(s) == 0 {
		return uintptr(C.bridge_string_new(nil, 0))
	}
	data := (*C.char)(unsafe.Pointer(unsafe.StringData(s)))
	return uintptr(C.bridge_string_new(data, C.size_t(len(s))))
}

// StringValue copies the UTF-8 contents of an NSString.
func StringValue(str uintptr) string {
	cStr := C.bridge_string_copy_utf8(C.uintptr_t(str))
	if cStr == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cStr))
	return C.GoString(cStr)
}

// CallCreateFunction calls a zero-argument C function returning an object
// under the Create rule (+1), such as MTLCreateSystemDefaultDevice.
func CallCreateFunction(symbol string) uintptr {
	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSymbol))
	return uintptr(C.bridge_call_create_function(cSymbol))
}
