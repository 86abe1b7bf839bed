//go:build !darwin || !cgo

package cgo_bridge

import "unsafe"

type BlockFunc func(a, b uintptr)

func Available() bool { return false }

func GetClass(name string) uintptr { return 0 }

func RegisterSelector(name string) uintptr { return 0 }

func SelectorName(sel uintptr) string { return "" }

func Retain(obj uintptr) uintptr { return obj }

func Release(obj uintptr) {}

func RetainCount(obj uintptr) uint { return 0 }

func ClassName(obj uintptr) string { return "" }

func Send(obj, sel uintptr, ret ReturnKind, flags SendFlags, args []uintptr, floats []float64, float32Args bool) (Result, error) {
	return Result{}, ErrUnsupported
}

func Invoke(obj, sel uintptr, types string, ret unsafe.Pointer, retSize uintptr, retainResult bool, args []unsafe.Pointer) error {
	return ErrUnsupported
}

func NewBlock(fn BlockFunc) uintptr { return 0 }

func PushAutoreleasePool() uintptr { return 0 }

func PopAutoreleasePool(pool uintptr) {}

func NewString(s string) uintptr { return 0 }

func StringValue(str uintptr) string { return "" }

func CallCreateFunction(symbol string) uintptr { return 0 }
