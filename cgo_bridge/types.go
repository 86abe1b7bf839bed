// Package cgo_bridge is the raw C boundary of go-mtl. Every Objective-C
// object crosses it as a uintptr_t handle; ownership is managed one level
// up, in package objc.
package cgo_bridge

import "errors"

// ErrUnsupported is returned when the Objective-C runtime is not available
// (non-darwin targets or builds without cgo).
var ErrUnsupported = errors.New("cgo_bridge: Objective-C runtime not available on this platform")

// MaxArgs is the number of integer/pointer arguments a single Send can pass,
// not counting the receiver and selector.
const MaxArgs = 6

// MaxFloatArgs is the number of floating point arguments a single Send can pass.
const MaxFloatArgs = 4

// ReturnKind selects the return register a message send reads.
type ReturnKind int

const (
	ReturnVoid ReturnKind = iota
	ReturnWord
	ReturnBool
	ReturnFloat32
	ReturnFloat64
)

// SendFlags modify a message send.
type SendFlags int

const (
	// RetainResult retains a returned object before the call's autorelease
	// pool drains, handing the caller a +1 reference.
	RetainResult SendFlags = 1 << iota

	// ErrorOut appends an NSError** out-parameter after the last integer
	// argument. A non-nil error comes back retained in Result.Err.
	ErrorOut
)

// Result holds every return register a send can fill.
type Result struct {
	Word    uintptr
	Float32 float32
	Float64 float64
	Err     uintptr
}
