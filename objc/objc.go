// Package objc is the ownership bridge between Go and the Objective-C
// runtime.
//
// Every Objective-C object reachable from Go is held either by an *Object,
// which owns exactly one retain and releases it exactly once, or by a Ref,
// which borrows a pointer from an owner without touching the retain count.
// Messages are sent through a Runtime; on darwin with cgo that is the real
// Objective-C runtime, elsewhere every send returns zero values and
// Available reports false.
//
// Whether a returned object is already retained (+1) is decided from the
// selector's method family, following the Cocoa naming convention: methods in
// the alloc, new, copy, mutableCopy and init families transfer ownership,
// every other method returns a borrowed reference that is retained before the
// call's autorelease pool drains.
package objc

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/tsawler/go-mtl/cgo_bridge"
)

// ErrUnsupported is returned by operations that need the Objective-C runtime
// on platforms that don't have one.
var ErrUnsupported = cgo_bridge.ErrUnsupported

// ErrNil is returned when a message that must produce an object returned nil
// without reporting an error.
var ErrNil = errors.New("objc: message returned nil")

// ID is a raw Objective-C object pointer. The zero value is nil.
type ID uintptr

// ObjectID implements Receiver.
func (id ID) ObjectID() ID { return id }

// IsNil reports whether id is the nil object.
func (id ID) IsNil() bool { return id == 0 }

func (id ID) String() string {
	if id == 0 {
		return "nil"
	}
	return fmt.Sprintf("%#x", uintptr(id))
}

// Sel is a registered selector.
type Sel uintptr

// Class is a pointer to an Objective-C class object.
type Class ID

// ObjectID implements Receiver so class methods can be sent to a Class.
func (c Class) ObjectID() ID { return ID(c) }

// Receiver is anything that can be the target or an object argument of a
// message.
type Receiver interface {
	ObjectID() ID
}

// idOf returns the object pointer of r, treating nil interfaces and typed nil
// pointers as the nil object.
func idOf(r Receiver) ID {
	if r == nil {
		return 0
	}
	if v := reflect.ValueOf(r); v.Kind() == reflect.Pointer && v.IsNil() {
		return 0
	}
	return r.ObjectID()
}

// IDOf returns the object pointer of r, or nil for nil receivers.
func IDOf(r Receiver) ID {
	return idOf(r)
}

// GetClass returns the class registered under name, or zero when no such
// class is loaded.
func GetClass(name string) Class {
	return current().rt.GetClass(name)
}

// RegisterName registers a selector name with the runtime.
func RegisterName(name string) Sel {
	return current().sel(name)
}

// Available reports whether messages reach a real (or fake) runtime.
func Available() bool {
	return current().rt.Available()
}
