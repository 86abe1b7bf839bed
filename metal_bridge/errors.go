package metal_bridge

import (
	"errors"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
)

var (
	// ErrNilDevice is returned by factories called on a nil or released
	// device.
	ErrNilDevice = errors.New("metal_bridge: nil device")

	// ErrNoDevice is returned when the system has no Metal device.
	ErrNoDevice = errors.New("metal_bridge: no Metal device available")

	// ErrUnsupported is returned on platforms without Metal.
	ErrUnsupported = objc.ErrUnsupported

	// ErrCreate matches every *CreateError.
	ErrCreate = errors.New("metal_bridge: object creation failed")

	errNilDescriptor = errors.New("nil descriptor")
)

// CreateError reports a factory method that returned nil. Err holds the
// NSError, as a *foundation.Error, when Metal supplied one.
type CreateError struct {
	Object string
	Err    error
}

func (e *CreateError) Error() string {
	if e.Err == nil {
		return "failed to create " + e.Object
	}
	return "failed to create " + e.Object + ": " + e.Err.Error()
}

func (e *CreateError) Unwrap() error { return e.Err }

func (e *CreateError) Is(target error) bool { return target == ErrCreate }

// created checks the result of a factory method without an error parameter.
func created(what string, obj *objc.Object) (*objc.Object, error) {
	if obj != nil {
		return obj, nil
	}
	if !objc.Available() {
		return nil, &CreateError{Object: what, Err: ErrUnsupported}
	}
	return nil, &CreateError{Object: what}
}

// createWithError sends a factory message whose last parameter is NSError**.
func createWithError(what string, target objc.Receiver, sel string, args ...any) (*objc.Object, error) {
	obj, err := foundation.Call(target, sel, args...)
	if err == nil {
		return obj, nil
	}
	if errors.Is(err, foundation.ErrNilResult) {
		return nil, &CreateError{Object: what}
	}
	return nil, &CreateError{Object: what, Err: err}
}

// nsError copies a borrowed NSError property such as -[MTLCommandBuffer
// error] into a Go error, or returns nil.
func nsError(target objc.Receiver, sel string) error {
	obj := objc.Send(target, sel)
	if obj == nil {
		return nil
	}
	return foundation.ErrorFromObject(obj)
}

// errorIs reports whether err wraps an NSError with the given domain and code.
func errorIs(err error, domain string, code int) bool {
	return errors.Is(err, &foundation.Error{Domain: domain, Code: code})
}
