// Package foundation wraps the handful of Foundation classes the Metal
// bindings pass around: NSString, NSError, NSArray, NSURL and NSData.
package foundation

import (
	"errors"
	"fmt"

	"github.com/tsawler/go-mtl/objc"
)

// Error is an NSError copied into Go. The binding never interprets it.
type Error struct {
	Domain        string
	Code          int
	Description   string
	FailureReason string
}

func (e *Error) Error() string {
	msg := e.Description
	if msg == "" {
		msg = "unknown error"
	}
	if e.FailureReason != "" && e.FailureReason != e.Description {
		msg += ": " + e.FailureReason
	}
	return fmt.Sprintf("%s (%s %d)", msg, e.Domain, e.Code)
}

// Is matches another *Error with the same domain and code, so callers can
// compare against a template such as &Error{Domain: "MTLLibraryErrorDomain", Code: 3}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Domain == t.Domain && e.Code == t.Code
}

// ErrorFromObject copies an NSError and releases it. It returns nil for nil.
func ErrorFromObject(nsErr *objc.Object) *Error {
	if nsErr == nil {
		return nil
	}
	defer nsErr.Release()
	return &Error{
		Domain:        objc.SendString(nsErr, "domain"),
		Code:          int(objc.SendInt(nsErr, "code")),
		Description:   objc.SendString(nsErr, "localizedDescription"),
		FailureReason: objc.SendString(nsErr, "localizedFailureReason"),
	}
}

// ErrorFromRef copies a borrowed NSError, such as -[MTLCommandBuffer error].
func ErrorFromRef(nsErr objc.Receiver) *Error {
	return ErrorFromObject(objc.Retain(objc.IDOf(nsErr)))
}

// ErrNilResult is returned by Call when a method failed without describing
// why.
var ErrNilResult = errors.New("foundation: method returned nil without an error")

// Call sends a message whose last parameter is an NSError** and returns its
// owned object result, or the NSError as *Error.
func Call(target objc.Receiver, sel string, args ...any) (*objc.Object, error) {
	obj, nsErr := objc.SendWithError(target, sel, args...)
	if nsErr != nil {
		if obj != nil {
			obj.Release()
		}
		return nil, ErrorFromObject(nsErr)
	}
	if obj == nil {
		if !objc.Available() {
			return nil, objc.ErrUnsupported
		}
		return nil, ErrNilResult
	}
	return obj, nil
}

// CallBool is Call for methods returning BOOL. A NO result without an
// NSError is reported as ErrNilResult.
func CallBool(target objc.Receiver, sel string, args ...any) error {
	ok, nsErr := objc.SendBoolWithError(target, sel, args...)
	if nsErr != nil {
		return ErrorFromObject(nsErr)
	}
	if !ok {
		if !objc.Available() {
			return objc.ErrUnsupported
		}
		return ErrNilResult
	}
	return nil
}
