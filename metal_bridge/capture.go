package metal_bridge

import (
	"fmt"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
)

// CaptureErrorDomain is the NSError domain of StartCapture failures; the
// code is a CaptureError.
const CaptureErrorDomain = "MTLCaptureErrorDomain"

// CaptureDescriptor is an MTLCaptureDescriptor.
type CaptureDescriptor struct {
	*objc.Object
}

func NewCaptureDescriptor() *CaptureDescriptor {
	return wrap[CaptureDescriptor](objc.New("MTLCaptureDescriptor"))
}

// SetCaptureObject selects what to capture: a *Device, *CommandQueue or
// *CaptureScope.
func (cd *CaptureDescriptor) SetCaptureObject(obj objc.Receiver) {
	objc.SendVoid(cd, "setCaptureObject:", obj)
}

// CaptureObject returns the captured object's owner, or nil.
func (cd *CaptureDescriptor) CaptureObject() *objc.Object {
	return objc.Send(cd, "captureObject")
}

func (cd *CaptureDescriptor) Destination() CaptureDestination {
	return CaptureDestination(objc.SendInt(cd, "destination"))
}

func (cd *CaptureDescriptor) SetDestination(d CaptureDestination) {
	objc.SendVoid(cd, "setDestination:", d)
}

// OutputURL is the .gputrace path written with
// CaptureDestinationGPUTraceDocument.
func (cd *CaptureDescriptor) OutputURL() string {
	u := foundation.URLFrom(objc.Send(cd, "outputURL"))
	if u == nil {
		return ""
	}
	defer u.Release()
	return u.Path()
}

func (cd *CaptureDescriptor) SetOutputURL(path string) {
	u := foundation.NewFileURL(path)
	defer u.Release()
	objc.SendVoid(cd, "setOutputURL:", u)
}

// CaptureScope is an MTLCaptureScope: a span of GPU work Xcode or a capture
// descriptor can target.
type CaptureScope struct {
	*objc.Object
}

func (s *CaptureScope) Label() string     { return label(s) }
func (s *CaptureScope) SetLabel(l string) { setLabel(s, l) }
func (s *CaptureScope) Device() *Device   { return deviceOf(s) }
func (s *CaptureScope) Begin()            { objc.SendVoid(s, "beginScope") }
func (s *CaptureScope) End()              { objc.SendVoid(s, "endScope") }

func (s *CaptureScope) CommandQueue() *CommandQueue {
	return wrap[CommandQueue](objc.Send(s, "commandQueue"))
}

// CaptureManager is the process-wide MTLCaptureManager. It is safe for
// concurrent use.
type CaptureManager struct {
	*objc.Object
}

// SharedCaptureManager returns an owner of the process-wide capture
// manager. Releasing it does not affect the manager itself.
func SharedCaptureManager() *CaptureManager {
	return wrap[CaptureManager](objc.SendClass("MTLCaptureManager", "sharedCaptureManager"))
}

func (m *CaptureManager) NewCaptureScopeWithDevice(d *Device) (*CaptureScope, error) {
	obj, err := created("capture scope", objc.Send(m, "newCaptureScopeWithDevice:", d))
	return wrap[CaptureScope](obj), err
}

func (m *CaptureManager) NewCaptureScopeWithCommandQueue(q *CommandQueue) (*CaptureScope, error) {
	obj, err := created("capture scope", objc.Send(m, "newCaptureScopeWithCommandQueue:", q))
	return wrap[CaptureScope](obj), err
}

func (m *CaptureManager) DefaultCaptureScope() *CaptureScope {
	return wrap[CaptureScope](objc.Send(m, "defaultCaptureScope"))
}

func (m *CaptureManager) SetDefaultCaptureScope(s *CaptureScope) {
	objc.SendVoid(m, "setDefaultCaptureScope:", s)
}

func (m *CaptureManager) SupportsDestination(d CaptureDestination) bool {
	return objc.SendBool(m, "supportsDestination:", d)
}

// StartCapture begins capturing. Failures are *foundation.Error values in
// CaptureErrorDomain.
func (m *CaptureManager) StartCapture(desc *CaptureDescriptor) error {
	if desc == nil {
		return errNilDescriptor
	}
	if err := foundation.CallBool(m, "startCaptureWithDescriptor:error:", desc); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	return nil
}

func (m *CaptureManager) StopCapture()      { objc.SendVoid(m, "stopCapture") }
func (m *CaptureManager) IsCapturing() bool { return objc.SendBool(m, "isCapturing") }

// IsCaptureError reports whether err is a capture failure with the given
// code.
func IsCaptureError(err error, code CaptureError) bool {
	return errorIs(err, CaptureErrorDomain, int(code))
}
