package metal_bridge

import (
	"context"
	"sync"
	"time"

	"github.com/tsawler/go-mtl/objc"
)

// Fence is an MTLFence, ordering GPU work between encoders of one queue.
type Fence struct {
	*objc.Object
}

func (d *Device) NewFence() (*Fence, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := created("fence", objc.Send(d, "newFence"))
	return wrap[Fence](obj), err
}

func (f *Fence) Label() string     { return label(f) }
func (f *Fence) SetLabel(s string) { setLabel(f, s) }
func (f *Fence) Device() *Device   { return deviceOf(f) }

// Eventer is implemented by Event and SharedEvent, either of which a command
// buffer can signal or wait for.
type Eventer interface {
	objc.Receiver
	Label() string
	Device() *Device
}

// Event is an MTLEvent, ordering GPU work across queues on one device.
type Event struct {
	*objc.Object
}

func (d *Device) NewEvent() (*Event, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := created("event", objc.Send(d, "newEvent"))
	return wrap[Event](obj), err
}

func (e *Event) Label() string     { return label(e) }
func (e *Event) SetLabel(s string) { setLabel(e, s) }
func (e *Event) Device() *Device   { return deviceOf(e) }

// SharedEvent is an MTLSharedEvent, which the CPU can also signal and
// observe. It is safe for concurrent use.
type SharedEvent struct {
	*objc.Object
}

func (d *Device) NewSharedEvent() (*SharedEvent, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := created("shared event", objc.Send(d, "newSharedEvent"))
	return wrap[SharedEvent](obj), err
}

func (e *SharedEvent) Label() string     { return label(e) }
func (e *SharedEvent) SetLabel(s string) { setLabel(e, s) }
func (e *SharedEvent) Device() *Device   { return deviceOf(e) }

func (e *SharedEvent) SignaledValue() uint64 { return objc.SendUint(e, "signaledValue") }

// SetSignaledValue signals the event from the CPU.
func (e *SharedEvent) SetSignaledValue(v uint64) { objc.SendVoid(e, "setSignaledValue:", v) }

// Notify calls fn on a Metal dispatch queue once the event reaches value,
// passing the value it was signaled with.
func (e *SharedEvent) Notify(value uint64, fn func(signaled uint64)) error {
	listener := objc.New("MTLSharedEventListener")
	if listener == nil {
		return &CreateError{Object: "shared event listener", Err: ErrUnsupported}
	}
	defer listener.Release()
	block := objc.NewBlock(func(_, v uintptr) { fn(uint64(v)) })
	if block == nil {
		return &CreateError{Object: "notification block", Err: ErrUnsupported}
	}
	defer block.Release()
	objc.SendVoid(e, "notifyListener:atValue:block:", listener, value, block)
	return nil
}

// Wait blocks until the event reaches value or ctx is done.
func (e *SharedEvent) Wait(ctx context.Context, value uint64) error {
	if e.SignaledValue() >= value {
		return nil
	}
	done := make(chan struct{})
	var once sync.Once
	if err := e.Notify(value, func(uint64) { once.Do(func() { close(done) }) }); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitUntilSignaledValue waits up to timeout for the event to reach value
// and reports whether it did.
func (e *SharedEvent) WaitUntilSignaledValue(value uint64, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return e.Wait(ctx, value) == nil
}
