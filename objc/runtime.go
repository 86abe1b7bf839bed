package objc

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/tsawler/go-mtl/cgo_bridge"
)

// ReturnKind selects which return register a message send reads.
type ReturnKind = cgo_bridge.ReturnKind

const (
	ReturnVoid    = cgo_bridge.ReturnVoid
	ReturnWord    = cgo_bridge.ReturnWord
	ReturnBool    = cgo_bridge.ReturnBool
	ReturnFloat32 = cgo_bridge.ReturnFloat32
	ReturnFloat64 = cgo_bridge.ReturnFloat64
)

// BlockFunc is the Go body of an Objective-C block. See NewBlock.
type BlockFunc = cgo_bridge.BlockFunc

// MaxArgs is the number of word-sized arguments a scalar send accepts,
// including an implicit NSError** out-parameter.
const MaxArgs = cgo_bridge.MaxArgs

// MaxFloatArgs is the number of floating point arguments a scalar send accepts.
const MaxFloatArgs = cgo_bridge.MaxFloatArgs

// Message is one scalar message send.
type Message struct {
	Target ID
	Sel    Sel
	Return ReturnKind

	// Retain asks the runtime to retain an object result before the send's
	// autorelease pool drains.
	Retain bool

	// ErrorOut appends an NSError** after the word arguments.
	ErrorOut bool

	Args    []uintptr
	Floats  []float64
	Float32 bool

	// Types holds the type encoding of each word argument, in order: "@" for
	// objects, ":" for selectors, "^v" for pointers, "B" or "q"/"Q" for
	// scalars.
	Types string
}

// Result carries every return register of a send. Err is a retained NSError
// when the message was sent with ErrorOut and failed.
type Result struct {
	Word    uintptr
	Float32 float32
	Float64 float64
	Err     ID
}

// Runtime is the message dispatch mechanism objects are managed through.
// Implementations must be safe for concurrent use.
type Runtime interface {
	Available() bool

	GetClass(name string) Class
	RegisterName(name string) Sel
	SelectorName(sel Sel) string
	ClassName(id ID) string

	Retain(id ID) ID
	Release(id ID)

	Send(msg Message) (Result, error)

	// Invoke sends a message whose arguments or return value are described by
	// an Objective-C method type encoding, such as structs passed by value.
	// retain has the same meaning as Message.Retain.
	Invoke(target ID, sel Sel, types string, ret unsafe.Pointer, retSize uintptr, retain bool, args []unsafe.Pointer) error

	NewBlock(fn BlockFunc) ID

	PushPool() uintptr
	PopPool(pool uintptr)

	NewString(s string) ID
	StringValue(id ID) string

	// CallCreateFunction calls a C function returning a +1 object.
	CallCreateFunction(symbol string) ID
}

// NativeRuntime forwards to the Objective-C runtime through cgo_bridge.
type NativeRuntime struct{}

var _ Runtime = NativeRuntime{}

func (NativeRuntime) Available() bool { return cgo_bridge.Available() }

func (NativeRuntime) GetClass(name string) Class { return Class(cgo_bridge.GetClass(name)) }

func (NativeRuntime) RegisterName(name string) Sel { return Sel(cgo_bridge.RegisterSelector(name)) }

func (NativeRuntime) SelectorName(sel Sel) string { return cgo_bridge.SelectorName(uintptr(sel)) }

func (NativeRuntime) ClassName(id ID) string { return cgo_bridge.ClassName(uintptr(id)) }

func (NativeRuntime) Retain(id ID) ID { return ID(cgo_bridge.Retain(uintptr(id))) }

func (NativeRuntime) Release(id ID) { cgo_bridge.Release(uintptr(id)) }

func (NativeRuntime) Send(msg Message) (Result, error) {
	var flags cgo_bridge.SendFlags
	if msg.Retain {
		flags |= cgo_bridge.RetainResult
	}
	if msg.ErrorOut {
		flags |= cgo_bridge.ErrorOut
	}
	r, err := cgo_bridge.Send(uintptr(msg.Target), uintptr(msg.Sel), msg.Return, flags, msg.Args, msg.Floats, msg.Float32)
	return Result{Word: r.Word, Float32: r.Float32, Float64: r.Float64, Err: ID(r.Err)}, err
}

func (NativeRuntime) Invoke(target ID, sel Sel, types string, ret unsafe.Pointer, retSize uintptr, retain bool, args []unsafe.Pointer) error {
	return cgo_bridge.Invoke(uintptr(target), uintptr(sel), types, ret, retSize, retain, args)
}

func (NativeRuntime) NewBlock(fn BlockFunc) ID { return ID(cgo_bridge.NewBlock(fn)) }

func (NativeRuntime) PushPool() uintptr { return cgo_bridge.PushAutoreleasePool() }

func (NativeRuntime) PopPool(pool uintptr) { cgo_bridge.PopAutoreleasePool(pool) }

func (NativeRuntime) NewString(s string) ID { return ID(cgo_bridge.NewString(s)) }

func (NativeRuntime) StringValue(id ID) string { return cgo_bridge.StringValue(uintptr(id)) }

func (NativeRuntime) CallCreateFunction(symbol string) ID {
	return ID(cgo_bridge.CallCreateFunction(symbol))
}

// state pairs a runtime with its selector cache; selectors are only valid for
// the runtime that registered them.
type state struct {
	rt   Runtime
	sels sync.Map // string -> Sel
}

func (s *state) sel(name string) Sel {
	if v, ok := s.sels.Load(name); ok {
		return v.(Sel)
	}
	sel := s.rt.RegisterName(name)
	s.sels.Store(name, sel)
	return sel
}

var active atomic.Pointer[state]

func init() {
	active.Store(&state{rt: NativeRuntime{}})
}

func current() *state {
	return active.Load()
}

// SetRuntime installs rt for all subsequent sends and returns the previously
// installed runtime. Objects keep releasing through the runtime that created
// them.
func SetRuntime(rt Runtime) Runtime {
	prev := active.Swap(&state{rt: rt})
	return prev.rt
}

// CurrentRuntime returns the installed runtime.
func CurrentRuntime() Runtime {
	return current().rt
}
