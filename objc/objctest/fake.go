// Package objctest provides an in-memory Objective-C runtime for tests.
//
// The fake keeps a retain count per object, treats any selector of the form
// setFoo: as a property store (retaining object-typed values) and foo or
// isFoo as the matching getter, and follows the method-family rules for
// alloc, new, init and copy. Anything
// else can be scripted with Handle. Retain-count violations (messages to or
// releases of dead objects) are recorded and reported by Install's cleanup.
package objctest

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/tsawler/go-mtl/objc"
)

// Handler answers a scripted message. It returns the word result; float
// results go through HandleFloat.
type Handler func(self objc.ID, args []uintptr) uintptr

// FloatHandler answers a scripted message with a floating point result.
type FloatHandler func(self objc.ID, args []uintptr, floats []float64) float64

// ErrorHandler answers a message sent with an NSError** out-parameter. A
// non-zero nsError is handed to the caller as a +1 reference.
type ErrorHandler func(self objc.ID, args []uintptr) (result uintptr, nsError objc.ID)

// InvokeHandler answers a scripted struct-valued message. ret points at the
// result storage and args at each argument's value.
type InvokeHandler func(self objc.ID, args []unsafe.Pointer, ret unsafe.Pointer)

type object struct {
	class  string
	count  int
	props  map[string]value
	str    string
	block  objc.BlockFunc
	isBlk  bool
	isPool bool
}

type value struct {
	word  uintptr
	float float64
	bytes []byte
	obj   bool
}

// Runtime is a fake objc.Runtime. The zero value is not usable; call New.
type Runtime struct {
	mu         sync.Mutex
	nextID     uintptr
	classes    map[string]objc.Class
	classNames map[objc.Class]string
	sels       map[string]objc.Sel
	selNames   map[objc.Sel]string
	objects    map[objc.ID]*object
	handlers   map[string]Handler
	floats     map[string]FloatHandler
	errors     map[string]ErrorHandler
	invokes    map[string]InvokeHandler
	functions  map[string]func() objc.ID
	sent       []string
	violations []string
	pending    []objc.ID
	inFlight   int
}

var _ objc.Runtime = (*Runtime)(nil)

// New returns an empty fake runtime. Classes spring into existence when
// looked up.
func New() *Runtime {
	return &Runtime{
		nextID:     0x1000,
		classes:    make(map[string]objc.Class),
		classNames: make(map[objc.Class]string),
		sels:       make(map[string]objc.Sel),
		selNames:   make(map[objc.Sel]string),
		objects:    make(map[objc.ID]*object),
		handlers:   make(map[string]Handler),
		floats:     make(map[string]FloatHandler),
		errors:     make(map[string]ErrorHandler),
		invokes:    make(map[string]InvokeHandler),
		functions:  make(map[string]func() objc.ID),
	}
}

// Install makes a new fake the active runtime for the rest of the test and
// fails the test if it ends with retain-count violations.
func Install(t testing.TB) *Runtime {
	t.Helper()
	rt := New()
	prev := objc.SetRuntime(rt)
	t.Cleanup(func() {
		objc.SetRuntime(prev)
		for _, v := range rt.Violations() {
			t.Errorf("objctest: %s", v)
		}
	})
	return rt
}

// Handle scripts sel. key is either a bare selector, matching every class,
// or "Class.selector".
func (r *Runtime) Handle(key string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = h
}

// HandleFloat scripts a selector returning float or double.
func (r *Runtime) HandleFloat(key string, h FloatHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floats[key] = h
}

// HandleError scripts a selector whose last parameter is NSError**.
func (r *Runtime) HandleError(key string, h ErrorHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[key] = h
}

// NewError creates an NSError-like object whose domain, code and
// localizedDescription properties read back through the property store.
func (r *Runtime) NewError(domain string, code int, description string) objc.ID {
	id := r.NewObject("NSError")
	d := r.NewString(domain)
	desc := r.NewString(description)
	r.mu.Lock()
	o := r.objects[id]
	o.props["domain"] = value{word: uintptr(d), obj: true}
	o.props["code"] = value{word: uintptr(code)}
	o.props["localizedDescription"] = value{word: uintptr(desc), obj: true}
	r.mu.Unlock()
	return id
}

// HandleInvoke scripts a selector sent through objc.Invoke.
func (r *Runtime) HandleInvoke(key string, h InvokeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invokes[key] = h
}

// Function registers a Create-rule C function for CallCreateFunction.
func (r *Runtime) Function(symbol string, fn func() objc.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[symbol] = fn
}

// NewObject creates an instance of class with a retain count of one, owned by
// the caller.
func (r *Runtime) NewObject(class string) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newObjectLocked(class)
}

func (r *Runtime) newObjectLocked(class string) objc.ID {
	r.nextID += 0x10
	id := objc.ID(r.nextID)
	r.objects[id] = &object{class: class, count: 1, props: make(map[string]value)}
	return id
}

// Autorelease defers one release of id until no message is in flight, the
// way the bridge's per-message autorelease pool does. Handlers use it to
// return +0 objects from convenience constructors.
func (r *Runtime) Autorelease(id objc.ID) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, id)
	return id
}

// drain ends a message and empties the pool once the last in-flight message
// has returned.
func (r *Runtime) drain() {
	r.mu.Lock()
	r.inFlight--
	if r.inFlight > 0 {
		r.mu.Unlock()
		return
	}
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, id := range pending {
		r.Release(id)
	}
}

// RetainCount returns the count of a live object, or zero once it has been
// deallocated.
func (r *Runtime) RetainCount(id objc.ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.objects[id]; ok {
		return o.count
	}
	return 0
}

// Alive reports whether id has not been deallocated.
func (r *Runtime) Alive(id objc.ID) bool {
	return r.RetainCount(id) > 0
}

// Live returns the number of objects that have not been deallocated.
func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.objects {
		if o.count > 0 && !o.isPool {
			n++
		}
	}
	return n
}

// Sent returns the "Class.selector" keys of every message sent so far.
func (r *Runtime) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

// Violations returns the retain-count errors observed so far.
func (r *Runtime) Violations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.violations...)
}

// CallBlock invokes a block created through NewBlock, as Metal would when a
// completion handler fires.
func (r *Runtime) CallBlock(block objc.ID, a, b uintptr) {
	r.mu.Lock()
	o, ok := r.objects[block]
	r.mu.Unlock()
	if !ok || !o.isBlk || o.count <= 0 {
		r.violate("call of dead block %v", block)
		return
	}
	o.block(a, b)
}

// Property returns the word value stored under a property name.
func (r *Runtime) Property(id objc.ID, name string) (uintptr, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[id]
	if !ok {
		return 0, false
	}
	v, ok := o.props[name]
	return v.word, ok
}

func (r *Runtime) violate(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, fmt.Sprintf(format, args...))
}

func (r *Runtime) Available() bool { return true }

func (r *Runtime) GetClass(name string) objc.Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.classes[name]; ok {
		return c
	}
	r.nextID += 0x10
	c := objc.Class(r.nextID)
	r.classes[name] = c
	r.classNames[c] = name
	return c
}

func (r *Runtime) RegisterName(name string) objc.Sel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sels[name]; ok {
		return s
	}
	s := objc.Sel(len(r.sels) + 1)
	r.sels[name] = s
	r.selNames[s] = name
	return s
}

func (r *Runtime) SelectorName(sel objc.Sel) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selNames[sel]
}

func (r *Runtime) ClassName(id objc.ID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name, ok := r.classNames[objc.Class(id)]; ok {
		return name
	}
	if o, ok := r.objects[id]; ok {
		return o.class
	}
	return ""
}

func (r *Runtime) Retain(id objc.ID) objc.ID {
	if id == 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classNames[objc.Class(id)]; ok {
		return id
	}
	o, ok := r.objects[id]
	if !ok || o.count <= 0 {
		r.violations = append(r.violations, fmt.Sprintf("retain of dead object %v", id))
		return id
	}
	o.count++
	return id
}

func (r *Runtime) Release(id objc.ID) {
	if id == 0 {
		return
	}
	r.mu.Lock()
	if _, ok := r.classNames[objc.Class(id)]; ok {
		r.mu.Unlock()
		return
	}
	o, ok := r.objects[id]
	if !ok || o.count <= 0 {
		r.violations = append(r.violations, fmt.Sprintf("over-release of object %v", id))
		r.mu.Unlock()
		return
	}
	o.count--
	var children []objc.ID
	if o.count == 0 {
		for _, v := range o.props {
			if v.obj && v.word != 0 {
				children = append(children, objc.ID(v.word))
			}
		}
	}
	r.mu.Unlock()
	for _, c := range children {
		r.Release(c)
	}
}

// lookupLocked finds the receiver's class name, treating class objects as their
// own class.
func (r *Runtime) lookupLocked(id objc.ID) (class string, o *object, isClass bool) {
	if name, ok := r.classNames[objc.Class(id)]; ok {
		return name, nil, true
	}
	o = r.objects[id]
	if o == nil {
		return "", nil, false
	}
	return o.class, o, false
}

func (r *Runtime) Send(msg objc.Message) (objc.Result, error) {
	if len(msg.Args) > objc.MaxArgs || (msg.ErrorOut && len(msg.Args) >= objc.MaxArgs) {
		return objc.Result{}, fmt.Errorf("objctest: too many arguments")
	}
	if len(msg.Floats) > objc.MaxFloatArgs {
		return objc.Result{}, fmt.Errorf("objctest: too many float arguments")
	}

	r.mu.Lock()
	name := r.selNames[msg.Sel]
	class, o, isClass := r.lookupLocked(msg.Target)
	if !isClass && (o == nil || o.count <= 0) {
		r.violations = append(r.violations, fmt.Sprintf("message %s to dead object %v", name, msg.Target))
		r.mu.Unlock()
		return objc.Result{}, nil
	}
	key := class + "." + name
	r.sent = append(r.sent, key)
	r.inFlight++
	h, ok := r.handlers[key]
	if !ok {
		h, ok = r.handlers[name]
	}
	fh, fok := r.floats[key]
	if !fok {
		fh, fok = r.floats[name]
	}
	eh, eok := r.errors[key]
	if !eok {
		eh, eok = r.errors[name]
	}
	r.mu.Unlock()

	var res objc.Result
	switch {
	case eok:
		var nsErr objc.ID
		res.Word, nsErr = eh(msg.Target, msg.Args)
		if msg.ErrorOut {
			res.Err = nsErr
		} else {
			r.Release(nsErr)
		}
	case fok:
		f := fh(msg.Target, msg.Args, msg.Floats)
		res.Float32, res.Float64 = float32(f), f
	case ok:
		res.Word = h(msg.Target, msg.Args)
	default:
		res = r.builtin(msg, name, class, o, isClass)
	}

	if msg.Retain && msg.Return == objc.ReturnWord && res.Word != 0 {
		r.Retain(objc.ID(res.Word))
	}
	r.drain()
	return res, nil
}

// builtin implements the default object model: alloc/new/init/copy and the
// property store.
func (r *Runtime) builtin(msg objc.Message, name, class string, o *object, isClass bool) objc.Result {
	var res objc.Result
	switch {
	case isClass && (name == "alloc" || name == "new"):
		res.Word = uintptr(r.NewObject(class))
		return res
	case objc.MethodFamily(name) == objc.FamilyInit:
		res.Word = uintptr(msg.Target)
		return res
	case name == "copy" || name == "mutableCopy":
		res.Word = uintptr(r.copyObject(msg.Target))
		return res
	case name == "retain":
		res.Word = uintptr(r.Retain(msg.Target))
		return res
	case name == "release":
		r.Release(msg.Target)
		return res
	case name == "retainCount":
		res.Word = uintptr(r.RetainCount(msg.Target))
		return res
	case isClass:
		return res
	}

	r.mu.Lock()
	if prop, ok := setterProperty(name); ok {
		var v value
		switch {
		case len(msg.Args) > 0:
			v.word = msg.Args[0]
			if strings.HasPrefix(msg.Types, "@") && v.word != 0 {
				if target, ok := r.objects[objc.ID(v.word)]; ok {
					v.obj = true
					target.count++
				}
			}
		case len(msg.Floats) > 0:
			v.float = msg.Floats[0]
		}
		old, hadOld := o.props[prop]
		o.props[prop] = v
		r.mu.Unlock()
		if hadOld && old.obj && old.word != 0 {
			r.Release(objc.ID(old.word))
		}
		return res
	}
	v := o.props[getterProperty(name)]
	r.mu.Unlock()
	res.Word = v.word
	if msg.Return == objc.ReturnBool && v.word != 0 {
		res.Word = 1
	}
	res.Float64 = v.float
	res.Float32 = float32(v.float)
	return res
}

func (r *Runtime) copyObject(id objc.ID) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.objects[id]
	cp := r.newObjectLocked(src.class)
	dst := r.objects[cp]
	dst.str = src.str
	for k, v := range src.props {
		if v.obj && v.word != 0 {
			if child, ok := r.objects[objc.ID(v.word)]; ok {
				child.count++
			}
		}
		if v.bytes != nil {
			v.bytes = append([]byte(nil), v.bytes...)
		}
		dst.props[k] = v
	}
	return cp
}

// setterProperty maps setFoo: to foo. Selectors with more than one part are
// not setters.
func setterProperty(sel string) (string, bool) {
	if !strings.HasPrefix(sel, "set") || len(sel) < 5 || !strings.HasSuffix(sel, ":") {
		return "", false
	}
	body := sel[3 : len(sel)-1]
	if strings.Contains(body, ":") || body[0] < 'A' || body[0] > 'Z' {
		return "", false
	}
	return strings.ToLower(body[:1]) + body[1:], true
}

// getterProperty maps isFoo to foo so BOOL getters share storage with their
// setters.
func getterProperty(sel string) string {
	if strings.HasPrefix(sel, "is") && len(sel) > 2 && sel[2] >= 'A' && sel[2] <= 'Z' {
		return strings.ToLower(sel[2:3]) + sel[3:]
	}
	return sel
}

func (r *Runtime) Invoke(target objc.ID, sel objc.Sel, types string, ret unsafe.Pointer, retSize uintptr, retain bool, args []unsafe.Pointer) error {
	r.mu.Lock()
	name := r.selNames[sel]
	class, o, isClass := r.lookupLocked(target)
	if !isClass && (o == nil || o.count <= 0) {
		r.violations = append(r.violations, fmt.Sprintf("invocation %s on dead object %v", name, target))
		r.mu.Unlock()
		return nil
	}
	key := class + "." + name
	r.sent = append(r.sent, key)
	r.inFlight++
	h, ok := r.invokes[key]
	if !ok {
		h, ok = r.invokes[name]
	}
	r.mu.Unlock()

	if ok {
		h(target, args, ret)
	} else if o != nil {
		r.invokeProperty(o, name, types, ret, retSize, args)
	}
	if retain && ret != nil && strings.HasPrefix(types, "@") {
		if id := *(*objc.ID)(ret); id != 0 {
			r.Retain(id)
		}
	}
	r.drain()
	return nil
}

// invokeProperty stores struct-valued properties as raw bytes.
func (r *Runtime) invokeProperty(o *object, name, types string, ret unsafe.Pointer, retSize uintptr, args []unsafe.Pointer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prop, ok := setterProperty(name); ok && len(args) == 1 {
		argEnc := argumentEncoding(types)
		size := objc.EncodingSize(argEnc)
		o.props[prop] = value{bytes: append([]byte(nil), unsafe.Slice((*byte)(args[0]), size)...)}
		return
	}
	if ret == nil || retSize == 0 {
		return
	}
	dst := unsafe.Slice((*byte)(ret), retSize)
	clear(dst)
	copy(dst, o.props[getterProperty(name)].bytes)
}

// argumentEncoding returns the encoding of the single argument in a method
// signature "v@:<arg>".
func argumentEncoding(types string) string {
	i := strings.Index(types, "@:")
	if i < 0 {
		return ""
	}
	return types[i+2:]
}

func (r *Runtime) NewBlock(fn objc.BlockFunc) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newObjectLocked("__NSMallocBlock__")
	o := r.objects[id]
	o.block = fn
	o.isBlk = true
	return id
}

func (r *Runtime) PushPool() uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newObjectLocked("NSAutoreleasePool")
	r.objects[id].isPool = true
	return uintptr(id)
}

func (r *Runtime) PopPool(pool uintptr) {
	r.Release(objc.ID(pool))
}

func (r *Runtime) NewString(s string) objc.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newObjectLocked("NSString")
	r.objects[id].str = s
	return id
}

// StringValue returns the contents of a fake NSString.
func (r *Runtime) StringValue(id objc.ID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.objects[id]; ok {
		return o.str
	}
	return ""
}

func (r *Runtime) CallCreateFunction(symbol string) objc.ID {
	r.mu.Lock()
	fn := r.functions[symbol]
	r.mu.Unlock()
	if fn == nil {
		return 0
	}
	return fn()
}
