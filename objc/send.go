package objc

import (
	"fmt"
	"reflect"
	"runtime"
	"unsafe"
)

// call is a message being assembled from Go arguments.
type call struct {
	st     *state
	msg    Message
	temps  []ID
	pinned []any
	f32    bool
	f64    bool
}

// newCall converts args to registers. It panics on argument types that can't
// be passed in a register; that is always a bug at the call site.
func newCall(target Receiver, sel string, args []any) *call {
	st := current()
	c := &call{st: st}
	c.msg.Target = idOf(target)
	c.msg.Sel = st.sel(sel)
	for i, a := range args {
		c.add(sel, i, a)
	}
	if c.f32 && c.f64 {
		panic(fmt.Sprintf("objc: %s mixes float32 and float64 arguments", sel))
	}
	c.msg.Float32 = c.f32
	c.pinned = append(c.pinned, target)
	return c
}

func (c *call) word(w uintptr, enc string) {
	c.msg.Args = append(c.msg.Args, w)
	c.msg.Types += enc
}

func (c *call) add(sel string, i int, a any) {
	switch v := a.(type) {
	case nil:
		c.word(0, "@")
	case Receiver:
		c.word(uintptr(idOf(v)), "@")
		c.pinned = append(c.pinned, v)
	case Sel:
		c.word(uintptr(v), ":")
	case bool:
		if v {
			c.word(1, "B")
		} else {
			c.word(0, "B")
		}
	case string:
		s := c.st.rt.NewString(v)
		c.temps = append(c.temps, s)
		c.word(uintptr(s), "@")
	case unsafe.Pointer:
		c.word(uintptr(v), "^v")
		c.pinned = append(c.pinned, v)
	case float32:
		c.f32 = true
		c.msg.Floats = append(c.msg.Floats, float64(v))
	case float64:
		c.f64 = true
		c.msg.Floats = append(c.msg.Floats, v)
	default:
		rv := reflect.ValueOf(a)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			c.word(uintptr(rv.Int()), "q")
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			c.word(uintptr(rv.Uint()), "Q")
		case reflect.Bool:
			if rv.Bool() {
				c.word(1, "B")
			} else {
				c.word(0, "B")
			}
		case reflect.Float32:
			c.f32 = true
			c.msg.Floats = append(c.msg.Floats, rv.Float())
		case reflect.Float64:
			c.f64 = true
			c.msg.Floats = append(c.msg.Floats, rv.Float())
		default:
			panic(fmt.Sprintf("objc: argument %d of %s has unsupported type %T", i, sel, a))
		}
	}
}

func (c *call) send(ret ReturnKind) Result {
	c.msg.Return = ret
	res, err := c.st.rt.Send(c.msg)
	for _, s := range c.temps {
		c.st.rt.Release(s)
	}
	runtime.KeepAlive(c.pinned)
	if err != nil && err != ErrUnsupported {
		panic(fmt.Sprintf("objc: %s: %v", c.st.rt.SelectorName(c.msg.Sel), err))
	}
	return res
}

func (c *call) object(sel string) (*Object, *Object) {
	c.msg.Retain = !ReturnsRetained(sel)
	res := c.send(ReturnWord)
	var obj *Object
	if res.Word != 0 {
		obj = newObject(ID(res.Word), c.st.rt)
	}
	var nsErr *Object
	if res.Err != 0 {
		nsErr = newObject(res.Err, c.st.rt)
	}
	return obj, nsErr
}

// Send sends sel to target and returns its object result, owned. The result
// is nil when target is nil or the method returned nil.
//
// Arguments may be Receivers (including *Object and Ref), Sel, bool, any
// integer or float kind, unsafe.Pointer, nil, or a Go string, which is passed
// as a temporary NSString. At most MaxArgs word and MaxFloatArgs float
// arguments are allowed, and float32 and float64 can't be mixed.
func Send(target Receiver, sel string, args ...any) *Object {
	if idOf(target) == 0 {
		return nil
	}
	obj, _ := newCall(target, sel, args).object(sel)
	return obj
}

// SendWithError sends a message whose last parameter is an NSError**. Both
// results are owned; at most one is usually non-nil.
func SendWithError(target Receiver, sel string, args ...any) (*Object, *Object) {
	if idOf(target) == 0 {
		return nil, nil
	}
	c := newCall(target, sel, args)
	c.msg.ErrorOut = true
	return c.object(sel)
}

// SendBoolWithError is SendWithError for methods returning BOOL.
func SendBoolWithError(target Receiver, sel string, args ...any) (bool, *Object) {
	if idOf(target) == 0 {
		return false, nil
	}
	c := newCall(target, sel, args)
	c.msg.ErrorOut = true
	res := c.send(ReturnBool)
	var nsErr *Object
	if res.Err != 0 {
		nsErr = newObject(res.Err, c.st.rt)
	}
	return res.Word != 0, nsErr
}

// SendVoid sends a message with no result.
func SendVoid(target Receiver, sel string, args ...any) {
	if idOf(target) == 0 {
		return
	}
	newCall(target, sel, args).send(ReturnVoid)
}

// SendUint sends a message returning NSUInteger or any unsigned integer.
func SendUint(target Receiver, sel string, args ...any) uint64 {
	if idOf(target) == 0 {
		return 0
	}
	return uint64(newCall(target, sel, args).send(ReturnWord).Word)
}

// SendInt sends a message returning NSInteger.
func SendInt(target Receiver, sel string, args ...any) int64 {
	if idOf(target) == 0 {
		return 0
	}
	return int64(newCall(target, sel, args).send(ReturnWord).Word)
}

// SendPointer sends a message returning a non-object pointer, such as
// -[MTLBuffer contents].
func SendPointer(target Receiver, sel string, args ...any) unsafe.Pointer {
	if idOf(target) == 0 {
		return nil
	}
	w := newCall(target, sel, args).send(ReturnWord).Word
	return *(*unsafe.Pointer)(unsafe.Pointer(&w))
}

// SendBool sends a message returning BOOL.
func SendBool(target Receiver, sel string, args ...any) bool {
	if idOf(target) == 0 {
		return false
	}
	return newCall(target, sel, args).send(ReturnBool).Word != 0
}

// SendFloat32 sends a message returning float.
func SendFloat32(target Receiver, sel string, args ...any) float32 {
	if idOf(target) == 0 {
		return 0
	}
	return newCall(target, sel, args).send(ReturnFloat32).Float32
}

// SendFloat64 sends a message returning double, CGFloat or CFTimeInterval.
func SendFloat64(target Receiver, sel string, args ...any) float64 {
	if idOf(target) == 0 {
		return 0
	}
	return newCall(target, sel, args).send(ReturnFloat64).Float64
}

// SendString sends a message returning an NSString and copies it. A nil
// string reads as "".
func SendString(target Receiver, sel string, args ...any) string {
	str := Send(target, sel, args...)
	if str == nil {
		return ""
	}
	defer str.Release()
	return str.rt.StringValue(str.id)
}

// Alloc sends alloc to the class named name. The result is a +1 pointer that
// must be passed to Init.
func Alloc(name string) ID {
	cls := GetClass(name)
	if cls == 0 {
		return 0
	}
	c := newCall(cls, "alloc", nil)
	return ID(c.send(ReturnWord).Word)
}

// Init sends an init-family message to an allocated object. The allocation is
// consumed even when init fails and returns nil.
func Init(allocated ID, sel string, args ...any) *Object {
	if allocated == 0 {
		return nil
	}
	c := newCall(allocated, sel, args)
	res := c.send(ReturnWord)
	if res.Word == 0 {
		return nil
	}
	return newObject(ID(res.Word), c.st.rt)
}

// New allocates and initializes an instance of the class named name.
func New(name string) *Object {
	return Init(Alloc(name), "init")
}

// SendClass sends a class method to the class named name and returns its
// object result, owned.
func SendClass(name string, sel string, args ...any) *Object {
	cls := GetClass(name)
	if cls == 0 {
		return nil
	}
	return Send(cls, sel, args...)
}
