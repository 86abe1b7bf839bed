package metal_bridge

import (
	"fmt"
	"unsafe"

	"github.com/tsawler/go-mtl/objc"
)

// Buffer is an MTLBuffer.
type Buffer struct {
	*objc.Object
}

// AsBytes reinterprets a slice of fixed-size values as its bytes.
func AsBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

func (d *Device) NewBuffer(length uint, opts ResourceOptions) (*Buffer, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, &CreateError{Object: "buffer", Err: fmt.Errorf("length must be positive")}
	}
	obj, err := created("buffer", objc.Send(d, "newBufferWithLength:options:", length, opts))
	return wrap[Buffer](obj), err
}

// NewBufferWithBytes creates a buffer holding a copy of data, which must be
// a []byte, []float32, []int32, []uint32, []float64, []int64 or []uint16.
func (d *Device) NewBufferWithBytes(data any, opts ResourceOptions) (*Buffer, error) {
	var b []byte
	switch v := data.(type) {
	case []byte:
		b = v
	case []float32:
		b = AsBytes(v)
	case []int32:
		b = AsBytes(v)
	case []uint32:
		b = AsBytes(v)
	case []float64:
		b = AsBytes(v)
	case []int64:
		b = AsBytes(v)
	case []uint16:
		b = AsBytes(v)
	default:
		return nil, fmt.Errorf("unsupported data type %T for buffer creation", data)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("data slice cannot be empty")
	}
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := created("buffer", objc.Send(d, "newBufferWithBytes:length:options:",
		unsafe.Pointer(&b[0]), uint(len(b)), opts))
	return wrap[Buffer](obj), err
}

func (b *Buffer) Length() uint { return uint(objc.SendUint(b, "length")) }

// Contents returns the CPU address of a shared or managed buffer, or nil for
// private storage.
func (b *Buffer) Contents() unsafe.Pointer { return objc.SendPointer(b, "contents") }

// Bytes returns the buffer's contents as a slice aliasing GPU-visible
// memory. It is valid until the buffer is released.
func (b *Buffer) Bytes() []byte {
	p := b.Contents()
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), b.Length())
}

func (b *Buffer) ContentsAsFloat32() []float32 {
	p := b.Contents()
	if p == nil {
		return nil
	}
	return unsafe.Slice((*float32)(p), b.Length()/4)
}

func (b *Buffer) ContentsAsInt32() []int32 {
	p := b.Contents()
	if p == nil {
		return nil
	}
	return unsafe.Slice((*int32)(p), b.Length()/4)
}

// DidModifyRange tells Metal which bytes of a managed buffer the CPU wrote.
func (b *Buffer) DidModifyRange(r Range) {
	objc.Invoke(b, "didModifyRange:", "v", nil, objc.Value(r))
}

// GPUAddress is the buffer's address for argument buffers.
func (b *Buffer) GPUAddress() uint64 { return objc.SendUint(b, "gpuAddress") }

// NewTexture creates a texture sharing the buffer's storage from offset.
// bytesPerRow must honor Device.MinimumLinearTextureAlignment.
func (b *Buffer) NewTexture(desc *TextureDescriptor, offset, bytesPerRow uint) (*Texture, error) {
	if desc == nil {
		return nil, &CreateError{Object: "texture", Err: errNilDescriptor}
	}
	obj, err := created("texture", objc.Send(b, "newTextureWithDescriptor:offset:bytesPerRow:", desc, offset, bytesPerRow))
	return wrap[Texture](obj), err
}
