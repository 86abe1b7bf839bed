package metal_bridge

import (
	"fmt"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
)

// BinaryArchiveDescriptor is an MTLBinaryArchiveDescriptor. With no URL the
// archive starts empty.
type BinaryArchiveDescriptor struct {
	*objc.Object
}

func NewBinaryArchiveDescriptor() *BinaryArchiveDescriptor {
	return wrap[BinaryArchiveDescriptor](objc.New("MTLBinaryArchiveDescriptor"))
}

// URL returns the path of the archive file to load, or "".
func (bd *BinaryArchiveDescriptor) URL() string {
	u := foundation.URLFrom(objc.Send(bd, "url"))
	if u == nil {
		return ""
	}
	defer u.Release()
	return u.Path()
}

// SetURL loads an existing archive file when the archive is created. An
// empty path clears it.
func (bd *BinaryArchiveDescriptor) SetURL(path string) {
	if path == "" {
		objc.SendVoid(bd, "setUrl:", nil)
		return
	}
	u := foundation.NewFileURL(path)
	defer u.Release()
	objc.SendVoid(bd, "setUrl:", u)
}

// BinaryArchive is an MTLBinaryArchive: a container of compiled pipeline
// code that can be written to disk and reloaded.
type BinaryArchive struct {
	*objc.Object
}

func (d *Device) NewBinaryArchive(desc *BinaryArchiveDescriptor) (*BinaryArchive, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	if desc == nil {
		return nil, &CreateError{Object: "binary archive", Err: errNilDescriptor}
	}
	obj, err := createWithError("binary archive", d, "newBinaryArchiveWithDescriptor:error:", desc)
	return wrap[BinaryArchive](obj), err
}

func (a *BinaryArchive) Label() string     { return label(a) }
func (a *BinaryArchive) SetLabel(s string) { setLabel(a, s) }
func (a *BinaryArchive) Device() *Device   { return deviceOf(a) }

// AddComputePipelineFunctions compiles the pipeline described by desc into
// the archive.
func (a *BinaryArchive) AddComputePipelineFunctions(desc *ComputePipelineDescriptor) error {
	if err := foundation.CallBool(a, "addComputePipelineFunctionsWithDescriptor:error:", desc); err != nil {
		return fmt.Errorf("add compute pipeline to archive: %w", err)
	}
	return nil
}

func (a *BinaryArchive) AddRenderPipelineFunctions(desc *RenderPipelineDescriptor) error {
	if err := foundation.CallBool(a, "addRenderPipelineFunctionsWithDescriptor:error:", desc); err != nil {
		return fmt.Errorf("add render pipeline to archive: %w", err)
	}
	return nil
}

// SerializeToURL writes the archive to path.
func (a *BinaryArchive) SerializeToURL(path string) error {
	u := foundation.NewFileURL(path)
	if u == nil {
		return ErrUnsupported
	}
	defer u.Release()
	if err := foundation.CallBool(a, "serializeToURL:error:", u); err != nil {
		return fmt.Errorf("serialize binary archive to %s: %w", path, err)
	}
	return nil
}
