package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/tsawler/go-mtl/metal_bridge"
)

// Recorder adds pipelines to a binary archive and keeps the manifest in
// step. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	device   *metal_bridge.Device
	archive  *metal_bridge.BinaryArchive
	manifest *Manifest
}

// Paths returns the archive and manifest file names for name in dir.
func Paths(dir, name string) (metallib, manifest string) {
	return filepath.Join(dir, name+".metallib"), filepath.Join(dir, name+".manifest")
}

// NewRecorder starts an empty archive on device.
func NewRecorder(device *metal_bridge.Device) (*Recorder, error) {
	return newRecorder(device, "", NewManifest(device))
}

// OpenRecorder loads the archive and manifest that Serialize wrote for name
// in dir. Pipelines added afterwards are appended to both.
func OpenRecorder(device *metal_bridge.Device, dir, name string) (*Recorder, error) {
	lib, manifestPath := Paths(dir, name)
	m, err := Load(manifestPath)
	if err != nil {
		return nil, err
	}
	if m.RegistryID != 0 && device != nil && m.RegistryID != device.RegistryID() {
		return nil, fmt.Errorf("archive: %s was recorded on %q", lib, m.DeviceName)
	}
	return newRecorder(device, lib, m)
}

func newRecorder(device *metal_bridge.Device, path string, m *Manifest) (*Recorder, error) {
	if device == nil || device.IsNil() {
		return nil, metal_bridge.ErrNilDevice
	}
	desc := metal_bridge.NewBinaryArchiveDescriptor()
	if desc == nil {
		return nil, metal_bridge.ErrUnsupported
	}
	defer desc.Release()
	if path != "" {
		desc.SetURL(path)
	}
	archive, err := device.NewBinaryArchive(desc)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		device:   metal_bridge.Clone(device),
		archive:  archive,
		manifest: m,
	}, nil
}

// Archive returns the binary archive, borrowed from the recorder. Pass it
// to pipeline descriptors with SetBinaryArchives to compile from it.
func (r *Recorder) Archive() *metal_bridge.BinaryArchive { return r.archive }

// Manifest returns a copy of the manifest.
func (r *Recorder) Manifest() Manifest {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := *r.manifest
	m.Entries = make([]Entry, len(r.manifest.Entries))
	for i, e := range r.manifest.Entries {
		e.Functions = slices.Clone(e.Functions)
		e.PixelFormats = slices.Clone(e.PixelFormats)
		m.Entries[i] = e
	}
	return m
}

// Contains reports whether a pipeline named name has been recorded.
func (r *Recorder) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.manifest.Lookup(name)
	return ok
}

func functionName(fn *metal_bridge.Function) string {
	if fn == nil {
		return ""
	}
	defer fn.Release()
	return fn.Name()
}

// AddComputePipeline compiles desc into the archive under name.
func (r *Recorder) AddComputePipeline(name string, desc *metal_bridge.ComputePipelineDescriptor) error {
	if desc == nil {
		return fmt.Errorf("archive: nil compute pipeline descriptor")
	}
	fn := functionName(desc.ComputeFunction())
	if fn == "" {
		return fmt.Errorf("archive: compute pipeline %q has no function", name)
	}
	return r.add(Entry{Name: name, Kind: KindCompute, Functions: []string{fn}}, func() error {
		return r.archive.AddComputePipelineFunctions(desc)
	})
}

// maxColorAttachments is the number of color outputs a render pipeline has.
const maxColorAttachments = 8

// AddRenderPipeline compiles desc into the archive under name.
func (r *Recorder) AddRenderPipeline(name string, desc *metal_bridge.RenderPipelineDescriptor) error {
	if desc == nil {
		return fmt.Errorf("archive: nil render pipeline descriptor")
	}
	e := Entry{Name: name, Kind: KindRender}
	vertex := functionName(desc.VertexFunction())
	if vertex == "" {
		return fmt.Errorf("archive: render pipeline %q has no vertex function", name)
	}
	e.Functions = append(e.Functions, vertex)
	if fragment := functionName(desc.FragmentFunction()); fragment != "" {
		e.Functions = append(e.Functions, fragment)
	}
	for i := uint(0); i < maxColorAttachments; i++ {
		att := desc.ColorAttachment(i)
		if att == nil {
			break
		}
		f := att.PixelFormat()
		att.Release()
		if f != metal_bridge.PixelFormatInvalid {
			e.PixelFormats = append(e.PixelFormats, f)
		}
	}
	if f := desc.DepthAttachmentPixelFormat(); f != metal_bridge.PixelFormatInvalid {
		e.PixelFormats = append(e.PixelFormats, f)
	}
	return r.add(e, func() error {
		return r.archive.AddRenderPipelineFunctions(desc)
	})
}

func (r *Recorder) add(e Entry, compile func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.manifest.Lookup(e.Name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, e.Name)
	}
	if err := compile(); err != nil {
		return err
	}
	return r.manifest.Add(e)
}

// Serialize writes <name>.metallib and <name>.manifest into dir, creating
// it if needed. The manifest is only written once the archive has been.
func (r *Recorder) Serialize(dir, name string) error {
	if name == "" {
		return errors.New("archive: empty archive name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	lib, manifest := Paths(dir, name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.archive.SerializeToURL(lib); err != nil {
		return err
	}
	return r.manifest.Save(manifest)
}

// Close releases the archive and the recorder's device reference.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archive.Release()
	r.device.Release()
}
