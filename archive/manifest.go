// Package archive records what a Metal binary archive contains. An
// MTLBinaryArchive can't list its pipelines, so a manifest is written beside
// each serialized .metallib naming every pipeline added to it.
package archive

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/tsawler/go-mtl/metal_bridge"
)

// ManifestVersion is the manifest encoding written by this package.
const ManifestVersion = 1

var (
	// ErrDuplicate is returned by Add for a name already in the manifest.
	ErrDuplicate = errors.New("archive: duplicate pipeline name")

	// ErrVersion is returned when loading a manifest written by a newer
	// version of this package.
	ErrVersion = errors.New("archive: unsupported manifest version")
)

// Kind is the kind of pipeline an entry describes.
type Kind int32

const (
	KindCompute Kind = iota + 1
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindCompute:
		return "compute"
	case KindRender:
		return "render"
	default:
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
}

// Entry is one pipeline in an archive.
type Entry struct {
	Name string
	Kind Kind
	// Functions holds the pipeline's function names in stage order.
	Functions []string
	// PixelFormats holds a render pipeline's color attachment formats
	// followed by its depth format, if any.
	PixelFormats []metal_bridge.PixelFormat
}

// Manifest lists the pipelines of one archive file.
type Manifest struct {
	Version    uint32
	DeviceName string
	RegistryID uint64
	Created    time.Time
	Entries    []Entry
}

// NewManifest starts an empty manifest for archives compiled on device.
func NewManifest(device *metal_bridge.Device) *Manifest {
	m := &Manifest{Version: ManifestVersion, Created: time.Now().UTC()}
	if device != nil {
		m.DeviceName = device.Name()
		m.RegistryID = device.RegistryID()
	}
	return m
}

// Add appends e. Names must be unique.
func (m *Manifest) Add(e Entry) error {
	if e.Name == "" {
		return fmt.Errorf("archive: entry needs a name")
	}
	if _, ok := m.Lookup(e.Name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, e.Name)
	}
	m.Entries = append(m.Entries, Entry{
		Name:         e.Name,
		Kind:         e.Kind,
		Functions:    slices.Clone(e.Functions),
		PixelFormats: slices.Clone(e.PixelFormats),
	})
	return nil
}

func (m *Manifest) Lookup(name string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Field numbers of the manifest encoding.
const (
	fieldVersion    protowire.Number = 1
	fieldDeviceName protowire.Number = 2
	fieldRegistryID protowire.Number = 3
	fieldCreated    protowire.Number = 4
	fieldEntry      protowire.Number = 5

	fieldEntryName        protowire.Number = 1
	fieldEntryKind        protowire.Number = 2
	fieldEntryFunction    protowire.Number = 3
	fieldEntryPixelFormat protowire.Number = 4
)

// MarshalBinary encodes the manifest in protocol buffer wire format.
func (m *Manifest) MarshalBinary() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Version))
	if m.DeviceName != "" {
		b = protowire.AppendTag(b, fieldDeviceName, protowire.BytesType)
		b = protowire.AppendString(b, m.DeviceName)
	}
	if m.RegistryID != 0 {
		b = protowire.AppendTag(b, fieldRegistryID, protowire.VarintType)
		b = protowire.AppendVarint(b, m.RegistryID)
	}
	if !m.Created.IsZero() {
		b = protowire.AppendTag(b, fieldCreated, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Created.UnixNano()))
	}
	for _, e := range m.Entries {
		b = protowire.AppendTag(b, fieldEntry, protowire.BytesType)
		b = protowire.AppendBytes(b, e.marshal())
	}
	return b, nil
}

func (e *Entry) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldEntryName, protowire.BytesType)
	b = protowire.AppendString(b, e.Name)
	b = protowire.AppendTag(b, fieldEntryKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Kind))
	for _, fn := range e.Functions {
		b = protowire.AppendTag(b, fieldEntryFunction, protowire.BytesType)
		b = protowire.AppendString(b, fn)
	}
	if len(e.PixelFormats) > 0 {
		var packed []byte
		for _, f := range e.PixelFormats {
			packed = protowire.AppendVarint(packed, uint64(f))
		}
		b = protowire.AppendTag(b, fieldEntryPixelFormat, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b
}

// UnmarshalBinary decodes a manifest. Unknown fields are skipped.
func (m *Manifest) UnmarshalBinary(b []byte) error {
	*m = Manifest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("archive: manifest: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("archive: manifest version: %w", protowire.ParseError(n))
			}
			m.Version = uint32(v)
			b = b[n:]
		case num == fieldDeviceName && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("archive: manifest device: %w", protowire.ParseError(n))
			}
			m.DeviceName = s
			b = b[n:]
		case num == fieldRegistryID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("archive: manifest registry ID: %w", protowire.ParseError(n))
			}
			m.RegistryID = v
			b = b[n:]
		case num == fieldCreated && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("archive: manifest timestamp: %w", protowire.ParseError(n))
			}
			m.Created = time.Unix(0, int64(v)).UTC()
			b = b[n:]
		case num == fieldEntry && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("archive: manifest entry: %w", protowire.ParseError(n))
			}
			var e Entry
			if err := e.unmarshal(raw); err != nil {
				return err
			}
			m.Entries = append(m.Entries, e)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("archive: manifest field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if m.Version > ManifestVersion {
		return fmt.Errorf("%w: %d", ErrVersion, m.Version)
	}
	return nil
}

func (e *Entry) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("archive: entry: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldEntryName && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("archive: entry name: %w", protowire.ParseError(n))
			}
			e.Name = s
			b = b[n:]
		case num == fieldEntryKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("archive: entry kind: %w", protowire.ParseError(n))
			}
			e.Kind = Kind(v)
			b = b[n:]
		case num == fieldEntryFunction && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("archive: entry function: %w", protowire.ParseError(n))
			}
			e.Functions = append(e.Functions, s)
			b = b[n:]
		case num == fieldEntryPixelFormat && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("archive: entry pixel formats: %w", protowire.ParseError(n))
			}
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return fmt.Errorf("archive: entry pixel format: %w", protowire.ParseError(m))
				}
				e.PixelFormats = append(e.PixelFormats, metal_bridge.PixelFormat(v))
				packed = packed[m:]
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("archive: entry field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Load reads a manifest written by Save.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m := new(Manifest)
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return m, nil
}
