package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/tsawler/go-mtl/archive"
	"github.com/tsawler/go-mtl/metal_bridge"
)

type Report struct {
	Host      HostInfo         `toml:"host"`
	Devices   []DeviceReport   `toml:"device"`
	Manifests []ManifestReport `toml:"manifest,omitempty"`
}

type DeviceReport struct {
	Name          string   `toml:"name"`
	RegistryID    uint64   `toml:"registry_id"`
	UnifiedMemory bool     `toml:"unified_memory"`
	LowPower      bool     `toml:"low_power"`
	Headless      bool     `toml:"headless"`
	Raytracing    bool     `toml:"raytracing"`
	Families      []string `toml:"families,omitempty"`
	Limits        *Limits  `toml:"limits,omitempty"`
}

type Limits struct {
	MaxThreadsPerThreadgroup []uint `toml:"max_threads_per_threadgroup"`
	RecommendedWorkingSet    uint64 `toml:"recommended_working_set"`
	MaxBufferLength          uint   `toml:"max_buffer_length"`
	CurrentAllocated         uint   `toml:"current_allocated"`
}

type ManifestReport struct {
	Path      string    `toml:"path"`
	Device    string    `toml:"device"`
	Created   time.Time `toml:"created"`
	Pipelines []string  `toml:"pipelines"`
}

// matches reports whether name passes the config's device filter.
func (c *Config) matches(name string) bool {
	if len(c.Devices) == 0 {
		return true
	}
	name = strings.ToLower(name)
	for _, want := range c.Devices {
		if strings.Contains(name, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// collect queries devices for what cfg asks for. The devices stay owned by
// the caller.
func collect(cfg *Config, host HostInfo, devices []*metal_bridge.Device) (*Report, error) {
	r := &Report{Host: host}
	for _, d := range devices {
		name := d.Name()
		if !cfg.matches(name) {
			continue
		}
		dr := DeviceReport{
			Name:          name,
			RegistryID:    d.RegistryID(),
			UnifiedMemory: d.HasUnifiedMemory(),
			LowPower:      d.IsLowPower(),
			Headless:      d.IsHeadless(),
			Raytracing:    d.SupportsRaytracing(),
		}
		if cfg.Families {
			for _, f := range d.Families() {
				dr.Families = append(dr.Families, f.String())
			}
		}
		if cfg.Limits {
			tg := d.MaxThreadsPerThreadgroup()
			dr.Limits = &Limits{
				MaxThreadsPerThreadgroup: []uint{tg.Width, tg.Height, tg.Depth},
				RecommendedWorkingSet:    d.RecommendedMaxWorkingSetSize(),
				MaxBufferLength:          d.MaxBufferLength(),
				CurrentAllocated:         d.CurrentAllocatedSize(),
			}
		}
		r.Devices = append(r.Devices, dr)
	}
	for _, path := range cfg.Manifests {
		m, err := archive.Load(path)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
		mr := ManifestReport{Path: path, Device: m.DeviceName, Created: m.Created}
		for _, e := range m.Entries {
			mr.Pipelines = append(mr.Pipelines, fmt.Sprintf("%s (%s: %s)", e.Name, e.Kind, strings.Join(e.Functions, ", ")))
		}
		r.Manifests = append(r.Manifests, mr)
	}
	return r, nil
}

// Write prints the report in format, text or toml.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "toml":
		return toml.NewEncoder(w).Encode(r)
	case "text", "":
		return r.writeText(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func (r *Report) writeText(w io.Writer) error {
	var b strings.Builder
	h := r.Host
	fmt.Fprintf(&b, "Host: %s/%s", h.OS, h.Arch)
	if h.OSVersion != "" {
		fmt.Fprintf(&b, " %s", h.OSVersion)
	}
	fmt.Fprintf(&b, ", %d CPUs", h.CPUs)
	if h.CPU != "" {
		fmt.Fprintf(&b, " (%s)", h.CPU)
	}
	if h.Memory > 0 {
		fmt.Fprintf(&b, ", %s memory", formatBytes(h.Memory))
	}
	b.WriteString("\n")

	if len(r.Devices) == 0 {
		b.WriteString("No matching Metal devices\n")
	}
	for i, d := range r.Devices {
		fmt.Fprintf(&b, "\nDevice %d: %s\n", i, d.Name)
		fmt.Fprintf(&b, "  Registry ID:      %#x\n", d.RegistryID)
		fmt.Fprintf(&b, "  Unified memory:   %v\n", d.UnifiedMemory)
		fmt.Fprintf(&b, "  Low power:        %v\n", d.LowPower)
		fmt.Fprintf(&b, "  Headless:         %v\n", d.Headless)
		fmt.Fprintf(&b, "  Ray tracing:      %v\n", d.Raytracing)
		if len(d.Families) > 0 {
			fmt.Fprintf(&b, "  Families:         %s\n", strings.Join(d.Families, ", "))
		}
		if l := d.Limits; l != nil {
			tg := l.MaxThreadsPerThreadgroup
			fmt.Fprintf(&b, "  Max threadgroup:  %dx%dx%d\n", tg[0], tg[1], tg[2])
			fmt.Fprintf(&b, "  Working set:      %s\n", formatBytes(l.RecommendedWorkingSet))
			fmt.Fprintf(&b, "  Max buffer:       %s\n", formatBytes(uint64(l.MaxBufferLength)))
			fmt.Fprintf(&b, "  Allocated:        %s\n", formatBytes(uint64(l.CurrentAllocated)))
		}
	}
	for _, m := range r.Manifests {
		fmt.Fprintf(&b, "\nArchive %s (%s, %s)\n", m.Path, m.Device, m.Created.Format(time.RFC3339))
		for _, p := range m.Pipelines {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
