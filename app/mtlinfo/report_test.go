package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-mtl/archive"
	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
	"github.com/tsawler/go-mtl/objc/objctest"
)

// fakeDevices scripts MTLCopyAllDevices to return an integrated and a
// discrete GPU.
func fakeDevices(t *testing.T) *objctest.Runtime {
	rt := objctest.Install(t)

	families := map[string][]metal_bridge.GPUFamily{
		"Apple M2":             {metal_bridge.GPUFamilyApple8, metal_bridge.GPUFamilyMac2, metal_bridge.GPUFamilyMetal3},
		"AMD Radeon Pro 5500M": {metal_bridge.GPUFamilyMac2},
	}
	rt.Handle("MTLDevice.supportsFamily:", func(self objc.ID, args []uintptr) uintptr {
		for _, f := range families[objc.SendString(self, "name")] {
			if uintptr(f) == args[0] {
				return 1
			}
		}
		return 0
	})

	newDevice := func(name string, id uint64, unified, lowPower bool) objc.ID {
		d := rt.NewObject("MTLDevice")
		objc.SendVoid(d, "setName:", name)
		objc.SendVoid(d, "setRegistryID:", id)
		objc.SendVoid(d, "setHasUnifiedMemory:", unified)
		objc.SendVoid(d, "setLowPower:", lowPower)
		objc.SendVoid(d, "setMaxBufferLength:", uint(1<<30))
		objc.SendVoid(d, "setRecommendedMaxWorkingSetSize:", uint64(16<<30))
		objc.Invoke(d, "setMaxThreadsPerThreadgroup:", "v", nil,
			objc.Value(metal_bridge.Size{Width: 1024, Height: 1024, Depth: 1024}))
		return d
	}

	arrays := make(map[objc.ID][]objc.ID)
	rt.Function("MTLCopyAllDevices", func() objc.ID {
		arr := rt.NewObject("NSArray")
		arrays[arr] = []objc.ID{
			newDevice("Apple M2", 0x100000abc, true, false),
			newDevice("AMD Radeon Pro 5500M", 0x100000def, false, false),
		}
		return arr
	})
	rt.Handle("NSArray.count", func(self objc.ID, args []uintptr) uintptr {
		return uintptr(len(arrays[self]))
	})
	rt.Handle("NSArray.objectAtIndex:", func(self objc.ID, args []uintptr) uintptr {
		return uintptr(arrays[self][args[0]])
	})
	return rt
}

func releaseAll(devices []*metal_bridge.Device) {
	for _, d := range devices {
		d.Release()
	}
}

func TestCollect(t *testing.T) {
	rt := fakeDevices(t)
	devices := metal_bridge.CopyAllDevices()
	require.Len(t, devices, 2)
	defer releaseAll(devices)

	host := HostInfo{OS: "darwin", Arch: "arm64", CPUs: 8, Memory: 16 << 30}
	r, err := collect(DefaultConfig(), host, devices)
	require.NoError(t, err)
	assert.Equal(t, host, r.Host)
	require.Len(t, r.Devices, 2)

	m2 := r.Devices[0]
	assert.Equal(t, "Apple M2", m2.Name)
	assert.EqualValues(t, 0x100000abc, m2.RegistryID)
	assert.True(t, m2.UnifiedMemory)
	assert.Equal(t, []string{
		metal_bridge.GPUFamilyApple8.String(),
		metal_bridge.GPUFamilyMac2.String(),
		metal_bridge.GPUFamilyMetal3.String(),
	}, m2.Families)
	require.NotNil(t, m2.Limits)
	assert.Equal(t, []uint{1024, 1024, 1024}, m2.Limits.MaxThreadsPerThreadgroup)
	assert.EqualValues(t, 16<<30, m2.Limits.RecommendedWorkingSet)
	assert.EqualValues(t, 1<<30, m2.Limits.MaxBufferLength)

	cfg := DefaultConfig()
	cfg.Devices = []string{"radeon"}
	cfg.Families = false
	cfg.Limits = false
	r, err = collect(cfg, host, devices)
	require.NoError(t, err)
	require.Len(t, r.Devices, 1)
	assert.Equal(t, "AMD Radeon Pro 5500M", r.Devices[0].Name)
	assert.Nil(t, r.Devices[0].Families)
	assert.Nil(t, r.Devices[0].Limits)

	assert.Empty(t, rt.Violations())
}

func TestCollectManifests(t *testing.T) {
	fakeDevices(t)
	devices := metal_bridge.CopyAllDevices()
	defer releaseAll(devices)

	dir := t.TempDir()
	m := &archive.Manifest{
		Version:    archive.ManifestVersion,
		DeviceName: "Apple M2",
		Created:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, m.Add(archive.Entry{Name: "add", Kind: archive.KindCompute, Functions: []string{"vadd_f32"}}))
	path := filepath.Join(dir, "pipelines.manifest")
	require.NoError(t, m.Save(path))

	cfg := DefaultConfig()
	cfg.Manifests = []string{path}
	r, err := collect(cfg, HostInfo{}, devices)
	require.NoError(t, err)
	require.Len(t, r.Manifests, 1)
	assert.Equal(t, []string{"add (compute: vadd_f32)"}, r.Manifests[0].Pipelines)

	cfg.Manifests = []string{filepath.Join(dir, "absent.manifest")}
	_, err = collect(cfg, HostInfo{}, devices)
	assert.ErrorContains(t, err, "absent.manifest")
}

func TestReportWrite(t *testing.T) {
	r := &Report{
		Host: HostInfo{OS: "darwin", OSVersion: "15.1", Arch: "arm64", CPU: "Apple M2", CPUs: 8, Memory: 16 << 30},
		Devices: []DeviceReport{{
			Name:          "Apple M2",
			RegistryID:    0xabc,
			UnifiedMemory: true,
			Families:      []string{"Apple8", "Metal3"},
			Limits: &Limits{
				MaxThreadsPerThreadgroup: []uint{1024, 1024, 1024},
				RecommendedWorkingSet:    11 << 30,
				MaxBufferLength:          8 << 30,
			},
		}},
	}

	var text bytes.Buffer
	require.NoError(t, r.Write(&text, "text"))
	out := text.String()
	assert.True(t, strings.HasPrefix(out, "Host: darwin/arm64 15.1, 8 CPUs (Apple M2), 16.0 GiB memory\n"))
	assert.Contains(t, out, "Device 0: Apple M2\n")
	assert.Contains(t, out, "Registry ID:      0xabc\n")
	assert.Contains(t, out, "Families:         Apple8, Metal3\n")
	assert.Contains(t, out, "Max threadgroup:  1024x1024x1024\n")
	assert.Contains(t, out, "Working set:      11.0 GiB\n")
	assert.Contains(t, out, "Allocated:        0 B\n")

	var doc bytes.Buffer
	require.NoError(t, r.Write(&doc, "toml"))
	var back Report
	require.NoError(t, toml.Unmarshal(doc.Bytes(), &back))
	assert.Equal(t, r.Devices, back.Devices)
	assert.Equal(t, r.Host, back.Host)

	assert.Error(t, r.Write(&doc, "xml"))

	var empty bytes.Buffer
	require.NoError(t, (&Report{}).Write(&empty, ""))
	assert.Contains(t, empty.String(), "No matching Metal devices")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "1.5 MiB", formatBytes(3<<19))
	assert.Equal(t, "64.0 GiB", formatBytes(64<<30))
}

func TestRun(t *testing.T) {
	dir := isolate(t)
	fakeDevices(t)
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		objc.SetLogger(nil)
		metal_bridge.SetLogger(nil)
	})
	writeFile(t, filepath.Join(dir, "mtlinfo.toml"), "families = false\n")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(options{devices: []string{"M2"}, verbose: true}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Device 0: Apple M2")
	assert.NotContains(t, stdout.String(), "Radeon")
	assert.NotContains(t, stdout.String(), "Families:")
	assert.Contains(t, stderr.String(), "loaded config")

	stdout.Reset()
	require.NoError(t, run(options{format: "toml"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "[[device]]")

	assert.Error(t, run(options{format: "yaml"}, &stdout, &stderr))
}
