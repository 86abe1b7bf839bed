package main

import "runtime"

// HostInfo describes the machine the devices belong to.
type HostInfo struct {
	OS        string `toml:"os"`
	OSVersion string `toml:"os_version,omitempty"`
	Arch      string `toml:"arch"`
	CPU       string `toml:"cpu,omitempty"`
	CPUs      int    `toml:"cpus"`
	Memory    uint64 `toml:"memory"`
}

// readHostInfo fills in what the platform reports. Fields it can't read are
// left at their runtime defaults.
func readHostInfo() HostInfo {
	h := HostInfo{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
		CPUs: runtime.NumCPU(),
	}
	readHost(&h)
	return h
}
