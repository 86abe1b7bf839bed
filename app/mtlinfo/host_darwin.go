//go:build darwin

package main

import "golang.org/x/sys/unix"

func readHost(h *HostInfo) {
	if s, err := unix.Sysctl("machdep.cpu.brand_string"); err == nil {
		h.CPU = s
	}
	if s, err := unix.Sysctl("kern.osproductversion"); err == nil {
		h.OSVersion = s
	}
	if n, err := unix.SysctlUint32("hw.ncpu"); err == nil {
		h.CPUs = int(n)
	}
	if n, err := unix.SysctlUint64("hw.memsize"); err == nil {
		h.Memory = n
	}
}
