//go:build linux

package main

import "golang.org/x/sys/unix"

func readHost(h *HostInfo) {
	var u unix.Utsname
	if err := unix.Uname(&u); err == nil {
		h.OSVersion = unix.ByteSliceToString(u.Release[:])
	}
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		h.Memory = uint64(si.Totalram) * uint64(si.Unit)
	}
}
