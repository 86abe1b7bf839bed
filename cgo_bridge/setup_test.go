//go:build darwin && cgo

package cgo_bridge

import (
	"fmt"
	"os"
	"sync"
	"testing"
)

// Shared test resources
var (
	sharedTestDevice uintptr
	setupErr         error
	setupOnce        sync.Once
)

// setupSharedTestResources creates the system default device once for all tests
func setupSharedTestResources() {
	setupOnce.Do(func() {
		device := CallCreateFunction("MTLCreateSystemDefaultDevice")
		if device == 0 {
			setupErr = fmt.Errorf("Metal device not available")
			return
		}
		sharedTestDevice = device
	})
}

// getSharedDevice returns the shared Metal device
func getSharedDevice(t *testing.T) uintptr {
	t.Helper()
	setupSharedTestResources()
	if setupErr != nil {
		t.Skipf("Skipping test - %v", setupErr)
	}
	return sharedTestDevice
}

// TestMain releases the shared device after all tests ran
func TestMain(m *testing.M) {
	setupSharedTestResources()
	code := m.Run()
	if sharedTestDevice != 0 {
		Release(sharedTestDevice)
		sharedTestDevice = 0
	}
	os.Exit(code)
}
