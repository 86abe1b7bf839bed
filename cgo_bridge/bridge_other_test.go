//go:build !darwin || !cgo

package cgo_bridge

import (
	"errors"
	"testing"
)

func TestUnsupportedPlatform(t *testing.T) {
	if Available() {
		t.Fatal("Available() = true on a platform without the Objective-C runtime")
	}
	if _, err := Send(0, 0, ReturnVoid, 0, nil, nil, false); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Send error = %v, want ErrUnsupported", err)
	}
	if err := Invoke(0, 0, "v@:", nil, 0, false, nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Invoke error = %v, want ErrUnsupported", err)
	}
	if dev := CallCreateFunction("MTLCreateSystemDefaultDevice"); dev != 0 {
		t.Errorf("CallCreateFunction = %#x, want 0", dev)
	}
}
