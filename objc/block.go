package objc

import "runtime"

// NewBlock returns an owned heap block that calls fn with its first two
// word-sized parameters. Metal's completion handlers take one object
// parameter (the command buffer, drawable or event), which arrives as a and
// is borrowed for the duration of the call.
//
// fn runs on whatever thread Metal invokes the block from and must not block
// for long. The Go function stays reachable until the runtime frees the
// block, which happens after the last owner, including Metal itself, releases
// it.
func NewBlock(fn func(a, b uintptr)) *Object {
	rt := current().rt
	id := rt.NewBlock(BlockFunc(fn))
	if id == 0 {
		return nil
	}
	return newObject(id, rt)
}

// AutoreleasePool runs fn inside an autorelease pool. The goroutine is locked
// to its OS thread for the duration because a pool must be popped on the
// thread that pushed it.
func AutoreleasePool(fn func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	rt := current().rt
	pool := rt.PushPool()
	defer rt.PopPool(pool)
	fn()
}
