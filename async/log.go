package async

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger for pool diagnostics. nil restores
// slog.Default().
func SetLogger(l *slog.Logger) { pkgLogger.Store(l) }

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// fanIn calls completion once after n parts have finished, with the first
// error any part reported.
type fanIn struct {
	mu         sync.Mutex
	remaining  int
	err        error
	completion func(error)
}

func newFanIn(n int, completion func(error)) *fanIn {
	return &fanIn{remaining: n, completion: completion}
}

func (f *fanIn) finish(err error) { f.done(1, err) }

// abandon accounts for n parts that will never be started.
func (f *fanIn) abandon(n int, err error) { f.done(n, err) }

func (f *fanIn) done(n int, err error) {
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.remaining -= n
	fire := f.remaining == 0
	err = f.err
	f.mu.Unlock()
	if fire && f.completion != nil {
		f.completion(err)
	}
}
