// Package monitoring reports internal failures to an error tracker. The
// package keeps a process-wide Monitor so that deep call sites can report
// without threading a dependency through every constructor.
package monitoring

import (
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor restores the
// no-op default.
func Init(m Monitor) {
	mu.Lock()
	defer mu.Unlock()
	if m == nil {
		m = NopMonitor{}
	}
	current = m
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	get().CaptureException(err, tags)
}

// Recover captures panics in goroutines. It must be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		m := get()
		if pr, ok := m.(PanicRecorder); ok {
			pr.RecoverValue(r)
		}
		panic(r)
	}
}

// PanicRecorder is implemented by monitors able to record a recovered panic
// value before it is re-raised.
type PanicRecorder interface {
	RecoverValue(v any)
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	get().Flush(d)
}
