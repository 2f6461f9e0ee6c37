package scheduling

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kilianp07/crewsched/core/model"
)

func shift(label string, start, end int) model.Shift {
	return model.Shift{Label: label, StartMinute: start, EndMinute: end, DrivingMinutes: end - start}.WithDisplay()
}

func catalogOf(name string, shifts ...model.Shift) model.Catalog {
	return model.Catalog{Name: name, Shifts: shifts}
}

// relaxed drops the minimum working day so that short scenarios stay
// feasible.
func relaxed() model.Regulations {
	r := model.DefaultRegulations()
	r.MinWorkingTime = 0
	return r
}

// threeLong is three 4h shifts with 35 min between consecutive ones.
func threeLong() model.Catalog {
	return catalogOf("three",
		shift("a", 0, 240),
		shift("b", 275, 515),
		shift("c", 550, 790),
	)
}

// crossed is two interleaved pairs: a->b and c->d chain with a 30 min gap.
func crossed() model.Catalog {
	return catalogOf("crossed",
		shift("a", 0, 200),
		shift("b", 230, 430),
		shift("c", 60, 260),
		shift("d", 290, 490),
	)
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) add(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) contains(sub string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func (r *recordingLogger) Debugf(format string, args ...any)   { r.add("debug", format, args...) }
func (r *recordingLogger) Debugw(msg string, f map[string]any) { r.add("debug", "%s %v", msg, f) }
func (r *recordingLogger) Infof(format string, args ...any)    { r.add("info", format, args...) }
func (r *recordingLogger) Warnf(format string, args ...any)    { r.add("warn", format, args...) }
func (r *recordingLogger) Errorf(format string, args ...any)   { r.add("error", format, args...) }
