package cp

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Parameters tunes the search.
type Parameters struct {
	// NumWorkers is the size of the search portfolio.
	NumWorkers int
	// LogSearchProgress logs incumbents and a final summary.
	LogSearchProgress bool
	// MaxTime stops the search after the given duration. Zero means no limit.
	MaxTime time.Duration
	// RandomSeed seeds the randomized workers.
	RandomSeed int64
	// Extra keeps keys the solver does not interpret.
	Extra map[string]string
}

// DefaultParameters returns a single worker without time limit.
func DefaultParameters() Parameters {
	return Parameters{NumWorkers: 1}
}

// ParseParameters parses free-form "key:value" pairs separated by commas or
// whitespace, e.g. "num_search_workers:8, log_search_progress:true".
func ParseParameters(s string) (Parameters, error) {
	p := DefaultParameters()
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		// Accept "key: value" written with a space after the colon.
		if strings.HasSuffix(f, ":") && i+1 < len(fields) {
			f += fields[i+1]
			i++
		}
		key, value, ok := strings.Cut(f, ":")
		if !ok || key == "" || value == "" {
			return p, fmt.Errorf("invalid solver parameter %q: expected key:value", f)
		}
		if err := p.set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (p *Parameters) set(key, value string) error {
	switch key {
	case "num_search_workers", "num_workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		if n == 0 {
			n = runtime.NumCPU()
		}
		p.NumWorkers = n
	case "log_search_progress":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		p.LogSearchProgress = b
	case "max_time_in_seconds":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		p.MaxTime = time.Duration(f * float64(time.Second))
	case "random_seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		p.RandomSeed = n
	default:
		if p.Extra == nil {
			p.Extra = map[string]string{}
		}
		p.Extra[key] = value
	}
	return nil
}

// String renders the parameters back in key:value form.
func (p Parameters) String() string {
	parts := []string{
		fmt.Sprintf("num_search_workers:%d", p.NumWorkers),
		fmt.Sprintf("log_search_progress:%t", p.LogSearchProgress),
	}
	if p.MaxTime > 0 {
		parts = append(parts, fmt.Sprintf("max_time_in_seconds:%g", p.MaxTime.Seconds()))
	}
	if p.RandomSeed != 0 {
		parts = append(parts, fmt.Sprintf("random_seed:%d", p.RandomSeed))
	}
	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+":"+p.Extra[k])
	}
	return strings.Join(parts, ",")
}
