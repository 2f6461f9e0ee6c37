// Package export writes solved schedules for downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/crewsched/core/model"
)

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, s model.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes one row per served shift.
func WriteCSV(w io.Writer, s model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"driver", "shift", "start", "end", "driving_minutes", "cumulative_driving", "since_break_driving", "after_break", "delay"}); err != nil {
		return err
	}
	for _, r := range s.Rosters {
		for _, a := range r.Assignments {
			sh := a.Shift.WithDisplay()
			rec := []string{
				strconv.Itoa(r.Driver + 1),
				sh.Label,
				sh.DisplayStart,
				sh.DisplayEnd,
				strconv.Itoa(sh.DrivingMinutes),
				strconv.Itoa(a.CumulativeDriving),
				strconv.Itoa(a.SinceBreakDriving),
				strconv.FormatBool(a.AfterBreak),
				strconv.Itoa(a.Delay),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the schedule to path, as CSV when the extension is .csv
// and JSON otherwise.
func WriteFile(path string, s model.Schedule) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = WriteCSV(f, s)
	} else {
		err = WriteJSON(f, s)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
