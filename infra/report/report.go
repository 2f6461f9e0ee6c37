// Package report renders catalogs and solve results on a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kilianp07/crewsched/core/model"
	"github.com/kilianp07/crewsched/core/scheduling"
)

// BreakMarker separates shifts around a qualifying break.
const BreakMarker = "** break **"

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	brk    lipgloss.Style
	warn   lipgloss.Style
	failed lipgloss.Style
	muted  lipgloss.Style
}

// Reporter writes human readable reports. Colors are only emitted when the
// writer is a terminal.
type Reporter struct {
	w  io.Writer
	st styles
}

// New returns a Reporter writing to w.
func New(w io.Writer) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		w: w,
		st: styles{
			title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
			label:  r.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
			value:  r.NewStyle().Bold(true),
			brk:    r.NewStyle().Foreground(lipgloss.Color("#F7B801")),
			warn:   r.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true),
			failed: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
			muted:  r.NewStyle().Foreground(lipgloss.Color("#999999")),
		},
	}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Reporter) field(indent, name string, v any) {
	r.printf("%s%s %s\n", indent, r.st.label.Render(name+" ="), r.st.value.Render(fmt.Sprint(v)))
}

// Catalog prints the catalog header: sizes, bounds and shift warnings.
func (r *Reporter) Catalog(cat model.Catalog, bounds scheduling.DriverBounds, pool int, warnings []scheduling.ShiftWarning) {
	r.printf("%s\n", r.st.title.Render("Bus driver scheduling: "+cat.Name))
	r.field("  ", "num shifts", cat.Len())
	r.field("  ", "total driving time", fmt.Sprintf("%d minutes", cat.TotalDriving()))
	r.field("  ", "min num drivers", bounds.Driving)
	if bounds.PathCover > 0 {
		r.field("  ", "path cover bound", bounds.PathCover)
	}
	if pool > 0 {
		r.field("  ", "num drivers", pool)
	}
	r.field("  ", "min start time", model.FormatMinute(cat.MinStart()))
	r.field("  ", "max end time", model.FormatMinute(cat.MaxEnd()))
	for _, w := range warnings {
		r.printf("  %s %s\n", r.st.warn.Render("warning:"), w)
	}
}

// Result prints both phases of a run. err is the error returned by the
// orchestrator alongside res.
func (r *Reporter) Result(res *scheduling.Result, err error) {
	if res == nil {
		r.printf("%s %v\n", r.st.failed.Render("error:"), err)
		return
	}
	r.printf("%s\n", r.st.title.Render("----------- first phase pass: minimize the number of drivers"))
	if !res.Phase1.Status.Solved() {
		r.printf("%s (%s)\n", r.st.failed.Render("no solution found, skipping the final phase"), res.Phase1.Status)
		return
	}
	r.field("", "minimal number of drivers", res.Drivers)
	r.printf("%s\n", r.st.muted.Render(phaseLine(res.Phase1)))

	r.printf("%s\n", r.st.title.Render("----------- second pass: minimize the sum of working times"))
	if res.Phase2 == nil || !res.Phase2.Status.Solved() {
		r.printf("%s %v\n", r.st.failed.Render("phase 2 failed:"), err)
		return
	}
	for _, ro := range res.Schedule.Rosters {
		r.Roster(ro)
	}
	r.printf("%s\n", r.st.muted.Render(phaseLine(*res.Phase2)))
	r.Summary(Summarize(res.Schedule), res.DelayBound)
}

// Roster prints one driver, with a break marker before every shift that
// follows a qualifying break.
func (r *Reporter) Roster(ro model.Roster) {
	r.printf("%s\n", r.st.value.Render(fmt.Sprintf("Driver %d:", ro.Driver+1)))
	r.field("  ", "total driving time", ro.DrivingTime)
	r.field("  ", "working time", ro.WorkingTime)
	r.field("  ", "day", model.FormatMinute(ro.StartTime)+" - "+model.FormatMinute(ro.EndTime))
	for i, a := range ro.Assignments {
		if a.AfterBreak && i > 0 {
			r.printf("    %s\n", r.st.brk.Render(BreakMarker))
		}
		s := a.Shift.WithDisplay()
		r.printf("    shift %s: %s - %s\n", s.Label, s.DisplayStart, s.DisplayEnd)
	}
}

// Summary prints the schedule statistics.
func (r *Reporter) Summary(s Summary, delayBound int) {
	r.printf("%s\n", r.st.title.Render("Summary"))
	r.field("  ", "drivers", s.Drivers)
	r.field("  ", "total working time", s.TotalWorking)
	delay := fmt.Sprint(s.TotalDelay)
	if delayBound > 0 {
		delay += fmt.Sprintf(" (lower bound %d)", delayBound)
	}
	r.field("  ", "total delay", delay)
	r.field("  ", "working time", fmt.Sprintf("mean %.1f, stddev %.1f, min %.0f, max %.0f",
		s.MeanWorking, s.StdDevWorking, s.MinWorking, s.MaxWorking))
	r.field("  ", "utilization", fmt.Sprintf("%.1f%%", 100*s.Utilization))
	r.field("  ", "breaks", s.Breaks)
}

func phaseLine(p scheduling.PhaseReport) string {
	parts := []string{
		fmt.Sprintf("phase %d", p.Phase),
		p.Status.String(),
		fmt.Sprintf("objective %d", p.Objective),
		fmt.Sprintf("bound %d", p.Bound),
		fmt.Sprintf("%d vars", p.Stats.Variables),
		fmt.Sprintf("%d constraints", p.Stats.Constraints),
		fmt.Sprintf("%d branches", p.Branches),
		p.WallTime.Round(1e6).String(),
	}
	return "  " + strings.Join(parts, ", ")
}
