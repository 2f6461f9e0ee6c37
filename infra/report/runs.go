package report

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	corestore "github.com/kilianp07/crewsched/core/store"
)

// Runs prints stored runs as a table, oldest first.
func (r *Reporter) Runs(recs []corestore.RunRecord) {
	if len(recs) == 0 {
		r.printf("%s\n", r.st.muted.Render("no stored runs"))
		return
	}
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		status := rec.Phase1Status
		if rec.Phase2Status != "" {
			status += "/" + rec.Phase2Status
		}
		rows[i] = []string{
			rec.ID,
			rec.Timestamp.Format(time.DateTime),
			rec.Catalog,
			strconv.Itoa(rec.Shifts),
			strconv.Itoa(rec.Drivers),
			strconv.Itoa(rec.TotalWorking),
			strconv.Itoa(rec.TotalDelay),
			status,
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TIME", "CATALOG", "SHIFTS", "DRIVERS", "WORKING", "DELAY", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.st.title
			}
			if col == 7 && row >= 0 && row < len(recs) && !recs[row].Solved() {
				return r.st.failed
			}
			return lipgloss.NewStyle()
		})
	r.printf("%s\n", t.Render())
}
