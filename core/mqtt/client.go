// Package mqtt defines how solved rosters leave the process over a message
// broker.
package mqtt

import "github.com/kilianp07/crewsched/core/model"

// Publisher sends solved rosters to drivers and downstream systems.
type Publisher interface {
	// PublishRoster sends the roster of one driver.
	PublishRoster(runID, catalog string, r model.Roster) error

	// PublishSummary sends the schedule totals once every roster is out.
	PublishSummary(runID string, s model.Schedule) error

	Close()
}

// PublishSchedule sends every roster then the summary. It stops at the first
// roster that cannot be delivered.
func PublishSchedule(p Publisher, runID string, s model.Schedule) error {
	for _, r := range s.Rosters {
		if err := p.PublishRoster(runID, s.Catalog, r); err != nil {
			return err
		}
	}
	return p.PublishSummary(runID, s)
}
