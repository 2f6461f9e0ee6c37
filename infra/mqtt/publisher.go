package mqtt

import (
	"time"

	"github.com/kilianp07/crewsched/core/model"
	coremqtt "github.com/kilianp07/crewsched/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

type shiftMessage struct {
	Label      string `json:"label"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Driving    int    `json:"driving"`
	AfterBreak bool   `json:"after_break"`
	Delay      int    `json:"delay"`
}

type rosterMessage struct {
	RunID       string         `json:"run_id"`
	Catalog     string         `json:"catalog"`
	Driver      int            `json:"driver"`
	Start       string         `json:"start"`
	End         string         `json:"end"`
	DrivingTime int            `json:"driving_time"`
	WorkingTime int            `json:"working_time"`
	Shifts      []shiftMessage `json:"shifts"`
	PublishedAt int64          `json:"published_at"`
}

type summaryMessage struct {
	RunID        string `json:"run_id"`
	Catalog      string `json:"catalog"`
	Drivers      int    `json:"drivers"`
	TotalDelay   int    `json:"total_delay"`
	TotalDriving int    `json:"total_driving"`
	TotalWorking int    `json:"total_working"`
	PublishedAt  int64  `json:"published_at"`
}

func newRosterMessage(runID, catalog string, r model.Roster, now time.Time) rosterMessage {
	msg := rosterMessage{
		RunID:       runID,
		Catalog:     catalog,
		Driver:      r.Driver,
		Start:       model.FormatMinute(r.StartTime),
		End:         model.FormatMinute(r.EndTime),
		DrivingTime: r.DrivingTime,
		WorkingTime: r.WorkingTime,
		Shifts:      make([]shiftMessage, len(r.Assignments)),
		PublishedAt: now.UnixMilli(),
	}
	for i, a := range r.Assignments {
		s := a.Shift.WithDisplay()
		msg.Shifts[i] = shiftMessage{
			Label:      s.Label,
			Start:      s.DisplayStart,
			End:        s.DisplayEnd,
			Driving:    s.DrivingMinutes,
			AfterBreak: a.AfterBreak,
			Delay:      a.Delay,
		}
	}
	return msg
}
