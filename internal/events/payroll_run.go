package events

import "time"

const PayrollRunTopic = "hr.payroll.run.v1"

// PayrollRunCompletedEvent summarizes one monthly run. Per-employee
// amounts stay in the database; the event only announces the run so
// consumers can pull what they need.
type PayrollRunCompletedEvent struct {
	EventType   string    `json:"event_type"`
	RunID       string    `json:"run_id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	Created     int       `json:"created"`
	Updated     int       `json:"updated"`
	Skipped     int       `json:"skipped"`
	TriggeredBy string    `json:"triggered_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
