package events

import "time"

// LeaveLifecycleTopic carries terminal leave decisions for downstream
// consumers (payroll pre-checks, notification fan-out).
const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

type LeaveApprovedEvent struct {
	EventType   string    `json:"event_type"`
	LeaveID     string    `json:"leave_id"`
	EmployeeID  string    `json:"employee_id"`
	LeaveTypeID string    `json:"leave_type_id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	TotalDays   int       `json:"total_days"`
	ApprovedBy  string    `json:"approved_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
