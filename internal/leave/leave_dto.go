package leave

type CreateLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveTypeID     string  `json:"leave_type_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	CreatedBy       string  `json:"created_by"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

type CreateLeaveTypeRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=60"`
	PaidLeave      *bool  `json:"paid_leave" binding:"required"`
	MaxDaysPerYear int    `json:"max_days_per_year" binding:"required,min=1,max=366"`
}

type LeaveTypeResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PaidLeave      bool   `json:"paid_leave"`
	MaxDaysPerYear int    `json:"max_days_per_year"`
}

type BalanceResponse struct {
	EmployeeID    string `json:"employee_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	Year          int    `json:"year"`
	TotalDays     int    `json:"total_days"`
	UsedDays      int    `json:"used_days"`
	PendingDays   int    `json:"pending_days"`
	RemainingDays int    `json:"remaining_days"`
	CarriedOver   int    `json:"carried_over"`
}
