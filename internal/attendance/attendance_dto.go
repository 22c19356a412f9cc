package attendance

type CheckInRequest struct {
	Notes *string `json:"notes"`
}

type CheckOutRequest struct {
	Notes *string `json:"notes"`
}

type RejectAttendanceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type SummaryQuery struct {
	EmployeeID string `form:"employee_id" binding:"required,uuid"`
	Month      int    `form:"month" binding:"required,min=1,max=12"`
	Year       int    `form:"year" binding:"required,min=2000"`
}

type AttendanceResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	WorkDate       string  `json:"work_date"`
	CheckInAt      string  `json:"check_in_at"`
	CheckOutAt     *string `json:"check_out_at,omitempty"`
	LateMinutes    int     `json:"late_minutes"`
	EarlyMinutes   int     `json:"early_minutes"`
	WorkingHours   float64 `json:"working_hours"`
	OvertimeHours  float64 `json:"overtime_hours"`
	ApprovalStatus string  `json:"approval_status"`
	ApprovedBy     *string `json:"approved_by,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type MonthlySummaryResponse struct {
	EmployeeID    string  `json:"employee_id"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	DaysPresent   int     `json:"days_present"`
	OvertimeHours float64 `json:"overtime_hours"`
}
