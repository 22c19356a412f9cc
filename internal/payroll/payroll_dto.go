package payroll

type RunPayrollRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2000,max=2100"`
}

type SkippedEmployee struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// RunResult reports what one run did. Skipped employees are not an
// error for the run as a whole; each carries its own reason.
type RunResult struct {
	RunID   string            `json:"run_id"`
	Month   int               `json:"month"`
	Year    int               `json:"year"`
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Skipped []SkippedEmployee `json:"skipped"`
}

type SalaryResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`

	ContractSalary int64   `json:"contract_salary"`
	GrossSalary    int64   `json:"gross_salary"`
	AllowanceTotal int64   `json:"allowance_total"`
	StandardDays   int     `json:"standard_days"`
	DaysPresent    int     `json:"days_present"`
	OvertimeHours  float64 `json:"overtime_hours"`

	BasicPay    int64 `json:"basic_pay"`
	OvertimePay int64 `json:"overtime_pay"`

	SocialInsurance       int64 `json:"social_insurance"`
	HealthInsurance       int64 `json:"health_insurance"`
	UnemploymentInsurance int64 `json:"unemployment_insurance"`
	PersonalIncomeTax     int64 `json:"personal_income_tax"`

	NetSalary int64  `json:"net_salary"`
	Status    string `json:"status"`
}

type PeriodQuery struct {
	Month int `form:"month" binding:"required,min=1,max=12"`
	Year  int `form:"year" binding:"required,min=2000,max=2100"`
}
