package payroll

import (
	"time"

	"github.com/google/uuid"
)

// Salary is one employee's computed payslip for one month. All money
// amounts are whole VND; rounding happens once, when the computation
// writes these fields.
type Salary struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_salaries_employee_period" json:"employee_id"`
	Month      int       `gorm:"not null;uniqueIndex:idx_salaries_employee_period" json:"month"`
	Year       int       `gorm:"not null;uniqueIndex:idx_salaries_employee_period" json:"year"`

	// ContractSalary is the monthly base from the ACTIVE contract;
	// GrossSalary is the computed taxable gross (basic + overtime +
	// allowances) the withholdings run against.
	ContractSalary int64   `gorm:"not null" json:"contract_salary"`
	GrossSalary    int64   `gorm:"not null" json:"gross_salary"`
	AllowanceTotal int64   `gorm:"not null;default:0" json:"allowance_total"`
	StandardDays   int     `gorm:"not null" json:"standard_days"`
	DaysPresent    int     `gorm:"not null" json:"days_present"`
	OvertimeHours  float64 `gorm:"not null;default:0" json:"overtime_hours"`

	BasicPay    int64 `gorm:"not null" json:"basic_pay"`
	OvertimePay int64 `gorm:"not null;default:0" json:"overtime_pay"`

	SocialInsurance       int64 `gorm:"not null;default:0" json:"social_insurance"`
	HealthInsurance       int64 `gorm:"not null;default:0" json:"health_insurance"`
	UnemploymentInsurance int64 `gorm:"not null;default:0" json:"unemployment_insurance"`
	PersonalIncomeTax     int64 `gorm:"not null;default:0" json:"personal_income_tax"`

	NetSalary int64  `gorm:"not null" json:"net_salary"`
	Status    string `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Salary) TableName() string {
	return "salaries"
}
