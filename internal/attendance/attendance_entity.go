package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Attendance struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index:idx_attendances_employee_date,unique"`
	WorkDate   time.Time `gorm:"column:work_date;type:date;not null;index:idx_attendances_employee_date,unique"`

	CheckInAt  time.Time  `gorm:"column:check_in_at;type:timestamptz;not null"`
	CheckOutAt *time.Time `gorm:"column:check_out_at;type:timestamptz"`

	LateMinutes   int     `gorm:"column:late_minutes;type:int;not null;default:0"`
	EarlyMinutes  int     `gorm:"column:early_minutes;type:int;not null;default:0"`
	WorkingHours  float64 `gorm:"column:working_hours;type:numeric(5,2);not null;default:0"`
	OvertimeHours float64 `gorm:"column:overtime_hours;type:numeric(5,2);not null;default:0"`

	ApprovalStatus string     `gorm:"column:approval_status;type:varchar(20);not null;default:'PENDING';index"`
	ApprovedBy     *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	Notes          *string    `gorm:"column:notes;type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// MonthlySummary is what payroll consumes: only APPROVED rows count,
// so unapproved days are paid as absent by policy.
type MonthlySummary struct {
	DaysPresent   int
	OvertimeHours float64
}
