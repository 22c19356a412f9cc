package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaveType is static reference data seeded by HR.
type LeaveType struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"type:varchar(60);not null;uniqueIndex"`
	PaidLeave      bool      `gorm:"not null;default:true"`
	MaxDaysPerYear int       `gorm:"type:int;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// LeaveBalance is the per-employee, per-type, per-year ledger row.
//
// Invariants, held after every ledger operation:
//
//	remaining_days == total_days + carried_over - used_days
//	remaining_days - pending_days >= 0
//
// pending_days tracks reservations taken at request creation and
// released on reject/cancel, so several pending requests cannot
// jointly overdraw the balance.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_balances_key,unique"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_balances_key,unique"`
	Year        int       `gorm:"type:int;not null;index:idx_leave_balances_key,unique"`

	TotalDays     int `gorm:"type:int;not null;default:0"`
	UsedDays      int `gorm:"type:int;not null;default:0"`
	PendingDays   int `gorm:"type:int;not null;default:0"`
	RemainingDays int `gorm:"type:int;not null;default:0"`
	CarriedOver   int `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1"`
	Reason    string    `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason *string    `gorm:"type:text"`

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ApprovedAt *time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
