package contract

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft      = "DRAFT"
	StatusActive     = "ACTIVE"
	StatusSuperseded = "SUPERSEDED"
)

// Contract pins an employee's contractual gross. At most one row per
// employee is ACTIVE; activation demotes the previous one in the same
// transaction.
type Contract struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"employee_id"`
	GrossSalary int64      `gorm:"not null" json:"gross_salary"`
	StartDate   time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	Status      string     `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}
