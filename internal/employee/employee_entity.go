package employee

import (
	"time"

	"github.com/google/uuid"

	"gorm.io/gorm"
)

const (
	StatusActive     = "ACTIVE"
	StatusInactive   = "INACTIVE"
	StatusTerminated = "TERMINATED"
)

type Employee struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName         string     `gorm:"type:varchar(150);not null" json:"full_name"`
	Email            string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	Phone            string     `gorm:"type:varchar(30)" json:"phone"`
	ManagerID        *uuid.UUID `gorm:"type:uuid;index" json:"manager_id"`
	Dependents       int        `gorm:"not null;default:0" json:"dependents"`
	EmploymentStatus string     `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"employment_status"`
	HireDate         time.Time  `gorm:"type:date;not null" json:"hire_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}

// ActivePayee is the slice of an employee payroll consumes: identity,
// the active contract's gross, and the dependent count for the PIT
// deduction.
type ActivePayee struct {
	EmployeeID  uuid.UUID
	GrossSalary int64
	Dependents  int
	HasContract bool
}
