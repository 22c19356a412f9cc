package allowance

import (
	"time"

	"github.com/google/uuid"
)

// Grant is a recurring monthly allowance attached to an employee for a
// date span. An open EndDate means the grant runs until revoked.
type Grant struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"employee_id"`
	Name       string     `gorm:"type:varchar(100);not null" json:"name"`
	Amount     int64      `gorm:"not null" json:"amount"`
	StartDate  time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate    *time.Time `gorm:"type:date" json:"end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Grant) TableName() string {
	return "allowance_grants"
}
