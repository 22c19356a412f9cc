package allowance

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, g *Grant) error
	FindByEmployee(ctx context.Context, employeeID string) ([]Grant, error)
	SumActiveForMonth(ctx context.Context, employeeID string, month, year int) (int64, error)
	Revoke(ctx context.Context, id string, endDate time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *Grant) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Grant, error) {
	var rows []Grant
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

// SumActiveForMonth totals grants active on the first day of the
// month. A grant starting mid-month first pays the following month.
func (r *repository) SumActiveForMonth(ctx context.Context, employeeID string, month, year int) (int64, error) {
	monthStart := fmt.Sprintf("%04d-%02d-01", year, month)

	var total int64
	err := r.db.WithContext(ctx).
		Model(&Grant{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("employee_id = ?", employeeID).
		Where("start_date <= ?::date", monthStart).
		Where("end_date IS NULL OR end_date >= ?::date", monthStart).
		Scan(&total).Error
	return total, err
}

func (r *repository) Revoke(ctx context.Context, id string, endDate time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Grant{}).
		Where("id = ?", id).
		Where("end_date IS NULL").
		Update("end_date", endDate.Format("2006-01-02"))
	return res.RowsAffected, res.Error
}
