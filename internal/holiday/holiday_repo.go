package holiday

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, h *Holiday) error
	ListByYear(ctx context.Context, year int) ([]Holiday, error)
	CountWeekdayHolidays(ctx context.Context, month, year int) (int, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *repository) ListByYear(ctx context.Context, year int) ([]Holiday, error) {
	var rows []Holiday
	err := r.db.WithContext(ctx).
		Where("EXTRACT(YEAR FROM holiday_date) = ?", year).
		Order("holiday_date ASC").
		Find(&rows).Error
	return rows, err
}

// CountWeekdayHolidays counts only Monday through Friday holidays;
// weekend holidays never reduce the standard working days.
func (r *repository) CountWeekdayHolidays(ctx context.Context, month, year int) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Holiday{}).
		Where("EXTRACT(MONTH FROM holiday_date) = ?", month).
		Where("EXTRACT(YEAR FROM holiday_date) = ?", year).
		Where("EXTRACT(DOW FROM holiday_date) NOT IN (0, 6)").
		Count(&count).Error
	return int(count), err
}

func (r *repository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&Holiday{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
