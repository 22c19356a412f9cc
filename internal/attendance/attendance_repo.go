package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	FindByID(ctx context.Context, id string) (*Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Attendance, error)
	Update(ctx context.Context, a *Attendance) error
	TransitionApproval(ctx context.Context, id, from, to, approverID string) (int64, error)
	MonthlySummary(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	sqlDB, _ := db.DB()
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("work_date = ?", date.Format("2006-01-02")).
		First(&a).Error
	return &a, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("work_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// TransitionApproval flips approval_status only when the row still has
// the expected status. Zero rows affected means a concurrent actor won.
func (r *repository) TransitionApproval(ctx context.Context, id, from, to, approverID string) (int64, error) {
	query := `
UPDATE attendances
SET approval_status = $3, approved_by = $4, updated_at = NOW()
WHERE id = $1 AND approval_status = $2 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, id, from, to, approverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) MonthlySummary(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error) {
	var row struct {
		DaysPresent   int
		OvertimeHours float64
	}

	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Select("COUNT(*) AS days_present, COALESCE(SUM(overtime_hours), 0) AS overtime_hours").
		Where("employee_id = ?", employeeID).
		Where("approval_status = ?", StatusApproved).
		Where("EXTRACT(MONTH FROM work_date) = ?", month).
		Where("EXTRACT(YEAR FROM work_date) = ?", year).
		Scan(&row).Error
	if err != nil {
		return MonthlySummary{}, err
	}

	return MonthlySummary{
		DaysPresent:   row.DaysPresent,
		OvertimeHours: row.OvertimeHours,
	}, nil
}
