package payroll

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id string) (*Salary, error)
	FindByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (*Salary, error)
	FindByPeriod(ctx context.Context, month, year int) ([]Salary, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Salary, error)
	Insert(ctx context.Context, s *Salary) error
	UpdateDraft(ctx context.Context, s *Salary) (int64, error)
	TransitionStatus(ctx context.Context, id, from, to string) (int64, error)
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

func (r *repository) FindByID(ctx context.Context, id string) (*Salary, error) {
	var s Salary
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (*Salary, error) {
	var s Salary
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("month = ?", month).
		Where("year = ?", year).
		First(&s).Error
	return &s, err
}

func (r *repository) FindByPeriod(ctx context.Context, month, year int) ([]Salary, error) {
	var rows []Salary
	err := r.db.WithContext(ctx).
		Where("month = ?", month).
		Where("year = ?", year).
		Order("employee_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Salary, error) {
	var rows []Salary
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("year DESC, month DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Insert(ctx context.Context, s *Salary) error {
	query := `
        INSERT INTO salaries (
            id, employee_id, month, year,
            contract_salary, gross_salary, allowance_total, standard_days, days_present, overtime_hours,
            basic_pay, overtime_pay,
            social_insurance, health_insurance, unemployment_insurance, personal_income_tax,
            net_salary, status, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7, $8, $9, $10,
            $11, $12,
            $13, $14, $15, $16,
            $17, $18, NOW(), NOW()
        )
    `

	_, err := r.execer().ExecContext(
		ctx, query,
		s.ID, s.EmployeeID, s.Month, s.Year,
		s.ContractSalary, s.GrossSalary, s.AllowanceTotal, s.StandardDays, s.DaysPresent, s.OvertimeHours,
		s.BasicPay, s.OvertimePay,
		s.SocialInsurance, s.HealthInsurance, s.UnemploymentInsurance, s.PersonalIncomeTax,
		s.NetSalary, s.Status,
	)
	return err
}

// UpdateDraft recomputes an existing row in place, but only while it
// is still DRAFT. Approved or paid rows are immutable to reruns; zero
// affected rows tells the caller the row moved on.
func (r *repository) UpdateDraft(ctx context.Context, s *Salary) (int64, error) {
	query := `
        UPDATE salaries
        SET
            contract_salary = $2,
            gross_salary = $3,
            allowance_total = $4,
            standard_days = $5,
            days_present = $6,
            overtime_hours = $7,
            basic_pay = $8,
            overtime_pay = $9,
            social_insurance = $10,
            health_insurance = $11,
            unemployment_insurance = $12,
            personal_income_tax = $13,
            net_salary = $14,
            updated_at = NOW()
        WHERE id = $1 AND status = 'DRAFT'
    `

	res, err := r.execer().ExecContext(
		ctx, query,
		s.ID,
		s.ContractSalary, s.GrossSalary, s.AllowanceTotal, s.StandardDays, s.DaysPresent, s.OvertimeHours,
		s.BasicPay, s.OvertimePay,
		s.SocialInsurance, s.HealthInsurance, s.UnemploymentInsurance, s.PersonalIncomeTax,
		s.NetSalary,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) TransitionStatus(ctx context.Context, id, from, to string) (int64, error) {
	query := `
        UPDATE salaries
        SET status = $3, updated_at = NOW()
        WHERE id = $1 AND status = $2
    `

	res, err := r.execer().ExecContext(ctx, query, id, from, to)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
