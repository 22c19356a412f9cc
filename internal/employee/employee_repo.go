package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindAll(ctx context.Context) ([]Employee, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	Update(ctx context.Context, e *Employee) error
	FindManagerID(ctx context.Context, id string) (*string, error)
	FindActiveWithContract(ctx context.Context) ([]ActivePayee, error)
	Terminate(ctx context.Context, id string) (int64, error)
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

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).First(&e, "email = ?", email).Error
	return &e, err
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).Order("full_name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Select("id", "full_name").
		Where("employment_status = ?", StatusActive).
		Order("full_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// FindManagerID returns nil for an employee with no manager; the
// not-found case surfaces as gorm.ErrRecordNotFound.
func (r *repository) FindManagerID(ctx context.Context, id string) (*string, error) {
	var e Employee
	if err := r.db.WithContext(ctx).Select("id", "manager_id").First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if e.ManagerID == nil {
		return nil, nil
	}
	v := e.ManagerID.String()
	return &v, nil
}

// FindActiveWithContract lists every active employee with the single
// ACTIVE contract joined in. Employees without one still appear, with
// HasContract false, so payroll can report them instead of silently
// dropping them from the run.
func (r *repository) FindActiveWithContract(ctx context.Context) ([]ActivePayee, error) {
	var rows []ActivePayee
	err := r.db.WithContext(ctx).
		Table("employees").
		Select(
			"employees.id AS employee_id",
			"COALESCE(contracts.gross_salary, 0) AS gross_salary",
			"employees.dependents",
			"contracts.id IS NOT NULL AS has_contract",
		).
		Joins("LEFT JOIN contracts ON contracts.employee_id = employees.id AND contracts.status = ?", "ACTIVE").
		Where("employees.employment_status = ?", StatusActive).
		Where("employees.deleted_at IS NULL").
		Order("employees.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Terminate(ctx context.Context, id string) (int64, error) {
	query := `
        UPDATE employees
        SET employment_status = $2, updated_at = NOW()
        WHERE id = $1 AND employment_status <> $2 AND deleted_at IS NULL
    `

	res, err := r.execer().ExecContext(ctx, query, id, StatusTerminated)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
