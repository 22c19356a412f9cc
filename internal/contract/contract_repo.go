package contract

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *Contract) error
	FindByID(ctx context.Context, id string) (*Contract, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Contract, error)
	FindActiveByEmployee(ctx context.Context, employeeID string) (*Contract, error)
	DemoteActiveByEmployee(ctx context.Context, employeeID string) (int64, error)
	Activate(ctx context.Context, id string) (int64, error)
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

func (r *repository) Create(ctx context.Context, c *Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Contract, error) {
	var c Contract
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Contract, error) {
	var rows []Contract
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindActiveByEmployee(ctx context.Context, employeeID string) (*Contract, error) {
	var c Contract
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusActive).
		First(&c).Error
	return &c, err
}

func (r *repository) DemoteActiveByEmployee(ctx context.Context, employeeID string) (int64, error) {
	query := `
        UPDATE contracts
        SET status = $2, updated_at = NOW()
        WHERE employee_id = $1 AND status = $3
    `

	res, err := r.execer().ExecContext(ctx, query, employeeID, StatusSuperseded, StatusActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) Activate(ctx context.Context, id string) (int64, error) {
	query := `
        UPDATE contracts
        SET status = $2, updated_at = NOW()
        WHERE id = $1 AND status = $3
    `

	res, err := r.execer().ExecContext(ctx, query, id, StatusActive, StatusDraft)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
