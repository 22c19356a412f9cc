package leave

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateRequest(ctx context.Context, l *LeaveRequest) error
	FindRequestByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllRequests(ctx context.Context) ([]LeaveRequest, error)
	FindRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	TransitionStatus(ctx context.Context, id, from, to string, approvedBy, rejectionReason *string) (int64, error)

	CreateType(ctx context.Context, t *LeaveType) error
	FindType(ctx context.Context, id string) (*LeaveType, error)
	FindAllTypes(ctx context.Context) ([]LeaveType, error)
	EnsureBalance(ctx context.Context, employeeID, leaveTypeID string, year, totalDays int) error
	FindBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	FindBalancesByEmployee(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	ReserveBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error)
	CommitBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error)
	ReleaseBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error)

	IsManagerOf(ctx context.Context, managerID, employeeID string) (bool, error)
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

// CreateRequest goes through the execer so the insert lands in the
// same transaction as the balance reservation.
func (r *repository) CreateRequest(ctx context.Context, l *LeaveRequest) error {
	query := `
INSERT INTO leave_requests (
	id, employee_id, leave_type_id, start_date, end_date,
	total_days, reason, status, created_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
`
	_, err := r.execer().ExecContext(ctx, query,
		l.ID, l.EmployeeID, l.LeaveTypeID, l.StartDate, l.EndDate,
		l.TotalDays, l.Reason, l.Status, l.CreatedBy,
	)
	return err
}

func (r *repository) FindRequestByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindAllRequests(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

// DeleteRequest removes the row unconditionally. Administrative
// override: it never reverses balance mutations already applied.
func (r *repository) DeleteRequest(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Delete(&LeaveRequest{}, "id = ?", id).Error
}

// TransitionStatus is a compare-and-set on status. Zero rows affected
// means the request left PENDING under a concurrent actor.
func (r *repository) TransitionStatus(ctx context.Context, id, from, to string, approvedBy, rejectionReason *string) (int64, error) {
	query := `
UPDATE leave_requests
SET
	status = $3,
	approved_by = $4,
	approved_at = CASE WHEN $4 IS NOT NULL THEN NOW() ELSE NULL END,
	rejection_reason = $5,
	updated_at = NOW()
WHERE id = $1 AND status = $2 AND deleted_at IS NULL
`
	res, err := r.execer().ExecContext(ctx, query, id, from, to, approvedBy, rejectionReason)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) CreateType(ctx context.Context, t *LeaveType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindType(ctx context.Context, id string) (*LeaveType, error) {
	var t LeaveType
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) FindAllTypes(ctx context.Context) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}

// EnsureBalance creates the ledger row for (employee, type, year) on
// first use, seeding the entitlement from the leave type.
func (r *repository) EnsureBalance(ctx context.Context, employeeID, leaveTypeID string, year, totalDays int) error {
	query := `
INSERT INTO leave_balances (
	id, employee_id, leave_type_id, year,
	total_days, used_days, pending_days, remaining_days, carried_over,
	created_at, updated_at
) VALUES (
	gen_random_uuid(), $1, $2, $3, $4, 0, 0, $4, 0, NOW(), NOW()
)
ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING
`
	_, err := r.execer().ExecContext(ctx, query, employeeID, leaveTypeID, year, totalDays)
	return err
}

func (r *repository) FindBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("leave_type_id = ?", leaveTypeID).
		Where("year = ?", year).
		First(&b).Error
	return &b, err
}

func (r *repository) FindBalancesByEmployee(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("year = ?", year).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "leave_type_id"}}).
		Find(&balances).Error
	return balances, err
}

// ReserveBalance soft-decrements availability at request creation. The
// guard both serializes concurrent reservations against the same row
// and rejects overdrawing in one statement.
func (r *repository) ReserveBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error) {
	query := `
UPDATE leave_balances
SET pending_days = pending_days + $4, updated_at = NOW()
WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
	AND remaining_days - pending_days >= $4
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// CommitBalance converts a reservation into consumption on approval.
func (r *repository) CommitBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error) {
	query := `
UPDATE leave_balances
SET
	used_days = used_days + $4,
	remaining_days = remaining_days - $4,
	pending_days = pending_days - $4,
	updated_at = NOW()
WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
	AND pending_days >= $4 AND remaining_days >= $4
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// ReleaseBalance undoes a reservation on reject/cancel.
func (r *repository) ReleaseBalance(ctx context.Context, employeeID, leaveTypeID string, year, days int) (bool, error) {
	query := `
UPDATE leave_balances
SET pending_days = pending_days - $4, updated_at = NOW()
WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
	AND pending_days >= $4
`
	res, err := r.execer().ExecContext(ctx, query, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *repository) IsManagerOf(ctx context.Context, managerID, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("manager_id = ?", managerID).
		Count(&count).Error
	return count > 0, err
}
