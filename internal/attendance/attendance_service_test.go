package attendance_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-hrms/internal/attendance"
	attendanceerrors "go-hrms/internal/attendance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeAttendanceRepository struct {
	withTxFn                func(tx *sql.Tx) attendance.Repository
	createFn                func(ctx context.Context, a *attendance.Attendance) error
	findByIDFn              func(ctx context.Context, id string) (*attendance.Attendance, error)
	findByEmployeeAndDateFn func(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error)
	findAllByEmployeeFn     func(ctx context.Context, employeeID string) ([]attendance.Attendance, error)
	updateFn                func(ctx context.Context, a *attendance.Attendance) error
	transitionApprovalFn    func(ctx context.Context, id, from, to, approverID string) (int64, error)
	monthlySummaryFn        func(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error)
}

func (f *fakeAttendanceRepository) WithTx(tx *sql.Tx) attendance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeAttendanceRepository) Create(ctx context.Context, a *attendance.Attendance) error {
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	return nil
}

func (f *fakeAttendanceRepository) FindByID(ctx context.Context, id string) (*attendance.Attendance, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	if f.findByEmployeeAndDateFn != nil {
		return f.findByEmployeeAndDateFn(ctx, employeeID, date)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttendanceRepository) FindAllByEmployee(ctx context.Context, employeeID string) ([]attendance.Attendance, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeAttendanceRepository) Update(ctx context.Context, a *attendance.Attendance) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, a)
	}
	return nil
}

func (f *fakeAttendanceRepository) TransitionApproval(ctx context.Context, id, from, to, approverID string) (int64, error) {
	if f.transitionApprovalFn != nil {
		return f.transitionApprovalFn(ctx, id, from, to, approverID)
	}
	return 1, nil
}

func (f *fakeAttendanceRepository) MonthlySummary(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
	if f.monthlySummaryFn != nil {
		return f.monthlySummaryFn(ctx, employeeID, month, year)
	}
	return attendance.MonthlySummary{}, nil
}

type attendanceServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service attendance.Service
	repo    *fakeAttendanceRepository
}

func setupAttendanceServiceTest(t *testing.T) *attendanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeAttendanceRepository{}
	svc := attendance.NewService(db, repo, attendance.DefaultSchedule())

	return &attendanceServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.June, 10, hour, minute, 0, 0, time.UTC)
}

func TestAttendanceService_CheckIn(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("success on time", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.createFn = func(ctx context.Context, a *attendance.Attendance) error {
			assert.Equal(t, 0, a.LateMinutes)
			assert.Equal(t, attendance.StatusPending, a.ApprovalStatus)
			return nil
		}

		resp, err := deps.service.CheckIn(ctx, employeeID, at(7, 55), attendance.CheckInRequest{})

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.LateMinutes)
		assert.Equal(t, attendance.StatusPending, resp.ApprovalStatus)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success records lateness", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.CheckIn(ctx, employeeID, at(8, 25), attendance.CheckInRequest{})

		assert.NoError(t, err)
		assert.Equal(t, 25, resp.LateMinutes)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative duplicate check-in for the day", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Attendance, error) {
			return &attendance.Attendance{ID: uuid.New()}, nil
		}

		_, err := deps.service.CheckIn(ctx, employeeID, at(8, 0), attendance.CheckInRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative malformed employee id", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.CheckIn(ctx, "not-a-uuid", at(8, 0), attendance.CheckInRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidEmployeeID)
	})
}

func TestAttendanceService_CheckOut(t *testing.T) {
	ctx := context.Background()
	employeeUUID := uuid.New()

	openRow := func(checkInAt time.Time) *attendance.Attendance {
		return &attendance.Attendance{
			ID:             uuid.New(),
			EmployeeID:     employeeUUID,
			WorkDate:       checkInAt.Truncate(24 * time.Hour),
			CheckInAt:      checkInAt,
			ApprovalStatus: attendance.StatusPending,
		}
	}

	t.Run("success full day with overtime", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Attendance, error) {
			return openRow(at(8, 0)), nil
		}

		resp, err := deps.service.CheckOut(ctx, employeeUUID.String(), at(18, 30), attendance.CheckOutRequest{})

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.EarlyMinutes)
		// 08:00 to 18:30 minus the one hour lunch break.
		assert.InDelta(t, 9.5, resp.WorkingHours, 1e-9)
		assert.InDelta(t, 1.5, resp.OvertimeHours, 1e-9)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success early departure", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Attendance, error) {
			return openRow(at(8, 0)), nil
		}

		resp, err := deps.service.CheckOut(ctx, employeeUUID.String(), at(15, 0), attendance.CheckOutRequest{})

		assert.NoError(t, err)
		assert.Equal(t, 120, resp.EarlyMinutes)
		assert.InDelta(t, 6.0, resp.WorkingHours, 1e-9)
		assert.InDelta(t, 0.0, resp.OvertimeHours, 1e-9)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative check-out without check-in", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.CheckOut(ctx, employeeUUID.String(), at(17, 0), attendance.CheckOutRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative approved row is immutable", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Attendance, error) {
			row := openRow(at(8, 0))
			row.ApprovalStatus = attendance.StatusApproved
			return row, nil
		}
		deps.repo.updateFn = func(ctx context.Context, a *attendance.Attendance) error {
			t.Fatal("approved rows must not be written")
			return nil
		}

		_, err := deps.service.CheckOut(ctx, employeeUUID.String(), at(18, 0), attendance.CheckOutRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrNotPending)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative second check-out", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		closedAt := at(17, 0)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Attendance, error) {
			row := openRow(at(8, 0))
			row.CheckOutAt = &closedAt
			return row, nil
		}

		_, err := deps.service.CheckOut(ctx, employeeUUID.String(), at(18, 0), attendance.CheckOutRequest{})

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAttendanceService_Approval(t *testing.T) {
	ctx := context.Background()
	approverID := uuid.New().String()
	attendanceID := uuid.New().String()

	t.Run("success approve pending row", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.transitionApprovalFn = func(ctx context.Context, id, from, to, aid string) (int64, error) {
			assert.Equal(t, attendanceID, id)
			assert.Equal(t, attendance.StatusPending, from)
			assert.Equal(t, attendance.StatusApproved, to)
			assert.Equal(t, approverID, aid)
			return 1, nil
		}

		err := deps.service.Approve(ctx, approverID, attendanceID)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already decided", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.transitionApprovalFn = func(ctx context.Context, id, from, to, aid string) (int64, error) {
			return 0, nil
		}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*attendance.Attendance, error) {
			return &attendance.Attendance{ApprovalStatus: attendance.StatusApproved}, nil
		}

		err := deps.service.Approve(ctx, approverID, attendanceID)

		assert.ErrorIs(t, err, attendanceerrors.ErrNotPending)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown row", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.transitionApprovalFn = func(ctx context.Context, id, from, to, aid string) (int64, error) {
			return 0, nil
		}

		err := deps.service.Reject(ctx, approverID, attendanceID)

		assert.ErrorIs(t, err, attendanceerrors.ErrAttendanceNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative malformed approver id", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Approve(ctx, "not-a-uuid", attendanceID)

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidApproverID)
	})
}
