package leave_test

import (
	"context"
	"testing"

	"go-hrms/internal/leave"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// A request insert outside the reservation's transaction could commit
// on its own and leave a PENDING request with no reserved days. The
// ordered expectations fail if the insert runs on the pool instead of
// inside the open transaction.
func TestLeaveRepository_CreateRequestJoinsTx(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	assert.NoError(t, err)

	repo := leave.NewRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO leave_requests").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	assert.NoError(t, err)

	l := &leave.LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  uuid.New(),
		LeaveTypeID: uuid.New(),
		StartDate:   mustDate("2026-04-06"),
		EndDate:     mustDate("2026-04-08"),
		TotalDays:   3,
		Status:      leave.StatusPending,
	}
	l.CreatedBy = l.EmployeeID

	assert.NoError(t, repo.WithTx(tx).CreateRequest(ctx, l))
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
