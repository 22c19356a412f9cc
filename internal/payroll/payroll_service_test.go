package payroll_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-hrms/internal/attendance"
	"go-hrms/internal/employee"
	"go-hrms/internal/payroll"
	payrollerrors "go-hrms/internal/payroll/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakePayrollRepository struct {
	withTxFn               func(tx *sql.Tx) payroll.Repository
	findByIDFn             func(ctx context.Context, id string) (*payroll.Salary, error)
	findByEmployeePeriodFn func(ctx context.Context, employeeID string, month, year int) (*payroll.Salary, error)
	findByPeriodFn         func(ctx context.Context, month, year int) ([]payroll.Salary, error)
	findByEmployeeFn       func(ctx context.Context, employeeID string) ([]payroll.Salary, error)
	insertFn               func(ctx context.Context, s *payroll.Salary) error
	updateDraftFn          func(ctx context.Context, s *payroll.Salary) (int64, error)
	transitionStatusFn     func(ctx context.Context, id, from, to string) (int64, error)
}

func (f *fakePayrollRepository) WithTx(tx *sql.Tx) payroll.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakePayrollRepository) FindByID(ctx context.Context, id string) (*payroll.Salary, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) FindByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (*payroll.Salary, error) {
	if f.findByEmployeePeriodFn != nil {
		return f.findByEmployeePeriodFn(ctx, employeeID, month, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepository) FindByPeriod(ctx context.Context, month, year int) ([]payroll.Salary, error) {
	if f.findByPeriodFn != nil {
		return f.findByPeriodFn(ctx, month, year)
	}
	return nil, nil
}

func (f *fakePayrollRepository) FindByEmployee(ctx context.Context, employeeID string) ([]payroll.Salary, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakePayrollRepository) Insert(ctx context.Context, s *payroll.Salary) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, s)
	}
	return nil
}

func (f *fakePayrollRepository) UpdateDraft(ctx context.Context, s *payroll.Salary) (int64, error) {
	if f.updateDraftFn != nil {
		return f.updateDraftFn(ctx, s)
	}
	return 1, nil
}

func (f *fakePayrollRepository) TransitionStatus(ctx context.Context, id, from, to string) (int64, error) {
	if f.transitionStatusFn != nil {
		return f.transitionStatusFn(ctx, id, from, to)
	}
	return 1, nil
}

type fakeEmployeeSource struct {
	fn func(ctx context.Context) ([]employee.ActivePayee, error)
}

func (f *fakeEmployeeSource) FindActiveWithContract(ctx context.Context) ([]employee.ActivePayee, error) {
	return f.fn(ctx)
}

type fakeAttendanceSource struct {
	fn func(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error)
}

func (f *fakeAttendanceSource) MonthlySummary(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
	if f.fn != nil {
		return f.fn(ctx, employeeID, month, year)
	}
	return attendance.MonthlySummary{}, nil
}

type fakeHolidaySource struct {
	count int
}

func (f *fakeHolidaySource) CountWeekdayHolidays(ctx context.Context, month, year int) (int, error) {
	return f.count, nil
}

type fakeAllowanceSource struct {
	fn func(ctx context.Context, employeeID string, month, year int) (int64, error)
}

func (f *fakeAllowanceSource) SumActiveForMonth(ctx context.Context, employeeID string, month, year int) (int64, error) {
	if f.fn != nil {
		return f.fn(ctx, employeeID, month, year)
	}
	return 0, nil
}

type payrollServiceDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	service     payroll.Service
	repo        *fakePayrollRepository
	employees   *fakeEmployeeSource
	attendances *fakeAttendanceSource
	holidays    *fakeHolidaySource
	allowances  *fakeAllowanceSource
}

func setupPayrollServiceTest(t *testing.T) *payrollServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakePayrollRepository{}
	employees := &fakeEmployeeSource{
		fn: func(ctx context.Context) ([]employee.ActivePayee, error) { return nil, nil },
	}
	attendances := &fakeAttendanceSource{}
	holidays := &fakeHolidaySource{}
	allowances := &fakeAllowanceSource{}

	svc := payroll.NewService(payroll.Config{
		DB:         db,
		Repo:       repo,
		Employees:  employees,
		Attendance: attendances,
		Holidays:   holidays,
		Allowances: allowances,
		Workers:    1,
	})

	return &payrollServiceDeps{
		db:          db,
		sqlMock:     sqlMock,
		service:     svc,
		repo:        repo,
		employees:   employees,
		attendances: attendances,
		holidays:    holidays,
		allowances:  allowances,
	}
}

// June 2026 runs Monday the 1st through Tuesday the 30th: 22 weekdays.
const (
	testMonth        = 6
	testYear         = 2026
	testStandardDays = 22
)

func activePayee(gross int64, dependents int) employee.ActivePayee {
	return employee.ActivePayee{
		EmployeeID:  uuid.New(),
		GrossSalary: gross,
		Dependents:  dependents,
		HasContract: true,
	}
}

func TestPayrollService_Run(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	runReq := payroll.RunPayrollRequest{Month: testMonth, Year: testYear}

	t.Run("success full attendance computes statutory withholdings", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		payee := activePayee(30_000_000, 0)
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}
		deps.attendances.fn = func(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
			assert.Equal(t, payee.EmployeeID.String(), employeeID)
			return attendance.MonthlySummary{DaysPresent: 22, OvertimeHours: 0}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var inserted *payroll.Salary
		deps.repo.insertFn = func(ctx context.Context, s *payroll.Salary) error {
			inserted = s
			return nil
		}

		result, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 0, result.Updated)
		assert.Empty(t, result.Skipped)

		assert.NotNil(t, inserted)
		assert.Equal(t, testStandardDays, inserted.StandardDays)
		assert.Equal(t, 22, inserted.DaysPresent)
		assert.Equal(t, int64(30_000_000), inserted.ContractSalary)
		// Computed gross: basic + overtime + allowances.
		assert.Equal(t, int64(30_000_000), inserted.GrossSalary)
		assert.Equal(t, int64(30_000_000), inserted.BasicPay)
		assert.Equal(t, int64(0), inserted.OvertimePay)
		assert.Equal(t, int64(2_400_000), inserted.SocialInsurance)
		assert.Equal(t, int64(450_000), inserted.HealthInsurance)
		assert.Equal(t, int64(300_000), inserted.UnemploymentInsurance)
		assert.Equal(t, int64(1_627_500), inserted.PersonalIncomeTax)
		assert.Equal(t, int64(25_222_500), inserted.NetSalary)
		assert.Equal(t, payroll.StatusDraft, inserted.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success prorates by attendance and pays overtime", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		payee := activePayee(30_000_000, 1)
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}
		deps.attendances.fn = func(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
			return attendance.MonthlySummary{DaysPresent: 11, OvertimeHours: 8}, nil
		}
		deps.allowances.fn = func(ctx context.Context, employeeID string, month, year int) (int64, error) {
			return 1_000_000, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var inserted *payroll.Salary
		deps.repo.insertFn = func(ctx context.Context, s *payroll.Salary) error {
			inserted = s
			return nil
		}

		result, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, 1, result.Created)

		assert.NotNil(t, inserted)
		assert.Equal(t, 11, inserted.DaysPresent)
		assert.Equal(t, int64(15_000_000), inserted.BasicPay)
		// 30M / 22 days / 8h * 1.5 * 8h, rounded once at the end.
		assert.Equal(t, int64(2_045_455), inserted.OvertimePay)
		assert.Equal(t, int64(1_000_000), inserted.AllowanceTotal)
		taxableGross := inserted.BasicPay + inserted.OvertimePay + inserted.AllowanceTotal
		assert.Equal(t, taxableGross, inserted.GrossSalary)
		withheld := inserted.SocialInsurance + inserted.HealthInsurance +
			inserted.UnemploymentInsurance + inserted.PersonalIncomeTax
		assert.Equal(t, taxableGross-withheld, inserted.NetSalary)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success low earner pays insurance but no income tax", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		payee := activePayee(8_000_000, 0)
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}
		deps.attendances.fn = func(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
			return attendance.MonthlySummary{DaysPresent: 20, OvertimeHours: 4}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var inserted *payroll.Salary
		deps.repo.insertFn = func(ctx context.Context, s *payroll.Salary) error {
			inserted = s
			return nil
		}

		_, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, int64(7_272_727), inserted.BasicPay)
		assert.Equal(t, int64(272_727), inserted.OvertimePay)
		// Taxable income after the personal deduction is negative.
		assert.Equal(t, int64(0), inserted.PersonalIncomeTax)
		taxableGross := inserted.BasicPay + inserted.OvertimePay
		withheld := inserted.SocialInsurance + inserted.HealthInsurance + inserted.UnemploymentInsurance
		assert.Equal(t, taxableGross-withheld, inserted.NetSalary)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success pays approved attendance above standard days", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		payee := activePayee(22_000_000, 0)
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}
		deps.attendances.fn = func(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
			return attendance.MonthlySummary{DaysPresent: 28}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var inserted *payroll.Salary
		deps.repo.insertFn = func(ctx context.Context, s *payroll.Salary) error {
			inserted = s
			return nil
		}

		_, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, 28, inserted.DaysPresent)
		// Approved weekend and holiday presence earns the daily rate.
		assert.Equal(t, int64(28_000_000), inserted.BasicPay)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative employee without an active contract is reported", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		payee := employee.ActivePayee{EmployeeID: uuid.New()}
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}

		result, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Len(t, result.Skipped, 1)
		assert.Equal(t, payee.EmployeeID.String(), result.Skipped[0].EmployeeID)
		assert.Equal(t, "no active contract", result.Skipped[0].Reason)
	})

	t.Run("success weekday holidays shrink standard days", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.holidays.count = 2
		payee := activePayee(20_000_000, 0)
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}
		deps.attendances.fn = func(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
			return attendance.MonthlySummary{DaysPresent: 20}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var inserted *payroll.Salary
		deps.repo.insertFn = func(ctx context.Context, s *payroll.Salary) error {
			inserted = s
			return nil
		}

		_, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, 20, inserted.StandardDays)
		assert.Equal(t, int64(20_000_000), inserted.BasicPay)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success rerun updates existing draft in place", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		payee := activePayee(30_000_000, 0)
		existingID := uuid.New()
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}
		deps.repo.findByEmployeePeriodFn = func(ctx context.Context, employeeID string, month, year int) (*payroll.Salary, error) {
			return &payroll.Salary{ID: existingID, EmployeeID: payee.EmployeeID, Status: payroll.StatusDraft}, nil
		}
		deps.repo.updateDraftFn = func(ctx context.Context, s *payroll.Salary) (int64, error) {
			assert.Equal(t, existingID, s.ID)
			return 1, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		result, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Updated)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative approved rows are skipped on rerun", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		payee := activePayee(30_000_000, 0)
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}
		deps.repo.findByEmployeePeriodFn = func(ctx context.Context, employeeID string, month, year int) (*payroll.Salary, error) {
			return &payroll.Salary{ID: uuid.New(), Status: payroll.StatusApproved}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		result, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 0, result.Updated)
		assert.Len(t, result.Skipped, 1)
		assert.Equal(t, payee.EmployeeID.String(), result.Skipped[0].EmployeeID)
		assert.Equal(t, "salary already APPROVED", result.Skipped[0].Reason)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative one bad record does not poison the batch", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		good := activePayee(30_000_000, 0)
		bad := activePayee(25_000_000, 0)
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{good, bad}, nil
		}
		deps.attendances.fn = func(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
			if employeeID == bad.EmployeeID.String() {
				return attendance.MonthlySummary{}, errors.New("summary query timeout")
			}
			return attendance.MonthlySummary{DaysPresent: 22}, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		result, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Len(t, result.Skipped, 1)
		assert.Equal(t, bad.EmployeeID.String(), result.Skipped[0].EmployeeID)
		assert.Contains(t, result.Skipped[0].Reason, "attendance summary failed")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid period", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Run(ctx, actorID, payroll.RunPayrollRequest{Month: 13, Year: testYear})

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidPeriod)
	})

	t.Run("negative no active employees", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Run(ctx, actorID, runReq)

		assert.ErrorIs(t, err, payrollerrors.ErrNoActiveEmployees)
	})

	t.Run("negative non-positive contract salary is skipped", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		payee := activePayee(0, 0)
		deps.employees.fn = func(ctx context.Context) ([]employee.ActivePayee, error) {
			return []employee.ActivePayee{payee}, nil
		}

		result, err := deps.service.Run(ctx, actorID, runReq)

		assert.NoError(t, err)
		assert.Len(t, result.Skipped, 1)
		assert.Equal(t, "contract gross salary is not positive", result.Skipped[0].Reason)
	})
}

func TestPayrollService_Transitions(t *testing.T) {
	ctx := context.Background()
	salaryID := uuid.New()

	draftSalary := func() *payroll.Salary {
		return &payroll.Salary{
			ID:         salaryID,
			EmployeeID: uuid.New(),
			Month:      testMonth,
			Year:       testYear,
			Status:     payroll.StatusDraft,
		}
	}

	t.Run("success approve draft", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Salary, error) {
			return draftSalary(), nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, id, from, to string) (int64, error) {
			assert.Equal(t, payroll.StatusDraft, from)
			assert.Equal(t, payroll.StatusApproved, to)
			return 1, nil
		}

		resp, err := deps.service.Approve(ctx, salaryID.String())

		assert.NoError(t, err)
		assert.Equal(t, payroll.StatusApproved, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative approve loses the guarded write", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Salary, error) {
			return draftSalary(), nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, id, from, to string) (int64, error) {
			return 0, nil
		}

		_, err := deps.service.Approve(ctx, salaryID.String())

		assert.ErrorIs(t, err, payrollerrors.ErrNotDraft)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative mark paid requires approved", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*payroll.Salary, error) {
			s := draftSalary()
			return s, nil
		}
		deps.repo.transitionStatusFn = func(ctx context.Context, id, from, to string) (int64, error) {
			return 0, nil
		}

		_, err := deps.service.MarkPaid(ctx, salaryID.String())

		assert.ErrorIs(t, err, payrollerrors.ErrNotApproved)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown salary", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, uuid.New().String())

		assert.ErrorIs(t, err, payrollerrors.ErrSalaryNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative malformed id", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Approve(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, payrollerrors.ErrInvalidSalaryID)
	})
}
