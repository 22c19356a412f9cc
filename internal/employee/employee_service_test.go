package employee_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	withTxFn                 func(tx *sql.Tx) employee.Repository
	createFn                 func(ctx context.Context, e *employee.Employee) error
	findByIDFn               func(ctx context.Context, id string) (*employee.Employee, error)
	findByEmailFn            func(ctx context.Context, email string) (*employee.Employee, error)
	findAllFn                func(ctx context.Context) ([]employee.Employee, error)
	findOptionsFn            func(ctx context.Context) ([]employee.Employee, error)
	updateFn                 func(ctx context.Context, e *employee.Employee) error
	findManagerIDFn          func(ctx context.Context, id string) (*string, error)
	findActiveWithContractFn func(ctx context.Context) ([]employee.ActivePayee, error)
	terminateFn              func(ctx context.Context, id string) (int64, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindOptions(ctx context.Context) ([]employee.Employee, error) {
	if f.findOptionsFn != nil {
		return f.findOptionsFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindManagerID(ctx context.Context, id string) (*string, error) {
	if f.findManagerIDFn != nil {
		return f.findManagerIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindActiveWithContract(ctx context.Context) ([]employee.ActivePayee, error) {
	if f.findActiveWithContractFn != nil {
		return f.findActiveWithContractFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) Terminate(ctx context.Context, id string) (int64, error) {
	if f.terminateFn != nil {
		return f.terminateFn(ctx, id)
	}
	return 1, nil
}

type employeeServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service employee.Service
	repo    *fakeEmployeeRepository
}

func setupEmployeeServiceTest(t *testing.T) *employeeServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeEmployeeRepository{}
	svc := employee.NewService(db, repo, nil)

	return &employeeServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

func strptr(v string) *string { return &v }

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	baseReq := employee.CreateEmployeeRequest{
		FullName: "Nguyen Van A",
		Email:    "a.nguyen@example.com",
		Phone:    "0900000001",
		HireDate: "2026-01-05",
	}

	t.Run("success", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.createFn = func(ctx context.Context, e *employee.Employee) error {
			assert.Equal(t, employee.StatusActive, e.EmploymentStatus)
			assert.Equal(t, baseReq.Email, e.Email)
			return nil
		}

		resp, err := deps.service.Create(ctx, baseReq)

		assert.NoError(t, err)
		assert.Equal(t, employee.StatusActive, resp.EmploymentStatus)
		assert.Equal(t, "2026-01-05", resp.HireDate)
	})

	t.Run("success with manager at the chain top", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		managerID := uuid.New().String()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: uuid.MustParse(managerID)}, nil
		}
		deps.repo.findManagerIDFn = func(ctx context.Context, id string) (*string, error) {
			return nil, nil
		}

		req := baseReq
		req.ManagerID = strptr(managerID)

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.NotNil(t, resp.ManagerID)
		assert.Equal(t, managerID, *resp.ManagerID)
	})

	t.Run("negative duplicate email", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByEmailFn = func(ctx context.Context, email string) (*employee.Employee, error) {
			return &employee.Employee{ID: uuid.New()}, nil
		}

		_, err := deps.service.Create(ctx, baseReq)

		assert.ErrorIs(t, err, employeeerrors.ErrEmailTaken)
	})

	t.Run("negative malformed hire date", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		req := baseReq
		req.HireDate = "05/01/2026"

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidHireDate)
	})

	t.Run("negative unknown manager", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		req := baseReq
		req.ManagerID = strptr(uuid.New().String())

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrManagerNotFound)
	})
}

func TestEmployeeService_ManagerCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("negative self manager", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.New().String()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: uuid.MustParse(id)}, nil
		}

		_, err := deps.service.Update(ctx, employeeID, employee.UpdateEmployeeRequest{
			ManagerID: strptr(employeeID),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrSelfManager)
	})

	t.Run("negative two node cycle", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.New().String()
		managerID := uuid.New().String()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: uuid.MustParse(id)}, nil
		}
		// The candidate manager already reports to the employee.
		deps.repo.findManagerIDFn = func(ctx context.Context, id string) (*string, error) {
			if id == managerID {
				return strptr(employeeID), nil
			}
			return nil, nil
		}

		_, err := deps.service.Update(ctx, employeeID, employee.UpdateEmployeeRequest{
			ManagerID: strptr(managerID),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrManagerCycle)
	})

	t.Run("negative endless chain hits the depth cap", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.New().String()
		managerID := uuid.New().String()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: uuid.MustParse(id)}, nil
		}
		deps.repo.findManagerIDFn = func(ctx context.Context, id string) (*string, error) {
			next := uuid.New().String()
			return &next, nil
		}

		_, err := deps.service.Update(ctx, employeeID, employee.UpdateEmployeeRequest{
			ManagerID: strptr(managerID),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrManagerCycle)
	})

	t.Run("success clearing the manager", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		managerUUID := uuid.New()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: uuid.MustParse(id), ManagerID: &managerUUID}, nil
		}

		resp, err := deps.service.Update(ctx, uuid.New().String(), employee.UpdateEmployeeRequest{
			ManagerID: strptr(""),
		})

		assert.NoError(t, err)
		assert.Nil(t, resp.ManagerID)
	})
}

func TestEmployeeService_GetOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("success without redis collapses concurrent misses", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		rows := []employee.Employee{
			{ID: uuid.New(), FullName: "Nguyen Van A"},
			{ID: uuid.New(), FullName: "Tran Thi B"},
		}
		deps.repo.findOptionsFn = func(ctx context.Context) ([]employee.Employee, error) {
			return rows, nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := deps.service.GetOptions(ctx)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
			}()
		}
		wg.Wait()
	})
}

func TestEmployeeService_Terminate(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: employeeID, EmploymentStatus: employee.StatusActive}, nil
		}

		resp, err := deps.service.Terminate(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, employee.StatusTerminated, resp.EmploymentStatus)
	})

	t.Run("negative already terminated", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return &employee.Employee{ID: employeeID, EmploymentStatus: employee.StatusTerminated}, nil
		}
		deps.repo.terminateFn = func(ctx context.Context, id string) (int64, error) {
			return 0, nil
		}

		_, err := deps.service.Terminate(ctx, employeeID.String())

		assert.ErrorIs(t, err, employeeerrors.ErrAlreadyTerminated)
	})

	t.Run("negative unknown employee", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Terminate(ctx, uuid.New().String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}
