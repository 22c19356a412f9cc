package contract

import (
	"context"
	"database/sql"
	"errors"
	"time"

	contracterrors "go-hrms/internal/contract/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EmployeeChecker verifies the employee exists before a contract is
// attached. The employee repository satisfies it.
type EmployeeChecker interface {
	FindManagerID(ctx context.Context, id string) (*string, error)
}

type Service interface {
	Create(ctx context.Context, req CreateContractRequest) (ContractResponse, error)
	GetByID(ctx context.Context, id string) (ContractResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]ContractResponse, error)
	Activate(ctx context.Context, id string) (ContractResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees EmployeeChecker
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, employees EmployeeChecker, logger ...*zap.Logger) Service {
	l := zap.L().Named("contract.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("contract.service")
	}
	return &service{db: db, repo: repo, employees: employees, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateContractRequest) (ContractResponse, error) {
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return ContractResponse{}, contracterrors.ErrEmployeeNotFound
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return ContractResponse{}, contracterrors.ErrInvalidDateFormat
	}

	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return ContractResponse{}, contracterrors.ErrInvalidDateFormat
		}
		if !parsed.After(startDate) {
			return ContractResponse{}, contracterrors.ErrInvalidDateRange
		}
		endDate = &parsed
	}

	if s.employees != nil {
		if _, err := s.employees.FindManagerID(ctx, req.EmployeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ContractResponse{}, contracterrors.ErrEmployeeNotFound
			}
			return ContractResponse{}, err
		}
	}

	c := &Contract{
		ID:          uuid.New(),
		EmployeeID:  employeeUUID,
		GrossSalary: req.GrossSalary,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      StatusDraft,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("create contract failed", zap.Error(err))
		return ContractResponse{}, err
	}

	s.logger.Info("create contract success",
		zap.String("contract_id", c.ID.String()),
		zap.String("employee_id", req.EmployeeID),
	)
	return mapToResponse(*c), nil
}

func (s *service) GetByID(ctx context.Context, id string) (ContractResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ContractResponse{}, contracterrors.ErrInvalidContractID
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ContractResponse{}, contracterrors.ErrContractNotFound
		}
		return ContractResponse{}, err
	}
	return mapToResponse(*c), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]ContractResponse, error) {
	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]ContractResponse, len(rows))
	for i, c := range rows {
		resp[i] = mapToResponse(c)
	}
	return resp, nil
}

// Activate promotes a DRAFT contract and supersedes the current ACTIVE
// one in the same transaction, so the one-active-per-employee
// invariant holds at every commit point.
func (s *service) Activate(ctx context.Context, id string) (ContractResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ContractResponse{}, contracterrors.ErrInvalidContractID
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ContractResponse{}, contracterrors.ErrContractNotFound
		}
		return ContractResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ContractResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.DemoteActiveByEmployee(ctx, c.EmployeeID.String()); err != nil {
		s.logger.Error("demote active contract failed", zap.String("contract_id", id), zap.Error(err))
		return ContractResponse{}, err
	}

	affected, err := qtx.Activate(ctx, id)
	if err != nil {
		return ContractResponse{}, err
	}
	if affected == 0 {
		return ContractResponse{}, contracterrors.ErrNotDraft
	}

	if err := tx.Commit(); err != nil {
		return ContractResponse{}, err
	}

	c.Status = StatusActive
	s.logger.Info("activate contract success",
		zap.String("contract_id", id),
		zap.String("employee_id", c.EmployeeID.String()),
	)
	return mapToResponse(*c), nil
}

func mapToResponse(c Contract) ContractResponse {
	resp := ContractResponse{
		ID:          c.ID.String(),
		EmployeeID:  c.EmployeeID.String(),
		GrossSalary: c.GrossSalary,
		StartDate:   c.StartDate.Format("2006-01-02"),
		Status:      c.Status,
	}
	if c.EndDate != nil {
		v := c.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	return resp
}
