package allowance

import (
	"context"
	"net/http"
	"time"

	"go-hrms/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must be after start_date",
		http.StatusBadRequest,
	)
	ErrGrantNotFound = apperror.New(
		apperror.CodeNotFound,
		"allowance grant not found or already revoked",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
)

type CreateGrantRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"omitempty"`
}

type GrantResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Amount     int64   `json:"amount"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

type Service interface {
	Create(ctx context.Context, req CreateGrantRequest) (GrantResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]GrantResponse, error)
	Revoke(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("allowance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("allowance.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateGrantRequest) (GrantResponse, error) {
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return GrantResponse{}, ErrInvalidEmployeeID
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return GrantResponse{}, ErrInvalidDate
	}

	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return GrantResponse{}, ErrInvalidDate
		}
		if !parsed.After(startDate) {
			return GrantResponse{}, ErrInvalidDateRange
		}
		endDate = &parsed
	}

	g := &Grant{
		ID:         uuid.New(),
		EmployeeID: employeeUUID,
		Name:       req.Name,
		Amount:     req.Amount,
		StartDate:  startDate,
		EndDate:    endDate,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		s.logger.Error("create allowance grant failed", zap.Error(err))
		return GrantResponse{}, err
	}

	s.logger.Info("create allowance grant success",
		zap.String("grant_id", g.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int64("amount", req.Amount),
	)
	return mapToResponse(*g), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]GrantResponse, error) {
	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]GrantResponse, len(rows))
	for i, g := range rows {
		resp[i] = mapToResponse(g)
	}
	return resp, nil
}

// Revoke closes an open-ended grant as of today.
func (s *service) Revoke(ctx context.Context, id string) error {
	affected, err := s.repo.Revoke(ctx, id, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrGrantNotFound
	}
	return nil
}

func mapToResponse(g Grant) GrantResponse {
	resp := GrantResponse{
		ID:         g.ID.String(),
		EmployeeID: g.EmployeeID.String(),
		Name:       g.Name,
		Amount:     g.Amount,
		StartDate:  g.StartDate.Format("2006-01-02"),
	}
	if g.EndDate != nil {
		v := g.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	return resp
}
