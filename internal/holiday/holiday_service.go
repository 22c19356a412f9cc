package holiday

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
		"invalid holiday_date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrHolidayNotFound = apperror.New(
		apperror.CodeNotFound,
		"holiday not found",
		http.StatusNotFound,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"year must be a plausible calendar year",
		http.StatusBadRequest,
	)
)

type CreateHolidayRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=150"`
	HolidayDate string `json:"holiday_date" binding:"required"`
}

type HolidayResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HolidayDate string `json:"holiday_date"`
}

type Service interface {
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	ListByYear(ctx context.Context, year int) ([]HolidayResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.HolidayDate)
	if err != nil {
		return HolidayResponse{}, ErrInvalidDate
	}

	h := &Holiday{
		ID:          uuid.New(),
		Name:        req.Name,
		HolidayDate: date,
	}

	if err := s.repo.Create(ctx, h); err != nil {
		s.logger.Error("create holiday failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	s.logger.Info("create holiday success",
		zap.String("holiday_id", h.ID.String()),
		zap.String("date", req.HolidayDate),
	)
	return mapToResponse(*h), nil
}

func (s *service) ListByYear(ctx context.Context, year int) ([]HolidayResponse, error) {
	if year < 2000 || year > 2100 {
		return nil, ErrInvalidYear
	}

	rows, err := s.repo.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	resp := make([]HolidayResponse, len(rows))
	for i, h := range rows {
		resp[i] = mapToResponse(h)
	}
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrHolidayNotFound
	}
	return nil
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:          h.ID.String(),
		Name:        h.Name,
		HolidayDate: h.HolidayDate.Format("2006-01-02"),
	}
}
