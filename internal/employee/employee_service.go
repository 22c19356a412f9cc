package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	employeeerrors "go-hrms/internal/employee/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	OptionsCacheKey = "employees:options"
	optionsCacheTTL = 1 * time.Hour

	// A reporting chain longer than this is treated as a cycle even if
	// the walk has not closed yet.
	maxManagerChainDepth = 100
)

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]OptionResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Terminate(ctx context.Context, id string) (EmployeeResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return EmployeeResponse{}, employeeerrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return EmployeeResponse{}, err
	}

	e := &Employee{
		ID:               uuid.New(),
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		Dependents:       req.Dependents,
		EmploymentStatus: StatusActive,
		HireDate:         hireDate,
	}

	if req.ManagerID != nil {
		managerUUID, err := s.resolveManager(ctx, e.ID.String(), *req.ManagerID)
		if err != nil {
			return EmployeeResponse{}, err
		}
		e.ManagerID = managerUUID
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("create employee failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("create employee success",
		zap.String("employee_id", e.ID.String()),
	)
	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	e, err := s.findExisting(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

// GetOptions serves the dropdown list behind a redis cache, with
// singleflight collapsing concurrent misses into one query.
func (s *service) GetOptions(ctx context.Context) ([]OptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, OptionsCacheKey).Result(); err == nil {
			var resp []OptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(OptionsCacheKey, func() (interface{}, error) {
		rows, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, err
		}

		resp := make([]OptionResponse, len(rows))
		for i, e := range rows {
			resp[i] = OptionResponse{ID: e.ID.String(), FullName: e.FullName}
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, OptionsCacheKey, jsonData, optionsCacheTTL)
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]OptionResponse), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	e, err := s.findExisting(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}

	if req.FullName != nil {
		e.FullName = *req.FullName
	}
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	if req.Dependents != nil {
		e.Dependents = *req.Dependents
	}
	if req.ManagerID != nil {
		if *req.ManagerID == "" {
			e.ManagerID = nil
		} else {
			managerUUID, err := s.resolveManager(ctx, id, *req.ManagerID)
			if err != nil {
				return EmployeeResponse{}, err
			}
			e.ManagerID = managerUUID
		}
	}

	if err := s.repo.Update(ctx, e); err != nil {
		s.logger.Error("update employee failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	return mapToResponse(*e), nil
}

func (s *service) Terminate(ctx context.Context, id string) (EmployeeResponse, error) {
	e, err := s.findExisting(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}

	affected, err := s.repo.Terminate(ctx, id)
	if err != nil {
		return EmployeeResponse{}, err
	}
	if affected == 0 {
		return EmployeeResponse{}, employeeerrors.ErrAlreadyTerminated
	}

	s.invalidateOptionsCache(ctx)
	e.EmploymentStatus = StatusTerminated
	s.logger.Info("terminate employee success", zap.String("employee_id", id))
	return mapToResponse(*e), nil
}

// resolveManager validates the manager exists and that putting them
// above employeeID closes no reporting cycle. The walk follows
// manager_id upward until it ends, revisits employeeID, or runs past
// the depth cap.
func (s *service) resolveManager(ctx context.Context, employeeID, managerID string) (*uuid.UUID, error) {
	if managerID == employeeID {
		return nil, employeeerrors.ErrSelfManager
	}

	managerUUID, err := uuid.Parse(managerID)
	if err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}

	if _, err := s.repo.FindByID(ctx, managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrManagerNotFound
		}
		return nil, err
	}

	current := managerID
	for depth := 0; depth < maxManagerChainDepth; depth++ {
		next, err := s.repo.FindManagerID(ctx, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		if next == nil {
			return &managerUUID, nil
		}
		if *next == employeeID {
			return nil, employeeerrors.ErrManagerCycle
		}
		current = *next
	}

	return nil, employeeerrors.ErrManagerCycle
}

func (s *service) findExisting(ctx context.Context, id string) (*Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, OptionsCacheKey).Err(); err != nil {
		s.logger.Error("invalidate employee options cache failed",
			zap.String("key", OptionsCacheKey),
			zap.Error(err),
		)
	}
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:               e.ID.String(),
		FullName:         e.FullName,
		Email:            e.Email,
		Phone:            e.Phone,
		Dependents:       e.Dependents,
		EmploymentStatus: e.EmploymentStatus,
		HireDate:         e.HireDate.Format("2006-01-02"),
	}
	if e.ManagerID != nil {
		v := e.ManagerID.String()
		resp.ManagerID = &v
	}
	return resp
}

func mapToListResponse(rows []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(rows))
	for i, e := range rows {
		resp[i] = mapToResponse(e)
	}
	return resp
}
