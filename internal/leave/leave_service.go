package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-hrms/internal/events"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"

	RoleHR = "HR"
)

type Service interface {
	Create(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	GetBalances(ctx context.Context, employeeID string, year int) ([]BalanceResponse, error)
	Approve(ctx context.Context, actorID, actorRole, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actorID, actorRole, id, rejectionReason string) (LeaveResponse, error)
	Cancel(ctx context.Context, actorID, actorRole, id string) (LeaveResponse, error)
	Delete(ctx context.Context, id string) error
	CreateType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetTypes(ctx context.Context) ([]LeaveTypeResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, logger...)
}

func NewServiceWithOutbox(db *sql.DB, repo Repository, outboxRepo kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, logger: l}
}

// Create validates the request and reserves the days on the balance
// ledger in the same transaction. Reservation at creation closes the
// window where several pending requests could pass a plain sufficiency
// check and later overdraw the balance once approved.
func (s *service) Create(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("employee_id", employeeID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	if _, err := uuid.Parse(req.LeaveTypeID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveTypeID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	totalDays := inclusiveDays(startDate, endDate)
	// The ledger year is the year the leave starts in, never wall clock.
	year := startDate.Year()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	leaveType, err := qtx.FindType(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveTypeNotFound
		}
		return LeaveResponse{}, err
	}

	if err := qtx.EnsureBalance(ctx, employeeID, req.LeaveTypeID, year, leaveType.MaxDaysPerYear); err != nil {
		s.logger.Error("create leave ensure balance failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	reserved, err := qtx.ReserveBalance(ctx, employeeID, req.LeaveTypeID, year, totalDays)
	if err != nil {
		s.logger.Error("create leave reserve balance failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !reserved {
		s.logger.Warn("create leave insufficient balance",
			zap.String("employee_id", employeeID),
			zap.Int("requested_days", totalDays),
			zap.Int("year", year),
		)
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	l := &LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  employeeUUID,
		LeaveTypeID: leaveType.ID,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalDays:   totalDays,
		Reason:      req.Reason,
		Status:      StatusPending,
		CreatedBy:   employeeUUID,
	}

	if err := qtx.CreateRequest(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", employeeID),
		zap.Int("total_days", totalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindRequestsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.repo.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) GetBalances(ctx context.Context, employeeID string, year int) ([]BalanceResponse, error) {
	balances, err := s.repo.FindBalancesByEmployee(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}

	res := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		res[i] = BalanceResponse{
			EmployeeID:    b.EmployeeID.String(),
			LeaveTypeID:   b.LeaveTypeID.String(),
			Year:          b.Year,
			TotalDays:     b.TotalDays,
			UsedDays:      b.UsedDays,
			PendingDays:   b.PendingDays,
			RemainingDays: b.RemainingDays,
			CarriedOver:   b.CarriedOver,
		}
	}
	return res, nil
}

// Approve commits the request and its balance consumption atomically.
// The status CAS guarantees that of two concurrent approvals exactly
// one succeeds; the loser sees zero rows and gets a conflict.
func (s *service) Approve(ctx context.Context, actorID, actorRole, id string) (LeaveResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	if actorRole != RoleHR {
		isManager, err := qtx.IsManagerOf(ctx, actorID, l.EmployeeID.String())
		if err != nil {
			return LeaveResponse{}, err
		}
		if !isManager {
			return LeaveResponse{}, leaveerrors.ErrNotAuthorizedApprover
		}
	}

	affected, err := qtx.TransitionStatus(ctx, id, StatusPending, StatusApproved, &actorID, nil)
	if err != nil {
		s.logger.Error("approve leave transition failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if affected == 0 {
		s.logger.Warn("approve leave conflict",
			zap.String("leave_id", id),
			zap.String("current_status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	committed, err := qtx.CommitBalance(ctx, l.EmployeeID.String(), l.LeaveTypeID.String(), l.StartDate.Year(), l.TotalDays)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !committed {
		// Reservation missing means the ledger and the request disagree;
		// rolling back keeps the pair consistent.
		s.logger.Error("approve leave balance commit refused",
			zap.String("leave_id", id),
			zap.String("employee_id", l.EmployeeID.String()),
		)
		return LeaveResponse{}, leaveerrors.ErrBalanceCorrupt
	}

	if s.outbox != nil {
		if err := s.enqueueApprovedEvent(ctx, tx, l, actorID); err != nil {
			s.logger.Error("approve leave outbox enqueue failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	now := time.Now().UTC()
	l.Status = StatusApproved
	l.ApprovedBy = &actorUUID
	l.ApprovedAt = &now

	s.logger.Info("approve leave success",
		zap.String("leave_id", id),
		zap.String("approver_id", actorID),
	)
	return mapToResponse(*l), nil
}

func (s *service) Reject(ctx context.Context, actorID, actorRole, id, rejectionReason string) (LeaveResponse, error) {
	if rejectionReason == "" {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	return s.releaseTransition(ctx, actorID, actorRole, id, StatusRejected, &rejectionReason)
}

// Cancel is the requester withdrawing a still-pending request.
func (s *service) Cancel(ctx context.Context, actorID, actorRole, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	return s.releaseTransition(ctx, actorID, actorRole, id, StatusCancelled, nil)
}

// releaseTransition handles the two terminal states that give the
// reserved days back: REJECTED and CANCELLED.
func (s *service) releaseTransition(ctx context.Context, actorID, actorRole, id, target string, rejectionReason *string) (LeaveResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave release transition begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	switch target {
	case StatusCancelled:
		if actorRole != RoleHR && l.EmployeeID.String() != actorID {
			return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
		}
	case StatusRejected:
		if actorRole != RoleHR {
			isManager, err := qtx.IsManagerOf(ctx, actorID, l.EmployeeID.String())
			if err != nil {
				return LeaveResponse{}, err
			}
			if !isManager {
				return LeaveResponse{}, leaveerrors.ErrNotAuthorizedApprover
			}
		}
	}

	affected, err := qtx.TransitionStatus(ctx, id, StatusPending, target, nil, rejectionReason)
	if err != nil {
		return LeaveResponse{}, err
	}
	if affected == 0 {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	released, err := qtx.ReleaseBalance(ctx, l.EmployeeID.String(), l.LeaveTypeID.String(), l.StartDate.Year(), l.TotalDays)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !released {
		s.logger.Error("leave balance release refused",
			zap.String("leave_id", id),
			zap.String("employee_id", l.EmployeeID.String()),
		)
		return LeaveResponse{}, leaveerrors.ErrBalanceCorrupt
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("leave release transition commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Status = target
	l.RejectionReason = rejectionReason

	s.logger.Info("leave release transition success",
		zap.String("leave_id", id),
		zap.String("status", target),
	)
	return mapToResponse(*l), nil
}

// Delete hard-removes a request regardless of status. It is an HR
// administrative override, not an undo: balance mutations applied by a
// prior approval stay in place.
func (s *service) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.DeleteRequest(ctx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) CreateType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	t := &LeaveType{
		ID:             uuid.New(),
		Name:           req.Name,
		PaidLeave:      *req.PaidLeave,
		MaxDaysPerYear: req.MaxDaysPerYear,
	}

	if err := s.repo.CreateType(ctx, t); err != nil {
		s.logger.Error("create leave type failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.logger.Info("create leave type success",
		zap.String("leave_type_id", t.ID.String()),
		zap.String("name", t.Name),
	)
	return mapTypeToResponse(*t), nil
}

func (s *service) GetTypes(ctx context.Context) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAllTypes(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveTypeResponse, len(types))
	for i, t := range types {
		resp[i] = mapTypeToResponse(t)
	}
	return resp, nil
}

func mapTypeToResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:             t.ID.String(),
		Name:           t.Name,
		PaidLeave:      t.PaidLeave,
		MaxDaysPerYear: t.MaxDaysPerYear,
	}
}

func (s *service) enqueueApprovedEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest, approverID string) error {
	event := events.LeaveApprovedEvent{
		EventType:   "leave.approved",
		LeaveID:     l.ID.String(),
		EmployeeID:  l.EmployeeID.String(),
		LeaveTypeID: l.LeaveTypeID.String(),
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
		TotalDays:   l.TotalDays,
		ApprovedBy:  approverID,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func inclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		EmployeeID:  l.EmployeeID.String(),
		LeaveTypeID: l.LeaveTypeID.String(),
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
		TotalDays:   l.TotalDays,
		Reason:      l.Reason,
		Status:      l.Status,
		CreatedBy:   l.CreatedBy.String(),
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.RejectionReason = l.RejectionReason
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
