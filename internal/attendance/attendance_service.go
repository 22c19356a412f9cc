package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "go-hrms/internal/attendance/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Schedule is the company work-day policy the capture math runs
// against. Times are minutes from midnight in the company timezone.
type Schedule struct {
	WorkStartMinutes int
	WorkEndMinutes   int
	LunchBreak       time.Duration
}

func DefaultSchedule() Schedule {
	return Schedule{
		WorkStartMinutes: 8 * 60,
		WorkEndMinutes:   17 * 60,
		LunchBreak:       time.Hour,
	}
}

type Service interface {
	CheckIn(ctx context.Context, employeeID string, at time.Time, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, employeeID string, at time.Time, req CheckOutRequest) (AttendanceResponse, error)
	Approve(ctx context.Context, approverID, id string) error
	Reject(ctx context.Context, approverID, id string) error
	GetAllByEmployee(ctx context.Context, employeeID string) ([]AttendanceResponse, error)
	MonthlySummary(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	schedule Schedule
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, schedule Schedule, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{db: db, repo: repo, schedule: schedule, logger: l}
}

func (s *service) CheckIn(ctx context.Context, employeeID string, at time.Time, req CheckInRequest) (AttendanceResponse, error) {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("check-in begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	day := at.Truncate(24 * time.Hour)

	existing, err := qtx.FindByEmployeeAndDate(ctx, employeeID, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}
	if err == nil && existing != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}

	row := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     employeeUUID,
		WorkDate:       day,
		CheckInAt:      at,
		LateMinutes:    s.lateMinutes(at),
		ApprovalStatus: StatusPending,
		Notes:          req.Notes,
	}

	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Error("check-in persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("check-in recorded",
		zap.String("employee_id", employeeID),
		zap.String("work_date", day.Format("2006-01-02")),
		zap.Int("late_minutes", row.LateMinutes),
	)
	return mapToResponse(*row), nil
}

func (s *service) CheckOut(ctx context.Context, employeeID string, at time.Time, req CheckOutRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("check-out begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	day := at.Truncate(24 * time.Hour)

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNotCheckedIn
		}
		return AttendanceResponse{}, err
	}
	// A row that already left PENDING is fixed for payroll.
	if row.ApprovalStatus != StatusPending {
		return AttendanceResponse{}, attendanceerrors.ErrNotPending
	}
	if row.CheckOutAt != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	row.CheckOutAt = &at
	row.EarlyMinutes = s.earlyMinutes(at)
	row.WorkingHours = s.workingHours(row.CheckInAt, at)
	row.OvertimeHours = s.overtimeHours(at)
	if req.Notes != nil {
		row.Notes = req.Notes
	}

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("check-out persist failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	return mapToResponse(*row), nil
}

// Approve commits the day's facts for payroll. The conditional update
// guarantees a row is approved exactly once under concurrent approvers.
func (s *service) Approve(ctx context.Context, approverID, id string) error {
	return s.transitionApproval(ctx, approverID, id, StatusApproved)
}

func (s *service) Reject(ctx context.Context, approverID, id string) error {
	return s.transitionApproval(ctx, approverID, id, StatusRejected)
}

func (s *service) transitionApproval(ctx context.Context, approverID, id, target string) error {
	if _, err := uuid.Parse(approverID); err != nil {
		return attendanceerrors.ErrInvalidApproverID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	affected, err := qtx.TransitionApproval(ctx, id, StatusPending, target, approverID)
	if err != nil {
		s.logger.Error("attendance approval transition failed",
			zap.String("attendance_id", id),
			zap.String("target_status", target),
			zap.Error(err),
		)
		return err
	}
	if affected == 0 {
		if _, err := qtx.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return attendanceerrors.ErrAttendanceNotFound
			}
			return err
		}
		return attendanceerrors.ErrNotPending
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("attendance approval transition",
		zap.String("attendance_id", id),
		zap.String("status", target),
		zap.String("approver_id", approverID),
	)
	return nil
}

func (s *service) GetAllByEmployee(ctx context.Context, employeeID string) ([]AttendanceResponse, error) {
	rows, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) MonthlySummary(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error) {
	return s.repo.MonthlySummary(ctx, employeeID, month, year)
}

func (s *service) lateMinutes(at time.Time) int {
	minuteOfDay := at.Hour()*60 + at.Minute()
	if minuteOfDay > s.schedule.WorkStartMinutes {
		return minuteOfDay - s.schedule.WorkStartMinutes
	}
	return 0
}

func (s *service) earlyMinutes(at time.Time) int {
	minuteOfDay := at.Hour()*60 + at.Minute()
	if minuteOfDay < s.schedule.WorkEndMinutes {
		return s.schedule.WorkEndMinutes - minuteOfDay
	}
	return 0
}

func (s *service) workingHours(in, out time.Time) float64 {
	worked := out.Sub(in) - s.schedule.LunchBreak
	if worked < 0 {
		worked = 0
	}
	return worked.Hours()
}

func (s *service) overtimeHours(out time.Time) float64 {
	minuteOfDay := out.Hour()*60 + out.Minute()
	if minuteOfDay > s.schedule.WorkEndMinutes {
		return float64(minuteOfDay-s.schedule.WorkEndMinutes) / 60
	}
	return 0
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		WorkDate:       a.WorkDate.Format("2006-01-02"),
		CheckInAt:      a.CheckInAt.Format(time.RFC3339),
		LateMinutes:    a.LateMinutes,
		EarlyMinutes:   a.EarlyMinutes,
		WorkingHours:   a.WorkingHours,
		OvertimeHours:  a.OvertimeHours,
		ApprovalStatus: a.ApprovalStatus,
		Notes:          a.Notes,
	}
	if a.CheckOutAt != nil {
		v := a.CheckOutAt.Format(time.RFC3339)
		resp.CheckOutAt = &v
	}
	if a.ApprovedBy != nil {
		v := a.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	return resp
}
