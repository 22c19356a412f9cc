package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-hrms/internal/attendance"
	"go-hrms/internal/employee"
	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka"
	payrollerrors "go-hrms/internal/payroll/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/taxengine"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusDraft    = "DRAFT"
	StatusApproved = "APPROVED"
	StatusPaid     = "PAID"

	hoursPerDay    = 8
	defaultWorkers = 8

	runLockTTL = 15 * time.Minute
)

var overtimeMultiplier = decimal.NewFromFloat(1.5)

// Sources are the read surfaces payroll needs from sibling modules.
// The concrete repositories satisfy them as-is.
type EmployeeSource interface {
	FindActiveWithContract(ctx context.Context) ([]employee.ActivePayee, error)
}

type AttendanceSource interface {
	MonthlySummary(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error)
}

type HolidaySource interface {
	CountWeekdayHolidays(ctx context.Context, month, year int) (int, error)
}

type AllowanceSource interface {
	SumActiveForMonth(ctx context.Context, employeeID string, month, year int) (int64, error)
}

type Service interface {
	Run(ctx context.Context, actorID string, req RunPayrollRequest) (RunResult, error)
	Approve(ctx context.Context, id string) (SalaryResponse, error)
	MarkPaid(ctx context.Context, id string) (SalaryResponse, error)
	GetByPeriod(ctx context.Context, month, year int) ([]SalaryResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]SalaryResponse, error)
	GetByID(ctx context.Context, id string) (SalaryResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	employees  EmployeeSource
	attendance AttendanceSource
	holidays   HolidaySource
	allowances AllowanceSource
	outbox     kafka.OutboxRepository
	locks      *redis.Client
	policy     taxengine.Policy
	workers    int
	logger     *zap.Logger
}

type Config struct {
	DB         *sql.DB
	Repo       Repository
	Employees  EmployeeSource
	Attendance AttendanceSource
	Holidays   HolidaySource
	Allowances AllowanceSource
	Outbox     kafka.OutboxRepository
	Locks      *redis.Client
	Policy     *taxengine.Policy
	Workers    int
	Logger     *zap.Logger
}

func NewService(cfg Config) Service {
	l := zap.L().Named("payroll.service")
	if cfg.Logger != nil {
		l = cfg.Logger.Named("payroll.service")
	}
	policy := taxengine.DefaultPolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &service{
		db:         cfg.DB,
		repo:       cfg.Repo,
		employees:  cfg.Employees,
		attendance: cfg.Attendance,
		holidays:   cfg.Holidays,
		allowances: cfg.Allowances,
		outbox:     cfg.Outbox,
		locks:      cfg.Locks,
		policy:     policy,
		workers:    workers,
		logger:     l,
	}
}

// Run computes the monthly payslip for every active employee. Each
// employee is processed in its own transaction so one bad record
// cannot poison the batch; failures come back as skip reasons.
// Reruns over the same period recompute DRAFT rows and leave
// APPROVED and PAID rows untouched.
func (s *service) Run(ctx context.Context, actorID string, req RunPayrollRequest) (RunResult, error) {
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 || req.Year > 2100 {
		return RunResult{}, payrollerrors.ErrInvalidPeriod
	}

	runID := uuid.New().String()
	log := s.logger.With(
		zap.String("run_id", runID),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
	)
	log.Info("payroll run started", zap.String("actor_id", actorID))

	if s.locks != nil {
		lockKey := fmt.Sprintf("payroll:run:%d-%02d", req.Year, req.Month)
		acquired, err := s.locks.SetNX(ctx, lockKey, runID, runLockTTL).Result()
		if err != nil {
			log.Error("payroll run lock failed", zap.Error(err))
			return RunResult{}, err
		}
		if !acquired {
			return RunResult{}, payrollerrors.ErrRunInProgress
		}
		defer s.locks.Del(context.WithoutCancel(ctx), lockKey)
	}

	payees, err := s.employees.FindActiveWithContract(ctx)
	if err != nil {
		log.Error("payroll run list employees failed", zap.Error(err))
		return RunResult{}, err
	}
	if len(payees) == 0 {
		return RunResult{}, payrollerrors.ErrNoActiveEmployees
	}

	weekdayHolidays, err := s.holidays.CountWeekdayHolidays(ctx, req.Month, req.Year)
	if err != nil {
		log.Error("payroll run count holidays failed", zap.Error(err))
		return RunResult{}, err
	}
	standardDays := weekdaysInMonth(req.Month, req.Year) - weekdayHolidays
	if standardDays < 0 {
		standardDays = 0
	}

	result := RunResult{
		RunID:   runID,
		Month:   req.Month,
		Year:    req.Year,
		Skipped: []SkippedEmployee{},
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan employee.ActivePayee)
	)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for payee := range jobs {
				outcome, reason := s.processEmployee(ctx, payee, req.Month, req.Year, standardDays)
				mu.Lock()
				switch outcome {
				case outcomeCreated:
					result.Created++
				case outcomeUpdated:
					result.Updated++
				case outcomeSkipped:
					result.Skipped = append(result.Skipped, SkippedEmployee{
						EmployeeID: payee.EmployeeID.String(),
						Reason:     reason,
					})
				}
				mu.Unlock()
			}
		}()
	}

	for _, payee := range payees {
		jobs <- payee
	}
	close(jobs)
	wg.Wait()

	if s.outbox != nil {
		if err := s.enqueueRunCompletedEvent(ctx, runID, actorID, result); err != nil {
			// The run itself succeeded; losing the announcement is
			// logged, not returned.
			log.Error("payroll run outbox enqueue failed", zap.Error(err))
		}
	}

	log.Info("payroll run finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

type processOutcome int

const (
	outcomeCreated processOutcome = iota
	outcomeUpdated
	outcomeSkipped
)

func (s *service) processEmployee(
	ctx context.Context,
	payee employee.ActivePayee,
	month, year, standardDays int,
) (processOutcome, string) {
	employeeID := payee.EmployeeID.String()

	if standardDays == 0 {
		return outcomeSkipped, "period has no standard working days"
	}
	if !payee.HasContract {
		return outcomeSkipped, "no active contract"
	}
	if payee.GrossSalary <= 0 {
		return outcomeSkipped, "contract gross salary is not positive"
	}

	summary, err := s.attendance.MonthlySummary(ctx, employeeID, month, year)
	if err != nil {
		return outcomeSkipped, fmt.Sprintf("attendance summary failed: %v", err)
	}

	allowanceTotal, err := s.allowances.SumActiveForMonth(ctx, employeeID, month, year)
	if err != nil {
		return outcomeSkipped, fmt.Sprintf("allowance lookup failed: %v", err)
	}

	salary := s.computeSalary(payee, summary, allowanceTotal, month, year, standardDays)

	if err := s.upsertSalary(ctx, &salary); err != nil {
		var skip *skipError
		if errors.As(err, &skip) {
			return outcomeSkipped, skip.reason
		}
		return outcomeSkipped, fmt.Sprintf("persist failed: %v", err)
	}
	if salary.createdNew {
		return outcomeCreated, ""
	}
	return outcomeUpdated, ""
}

type computedSalary struct {
	Salary
	createdNew bool
}

// computeSalary prorates pay by approved attendance and runs the
// statutory withholdings. Decimal all the way through; whole VND only
// at the assignment into the row. Approved attendance above the
// standard day count (weekend or holiday presence) is paid at the
// daily rate, not capped.
func (s *service) computeSalary(
	payee employee.ActivePayee,
	summary attendance.MonthlySummary,
	allowanceTotal int64,
	month, year, standardDays int,
) computedSalary {
	daysPresent := summary.DaysPresent

	contractGross := decimal.NewFromInt(payee.GrossSalary)
	std := decimal.NewFromInt(int64(standardDays))

	basic := contractGross.
		Mul(decimal.NewFromInt(int64(daysPresent))).
		Div(std)

	hourly := contractGross.Div(std).Div(decimal.NewFromInt(hoursPerDay))
	overtime := hourly.
		Mul(overtimeMultiplier).
		Mul(decimal.NewFromFloat(summary.OvertimeHours))

	basicPay := basic.Round(0).IntPart()
	overtimePay := overtime.Round(0).IntPart()

	taxableGross := basicPay + overtimePay + allowanceTotal
	w := taxengine.Compute(taxableGross, payee.Dependents, s.policy)

	return computedSalary{
		Salary: Salary{
			ID:                    uuid.New(),
			EmployeeID:            payee.EmployeeID,
			Month:                 month,
			Year:                  year,
			ContractSalary:        payee.GrossSalary,
			GrossSalary:           taxableGross,
			AllowanceTotal:        allowanceTotal,
			StandardDays:          standardDays,
			DaysPresent:           daysPresent,
			OvertimeHours:         summary.OvertimeHours,
			BasicPay:              basicPay,
			OvertimePay:           overtimePay,
			SocialInsurance:       w.SocialInsurance,
			HealthInsurance:       w.HealthInsurance,
			UnemploymentInsurance: w.UnemploymentInsurance,
			PersonalIncomeTax:     w.PersonalIncomeTax,
			NetSalary:             w.NetSalary,
			Status:                StatusDraft,
		},
	}
}

type skipError struct{ reason string }

func (e *skipError) Error() string { return e.reason }

func (s *service) upsertSalary(ctx context.Context, salary *computedSalary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := s.repo.FindByEmployeePeriod(ctx, salary.EmployeeID.String(), salary.Month, salary.Year)
	switch {
	case err == nil:
		if existing.Status != StatusDraft {
			return &skipError{reason: fmt.Sprintf("salary already %s", existing.Status)}
		}
		salary.ID = existing.ID
		affected, err := qtx.UpdateDraft(ctx, &salary.Salary)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Approved between our read and the guarded write.
			return &skipError{reason: "salary left DRAFT during the run"}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := qtx.Insert(ctx, &salary.Salary); err != nil {
			return err
		}
		salary.createdNew = true
	default:
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (s *service) Approve(ctx context.Context, id string) (SalaryResponse, error) {
	return s.transition(ctx, id, StatusDraft, StatusApproved, payrollerrors.ErrNotDraft)
}

func (s *service) MarkPaid(ctx context.Context, id string) (SalaryResponse, error) {
	return s.transition(ctx, id, StatusApproved, StatusPaid, payrollerrors.ErrNotApproved)
}

func (s *service) transition(ctx context.Context, id, from, to string, conflictErr error) (SalaryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SalaryResponse{}, payrollerrors.ErrInvalidSalaryID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	salary, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryResponse{}, payrollerrors.ErrSalaryNotFound
		}
		return SalaryResponse{}, err
	}

	affected, err := qtx.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return SalaryResponse{}, err
	}
	if affected == 0 {
		return SalaryResponse{}, conflictErr
	}

	if err := tx.Commit(); err != nil {
		return SalaryResponse{}, err
	}

	salary.Status = to
	s.logger.Info("salary status changed",
		zap.String("salary_id", id),
		zap.String("from", from),
		zap.String("to", to),
	)
	return mapToResponse(*salary), nil
}

func (s *service) GetByPeriod(ctx context.Context, month, year int) ([]SalaryResponse, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, payrollerrors.ErrInvalidPeriod
	}
	rows, err := s.repo.FindByPeriod(ctx, month, year)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]SalaryResponse, error) {
	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (SalaryResponse, error) {
	salary, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalaryResponse{}, payrollerrors.ErrSalaryNotFound
		}
		return SalaryResponse{}, err
	}
	return mapToResponse(*salary), nil
}

func (s *service) enqueueRunCompletedEvent(ctx context.Context, runID, actorID string, result RunResult) error {
	event := events.PayrollRunCompletedEvent{
		EventType:   "payroll.run.completed",
		RunID:       runID,
		Month:       result.Month,
		Year:        result.Year,
		Created:     result.Created,
		Updated:     result.Updated,
		Skipped:     len(result.Skipped),
		TriggeredBy: actorID,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_run",
		AggregateID:   runID,
		EventType:     event.EventType,
		Topic:         events.PayrollRunTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// weekdaysInMonth counts Monday through Friday occurrences.
func weekdaysInMonth(month, year int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	count := 0
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

func mapToResponse(s Salary) SalaryResponse {
	return SalaryResponse{
		ID:                    s.ID.String(),
		EmployeeID:            s.EmployeeID.String(),
		Month:                 s.Month,
		Year:                  s.Year,
		ContractSalary:        s.ContractSalary,
		GrossSalary:           s.GrossSalary,
		AllowanceTotal:        s.AllowanceTotal,
		StandardDays:          s.StandardDays,
		DaysPresent:           s.DaysPresent,
		OvertimeHours:         s.OvertimeHours,
		BasicPay:              s.BasicPay,
		OvertimePay:           s.OvertimePay,
		SocialInsurance:       s.SocialInsurance,
		HealthInsurance:       s.HealthInsurance,
		UnemploymentInsurance: s.UnemploymentInsurance,
		PersonalIncomeTax:     s.PersonalIncomeTax,
		NetSalary:             s.NetSalary,
		Status:                s.Status,
	}
}

func mapToListResponse(rows []Salary) []SalaryResponse {
	resp := make([]SalaryResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp
}
