package payrollerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"month must be 1-12 and year a plausible calendar year",
		http.StatusBadRequest,
	)
	ErrSalaryNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary record not found",
		http.StatusNotFound,
	)
	ErrInvalidSalaryID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid salary id",
		http.StatusBadRequest,
	)
	ErrNotDraft = apperror.New(
		apperror.CodeConflict,
		"salary record is not in DRAFT status",
		http.StatusConflict,
	)
	ErrNotApproved = apperror.New(
		apperror.CodeConflict,
		"salary record is not in APPROVED status",
		http.StatusConflict,
	)
	ErrRunInProgress = apperror.New(
		apperror.CodeConflict,
		"a payroll run for this period is already in progress",
		http.StatusConflict,
	)
	ErrNoActiveEmployees = apperror.New(
		apperror.CodeNotFound,
		"no active employees with an active contract for this period",
		http.StatusNotFound,
	)
)
