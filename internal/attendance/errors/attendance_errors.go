package attendanceerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidApproverID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approver id",
		http.StatusBadRequest,
	)
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"already checked in for this date",
		http.StatusConflict,
	)
	ErrNotCheckedIn = apperror.New(
		apperror.CodeConflict,
		"check-in not found for this date",
		http.StatusConflict,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeConflict,
		"already checked out for this date",
		http.StatusConflict,
	)
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		apperror.CodeConflict,
		"attendance is no longer pending approval",
		http.StatusConflict,
	)
)
