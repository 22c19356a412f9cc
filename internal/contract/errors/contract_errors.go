package contracterrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrInvalidContractID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid contract id",
		http.StatusBadRequest,
	)
	ErrContractNotFound = apperror.New(
		apperror.CodeNotFound,
		"contract not found",
		http.StatusNotFound,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must be after start_date",
		http.StatusBadRequest,
	)
	ErrNotDraft = apperror.New(
		apperror.CodeConflict,
		"only DRAFT contracts can be activated",
		http.StatusConflict,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
)
