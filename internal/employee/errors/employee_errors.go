package employeeerrors

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
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeNotFound,
		"manager not found",
		http.StatusNotFound,
	)
	ErrManagerCycle = apperror.New(
		apperror.CodeInvalidInput,
		"manager assignment would create a reporting cycle",
		http.StatusUnprocessableEntity,
	)
	ErrSelfManager = apperror.New(
		apperror.CodeInvalidInput,
		"employee cannot be their own manager",
		http.StatusUnprocessableEntity,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"email is already registered",
		http.StatusConflict,
	)
	ErrInvalidHireDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid hire_date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrAlreadyTerminated = apperror.New(
		apperror.CodeConflict,
		"employee is already terminated",
		http.StatusConflict,
	)
)
