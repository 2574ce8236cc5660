package leaveerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidPersonID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid person id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidDayLength = apperror.New(
		apperror.CodeInvalidInput,
		"invalid day_length",
		http.StatusBadRequest,
	)
	ErrHalfDayNotSingleDay = apperror.New(
		apperror.CodeInvalidInput,
		"half days must start and end on the same date",
		http.StatusBadRequest,
	)
	ErrInvalidHolidayReplacement = apperror.New(
		apperror.CodeInvalidInput,
		"invalid holiday replacement",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrNotAuthorized = apperror.New(
		apperror.CodeForbidden,
		"not authorized for this leave operation",
		http.StatusForbidden,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave status transition",
		http.StatusBadRequest,
	)
	ErrRequesterChanged = apperror.New(
		apperror.CodeInvalidState,
		"the person of a leave cannot be changed",
		http.StatusBadRequest,
	)
	ErrRemindTooEarly = apperror.New(
		apperror.CodeTooEarly,
		"reminder is possible two days after applying",
		http.StatusUnprocessableEntity,
	)
	ErrRemindAlreadySentToday = apperror.New(
		apperror.CodeAlreadySent,
		"reminder was already sent today",
		http.StatusConflict,
	)
	ErrConcurrentModification = apperror.New(
		apperror.CodeConflict,
		"leave was modified concurrently, reload and retry",
		http.StatusConflict,
	)
)
