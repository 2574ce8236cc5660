package personerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrPersonNotFound = apperror.New(
		apperror.CodeNotFound,
		"person not found",
		http.StatusNotFound,
	)
	ErrInvalidPersonID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid person id",
		http.StatusBadRequest,
	)
)
