package requesterrors

import (
	"net/http"

	"github.com/TaiVuViet-153/HR-Portal/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave balance not found",
		http.StatusNotFound,
	)
	ErrBalanceNotEnough = apperror.New(
		apperror.CodeInvalidState,
		"Leave balance is not enough",
		http.StatusUnprocessableEntity,
	)
	ErrApprovedRequestDelete = apperror.New(
		apperror.CodeInvalidState,
		"Approved leave request can not be deleted",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave type",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid request status",
		http.StatusBadRequest,
	)
	ErrMissingDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"Start date and end date are required",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"End date must not precede start date",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
)
