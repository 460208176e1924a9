package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/commission/internal/account/domain"
	chargedomain "github.com/smallbiznis/commission/internal/charge/domain"
	commitdomain "github.com/smallbiznis/commission/internal/commit/domain"
	feedomain "github.com/smallbiznis/commission/internal/fee/domain"
	"github.com/smallbiznis/commission/internal/ingest"
	journaldomain "github.com/smallbiznis/commission/internal/journal/domain"
	ledgerdomain "github.com/smallbiznis/commission/internal/ledger/domain"
	"github.com/smallbiznis/commission/internal/lock"
	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
	"github.com/smallbiznis/commission/internal/pipeline"
	producerdomain "github.com/smallbiznis/commission/internal/producer/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Codes   []string          `json:"codes,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var (
		formatErr      *ingest.FormatError
		pipelineErr    *pipeline.ValidationError
		unsupportedErr *producerdomain.UnsupportedProducerError
		overErr        *feedomain.OverAllocationError
		unallocatedErr *commitdomain.UnallocatedAccountsError
	)
	switch {
	case errors.As(err, &unallocatedErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unallocated_accounts",
			Message: "Some client account codes are missing deals.",
			Codes:   unallocatedErr.Codes,
		}
	case errors.Is(err, commitdomain.ErrUnbalancedJournal):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unbalanced_journal",
			Message: "Debits do not equal credits.",
		}
	case errors.As(err, &overErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "over_allocation",
			Message: overErr.Error(),
		}
	case errors.As(err, &unsupportedErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unsupported_producer",
			Message: unsupportedErr.Error(),
		}
	case errors.As(err, &formatErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "format_error",
			Message: formatErr.Error(),
		}
	case errors.As(err, &pipelineErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "validation_error",
			Message: pipelineErr.Error(),
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "request",
					Code:    err.Error(),
					Message: err.Error(),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		isOrganizationError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, commitdomain.ErrCommitInProgress),
		errors.Is(err, lock.ErrLockHeld),
		errors.Is(err, perioddomain.ErrMultipleOpenPeriods):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, journaldomain.ErrInvalidProducer),
		errors.Is(err, journaldomain.ErrMissingSource),
		errors.Is(err, journaldomain.ErrInvalidID),
		errors.Is(err, accountdomain.ErrInvalidProducer),
		errors.Is(err, accountdomain.ErrInvalidID),
		errors.Is(err, feedomain.ErrInvalidID),
		errors.Is(err, perioddomain.ErrInvalidID),
		errors.Is(err, commitdomain.ErrInvalidID),
		errors.Is(err, producerdomain.ErrInvalidCode):
		return true
	default:
		return false
	}
}

func isOrganizationError(err error) bool {
	switch {
	case errors.Is(err, journaldomain.ErrInvalidOrganization),
		errors.Is(err, accountdomain.ErrInvalidOrganization),
		errors.Is(err, feedomain.ErrInvalidOrganization),
		errors.Is(err, perioddomain.ErrInvalidOrganization),
		errors.Is(err, commitdomain.ErrInvalidOrganization),
		errors.Is(err, producerdomain.ErrInvalidOrganization),
		errors.Is(err, chargedomain.ErrInvalidOrganization),
		errors.Is(err, ledgerdomain.ErrInvalidOrganization):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, journaldomain.ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, accountdomain.ErrDealNotFound),
		errors.Is(err, perioddomain.ErrNotFound),
		errors.Is(err, commitdomain.ErrNotFound),
		errors.Is(err, producerdomain.ErrNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog returns the error type and code logged per request.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "internal_error", "internal_error"
	}
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}
