package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bundledomain "github.com/itfy/evoting/internal/bundle/domain"
	candidatedomain "github.com/itfy/evoting/internal/candidate/domain"
	categorydomain "github.com/itfy/evoting/internal/category/domain"
	coupondomain "github.com/itfy/evoting/internal/coupon/domain"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	paymentdomain "github.com/itfy/evoting/internal/payment/domain"
	votedomain "github.com/itfy/evoting/internal/vote/domain"
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
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
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

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, paymentdomain.ErrFraudRejected):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isInvalidStateError(err):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_state",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, paymentdomain.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
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
		errors.Is(err, eventdomain.ErrInvalidName),
		errors.Is(err, eventdomain.ErrInvalidSchedule),
		errors.Is(err, eventdomain.ErrInvalidStatus),
		errors.Is(err, eventdomain.ErrNotEnoughCandidates),
		errors.Is(err, candidatedomain.ErrInvalidName),
		errors.Is(err, candidatedomain.ErrInvalidEvent),
		errors.Is(err, candidatedomain.ErrCategoryMismatch),
		errors.Is(err, categorydomain.ErrInvalidName),
		errors.Is(err, categorydomain.ErrInvalidEvent),
		errors.Is(err, bundledomain.ErrInvalidDefinition),
		errors.Is(err, coupondomain.ErrInvalidCoupon),
		errors.Is(err, coupondomain.ErrInactive),
		errors.Is(err, coupondomain.ErrExpired),
		errors.Is(err, coupondomain.ErrScopeMismatch),
		errors.Is(err, coupondomain.ErrUsageExceeded),
		errors.Is(err, votedomain.ErrInvalidVoter),
		errors.Is(err, paymentdomain.ErrInvalidRequest),
		errors.Is(err, paymentdomain.ErrInvalidBundle):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, votedomain.ErrDuplicateVote),
		errors.Is(err, paymentdomain.ErrAlreadyPurchased),
		errors.Is(err, categorydomain.ErrDuplicateName),
		errors.Is(err, coupondomain.ErrDuplicateCode),
		errors.Is(err, candidatedomain.ErrVotingCodeConflict):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, paymentdomain.ErrAlreadyPurchased):
		return "already purchased"
	case errors.Is(err, votedomain.ErrDuplicateVote):
		return "duplicate vote"
	default:
		return "conflict"
	}
}

func isInvalidStateError(err error) bool {
	switch {
	case errors.Is(err, eventdomain.ErrInvalidTransition),
		errors.Is(err, eventdomain.ErrNotEditable),
		errors.Is(err, eventdomain.ErrWindowPassed),
		errors.Is(err, eventdomain.ErrResultsNotReady),
		errors.Is(err, candidatedomain.ErrAlreadyModerated),
		errors.Is(err, candidatedomain.ErrEventNotAccepting),
		errors.Is(err, bundledomain.ErrDefinitionInactive),
		errors.Is(err, bundledomain.ErrNotPurchased),
		errors.Is(err, bundledomain.ErrExhausted),
		errors.Is(err, bundledomain.ErrExpired),
		errors.Is(err, bundledomain.ErrScopeMismatch),
		errors.Is(err, votedomain.ErrEventNotActive),
		errors.Is(err, votedomain.ErrVotingNotStarted),
		errors.Is(err, votedomain.ErrVotingClosed),
		errors.Is(err, votedomain.ErrCandidateNotEligible),
		errors.Is(err, paymentdomain.ErrEventNotPurchasable),
		errors.Is(err, paymentdomain.ErrNotRefundable):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, eventdomain.ErrNotFound),
		errors.Is(err, candidatedomain.ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, bundledomain.ErrNotFound),
		errors.Is(err, bundledomain.ErrDefinitionNotFound),
		errors.Is(err, coupondomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
