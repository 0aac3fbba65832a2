package internal

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

// ErrorCode doubles as the message ID looked up in the locale bundles.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingFields    ErrorCode = "MISSING_FIELDS"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidFileName  ErrorCode = "INVALID_FILE_NAME"
	ErrCodeFileTooLarge     ErrorCode = "FILE_TOO_LARGE"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnresolvedRole     ErrorCode = "UNRESOLVED_ROLE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeForbiddenRole      ErrorCode = "FORBIDDEN_ROLE"

	ErrCodeRequestNotFound ErrorCode = "REQUEST_NOT_FOUND"
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodeFileNotFound    ErrorCode = "FILE_NOT_FOUND"
	ErrCodeNothingToExport ErrorCode = "NOTHING_TO_EXPORT"

	ErrCodeInvalidTransition  ErrorCode = "INVALID_TRANSITION"
	ErrCodeConcurrentUpdate   ErrorCode = "CONCURRENT_UPDATE"
	ErrCodeDuplicateRequestID ErrorCode = "DUPLICATE_REQUEST_ID"
	ErrCodeUserExists         ErrorCode = "USER_EXISTS"

	ErrCodeEmptyUserStore   ErrorCode = "EMPTY_USER_STORE"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"

	ErrCodeUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamError   ErrorCode = "UPSTREAM_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError carrying the same code, so copies made by Wrap
// still satisfy errors.Is against the package sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap returns a copy of e with cause attached. Sentinels are never mutated.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewExternalError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

var (
	ErrMissingFields = NewValidationError("required fields are missing", ErrCodeMissingFields)
	ErrInvalidStatus = NewValidationError("unknown request status", ErrCodeInvalidStatus)
	ErrInvalidRole   = NewValidationError("unknown role", ErrCodeInvalidRole)
	ErrInvalidDate   = NewValidationError("invalid date, expected YYYY-MM-DD", ErrCodeInvalidDate)
	ErrInvalidBody   = NewValidationError("invalid request body", ErrCodeInvalidBody)
	ErrInvalidFile   = NewValidationError("invalid file name", ErrCodeInvalidFileName)
	ErrFileTooLarge  = NewValidationError("file too large", ErrCodeFileTooLarge)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUnresolvedRole     = NewUnauthorizedError("account role is not recognized", ErrCodeUnresolvedRole)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrForbiddenRole      = NewForbiddenError("role is not allowed to perform this action", ErrCodeForbiddenRole)

	ErrRequestNotFound = NewNotFoundError("request not found", ErrCodeRequestNotFound)
	ErrUserNotFound    = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrFileNotFound    = NewNotFoundError("file not found", ErrCodeFileNotFound)
	ErrNothingToExport = NewNotFoundError("no requests match the export criteria", ErrCodeNothingToExport)

	ErrInvalidTransition  = NewConflictError("status transition is not allowed", ErrCodeInvalidTransition)
	ErrConcurrentUpdate   = NewConflictError("request was modified concurrently", ErrCodeConcurrentUpdate)
	ErrDuplicateRequestID = NewConflictError("request id already exists", ErrCodeDuplicateRequestID)
	ErrUserExists         = NewConflictError("a user with this email already exists", ErrCodeUserExists)

	ErrEmptyUserStore = &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeEmptyUserStore,
		Message:    "user store is empty or unavailable",
		StatusCode: http.StatusInternalServerError,
	}
	ErrStoreUnavailable = &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeStoreUnavailable,
		Message:    "store unavailable",
		StatusCode: http.StatusInternalServerError,
	}

	ErrUpstreamTimeout = NewExternalError("upstream did not answer in time", ErrCodeUpstreamTimeout)
	ErrUpstreamError   = NewExternalError("upstream call failed", ErrCodeUpstreamError)
)

// IsAppError finds an AppError anywhere in err's chain.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Response is the error envelope every handler writes.
type Response struct {
	Success bool        `json:"success"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *AppError) ToHTTPResponse() (int, Response) {
	return e.StatusCode, Response{Success: false, Code: e.Code, Message: e.GetDetailedMessage(), Details: e.Details}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
