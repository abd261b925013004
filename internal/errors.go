package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized    ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeTooManyRequests ErrorType = "TOO_MANY_REQUESTS"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal        ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody      ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodePasswordMismatch ErrorCode = "PASSWORD_MISMATCH"
	ErrCodeWeakPassword     ErrorCode = "WEAK_PASSWORD"

	ErrCodeInvalidCredentials           ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserNotActive                ErrorCode = "USER_NOT_ACTIVE"
	ErrCodeUserNotVerified              ErrorCode = "USER_NOT_VERIFIED"
	ErrCodeUserAlreadyExists            ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeAlreadyVerified              ErrorCode = "ALREADY_VERIFIED"
	ErrCodeAlreadyInVerificationProcess ErrorCode = "ALREADY_IN_VERIFICATION_PROCESS"
	ErrCodeInvalidOrExpiredCode         ErrorCode = "INVALID_OR_EXPIRED_CODE"
	ErrCodeInvalidToken                 ErrorCode = "INVALID_TOKEN"
	ErrCodeInvalidResetLink             ErrorCode = "INVALID_RESET_LINK"
	ErrCodeAuthenticationRequired       ErrorCode = "AUTHENTICATION_REQUIRED"

	ErrCodeTenantNotFound        ErrorCode = "TENANT_NOT_FOUND"
	ErrCodeCompanyAlreadyExists  ErrorCode = "COMPANY_ALREADY_EXISTS"
	ErrCodeUserAlreadyHasCompany ErrorCode = "USER_ALREADY_HAS_COMPANY"

	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeEmployeeNotFound  ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeCannotDeleteOwner ErrorCode = "CANNOT_DELETE_OWNER"
	ErrCodeDuplicateName     ErrorCode = "DUPLICATE_NAME"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"

	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
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

// Is matches on code so callers can compare against the constructors below
// with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
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

// NewConflictError reports a state conflict. The API surfaces these as 400s.
func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewTooManyRequestsError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeTooManyRequests,
		Code:       ErrCodeTooManyRequests,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// Constructors return a fresh value each call; shared sentinels would leak
// details and causes across requests.

func ErrInvalidCredentials() *AppError {
	return NewUnauthorizedError("No active account found with the given credentials", ErrCodeInvalidCredentials)
}

func ErrUserNotActive() *AppError {
	return NewUnauthorizedError("User account is not active", ErrCodeUserNotActive)
}

func ErrUserNotVerified() *AppError {
	return NewValidationError("Email address has not been verified", ErrCodeUserNotVerified)
}

func ErrUserAlreadyExists() *AppError {
	return NewConflictError("A user with this email already exists", ErrCodeUserAlreadyExists)
}

func ErrAlreadyVerified() *AppError {
	return NewConflictError("Email address is already verified", ErrCodeAlreadyVerified)
}

func ErrAlreadyInVerificationProcess(expiresAt time.Time) *AppError {
	return NewConflictError("A verification code was already sent to this email", ErrCodeAlreadyInVerificationProcess).
		WithDetails(map[string]interface{}{"expires_at": expiresAt.UTC()})
}

func ErrInvalidOrExpiredCode() *AppError {
	return NewValidationError("Verification code is invalid or has expired", ErrCodeInvalidOrExpiredCode)
}

func ErrInvalidToken() *AppError {
	return NewValidationError("Token is invalid or expired", ErrCodeInvalidToken)
}

func ErrInvalidResetLink() *AppError {
	return NewValidationError("Password reset link is invalid or has expired", ErrCodeInvalidResetLink)
}

func ErrAuthenticationRequired() *AppError {
	return NewUnauthorizedError("Authentication credentials were not provided", ErrCodeAuthenticationRequired)
}

func ErrTenantNotFound() *AppError {
	return NewNotFoundError("Tenant not found", ErrCodeTenantNotFound)
}

func ErrCompanyAlreadyExists() *AppError {
	return NewConflictError("Company with this name already exists", ErrCodeCompanyAlreadyExists)
}

func ErrUserAlreadyHasCompany() *AppError {
	return NewConflictError("User already has a company", ErrCodeUserAlreadyHasCompany)
}

func ErrCannotDeleteOwner() *AppError {
	return NewConflictError("The owner of a company cannot be deleted", ErrCodeCannotDeleteOwner)
}

func ErrDuplicateName(entity string) *AppError {
	return NewConflictError(fmt.Sprintf("%s with this name already exists", entity), ErrCodeDuplicateName)
}

func ErrForbidden() *AppError {
	return NewForbiddenError("You do not have permission to perform this action", ErrCodeForbidden)
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
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
