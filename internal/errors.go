package internal

import (
	"encoding/json"
	"errors"
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
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDate       ErrorCode = "INVALID_DATE"
	ErrCodeInvalidYear       ErrorCode = "INVALID_YEAR"
	ErrCodeInvalidMonth      ErrorCode = "INVALID_MONTH"
	ErrCodeInvalidClosingDay ErrorCode = "INVALID_CLOSING_DAY"
	ErrCodeInvalidMemo       ErrorCode = "INVALID_MEMO"

	ErrCodeRatioSumMismatch     ErrorCode = "RATIO_SUM_MISMATCH"
	ErrCodeInvalidRatio         ErrorCode = "INVALID_RATIO"
	ErrCodeAmountSumMismatch    ErrorCode = "AMOUNT_SUM_MISMATCH"
	ErrCodeEmptyMemberSelection ErrorCode = "EMPTY_MEMBER_SELECTION"
	ErrCodeBearerNotInMembers   ErrorCode = "BEARER_NOT_IN_MEMBERS"
	ErrCodeInvalidSplitMethod   ErrorCode = "INVALID_SPLIT_METHOD"
	ErrCodeDuplicateMember      ErrorCode = "DUPLICATE_MEMBER"

	ErrCodeNotGroupMember      ErrorCode = "NOT_GROUP_MEMBER"
	ErrCodeNotGroupOwner       ErrorCode = "NOT_GROUP_OWNER"
	ErrCodeNotPaymentRecipient ErrorCode = "NOT_PAYMENT_RECIPIENT"

	ErrCodeSettlementExists  ErrorCode = "SETTLEMENT_ALREADY_EXISTS"
	ErrCodePeriodLocked      ErrorCode = "PERIOD_LOCKED"
	ErrCodeCannotRemoveOwner ErrorCode = "CANNOT_REMOVE_OWNER"

	ErrCodeExpenseNotFound    ErrorCode = "EXPENSE_NOT_FOUND"
	ErrCodeSettlementNotFound ErrorCode = "SETTLEMENT_NOT_FOUND"
	ErrCodePaymentNotFound    ErrorCode = "PAYMENT_NOT_FOUND"
	ErrCodeCategoryNotFound   ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeGroupNotFound      ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeMemberNotFound     ErrorCode = "MEMBER_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError carrying the same code, so freshly built errors
// compare equal to the package sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of e wrapping cause. Sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	c := *e
	c.Cause = cause
	return &c
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	c := *e
	c.Details = details
	return &c
}

// WithMessage returns a copy of e with a more specific message.
func (e *AppError) WithMessage(message string) *AppError {
	c := *e
	c.Message = message
	return &c
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

var (
	ErrEmptyMemberSelection = NewValidationError("select at least one member", ErrCodeEmptyMemberSelection)
	ErrRatioSumMismatch     = NewValidationError("ratios must add up to 100", ErrCodeRatioSumMismatch)
	ErrInvalidRatio         = NewValidationError("ratio must be between 0 and 100", ErrCodeInvalidRatio)
	ErrAmountSumMismatch    = NewValidationError("split amounts must add up to the expense amount", ErrCodeAmountSumMismatch)
	ErrBearerNotInMembers   = NewValidationError("bearer must be one of the selected members", ErrCodeBearerNotInMembers)
	ErrInvalidSplitMethod   = NewValidationError("unknown split method", ErrCodeInvalidSplitMethod)
	ErrDuplicateMember      = NewValidationError("member selected more than once", ErrCodeDuplicateMember)
	ErrInvalidAmount        = NewValidationError("amount must be positive", ErrCodeInvalidAmount)

	ErrNotGroupMember      = NewForbiddenError("not a group member", ErrCodeNotGroupMember)
	ErrNotGroupOwner       = NewForbiddenError("only the group owner can perform this action", ErrCodeNotGroupOwner)
	ErrNotPaymentRecipient = NewForbiddenError("only the payment recipient can confirm it", ErrCodeNotPaymentRecipient)

	ErrSettlementExists  = NewConflictError("settlement for this period is already confirmed", ErrCodeSettlementExists)
	ErrPeriodLocked      = NewConflictError("settled period, cannot edit or delete expenses", ErrCodePeriodLocked)
	ErrCannotRemoveOwner = NewConflictError("the group owner cannot be removed", ErrCodeCannotRemoveOwner)

	ErrExpenseNotFound    = NewNotFoundError("expense not found", ErrCodeExpenseNotFound)
	ErrSettlementNotFound = NewNotFoundError("settlement not found", ErrCodeSettlementNotFound)
	ErrPaymentNotFound    = NewNotFoundError("settlement payment not found", ErrCodePaymentNotFound)
	ErrCategoryNotFound   = NewNotFoundError("category not found", ErrCodeCategoryNotFound)
	ErrGroupNotFound      = NewNotFoundError("group not found", ErrCodeGroupNotFound)
	ErrUserNotFound       = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrMemberNotFound     = NewNotFoundError("user is not a member of this group", ErrCodeMemberNotFound)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

// Is is errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
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
