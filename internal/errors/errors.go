// Package errors provides structured error types for timebuddy.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for timebuddy.
const (
	// Schedule errors
	CodeScheduleNotFound Code = "SCHEDULE_NOT_FOUND"
	CodeBlockNotFound    Code = "BLOCK_NOT_FOUND"

	// Storage errors
	CodeStorageFailure Code = "STORAGE_FAILURE"

	// Upstream errors
	CodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"

	// Request errors
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryInternal
	CategoryUnavailable
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeScheduleNotFound:  CategoryNotFound,
	CodeBlockNotFound:     CategoryNotFound,
	CodeStorageFailure:    CategoryInternal,
	CodeOracleUnavailable: CategoryUnavailable,
	CodeInvalidRequest:    CategoryBadRequest,
	CodeConfigInvalid:     CategoryBadRequest,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryUnavailable:
		return 503
	default:
		return 500
	}
}

// TBError is the structured error type for timebuddy.
type TBError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *TBError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *TBError) Unwrap() error {
	return e.Cause
}

// Category returns the error category for HTTP status mapping.
func (e *TBError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *TBError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// MarshalJSON implements json.Marshaler.
// The cause is never serialized, so driver-level detail stays out of
// API responses.
func (e *TBError) MarshalJSON() ([]byte, error) {
	type alias TBError
	return json.Marshal((*alias)(e))
}

// Is reports whether target is a TBError with the same code.
func (e *TBError) Is(target error) bool {
	t, ok := target.(*TBError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *TBError) WithCause(err error) *TBError {
	return &TBError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrScheduleNotFound returns an error when no schedule exists for a date.
func ErrScheduleNotFound(date string) *TBError {
	return &TBError{
		Code: CodeScheduleNotFound,
		What: fmt.Sprintf("no schedule found for %s", date),
		Why:  "No schedule has been generated and stored for this date",
		Fix:  "Generate a schedule first with POST /api/schedules",
	}
}

// ErrBlockNotFound returns an error when a block id is absent from a schedule.
func ErrBlockNotFound(date string, blockID int) *TBError {
	return &TBError{
		Code: CodeBlockNotFound,
		What: fmt.Sprintf("block %d not found in schedule for %s", blockID, date),
		Why:  "The stored timeline for this date has no block with this id",
		Fix:  "Fetch the current schedule to see valid block ids",
	}
}

// ErrStorage returns an error for a failed persistence operation.
func ErrStorage(op string, cause error) *TBError {
	return &TBError{
		Code:  CodeStorageFailure,
		What:  fmt.Sprintf("storage operation failed: %s", op),
		Why:   "The underlying database rejected the operation or is unavailable",
		Cause: cause,
	}
}

// ErrOracleUnavailable returns an error when the scheduling service cannot
// produce a schedule.
func ErrOracleUnavailable(cause error) *TBError {
	return &TBError{
		Code:  CodeOracleUnavailable,
		What:  "schedule generation service is unavailable",
		Why:   "The AI scheduling service could not be reached or returned an error",
		Fix:   "Check that the scheduling service is running, then retry",
		Cause: cause,
	}
}

// ErrInvalidRequest returns an error for a malformed request.
func ErrInvalidRequest(reason string) *TBError {
	return &TBError{
		Code: CodeInvalidRequest,
		What: "invalid request",
		Why:  reason,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(field, reason string) *TBError {
	return &TBError{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
		Fix:  "Check the timebuddy config file and fix the invalid field",
	}
}

// AsTBError attempts to convert an error to a TBError.
// Returns nil if the error is not a TBError.
func AsTBError(err error) *TBError {
	var tbErr *TBError
	if As(err, &tbErr) {
		return tbErr
	}
	return nil
}

// As walks the error chain looking for a TBError.
func As(err error, target **TBError) bool {
	for err != nil {
		if tbErr, ok := err.(*TBError); ok {
			*target = tbErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// Wrap wraps a generic error into a TBError with unknown code.
func Wrap(err error, what string) *TBError {
	return &TBError{
		Code:  Code("UNKNOWN"),
		What:  what,
		Cause: err,
	}
}
