package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a client-visible error with a structured error code.
//
// Codes follow the format KV-<AREA>-<NNNN>, where the number mirrors the
// closest HTTP status (4000 bad request, 4130 too large, 4290 rate limited).
type DomainError struct {
	Code    string // Error code (e.g., "KV-PROT-4001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Protocol Errors (PROT)
// Surfaced to the client as an error reply; the connection stays open
// unless noted otherwise.
// ============================================================================

var (
	// ErrEmptyRequest indicates a request line with no tokens.
	ErrEmptyRequest = NewDomainError("KV-PROT-4000", "empty request")

	// ErrUnknownOperation indicates the first token names no supported operation.
	ErrUnknownOperation = NewDomainError("KV-PROT-4001", "unknown operation")

	// ErrWrongArity indicates the operation received the wrong number of arguments.
	ErrWrongArity = NewDomainError("KV-PROT-4002", "wrong number of arguments")

	// ErrOperationTooLong indicates the operation token exceeds the length cap.
	ErrOperationTooLong = NewDomainError("KV-PROT-4003", "operation name too long")

	// ErrRequestTooLarge indicates the inbound buffer grew past the request size
	// limit without a delimiter. The connection is closed after the reply.
	ErrRequestTooLarge = NewDomainError("KV-PROT-4130", "request too large")
)

// ============================================================================
// Value Errors (VAL)
// ============================================================================

var (
	// ErrInvalidInteger indicates a ':'-prefixed value whose remainder is not
	// an unsigned 64-bit decimal integer.
	ErrInvalidInteger = NewDomainError("KV-VAL-4000", "value is not a valid unsigned integer")
)

// ============================================================================
// Rate Errors (RATE)
// ============================================================================

var (
	// ErrRateLimited indicates the connection exceeded its command rate.
	ErrRateLimited = NewDomainError("KV-RATE-4290", "rate limit exceeded")
)
