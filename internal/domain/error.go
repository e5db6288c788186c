package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// These map to HTTP status codes and determine user-facing messages.
const (
	ECONFLICT     = "conflict"         // business-rule violation (already paid, cannot cancel, ...)
	EINTERNAL     = "internal"         // datastore/unexpected failure (hide details)
	EINVALID      = "invalid"          // validation error (bad input)
	ENOTFOUND     = "not_found"        // referenced entity absent
	EUNAUTHORIZED = "unauthorized"     // authentication required
	EFORBIDDEN    = "forbidden"        // authenticated but not permitted
	EPAYMENT      = "payment_required" // payment gateway rejected or payment missing
	EUNAVAILABLE  = "unavailable"      // entity exists but is not purchasable (unpublished)
	ERATELIMIT    = "rate_limit"       // client exceeded the request rate
	ETOOLARGE     = "too_large"        // request body over the size limit
)

// Error is an application error with a machine-readable code.
// It implements the error interface and supports wrapping, so callers
// discriminate with errors.As/Is on the Code field rather than matching
// message substrings.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is safe to show to users.
	Message string

	// Op is the operation where the error occurred (e.g. "cart.add_item").
	Op string

	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code and message. It lets the
// sentinel errors declared in the service package work with errors.Is even
// after being re-wrapped with an Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// ErrorCode extracts the code from an error.
// Returns EINTERNAL for non-domain errors so unknown failures never leak.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage extracts a user-facing message from an error.
// Internal errors get a generic message; details stay in the server log.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != EINTERNAL {
		return e.Message
	}
	return "An internal error occurred. Please try again later."
}

// ErrorOp extracts the operation from an error (for logging).
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Errorf creates a new domain error with a formatted message.
func Errorf(code, op, format string, args ...any) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps err with a code and operation, preserving it for logging.
// Returns nil if err is nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// WithOp returns a copy of err with Op set, when err is a domain error.
// Sentinels are declared without an Op; services attach it at the call site.
func WithOp(err error, op string) error {
	var e *Error
	if errors.As(err, &e) {
		return &Error{Code: e.Code, Message: e.Message, Op: op, Err: e.Err}
	}
	return err
}

// NotFound creates a not-found error for a resource.
func NotFound(op, resource string, id int64) error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s not found: %d", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// Unauthorized creates an authentication error.
func Unauthorized(op, message string) error {
	return &Error{Code: EUNAUTHORIZED, Op: op, Message: message}
}

// Forbidden creates an authorization error.
func Forbidden(op, message string) error {
	return &Error{Code: EFORBIDDEN, Op: op, Message: message}
}

// Conflict creates a business-rule conflict error.
func Conflict(op, message string) error {
	return &Error{Code: ECONFLICT, Op: op, Message: message}
}

// Internal wraps an unexpected error. The user-facing message will be
// generic; the underlying error is kept for logging.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}
