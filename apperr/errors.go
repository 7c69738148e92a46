package apperr

import (
	stderrors "errors"
	"fmt"
)

// AppError is the structured error type raised for invariant violations.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode
	// Message is a human-readable description.
	Message string
	// Details contains additional context, e.g. the cyclic node names or
	// the offending pipe path.
	Details map[string]any
	// Cause is the underlying error that caused this error, if any.
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error { return e.Cause }

// Errno returns the POSIX-ish integer errno for this error's code.
func (e *AppError) Errno() int { return ErrnoOf(e.Code) }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// BadDescriptor creates an EBADF error for an operation on fd.
func BadDescriptor(fd int) *AppError {
	return New(ErrCodeBadDescriptor, fmt.Sprintf("no open descriptor %d", fd)).
		WithDetail("fd", fd)
}

// BrokenPipe creates an EPIPE error carrying the writer's recorded errno.
func BrokenPipe(path string, writerErrno int) *AppError {
	return New(ErrCodeBrokenPipe, fmt.Sprintf("writer for %q errored", path)).
		WithDetail("path", path).
		WithDetail("writer_errno", writerErrno)
}

// NotFound creates an ENOENT error for a missing resource.
func NotFound(kind, name string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s %q not found", kind, name)).
		WithDetail("kind", kind).
		WithDetail("name", name)
}

// Cycle creates an ECYCLE error naming the cyclic chain.
func Cycle(chain []string) *AppError {
	return New(ErrCodeCycle, fmt.Sprintf("dependency cycle: %v", chain)).
		WithDetail("chain", chain)
}

// AlreadyExists creates an EEXIST error for a duplicate name.
func AlreadyExists(kind, name string) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("%s %q already exists", kind, name)).
		WithDetail("kind", kind).
		WithDetail("name", name)
}

// InvalidArgument creates an EINVAL error.
func InvalidArgument(reason string) *AppError {
	return New(ErrCodeInvalidArgument, reason)
}

// Is reports whether err is an *AppError carrying the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As extracts an *AppError from err, following the Unwrap chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
