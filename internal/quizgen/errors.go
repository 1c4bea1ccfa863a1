package quizgen

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest     = errors.New("invalid generation request")
	ErrServiceUnavailable = errors.New("generation service unavailable")
	ErrNoUsableContent    = errors.New("no usable content generated")
)

// InvalidRequestError is returned before any service call is made.
type InvalidRequestError struct {
	Field   string
	Message string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InvalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

// ServiceUnavailableError wraps a failed or unparseable completion.
type ServiceUnavailableError struct {
	Op  string
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: generation service unavailable: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: generation service unavailable", e.Op)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

func (e *ServiceUnavailableError) Is(target error) bool { return target == ErrServiceUnavailable }

// NoUsableContentError means the service answered but nothing survived
// validation.
type NoUsableContentError struct {
	Op     string
	Report Report
}

func (e *NoUsableContentError) Error() string {
	return fmt.Sprintf("%s: no usable content generated (%d candidates, %d dropped)",
		e.Op, e.Report.Candidates, e.Report.Dropped)
}

func (e *NoUsableContentError) Is(target error) bool { return target == ErrNoUsableContent }

// Error codes shared by the HTTP API and failed job records.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeNoUsableContent    = "NO_USABLE_CONTENT"
)

// ErrorCode returns the code for a pipeline error, or "" for anything else.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrServiceUnavailable):
		return CodeServiceUnavailable
	case errors.Is(err, ErrNoUsableContent):
		return CodeNoUsableContent
	default:
		return ""
	}
}
