package types

import "fmt"

// InvalidInputError marks malformed, empty, oversized or badly charactered
// input. Its message is shown to the user verbatim.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

func NewInvalidInput(format string, args ...any) error {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}

// SecurityViolationError reports a deny-listed pattern found in the input.
type SecurityViolationError struct {
	Pattern string
}

func (e *SecurityViolationError) Error() string {
	return "forbidden pattern detected: " + e.Pattern
}

// RemoteServiceError is returned when the generative service produced no
// usable content within the retry budget.
type RemoteServiceError struct {
	Msg          string
	FinishReason string
	Err          error
}

func (e *RemoteServiceError) Error() string {
	s := e.Msg
	if e.FinishReason != "" {
		s += " (finish_reason=" + e.FinishReason + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// CalculationError is a local, non-network failure inside a domain module.
type CalculationError struct {
	Msg string
	Err error
}

func (e *CalculationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *CalculationError) Unwrap() error { return e.Err }

// ModuleNotFoundError means the parser produced a domain with no registered
// module.
type ModuleNotFoundError struct {
	Domain Domain
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("no module registered for domain %q", string(e.Domain))
}
