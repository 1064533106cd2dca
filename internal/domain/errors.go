package domain

import "fmt"

// PipelineError is the base error type with context.
type PipelineError struct {
	Phase      string // "config", "extract", "convert", "run", "report", "annotate"
	File       string
	LineNumber int
	Message    string
	Cause      error
}

func (e *PipelineError) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	if e.LineNumber > 0 {
		s += fmt.Sprintf(":%d", e.LineNumber)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	return s
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewError creates a new PipelineError.
func NewError(phase, file string, line int, message string, cause error) *PipelineError {
	return &PipelineError{
		Phase:      phase,
		File:       file,
		LineNumber: line,
		Message:    message,
		Cause:      cause,
	}
}

// ExtractionError means no recognizable case structure was found at all.
// It is fatal and aborts before any execution.
type ExtractionError struct {
	File    string
	Message string
}

func (e *ExtractionError) Error() string {
	s := "extraction failed"
	if e.File != "" {
		s += " for " + e.File
	}
	return s + ": " + e.Message
}

// AssertionError records an expected condition that evaluated false.
// The case is marked failed and the suite continues. Never retried.
type AssertionError struct {
	Action   Action
	Target   string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s %q: expected %q, got %q", e.Action, e.Target, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s %q: condition not met", e.Action, e.Target)
}

// AutomationError is a driver-level fault: timeout, element not found,
// navigation error. Transient faults are retried once before the case is
// marked failed.
type AutomationError struct {
	Op        string
	Target    string
	Transient bool
	Cause     error
}

func (e *AutomationError) Error() string {
	msg := fmt.Sprintf("automation fault during %s", e.Op)
	if e.Target != "" {
		msg += fmt.Sprintf(" on %q", e.Target)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AutomationError) Unwrap() error {
	return e.Cause
}

// OrchestrationError means the automation session or the target could not be
// established at all. It is fatal and aborts the run.
type OrchestrationError struct {
	Message string
	Cause   error
}

func (e *OrchestrationError) Error() string {
	if e.Cause != nil {
		return "orchestration failed: " + e.Message + ": " + e.Cause.Error()
	}
	return "orchestration failed: " + e.Message
}

func (e *OrchestrationError) Unwrap() error {
	return e.Cause
}
