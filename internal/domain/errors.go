package domain

import "fmt"

// ClassificationError reports that no single valid option could be resolved
// from the model output. It is never silently defaulted; callers decide
// whether to retry or escalate.
type ClassificationError struct {
	Reason string
	Err    error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("classification failed: %s", e.Reason)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ExtractionError reports that the model returned a value that does not
// conform to the declared schema: wrong enum member, non-numeric amount,
// unparseable date. A Transaction born from a failed extraction must not
// be persisted.
type ExtractionError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := "extraction failed"
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IntentResolutionError reports that the agent could not map the message to
// any tool or produce a final answer. It aborts the whole orchestration call.
type IntentResolutionError struct {
	Reason string
}

func (e *IntentResolutionError) Error() string {
	return "intent resolution failed: " + e.Reason
}

// ValidationError reports a missing or invalid required input, such as a nil
// transaction passed to update or delete. Inside the agent it is captured
// into the response envelope rather than aborting the run.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
