package contract

import (
	"errors"
	"fmt"
)

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidDecision = errors.New("invalid decision")
	ErrCycleLimit      = errors.New("turn cycle limit exceeded")
	ErrBackend         = errors.New("backend request failed")
)

// DecisionError reports a ChooseTask call the router cannot dispatch.
type DecisionError struct {
	ToolCallID string
	Value      string
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("%s: update_type=%q tool_call_id=%s", ErrInvalidDecision, e.Value, e.ToolCallID)
}

func (e *DecisionError) Unwrap() error {
	return ErrInvalidDecision
}
