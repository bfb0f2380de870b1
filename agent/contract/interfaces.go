package contract

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/eino/schema"
)

// Decider produces the assistant message for one orchestrator cycle: either a
// direct reply or a single ChooseTask call.
type Decider interface {
	Decide(ctx context.Context, req DecisionRequest) (*schema.Message, error)
}

// Extractor turns conversation history into profile documents, patching the
// existing ones when present.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error)
}

type Registry interface {
	Decider() Decider
	Extractor() Extractor
}

// Backend is the workforce API consumed by the fetch handlers.
type Backend interface {
	TaskCount(ctx context.Context, authToken, workforceID string) (json.RawMessage, error)
	ShiftLogs(ctx context.Context, authToken, employmentID, shiftStart string) (json.RawMessage, error)
}

type EventPublisher interface {
	PublishTurn(ctx context.Context, ev TurnEvent) error
}
