package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	toolx "github.com/tanpawarit/task-maistro/agent/tool"
)

// CreateShiftSummary relays the shift logs; the model writes the summary on
// its next cycle.
func CreateShiftSummary(
	ctx context.Context,
	in *GraphState,
	backend contractx.Backend,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	call, err := in.pendingCall()
	if err != nil {
		return nil, err
	}

	logs, err := backend.ShiftLogs(ctx, in.Session.AuthToken, in.Session.EmploymentID, in.Session.ShiftStart)
	if err != nil {
		return nil, err
	}

	in.appendToolResult(toolx.RelayMessage(logs), call)
	return in, nil
}
