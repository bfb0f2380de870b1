package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	toolx "github.com/tanpawarit/task-maistro/agent/tool"
)

func FetchTaskCount(
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

	count, err := backend.TaskCount(ctx, in.Session.AuthToken, in.Session.WorkforceID)
	if err != nil {
		return nil, err
	}

	in.appendToolResult(toolx.RelayMessage(count), call)
	return in, nil
}
