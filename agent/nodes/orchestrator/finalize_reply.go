package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	last := in.lastMessage()
	if last == nil {
		return GraphOutput{}, ErrEmptyHistory
	}
	reply := trimmed(last.Content)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: assistant returned empty reply", contractx.ErrSchemaViolation)
	}

	return GraphOutput{
		Messages:  in.Messages,
		Reply:     reply,
		Decisions: in.Decisions,
		Cycles:    in.Cycles,
	}, nil
}
