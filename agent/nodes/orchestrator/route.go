package orchestratornode

import (
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	toolx "github.com/tanpawarit/task-maistro/agent/tool"
)

const (
	NodeFinalize           = "finalize_reply"
	NodeUpdateProfile      = "update_profile"
	NodeFetchTaskCount     = "fetch_task_count"
	NodeCreateShiftSummary = "create_shift_summary"
)

// Route maps the model's last message to the next node. A message without
// tool calls ends the turn; only the first tool call is considered.
func Route(msg *schema.Message) (string, contractx.Decision, error) {
	if msg == nil || len(msg.ToolCalls) == 0 {
		return NodeFinalize, contractx.DecisionNone, nil
	}

	decision, err := toolx.ParseDecision(msg.ToolCalls[0])
	if err != nil {
		return "", contractx.DecisionNone, err
	}

	switch decision {
	case contractx.DecisionUser:
		return NodeUpdateProfile, decision, nil
	case contractx.DecisionFetchTaskCount:
		return NodeFetchTaskCount, decision, nil
	case contractx.DecisionCreateShiftSummary:
		return NodeCreateShiftSummary, decision, nil
	default:
		return "", contractx.DecisionNone, &contractx.DecisionError{ToolCallID: msg.ToolCalls[0].ID, Value: string(decision)}
	}
}

// RouteState is the branch condition used by the turn graph.
func RouteState(in *GraphState) (string, error) {
	next, decision, err := Route(in.lastMessage())
	if err != nil {
		return "", err
	}
	if decision != contractx.DecisionNone {
		in.Decisions = append(in.Decisions, decision)
	}
	return next, nil
}
