package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

const (
	ToolChooseTask = "ChooseTask"

	argUpdateType = "update_type"

	// ProfileUpdatedResult is the bookkeeping content of the tool message
	// emitted after a profile update. The assistant never surfaces it.
	ProfileUpdatedResult = "updated profile"
)

// ChooseTaskInfo is the single tool bound to the decision model.
func ChooseTaskInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolChooseTask,
		Desc: "Decision on what tool to use.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			argUpdateType: {
				Type:     schema.String,
				Desc:     "Which action to take for the user's latest message.",
				Enum:     []string{string(contractx.DecisionUser), string(contractx.DecisionFetchTaskCount), string(contractx.DecisionCreateShiftSummary)},
				Required: true,
			},
		}),
	}
}

// ParseDecision reads update_type from a ChooseTask call. Unknown values and
// undecodable arguments yield a *contractx.DecisionError.
func ParseDecision(call schema.ToolCall) (contractx.Decision, error) {
	raw := strings.TrimSpace(call.Function.Arguments)
	if name := strings.TrimSpace(call.Function.Name); name != "" && name != ToolChooseTask {
		return contractx.DecisionNone, &contractx.DecisionError{ToolCallID: call.ID, Value: name}
	}
	if !gjson.Valid(raw) {
		return contractx.DecisionNone, &contractx.DecisionError{ToolCallID: call.ID, Value: raw}
	}

	value := gjson.Get(raw, argUpdateType)
	decision := contractx.Decision(value.String())
	if value.Type != gjson.String || !decision.Valid() {
		return contractx.DecisionNone, &contractx.DecisionError{ToolCallID: call.ID, Value: value.Raw}
	}
	return decision, nil
}

// RelayMessage wraps a backend payload in the instruction the model relays
// to the user. The payload is passed through untouched.
func RelayMessage(payload json.RawMessage) string {
	return fmt.Sprintf("The server returned:\n%s\nRelay this information to the user", string(payload))
}
