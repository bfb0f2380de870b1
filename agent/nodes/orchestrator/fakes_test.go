package orchestratornode

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

type fakeBackend struct {
	taskCount json.RawMessage
	shiftLogs json.RawMessage
	err       error

	taskCalls  [][2]string
	shiftCalls [][3]string
}

func (f *fakeBackend) TaskCount(ctx context.Context, authToken, workforceID string) (json.RawMessage, error) {
	f.taskCalls = append(f.taskCalls, [2]string{authToken, workforceID})
	if f.err != nil {
		return nil, f.err
	}
	return f.taskCount, nil
}

func (f *fakeBackend) ShiftLogs(ctx context.Context, authToken, employmentID, shiftStart string) (json.RawMessage, error) {
	f.shiftCalls = append(f.shiftCalls, [3]string{authToken, employmentID, shiftStart})
	if f.err != nil {
		return nil, f.err
	}
	return f.shiftLogs, nil
}

type fakeExtractor struct {
	result contractx.ExtractResult
	err    error
	reqs   []contractx.ExtractRequest
}

func (f *fakeExtractor) Extract(ctx context.Context, req contractx.ExtractRequest) (contractx.ExtractResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return contractx.ExtractResult{}, f.err
	}
	return f.result, nil
}

type fakeDecider struct {
	responses []*schema.Message
	err       error
	reqs      []contractx.DecisionRequest
}

func (f *fakeDecider) Decide(ctx context.Context, req contractx.DecisionRequest) (*schema.Message, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.reqs) > len(f.responses) {
		return nil, errors.New("no fake decision left")
	}
	return f.responses[len(f.reqs)-1], nil
}

func chooseTask(id, updateType string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID:   id,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      "ChooseTask",
					Arguments: `{"update_type":"` + updateType + `"}`,
				},
			},
		},
	}
}

func newState(session contractx.Session, msgs ...*schema.Message) *GraphState {
	return &GraphState{
		Session:   session,
		Messages:  msgs,
		Now:       time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		MaxCycles: DefaultMaxCycles,
	}
}
