package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	toolx "github.com/tanpawarit/task-maistro/agent/tool"
)

type deciderImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Decider = (*deciderImpl)(nil)

func newDecider(ctx context.Context, chatModel einomodel.ToolCallingChatModel, systemPrompt string) (*deciderImpl, error) {
	toolModel, err := chatModel.WithTools([]*schema.ToolInfo{toolx.ChooseTaskInfo()})
	if err != nil {
		return nil, fmt.Errorf("%w: bind ChooseTask: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileDecisionGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &deciderImpl{runner: runner}, nil
}

func (d *deciderImpl) Decide(ctx context.Context, req contractx.DecisionRequest) (*schema.Message, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("%w: decision needs at least one message", contractx.ErrValidation)
	}

	profile, err := renderProfile(req.Profile)
	if err != nil {
		return nil, err
	}

	msg, err := d.runner.Invoke(ctx, map[string]any{
		varUserProfile: profile,
		varMessages:    req.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: decision invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty decision response", contractx.ErrSchemaViolation)
	}
	return msg, nil
}

func renderProfile(p *contractx.Profile) (string, error) {
	if p == nil || p.IsEmpty() {
		return "", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("%w: marshal profile: %v", contractx.ErrValidation, err)
	}
	return string(raw), nil
}
