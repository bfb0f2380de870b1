package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	toolx "github.com/tanpawarit/task-maistro/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int

	inputs [][]*schema.Message
	tools  []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.tools = tools
	return f, nil
}

func strPtr(s string) *string { return &s }

func TestDeciderRendersProfileIntoSystemPrompt(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{
					{ID: "call_1", Function: schema.FunctionCall{Name: toolx.ToolChooseTask, Arguments: `{"update_type":"fetch_task_count"}`}},
				},
			},
		},
	}

	decider, err := newDecider(context.Background(), fake, "profile:\n{user_profile}")
	if err != nil {
		t.Fatalf("newDecider() error = %v", err)
	}
	if len(fake.tools) != 1 || fake.tools[0].Name != toolx.ToolChooseTask {
		t.Fatalf("expected ChooseTask to be bound, got %#v", fake.tools)
	}

	msg, err := decider.Decide(context.Background(), contractx.DecisionRequest{
		Messages: []*schema.Message{schema.UserMessage("how many tasks do I have?")},
		Profile:  &contractx.Profile{Name: strPtr("Alex"), Job: strPtr("nurse")},
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].ID != "call_1" {
		t.Fatalf("unexpected decision message: %#v", msg)
	}

	if len(fake.inputs) != 1 {
		t.Fatalf("expected one model call, got %d", len(fake.inputs))
	}
	input := fake.inputs[0]
	if len(input) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(input))
	}
	if input[0].Role != schema.System || !strings.Contains(input[0].Content, `{"name":"Alex","job":"nurse"}`) {
		t.Fatalf("profile not rendered into system prompt: %q", input[0].Content)
	}
	if input[1].Content != "how many tasks do I have?" {
		t.Fatalf("unexpected history message: %q", input[1].Content)
	}
}

func TestDeciderEmptyProfileRendersBlank(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{schema.AssistantMessage("hi", nil)},
	}
	decider, err := newDecider(context.Background(), fake, "profile=[{user_profile}]")
	if err != nil {
		t.Fatalf("newDecider() error = %v", err)
	}

	if _, err := decider.Decide(context.Background(), contractx.DecisionRequest{
		Messages: []*schema.Message{schema.UserMessage("hello")},
	}); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if got := fake.inputs[0][0].Content; got != "profile=[]" {
		t.Fatalf("unexpected system prompt: %q", got)
	}
}

func TestDeciderErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		decider, err := newDecider(context.Background(), &fakeToolCallingModel{}, "p {user_profile}")
		if err != nil {
			t.Fatalf("newDecider() error = %v", err)
		}
		_, err = decider.Decide(context.Background(), contractx.DecisionRequest{})
		if !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("model failure", func(t *testing.T) {
		t.Parallel()

		decider, err := newDecider(context.Background(), &fakeToolCallingModel{err: errors.New("rate limited")}, "p {user_profile}")
		if err != nil {
			t.Fatalf("newDecider() error = %v", err)
		}
		_, err = decider.Decide(context.Background(), contractx.DecisionRequest{
			Messages: []*schema.Message{schema.UserMessage("hi")},
		})
		if !errors.Is(err, contractx.ErrModelInvoke) {
			t.Fatalf("expected ErrModelInvoke, got %v", err)
		}
	})
}
