package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

const (
	toolProfile  = "Profile"
	toolPatchDoc = "PatchDoc"
)

var profileParameters = openai.FunctionParameters{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "description": "The user's name"},
		"job":  map[string]any{"type": "string", "description": "The user's job"},
	},
}

var patchDocParameters = openai.FunctionParameters{
	"type": "object",
	"properties": map[string]any{
		"json_doc_id": map[string]any{
			"type":        "string",
			"description": "Id of the existing document to patch.",
		},
		"planned_edits": map[string]any{
			"type":        "string",
			"description": "Short plan of the edits, or why none are needed.",
		},
		"patch": map[string]any{
			"type":        "object",
			"description": "JSON merge patch applied to the document. Set a field to null to remove it; use {} when nothing changes.",
			"properties": map[string]any{
				"name": map[string]any{"type": []string{"string", "null"}, "description": "The user's name"},
				"job":  map[string]any{"type": []string{"string", "null"}, "description": "The user's job"},
			},
		},
	},
	"required": []string{"json_doc_id", "planned_edits", "patch"},
}

type extractorImpl struct {
	client      *openai.Client
	model       string
	temperature float32
	template    einoprompt.ChatTemplate
}

var _ contractx.Extractor = (*extractorImpl)(nil)

func newExtractor(client *openai.Client, model string, temperature float32, instruction string) (*extractorImpl, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: extractor client is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: extractor model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, contractx.ErrPromptMissing
	}
	return &extractorImpl{
		client:      client,
		model:       strings.TrimSpace(model),
		temperature: temperature,
		template:    historyTemplate(instruction),
	}, nil
}

// Extract asks the model for exactly one tool call: Profile when the user
// has no document yet, PatchDoc against the stored document otherwise.
func (e *extractorImpl) Extract(ctx context.Context, req contractx.ExtractRequest) (contractx.ExtractResult, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	msgs, err := e.template.Format(ctx, map[string]any{
		varTime:     now.Format(time.RFC3339),
		varMessages: mergeMessageRuns(req.Messages),
	})
	if err != nil {
		return contractx.ExtractResult{}, fmt.Errorf("%w: format extraction prompt: %v", contractx.ErrValidation, err)
	}

	toolName, parameters, description := toolProfile, profileParameters, "This is the profile of the user you are chatting with."
	if len(req.Existing) > 0 {
		existing, err := json.Marshal(req.Existing)
		if err != nil {
			return contractx.ExtractResult{}, fmt.Errorf("%w: marshal existing docs: %v", contractx.ErrValidation, err)
		}
		msgs = append(msgs, schema.SystemMessage("Existing Profile documents:\n"+string(existing)))
		toolName, parameters, description = toolPatchDoc, patchDocParameters, "Patch an existing Profile document."
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(e.model),
		Messages: toOpenAIMessages(msgs),
		Tools: []openai.ChatCompletionToolParam{
			{
				Function: openai.FunctionDefinitionParam{
					Name:        toolName,
					Description: openai.String(description),
					Parameters:  parameters,
				},
			},
		},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: toolName},
			},
		},
		ParallelToolCalls: openai.Bool(false),
		Temperature:       openai.Float(float64(e.temperature)),
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.ExtractResult{}, fmt.Errorf("%w: extraction invoke: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.ExtractResult{}, nil
	}

	return collectChanges(resp.Choices[0].Message.ToolCalls, req.Existing)
}

func collectChanges(calls []openai.ChatCompletionMessageToolCall, existing []contractx.ExistingDoc) (contractx.ExtractResult, error) {
	var out contractx.ExtractResult
	for _, call := range calls {
		args := strings.TrimSpace(call.Function.Arguments)
		if !gjson.Valid(args) {
			return contractx.ExtractResult{}, fmt.Errorf("%w: invalid %s arguments", contractx.ErrSchemaViolation, call.Function.Name)
		}

		switch call.Function.Name {
		case toolProfile:
			out.Responses = append(out.Responses, contractx.ExtractedDoc{
				Change: contractx.ChangeNew,
				Value:  json.RawMessage(args),
			})
		case toolPatchDoc:
			doc, ok, err := applyPatchDoc(args, existing)
			if err != nil {
				return contractx.ExtractResult{}, err
			}
			if ok {
				out.Responses = append(out.Responses, doc)
			}
		default:
			return contractx.ExtractResult{}, fmt.Errorf("%w: unexpected extraction tool %q", contractx.ErrSchemaViolation, call.Function.Name)
		}
	}
	return out, nil
}

// applyPatchDoc merges a PatchDoc call into the named document. Unknown ids
// and empty patches produce no document.
func applyPatchDoc(args string, existing []contractx.ExistingDoc) (contractx.ExtractedDoc, bool, error) {
	docID := strings.TrimSpace(gjson.Get(args, "json_doc_id").String())
	planned := gjson.Get(args, "planned_edits").String()
	patch := gjson.Get(args, "patch")

	var target *contractx.ExistingDoc
	for i := range existing {
		if existing[i].ID == docID {
			target = &existing[i]
			break
		}
	}
	if target == nil {
		log.Warn().Str("doc_id", docID).Msg("extractor patched an unknown profile document")
		return contractx.ExtractedDoc{}, false, nil
	}

	if !patch.IsObject() || len(patch.Map()) == 0 {
		log.Debug().Str("doc_id", docID).Str("planned_edits", planned).Msg("profile unchanged")
		return contractx.ExtractedDoc{}, false, nil
	}

	merged, err := jsonpatch.MergePatch(target.Value, []byte(patch.Raw))
	if err != nil {
		return contractx.ExtractedDoc{}, false, fmt.Errorf("%w: apply patch to %s: %v", contractx.ErrSchemaViolation, docID, err)
	}

	return contractx.ExtractedDoc{
		DocID:        docID,
		Change:       contractx.ChangeUpdate,
		PlannedEdits: planned,
		Value:        merged,
	}, true, nil
}

// mergeMessageRuns joins consecutive plain messages of the same role.
func mergeMessageRuns(msgs []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if n := len(out); n > 0 && mergeable(out[n-1], m) {
			prev := *out[n-1]
			prev.Content = prev.Content + "\n" + m.Content
			out[n-1] = &prev
			continue
		}
		out = append(out, m)
	}
	return out
}

func mergeable(a, b *schema.Message) bool {
	return a.Role == b.Role &&
		a.Role != schema.Tool &&
		len(a.ToolCalls) == 0 &&
		len(b.ToolCalls) == 0
}

func toOpenAIMessages(msgs []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.User:
			out = append(out, openai.UserMessage(m.Content))
		case schema.Tool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case schema.Assistant:
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}
