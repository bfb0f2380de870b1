package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	memoryx "github.com/tanpawarit/task-maistro/agent/memory"
)

// CallModel runs one orchestrator cycle: reload the profile, ask the decider
// and append its message to the history.
func CallModel(
	ctx context.Context,
	in *GraphState,
	store memoryx.Store,
	decider contractx.Decider,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Cycles >= in.MaxCycles {
		return nil, fmt.Errorf("%w: %d model calls in one turn", contractx.ErrCycleLimit, in.Cycles)
	}
	in.Cycles++

	profile, _, err := LoadProfile(ctx, store, in.Session.UserID)
	if err != nil {
		return nil, err
	}
	in.Profile = profile

	msg, err := decider.Decide(ctx, contractx.DecisionRequest{
		Messages: in.Messages,
		Profile:  profile,
	})
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: decider returned no message", contractx.ErrSchemaViolation)
	}
	if msg.Role == "" {
		msg.Role = schema.Assistant
	}
	if len(msg.ToolCalls) > 1 {
		// only the first call is routed and answered
		log.Warn().
			Str("user_id", in.Session.UserID).
			Int("tool_calls", len(msg.ToolCalls)).
			Msg("dropping extra tool calls")
		msg.ToolCalls = msg.ToolCalls[:1]
	}
	ensureToolCallIDs(msg)

	log.Debug().
		Str("user_id", in.Session.UserID).
		Int("cycle", in.Cycles).
		Int("tool_calls", len(msg.ToolCalls)).
		Msg("decision received")

	in.Messages = append(in.Messages, msg)
	return in, nil
}

// LoadProfile returns the newest profile document of the user, or nil when
// none is stored yet.
func LoadProfile(ctx context.Context, store memoryx.Store, userID string) (*contractx.Profile, []memoryx.Item, error) {
	items, err := store.Search(ctx, memoryx.ProfileNamespace(userID))
	if err != nil {
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}
	if len(items) == 0 {
		return nil, items, nil
	}

	var profile contractx.Profile
	if err := json.Unmarshal(items[0].Value, &profile); err != nil {
		return nil, nil, fmt.Errorf("%w: stored profile %s: %v", contractx.ErrValidation, items[0].Key, err)
	}
	return &profile, items, nil
}

// ensureToolCallIDs fills ids the provider left empty so the tool result can
// echo them back.
func ensureToolCallIDs(msg *schema.Message) {
	for i := range msg.ToolCalls {
		if msg.ToolCalls[i].ID == "" {
			msg.ToolCalls[i].ID = "call_" + uuid.NewString()
		}
	}
}
