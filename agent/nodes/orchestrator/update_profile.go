package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	memoryx "github.com/tanpawarit/task-maistro/agent/memory"
	toolx "github.com/tanpawarit/task-maistro/agent/tool"
)

// UpdateProfile extracts profile facts from the history (minus the ChooseTask
// message that triggered it), persists every extracted document and answers
// the call with a bookkeeping tool message.
func UpdateProfile(
	ctx context.Context,
	in *GraphState,
	store memoryx.Store,
	extractor contractx.Extractor,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	call, err := in.pendingCall()
	if err != nil {
		return nil, err
	}

	ns := memoryx.ProfileNamespace(in.Session.UserID)
	items, err := store.Search(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("search profile: %w", err)
	}

	existing := make([]contractx.ExistingDoc, 0, len(items))
	for _, it := range items {
		existing = append(existing, contractx.ExistingDoc{ID: it.Key, Value: it.Value})
	}

	result, err := extractor.Extract(ctx, contractx.ExtractRequest{
		Messages: in.Messages[:len(in.Messages)-1],
		Existing: existing,
		Now:      in.Now,
	})
	if err != nil {
		return nil, err
	}

	for _, doc := range result.Responses {
		key := doc.DocID
		switch {
		case key != "":
		case len(items) > 0:
			// one profile per user: a new document replaces the stored one
			key = items[0].Key
		default:
			key = uuid.NewString()
		}
		value, err := normalizeProfile(doc.Value)
		if err != nil {
			return nil, err
		}
		if err := store.Put(ctx, ns, key, value); err != nil {
			return nil, fmt.Errorf("put profile: %w", err)
		}
		log.Debug().
			Str("user_id", in.Session.UserID).
			Str("doc_id", key).
			Str("change", string(doc.Change)).
			Str("planned_edits", doc.PlannedEdits).
			Msg("profile stored")
	}

	in.appendToolResult(toolx.ProfileUpdatedResult, call)
	return in, nil
}

// normalizeProfile drops anything that is not a profile field.
func normalizeProfile(raw json.RawMessage) (json.RawMessage, error) {
	var profile contractx.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("%w: extracted profile: %v", contractx.ErrSchemaViolation, err)
	}
	out, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return out, nil
}
