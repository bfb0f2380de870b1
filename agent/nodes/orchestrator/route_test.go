package orchestratornode

import (
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

func TestRouteNoToolCallFinalizes(t *testing.T) {
	t.Parallel()

	next, decision, err := Route(schema.AssistantMessage("Hi Alex!", nil))
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if next != NodeFinalize || decision != contractx.DecisionNone {
		t.Fatalf("Route() = %s/%q, want finalize", next, decision)
	}
}

func TestRouteKnownDecisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		updateType string
		want       string
	}{
		{updateType: "user", want: NodeUpdateProfile},
		{updateType: "fetch_task_count", want: NodeFetchTaskCount},
		{updateType: "create_shift_summary", want: NodeCreateShiftSummary},
	}

	for _, tt := range tests {
		next, decision, err := Route(chooseTask("call_1", tt.updateType))
		if err != nil {
			t.Fatalf("Route(%s) error = %v", tt.updateType, err)
		}
		if next != tt.want {
			t.Fatalf("Route(%s) = %s, want %s", tt.updateType, next, tt.want)
		}
		if string(decision) != tt.updateType {
			t.Fatalf("Route(%s) decision = %q", tt.updateType, decision)
		}
	}
}

func TestRouteUnknownDecisionFailsDeterministically(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"todo", "instructions", "USER", "", " user", `fetch_task_count\n`, `\tcreate_shift_summary `} {
		for i := 0; i < 2; i++ {
			_, _, err := Route(chooseTask("call_9", v))
			if !errors.Is(err, contractx.ErrInvalidDecision) {
				t.Fatalf("Route(%q) error = %v, want ErrInvalidDecision", v, err)
			}
		}
	}
}

func TestRouteStateRecordsDecision(t *testing.T) {
	t.Parallel()

	st := newState(contractx.Session{UserID: "u1"}, schema.UserMessage("how many tasks?"), chooseTask("call_1", "fetch_task_count"))
	next, err := RouteState(st)
	if err != nil {
		t.Fatalf("RouteState() error = %v", err)
	}
	if next != NodeFetchTaskCount {
		t.Fatalf("RouteState() = %s", next)
	}
	if len(st.Decisions) != 1 || st.Decisions[0] != contractx.DecisionFetchTaskCount {
		t.Fatalf("unexpected decisions: %#v", st.Decisions)
	}
}
