package prompt

import (
	"strings"
	"testing"
)

func TestLoadPromptSetPlaceholders(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if !strings.Contains(set.Decision, "{user_profile}") {
		t.Fatal("decision prompt must reference {user_profile}")
	}
	if !strings.Contains(set.Extraction, "{time}") {
		t.Fatal("extraction prompt must reference {time}")
	}
	for _, kind := range []string{"`user`", "`fetch_task_count`", "`create_shift_summary`"} {
		if !strings.Contains(set.Decision, kind) {
			t.Fatalf("decision prompt does not mention %s", kind)
		}
	}
}
