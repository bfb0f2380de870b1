package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/decision.txt
	decisionRaw string

	//go:embed template/extraction.txt
	extractionRaw string
)

// PromptSet holds loaded prompt content. Both prompts are FString templates:
// Decision expects {user_profile}, Extraction expects {time}.
type PromptSet struct {
	Decision   string
	Extraction string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Decision:   strings.TrimSpace(decisionRaw),
		Extraction: strings.TrimSpace(extractionRaw),
	}
}
