package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
)

func TestOpenRouterForDecider(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:               " key ",
		Model:                "openai/gpt-4o",
		Temperature:          0.3,
		DeciderModel:         "openai/gpt-4o-mini",
		DeciderTemperature:   0,
		ExtractorTemperature: -1,
	}

	got := cfg.OpenRouterFor(contractx.AgentTypeDecider)
	if got.Model != "openai/gpt-4o-mini" {
		t.Fatalf("Model = %q", got.Model)
	}
	if got.Temperature != 0 {
		t.Fatalf("Temperature = %v", got.Temperature)
	}
	if !got.DisableParallelToolCalls {
		t.Fatal("decider must disable parallel tool calls")
	}
	if got.APIKey != "key" {
		t.Fatalf("APIKey not trimmed: %q", got.APIKey)
	}
}

func TestOpenRouterForExtractorFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:               "key",
		Model:                "openai/gpt-4o",
		Temperature:          0.3,
		ExtractorTemperature: -1,
	}

	got := cfg.OpenRouterFor(contractx.AgentTypeExtractor)
	if got.Model != "openai/gpt-4o" || got.Temperature != 0.3 {
		t.Fatalf("unexpected config: %#v", got)
	}
	if got.DisableParallelToolCalls {
		t.Fatal("extractor keeps provider default for parallel tool calls")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "m"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := (Config{APIKey: "k", Model: "m"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
