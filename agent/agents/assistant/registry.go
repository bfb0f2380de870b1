package assistant

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	llmx "github.com/tanpawarit/task-maistro/agent/llm"
	promptx "github.com/tanpawarit/task-maistro/agent/prompt"
	openrouterx "github.com/tanpawarit/task-maistro/pkg/openrouter"
)

type registryImpl struct {
	decider   contractx.Decider
	extractor contractx.Extractor
}

func (r *registryImpl) Decider() contractx.Decider {
	return r.decider
}

func (r *registryImpl) Extractor() contractx.Extractor {
	return r.extractor
}

func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	deciderCfg := cfg.OpenRouterFor(contractx.AgentTypeDecider)
	deciderModel, err := deciderCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create decider model: %v", contractx.ErrModelInvoke, err)
	}
	decider, err := newDecider(ctx, deciderModel, prompts.Decision)
	if err != nil {
		return nil, err
	}

	extractorCfg := cfg.OpenRouterFor(contractx.AgentTypeExtractor)
	extractor, err := newExtractor(openrouterx.NewClient(extractorCfg), extractorCfg.Model, extractorCfg.Temperature, prompts.Extraction)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		decider:   decider,
		extractor: extractor,
	}, nil
}
