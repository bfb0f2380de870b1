package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/task-maistro/agent/contract"
	openrouterx "github.com/tanpawarit/task-maistro/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	DeciderModel         string  `envconfig:"DECIDER_MODEL" split_words:"true"`
	ExtractorModel       string  `envconfig:"EXTRACTOR_MODEL" split_words:"true"`
	DeciderTemperature   float32 `envconfig:"DECIDER_TEMPERATURE" split_words:"true" default:"-1"`
	ExtractorTemperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves per-agent overrides on top of the defaults. The
// decider never gets parallel tool calls so each cycle routes exactly once.
func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature
	disableParallel := false

	switch agentType {
	case contractx.AgentTypeDecider:
		if v := strings.TrimSpace(c.DeciderModel); v != "" {
			modelName = v
		}
		if c.DeciderTemperature >= 0 {
			temp = c.DeciderTemperature
		}
		disableParallel = true
	case contractx.AgentTypeExtractor:
		if v := strings.TrimSpace(c.ExtractorModel); v != "" {
			modelName = v
		}
		if c.ExtractorTemperature >= 0 {
			temp = c.ExtractorTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:                  strings.TrimSpace(c.BaseURL),
		APIKey:                   strings.TrimSpace(c.APIKey),
		Model:                    modelName,
		MaxCompletionToken:       &maxCompletionToken,
		Temperature:              temp,
		Timeout:                  c.Timeout,
		SiteURL:                  strings.TrimSpace(c.SiteURL),
		SiteName:                 strings.TrimSpace(c.SiteName),
		DisableParallelToolCalls: disableParallel,
	}
}
