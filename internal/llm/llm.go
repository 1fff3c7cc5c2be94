package llm

import (
	"context"
	"errors"
	"fmt"

	"proposalapi/internal/config"
)

// Model is a single-turn chat completion client. Implementations wrap one
// provider SDK and are safe for concurrent use.
type Model interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Provider identifiers as shown in the model catalog.
const (
	ProviderOpenAI    = "OpenAI"
	ProviderAnthropic = "Anthropic"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "gpt-4o-mini"

// ErrUnsupportedModel is returned for model ids outside the catalog.
var ErrUnsupportedModel = errors.New("unsupported model")

// ModelInfo describes one catalog entry for GET /models.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
}

var catalog = []ModelInfo{
	{
		ID:          "gpt-4o-mini",
		Name:        "GPT-4o Mini",
		Provider:    ProviderOpenAI,
		Description: "Fast and cost-effective model",
	},
	{
		ID:          "gpt-5-mini",
		Name:        "GPT-5 Mini",
		Provider:    ProviderOpenAI,
		Description: "A faster and more efficient version of GPT-5",
	},
	{
		ID:          "gpt-5",
		Name:        "GPT-5",
		Provider:    ProviderOpenAI,
		Description: "OpenAIs latest model with advanced capabilities",
	},
	{
		ID:          "claude-sonnet-4-20250514",
		Name:        "Claude Sonnet 4",
		Provider:    ProviderAnthropic,
		Description: "High intelligence and balanced performance",
	},
	{
		ID:          "claude-3-7-sonnet-latest",
		Name:        "Claude 3.7 Sonnet",
		Provider:    ProviderAnthropic,
		Description: "High intelligence and capability",
	},
}

// Catalog returns the supported models in a stable order.
func Catalog() []ModelInfo {
	out := make([]ModelInfo, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for the given model id.
func Lookup(id string) (ModelInfo, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// Option tweaks per-model generation settings.
type Option func(*settings)

type settings struct {
	// temperature is only sent when explicitly set: the GPT-5 family
	// rejects non-default values.
	temperature    float32
	hasTemperature bool
	maxTokens      int
}

// WithTemperature pins the sampling temperature instead of the provider default.
func WithTemperature(t float32) Option {
	return func(s *settings) {
		s.temperature = t
		s.hasTemperature = true
	}
}

// WithMaxTokens overrides the Anthropic max_tokens value.
func WithMaxTokens(n int) Option {
	return func(s *settings) { s.maxTokens = n }
}

const defaultMaxTokens = 4096

// Registry resolves catalog model ids to provider clients wrapped with the
// configured retry policy.
type Registry struct {
	cfg config.LLMConfig
}

// NewRegistry builds a Registry from configuration.
func NewRegistry(cfg config.LLMConfig) *Registry {
	return &Registry{cfg: cfg}
}

// Resolve returns a ready-to-use Model for the given catalog id.
func (r *Registry) Resolve(id string, opts ...Option) (Model, error) {
	info, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, id)
	}

	s := settings{maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&s)
	}

	var m Model
	switch info.Provider {
	case ProviderOpenAI:
		m = newOpenAI(id, s)
	case ProviderAnthropic:
		m = newAnthropic(id, s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, id)
	}

	return withRetry(m, r.cfg), nil
}
