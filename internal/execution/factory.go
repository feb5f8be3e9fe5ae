package execution

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Provider names accepted by [NewEngine].
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderCopilot   = "copilot"
	ProviderMock      = "mock"
)

// Models used when none is configured. Copilot has no entry: a blank model
// lets the Copilot service choose.
const (
	DefaultOpenAIModel    = "gpt-4.1"
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultMockModel      = "mock-model"
)

// DefaultModel returns the model NewEngine uses for provider when none is
// configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI, "":
		return DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderMock:
		return DefaultMockModel
	}
	return ""
}

// EngineConfig selects and configures a provider.
type EngineConfig struct {
	Provider string
	Model    string

	// KeyFile overrides the provider's default key location.
	KeyFile string

	// Options belong to Provider, see [OpenAIOptions], [AnthropicOptions],
	// [CopilotOptions] and [MockOptions]. Unknown keys are an error.
	Options map[string]any
}

// KeyLoader returns the API key for provider, reading keyFile if it's set.
type KeyLoader func(provider, keyFile string) (string, error)

// NewEngine returns the ChatEngine for cfg.Provider. An empty provider means
// openai. loadKey is only called for providers that need an API key.
func NewEngine(cfg EngineConfig, loadKey KeyLoader) (ChatEngine, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel(provider)
	}

	switch provider {
	case ProviderOpenAI:
		var opts OpenAIOptions
		if err := decodeOptions(provider, cfg.Options, &opts); err != nil {
			return nil, err
		}
		key, err := loadKey(provider, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		return NewOpenAIEngine(model, key, opts), nil

	case ProviderAnthropic:
		var opts AnthropicOptions
		if err := decodeOptions(provider, cfg.Options, &opts); err != nil {
			return nil, err
		}
		key, err := loadKey(provider, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		return NewAnthropicEngine(model, key, opts), nil

	case ProviderCopilot:
		var opts CopilotOptions
		if err := decodeOptions(provider, cfg.Options, &opts); err != nil {
			return nil, err
		}
		return NewCopilotEngine(model, opts), nil

	case ProviderMock:
		var opts MockOptions
		if err := decodeOptions(provider, cfg.Options, &opts); err != nil {
			return nil, err
		}
		return NewMockEngine(model, opts), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q (use: openai, anthropic, copilot, mock)", provider)
	}
}

func decodeOptions(provider string, raw map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid %s options: %w", provider, err)
	}
	return nil
}
