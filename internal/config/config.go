package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration that must be rejected before any request.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	AI       AIConfig  `yaml:"ai"`
	Sampling Sampling  `yaml:"sampling"`
	Run      RunConfig `yaml:"run"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // openai, gemini or ollama
	Model    string `yaml:"model"`    // completion engine identifier
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

// Sampling holds the knobs forwarded to the completion model.
type Sampling struct {
	Temperature      float64 `yaml:"temperature"`
	TopP             float64 `yaml:"top_p"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
	PresencePenalty  float64 `yaml:"presence_penalty"`
}

type RunConfig struct {
	Parser        string        `yaml:"parser"`  // heuristic or tree-sitter
	Timeout       time.Duration `yaml:"timeout"` // per-request wall clock budget
	Delay         time.Duration `yaml:"delay"`   // pause between requests
	DocstringOnly bool          `yaml:"docstring_only"`
}

func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "openai",
			Model:    "gpt-3.5-turbo-instruct",
		},
		Sampling: Sampling{
			Temperature:      0,
			TopP:             1,
			FrequencyPenalty: 0,
			PresencePenalty:  0.2,
		},
		Run: RunConfig{
			Parser:  "heuristic",
			Timeout: 60 * time.Second,
			Delay:   20 * time.Second,
		},
	}
}

// LoadConfig layers defaults, the optional YAML file at path and the
// environment. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if apiKey := os.Getenv("DOCSMITH_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("DOCSMITH_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}

	return cfg, nil
}

// providerKeyEnv names the provider's own credential variable, consulted
// when no key was configured explicitly.
var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

// Credential returns the configured API key, falling back to the
// provider-specific environment variable.
func (c *Config) Credential() string {
	if key := strings.TrimSpace(c.AI.APIKey); key != "" {
		return key
	}
	if env, ok := providerKeyEnv[c.provider()]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

func (c *Config) provider() string {
	return strings.ToLower(strings.TrimSpace(c.AI.Provider))
}

// Validate rejects out-of-range sampling parameters and unusable run settings.
func (c *Config) Validate() error {
	for _, p := range []float64{c.Sampling.Temperature, c.Sampling.TopP} {
		if !(p >= 0 && p <= 1) {
			return fmt.Errorf("%w: allowed range for temperature/top_p is [0.0, 1.0], got %g", ErrInvalid, p)
		}
	}
	for _, p := range []float64{c.Sampling.FrequencyPenalty, c.Sampling.PresencePenalty} {
		if !(p >= 0 && p <= 2) {
			return fmt.Errorf("%w: allowed range for frequency_penalty/presence_penalty is [0.0, 2.0], got %g", ErrInvalid, p)
		}
	}
	if c.Run.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalid)
	}
	if c.Run.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative", ErrInvalid)
	}
	if c.provider() != "ollama" && c.Credential() == "" {
		hint := "DOCSMITH_API_KEY"
		if env, ok := providerKeyEnv[c.provider()]; ok {
			hint += " or " + env
		}
		return fmt.Errorf("%w: API token not configured for provider %s (use --openai-token, %s)", ErrInvalid, c.AI.Provider, hint)
	}
	return nil
}
