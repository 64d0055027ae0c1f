package config

// Config is the full configuration tree, loaded from config.yaml with
// BOOKSGEN_* environment overrides.
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures one LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`
	Model          string `mapstructure:"model" yaml:"model"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg holds generation defaults.
type DefaultsCfg struct {
	LLMProvider   string  `mapstructure:"llm_provider" yaml:"llm_provider"`
	Temperature   float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxChapters   int     `mapstructure:"max_chapters" yaml:"max_chapters"`
	WordsPerPage  int     `mapstructure:"words_per_page" yaml:"words_per_page"`
	JobTTLMinutes int     `mapstructure:"job_ttl_minutes" yaml:"job_ttl_minutes"`
}

// ServerCfg holds the HTTP listener settings.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LLMProviders: map[string]LLMProviderCfg{
			"groq": {
				Type:           "groq",
				Model:          "llama-3.1-8b-instant",
				APIKey:         "${GROQ_API_KEY}",
				RateLimit:      30,
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:   "groq",
			Temperature:   0.7,
			MaxChapters:   10,
			WordsPerPage:  250,
			JobTTLMinutes: 60,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8000,
		},
	}
}
