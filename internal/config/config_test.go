package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("TEST_GROQ_KEY", "gsk-secret")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value untouched", "literal-key", "literal-key"},
		{"env reference resolved", "${TEST_GROQ_KEY}", "gsk-secret"},
		{"embedded reference", "prefix-${TEST_GROQ_KEY}-suffix", "prefix-gsk-secret-suffix"},
		{"unset variable becomes empty", "${DOES_NOT_EXIST_XYZ}", ""},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnvVars(tt.input); got != tt.want {
				t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToProviderRegistryConfig(t *testing.T) {
	t.Setenv("TEST_GROQ_KEY", "gsk-secret")

	cfg := Config{
		LLMProviders: map[string]LLMProviderCfg{
			"groq": {
				Type:           "groq",
				Model:          "llama-3.1-8b-instant",
				APIKey:         "${TEST_GROQ_KEY}",
				RateLimit:      30,
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
	}

	reg := cfg.ToProviderRegistryConfig()
	got, ok := reg.LLMProviders["groq"]
	if !ok {
		t.Fatal("groq provider missing from registry config")
	}
	if got.APIKey != "gsk-secret" {
		t.Errorf("API key not resolved: %q", got.APIKey)
	}
	if got.Model != "llama-3.1-8b-instant" || got.RateLimit != 30 || got.TimeoutSec != 120 || !got.Enabled {
		t.Errorf("settings not carried over: %+v", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	groq, ok := cfg.LLMProviders["groq"]
	if !ok {
		t.Fatal("default config should configure groq")
	}
	if !strings.Contains(groq.APIKey, "${") {
		t.Error("default API key should reference an environment variable")
	}
	if cfg.Defaults.LLMProvider != "groq" {
		t.Errorf("default provider = %q", cfg.Defaults.LLMProvider)
	}
	if cfg.Defaults.MaxChapters <= 0 || cfg.Defaults.WordsPerPage <= 0 || cfg.Defaults.JobTTLMinutes <= 0 {
		t.Errorf("generation defaults must be positive: %+v", cfg.Defaults)
	}
	if cfg.Server.Port == 0 {
		t.Error("default server port missing")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# booksgen configuration") {
		t.Error("written file should start with the comment header")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if _, ok := cfg.LLMProviders["groq"]; !ok {
		t.Error("written config should round-trip the groq provider")
	}
}
