package config

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func envMap(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_ValidFile(t *testing.T) {
	mockFS := NewMockFileSystem()
	path := "/etc/prreview.yaml"
	mockFS.Files[path] = []byte(`
provider: openai
model: gpt-4.1
openai_api_key: "file-key"
max_diff_length: 5000
request_timeout: 45s
server:
  address: ":9090"
  allowed_origins:
    - https://review.example.com
`)

	cfg, err := NewLoaderWithEnv(mockFS, envMap(nil)).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Model != "gpt-4.1" {
		t.Errorf("expected model 'gpt-4.1', got %q", cfg.Model)
	}
	if cfg.APIKey() != "file-key" {
		t.Errorf("expected api key from file, got %q", cfg.APIKey().Reveal())
	}
	if cfg.MaxDiffLength != 5000 {
		t.Errorf("expected MaxDiffLength 5000, got %d", cfg.MaxDiffLength)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", cfg.RequestTimeout)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("expected address ':9090', got %q", cfg.Server.Address)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://review.example.com" {
		t.Errorf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	mockFS := NewMockFileSystem()

	cfg, err := NewLoaderWithEnv(mockFS, envMap(nil)).Load(context.Background(), "/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider openai, got %q", cfg.Provider)
	}
	if cfg.Model != defaultOpenAIModel {
		t.Errorf("expected default model %q, got %q", defaultOpenAIModel, cfg.Model)
	}
	if cfg.MaxDiffLength != DefaultMaxDiffLength {
		t.Errorf("expected default MaxDiffLength %d, got %d", DefaultMaxDiffLength, cfg.MaxDiffLength)
	}
	if !cfg.APIKey().IsEmpty() {
		t.Error("expected empty api key when nothing configured")
	}
	if cfg.Server.Address != defaultAddress {
		t.Errorf("expected default address, got %q", cfg.Server.Address)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != defaultFrontendOrigin {
		t.Errorf("expected default origin, got %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_DefaultPathFromHome(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.UserHome = "/home/dev"
	mockFS.Files["/home/dev/.config/prreview/config.yaml"] = []byte(`model: from-home`)

	cfg, err := NewLoaderWithEnv(mockFS, envMap(nil)).Load(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "from-home" {
		t.Errorf("expected model from home config, got %q", cfg.Model)
	}
}

func TestLoad_NoHomeDir(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.UserHomeErr = errors.New("no home")

	cfg, err := NewLoaderWithEnv(mockFS, envMap(nil)).Load(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxDiffLength != DefaultMaxDiffLength {
		t.Errorf("expected defaults, got MaxDiffLength %d", cfg.MaxDiffLength)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	mockFS := NewMockFileSystem()
	path := "/config.yaml"
	mockFS.Files[path] = []byte(`
openai_api_key: file-key
model: file-model
max_diff_length: 100
`)

	env := envMap(map[string]string{
		"OPENAI_API_KEY":  "env-key",
		"OPENAI_MODEL":    "env-model",
		"MAX_DIFF_LENGTH": "300",
		"PORT":            "8081",
		"FRONTEND_ORIGIN": "http://a.test, http://b.test,,",
	})

	cfg, err := NewLoaderWithEnv(mockFS, env).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIKey().Reveal() != "env-key" {
		t.Errorf("expected env api key, got %q", cfg.APIKey().Reveal())
	}
	if cfg.Model != "env-model" {
		t.Errorf("expected env model, got %q", cfg.Model)
	}
	if cfg.MaxDiffLength != 300 {
		t.Errorf("expected MaxDiffLength 300, got %d", cfg.MaxDiffLength)
	}
	if cfg.Server.Address != ":8081" {
		t.Errorf("expected address ':8081', got %q", cfg.Server.Address)
	}
	want := []string{"http://a.test", "http://b.test"}
	if strings.Join(cfg.Server.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("expected origins %v, got %v", want, cfg.Server.AllowedOrigins)
	}
}

func TestLoad_GeminiProvider(t *testing.T) {
	env := envMap(map[string]string{
		"PRREVIEW_PROVIDER": "Gemini",
		"GEMINI_API_KEY":    "g-key",
		"OPENAI_MODEL":      "ignored-for-gemini",
	})

	cfg, err := NewLoaderWithEnv(NewMockFileSystem(), env).Load(context.Background(), "/missing.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderGemini {
		t.Errorf("expected gemini provider, got %q", cfg.Provider)
	}
	if cfg.Model != defaultGeminiModel {
		t.Errorf("expected default gemini model, got %q", cfg.Model)
	}
	if cfg.APIKey().Reveal() != "g-key" {
		t.Errorf("expected gemini key, got %q", cfg.APIKey().Reveal())
	}
}

func TestLoad_GeminiModelOverride(t *testing.T) {
	env := envMap(map[string]string{
		"PRREVIEW_PROVIDER": "gemini",
		"GEMINI_API_KEY":    "g-key",
		"GEMINI_MODEL":      "gemini-2.5-pro",
	})

	cfg, err := NewLoaderWithEnv(NewMockFileSystem(), env).Load(context.Background(), "/missing.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("expected GEMINI_MODEL override, got %q", cfg.Model)
	}
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	env := envMap(map[string]string{
		"MAX_DIFF_LENGTH":          "lots",
		"PRREVIEW_REQUEST_TIMEOUT": "soon",
		"PORT":                     "http",
	})

	cfg, err := NewLoaderWithEnv(NewMockFileSystem(), env).Load(context.Background(), "/missing.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxDiffLength != DefaultMaxDiffLength {
		t.Errorf("expected default MaxDiffLength, got %d", cfg.MaxDiffLength)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("expected default timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.Server.Address != defaultAddress {
		t.Errorf("expected default address, got %q", cfg.Server.Address)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	mockFS := NewMockFileSystem()
	path := "/config.yaml"
	mockFS.Files[path] = []byte(`
provider: llama
max_diff_length: -1
`)

	_, err := NewLoaderWithEnv(mockFS, envMap(nil)).Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "unknown provider") {
		t.Errorf("expected provider error, got %q", msg)
	}
	if !strings.Contains(msg, "max_diff_length") {
		t.Errorf("expected max_diff_length error, got %q", msg)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	mockFS := NewMockFileSystem()
	path := "/config.yaml"
	mockFS.Files[path] = []byte("provider: [unterminated")

	_, err := NewLoaderWithEnv(mockFS, envMap(nil)).Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_ReadError(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.ReadErrors["/config.yaml"] = errors.New("permission denied")

	_, err := NewLoaderWithEnv(mockFS, envMap(nil)).Load(context.Background(), "/config.yaml")
	if err == nil {
		t.Fatal("expected read error")
	}
}

func TestSecretString_Redacted(t *testing.T) {
	cfg := Config{OpenAIAPIKey: "sk-live-secret"}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(out), "sk-live-secret") {
		t.Error("secret leaked into YAML output")
	}
	if cfg.OpenAIAPIKey.String() != "[REDACTED]" {
		t.Errorf("expected redacted String(), got %q", cfg.OpenAIAPIKey.String())
	}
	if cfg.OpenAIAPIKey.LogValue().String() != "[REDACTED]" {
		t.Error("expected redacted LogValue")
	}
}
