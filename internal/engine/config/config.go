// Package config loads prreview settings from YAML and the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/irahardianto/prreview/internal/platform/logger"
	"gopkg.in/yaml.v3"
)

// Provider names a completion backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

const (
	// DefaultMaxDiffLength is the diff ceiling, counted in Unicode code points.
	DefaultMaxDiffLength = 200_000

	defaultOpenAIModel    = "gpt-4.1-mini"
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultAddress        = ":3000"
	defaultFrontendOrigin = "http://localhost:5173"
	defaultRequestTimeout = 120 * time.Second
)

// SecretString is a string that is redacted when printed.
type SecretString string

func (s SecretString) String() string {
	return "[REDACTED]"
}

func (s SecretString) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// LogValue keeps secrets out of structured logs.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// IsEmpty returns true if the secret string is empty.
func (s SecretString) IsEmpty() bool {
	return string(s) == ""
}

// Reveal returns the raw secret for use in outbound credentials.
func (s SecretString) Reveal() string {
	return string(s)
}

// Config is the resolved, read-only service configuration. It is built once at
// startup and shared by value; nothing mutates it afterwards.
type Config struct {
	Provider       Provider      `yaml:"provider"`
	Model          string        `yaml:"model"`
	OpenAIAPIKey   SecretString  `yaml:"openai_api_key"`
	OpenAIBaseURL  string        `yaml:"openai_base_url"`
	GeminiAPIKey   SecretString  `yaml:"gemini_api_key"`
	MaxDiffLength  int           `yaml:"max_diff_length"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Server         ServerConfig  `yaml:"server"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() SecretString {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Loader handles loading configuration from the file system.
type Loader struct {
	fs     FileSystem
	getenv func(string) string
}

// NewLoader creates a new Loader with the given file system.
// Uses os.Getenv for environment variable lookups by default.
func NewLoader(fs FileSystem) *Loader {
	return &Loader{fs: fs, getenv: os.Getenv}
}

// NewLoaderWithEnv creates a Loader with a custom getenv function for testability.
func NewLoaderWithEnv(fs FileSystem, getenv func(string) string) *Loader {
	return &Loader{fs: fs, getenv: getenv}
}

// DefaultPath returns ~/.config/prreview/config.yaml, or "" when the home
// directory cannot be determined.
func (l *Loader) DefaultPath() string {
	home, err := l.fs.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "prreview", "config.yaml")
}

// Load reads configuration from path (or the default path when empty).
// A missing file is not an error; defaults apply. Environment variables
// override file values.
func (l *Loader) Load(ctx context.Context, path string) (Config, error) {
	log := logger.FromContext(ctx)
	cfg := defaultConfig()

	if path == "" {
		path = l.DefaultPath()
	}

	if path != "" {
		// [SEC] Clean path
		path = filepath.Clean(path)
		log.Debug("loading config", "path", path)

		data, err := l.fs.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		case l.fs.IsNotExist(err):
			log.Debug("config file not found, using defaults", "path", path)
		default:
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg, l.getenv, log)
	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads configuration using the real file system.
func Load(ctx context.Context, path string) (Config, error) {
	return NewLoader(&RealFileSystem{}).Load(ctx, path)
}

func defaultConfig() Config {
	return Config{
		Provider:       ProviderOpenAI,
		OpenAIBaseURL:  defaultOpenAIBaseURL,
		MaxDiffLength:  DefaultMaxDiffLength,
		RequestTimeout: defaultRequestTimeout,
		Server: ServerConfig{
			Address:        defaultAddress,
			AllowedOrigins: []string{defaultFrontendOrigin},
		},
	}
}

// applyDefaults fills fields that depend on other resolved values.
func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.Model == "" {
		switch cfg.Provider {
		case ProviderGemini:
			cfg.Model = defaultGeminiModel
		default:
			cfg.Model = defaultOpenAIModel
		}
	}
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = defaultOpenAIBaseURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultAddress
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{defaultFrontendOrigin}
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
// Malformed numeric values are logged and ignored.
func applyEnvOverrides(cfg *Config, getenv func(string) string, log *slog.Logger) {
	if p := getenv("PRREVIEW_PROVIDER"); p != "" {
		cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(p)))
	}
	if key := getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIAPIKey = SecretString(key)
	}
	if key := getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = SecretString(key)
	}
	if u := getenv("OPENAI_BASE_URL"); u != "" {
		cfg.OpenAIBaseURL = u
	}

	switch cfg.Provider {
	case ProviderGemini:
		if m := getenv("GEMINI_MODEL"); m != "" {
			cfg.Model = m
		}
	default:
		if m := getenv("OPENAI_MODEL"); m != "" {
			cfg.Model = m
		}
	}

	if raw := getenv("MAX_DIFF_LENGTH"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			log.Warn("invalid MAX_DIFF_LENGTH value, using default", "value", raw, "error", err)
		} else {
			cfg.MaxDiffLength = n
		}
	}

	if raw := getenv("PRREVIEW_REQUEST_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Warn("invalid PRREVIEW_REQUEST_TIMEOUT value, using default", "value", raw, "error", err)
		} else {
			cfg.RequestTimeout = d
		}
	}

	if port := getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			log.Warn("invalid PORT value, ignoring", "value", port)
		} else {
			cfg.Server.Address = ":" + port
		}
	}

	if origins := getenv("FRONTEND_ORIGIN"); origins != "" {
		cfg.Server.AllowedOrigins = parseOrigins(origins)
	}
}

func parseOrigins(value string) []string {
	var out []string
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// validate checks the resolved config. Returns a joined error so that every
// problem is reported at once.
func validate(cfg Config) error {
	var errs []error

	switch cfg.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (valid: openai, gemini)", cfg.Provider))
	}

	if cfg.MaxDiffLength <= 0 {
		errs = append(errs, fmt.Errorf("max_diff_length must be positive, got %d", cfg.MaxDiffLength))
	}

	if cfg.Provider == ProviderOpenAI && !strings.HasPrefix(cfg.OpenAIBaseURL, "http") {
		errs = append(errs, errors.New("openai_base_url must be an http(s) URL"))
	}

	return errors.Join(errs...)
}
