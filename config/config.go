package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
)

// Providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	// ProviderOffline runs without any model; results are rendered as JSON.
	ProviderOffline = "offline"
)

// Environment variables read by Load.
const (
	EnvAppName       = "AGENTPIPE_APP_NAME"
	EnvUserID        = "AGENTPIPE_USER_ID"
	EnvProvider      = "AGENTPIPE_PROVIDER"
	EnvModel         = "AGENTPIPE_MODEL"
	EnvAPIKey        = "AGENTPIPE_API_KEY"
	EnvNarrate       = "AGENTPIPE_NARRATE"
	EnvBranchTimeout = "AGENTPIPE_BRANCH_TIMEOUT"
	EnvLogLevel      = "AGENTPIPE_LOG_LEVEL"
	EnvLogFormat     = "AGENTPIPE_LOG_FORMAT"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvOpenAIKey     = "OPENAI_API_KEY"
)

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// Config holds every tunable of an agentpipe application.
type Config struct {
	AppName  string `yaml:"app_name" validate:"required"`
	UserID   string `yaml:"user_id" validate:"required"`
	Provider string `yaml:"provider" validate:"required,oneof=anthropic openai offline"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	// Narrate renders results through the model instead of as JSON.
	Narrate       bool          `yaml:"narrate"`
	BranchTimeout time.Duration `yaml:"branch_timeout" validate:"gte=0"`
	Log           LogConfig     `yaml:"log"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns the built-in configuration. The model is left empty and
// resolved from the provider by Load.
func Default() *Config {
	return &Config{
		AppName:  "agentpipe",
		UserID:   "default_user",
		Provider: ProviderAnthropic,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultModel returns the model used for a provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-3-5-sonnet-20241022"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return ""
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(EnvAppName, &c.AppName)
	setString(EnvUserID, &c.UserID)
	setString(EnvProvider, &c.Provider)
	setString(EnvModel, &c.Model)
	setString(EnvAPIKey, &c.APIKey)
	setString(EnvLogLevel, &c.Log.Level)
	setString(EnvLogFormat, &c.Log.Format)

	if c.APIKey == "" {
		switch c.Provider {
		case ProviderAnthropic:
			setString(EnvAnthropicKey, &c.APIKey)
		case ProviderOpenAI:
			setString(EnvOpenAIKey, &c.APIKey)
		}
	}

	if v := strings.TrimSpace(getenv(EnvNarrate)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return core.NewConfigurationError("narrate", fmt.Sprintf("invalid %s: %q", EnvNarrate, v))
		}
		c.Narrate = b
	}

	if v := strings.TrimSpace(getenv(EnvBranchTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return core.NewConfigurationError("branch_timeout", fmt.Sprintf("invalid %s: %q", EnvBranchTimeout, v))
		}
		c.BranchTimeout = d
	}

	return nil
}

// Validate checks the configuration and reports the first problem as a
// *core.ConfigurationError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return core.NewConfigurationError(fe.Field(), describe(fe))
		}
		return core.NewConfigurationError("", err.Error())
	}

	if c.Provider == ProviderOffline {
		if c.Narrate {
			return core.NewConfigurationError("narrate", "requires a model provider")
		}
		return nil
	}

	if c.Model == "" {
		return core.NewConfigurationError("model", "must not be empty")
	}

	if c.APIKey == "" {
		return core.NewConfigurationError("api_key", fmt.Sprintf("required for provider %s (set %s or %s)", c.Provider, EnvAPIKey, providerKeyEnv(c.Provider)))
	}

	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func providerKeyEnv(provider string) string {
	if provider == ProviderOpenAI {
		return EnvOpenAIKey
	}
	return EnvAnthropicKey
}

// LoggerConfig translates the log settings into a logging.LoggerConfig.
func (c *Config) LoggerConfig(out io.Writer) (*logging.LoggerConfig, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, core.NewConfigurationError("level", err.Error())
	}

	lc := logging.DefaultLoggerConfig()
	lc.Level = level
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	if out != nil {
		lc.Output = out
	}
	lc.CustomAttrs["app_name"] = c.AppName

	return lc, nil
}

// NewLogger builds the PipeLogger described by the log settings.
func (c *Config) NewLogger(out io.Writer) (*logging.PipeLogger, error) {
	lc, err := c.LoggerConfig(out)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(lc), nil
}

// Summary renders the configuration for humans with the API key masked.
func (c *Config) Summary() string {
	var b strings.Builder

	row := func(k string, v any) { fmt.Fprintf(&b, "  %-15s %v\n", k+":", v) }

	b.WriteString("Configuration:\n")
	row("app_name", c.AppName)
	row("user_id", c.UserID)
	row("provider", c.Provider)
	row("model", valueOr(c.Model, "(none)"))
	row("api_key", MaskKey(c.APIKey))
	row("narrate", c.Narrate)
	row("branch_timeout", c.BranchTimeout)
	row("log_level", valueOr(c.Log.Level, "info"))
	row("log_format", valueOr(c.Log.Format, "json"))

	return b.String()
}

// MaskKey hides all but the first and last four characters of a secret.
func MaskKey(key string) string {
	switch {
	case key == "":
		return "not set"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "..." + key[len(key)-4:]
	}
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
