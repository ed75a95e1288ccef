// Package recoconfig loads the adapter's ambient configuration: session
// defaults, transport dial/retry/breaker settings, logging, and
// observability, via spf13/viper.
package recoconfig

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/spf13/viper"

	"github.com/lucidspeech/recoengine/pkg/configutil"
)

// topLevelSchema enumerates the known top-level config sections, so a
// typo'd or stale section in a config file is caught at load time
// instead of silently decoding to zero values.
var topLevelSchema = configutil.Schema{
	Optional: []string{
		"adapter", "transport", "site_defaults", "log_level",
		"log_format", "privacy", "observability",
	},
}

type RetryConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
	BackoffMs  int `mapstructure:"backoff_ms"`
}

type CircuitBreakerConfig struct {
	Threshold int `mapstructure:"threshold"`
	CooldownS int `mapstructure:"cooldown_s"`
}

type TransportConfig struct {
	DialTimeoutMs  int                  `mapstructure:"dial_timeout_ms"`
	Retry          RetryConfig          `mapstructure:"retry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type AdapterConfig struct {
	SingleShot         bool `mapstructure:"single_shot"`
	ResetAfterError    bool `mapstructure:"reset_after_error"`
	ServicePreferredMs int  `mapstructure:"service_preferred_ms"`
}

type SiteDefaultsConfig struct {
	Endpoint                string `mapstructure:"endpoint"`
	RecoMode                string `mapstructure:"reco_mode"`
	SubscriptionKey         string `mapstructure:"subscription_key"`
	AuthToken               string `mapstructure:"auth_token"`
	RpsToken                string `mapstructure:"rps_token"`
	TranslationFromLanguage string `mapstructure:"translation_from_language"`
	TranslationToLanguages  string `mapstructure:"translation_to_languages"`
	TranslationVoice        string `mapstructure:"translation_voice"`
	ModelID                 string `mapstructure:"model_id"`
	RecoLanguage            string `mapstructure:"reco_language"`
	NoDGI                   bool   `mapstructure:"no_dgi"`
	NoIntentJSON            bool   `mapstructure:"no_intent_json"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

type ObservabilityConfig struct {
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// Config is the top-level ambient configuration, decoded from a
// YAML/JSON file via viper.
type Config struct {
	Adapter       AdapterConfig       `mapstructure:"adapter"`
	Transport     TransportConfig     `mapstructure:"transport"`
	SiteDefaults  SiteDefaultsConfig  `mapstructure:"site_defaults"`
	LogLevel      string              `mapstructure:"log_level"`
	LogFormat     string              `mapstructure:"log_format"`
	Privacy       PrivacyConfig       `mapstructure:"privacy"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("adapter.single_shot", false)
	v.SetDefault("adapter.reset_after_error", false)
	v.SetDefault("adapter.service_preferred_ms", 100)

	v.SetDefault("transport.dial_timeout_ms", 5000)
	v.SetDefault("transport.retry.max_retries", 2)
	v.SetDefault("transport.retry.backoff_ms", 200)
	v.SetDefault("transport.circuit_breaker.threshold", 3)
	v.SetDefault("transport.circuit_breaker.cooldown_s", 30)

	v.SetDefault("site_defaults.endpoint", "")
	v.SetDefault("site_defaults.reco_mode", "")
	v.SetDefault("site_defaults.no_dgi", false)
	v.SetDefault("site_defaults.no_intent_json", false)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("privacy.redact_pii", true)
	v.SetDefault("observability.sampling_rate", 1.0)
}

// Load reads and decodes a configuration file at path. Environment
// variables are expanded into every string field after decoding, so a
// config file can reference ${SPEECH_SUBSCRIPTION_KEY}-style secrets
// without viper's own env binding.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := configutil.ValidateSettings(v.AllSettings(), topLevelSchema); err != nil {
		return Config{}, fmt.Errorf("validate config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	expandEnvStrings(&cfg)
	return cfg, nil
}

// Validate checks structural invariants that must hold regardless of
// what a site later supplies at runtime. Authentication presence is
// deliberately not checked here — the site can supply credentials the
// config file never carries, and that check belongs to orchestrator
// initialization (§7 configuration errors).
func (c Config) Validate() error {
	if c.Adapter.ServicePreferredMs <= 0 {
		return fmt.Errorf("adapter.service_preferred_ms must be positive")
	}
	if c.Transport.DialTimeoutMs <= 0 {
		return fmt.Errorf("transport.dial_timeout_ms must be positive")
	}
	if c.Observability.SamplingRate < 0 || c.Observability.SamplingRate > 1 {
		return fmt.Errorf("observability.sampling_rate must be within [0,1]")
	}
	return nil
}

func (c Config) DialTimeout() time.Duration {
	return time.Duration(c.Transport.DialTimeoutMs) * time.Millisecond
}

func (c Config) RetryBackoff() time.Duration {
	return time.Duration(c.Transport.Retry.BackoffMs) * time.Millisecond
}

func (c Config) BreakerCooldown() time.Duration {
	return time.Duration(c.Transport.CircuitBreaker.CooldownS) * time.Second
}

// expandEnvStrings walks every exported string field of cfg by
// reflection and expands ${VAR}/$VAR references via os.ExpandEnv.
func expandEnvStrings(cfg *Config) {
	expandValue(reflect.ValueOf(cfg).Elem())
}

func expandValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			expandValue(v.Field(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(os.ExpandEnv(v.String()))
		}
	case reflect.Ptr:
		if !v.IsNil() {
			expandValue(v.Elem())
		}
	}
}
