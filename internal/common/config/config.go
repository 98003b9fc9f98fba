// Package config provides configuration management for voicedesk.
// It supports loading configuration from environment variables, config files, and defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration sections for voicedesk.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Session SessionConfig `mapstructure:"session"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Safety  SafetyConfig  `mapstructure:"safety"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"readTimeout"`  // in seconds
	WriteTimeout int    `mapstructure:"writeTimeout"` // in seconds
}

// BackendConfig holds hospital information-system backend connectivity.
type BackendConfig struct {
	BaseURL            string   `mapstructure:"baseUrl"`
	ServiceAccountUser string   `mapstructure:"serviceAccountUser"`
	ServiceAccountPass string   `mapstructure:"serviceAccountPass"`
	AllowList          []string `mapstructure:"allowList"`
	DenyList           []string `mapstructure:"denyList"`
	RequestTimeoutSecs int      `mapstructure:"requestTimeoutSecs"`
}

// SessionConfig holds session-store bounds.
type SessionConfig struct {
	IdleTimeoutSecs int `mapstructure:"idleTimeoutSecs"`
	MaxTurns        int `mapstructure:"maxTurns"`
}

// LLMConfig holds the pluggable intent-classifier provider settings.
type LLMConfig struct {
	Provider    string `mapstructure:"provider"` // openai, anthropic, gemini, ollama, "" = rule-based only
	Model       string `mapstructure:"model"`
	APIKey      string `mapstructure:"apiKey"`
	BaseURL     string `mapstructure:"baseUrl"`
	TimeoutSecs int    `mapstructure:"timeoutSecs"`
}

// SpeechConfig holds STT/TTS collaborator selectors.
type SpeechConfig struct {
	STTProvider string `mapstructure:"sttProvider"`
	TTSProvider string `mapstructure:"ttsProvider"`
	Language    string `mapstructure:"language"`
	VoiceGender string `mapstructure:"voiceGender"`
}

// SafetyConfig holds the audit encryption key.
type SafetyConfig struct {
	AuditEncryptionKey string `mapstructure:"auditEncryptionKey"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"outputPath"`
}

// TracingConfig holds OpenTelemetry exporter configuration.
type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlpEndpoint"`
	ServiceName  string `mapstructure:"serviceName"`
}

// ReadTimeoutDuration returns the read timeout as a time.Duration.
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as a time.Duration.
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// IdleTimeoutDuration returns the session idle timeout as a time.Duration.
func (s *SessionConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeoutSecs) * time.Second
}

// RequestTimeoutDuration returns the backend request timeout as a time.Duration.
func (b *BackendConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(b.RequestTimeoutSecs) * time.Second
}

// TimeoutDuration returns the LLM call timeout as a time.Duration.
func (l *LLMConfig) TimeoutDuration() time.Duration {
	return time.Duration(l.TimeoutSecs) * time.Second
}

// detectDefaultLogFormat returns the appropriate log format based on environment.
func detectDefaultLogFormat() string {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "json"
	}
	if env := os.Getenv("VOICEDESK_ENV"); env == "production" || env == "prod" {
		return "json"
	}
	return "text"
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)

	v.SetDefault("backend.baseUrl", "http://localhost:9000")
	v.SetDefault("backend.serviceAccountUser", "")
	v.SetDefault("backend.serviceAccountPass", "")
	v.SetDefault("backend.allowList", []string{
		"POST /auth/login",
		"GET /patients/search",
		"GET /patients/*",
		"POST /patients",
		"GET /departments",
		"GET /departments/*/doctors",
		"POST /opd/appointments",
		"GET /opd/appointments",
		"PUT /opd/appointments/*/checkin",
		"GET /opd/queue",
		"GET /beds/availability",
		"GET /beds",
		"POST /beds/allocate",
		"POST /ipd/admissions",
		"GET /ipd/requests",
		"POST /emergency/cases",
		"GET /emergency/queue",
		"GET /lab/tests",
		"GET /lab/orders",
		"GET /billing/patient/*",
		"GET /patient/slots",
		"POST /patient/appointments",
		"GET /patient/appointments",
	})
	v.SetDefault("backend.denyList", []string{})
	v.SetDefault("backend.requestTimeoutSecs", 30)

	v.SetDefault("session.idleTimeoutSecs", 300)
	v.SetDefault("session.maxTurns", 20)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.apiKey", "")
	v.SetDefault("llm.baseUrl", "")
	v.SetDefault("llm.timeoutSecs", 30)

	v.SetDefault("speech.sttProvider", "")
	v.SetDefault("speech.ttsProvider", "")
	v.SetDefault("speech.language", "en-IN")
	v.SetDefault("speech.voiceGender", "female")

	v.SetDefault("safety.auditEncryptionKey", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", detectDefaultLogFormat())
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.otlpEndpoint", "")
	v.SetDefault("tracing.serviceName", "voicedesk")
}

// Load reads configuration from environment variables, config file, and defaults.
// Environment variables use the prefix VOICEDESK_ followed by the upper-cased
// key path with dots replaced by underscores (VOICEDESK_SESSION_MAXTURNS);
// VOICEDESK_LLM_API_KEY, VOICEDESK_BACKEND_SERVICE_ACCOUNT_PASS and
// VOICEDESK_LOG_LEVEL are bound explicitly.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from the specified path or default locations.
func LoadWithPath(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("VOICEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("llm.apiKey", "VOICEDESK_LLM_API_KEY")
	_ = v.BindEnv("backend.serviceAccountPass", "VOICEDESK_BACKEND_SERVICE_ACCOUNT_PASS")
	_ = v.BindEnv("logging.level", "VOICEDESK_LOG_LEVEL")

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/voicedesk/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks that all required configuration fields are set.
func validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	if cfg.Session.MaxTurns <= 0 {
		errs = append(errs, "session.maxTurns must be positive")
	}
	if cfg.Session.IdleTimeoutSecs <= 0 {
		errs = append(errs, "session.idleTimeoutSecs must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
