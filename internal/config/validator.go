package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateServer(&cfg.Server)
	v.validateDatabase(&cfg.Database)
	v.validateAssistant(&cfg.Assistant)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Errors returns the collected validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
	})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		v.addError("log.level", cfg.Level, "must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"auto": true, "text": true, "json": true,
	}
	if !validFormats[cfg.Format] {
		v.addError("log.format", cfg.Format, "must be one of: auto, text, json")
	}
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		v.addError("server.port", cfg.Port, "must be between 1 and 65535")
	}

	if cfg.AppURL != "" && !isHTTPURL(cfg.AppURL) {
		v.addError("server.app_url", cfg.AppURL, "must be an http(s) URL")
	}

	for _, origin := range cfg.CORSOrigins {
		if origin != "*" && !isHTTPURL(origin) {
			v.addError("server.cors_origins", origin, "must be * or an http(s) origin")
		}
	}

	v.validateDuration("server.request_timeout", cfg.RequestTimeout)
}

func (v *Validator) validateDatabase(cfg *DatabaseConfig) {
	if cfg.Path == "" {
		v.addError("database.path", cfg.Path, "path required")
	} else if !isValidPath(cfg.Path) {
		v.addError("database.path", cfg.Path, "invalid file path")
	}
}

func (v *Validator) validateAssistant(cfg *AssistantConfig) {
	if strings.TrimSpace(cfg.DefaultModel) == "" {
		v.addError("assistant.default_model", cfg.DefaultModel, "model required")
	}

	if !isHTTPURL(cfg.DefaultAPIURL) {
		v.addError("assistant.default_api_url", cfg.DefaultAPIURL, "must be an http(s) URL")
	}

	v.validateDuration("assistant.session_ttl", cfg.SessionTTL)
	v.validateDuration("assistant.reaper_interval", cfg.ReaperInterval)

	if cfg.CommandsFile != "" {
		if _, err := os.Stat(cfg.CommandsFile); err != nil {
			v.addError("assistant.commands_file", cfg.CommandsFile, "file not readable")
		}
	}

	for _, word := range cfg.Heuristics.Denylist {
		if strings.TrimSpace(word) == "" {
			v.addError("assistant.heuristics.denylist", word, "entries cannot be empty")
		}
	}

	if cfg.RateLimit.MaxTokens < 1 {
		v.addError("assistant.rate_limit.max_tokens", cfg.RateLimit.MaxTokens, "must be at least 1")
	}
	if cfg.RateLimit.RefillRate <= 0 {
		v.addError("assistant.rate_limit.refill_rate", cfg.RateLimit.RefillRate, "must be positive")
	}
}

func (v *Validator) validateDuration(field, value string) {
	d, err := time.ParseDuration(value)
	if err != nil {
		v.addError(field, value, "invalid duration format")
		return
	}
	if d <= 0 {
		v.addError(field, value, "must be positive")
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isValidPath(path string) bool {
	dir := filepath.Dir(path)
	_, err := os.Stat(dir)
	return err == nil || os.IsNotExist(err)
}

// ValidateConfig is a convenience function that creates a validator and validates config.
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}
