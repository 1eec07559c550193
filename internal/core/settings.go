package core

import (
	"net/url"
	"strings"
)

// EditableSettings lists the keys users may read and write, in display order.
var EditableSettings = []string{
	SettingAIEnabled,
	SettingAIAPIKey,
	SettingAIModel,
	SettingAIAPIURL,
}

// IsEditableSetting reports whether key is one of EditableSettings.
func IsEditableSetting(key string) bool {
	for _, k := range EditableSettings {
		if k == key {
			return true
		}
	}
	return false
}

// ValidateSetting checks a value before it is stored under key.
func ValidateSetting(key, value string) error {
	if !IsEditableSetting(key) {
		return ErrValidation(CodeInvalidConfig, "unknown setting "+key)
	}
	switch key {
	case SettingAIEnabled:
		if value != "true" && value != "false" {
			return ErrValidation(CodeInvalidConfig, "ai_enabled must be true or false")
		}
	case SettingAIAPIURL:
		if value == "" {
			return nil
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrValidation(CodeInvalidConfig, "ai_api_url must be an http(s) URL")
		}
	}
	return nil
}

// DisplaySetting returns value as it may be shown to a user. The API key
// keeps only its last four characters.
func DisplaySetting(key, value string) string {
	if key == SettingAIAPIKey {
		return MaskSecret(value)
	}
	return value
}

// MaskSecret keeps the last four characters of a secret.
func MaskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", 8) + v[len(v)-4:]
}
