package core

import "testing"

func TestValidateSetting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{SettingAIEnabled, "true", false},
		{SettingAIEnabled, "false", false},
		{SettingAIEnabled, "yes", true},
		{SettingAIAPIURL, "", false},
		{SettingAIAPIURL, "https://api.openai.com/v1", false},
		{SettingAIAPIURL, "http://localhost:11434/v1", false},
		{SettingAIAPIURL, "api.openai.com", true},
		{SettingAIAPIURL, "ftp://example.com", true},
		{SettingAIAPIKey, "sk-anything", false},
		{SettingAIModel, "", false},
		{"theme", "dark", true},
	}

	for _, tt := range tests {
		err := ValidateSetting(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSetting(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
		if err != nil && !IsCategory(err, ErrCatValidation) {
			t.Errorf("ValidateSetting(%q, %q) category = %v, want validation", tt.key, tt.value, err)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"":                              "",
		"short":                         "*****",
		"sk-abcdefghijklmnopqrstuvwxyz": "********wxyz",
	}
	for in, want := range cases {
		if got := MaskSecret(in); got != want {
			t.Errorf("MaskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplaySetting(t *testing.T) {
	t.Parallel()
	if got := DisplaySetting(SettingAIAPIKey, "sk-abcdefghijkl"); got != "********ijkl" {
		t.Errorf("api key shown as %q", got)
	}
	if got := DisplaySetting(SettingAIModel, "gpt-4o"); got != "gpt-4o" {
		t.Errorf("model shown as %q", got)
	}
}
