package provider

import (
	"errors"
	"testing"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{Kind: KindOpenAI})
	if !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth for missing key, got %v", err)
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(Config{Kind: Kind("mystery"), APIKey: "k"})
	if err == nil {
		t.Error("expected error for unknown provider kind")
	}
}

func TestNewBuildsClientPerKind(t *testing.T) {
	tests := []struct {
		kind    Kind
		baseURL string
	}{
		{KindOpenAI, ""},
		{KindDeepSeek, ""},
		{KindCustom, "http://localhost:8080/v1"},
		{KindAzure, "https://example.openai.azure.com"},
		{KindAnthropic, ""},
		{KindGoogle, ""},
	}
	for _, tt := range tests {
		c, err := New(Config{Kind: tt.kind, APIKey: "k", BaseURL: tt.baseURL})
		if err != nil {
			t.Errorf("New(%s) returned error: %v", tt.kind, err)
			continue
		}
		if c == nil {
			t.Errorf("New(%s) returned nil client", tt.kind)
		}
	}
}

func TestKindDefaults(t *testing.T) {
	for _, k := range Kinds() {
		if k.RequiresBaseURL() {
			if k.DefaultBaseURL() != "" {
				t.Errorf("%s requires a base URL but has default %q", k, k.DefaultBaseURL())
			}
			continue
		}
		if k.DefaultBaseURL() == "" {
			t.Errorf("%s should have a default base URL", k)
		}
		if k.DefaultModel() == "" {
			t.Errorf("%s should have a default model", k)
		}
	}
}

func TestKindDisplayName(t *testing.T) {
	if got := KindCustom.DisplayName("ollama"); got != "Custom (ollama)" {
		t.Errorf("unexpected display name %q", got)
	}
	if got := KindCustom.DisplayName(""); got != "Custom" {
		t.Errorf("unexpected display name %q", got)
	}
	if got := KindOpenAI.DisplayName("ignored"); got != "OpenAI" {
		t.Errorf("unexpected display name %q", got)
	}
}
