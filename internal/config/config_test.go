package config

import (
	"strings"
	"testing"
)

func workerConfig() Config {
	return Config{
		LiveKitURL:       "wss://livekit.example.com",
		LiveKitAPIKey:    "key",
		LiveKitAPISecret: "secret",
		GeminiAPIKey:     "gemini-key",
		APIBaseURL:       "https://api.example.com",
		Identity:         DefaultIdentity,
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLiveKitURL, "wss://livekit.example.com")
	t.Setenv(EnvLiveKitAPIKey, "key")
	t.Setenv(EnvLiveKitAPISecret, "secret")
	t.Setenv(EnvGeminiAPIKey, "gemini-key")
	t.Setenv(EnvOpenAIAPIKey, "openai-key")
	t.Setenv(EnvAPIBaseURL, "https://api.example.com")

	c := FromEnv()

	if c.LiveKitURL != "wss://livekit.example.com" {
		t.Errorf("unexpected LiveKit URL: %s", c.LiveKitURL)
	}
	if c.GeminiAPIKey != "gemini-key" {
		t.Errorf("unexpected Gemini key: %s", c.GeminiAPIKey)
	}
	if c.OpenAIAPIKey != "openai-key" {
		t.Errorf("unexpected OpenAI key: %s", c.OpenAIAPIKey)
	}
	if c.Identity != DefaultIdentity {
		t.Errorf("expected default identity, got %s", c.Identity)
	}
}

func TestValidateWorker(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantEnv string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing URL", func(c *Config) { c.LiveKitURL = "" }, EnvLiveKitURL},
		{"missing API key", func(c *Config) { c.LiveKitAPIKey = "" }, EnvLiveKitAPIKey},
		{"missing API secret", func(c *Config) { c.LiveKitAPISecret = "" }, EnvLiveKitAPISecret},
		{"missing Gemini key", func(c *Config) { c.GeminiAPIKey = "" }, EnvGeminiAPIKey},
		{"missing API base URL", func(c *Config) { c.APIBaseURL = "" }, EnvAPIBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := workerConfig()
			tt.mutate(&c)

			err := c.ValidateWorker()
			if tt.wantEnv == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantEnv) {
				t.Errorf("expected error naming %s, got %v", tt.wantEnv, err)
			}
		})
	}
}

func TestValidateConsole(t *testing.T) {
	c := Config{OpenAIAPIKey: "openai-key"}
	if err := c.ValidateConsole(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	c.OpenAIAPIKey = ""
	if err := c.ValidateConsole(); err == nil {
		t.Error("expected error but got none")
	}
}
