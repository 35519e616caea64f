// Package config loads agent configuration from the environment.
package config

import (
	"fmt"
	"os"
)

// Environment variable names.
const (
	EnvLiveKitURL       = "LIVEKIT_URL"
	EnvLiveKitAPIKey    = "LIVEKIT_API_KEY"
	EnvLiveKitAPISecret = "LIVEKIT_API_SECRET"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvAPIBaseURL       = "API_BASE_URL"
)

// DefaultIdentity is the participant identity the agent joins rooms with.
const DefaultIdentity = "interview-agent"

// Config holds everything the agent needs to run.
type Config struct {
	// LiveKitURL is the LiveKit server the worker registers with
	LiveKitURL string

	// LiveKitAPIKey and LiveKitAPISecret authenticate the agent
	LiveKitAPIKey    string
	LiveKitAPISecret string

	// GeminiAPIKey authenticates the realtime engine
	GeminiAPIKey string

	// OpenAIAPIKey authenticates the console engine
	OpenAIAPIKey string

	// APIBaseURL is the backend that receives interview results
	APIBaseURL string

	// Identity the agent joins rooms with
	Identity string
}

// FromEnv reads configuration from the environment. Missing values are not
// an error here; each run mode validates what it actually needs.
func FromEnv() Config {
	return Config{
		LiveKitURL:       os.Getenv(EnvLiveKitURL),
		LiveKitAPIKey:    os.Getenv(EnvLiveKitAPIKey),
		LiveKitAPISecret: os.Getenv(EnvLiveKitAPISecret),
		GeminiAPIKey:     os.Getenv(EnvGeminiAPIKey),
		OpenAIAPIKey:     os.Getenv(EnvOpenAIAPIKey),
		APIBaseURL:       os.Getenv(EnvAPIBaseURL),
		Identity:         DefaultIdentity,
	}
}

// ValidateWorker checks the values the worker mode needs.
func (c Config) ValidateWorker() error {
	if c.LiveKitURL == "" {
		return fmt.Errorf("%s is required", EnvLiveKitURL)
	}
	if c.LiveKitAPIKey == "" {
		return fmt.Errorf("%s is required", EnvLiveKitAPIKey)
	}
	if c.LiveKitAPISecret == "" {
		return fmt.Errorf("%s is required", EnvLiveKitAPISecret)
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%s is required", EnvGeminiAPIKey)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("%s is required", EnvAPIBaseURL)
	}
	return nil
}

// ValidateConsole checks the values the console mode needs.
func (c Config) ValidateConsole() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%s is required", EnvOpenAIAPIKey)
	}
	return nil
}
