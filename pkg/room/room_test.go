package room

import (
	"context"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		URL:       "wss://livekit.example.com",
		APIKey:    "key",
		APISecret: "secret",
		Name:      "interview-42",
		Identity:  "interview-agent",
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing URL",
			mutate:  func(c *Config) { c.URL = "" },
			wantErr: true,
		},
		{
			name:    "missing API key",
			mutate:  func(c *Config) { c.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "missing API secret",
			mutate:  func(c *Config) { c.APISecret = "" },
			wantErr: true,
		},
		{
			name:    "missing room name",
			mutate:  func(c *Config) { c.Name = "" },
			wantErr: true,
		},
		{
			name:    "missing identity",
			mutate:  func(c *Config) { c.Identity = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			r, err := New(ctx, config, nil)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if r.Events == nil {
				t.Error("events channel should be initialized")
			}
			if r.IsConnected() {
				t.Error("new room should not be connected")
			}
		})
	}
}

func TestRoom_EventBufferSize(t *testing.T) {
	r, err := New(context.Background(), validConfig(), nil)
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	if cap(r.Events) != 100 {
		t.Errorf("expected default event buffer of 100, got %d", cap(r.Events))
	}

	config := validConfig()
	config.EventBufferSize = 10
	r, err = New(context.Background(), config, nil)
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	if cap(r.Events) != 10 {
		t.Errorf("expected event buffer of 10, got %d", cap(r.Events))
	}
}

func TestRoom_WaitForParticipant_ContextCancelled(t *testing.T) {
	r, err := New(context.Background(), validConfig(), nil)
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := r.WaitForParticipant(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestRoom_Disconnect(t *testing.T) {
	r, err := New(context.Background(), validConfig(), nil)
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}

	if err := r.Disconnect(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Events channel should be closed
	select {
	case _, ok := <-r.Events:
		if ok {
			t.Error("expected events channel to be closed")
		}
	default:
		t.Error("expected events channel to be closed")
	}

	// Second disconnect should be a no-op
	if err := r.Disconnect(); err != nil {
		t.Errorf("unexpected error on second disconnect: %v", err)
	}
}

func TestNewService(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		apiKey    string
		apiSecret string
		wantErr   bool
	}{
		{"valid", "https://livekit.example.com", "key", "secret", false},
		{"missing URL", "", "key", "secret", true},
		{"missing key", "https://livekit.example.com", "", "secret", true},
		{"missing secret", "https://livekit.example.com", "key", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.url, tt.apiKey, tt.apiSecret)
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
