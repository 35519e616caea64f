package worker

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
)

func testWorkerConfig() Config {
	return Config{
		URL:     "wss://example.com",
		Token:   "test-token",
		Handler: func(ctx context.Context, roomName string) {},
	}
}

func TestWorker_New(t *testing.T) {
	is := is.New(t)

	config := testWorkerConfig()
	worker, err := New(config, slog.Default())
	is.NoErr(err)

	is.Equal(worker.url, config.URL)     // worker URL should match config
	is.Equal(worker.token, config.Token) // worker token should match config
	is.True(worker.in != nil)            // in channel should be initialized
	is.True(worker.out != nil)           // out channel should be initialized
}

func TestWorker_New_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing URL", func(c *Config) { c.URL = "" }},
		{"missing token", func(c *Config) { c.Token = "" }},
		{"missing handler", func(c *Config) { c.Handler = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testWorkerConfig()
			tt.mutate(&config)
			if _, err := New(config, slog.Default()); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestWorker_IsConnected(t *testing.T) {
	is := is.New(t)

	worker, err := New(testWorkerConfig(), slog.Default())
	is.NoErr(err)

	is.True(!worker.IsConnected()) // worker should start disconnected

	worker.setConnected(true)
	is.True(worker.IsConnected())

	worker.setConnected(false)
	is.True(!worker.IsConnected())
}

func TestWorker_HandleSignal_Ping(t *testing.T) {
	worker, err := New(testWorkerConfig(), slog.Default())
	if err != nil {
		t.Fatalf("failed to create worker: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	worker.handleSignal(ctx, &Signal{
		Type: "ping",
		Data: map[string]any{"id": "test-ping"},
	})

	select {
	case cmd := <-worker.out:
		if cmd.Type != "pong" {
			t.Errorf("expected pong response, got %s", cmd.Type)
		}
		if cmd.Data["id"] != "test-ping" {
			t.Errorf("expected pong to echo ping data, got %v", cmd.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("expected pong response within 100ms")
	}
}

func TestWorker_HandleSignal_StartInterview(t *testing.T) {
	is := is.New(t)

	var mu sync.Mutex
	var rooms []string

	config := testWorkerConfig()
	config.Handler = func(ctx context.Context, roomName string) {
		mu.Lock()
		rooms = append(rooms, roomName)
		mu.Unlock()
	}

	worker, err := New(config, slog.Default())
	is.NoErr(err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	worker.handleSignal(ctx, &Signal{
		Type: SignalTypeStartInterview,
		Data: map[string]any{"room_name": "interview-42"},
	})
	worker.jobs.Wait()

	mu.Lock()
	defer mu.Unlock()
	is.Equal(rooms, []string{"interview-42"})
}

func TestWorker_HandleSignal_StartInterviewWithoutRoom(t *testing.T) {
	is := is.New(t)

	var mu sync.Mutex
	var dispatched bool

	config := testWorkerConfig()
	config.Handler = func(ctx context.Context, roomName string) {
		mu.Lock()
		dispatched = true
		mu.Unlock()
	}

	worker, err := New(config, slog.Default())
	is.NoErr(err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	worker.handleSignal(ctx, &Signal{Type: SignalTypeStartInterview})
	worker.jobs.Wait()

	mu.Lock()
	defer mu.Unlock()
	is.True(!dispatched) // assignment without a room name should be ignored
}

func TestWorker_HandleSignal_Unknown(t *testing.T) {
	worker, err := New(testWorkerConfig(), slog.Default())
	if err != nil {
		t.Fatalf("failed to create worker: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	worker.handleSignal(ctx, &Signal{
		Type: "unknownType",
		Data: map[string]any{"foo": "bar"},
	})

	select {
	case <-worker.out:
		t.Error("no response expected for unknown signal type")
	case <-time.After(50 * time.Millisecond):
		// Expected - no response
	}
}

func TestBackoffCalculation(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},  // capped at 10s
		{10, 10 * time.Second}, // still capped
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			worker, err := New(testWorkerConfig(), slog.Default())
			if err != nil {
				t.Fatalf("failed to create worker: %v", err)
			}

			worker.mu.Lock()
			worker.backoffAttempt = tt.attempt - 1
			worker.mu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			err = worker.backoffDelay(ctx)
			duration := time.Since(start)

			if err != context.DeadlineExceeded {
				t.Errorf("expected context deadline exceeded, got %v", err)
			}

			// Allow some tolerance for timing
			if duration < 40*time.Millisecond {
				t.Errorf("backoff should have waited at least 40ms, waited %v", duration)
			}
		})
	}
}

func TestSignal_InterviewRoom(t *testing.T) {
	tests := []struct {
		name     string
		signal   Signal
		wantRoom string
		wantOK   bool
	}{
		{
			name: "assignment with room",
			signal: Signal{
				Type: SignalTypeStartInterview,
				Data: map[string]any{"room_name": "interview-42"},
			},
			wantRoom: "interview-42",
			wantOK:   true,
		},
		{
			name:   "assignment without data",
			signal: Signal{Type: SignalTypeStartInterview},
		},
		{
			name: "assignment with non-string room",
			signal: Signal{
				Type: SignalTypeStartInterview,
				Data: map[string]any{"room_name": 42},
			},
		},
		{
			name: "non-assignment signal",
			signal: Signal{
				Type: SignalTypePing,
				Data: map[string]any{"room_name": "interview-42"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, ok := tt.signal.InterviewRoom()
			if ok != tt.wantOK {
				t.Errorf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if room != tt.wantRoom {
				t.Errorf("expected room %q, got %q", tt.wantRoom, room)
			}
		})
	}
}

func TestBuildAgentToken(t *testing.T) {
	is := is.New(t)

	token, err := BuildAgentToken("api-key", "api-secret-with-enough-entropy", "interview-agent")
	is.NoErr(err)
	is.True(token != "") // token should be a signed JWT

	_, err = BuildAgentToken("", "secret", "interview-agent")
	is.True(err != nil)

	_, err = BuildAgentToken("key", "secret", "")
	is.True(err != nil)
}
