package job

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config with ID",
			config: Config{
				ID:       "job_test1",
				RoomName: "interview-42",
				Timeout:  time.Minute,
			},
			wantErr: false,
		},
		{
			name: "valid config without ID",
			config: Config{
				RoomName: "interview-42",
			},
			wantErr: false,
		},
		{
			name: "missing room name",
			config: Config{
				ID: "job_test1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := New(ctx, tt.config)

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

			if j.ID == "" {
				t.Error("job ID should not be empty")
			}
			if tt.config.ID != "" && j.ID != tt.config.ID {
				t.Errorf("expected job ID %s, got %s", tt.config.ID, j.ID)
			}
			if j.RoomName != tt.config.RoomName {
				t.Errorf("expected room name %s, got %s", tt.config.RoomName, j.RoomName)
			}
			if !j.IsActive() {
				t.Error("new job should be active")
			}
		})
	}
}

func TestJob_Shutdown(t *testing.T) {
	j, err := New(context.Background(), Config{RoomName: "interview-42"})
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}

	j.Shutdown("candidate finished")
	time.Sleep(10 * time.Millisecond)

	if j.IsActive() {
		t.Error("job should not be active after shutdown")
	}
	if err := j.Wait(); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestContext_ShutdownHooksRunOnce(t *testing.T) {
	jc := NewContext(context.Background())

	var mu sync.Mutex
	var calls int
	var reasons []string

	jc.OnShutdown(func(reason string) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		reasons = append(reasons, reason)
	})

	jc.Shutdown("disconnect")
	jc.Shutdown("timeout")
	jc.Shutdown("disconnect")
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 hook call, got %d", calls)
	}
	if len(reasons) != 1 || reasons[0] != "disconnect" {
		t.Errorf("expected first shutdown reason to win, got %v", reasons)
	}
}

func TestContext_OnShutdownAfterShutdown(t *testing.T) {
	jc := NewContext(context.Background())
	jc.Shutdown("candidate finished")
	time.Sleep(10 * time.Millisecond)

	var mu sync.Mutex
	var called bool
	jc.OnShutdown(func(reason string) {
		mu.Lock()
		called = true
		mu.Unlock()
	})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !called {
		t.Error("hook registered after shutdown should run immediately")
	}
}

func TestContext_ConcurrentShutdown(t *testing.T) {
	jc := NewContext(context.Background())

	var mu sync.Mutex
	var calls int
	jc.OnShutdown(func(reason string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jc.Shutdown("concurrent")
		}()
	}
	wg.Wait()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 hook call, got %d", calls)
	}
}

func TestJob_Timeout(t *testing.T) {
	j, err := New(context.Background(), Config{
		RoomName: "interview-42",
		Timeout:  50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}

	if err := j.Wait(); err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if j.IsActive() {
		t.Error("job should not be active after timeout")
	}
}
