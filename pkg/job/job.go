// Package job manages the lifecycle of one interview assignment. A job pins
// a session to a room and guarantees that finalization hooks fire once on
// any termination path.
package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// New creates a Job for the given room. When cfg.Timeout is set, the job
// context expires after it; an expired job goes through the same shutdown
// hooks as an explicitly ended one.
func New(parent context.Context, cfg Config) (*Job, error) {
	if cfg.RoomName == "" {
		return nil, fmt.Errorf("room name is required")
	}

	id := cfg.ID
	if id == "" {
		id = "job_" + uuid.NewString()
	}

	ctx := parent
	var timeoutCancel context.CancelFunc
	if cfg.Timeout > 0 {
		ctx, timeoutCancel = context.WithTimeout(parent, cfg.Timeout)
	}

	j := &Job{
		ID:       id,
		RoomName: cfg.RoomName,
		Context:  NewContext(ctx),
	}
	if timeoutCancel != nil {
		// Release the deadline timer once the job winds down.
		j.Context.OnShutdown(func(string) { timeoutCancel() })
	}

	slog.Info("Created interview job",
		slog.String("job_id", id),
		slog.String("room_name", cfg.RoomName),
		slog.Duration("timeout", cfg.Timeout))

	return j, nil
}

// Shutdown ends the job with the given reason.
func (j *Job) Shutdown(reason string) {
	j.Context.Shutdown(reason)
}

// Wait blocks until the job ends and returns the context error.
func (j *Job) Wait() error {
	<-j.Context.Done()
	return j.Context.Err()
}

// IsActive reports whether the job is still running.
func (j *Job) IsActive() bool {
	return !j.Context.IsShutdown()
}

func (j *Job) String() string {
	status := "active"
	if j.Context.IsShutdown() {
		status = "shutdown"
	}
	return fmt.Sprintf("Job{ID: %s, Room: %s, Status: %s}", j.ID, j.RoomName, status)
}
