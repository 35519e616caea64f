package job

import (
	"context"
	"sync"
	"time"
)

// Job is one interview assignment: a single room, a single candidate, a
// single session. It carries the lifecycle context the session runs under.
type Job struct {
	// ID uniquely identifies this assignment
	ID string

	// RoomName is the room the interview takes place in
	RoomName string

	// Context coordinates shutdown of everything attached to the job
	Context *Context
}

// Context manages the lifecycle of a job. Finalization work (transcript
// submission, engine teardown) registers as shutdown hooks so it runs on
// every termination path: explicit end, disconnect, and timeout.
type Context struct {
	// Ctx is cancelled when the job ends
	Ctx context.Context

	cancel   context.CancelFunc
	mu       sync.Mutex
	hooks    []func(reason string)
	shutdown bool
}

// Config configures a new Job.
type Config struct {
	// ID for the job; generated when empty
	ID string

	// RoomName the interview runs in
	RoomName string

	// Timeout bounds the whole interview. Zero means no deadline.
	Timeout time.Duration
}

// TimeLimitGrace is added on top of the interview time limit when deriving
// the job timeout, leaving room for the closing remark and teardown.
const TimeLimitGrace = 2 * time.Minute
