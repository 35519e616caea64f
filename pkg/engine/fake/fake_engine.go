// Package fake provides a scriptable Engine implementation for tests.
package fake

import (
	"context"
	"sync"

	"github.com/hireline/interview-agent/pkg/engine"
)

// FakeEngine records the instructions it receives and lets tests drive tool
// invocations through the registry it was created with.
type FakeEngine struct {
	registry *engine.Registry

	mu           sync.Mutex
	started      bool
	closed       bool
	instructions []string
	speech       *FakeSpeech
}

// FakeSpeech is a Speech whose playout outcome tests control.
type FakeSpeech struct {
	// PlayoutErr is returned from WaitForPlayout
	PlayoutErr error

	mu     sync.Mutex
	waited int
}

// WaitForPlayout returns PlayoutErr immediately and counts the call.
func (s *FakeSpeech) WaitForPlayout(ctx context.Context) error {
	s.mu.Lock()
	s.waited++
	s.mu.Unlock()
	return s.PlayoutErr
}

// WaitCount reports how many times WaitForPlayout was called.
func (s *FakeSpeech) WaitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waited
}

// NewFakeEngine creates a fake engine dispatching through the given registry.
func NewFakeEngine(registry *engine.Registry) *FakeEngine {
	return &FakeEngine{registry: registry}
}

// Start marks the engine as started.
func (e *FakeEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = true
	return nil
}

// GenerateReply records the instruction for later inspection.
func (e *FakeEngine) GenerateReply(ctx context.Context, instructions string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.instructions = append(e.instructions, instructions)
	return nil
}

// CurrentSpeech returns the speech set via SetSpeech, or nil.
func (e *FakeEngine) CurrentSpeech() engine.Speech {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speech == nil {
		return nil
	}
	return e.speech
}

// Close marks the engine as closed.
func (e *FakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// SetSpeech installs the speech CurrentSpeech will return.
func (e *FakeEngine) SetSpeech(speech *FakeSpeech) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speech = speech
}

// InvokeTool simulates the engine invoking a registered tool.
func (e *FakeEngine) InvokeTool(ctx context.Context, name string, args map[string]any) error {
	return e.registry.Dispatch(ctx, name, args)
}

// Instructions returns a copy of all instructions passed to GenerateReply.
func (e *FakeEngine) Instructions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.instructions))
	copy(out, e.instructions)
	return out
}

// Started reports whether Start was called.
func (e *FakeEngine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// Closed reports whether Close was called.
func (e *FakeEngine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
