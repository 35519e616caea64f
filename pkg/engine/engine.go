// Package engine defines the narrow contract between the interview agent and
// the realtime conversational engine that drives the actual spoken exchange.
// The engine owns speech recognition, turn taking and speech synthesis; the
// agent only issues generation instructions and receives tool invocations.
package engine

import "context"

// Engine is the conversational engine as seen by the agent. Implementations
// dispatch tool invocations through the Registry they were constructed with.
type Engine interface {
	// Start begins the engine's receive loop. It returns once the engine is
	// accepting instructions; the loop itself runs until ctx is cancelled or
	// Close is called.
	Start(ctx context.Context) error

	// GenerateReply instructs the engine to produce a spoken reply following
	// the given instructions. Fire-and-forget: pacing and delivery are the
	// engine's responsibility.
	GenerateReply(ctx context.Context, instructions string) error

	// CurrentSpeech returns the speech currently being played out, or nil if
	// the engine is not speaking.
	CurrentSpeech() Speech

	// Close shuts the engine down and releases its provider connection.
	Close() error
}

// Speech represents one in-flight spoken reply.
type Speech interface {
	// WaitForPlayout blocks until the reply has finished playing out or ctx
	// is cancelled.
	WaitForPlayout(ctx context.Context) error
}
