// Package openai implements a text-only engine for console interviews. It
// drives the same tool surface as the realtime engine but exchanges typed
// messages through OpenAI chat completions instead of speech.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hireline/interview-agent/pkg/engine"
)

// DefaultModel is the chat model used for console interviews.
const DefaultModel = openai.GPT4oMini

// maxToolRounds bounds the completion/tool loop for a single turn.
const maxToolRounds = 8

// Config configures the console engine.
type Config struct {
	// APIKey authenticates against the OpenAI API
	APIKey string

	// Model to chat with; defaults to DefaultModel
	Model string

	// SystemInstructions is the interviewer persona prompt
	SystemInstructions string

	// Registry holds the tools the model may invoke
	Registry *engine.Registry

	// Output receives the interviewer's replies; defaults to os.Stdout
	Output io.Writer

	// Logger for engine events
	Logger *slog.Logger
}

// Engine runs a text interview over chat completions.
type Engine struct {
	client   *openai.Client
	config   Config
	logger   *slog.Logger
	tools    []openai.Tool
	out      io.Writer
	mu       sync.Mutex
	messages []openai.ChatCompletionMessage
	started  bool
	closed   bool
}

// New creates a console engine from the given config.
func New(config Config) (*Engine, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	var tools []openai.Tool
	for _, tool := range config.Registry.Tools() {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Schema,
			},
		})
	}

	return &Engine{
		client: openai.NewClient(config.APIKey),
		config: config,
		logger: config.Logger,
		tools:  tools,
		out:    config.Output,
	}, nil
}

// Start seeds the conversation with the interviewer persona.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return fmt.Errorf("engine already started")
	}
	e.started = true

	if e.config.SystemInstructions != "" {
		e.messages = append(e.messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: e.config.SystemInstructions,
		})
	}
	return nil
}

// GenerateReply runs one completion turn following the given instructions
// and prints the interviewer's reply.
func (e *Engine) GenerateReply(ctx context.Context, instructions string) error {
	return e.turn(ctx, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: instructions,
	})
}

// SendUserMessage feeds one line of candidate input into the conversation
// and prints the interviewer's reply. The console command calls this for
// each line the candidate types.
func (e *Engine) SendUserMessage(ctx context.Context, text string) error {
	return e.turn(ctx, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})
}

// CurrentSpeech always returns nil: text output has no playout to wait for.
func (e *Engine) CurrentSpeech() engine.Speech {
	return nil
}

// Close stops accepting turns.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// turn appends the message, then loops completions until the model produces
// a reply without further tool calls.
func (e *Engine) turn(ctx context.Context, msg openai.ChatCompletionMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started || e.closed {
		return fmt.Errorf("engine is not running")
	}

	e.messages = append(e.messages, msg)

	for round := 0; round < maxToolRounds; round++ {
		resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    e.config.Model,
			Messages: e.messages,
			Tools:    e.tools,
		})
		if err != nil {
			return fmt.Errorf("chat completion request failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no chat completion choices returned")
		}

		choice := resp.Choices[0]
		e.messages = append(e.messages, choice.Message)

		if len(choice.Message.ToolCalls) == 0 {
			if choice.Message.Content != "" {
				fmt.Fprintf(e.out, "interviewer: %s\n", choice.Message.Content)
			}
			return nil
		}

		for _, tc := range choice.Message.ToolCalls {
			e.messages = append(e.messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    e.invokeTool(ctx, tc),
				ToolCallID: tc.ID,
			})
		}
	}

	return fmt.Errorf("tool loop did not settle after %d rounds", maxToolRounds)
}

func (e *Engine) invokeTool(ctx context.Context, tc openai.ToolCall) string {
	var args map[string]any
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			e.logger.Error("Failed to decode tool arguments",
				slog.String("tool", tc.Function.Name),
				slog.String("error", err.Error()))
			return fmt.Sprintf("error: invalid arguments: %v", err)
		}
	}

	e.logger.Info("Tool invoked", slog.String("tool", tc.Function.Name))

	if err := e.config.Registry.Dispatch(ctx, tc.Function.Name, args); err != nil {
		e.logger.Error("Tool invocation failed",
			slog.String("tool", tc.Function.Name),
			slog.String("error", err.Error()))
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}
