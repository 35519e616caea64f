// Package gemini implements the realtime engine over the Gemini Live API.
// A single bidirectional WebSocket stream carries the candidate's microphone
// audio up and the interviewer's synthesized speech down; Gemini handles
// VAD, transcription, generation and speech synthesis server-side.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hireline/interview-agent/pkg/engine"
)

const (
	// liveURL is the Gemini Live bidirectional streaming endpoint.
	liveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// DefaultModel is the realtime model used for interviews.
	DefaultModel = "models/gemini-2.0-flash-exp"

	// DefaultVoice is the prebuilt voice the interviewer speaks with.
	DefaultVoice = "Puck"

	// DefaultLanguage is the BCP-47 code of the interview language.
	DefaultLanguage = "id-ID"

	// DefaultTemperature keeps the interviewer focused without sounding
	// scripted.
	DefaultTemperature = 0.5

	// DefaultSilenceMillis is how long the candidate must stay silent before
	// the engine considers their turn finished.
	DefaultSilenceMillis = 1000

	handshakeTimeout = 10 * time.Second
)

// Config configures the Gemini Live engine.
type Config struct {
	// APIKey authenticates against the Gemini API
	APIKey string

	// Model to stream against; defaults to DefaultModel
	Model string

	// SystemInstructions is the interviewer persona prompt
	SystemInstructions string

	// Voice is the prebuilt voice name; defaults to DefaultVoice
	Voice string

	// Language is the BCP-47 speech language code; defaults to DefaultLanguage
	Language string

	// Temperature for generation; defaults to DefaultTemperature when zero
	Temperature float64

	// SilenceMillis is the end-of-turn silence threshold; defaults to
	// DefaultSilenceMillis when zero
	SilenceMillis int

	// Registry holds the tools the model may invoke
	Registry *engine.Registry

	// AudioIn delivers 16 kHz mono PCM16 microphone audio. Closed by the
	// producer when the microphone track ends.
	AudioIn <-chan []byte

	// AudioOut receives 24 kHz mono PCM16 speech chunks as they arrive
	AudioOut func(pcm []byte) error

	// Logger for engine events
	Logger *slog.Logger
}

func (c *Config) applyDefaults() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.Registry == nil {
		return fmt.Errorf("tool registry is required")
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.SilenceMillis == 0 {
		c.SilenceMillis = DefaultSilenceMillis
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Engine streams an interview conversation through Gemini Live.
type Engine struct {
	config Config
	logger *slog.Logger

	ws   *websocket.Conn
	wsMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	started bool
	closed  bool
	speech  *speech
}

// New creates an engine from the given config. Call Start to connect.
func New(config Config) (*Engine, error) {
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	return &Engine{
		config: config,
		logger: config.Logger,
	}, nil
}

// Start dials the Live endpoint, configures the session and begins the
// receive and microphone pump loops.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return fmt.Errorf("engine already started")
	}
	e.started = true
	e.mu.Unlock()

	e.ctx, e.cancel = context.WithCancel(ctx)

	url := fmt.Sprintf("%s?key=%s", liveURL, e.config.APIKey)
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	ws, _, err := dialer.DialContext(e.ctx, url, header)
	if err != nil {
		return fmt.Errorf("failed to connect to Gemini Live: %w", err)
	}
	e.ws = ws

	if err := e.sendSetup(); err != nil {
		e.Close()
		return fmt.Errorf("failed to configure Live session: %w", err)
	}

	go e.receiveLoop()
	if e.config.AudioIn != nil {
		go e.pumpMicrophone()
	}

	e.logger.Info("Gemini Live session started",
		slog.String("model", e.config.Model),
		slog.String("voice", e.config.Voice),
		slog.String("language", e.config.Language))

	return nil
}

// GenerateReply asks the model to produce the next spoken turn following the
// given instructions.
func (e *Engine) GenerateReply(ctx context.Context, instructions string) error {
	e.mu.RLock()
	if !e.started || e.closed {
		e.mu.RUnlock()
		return fmt.Errorf("engine is not running")
	}
	e.mu.RUnlock()

	msg := map[string]any{
		"client_content": map[string]any{
			"turns": []map[string]any{
				{
					"role": "user",
					"parts": []map[string]any{
						{"text": instructions},
					},
				},
			},
			"turn_complete": true,
		},
	}
	return e.sendJSON(msg)
}

// CurrentSpeech returns the reply currently being spoken, or nil.
func (e *Engine) CurrentSpeech() engine.Speech {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.speech == nil {
		return nil
	}
	return e.speech
}

// Close tears down the Live session.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.speech != nil {
		e.speech.finish()
		e.speech = nil
	}
	e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	if e.ws != nil {
		return e.ws.Close()
	}
	return nil
}

// sendSetup sends the session configuration message. Field names follow the
// BidiGenerateContent wire format.
func (e *Engine) sendSetup() error {
	var declarations []map[string]any
	for _, tool := range e.config.Registry.Tools() {
		declarations = append(declarations, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"parameters":  tool.Schema,
		})
	}

	setup := map[string]any{
		"model": e.config.Model,
		"generation_config": map[string]any{
			"response_modalities": []string{"AUDIO"},
			"temperature":         e.config.Temperature,
			"speech_config": map[string]any{
				"voice_config": map[string]any{
					"prebuilt_voice_config": map[string]any{
						"voice_name": e.config.Voice,
					},
				},
				"language_code": e.config.Language,
			},
		},
		"realtime_input_config": map[string]any{
			"automatic_activity_detection": map[string]any{
				"silence_duration_ms": e.config.SilenceMillis,
			},
		},
	}

	if e.config.SystemInstructions != "" {
		setup["system_instruction"] = map[string]any{
			"parts": []map[string]any{
				{"text": e.config.SystemInstructions},
			},
		}
	}
	if len(declarations) > 0 {
		setup["tools"] = []map[string]any{
			{"function_declarations": declarations},
		}
	}

	return e.sendJSON(map[string]any{"setup": setup})
}

// pumpMicrophone forwards microphone PCM to the session until the stream
// ends or the engine closes.
func (e *Engine) pumpMicrophone() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case chunk, ok := <-e.config.AudioIn:
			if !ok {
				return
			}
			msg := map[string]any{
				"realtime_input": map[string]any{
					"media_chunks": []map[string]any{
						{
							"data":      base64.StdEncoding.EncodeToString(chunk),
							"mime_type": "audio/pcm",
						},
					},
				},
			}
			if err := e.sendJSON(msg); err != nil {
				e.logger.Warn("Failed to send microphone audio", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// receiveLoop processes server messages until the connection closes.
func (e *Engine) receiveLoop() {
	for {
		_, data, err := e.ws.ReadMessage()
		if err != nil {
			e.mu.RLock()
			closed := e.closed
			e.mu.RUnlock()
			if !closed {
				e.logger.Warn("Gemini Live connection lost", slog.String("error", err.Error()))
			}
			return
		}

		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			e.logger.Warn("Failed to parse Live message", slog.String("error", err.Error()))
			continue
		}

		e.handleMessage(msg)
	}
}

func (e *Engine) handleMessage(msg map[string]any) {
	if _, ok := msg["setupComplete"]; ok {
		e.logger.Debug("Gemini Live session ready")
		return
	}
	if content, ok := msg["serverContent"].(map[string]any); ok {
		e.handleServerContent(content)
		return
	}
	if toolCall, ok := msg["toolCall"].(map[string]any); ok {
		e.handleToolCall(toolCall)
		return
	}
	if _, ok := msg["toolCallCancellation"]; ok {
		e.logger.Debug("Tool call cancelled by model")
		return
	}
}

func (e *Engine) handleServerContent(content map[string]any) {
	if interrupted, ok := content["interrupted"].(bool); ok && interrupted {
		e.finishSpeech()
		return
	}
	if turnComplete, ok := content["turnComplete"].(bool); ok && turnComplete {
		e.finishSpeech()
		return
	}

	modelTurn, ok := content["modelTurn"].(map[string]any)
	if !ok {
		return
	}
	parts, ok := modelTurn["parts"].([]any)
	if !ok {
		return
	}

	for _, part := range parts {
		partMap, ok := part.(map[string]any)
		if !ok {
			continue
		}
		inlineData, ok := partMap["inlineData"].(map[string]any)
		if !ok {
			continue
		}
		data, ok := inlineData["data"].(string)
		if !ok {
			continue
		}

		pcm, err := base64.StdEncoding.DecodeString(data)
		if err != nil || len(pcm) == 0 {
			continue
		}

		e.beginSpeech()
		if e.config.AudioOut != nil {
			if err := e.config.AudioOut(pcm); err != nil {
				e.logger.Warn("Failed to play speech audio", slog.String("error", err.Error()))
			}
		}
	}
}

// handleToolCall dispatches each function call through the registry and
// reports the outcome back so the model can continue the conversation.
func (e *Engine) handleToolCall(toolCall map[string]any) {
	functionCalls, ok := toolCall["functionCalls"].([]any)
	if !ok {
		return
	}

	for _, fc := range functionCalls {
		fcMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		id, _ := fcMap["id"].(string)
		name, _ := fcMap["name"].(string)
		args, _ := fcMap["args"].(map[string]any)

		e.logger.Info("Tool invoked", slog.String("tool", name))

		result := "ok"
		if err := e.config.Registry.Dispatch(e.ctx, name, args); err != nil {
			e.logger.Error("Tool invocation failed",
				slog.String("tool", name),
				slog.String("error", err.Error()))
			result = fmt.Sprintf("error: %v", err)
		}

		response := map[string]any{
			"tool_response": map[string]any{
				"function_responses": []map[string]any{
					{
						"id":       id,
						"name":     name,
						"response": map[string]any{"result": result},
					},
				},
			},
		}
		if err := e.sendJSON(response); err != nil {
			e.logger.Warn("Failed to send tool response", slog.String("error", err.Error()))
		}
	}
}

func (e *Engine) beginSpeech() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speech == nil {
		e.speech = newSpeech()
	}
}

func (e *Engine) finishSpeech() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speech != nil {
		e.speech.finish()
		e.speech = nil
	}
}

func (e *Engine) sendJSON(v any) error {
	e.wsMu.Lock()
	defer e.wsMu.Unlock()

	if e.ws == nil {
		return fmt.Errorf("engine is not connected")
	}
	return e.ws.WriteJSON(v)
}

// speech tracks one model turn from first audio chunk to turn completion.
type speech struct {
	done chan struct{}
	once sync.Once
}

func newSpeech() *speech {
	return &speech{done: make(chan struct{})}
}

func (s *speech) finish() {
	s.once.Do(func() { close(s.done) })
}

// WaitForPlayout blocks until the turn completes or ctx is cancelled.
func (s *speech) WaitForPlayout(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
