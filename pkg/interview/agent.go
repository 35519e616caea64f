package interview

import (
	"context"
	"log/slog"
	"time"

	"github.com/hireline/interview-agent/pkg/engine"
	"github.com/hireline/interview-agent/pkg/webhook"
)

// RoomService tears down the communication room when the interview ends.
type RoomService interface {
	DeleteRoom(ctx context.Context, roomName string) error
}

// ResultsPoster delivers the completion payload to the results webhook.
type ResultsPoster interface {
	PostResult(ctx context.Context, result webhook.Result) error
}

// Tool names exposed to the conversational engine.
const (
	ToolRecordResponse = "record_response"
	ToolEndInterview   = "end_interview"
)

// Agent conducts one interview session over a conversational engine. It owns
// the session state; the engine, room service and results poster are
// collaborators it only calls into.
type Agent struct {
	session *Session
	engine  engine.Engine
	rooms   RoomService
	results ResultsPoster
	logger  *slog.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewAgent creates an interview agent for the given session. rooms may be
// nil when there is no room to tear down (console mode).
func NewAgent(session *Session, eng engine.Engine, rooms RoomService, results ResultsPoster, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		session: session,
		engine:  eng,
		rooms:   rooms,
		results: results,
		logger:  logger,
		now:     time.Now,
	}
}

// Session returns the session this agent drives.
func (a *Agent) Session() *Session {
	return a.session
}

// RegisterTools declares the agent's tools on the registry the engine
// dispatches through.
func (a *Agent) RegisterTools(registry *engine.Registry) error {
	if err := registry.Register(engine.Tool{
		Name:        ToolRecordResponse,
		Description: "Record the candidate's response to an interview question. Call this after every answer.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question that was asked",
				},
				"response": map[string]any{
					"type":        "string",
					"description": "The candidate's response to the question",
				},
				"skill": map[string]any{
					"type":        "string",
					"description": "The skill being assessed, e.g. Go, SQL, React",
				},
			},
			"required": []string{"question", "response", "skill"},
		},
		Handler: a.recordResponse,
	}); err != nil {
		return err
	}

	return registry.Register(engine.Tool{
		Name:        ToolEndInterview,
		Description: "End the interview once the candidate signals they are done. The session terminates after this tool runs.",
		Schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: a.endInterview,
	})
}

// OnEnter runs when the session becomes active. It issues the single
// greeting and question-generation instruction; delivery pacing across the
// time window is the engine's responsibility.
func (a *Agent) OnEnter(ctx context.Context) error {
	if err := a.session.Activate(); err != nil {
		return err
	}

	a.logger.Info("Interview session active",
		slog.String("applicant", a.session.ApplicantName),
		slog.String("skills", a.session.Skills),
		slog.Int("questions_per_skill", a.session.QuestionsPerSkill),
		slog.Int("time_limit_minutes", a.session.TimeLimitMinutes))

	return a.engine.GenerateReply(ctx, greetingInstructions(a.session, a.now()))
}

// OnExit finalizes the session after it has stopped accepting tool calls,
// whatever ended it: explicit end, disconnect, or timeout. The webhook
// delivery is attempted once; failures are logged and the session closes
// regardless.
func (a *Agent) OnExit(ctx context.Context) {
	a.session.BeginEnding()
	defer a.session.Close()

	result := a.session.Result()
	a.logger.Info("Interview ended, submitting transcript",
		slog.Int("applicant_id", result.ApplicantID),
		slog.Int("invitation_id", result.InvitationID),
		slog.Int("entries", len(result.Transcript)))

	if err := a.results.PostResult(ctx, result); err != nil {
		a.logger.Error("Failed to deliver interview result",
			slog.Int("invitation_id", result.InvitationID),
			slog.String("error", err.Error()))
	}
}

// recordResponse appends one transcript entry. It never fails: the engine
// guarantees the argument shape and recording is a pure side effect.
func (a *Agent) recordResponse(ctx context.Context, args map[string]any) error {
	question, _ := args["question"].(string)
	response, _ := args["response"].(string)
	skill, _ := args["skill"].(string)

	a.session.Record(question, response, skill)

	a.logger.Debug("Recorded response",
		slog.String("skill", skill),
		slog.String("question", question))
	return nil
}

// endInterview waits for any in-flight speech to finish playing out, then
// requests deletion of the room. The deletion is attempted exactly once even
// when the playout wait fails; neither failure reaches the candidate.
func (a *Agent) endInterview(ctx context.Context, args map[string]any) error {
	if speech := a.engine.CurrentSpeech(); speech != nil {
		if err := speech.WaitForPlayout(ctx); err != nil {
			a.logger.Warn("Playout wait failed before ending interview",
				slog.String("error", err.Error()))
		}
	}

	if a.rooms == nil {
		a.logger.Debug("No room service configured, skipping room deletion")
		return nil
	}

	a.logger.Info("Ending interview, deleting room",
		slog.String("room_name", a.session.RoomName))

	if err := a.rooms.DeleteRoom(ctx, a.session.RoomName); err != nil {
		a.logger.Error("Failed to delete room",
			slog.String("room_name", a.session.RoomName),
			slog.String("error", err.Error()))
	}
	return nil
}
