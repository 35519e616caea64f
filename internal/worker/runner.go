package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hireline/interview-agent/internal/config"
	"github.com/hireline/interview-agent/pkg/engine"
	"github.com/hireline/interview-agent/pkg/engine/gemini"
	"github.com/hireline/interview-agent/pkg/interview"
	"github.com/hireline/interview-agent/pkg/job"
	"github.com/hireline/interview-agent/pkg/room"
	"github.com/hireline/interview-agent/pkg/rtc"
	"github.com/hireline/interview-agent/pkg/webhook"
)

// setupTimeout bounds the wait for the candidate to join and publish audio.
const setupTimeout = 2 * time.Minute

// finalizeTimeout bounds transcript submission during job shutdown. It stays
// under the shutdown hook budget.
const finalizeTimeout = 8 * time.Second

// Runner executes interview assignments. One Runner serves all jobs; every
// job gets its own room connection, engine and session.
type Runner struct {
	cfg     config.Config
	rooms   *room.Service
	results *webhook.Client
	logger  *slog.Logger
}

// NewRunner wires the shared collaborators for interview jobs.
func NewRunner(cfg config.Config, logger *slog.Logger) (*Runner, error) {
	rooms, err := room.NewService(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
	if err != nil {
		return nil, err
	}
	results, err := webhook.NewClient(cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		cfg:     cfg,
		rooms:   rooms,
		results: results,
		logger:  logger,
	}, nil
}

// RunJob conducts one interview in the named room. Errors are logged rather
// than returned: an assignment that fails setup simply ends, and anything
// past setup finalizes through the job's shutdown hooks.
func (r *Runner) RunJob(ctx context.Context, roomName string) {
	logger := r.logger.With(slog.String("room_name", roomName))

	roomConfig := room.Config{
		URL:       r.cfg.LiveKitURL,
		APIKey:    r.cfg.LiveKitAPIKey,
		APISecret: r.cfg.LiveKitAPISecret,
		Name:      roomName,
		Identity:  r.cfg.Identity,
	}

	rm, err := room.New(ctx, roomConfig, logger)
	if err != nil {
		logger.Error("Failed to prepare room", slog.String("error", err.Error()))
		return
	}
	defer rm.Disconnect()

	if err := rm.Connect(roomConfig); err != nil {
		logger.Error("Failed to join room", slog.String("error", err.Error()))
		return
	}

	setupCtx, cancelSetup := context.WithTimeout(ctx, setupTimeout)
	defer cancelSetup()

	participant, err := rm.WaitForParticipant(setupCtx)
	if err != nil {
		logger.Error("No candidate joined the room", slog.String("error", err.Error()))
		return
	}

	metadata, err := interview.ParseMetadata(participant.Metadata)
	if err != nil {
		logger.Error("Rejecting interview, bad participant metadata",
			slog.String("participant", participant.Identity),
			slog.String("error", err.Error()))
		return
	}

	session := interview.NewSession(metadata, roomName)

	j, err := job.New(ctx, job.Config{
		RoomName: roomName,
		Timeout:  time.Duration(session.TimeLimitMinutes)*time.Minute + job.TimeLimitGrace,
	})
	if err != nil {
		logger.Error("Failed to create job", slog.String("error", err.Error()))
		return
	}

	track, err := rm.WaitForAudioTrack(setupCtx)
	if err != nil {
		logger.Error("Candidate never published audio", slog.String("error", err.Error()))
		j.Shutdown("no candidate audio")
		return
	}

	mic, err := rtc.NewMicStream(track, logger)
	if err != nil {
		logger.Error("Failed to open microphone stream", slog.String("error", err.Error()))
		j.Shutdown("microphone setup failed")
		return
	}
	defer mic.Close()

	playback, err := rtc.NewPlayback(rm.LKRoom(), logger)
	if err != nil {
		logger.Error("Failed to publish voice track", slog.String("error", err.Error()))
		j.Shutdown("playback setup failed")
		return
	}
	defer playback.Close()

	registry := engine.NewRegistry()

	eng, err := gemini.New(gemini.Config{
		APIKey:             r.cfg.GeminiAPIKey,
		SystemInstructions: interview.SystemPrompt,
		Registry:           registry,
		AudioIn:            mic.Frames(),
		AudioOut:           playback.Write,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to create engine", slog.String("error", err.Error()))
		j.Shutdown("engine setup failed")
		return
	}

	agent := interview.NewAgent(session, eng, r.rooms, r.results, logger)
	if err := agent.RegisterTools(registry); err != nil {
		logger.Error("Failed to register tools", slog.String("error", err.Error()))
		j.Shutdown("tool registration failed")
		return
	}

	// Finalization runs on every termination path: explicit end, candidate
	// disconnect, and time limit expiry.
	j.Context.OnShutdown(func(reason string) {
		finalizeCtx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
		defer cancel()

		agent.OnExit(finalizeCtx)
		if err := eng.Close(); err != nil {
			logger.Warn("Engine close failed", slog.String("error", err.Error()))
		}
	})

	if err := eng.Start(j.Context.Ctx); err != nil {
		logger.Error("Failed to start engine", slog.String("error", err.Error()))
		j.Shutdown("engine start failed")
		return
	}

	if err := agent.OnEnter(j.Context.Ctx); err != nil {
		logger.Error("Failed to open the interview", slog.String("error", err.Error()))
		j.Shutdown("greeting failed")
		return
	}

	r.superviseRoom(rm, j)

	err = j.Wait()
	switch err {
	case context.DeadlineExceeded:
		j.Shutdown("time limit reached")
	default:
		j.Shutdown("room closed")
	}

	logger.Info("Interview job finished", slog.String("job_id", j.ID))
}

// superviseRoom translates room events into job shutdown.
func (r *Runner) superviseRoom(rm *room.Room, j *job.Job) {
	go func() {
		for {
			select {
			case <-j.Context.Done():
				return
			case event, ok := <-rm.Events:
				if !ok {
					j.Shutdown("room connection lost")
					return
				}
				switch event.Type {
				case room.EventParticipantDisconnected:
					j.Shutdown("candidate disconnected")
					return
				case room.EventDisconnected:
					j.Shutdown("room disconnected")
					return
				}
			}
		}
	}()
}
