package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hireline/interview-agent/internal/config"
	"github.com/hireline/interview-agent/internal/worker"
	"github.com/hireline/interview-agent/pkg/engine"
	openaiengine "github.com/hireline/interview-agent/pkg/engine/openai"
	"github.com/hireline/interview-agent/pkg/interview"
	"github.com/hireline/interview-agent/pkg/job"
	"github.com/hireline/interview-agent/pkg/version"
	"github.com/hireline/interview-agent/pkg/webhook"
)

var rootCmd = &cobra.Command{
	Use:          "interview-agent",
	Short:        "Voice agent that conducts skill-based candidate interviews over LiveKit",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Register with LiveKit and serve interview assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger(false)
		return runWorker(logger)
	},
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Run the worker with verbose console logging",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger(true)
		return runWorker(logger)
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Conduct a text interview on the terminal",
	Long: `Run the interview loop against a typed conversation instead of a room.
The candidate parameters are passed as the same JSON a participant would
attach as metadata.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metadataJSON, _ := cmd.Flags().GetString("metadata")
		logger := setupLogger(true)
		return runConsole(cmd.Context(), metadataJSON, logger)
	},
}

func setupLogger(dev bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if dev {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func runWorker(logger *slog.Logger) error {
	cfg := config.FromEnv()
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	token, err := worker.BuildAgentToken(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.Identity)
	if err != nil {
		return err
	}

	runner, err := worker.NewRunner(cfg, logger)
	if err != nil {
		return err
	}

	w, err := worker.New(worker.Config{
		URL:     cfg.LiveKitURL,
		Token:   token,
		Handler: runner.RunJob,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting interview agent",
		slog.String("version", version.Version),
		slog.String("url", cfg.LiveKitURL),
		slog.String("identity", cfg.Identity))

	if err := w.Run(ctx); err != nil {
		logger.Error("Worker failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// consoleRooms ends the console job when the model invokes end_interview,
// standing in for the room deletion that ends a voice interview.
type consoleRooms struct {
	j *job.Job
}

func (c *consoleRooms) DeleteRoom(ctx context.Context, roomName string) error {
	c.j.Shutdown("interview ended")
	return nil
}

// stdoutPoster prints the completion payload instead of delivering it, for
// console runs without a backend.
type stdoutPoster struct{}

func (stdoutPoster) PostResult(ctx context.Context, result webhook.Result) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("\n--- interview result ---\n%s\n", out)
	return nil
}

func runConsole(ctx context.Context, metadataJSON string, logger *slog.Logger) error {
	cfg := config.FromEnv()
	if err := cfg.ValidateConsole(); err != nil {
		return err
	}

	metadata, err := interview.ParseMetadata(metadataJSON)
	if err != nil {
		return err
	}

	session := interview.NewSession(metadata, "console")

	j, err := job.New(ctx, job.Config{
		RoomName: "console",
		Timeout:  time.Duration(session.TimeLimitMinutes)*time.Minute + job.TimeLimitGrace,
	})
	if err != nil {
		return err
	}

	var results interview.ResultsPoster = stdoutPoster{}
	if cfg.APIBaseURL != "" {
		client, err := webhook.NewClient(cfg.APIBaseURL)
		if err != nil {
			return err
		}
		results = client
	}

	registry := engine.NewRegistry()

	eng, err := openaiengine.New(openaiengine.Config{
		APIKey:             cfg.OpenAIAPIKey,
		SystemInstructions: interview.SystemPrompt,
		Registry:           registry,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	agent := interview.NewAgent(session, eng, &consoleRooms{j: j}, results, logger)
	if err := agent.RegisterTools(registry); err != nil {
		return err
	}

	j.Context.OnShutdown(func(reason string) {
		agent.OnExit(context.Background())
		eng.Close()
	})

	if err := eng.Start(j.Context.Ctx); err != nil {
		return err
	}
	if err := agent.OnEnter(j.Context.Ctx); err != nil {
		return err
	}

	fmt.Println("Type your answers; Ctrl-D leaves the interview.")

	scanner := bufio.NewScanner(os.Stdin)
	for !j.Context.IsShutdown() {
		fmt.Print("you: ")
		if !scanner.Scan() {
			j.Shutdown("candidate left")
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := eng.SendUserMessage(j.Context.Ctx, line); err != nil {
			if !j.Context.IsShutdown() {
				logger.Error("Turn failed", slog.String("error", err.Error()))
			}
			break
		}
	}

	j.Shutdown("console session over")
	return nil
}

func init() {
	consoleCmd.Flags().String("metadata", "", "Interview parameters as participant metadata JSON")
	consoleCmd.MarkFlagRequired("metadata")

	rootCmd.AddCommand(versionCmd, startCmd, devCmd, consoleCmd)
}

func main() {
	// A local .env is a convenience; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
