// EventForge CLI
//
// Turns a free-text event request into a complete structured plan.
//
// Usage:
//
//	eventforge plan "Plan a birthday party for 30 guests with a budget of 500"
//	eventforge plan --json "corporate dinner for 50 next friday"
//
// The OPENAI_API_KEY environment variable must be set; OPENAI_BASE_URL
// optionally points at any OpenAI-compatible server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eventforge/eventforge/planner/capability"
	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/observability"
	"github.com/eventforge/eventforge/planner/runtime"
	"github.com/eventforge/eventforge/planner/stage"
	"github.com/eventforge/eventforge/planner/state"
	"github.com/eventforge/eventforge/planner/tools"
	"github.com/eventforge/eventforge/planner/vectorstore"
)

// slogLogger adapts slog to the pipeline's Logger interface.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }
func (s *slogLogger) Bind(fields ...any) stage.Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

// logSink reports phase transitions through the logger.
type logSink struct {
	logger stage.Logger
}

func (s *logSink) Transition(planID string, from, to runtime.Phase, stageName state.StageName) {
	s.logger.Debug("phase_transition",
		"plan_id", planID,
		"from", string(from),
		"to", string(to),
		"stage", string(stageName),
	)
}

func newLogger(level string) *slogLogger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return &slogLogger{l: slog.New(handler)}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eventforge",
		Short:         "AI event planning pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlanCmd())
	return root
}

func newPlanCmd() *cobra.Command {
	var (
		configPath   string
		jsonOutput   bool
		otlpEndpoint string
	)

	cmd := &cobra.Command{
		Use:   "plan [request]",
		Short: "Plan an event from a free-text request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), strings.Join(args, " "), configPath, jsonOutput, otlpEndpoint)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a yaml config file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full plan record as JSON")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for traces")
	return cmd
}

func runPlan(ctx context.Context, request, configPath string, jsonOutput bool, otlpEndpoint string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	// Environment parsing happens only here, at the boundary.
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if otlpEndpoint != "" {
		shutdown, err := observability.InitTracer("eventforge", otlpEndpoint)
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("tracer_shutdown_error", "error", err.Error())
			}
		}()
	}

	llm := capability.NewOpenAIInference(apiKey, baseURL, cfg.ChatModel, cfg.InferenceTimeout())
	embedder := capability.NewOpenAIEmbedder(apiKey, baseURL, cfg.EmbedModel, cfg.EmbeddingTimeout())

	store := vectorstore.NewStore(embedder)
	if err := vectorstore.Seed(ctx, store); err != nil {
		return fmt.Errorf("seeding template corpus: %w", err)
	}
	logger.Info("corpus_seeded", "templates", store.Len())

	runner := runtime.NewStandardRunner(cfg, llm, store, tools.NewDefaultRegistry(), logger, &logSink{logger: logger})

	st, err := runner.Run(ctx, request)
	if err != nil {
		return err
	}

	if jsonOutput {
		encoded, err := json.MarshalIndent(st.FinalOutput, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	fmt.Println(st.FinalOutput.Summary)
	return nil
}
