package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"AskChat/internal/answer"
	"AskChat/internal/chatclient"
	"AskChat/internal/config"
	"AskChat/internal/repl"
	"AskChat/internal/session"
	"AskChat/internal/telemetry"
	"AskChat/internal/transcript"
	"AskChat/internal/tui"
)

func main() {
	cfg := config.Load()
	var replayID string

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Answer Service base URL")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout (0 = none)")
	flag.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for logs, traces and metrics")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.BoolVar(&cfg.Telemetry, "telemetry", cfg.Telemetry, "Export traces and metrics to the log directory")
	flag.StringVar(&cfg.Transcript, "transcript", cfg.Transcript, "SQLite file to record answered questions in (empty = off)")
	flag.StringVar(&replayID, "replay", "", "Print a recorded session from the transcript and exit")
	flag.BoolVar(&cfg.Plain, "plain", cfg.Plain, "Use the line-mode interface instead of the full screen")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if replayID != "" {
		if err := replay(cfg, replayID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := telemetry.InitLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closeLog()

	clientOpts := []answer.Option{
		answer.WithTimeout(cfg.Timeout),
		answer.WithLogger(logger),
	}
	if cfg.Telemetry {
		tracer, meter, shutdown, err := telemetry.InitTelemetry(ctx, cfg.LogDir)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer shutdown()
		clientOpts = append(clientOpts, answer.WithTracer(tracer), answer.WithMeter(meter))
	}

	client, err := answer.NewClient(cfg.ServerURL, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctrlOpts := []chatclient.Option{chatclient.WithLogger(logger)}
	if cfg.Transcript != "" {
		store, err := transcript.Open(ctx, cfg.Transcript, session.New(client.BaseURL()), logger)
		if err != nil {
			return fmt.Errorf("failed to open transcript: %w", err)
		}
		defer store.Close()
		ctrlOpts = append(ctrlOpts, chatclient.WithRecorder(store))
	}

	ctrl := chatclient.New(client, ctrlOpts...)

	logger.Info("askchat starting",
		slog.String("server_url", client.BaseURL()),
		slog.Bool("plain", cfg.Plain),
		slog.Duration("timeout", cfg.Timeout),
		slog.Bool("transcript", cfg.Transcript != ""),
	)

	if cfg.Plain {
		return repl.New(ctrl, os.Stdin, os.Stdout, logger).Run(ctx)
	}
	return tui.Run(ctx, ctrl)
}

func replay(cfg config.Config, sessionID string) error {
	if cfg.Transcript == "" {
		return fmt.Errorf("-replay needs -transcript")
	}

	ctx := context.Background()
	store, err := transcript.Open(ctx, cfg.Transcript, nil, slog.New(slog.DiscardHandler))
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer store.Close()

	sess, err := store.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	repl.PrintSession(os.Stdout, sess)
	return nil
}
