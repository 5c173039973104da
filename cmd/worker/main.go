package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/maraichr/conveyor/internal/bake"
	"github.com/maraichr/conveyor/internal/bakery"
	"github.com/maraichr/conveyor/internal/config"
	"github.com/maraichr/conveyor/internal/engine"
	"github.com/maraichr/conveyor/internal/pipeline"
	"github.com/maraichr/conveyor/internal/store"
	minioclient "github.com/maraichr/conveyor/internal/store/minio"
	"github.com/maraichr/conveyor/internal/store/postgres"
	vk "github.com/maraichr/conveyor/internal/store/valkey"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	_ = godotenv.Load(".env") // ignore error if .env missing

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	// Valkey
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	// MinIO (optional — enables execution archival)
	var archive *minioclient.Client
	mc, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Warn("minio connection failed, archival disabled", slog.String("error", err.Error()))
	} else if err := mc.EnsureBucket(ctx); err != nil {
		logger.Warn("minio bucket check failed, archival disabled", slog.String("error", err.Error()))
	} else {
		archive = mc
		logger.Info("connected to minio", slog.String("bucket", mc.Bucket()))
	}

	eng := engine.NewDefault(logger, bake.SystemClock(), bakery.NewStub())
	w := &worker{logger: logger, store: s, engine: eng, archive: archive}

	consumer := engine.NewConsumer(vkClient, cfg.Worker.ConsumerID, logger)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Error("failed to create consumer group", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("consumer_id", cfg.Worker.ConsumerID))
	if err := consumer.Consume(ctx, w.handle); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("worker stopped")
}

type worker struct {
	logger  *slog.Logger
	store   *store.Store
	engine  *engine.Engine
	archive *minioclient.Client
}

// handle runs one triggered execution to completion and persists the result.
func (w *worker) handle(ctx context.Context, msg engine.ExecutionMessage) error {
	row, err := w.store.GetExecution(ctx, msg.ExecutionID)
	if err != nil {
		return fmt.Errorf("load execution %s: %w", msg.ExecutionID, err)
	}

	var stages []*pipeline.Stage
	if err := json.Unmarshal(row.Stages, &stages); err != nil {
		return fmt.Errorf("decode stages for %s: %w", msg.ExecutionID, err)
	}

	exec := &pipeline.Execution{
		ID:         row.ID,
		PipelineID: row.PipelineID,
		Trigger:    row.Trigger,
		Status:     pipeline.Status(row.Status),
		Stages:     stages,
	}

	if err := w.store.UpdateExecutionStatus(ctx, exec.ID, string(pipeline.StatusRunning)); err != nil {
		w.logger.Warn("mark running failed", slog.String("error", err.Error()))
	}

	runErr := w.engine.Run(ctx, exec)

	snapshot, err := json.Marshal(exec.Stages)
	if err != nil {
		return fmt.Errorf("encode stages for %s: %w", exec.ID, err)
	}

	var errMsg *string
	if exec.ErrorMessage != "" {
		errMsg = &exec.ErrorMessage
	}
	if err := w.store.UpdateExecutionResult(ctx, postgres.UpdateExecutionResultParams{
		ID:           exec.ID,
		Status:       string(exec.Status),
		Stages:       snapshot,
		ErrorMessage: errMsg,
		StartedAt:    exec.StartedAt,
		FinishedAt:   exec.FinishedAt,
	}); err != nil {
		return fmt.Errorf("persist result for %s: %w", exec.ID, err)
	}

	if w.archive != nil && runErr == nil {
		record, err := json.Marshal(exec)
		if err == nil {
			if err := w.archive.ArchiveExecution(ctx, exec.ID, record); err != nil {
				w.logger.Warn("archive failed", slog.String("execution_id", exec.ID.String()), slog.String("error", err.Error()))
			}
		}
	}

	// The execution outcome is recorded; a failed run is not a queue failure.
	return nil
}
