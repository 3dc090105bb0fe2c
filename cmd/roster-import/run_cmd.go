package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/goalie-roster-api/internal/models"
	"github.com/noah-isme/goalie-roster-api/internal/repository"
	"github.com/noah-isme/goalie-roster-api/internal/service"
	"github.com/noah-isme/goalie-roster-api/pkg/cache"
	"github.com/noah-isme/goalie-roster-api/pkg/config"
	"github.com/noah-isme/goalie-roster-api/pkg/database"
	"github.com/noah-isme/goalie-roster-api/pkg/logger"
)

type runOptions struct {
	file        string
	target      string
	dryRun      bool
	keepHistory bool
}

// runResult is the single JSON line printed per run.
type runResult struct {
	File    string                `json:"file"`
	Target  string                `json:"target,omitempty"`
	DryRun  bool                  `json:"dry_run"`
	Summary *models.ImportSummary `json:"summary,omitempty"`
	Error   string                `json:"error,omitempty"`
	Code    string                `json:"code,omitempty"`
}

type importRunner interface {
	Import(ctx context.Context, req service.ImportRequest) (*models.ImportSummary, error)
}

// runDeps lets tests swap the database-backed import service.
type runDeps struct {
	openImporter func(ctx context.Context) (importRunner, func(), error)
	stdout       io.Writer
}

func defaultDeps() runDeps {
	return runDeps{openImporter: openImporter, stdout: os.Stdout}
}

func newRunCmd(deps runDeps) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import one CSV file into the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), deps, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "CSV file to import (required)")
	cmd.Flags().StringVar(&opts.target, "target", "", "Scope every row to this athlete id, e.g. GC-8001")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and reconcile without writing")
	cmd.Flags().BoolVar(&opts.keepHistory, "keep-history", false, "Leave session history alone when the file has no date column")
	_ = cmd.MarkFlagRequired("file")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		opts.target = strings.TrimSpace(opts.target)
		if opts.target != "" && !strings.HasPrefix(opts.target, "GC-") {
			return withCode(exitUsage, fmt.Errorf("invalid --target %q: expected GC-<number>", opts.target))
		}
		return nil
	}

	return cmd
}

func runImport(ctx context.Context, deps runDeps, opts runOptions) error {
	raw, err := os.ReadFile(opts.file)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("read --file: %w", err))
	}

	runner, closeFn, err := deps.openImporter(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer closeFn()

	summary, importErr := runner.Import(ctx, service.ImportRequest{
		Content:         string(raw),
		TargetAthleteID: opts.target,
		DryRun:          opts.dryRun,
		KeepHistory:     opts.keepHistory,
		RequestedBy:     "cli",
	})

	result := runResult{File: opts.file, Target: opts.target, DryRun: opts.dryRun, Summary: summary}
	if importErr != nil {
		result.Error = importErr.Error()
		result.Code = errorCode(importErr)
	}
	if err := writeJSONLine(deps.stdout, result); err != nil {
		return err
	}
	if importErr != nil {
		return withCode(importExitCode(importErr), importErr)
	}
	return nil
}

func openImporter(ctx context.Context) (importRunner, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		_ = logr.Sync()
		return nil, nil, err
	}

	logr = logr.With(zap.String("component", "cli"))

	// The API caches roster pages; a CLI import must invalidate them too.
	var cacheSvc *service.CacheService
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		if redisClient, err = cache.NewRedis(ctx, cfg.Redis); err != nil {
			logr.Warn("redis unavailable, athlete cache not invalidated", zap.Error(err))
			redisClient = nil
		} else {
			cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient), nil, cfg.Athletes.CacheTTL, logr, true)
		}
	}

	svc := service.NewImportService(repository.NewAthleteRepository(db), repository.NewSessionLogRepository(db), repository.NewUserRepository(db), cacheSvc, nil, logr, service.ImportServiceConfig{
		ChunkSize:       cfg.Import.ChunkSize,
		ChunksPerSecond: cfg.Import.ChunksPerSecond,
	})
	closeFn := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = db.Close()
		_ = logr.Sync()
	}
	return svc, closeFn, nil
}
