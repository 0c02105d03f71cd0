package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/learning-engine/internal/cache"
	"github.com/SAP-F-2025/learning-engine/internal/config"
	"github.com/SAP-F-2025/learning-engine/internal/events"
	"github.com/SAP-F-2025/learning-engine/internal/handlers"
	"github.com/SAP-F-2025/learning-engine/internal/render"
	"github.com/SAP-F-2025/learning-engine/internal/repositories"
	"github.com/SAP-F-2025/learning-engine/internal/repositories/httpapi"
	"github.com/SAP-F-2025/learning-engine/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-engine/internal/services"
	"github.com/SAP-F-2025/learning-engine/internal/utils"
	"github.com/SAP-F-2025/learning-engine/internal/validator"
	"github.com/SAP-F-2025/learning-engine/pkg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sweepInterval = time.Minute
	maxIdle       = 2 * time.Hour
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "lessond",
		Short:         "Question interaction and scoring engine",
		SilenceUsage:  true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newExportCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the performance ledger tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}
			return pkg.Migrate(db)
		},
	}
}

func newExportCommand() *cobra.Command {
	var (
		lessonID string
		format   string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the recorded answers of a lesson",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := utils.NewLogger(cfg.Environment, os.Stderr)
			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}

			reports := services.NewReportService(
				services.NewSessionRegistry(nil),
				postgres.NewPerformancePostgreSQL(db),
				services.NewServiceLogger(utils.ToSlogLogger(logger), services.LogConfig{Service: "learning-engine", Component: "export"}),
			)

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := reports.ExportLedger(cmd.Context(), lessonID, format, f)
			if err != nil {
				return err
			}
			logger.Info("Report written", "file", output, "rows", info.Rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&lessonID, "lesson", "", "lesson id")
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx or csv")
	cmd.Flags().StringVarP(&output, "out", "o", "report.xlsx", "output file")
	_ = cmd.MarkFlagRequired("lesson")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(cfg.Environment, os.Stdout)
	slogger := utils.ToSlogLogger(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	client := httpapi.NewClient(cfg.BackendURL, cfg.RequestTimeout, slogger)
	questionAPI := httpapi.NewQuestionAPI(client)

	deps := services.Dependencies{
		Questions:   questionAPI,
		Generator:   questionAPI,
		Missions:    httpapi.NewMissionAPI(client),
		Submissions: httpapi.NewSubmissionAPI(client),
		Economy:     httpapi.NewHintAPI(client),
	}

	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		zapLogger, err := newZapLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = zapLogger.Sync() }()

		cached := repositories.NewCachedQuestionSource(questionAPI, cache.NewRedisCache(redisClient, zapLogger), cfg.QuestionCacheTTL, slogger)
		deps.Questions = cached
		deps.Invalidator = cached
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer publisher.Close()
	deps.Events = publisher

	sinks := []repositories.NamedSink{}
	if cfg.TelemetryHTTPEnabled {
		sinks = append(sinks, repositories.NamedSink{Name: "http", Sink: httpapi.NewPerformanceAPI(client)})
	}
	if cfg.Events.Enabled {
		sinks = append(sinks, repositories.NamedSink{Name: "events", Sink: events.NewEventSink(publisher)})
	}
	if cfg.TelemetryLedgerEnabled && cfg.DatabaseURL != "" {
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return err
		}
		if err := pkg.Migrate(db); err != nil {
			return err
		}
		ledger := postgres.NewPerformancePostgreSQL(db)
		sinks = append(sinks, repositories.NamedSink{Name: "ledger", Sink: postgres.NewLedgerSink(db, ledger)})
		deps.Ledger = ledger
	}
	if fan := repositories.NewFanOutSink(sinks...); fan.Len() > 0 {
		deps.Telemetry = fan
	}

	v := validator.New()
	engine := services.DefaultEngineConfig()
	engine.HintPolicy = render.HintPolicy{MinRetries: cfg.HintMinRetries}
	engine.SingleOccupancy = cfg.SingleOccupancy
	engine.MissingStartWindow = cfg.MissingStartWindow
	engine.CompletionThreshold = cfg.CompletionThreshold
	engine.TelemetryTimeout = cfg.TelemetryTimeout

	manager := services.NewServiceManager(deps, engine, v, slogger)

	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(manager, v, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		services.RunSweeper(gctx, manager.Registry(), sweepInterval, maxIdle, slogger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry not drained before shutdown", "error", err)
		}
		return nil
	})
	return g.Wait()
}

func newZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
