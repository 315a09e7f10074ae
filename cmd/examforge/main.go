package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/ai"
	"github.com/xxxsen/examforge/internal/config"
	"github.com/xxxsen/examforge/internal/extract"
	"github.com/xxxsen/examforge/internal/filestore"
	"github.com/xxxsen/examforge/internal/handler"
	"github.com/xxxsen/examforge/internal/job"
	"github.com/xxxsen/examforge/internal/middleware"
	"github.com/xxxsen/examforge/internal/pdfkit"
	"github.com/xxxsen/examforge/internal/schedule"
	"github.com/xxxsen/examforge/internal/service"
	"github.com/xxxsen/examforge/internal/session"
	"github.com/xxxsen/examforge/internal/upload"
)

const version = "0.1.0"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "examforge",
		Short: "exam paper search and assembly server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run examforge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cmd.Context(), cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json or config.yaml")
	rootCmd.AddCommand(runCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func runServer(parent context.Context, cfg *config.Config) error {
	lg := logutil.GetLogger(context.Background())

	poppler := extract.NewPoppler()
	if err := poppler.Check(); err != nil {
		lg.Warn("poppler tools not available, uploads will fail", zap.Error(err))
	}
	renderer := extract.WrapLruCacheToRenderer(poppler, cfg.Render.CacheSize, time.Duration(cfg.Render.CacheTTLMinutes)*time.Minute)

	uploads, err := upload.NewStore(cfg.Upload.Dir)
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}
	outputs, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	var finder service.QuestionFinder
	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		lg.Warn("ai provider disabled", zap.Error(err))
	} else {
		finder = ai.NewManager(ai.NewGenerator(provider, cfg.AI.Model), ai.ManagerConfig{Timeout: cfg.AI.Timeout})
		lg.Info("ai provider enabled", zap.String("provider", provider.Name()), zap.String("model", cfg.AI.Model))
	}

	estimator := session.NewEstimator(cfg.Budget)
	registry := session.NewRegistry(estimator, cfg.Session.MaxSessions)

	searchService := service.NewSearchService(registry, renderer, finder, estimator, cfg.Render.PromptDPI)
	assembleService := service.NewAssembleService(uploads, pdfkit.NewPDFCPUEngine(), outputs, "")
	uploadService := service.NewUploadService(uploads, service.NewPageIndexer(poppler), registry)
	instantService := service.NewInstantService(searchService, assembleService)
	renderService := service.NewRenderService(registry, renderer, cfg.Render.ThumbnailDPI)

	deps := handler.RouterDeps{
		Sessions:  handler.NewSessionHandler(uploadService, registry, cfg.Upload.MaxFiles, cfg.Upload.MaxFileSize),
		Search:    handler.NewSearchHandler(searchService, instantService),
		Assemble:  handler.NewAssembleHandler(assembleService),
		Render:    handler.NewRenderHandler(renderService),
		Files:     handler.NewFileHandler(outputs, uploads),
		RateLimit: time.Duration(cfg.RateLimitSeconds) * time.Second,
	}

	scheduler := schedule.NewCronScheduler()
	cleanup := job.NewSessionCleanupJob(registry, time.Duration(cfg.Session.MaxAgeMinutes)*time.Minute)
	if err := scheduler.AddJob(cleanup, cfg.Session.SweepSpec); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	lg.Info("http server listening", zap.String("addr", addr))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			lg.Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("server stopping...")
	return nil
}
