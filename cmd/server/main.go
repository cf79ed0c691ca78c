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

	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/config"
	"github.com/mamadbah2/fishprofit/internal/repository/batches"
	"github.com/mamadbah2/fishprofit/internal/repository/kv"
	"github.com/mamadbah2/fishprofit/internal/repository/mongodb"
	"github.com/mamadbah2/fishprofit/internal/repository/sheets"
	"github.com/mamadbah2/fishprofit/internal/scheduler"
	"github.com/mamadbah2/fishprofit/internal/server/handlers"
	"github.com/mamadbah2/fishprofit/internal/server/router"
	commandsvc "github.com/mamadbah2/fishprofit/internal/service/commands"
	ledgersvc "github.com/mamadbah2/fishprofit/internal/service/ledger"
	reportingsvc "github.com/mamadbah2/fishprofit/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/fishprofit/internal/service/whatsapp"
	"github.com/mamadbah2/fishprofit/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/fishprofit/pkg/clients/whatsapp"
	"github.com/mamadbah2/fishprofit/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := openStore(context.Background(), cfg, baseLogger.Named("repo.kv"))
	if err != nil {
		baseLogger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	batchRepo := batches.NewKVRepository(store, baseLogger.Named("repo.batches"))
	ledger, err := ledgersvc.NewService(context.Background(), batchRepo, baseLogger.Named("svc.ledger"))
	if err != nil {
		baseLogger.Fatal("failed to load ledger", zap.Error(err))
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	} else {
		baseLogger.Info("google sheets not configured, export disabled")
	}

	reportingSvc := reportingsvc.NewService(ledger, sheetsRepo, cfg.Reporting.TargetMargins, baseLogger.Named("svc.reporting"))
	batchHandler := handlers.NewBatchHandler(ledger, reportingSvc, baseLogger.Named("handlers.batches"))

	var (
		webhookHandler *handlers.WebhookHandler
		reportSender   scheduler.Sender
	)
	if cfg.WhatsApp.Enabled() {
		var aiClient anthropic.Client
		if cfg.AI.AnthropicKey != "" {
			aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
			baseLogger.Info("anthropic ai client enabled")
		} else {
			baseLogger.Warn("anthropic api key missing, only slash commands are understood")
		}

		commandDispatcher := commandsvc.NewService(ledger, reportingSvc, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, aiClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, reportingSvc, baseLogger.Named("handlers.whatsapp"))
		reportSender = messagingSvc
	} else {
		baseLogger.Warn("whatsapp credentials missing, command channel disabled")
	}

	engine := router.New(batchHandler, webhookHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, reportSender, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (kv.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageFile:
		return kv.NewFileStore(cfg.Storage.FilePath, log)
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return kv.NewMemoryStore(), nil
	case config.StorageMongoDB:
		ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
		defer cancel()
		return mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.MongoDB.Collection)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
