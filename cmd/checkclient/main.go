// Command checkclient starts the CheckClient API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"checkclient/internal/analytics"
	"checkclient/internal/auth"
	"checkclient/internal/billing"
	"checkclient/internal/checklist"
	"checkclient/internal/config"
	"checkclient/internal/export"
	httpx "checkclient/internal/http"
	"checkclient/internal/notify"
	"checkclient/internal/share"
	"checkclient/internal/store/jsonfile"
	storepg "checkclient/internal/store/postgres"
	"checkclient/internal/upload"
)

func main() {
	cfg, _ := config.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	var store checklist.Store
	switch cfg.StorageDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Fatal("DATABASE_URL is required with STORAGE_DRIVER=postgres")
		}
		gdb, err := storepg.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("connect database", zap.Error(err))
		}
		if err := storepg.AutoMigrateAndIndexes(gdb); err != nil {
			logger.Fatal("migrate database", zap.Error(err))
		}
		store = &storepg.Store{DB: gdb}
	case "jsonfile":
		s, err := jsonfile.New(cfg.DataFile, logger)
		if err != nil {
			logger.Fatal("open checklists file", zap.Error(err))
		}
		store = s
	default:
		logger.Fatal("unknown STORAGE_DRIVER", zap.String("driver", cfg.StorageDriver))
	}

	tracker := analytics.NewTracker()
	mailer := &notify.LogMailer{Log: logger}
	uploads := &upload.Local{Dir: cfg.UploadDir}

	svc := checklist.NewService(store, tracker, mailer, logger, cfg.BaseURL)
	gateway := share.NewGateway(store, uploads, tracker, logger)
	aggregator := analytics.NewAggregator(store)

	users, err := auth.NewRegistry(auth.DefaultSeedUsers())
	if err != nil {
		logger.Fatal("seed users", zap.Error(err))
	}
	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	r := httpx.NewRouter(cfg, httpx.Deps{
		Checklists: svc,
		Gateway:    gateway,
		Aggregator: aggregator,
		Tracker:    tracker,
		Users:      users,
		JWT:        jwtSvc,
		Exporter:   export.CSV{},
		Payments:   &billing.Simulated{Log: logger},
		Uploads:    uploads,
		Log:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
