package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/database"
	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/router"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/store"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	tokenTTL        = 12 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if err := database.Seed(db, cfg); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed: %v", err)
	}

	deps := buildDeps(cfg, db)

	// Poller snapshot: dashboard dan (opsional) Google Sheets
	poller := services.NewSnapshotPoller(deps.Snapshots, deps.Mirror, deps.Hub)
	poller.AutoSync = cfg.Mirror.AutoSync
	if cfg.Snapshot.PollInterval > 0 {
		poller.Interval = cfg.Snapshot.PollInterval
	}
	poller.Start()
	defer poller.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Shutdown: %v", err)
	}
}

// buildDeps -> store, hub dan service yang dipakai bersama oleh semua controller
func buildDeps(cfg config.Config, db *gorm.DB) router.Deps {
	st := store.NewGormStore(db)
	hub := kds.NewHub()
	metrics := services.NewMetricsRecorder()
	snapshots := services.NewSnapshotter(st)

	return router.Deps{
		Config:     cfg,
		DB:         db,
		Store:      st,
		Hub:        hub,
		Lifecycle:  services.NewOrderLifecycle(st, hub, metrics),
		Snapshots:  snapshots,
		Mirror:     services.NewSheetMirror(st, cfg.Mirror.WebhookURL, cfg.Mirror.Timeout),
		Reconciler: services.NewReconciler(st, snapshots),
		Reports:    services.NewReports(st, time.Local),
		Metrics:    metrics,
		Tokens:     utils.NewTokenIssuer(cfg.Auth.JWTSecret, tokenTTL),
	}
}
