package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"valentine/internal/config"
	"valentine/internal/db"
	"valentine/internal/jobs"
	"valentine/internal/metrics"
	"valentine/internal/server"
	"valentine/internal/telemetry"
	"valentine/internal/telemetry/appwrite"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setupLogging(cfg)

	content, err := config.LoadContent(cfg.ContentFile)
	if err != nil {
		log.Fatalf("Failed to load content file %s: %v", cfg.ContentFile, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Select the telemetry backend
	var (
		database *db.DB
		store    telemetry.Store
	)
	switch cfg.TelemetryBackend() {
	case config.BackendAppwrite:
		client, err := appwrite.New(appwrite.Config{
			Endpoint:     cfg.AppwriteEndpoint,
			ProjectID:    cfg.AppwriteProjectID,
			DatabaseID:   cfg.AppwriteDatabaseID,
			CollectionID: cfg.AppwriteCollectionID,
			APIKey:       cfg.AppwriteAPIKey,
		})
		if err != nil {
			log.Fatalf("Failed to configure Appwrite: %v", err)
		}
		store = client
		log.Println("Telemetry stored in Appwrite")
	case config.BackendPostgres:
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
		store = database
		log.Println("Telemetry stored in Postgres")
	default:
		log.Println("Telemetry disabled. Set APPWRITE_* or DATABASE_URL to enable.")
	}

	var stateCounter metrics.StateCounter
	if database != nil {
		stateCounter = database
	}
	metrics.Init(stateCounter)

	recorder := telemetry.NewRecorder(store,
		telemetry.WithTimeout(cfg.TelemetryTimeout),
		telemetry.WithLogger(slog.Default()),
		telemetry.WithObserver(metrics.RecordTelemetryCall),
	)

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(database, recorder, content); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	if database != nil && cfg.LogRetention > 0 {
		retention := jobs.NewRetention(database, cfg.RetentionInterval, cfg.LogRetention)
		g.Go(func() error {
			retention.Start(gctx)
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
	}

	// Let in-flight telemetry finish before the pool closes.
	recorder.Wait()
	log.Println("Server exited")
}

func setupLogging(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}
