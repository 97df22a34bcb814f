package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ragify-be/internal/bootstrap"
	"ragify-be/internal/config"
	"ragify-be/internal/server"
	"ragify-be/internal/tracer"
	"ragify-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional, backs the transcript archive)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Panicf("Unable to migrate transcript tables: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Close()
	sysLog := container.Logger

	// 4. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	go container.WebSocketHub.Run(ctx)

	if container.ConsumerService != nil {
		if err := container.ConsumerService.Consume(ctx); err != nil {
			sysLog.Error("MAIN", "Transcript consumer failed to start", map[string]interface{}{"error": err.Error()})
		}
	}

	if container.NatsSubscriber != nil {
		if err := container.FeedService.Relay(ctx, container.NatsSubscriber); err != nil {
			sysLog.Warn("MAIN", "Notebook relay unavailable, pushing frames directly", map[string]interface{}{"error": err.Error()})
		}
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sysLog.Error("MAIN", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			sysLog.Error("MAIN", "Tracer shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		sysLog.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
