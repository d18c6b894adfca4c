package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"resume-optimizer/internal/bootstrap"
	"resume-optimizer/internal/config"
	"resume-optimizer/internal/server"
	"resume-optimizer/internal/tracer"
	"resume-optimizer/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Load Configuration
	cfg := config.Load()

	// 1. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.App)
	defer shutdownTracer(context.Background())

	// 2. Initialize Database (optional)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.App.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Panicf("Unable to migrate GORM DB: %v", err)
		}
		gormDB = db
	} else {
		log.Println("[INFO] DB_CONNECTION_STRING not set, evaluation history disabled")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if container.HistoryService != nil {
		if err := container.HistoryService.Start(ctx); err != nil {
			log.Printf("[WARN] Evaluation history subscription failed: %v", err)
		}
	}
	if container.InProcessWorkers {
		go func() {
			log.Println("Background: Starting in-process workers...")
			if err := container.WorkerService.Run(ctx, cfg.Queue.Workers); err != nil {
				log.Printf("Background Worker Error: %v", err)
			}
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
