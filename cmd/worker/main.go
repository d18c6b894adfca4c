package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"resume-optimizer/internal/bootstrap"
	"resume-optimizer/internal/config"
	"resume-optimizer/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	shutdownTracer := tracer.InitTracer(cfg.App)
	defer shutdownTracer(context.Background())

	if cfg.Queue.Backend != "redis" {
		log.Fatalf("[FATAL] cmd/worker needs QUEUE_BACKEND=redis (got %q); the REST binary runs in-process workers itself", cfg.Queue.Backend)
	}

	// 2. Bootstrap Dependencies (history stays in the REST process)
	container := bootstrap.NewContainer(nil, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Run Workers until interrupted
	log.Printf("[INFO] Worker started with %d goroutines on %s", cfg.Queue.Workers, cfg.Queue.Name)
	if err := container.WorkerService.Run(ctx, cfg.Queue.Workers); err != nil {
		log.Printf("[ERROR] Worker stopped: %v", err)
	}
	log.Println("[INFO] Worker stopped")
}
