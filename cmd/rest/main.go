package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"brdgenius-be/internal/bootstrap"
	"brdgenius-be/internal/config"
	"brdgenius-be/internal/server"
	"brdgenius-be/internal/tracer"
	"brdgenius-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	shutdownTracer := tracer.InitTracer(cfg.Otel)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database, only for the postgres state store
	var gormDB *gorm.DB
	if cfg.Storage.Driver == "postgres" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, gormDB, cfg)
	defer container.Close()

	// 4. Start Background Services
	if err := container.ActivityConsumer.Consume(ctx); err != nil {
		log.Printf("[WARN] Activity consumer not started: %v", err)
	}

	// 5. Run Server until a signal arrives
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		log.Println("[INFO] Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("[WARN] Server shutdown: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("[ERROR] Server stopped: %v", err)
	}
}
