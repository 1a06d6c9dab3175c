package main

import (
	"context"
	"log"

	"edu-chatbot-be/internal/bootstrap"
	"edu-chatbot-be/internal/config"
	"edu-chatbot-be/internal/server"
	"edu-chatbot-be/internal/tracer"
	"edu-chatbot-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer func() {
		if container.Publisher != nil {
			container.Publisher.Close()
		}
		_ = container.Logger.Sync()
	}()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
