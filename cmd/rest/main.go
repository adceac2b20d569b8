package main

import (
	"context"
	"log"

	"query-workbench-be/internal/bootstrap"
	"query-workbench-be/internal/config"
	"query-workbench-be/internal/server"
	"query-workbench-be/internal/tracer"
	"query-workbench-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
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

	// 4. Reconcile runs orphaned by the previous process before taking traffic.
	if count, err := container.ExecutionService.Reconcile(context.Background()); err != nil {
		log.Panicf("Unable to reconcile orphaned runs: %v", err)
	} else if count > 0 {
		log.Printf("Reconciled %d orphaned runs", count)
	}

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 6. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
