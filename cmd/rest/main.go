package main

import (
	"context"
	"log"

	"notesquest-be/internal/bootstrap"
	"notesquest-be/internal/config"
	"notesquest-be/internal/server"
	"notesquest-be/internal/tracer"
	"notesquest-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Drain the async persistence queues in the background.
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Fatalf("Failed to start consumer service: %v", err)
	}

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
