package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"notesquest-be/pkg/events"
	"notesquest-be/pkg/nats"
)

// Tails the lifecycle event stream (document ingestion, generation
// completion, chat persistence) for operational inspection.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}

	durable := os.Getenv("EVENTS_DURABLE_NAME")
	if durable == "" {
		durable = "notesquest-events-tail"
	}

	sub, err := nats.NewSubscriber(url)
	if err != nil {
		log.Fatalf("Error: Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe(nats.SubjectAll, durable, func(ctx context.Context, event events.Event) error {
		payload, err := json.Marshal(event.Payload())
		if err != nil {
			return err
		}
		log.Printf("%s %s", event.EventType(), payload)
		return nil
	})
	if err != nil {
		log.Fatalf("Error: Failed to subscribe: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
