// Package main is the production entry point for the Resona playback engine.
//
// Resona is a headless audio playback engine with clean architecture:
// - Event-driven communication between transport, sequencer and library
// - Dependency injection for testability
// - Repository pattern for durable song, cache and settings storage
//
// Build:
//
//	go build -o build/resona ./cmd
//
// Run:
//
//	./build/resona
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/thall/resona/internal/app"
	"github.com/thall/resona/internal/domain"
)

func main() {
	application, err := app.NewApplication(app.Options{})
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	defer func() {
		fmt.Println("\nShutting down...")
		application.Shutdown()
		fmt.Println("Shutdown complete")
	}()

	// Surface engine notifications on the console.
	application.EventBus().Subscribe(domain.EventNotification, func(event domain.Event) {
		if e, ok := event.(domain.NotificationEvent); ok {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Notification.Severity, e.Notification.Message)
		}
	})

	// Import any files named on the command line before starting.
	for _, path := range os.Args[1:] {
		if _, err := application.Library().ImportFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
		}
	}

	if songs := application.Library().AllSongs(); len(songs) > 0 {
		if err := application.Player().PlaySong(songs[0]); err != nil {
			fmt.Fprintf(os.Stderr, "playback failed: %v\n", err)
		}
	}

	// Run until interrupted.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
