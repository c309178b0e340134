// chainmock runs the in-memory mock API used by the test suite as a real
// HTTP server, so the CLI can be pointed at a local backend with seeded
// fixture data during development.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gerri254/chainctl/internal/apitest"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var addr = flag.String("addr", ":5000", "Listen address")
	flag.Parse()

	log.Printf("Starting chainmock version %s (built at %s)", version, buildTime)
	log.Printf("Seeded accounts sign in with password %q (e.g. %s, %s)",
		apitest.Password, apitest.LearnerEmail, apitest.OfficerEmail)

	backend := apitest.NewServer()

	server := &http.Server{
		Addr:         *addr,
		Handler:      backend.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Mock API listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Mock API exited")
}
