package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/parkside-league/league-hub/app"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, *configPath)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("Application stopped with error: %v", err)
	}

	if err := application.Shutdown(context.Background()); err != nil {
		log.Printf("Shutdown finished with errors: %v", err)
	}
}
