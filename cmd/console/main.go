package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/console"
	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device"
	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/database"
	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/utilities"
)

func main() {
	mode := flag.String("mode", "local", "backend: local (in-process over the database) or http")
	baseURL := flag.String("base-url", "http://localhost:8431", "API base URL for -mode http")
	flag.Parse()

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var backend console.Backend
	switch *mode {
	case "http":
		backend = console.NewClient(*baseURL)
	case "local":
		logCfg := utilities.ConfigFromEnv()
		if os.Getenv("LOG_LEVEL") == "" {
			// keep info logs out of the menu
			logCfg.Level = "warn"
		}
		lg, err := utilities.Init(logCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
			os.Exit(1)
		}
		defer lg.Sync()

		db, err := database.ConnectX(database.ConfigFromEnv())
		if err != nil {
			fmt.Fprintf(os.Stderr, "db connect: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		backend = device.NewQueryServiceDB(db, lg.Sugar())
	default:
		fmt.Fprintf(os.Stderr, "unknown -mode %q, want local or http\n", *mode)
		os.Exit(2)
	}

	if err := console.NewMenu(backend, os.Stdin, os.Stdout).Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}
