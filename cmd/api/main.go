package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device"
	devicerepo "github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/repo"
	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/router"
	userrepo "github.com/ovaphlow/pitchfork/service-edge-admin/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/database"
	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/utilities"
)

type serverConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8431"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

func main() {
	// a missing .env is fine, the real environment still applies
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	var srvCfg serverConfig
	if err := env.Parse(&srvCfg); err != nil {
		sugar.Fatalf("server config: %v", err)
	}

	dbCfg := database.ConfigFromEnv()
	db, err := database.ConnectX(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dbCfg.EnsureSchema {
		// devices references user_accounts
		if err := userrepo.NewUserRepo(db).EnsureTable(ctx); err != nil {
			sugar.Fatalf("ensure user_accounts: %v", err)
		}
		if err := devicerepo.NewDeviceRepo(db).EnsureTable(ctx); err != nil {
			sugar.Fatalf("ensure devices: %v", err)
		}
		sugar.Info("schema ensured")
	}

	svc := device.NewQueryServiceDB(db, sugar)
	srv := &http.Server{
		Addr:              srvCfg.Addr,
		Handler:           router.RegisterRoutes(sugar, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("edge admin api listening", "addr", srvCfg.Addr)

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	sugar.Info("goodbye")
}
