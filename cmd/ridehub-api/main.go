// README: Entry point; loads config, wires module services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridehub/internal/auth"
	"ridehub/internal/config"
	httptransport "ridehub/internal/http"
	"ridehub/internal/infra"
	"ridehub/internal/logging"
	"ridehub/internal/modules/driver"
	"ridehub/internal/modules/ride"
	"ridehub/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Log.Level)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("RIDEHUB_JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userStore := user.NewStore(dbPool)
	userSvc := user.NewService(userStore, log)

	rideStore := ride.NewStore(dbPool)
	driverStore := driver.NewStore(dbPool, redisClient, cfg.Driver.CacheTTL)

	// driver and ride reference each other through narrow interfaces, so the
	// driver service is built first without earnings and the ride service is
	// handed the finished directory.
	driverSvc := driver.NewService(driverStore, userSvc, nil, log)
	rideSvc := ride.NewService(rideStore, userSvc, driverSvc, log)
	driverSvc.BindEarnings(rideSvc)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Users:   userSvc,
		Rides:   rideSvc,
		Drivers: driverSvc,
		Tokens:  tokens,
		Log:     log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown error")
		}
	}()

	log.WithField("addr", cfg.HTTP.Addr).Info("starting ridehub api")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server exited")
	}
}
