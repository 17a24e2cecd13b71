package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/referloop/referral-api/api/handlers"
	"github.com/referloop/referral-api/api/scheduler"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil {
		zap.S().Fatalw("failed to initialize referral-api", "error", err)
	}

	s := scheduler.NewScheduler(
		databases.NewUserDatabase(a.DB),
		databases.NewReferralLinkDatabase(a.DB),
		databases.NewConversionDatabase(a.DB),
		databases.NewJobLockDatabase(a.DB),
	)
	s.Start()

	port := a.Config.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%v", port),
		Handler: a.Router,
	}

	go func() {
		zap.S().Infow("referral-api is up and running",
			"port", port,
			"url", a.Config.BaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.S().Info("shutting down referral-api")
	s.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Warnw("failed to shut down server", "error", err)
	}
	if err := a.Client.Disconnect(ctx); err != nil {
		zap.S().Warnw("failed to disconnect from database", "error", err)
	}
}
