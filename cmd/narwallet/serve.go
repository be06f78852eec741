package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/narwallet/internal/api"
	"github.com/AlexZinkM/narwallet/internal/config"
	"github.com/AlexZinkM/narwallet/internal/handler"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout   = 10 * time.Second
	idleCheckInterval = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the wallet HTTP API on localhost",
		Run: func(cmd *cobra.Command, args []string) {
			if err := serve(cmd.Context()); err != nil {
				log.Fatal().Err(err).Msg("Server failed")
			}
		},
	}
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	walletHandler := handler.NewWalletHandler(a.vault, a.wallet, config.GetAutoUnlockTTL())
	srv := &http.Server{
		Addr:              "127.0.0.1:" + config.GetPort(),
		Handler:           api.SetupRouter(walletHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if idle := config.GetIdleLockTimeout(); idle > 0 {
		go lockWhenIdle(ctx, a, idle)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// lockWhenIdle locks the vault once its session saw no request for idle
func lockWhenIdle(ctx context.Context, a *app, idle time.Duration) {
	ticker := time.NewTicker(idleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.vault.LockIdle(idle)
		}
	}
}
