package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/zatigwera/internal/handler"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web application",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	slog.Info("configuration loaded", "config", cfg.String())

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, closeSessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	passwords := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(db.Users(), sessions, passwords, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	userService := service.NewUserService(db.Users(), passwords)
	funeralService := service.NewFuneralService(db.Funerals())

	// Ten login attempts per address, refilling one every six seconds.
	loginLimiter := service.NewTokenBucket(1.0/6, 10)
	defer loginLimiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, userService, funeralService, db, loginLimiter, cfg.HTTP.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           handler.Wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}
