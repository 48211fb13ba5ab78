// Command api serves battles over HTTP and websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Turn-Tactics/internal/api"
	"github.com/Garsondee/Turn-Tactics/internal/config"
	"github.com/Garsondee/Turn-Tactics/internal/logging"
	"github.com/Garsondee/Turn-Tactics/internal/store"
)

func main() {
	configDir := flag.String("config", ".", "directory holding tactics.cfg")
	addr := flag.String("addr", "", "listen address (default api.addr from config)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfgErr := config.Load(*configDir)
	if cfgErr != nil && !config.IsNotFound(cfgErr) {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(cfgErr).Msg("Failed to load config")
	}

	sessionStart := time.Now()
	var files []io.Writer
	if dir := config.GetString("logsDir"); dir != "" {
		f, err := logging.OpenFile(dir, "tactics-api", sessionStart)
		if err != nil {
			l := zerolog.New(os.Stderr)
			l.Fatal().Err(err).Msg("Failed to open log file")
		}
		defer f.Close()
		files = append(files, f)
	}
	logger := logging.New(config.GetString("logLevel"), os.Stderr, files...)
	if cfgErr != nil {
		logger.Warn().Str("dir", *configDir).Msg("No config file found, using defaults")
	}

	var rec api.Recorder
	st, err := store.Open(config.GetStorageConfig(), logger)
	switch {
	case errors.Is(err, store.ErrDisabled):
		logger.Info().Msg("Replay storage disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("Failed to open replay store")
	default:
		defer st.Close()
		rec = st
		logger.Info().Str("backend", st.Backend).Msg("Replay storage ready")
	}

	srv, err := api.New(config.GetBattleConfig(), rec, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build server")
	}

	listen := *addr
	if listen == "" {
		listen = config.GetAPIConfig().Addr
	}
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", listen).Msg("Listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown error")
	}
}
