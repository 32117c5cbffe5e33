package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/palemoky/waterdeep-conspiracy/internal/config"
	"github.com/palemoky/waterdeep-conspiracy/internal/logger"
	"github.com/palemoky/waterdeep-conspiracy/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, envPath string

	flagSet := pflag.NewFlagSet("conspiracy-server", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the YAML config file")
	flagSet.StringVar(&envPath, "env-file", ".env", "dotenv file loaded before the config")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	envErr := godotenv.Load(envPath)

	cfg, cfgErr := config.Load(configPath)
	if cfgErr != nil {
		cfg = config.Default()
		cfg.ApplyEnv()
	}

	logger.Init(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn().Err(envErr).Str("path", envPath).Msg("could not read env file")
	}
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Str("path", configPath).Msg("using default config")
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr()).Msg("waterdeep conspiracy server starting")
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
