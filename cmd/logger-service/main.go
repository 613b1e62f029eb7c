package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mqttlog/internal/config"
	"mqttlog/internal/logger"
)

var (
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "logger-service",
		Short: "MQTT event logger",
		Long:  "Subscribes to all topics on the MQTT broker and records every message in the event database",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MQTT event logger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = os.Getenv("CONFIG_FILE")
				if configFile == "" {
					fmt.Fprintln(os.Stderr, "Config file is required. Use --config flag or CONFIG_FILE environment variable")
					return fmt.Errorf("config file is required")
				}
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
				return err
			}

			log, err := logger.New(cfg.Logging.Level)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.Infow("Starting MQTT event logger")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.Fatalf("Failed to initialize application: %v", err)
			}

			runErr := app.Run(ctx)

			if err := app.Shutdown(context.Background()); err != nil {
				log.Errorw("Shutdown finished with errors", "error", err)
			}

			if runErr != nil && runErr != context.Canceled {
				log.Errorw("Service stopped with error", "error", runErr)
				return runErr
			}
			log.Infow("Service shutdown complete")
			return nil
		},
	}
}
