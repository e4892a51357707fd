package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback"

	"github.com/tradebot/dashboard/internal/logger"
	"github.com/tradebot/dashboard/internal/ui/config"
	"github.com/tradebot/dashboard/internal/ui/server"
	"github.com/tradebot/dashboard/internal/version"
)

func main() {
	cmd := &cobra.Command{
		Use:   "tradebot-ui",
		Short: "Trading bot dashboard",
		Long:  `Web dashboard for monitoring and controlling the trading bot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}
	cmd.Version = version.Get().String()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load UI configuration: %w", err)
	}

	serverLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	serverLogger.Info("Starting UI server", slog.String("version", version.Get().Version), slog.String("environment", cfg.Environment))
	serverLogger.Info("using trading bot API", slog.String("url", cfg.APIBaseURL), slog.String("api_root", cfg.APIRoot))

	s, err := server.NewServer(cfg, serverLogger)
	if err != nil {
		serverLogger.Error("Failed to create UI server", slog.String("error", err.Error()))
		return err
	}

	if err := s.Start(ctx); err != nil {
		serverLogger.Error("UI server error", slog.String("error", err.Error()))
		return err
	}

	serverLogger.Info("UI server shutdown complete")
	return nil
}
