// BoxBee server entrypoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noamseg/boxbee/internal/ai"
	"github.com/noamseg/boxbee/internal/auth"
	"github.com/noamseg/boxbee/internal/boxes"
	"github.com/noamseg/boxbee/internal/config"
	"github.com/noamseg/boxbee/internal/email"
	"github.com/noamseg/boxbee/internal/httpapi"
	"github.com/noamseg/boxbee/internal/insights"
	"github.com/noamseg/boxbee/internal/logging"
	"github.com/noamseg/boxbee/internal/settings"
	"github.com/noamseg/boxbee/internal/store"
)

const version = "1.0.0"

var (
	// Global flags
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "boxbee",
	Short: "BoxBee - time-boxing productivity server",
	Long: `BoxBee is a time-boxing productivity backend.

It manages focus "boxes" through a scheduled/active/completed lifecycle,
aggregates weekly focus insights, and optionally uses Gemini for duration
estimates, task breakdown, and coaching messages.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the BoxBee HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the BoxBee version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("boxbee %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "boxbee.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Logging.Debug = true
		cfg.Logging.Level = "debug"
	}

	if err := logging.Initialize(logging.Options{
		Dir:   cfg.LogDir(),
		Debug: cfg.Logging.Debug,
		Level: cfg.Logging.Level,
	}); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logging.CloseAll()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.PurgeExpiredTokens(ctx, time.Now()); err != nil {
		logger.Warn("purge expired tokens", zap.Error(err))
	}

	var client ai.Client = ai.Disabled{}
	if cfg.LLM.APIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
		if err != nil {
			logger.Warn("gemini unavailable, AI features disabled", zap.Error(err))
		} else {
			client = gemini
			logger.Info("gemini client ready", zap.String("model", cfg.LLM.Model))
		}
	} else {
		logger.Info("no GEMINI_API_KEY, AI features disabled")
	}

	var sender email.Sender
	if cfg.Email.SMTPHost != "" {
		sender = &email.SMTPSender{
			From:    cfg.Email.From,
			Host:    cfg.Email.SMTPHost,
			Port:    cfg.Email.SMTPPort,
			User:    cfg.Email.SMTPUser,
			Pass:    cfg.Email.SMTPPass,
			BaseURL: cfg.Email.BaseURL,
		}
	} else {
		sender = &email.ConsoleSender{BaseURL: cfg.Email.BaseURL}
	}

	server := httpapi.NewServer(cfg, st,
		auth.NewService(st, sender, cfg.Auth),
		boxes.NewService(st),
		settings.NewService(st),
		insights.NewAggregator(st, client),
		ai.NewCoach(client),
	)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("boxbee listening",
			zap.Int("port", cfg.Server.Port),
			zap.String("env", cfg.Env))
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
