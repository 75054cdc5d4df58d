// Package main is the entry point for powerbar, a Waybar custom module that
// reports the battery level of UPower devices such as Bluetooth headsets.
// It prints one JSON line per matching device, either once or every time
// the devices change when run with --listen.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/powerbar/internal/collector"
	"github.com/Guliveer/powerbar/internal/config"
	"github.com/Guliveer/powerbar/internal/metrics"
	"github.com/Guliveer/powerbar/internal/models"
	"github.com/Guliveer/powerbar/internal/platform"
	"github.com/Guliveer/powerbar/internal/scheduler"
	"github.com/Guliveer/powerbar/internal/waybar"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	opts, err := parseFlags(flag.NewFlagSet("powerbar", flag.ContinueOnError), os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Printf("powerbar %s\n", version)
		os.Exit(0)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if opts.writeConfig != "" {
		if err := config.WriteConfig(cfg, opts.writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote config to %s\n", opts.writeConfig)
		os.Exit(0)
	}

	logger := initLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("powerbar failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// loadConfig layers the config file, environment and flags, then validates.
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadLayered(opts.overrides, opts.configPath)
	} else {
		cfg, err = config.LoadLayered(opts.overrides)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run connects to UPower and drives the scheduler until it finishes or a
// termination signal arrives.
func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	src, err := collector.NewUPower(logger.Named("upower"))
	if err != nil {
		return err
	}
	defer src.Close()

	if !src.IsAvailable(ctx) {
		return fmt.Errorf("%w: %s is not running", collector.ErrSourceUnavailable, src.Name())
	}

	sched := scheduler.New(src, cfg, waybar.NewWriter(os.Stdout), logger.Named("scheduler"))

	if serveMetricsEnabled(cfg, logger) {
		m := metrics.New()
		sched.OnRefresh(func(trigger string, snapshots []models.DeviceSnapshot, err error) {
			if err != nil {
				m.ObserveError(trigger)
				return
			}
			m.ObserveRefresh(trigger, snapshots)
		})
		stop := serveMetrics(cfg.Metrics.Listen, m, logger)
		defer stop()
	}

	logger.Info("Starting powerbar",
		zap.String("version", version),
		zap.Stringer("kinds", cfg.Kinds),
		zap.Bool("listen", cfg.Listen))

	return sched.Run(ctx)
}

// serveMetricsEnabled reports whether the metrics endpoint should run. A
// one-shot run exits after a single refresh, so the endpoint is skipped
// with a warning.
func serveMetricsEnabled(cfg *config.Config, logger *zap.Logger) bool {
	if cfg.Metrics.Listen == "" {
		return false
	}
	if !cfg.Listen {
		logger.Warn("Metrics endpoint requires --listen, not serving",
			zap.String("addr", cfg.Metrics.Listen))
		return false
	}
	return true
}

// serveMetrics exposes /metrics on addr and returns a function that shuts
// the server down.
func serveMetrics(addr string, m *metrics.Metrics, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// initLogger creates a zap logger based on the configuration.
// Console output goes to stderr because stdout carries the Waybar stream;
// a JSON log file is added when configured.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.WarnLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}

// helpWidth is the terminal width available to the kind list in --help.
func helpWidth() int {
	// flag.PrintDefaults indents usage text.
	return platform.New().TerminalWidth(os.Stderr) - 8
}
