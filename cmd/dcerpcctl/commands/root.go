// Package commands implements the dcerpcctl cobra command tree: a thin
// demonstration of rpc.Connection against a TCP transport.
package commands

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/mellowdrifter/dcerpc/internal/config"
	"github.com/mellowdrifter/dcerpc/internal/logging"
	"github.com/mellowdrifter/dcerpc/internal/metrics"
)

var (
	// configPath is an optional YAML config file, layered beneath
	// environment variables and these flags (defaults < file < env <
	// flags).
	configPath string

	// addr is the target host:port for the TCP transport.
	addr string

	// logLevel and logFormat configure the shared logger.
	logLevel  string
	logFormat string

	// metricsAddr, if non-empty, serves /metrics over HTTP for the
	// lifetime of the command.
	metricsAddr string
)

// rootCmd is the top-level cobra command for dcerpcctl.
var rootCmd = &cobra.Command{
	Use:   "dcerpcctl",
	Short: "CLI client exercising a DCE/RPC connection",
	Long:  "dcerpcctl opens a connection-oriented DCE/RPC connection over TCP and performs a bind or a raw call.",
	// Silence cobra's built-in usage/error printing so we control it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:135", "target host:port")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log encoding: console or json")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this host:port while the command runs")

	rootCmd.AddCommand(bindCmd())
	rootCmd.AddCommand(callCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds a logger from the effective, merged configuration.
func newLogger(cfg *cfgpkg.Config) *zap.SugaredLogger {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

// loadConfig reads the layered configuration, then overlays any flag the
// operator set explicitly on cmd (or, for flags left at their default, the
// value the config layers produced), completing the
// defaults < file < env < flags precedence before validating the result.
func loadConfig(cmd *cobra.Command) (*cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("addr") || cfg.Target.Addr == "" {
		cfg.Target.Addr = addr
	}
	if cmd.Flags().Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") || cfg.Log.Format == "" {
		cfg.Log.Format = logFormat
	}

	if err := cfgpkg.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// newMetricsCollector creates a Collector bound to its own registry and,
// if metricsAddr is set, starts an HTTP server exposing it for the
// lifetime of the command; the returned stop func must be called before
// the command returns.
func newMetricsCollector(logger *zap.SugaredLogger) (*metrics.Collector, func()) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	if metricsAddr == "" {
		return collector, func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: metricsAddr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("metrics server failed", "error", err)
		}
	}()

	return collector, func() { _ = srv.Close() }
}
