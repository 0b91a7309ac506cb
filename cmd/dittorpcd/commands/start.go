package commands

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittorpc/examples/services"
	"github.com/marmos91/dittorpc/internal/config"
	"github.com/marmos91/dittorpc/internal/logger"
	"github.com/marmos91/dittorpc/internal/metrics"
	"github.com/marmos91/dittorpc/internal/registry"
	"github.com/marmos91/dittorpc/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the RPC server",
	Long: `Start dittorpcd's event loop, serving the demo services registered
in examples/services.

Use --config to point at a config file, or rely on the default location
at $XDG_CONFIG_HOME/dittorpc/config.yaml plus built-in defaults.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	reg := registry.NewRegistry()
	demo := services.NewDemo()
	if err := demo.Register(reg); err != nil {
		return fmt.Errorf("register demo services: %w", err)
	}

	var recorder server.MetricsRecorder
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		m := metrics.New(promReg)
		recorder = m

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			logger.Info("metrics server listening", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	srv := server.New(cfg.ToServerConfig(), reg, recorder)
	if err := srv.Listen(); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		srv.SignalStop()
	}()

	return srv.MainLoop()
}
