package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harrylevesque/qrpay/internal/api"
	"github.com/harrylevesque/qrpay/internal/certs"
	"github.com/harrylevesque/qrpay/internal/render"
	"github.com/harrylevesque/qrpay/internal/telemetry"
	"github.com/harrylevesque/qrpay/internal/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	configPath := flag.String("config", utils.DefaultConfigPath(), "Path to config.json")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := utils.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logOpts := utils.LoggerOptions{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}
	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx, cfg.ServiceName)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
		logOpts.Wrap = telemetry.LogHandler
	}
	logger, err := utils.NewLogger(logOpts)
	if err != nil {
		return err
	}
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	exports, err := telemetry.NewExports()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	renderer := render.NewRenderer(render.Options{
		Width:      cfg.PNGWidth,
		Margin:     cfg.Margin,
		SVGSize:    cfg.SVGSize,
		Level:      cfg.Level,
		Foreground: cfg.Foreground,
		Background: cfg.Background,
	})
	handler := api.NewHandler(renderer, logger.Slog(), exports)
	router := api.NewRouter(handler, cfg.Origins())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	if cfg.TLSCert != "" {
		tlsCfg, leaf, err := certs.NewCertManager(cfg.TLSCert, cfg.TLSKey).TLSConfig()
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsCfg
		logger.Info("tls enabled", "subject", leaf.Subject.CommonName, "expires", leaf.NotAfter)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", cfg.Addr, "tls", srv.TLSConfig != nil)
		if srv.TLSConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
