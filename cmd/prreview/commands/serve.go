package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/irahardianto/prreview/internal/engine/config"
	"github.com/irahardianto/prreview/internal/engine/llm"
	"github.com/irahardianto/prreview/internal/engine/review"
	"github.com/irahardianto/prreview/internal/engine/server"
	"github.com/irahardianto/prreview/internal/platform/logger"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP review service",
	Long: `Start the HTTP server exposing POST /reviews, GET /healthz and GET /metrics.
Without a configured API key the server still starts; review requests then
fail with 503 Service Unavailable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, flagConfig, flagAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

// runServe is the composition root for the HTTP service.
func runServe(ctx context.Context, configPath, addr string) error {
	log := logger.FromContext(ctx)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr != "" {
		cfg.Server.Address = addr
	}

	svc, err := newReviewService(cfg)
	if err != nil {
		return err
	}
	if svc.gatewayMissing {
		log.Warn("no API key configured; review requests will be rejected", "provider", cfg.Provider)
	}

	srv := server.New(serverConfig(cfg), svc.Service)
	return srv.Run(ctx)
}

func serverConfig(cfg config.Config) server.Config {
	return server.Config{
		Address:        cfg.Server.Address,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   server.BodyLimit(cfg.MaxDiffLength),
	}
}

type reviewService struct {
	*review.Service
	gatewayMissing bool
}

func newReviewService(cfg config.Config) (reviewService, error) {
	gw, err := llm.New(cfg)
	if err != nil {
		return reviewService{}, fmt.Errorf("creating completion gateway: %w", err)
	}
	return reviewService{
		Service:        review.NewService(gw, cfg.MaxDiffLength),
		gatewayMissing: gw == nil,
	}, nil
}
