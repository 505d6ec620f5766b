package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	servePort          int
	serveSecureCookies bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  `Start an HTTP server that serves the resume form, its live preview and the JSON API behind it.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveSecureCookies, "secure-cookies", false, "Mark profile cookies Secure (serve behind HTTPS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	ctx := context.Background()
	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return err
	}

	vault, err := store.NewVault(cfg.Secret)
	if err != nil {
		closeKV()
		return err
	}
	if !vault.Sealing() {
		log.Printf("[store] RESUME_SECRET not set, API keys are stored unsealed")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	aiConfig := llmConfig(cfg)
	tier := llm.ModelTier(cfg.Tier)
	log.Printf("[generate] provider=%s model=%s", aiConfig.Provider, aiConfig.GetModel(tier))

	service := preview.NewService(kv, vault, llm.NewFactory(aiConfig),
		preview.WithTier(tier), preview.WithMetrics(metrics))

	srv, err := server.New(server.Config{
		Port:          cfg.Port,
		Service:       service,
		Metrics:       metrics,
		Gatherer:      reg,
		SecureCookies: serveSecureCookies,
		OnShutdown:    []func(){closeKV},
	})
	if err != nil {
		closeKV()
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Printf("[store] using %s store", cfg.Store)
	return srv.Start()
}
