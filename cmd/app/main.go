package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PatientPulse/internal/di"
	"PatientPulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path (empty for defaults)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s history=%s cache=%s kafka=%t clickhouse=%t",
		cfg.Environment, cfg.History.Source, cfg.Cache.Backend, cfg.Kafka.Enabled, cfg.ClickHouse.Enabled)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx)
	stop()
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
