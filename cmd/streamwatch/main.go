package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/alert"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/api"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/config"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/detector"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/history"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/kafka"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/logger"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/metrics"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/notify"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/simulator"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/store"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/stream"
	"github.com/viniciushammett/go-stream-anomaly-detector/internal/tracing"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	log := logger.New(getEnv("LOG_LEVEL", "info"))
	cfgPath := getEnv("CONFIG_PATH", "configs/config.yaml")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	log.Info().
		Str("version", version).
		Str("config", cfgPath).
		Str("addr", cfg.Server.Addr).
		Int("windowSize", cfg.Detector.WindowSize).
		Float64("sensitivity", cfg.Detector.Sensitivity).
		Msg("starting go-stream-anomaly-detector")

	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	closer, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Error().Err(err).Msg("tracing init failed")
	} else {
		defer func() { _ = closer(context.Background()) }()
	}

	det, err := detector.New(detector.Config{
		WindowSize:  cfg.Detector.WindowSize,
		Sensitivity: cfg.Detector.Sensitivity,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid detector config")
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("open store")
	}
	defer db.Close()

	var pub *kafka.Publisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		pub = kafka.NewPublisher(log.Component("kafka"), cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer pub.Close()
	}

	slack := notify.NewSlack(cfg.Slack.Enabled, cfg.Slack.Webhook)
	alerter := alert.New(log.Component("alert"), db, slack, pub)
	defer alerter.Close()

	ring := history.New(cfg.Stream.History)
	feed := api.NewFeed(log.Component("live"))

	src := simulator.New(cfg.Simulator.Build())
	runner := stream.NewRunner(
		log.Component("stream"),
		det,
		src,
		stream.MultiSink{ring, alerter, feed},
		cfg.Stream.TickInterval(),
	)
	runnerDone := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(runnerDone)
	}()

	srv := api.NewServer(api.Deps{
		Log:       log.Component("api"),
		Store:     db,
		History:   ring,
		Runner:    runner,
		Feed:      feed,
		AuthToken: cfg.Server.AuthToken,
	}, api.Config{Addr: cfg.Server.Addr})

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("http server failed")
	}

	// Wait for the classify loop before the deferred sink closes run.
	<-runnerDone
	log.Info().Msg("shutdown complete")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
