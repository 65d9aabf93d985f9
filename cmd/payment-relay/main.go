package main

import (
	"flag"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/reservaid/reservaid/internal/common/config"
	"github.com/reservaid/reservaid/internal/common/logger"
	"github.com/reservaid/reservaid/internal/common/middleware"
	"github.com/reservaid/reservaid/internal/common/server"
	"github.com/reservaid/reservaid/internal/common/tracing"
	"github.com/reservaid/reservaid/internal/relay"
)

func main() {
	configPath := flag.String("config", "config/payment-relay.json", "config file path")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	cfg.Server.Name = "payment-relay"
	// The relay fronts the provider for anonymous checkout creation; the
	// booking service owns authenticated traffic.
	cfg.Auth.Enabled = false

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		logrus.Fatalf("Failed to init logger: %v", err)
	}

	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	client := relay.NewClient(cfg.SumUp)
	limiter := middleware.NewPerClient(func() middleware.RateLimiter {
		return middleware.NewTokenBucket(20, 10)
	})

	mux := http.NewServeMux()
	relay.NewHandler(client, limiter, log).RegisterRoutes(mux)

	if err := server.RunHTTPServer(cfg, log, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
