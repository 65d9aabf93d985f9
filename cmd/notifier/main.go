package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/reservaid/reservaid/internal/common/config"
	"github.com/reservaid/reservaid/internal/common/logger"
	"github.com/reservaid/reservaid/internal/notify"
)

func main() {
	configPath := flag.String("config", "config/notifier.json", "config file path")
	templatesPath := flag.String("templates", "config/templates.yaml", "notification templates file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		logrus.Fatalf("Failed to init logger: %v", err)
	}

	tpls, err := notify.LoadTemplates(*templatesPath)
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}

	notifier := notify.NewNotifier(
		tpls,
		notify.NewPushSender(cfg.Push),
		notify.NewEmailSender(cfg.SMTP),
		log,
	)

	consumer, err := notify.NewConsumer(cfg.Kafka, notifier, log)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Infof("received signal %v, shutting down...", sig)
		cancel()
	}()

	log.Infof("notifier consuming from %s", cfg.Kafka.Brokers)
	if err := consumer.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("consumer exited: %v", err)
	}
}
