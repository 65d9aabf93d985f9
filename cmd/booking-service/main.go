package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reservaid/reservaid/internal/audit"
	"github.com/reservaid/reservaid/internal/caisse"
	"github.com/reservaid/reservaid/internal/commande"
	"github.com/reservaid/reservaid/internal/common/config"
	"github.com/reservaid/reservaid/internal/common/database"
	"github.com/reservaid/reservaid/internal/common/logger"
	"github.com/reservaid/reservaid/internal/common/middleware"
	"github.com/reservaid/reservaid/internal/common/server"
	"github.com/reservaid/reservaid/internal/common/tracing"
	"github.com/reservaid/reservaid/internal/creneau"
	"github.com/reservaid/reservaid/internal/export"
	"github.com/reservaid/reservaid/internal/feed"
	"github.com/reservaid/reservaid/internal/tarif"
	"github.com/reservaid/reservaid/internal/user"
)

func main() {
	configPath := flag.String("config", "config/booking-service.json", "config file path")
	consulHost := flag.String("consul-host", "localhost", "consul host for KV config")
	consulPort := flag.Int("consul-port", 8500, "consul port for KV config")
	consulKVKey := flag.String("consul-kv-key", "", "consul KV key holding the JSON config (overrides -config)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *consulKVKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulKVKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

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

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(
		&user.User{},
		&tarif.Tarif{},
		&creneau.Creneau{},
		&commande.Commande{},
		&commande.Compteur{},
		&caisse.Paiement{},
		&audit.Entry{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	publisher, err := feed.NewPublisher(cfg.Kafka, log)
	if err != nil {
		log.Warnf("change feed disabled: %v", err)
		publisher = nil
	}
	defer publisher.Close()

	auditRepo := audit.NewRepo(db)
	auditSvc := audit.NewService(auditRepo, log)

	tarifRepo := tarif.NewRepo(db)
	creneauRepo := creneau.NewRepo(db)
	creneauSvc := creneau.NewService(db, creneauRepo)

	commandeRepo := commande.NewRepo(db)
	commandeSvc := commande.NewService(db, commandeRepo, tarifRepo, creneauRepo, auditSvc, publisher)

	caisseRepo := caisse.NewRepo(db)
	caisseSvc := caisse.NewService(db, caisseRepo, auditSvc, publisher)

	userRepo := user.NewRepo(db)
	userSvc := user.NewService(userRepo, cfg.Auth)

	mux := http.NewServeMux()
	loginLimiter := middleware.NewPerClient(func() middleware.RateLimiter {
		return middleware.NewSlidingWindow(time.Minute, 30)
	})
	user.NewHandler(userSvc, userRepo, loginLimiter).RegisterRoutes(mux)
	tarif.NewHandler(tarifRepo).RegisterRoutes(mux)
	creneau.NewHandler(creneauSvc).RegisterRoutes(mux)
	commande.NewHandler(commandeSvc).RegisterRoutes(mux)
	caisse.NewHandler(caisseSvc, caisseRepo).RegisterRoutes(mux)
	audit.NewHandler(auditRepo).RegisterRoutes(mux)
	export.NewHandler(export.NewService(db)).RegisterRoutes(mux)

	if err := server.RunHTTPServer(cfg, log, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
