package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config is the full application configuration, shared by the three
// binaries (booking-service, payment-relay, notifier). Each binary only
// reads the sections it needs.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Kafka    KafkaConfig    `json:"kafka"`
	Auth     AuthConfig     `json:"auth"`
	SumUp    SumUpConfig    `json:"sumup"`
	Push     PushConfig     `json:"push"`
	SMTP     SMTPConfig     `json:"smtp"`
	Log      LogConfig      `json:"log"`
}

type ServerConfig struct {
	Name     string `json:"name"`      // service name (consul registration, tracing)
	Host     string `json:"host"`      // bind address
	HTTPPort int    `json:"http_port"` // HTTP port
}

type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // sampling rate 0.0-1.0
}

type KafkaConfig struct {
	Brokers     string `json:"brokers"`      // bootstrap servers, comma separated
	TopicPrefix string `json:"topic_prefix"` // change feed topics: <prefix>.<table>
	GroupID     string `json:"group_id"`     // consumer group (notifier)
	Enabled     bool   `json:"enabled"`      // change feed off in dev without a broker
}

// AuthConfig drives JWT verification and the per-route role requirements.
type AuthConfig struct {
	Enabled     bool                `json:"enabled"`
	JWTSecret   string              `json:"jwt_secret"`
	Issuer      string              `json:"issuer"`
	Audience    string              `json:"audience"`
	TTLHours    int                 `json:"ttl_hours"`
	PublicPaths []string            `json:"public_paths"` // "METHOD /pattern" entries skipped by auth
	RBAC        map[string][]string `json:"rbac"`         // "METHOD /pattern" -> roles allowed
}

// SumUpConfig holds the provider credentials the browser must never see.
type SumUpConfig struct {
	APIKey      string `json:"api_key"`
	MerchantID  string `json:"merchant_id"`
	APIBaseURL  string `json:"api_base_url"`
	RedirectURL string `json:"redirect_url"` // default return URL after checkout
}

type PushConfig struct {
	GatewayURL string `json:"gateway_url"` // push delivery endpoint, POST {title,body,url}
	DefaultURL string `json:"default_url"` // url opened on notification click
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from"`
	Enabled  bool   `json:"enabled"`
}

type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // log file path when output=file
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig reads the JSON config file; a missing file falls back to the
// development defaults.
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig returns the loaded config, or the defaults when LoadConfig was
// never called.
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "booking-service",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "reservaid",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Kafka: KafkaConfig{
			Brokers:     "localhost:9092",
			TopicPrefix: "reservaid",
			GroupID:     "reservaid-notifier",
			Enabled:     false,
		},
		Auth: AuthConfig{
			Enabled:   true,
			JWTSecret: "dev-secret-change-me",
			Issuer:    "reservaid",
			Audience:  "reservaid",
			TTLHours:  24,
			PublicPaths: []string{
				"POST /api/auth/login",
				"POST /api/auth/register",
				"GET /api/tarifs",
				"GET /api/creneaux",
				"GET /healthz",
			},
			RBAC: DefaultRBAC(),
		},
		SumUp: SumUpConfig{
			APIBaseURL:  "https://api.sumup.com/v0.1",
			RedirectURL: "https://reservaid.example/retour-paiement",
		},
		Push: PushConfig{
			DefaultURL: "/",
		},
		SMTP: SMTPConfig{
			Host: "localhost",
			Port: 25,
			From: "no-reply@reservaid.example",
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}

// DefaultRBAC is the route->roles table matching the panel layout: customers
// only reach their own orders, sellers the validation queue, site admins the
// till and stock. admin_global is implicitly allowed on every gated route
// (see server.RBAC), so it is never listed here.
func DefaultRBAC() map[string][]string {
	return map[string][]string{
		// Customers reach the payment callbacks and the listing for their
		// own orders; the handlers enforce ownership before touching data.
		"POST /api/commandes/reserver":             {"client", "vendeur", "admin_site"},
		"POST /api/commandes/{id}/paiement/succes": {"client", "vendeur", "admin_site"},
		"POST /api/commandes/{id}/paiement/echec":  {"client", "vendeur", "admin_site"},
		"GET /api/commandes":                       {"client", "vendeur", "admin_site"},
		"POST /api/commandes/{id}/valider":         {"vendeur", "admin_site"},
		"POST /api/commandes/{id}/refuser":         {"vendeur", "admin_site"},
		"POST /api/commandes/{id}/boucler":         {"vendeur", "admin_site"},
		"POST /api/commandes/{id}/terminer":        {"vendeur", "admin_site"},
		"POST /api/commandes/{id}/annuler":         {"vendeur", "admin_site"},
		"GET /api/commandes/billet/{numero}":       {"vendeur", "admin_site"},
		"POST /api/commandes/{id}/creneau":         {"admin_site"},
		"DELETE /api/commandes/{id}/creneau":       {"admin_site"},
		"POST /api/commandes/creneau/lot":          {"admin_site"},
		"POST /api/paiements":                      {"vendeur", "admin_site"},
		"POST /api/paiements/{id}/annuler":         {"admin_site"},
		"POST /api/caisse/cloture":                 {"admin_site"},
		"POST /api/creneaux":                       {"admin_site"},
		"DELETE /api/creneaux/{id}":                {"admin_site"},
		"POST /api/tarifs":                         {"admin_site"},
		"PUT /api/tarifs/{id}":                     {"admin_site"},
		"DELETE /api/tarifs/{id}":                  {"admin_site"},
		"GET /api/export/commandes.csv":            {"admin_site"},
		"GET /api/export/paiements.csv":            {"admin_site"},
		"GET /api/audit":                           {"admin_site"},
		"POST /api/admin/reset":                    {"admin_global"},
		"GET /api/users":                           {"admin_global"},
	}
}
