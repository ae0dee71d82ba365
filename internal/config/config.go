package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Services ServicesConfig
	Sweep    SweepConfig
	Tickets  TicketsConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

type AuthConfig struct {
	// InternalSecret signs the short-lived service-to-service tokens.
	// Any holder of a valid internal token may call any internal endpoint.
	InternalSecret string
	ExternalSecret string
	InternalTTL    time.Duration
	ServiceName    string
}

type ServicesConfig struct {
	EventsURL        string
	TicketsURL       string
	PaymentsURL      string
	NotificationsURL string
}

type SweepConfig struct {
	// Interval between settlement passes over pending payments.
	Interval time.Duration
	// ReconcileMaxAge is how old a Pending ticket must be before the
	// reconciliation sweep reports it as a suspected orphan.
	ReconcileInterval time.Duration
	ReconcileMaxAge   time.Duration
}

type TicketsConfig struct {
	// StrictDelete skips the seat restore when deleting a ticket that is
	// already Cancelled or Refunded. Legacy behavior (restore always) is
	// the default.
	StrictDelete bool
	QRSecret     string
}

func Load(service string) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("POSTGRES_DSN", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
		},
		Auth: AuthConfig{
			InternalSecret: getEnv("INTERNAL_JWT_SECRET", ""),
			ExternalSecret: getEnv("EXTERNAL_JWT_SECRET", ""),
			InternalTTL:    time.Duration(getEnvInt("INTERNAL_JWT_TTL_MINUTES", 5)) * time.Minute,
			ServiceName:    service,
		},
		Services: ServicesConfig{
			EventsURL:        getEnv("EVENTS_SERVICE_URL", "http://events-service:8080"),
			TicketsURL:       getEnv("TICKETS_SERVICE_URL", "http://tickets-service:8080"),
			PaymentsURL:      getEnv("PAYMENTS_SERVICE_URL", "http://payments-service:8080"),
			NotificationsURL: getEnv("NOTIFICATIONS_SERVICE_URL", "http://notifications-service:8080"),
		},
		Sweep: SweepConfig{
			Interval:          time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 10)) * time.Second,
			ReconcileInterval: time.Duration(getEnvInt("RECONCILE_INTERVAL_SECONDS", 60)) * time.Second,
			ReconcileMaxAge:   time.Duration(getEnvInt("RECONCILE_MAX_AGE_MINUTES", 15)) * time.Minute,
		},
		Tickets: TicketsConfig{
			StrictDelete: getEnvBool("TICKETS_STRICT_DELETE", false),
			QRSecret:     getEnv("QR_SECRET_KEY", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
