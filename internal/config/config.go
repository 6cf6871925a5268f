package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Email    EmailConfig
	Tickets  TicketConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects the document store backend: "postgres" or "firestore".
type StoreConfig struct {
	Driver           string
	FirestoreProject string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// DSN returns the postgres connection string understood by lib/pq and
// golang-migrate.
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.Username + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Database + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	Topic         string
	GroupPrefix   string
	CreateTopics  bool
	NumPartitions int
}

type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
	AdminEmail string
}

type PaymentConfig struct {
	Provider             string
	Currency             string
	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string
}

type EmailConfig struct {
	Enabled      bool
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromAddress  string
	FromName     string
}

type TicketConfig struct {
	SeatMapSize int
	MaxSeats    int
	QRSize      int
	FontPath    string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Driver:           getEnv("STORE_DRIVER", "postgres"),
			FirestoreProject: getEnv("FIRESTORE_PROJECT_ID", "cricketbook"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "cricket_user"),
			Password:     getEnv("DB_PASSWORD", "cricket_pass"),
			Database:     getEnv("DB_NAME", "cricketbook"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", false),
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topic:         getEnv("KAFKA_TOPIC_CHANGES", "cricketbook-changes"),
			GroupPrefix:   getEnv("KAFKA_GROUP_PREFIX", "cricketbook-feed"),
			CreateTopics:  getEnvBool("KAFKA_CREATE_TOPICS", true),
			NumPartitions: getEnvInt("KAFKA_PARTITIONS", 3),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "change-me-in-production"),
			SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),
			AdminEmail: NormalizeEmail(getEnv("ADMIN_EMAIL", "")),
		},
		Payment: PaymentConfig{
			Provider:             getEnv("PAYMENT_PROVIDER", "sandbox"),
			Currency:             getEnv("PAYMENT_CURRENCY", "inr"),
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			StripeWebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Email: EmailConfig{
			Enabled:      getEnvBool("EMAIL_ENABLED", false),
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromAddress:  getEnv("EMAIL_FROM", "tickets@cricketbook.local"),
			FromName:     getEnv("EMAIL_FROM_NAME", "CricketBook Tickets"),
		},
		Tickets: TicketConfig{
			SeatMapSize: getEnvInt("SEAT_MAP_SIZE", 50),
			MaxSeats:    getEnvInt("MAX_SEATS_PER_BOOKING", 10),
			QRSize:      getEnvInt("QR_SIZE", 256),
			FontPath:    getEnv("TICKET_FONT_PATH", "assets/fonts/DejaVuSans.ttf"),
		},
	}
}

// NormalizeEmail trims and lowercases an address so role assignment and
// sign-in compare addresses the same way.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
