package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers accepted in DB_DRIVER.
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver         string
	Host           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	SQLitePath     string
	MigrationsPath string
	Port           int
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	OutcomeTopic  string
	GroupID       string
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
	TLS           bool
}

// Enabled reports whether a broker list is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type ModelConfig struct {
	Endpoint     string
	Version      string
	TrainingDate string
	Timeout      time.Duration
}

// CacheConfig configures the Redis score cache.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Enabled reports whether a Redis address is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

type AuthConfig struct {
	Secret        string
	PublicKeyPEM  string
	PublicKeyFile string
	Issuer        string
}

// Enabled reports whether any JWT verification key is configured.
func (a AuthConfig) Enabled() bool {
	return a.Secret != "" || a.PublicKeyPEM != "" || a.PublicKeyFile != ""
}

type GRPCConfig struct {
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

type Config struct {
	ServiceName        string
	LogLevel           string
	LogFormat          string
	TierPolicyFile     string
	OTLPEndpoint       string
	CORSAllowedOrigins []string
	DB                 DatabaseConfig
	Kafka              KafkaConfig
	Model              ModelConfig
	Cache              CacheConfig
	Auth               AuthConfig
	GRPC               GRPCConfig
	BaseInterestRate   float64
	HTTPPort           int
	GRPCPort           int
	RateLimitRPS       int
	StrictValidation   bool
}

// Load reads configuration from the environment. A .env file in the working
// directory, if present, is loaded first without overriding variables that
// are already set.
func Load() Config {
	_ = godotenv.Load() //nolint:errcheck // the file is optional

	return Config{
		ServiceName:        getEnv("SERVICE_NAME", "loanrisk"),
		HTTPPort:           getEnvInt("HTTP_PORT", getEnvInt("PORT", 8000)),
		GRPCPort:           getEnvInt("GRPC_PORT", 9000),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		TierPolicyFile:     getEnv("TIER_POLICY_FILE", ""),
		StrictValidation:   getEnvBool("STRICT_INPUT_VALIDATION", false),
		BaseInterestRate:   getEnvFloat("BASE_INTEREST_RATE", 5.0),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvInt("RATE_LIMIT_RPS", 0),
		DB: DatabaseConfig{
			Driver:         strings.ToLower(getEnv("DB_DRIVER", DriverNone)),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "ml_user"),
			Password:       getEnv("DB_PASSWORD", ""),
			Name:           getEnv("DB_NAME", "ml_monitoring"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			SQLitePath:     getEnv("SQLITE_PATH", "loanrisk.db"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "file://internal/infrastructure/persistence/postgres/migrations"),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", nil),
			Topic:         getEnv("KAFKA_TOPIC", "loan-risk.predictions"),
			OutcomeTopic:  getEnv("KAFKA_OUTCOME_TOPIC", ""),
			GroupID:       getEnv("KAFKA_GROUP_ID", "loanrisk"),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			TTL:           getEnvDuration("SCORE_CACHE_TTL", time.Hour),
		},
		Model: ModelConfig{
			Endpoint:     getEnv("MODEL_ENDPOINT", ""),
			Timeout:      getEnvDuration("MODEL_TIMEOUT", 5*time.Second),
			Version:      getEnv("MODEL_VERSION", "1.1"),
			TrainingDate: getEnv("MODEL_TRAINING_DATE", "2025-12-19"),
		},
		Auth: AuthConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			PublicKeyPEM:  getEnv("JWT_PUBLIC_KEY", ""),
			PublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			Issuer:        getEnv("JWT_ISSUER", ""),
		},
		GRPC: GRPCConfig{
			TLSCertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
			TLSKeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),
			Reflection:  getEnvBool("GRPC_REFLECTION", false),
		},
	}
}

// Validate reports inconsistent settings.
func (c Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverNone, DriverSQLite:
	case DriverPostgres:
		if c.DB.Password == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver))
	}
	if c.DB.Driver == DriverSQLite && c.DB.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite"))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort))
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort))
	}
	if c.Model.Timeout <= 0 {
		errs = append(errs, errors.New("MODEL_TIMEOUT must be positive"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
	}
	switch c.Kafka.SASLMechanism {
	case "", "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
	default:
		errs = append(errs, fmt.Errorf("unsupported KAFKA_SASL_MECHANISM %q", c.Kafka.SASLMechanism))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("SCORE_CACHE_TTL must not be negative"))
	}
	if (c.GRPC.TLSCertFile == "") != (c.GRPC.TLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}

	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
