package config

import (
	"os"
	"strconv"
	"time"
)

type InsuranceServiceConfig struct {
	Port        string
	MetricsPort string
	Owner       string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	RabbitMQCfg RabbitMQConfig
	EngineCfg   EngineConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

// EngineConfig holds the initial values of the governable parameters.
// Governance mutates them at runtime; these are only the boot defaults.
type EngineConfig struct {
	MinPremium         float64
	PolicyDuration     time.Duration
	ProtocolFeePercent float64
}

func New() *InsuranceServiceConfig {
	return &InsuranceServiceConfig{
		Port:        getEnvOrDefault("PORT", "8086"),
		MetricsPort: getEnvOrDefault("METRICS_PORT", "9090"),
		Owner:       getEnvOrDefault("OWNER_ID", "operator"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "weathercover"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		EngineCfg: EngineConfig{
			MinPremium:         getEnvFloatOrDefault("MIN_PREMIUM", 0.01),
			PolicyDuration:     getEnvDurationOrDefault("POLICY_DURATION", 30*24*time.Hour),
			ProtocolFeePercent: getEnvFloatOrDefault("PROTOCOL_FEE_PERCENT", 10),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
