package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Quota    QuotaConfig
	Queue    QueueConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type AuthConfig struct {
	JWTSecret string
}

// QuotaConfig controls the free-plate limit for needy users.
// The calendar day is evaluated in Location.
type QuotaConfig struct {
	DailyLimit int
	Location   *time.Location
}

// QueueConfig selects the reservation event queue. Backend is "redis" or "memory".
type QueueConfig struct {
	Backend          string
	ConsumerID       string
	ClaimMinIdleTime time.Duration
	MaxRetryCount    int
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Auth:     GetAuthConfig(),
		Quota:    GetQuotaConfig(),
		Queue:    GetQueueConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnv("TEST_DB_PORT", "5433"),
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
		MaxConns: 25,
		MinConns: 1,
	}

	testRedisConfig := RedisConfig{
		Host:     getEnv("TEST_REDIS_HOST", "localhost"),
		Port:     getEnv("TEST_REDIS_PORT", "6380"),
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:   ServerConfig{Port: "0", GinMode: "test"},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Auth:     AuthConfig{JWTSecret: "test-secret"},
		Quota:    QuotaConfig{DailyLimit: 2, Location: time.UTC},
		Queue:    QueueConfig{Backend: "memory", ConsumerID: "test", ClaimMinIdleTime: time.Second, MaxRetryCount: 3},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
	}
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		PoolSize: getEnvInt("REDIS_POOL_SIZE", 20),
	}
}

func GetAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-key-change-this"),
	}
}

func GetQuotaConfig() QuotaConfig {
	loc, err := time.LoadLocation(getEnv("QUOTA_TIMEZONE", "UTC"))
	if err != nil {
		panic(err)
	}

	return QuotaConfig{
		DailyLimit: getEnvInt("QUOTA_DAILY_LIMIT", 2),
		Location:   loc,
	}
}

func GetQueueConfig() QueueConfig {
	idle, err := time.ParseDuration(getEnv("QUEUE_CLAIM_MIN_IDLE", "5s"))
	if err != nil {
		panic(err)
	}

	return QueueConfig{
		Backend:          getEnv("QUEUE_BACKEND", "redis"),
		ConsumerID:       getEnv("QUEUE_CONSUMER_ID", ""),
		ClaimMinIdleTime: idle,
		MaxRetryCount:    getEnvInt("QUEUE_MAX_RETRY", 5),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}
