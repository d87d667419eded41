package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go-coin-wallet/pkg/ratelimit"
)

const rateLimitEnvPrefix = "RATE_LIMIT_"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit ratelimit.Rules
	Wallet    WalletConfig
	Payment   PaymentConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey      string
	ExpirationTime int // in hours
}

type WalletConfig struct {
	WelcomeCoinsLawyer int64
	WelcomeCoinsUser   int64
	RateCacheTTL       time.Duration
}

type PaymentConfig struct {
	GatewaySecret string
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "coin_wallet"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key"),
			ExpirationTime: getEnvInt("JWT_EXPIRY", 24),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RateLimit: loadRateLimitRules(os.Environ()),
		Wallet: WalletConfig{
			WelcomeCoinsLawyer: int64(getEnvInt("WELCOME_COINS_LAWYER", 50)),
			WelcomeCoinsUser:   int64(getEnvInt("WELCOME_COINS_USER", 10)),
			RateCacheTTL:       time.Duration(getEnvInt("RATE_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Payment: PaymentConfig{
			GatewaySecret: getEnv("PAYMENT_GATEWAY_SECRET", ""),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host + " port=" + c.Port + " user=" + c.User + " password=" + c.Password +
		" dbname=" + c.DBName + " sslmode=" + c.SSLMode
}

// loadRateLimitRules reads RATE_LIMIT_DEFAULT and RATE_LIMIT_<NAME> entries such as
// RATE_LIMIT_LOGIN=5/m. Malformed values are skipped.
func loadRateLimitRules(environ []string) ratelimit.Rules {
	rules := ratelimit.Rules{
		Default: ratelimit.DefaultRule,
		Named:   make(map[string]ratelimit.Rule),
	}

	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, rateLimitEnvPrefix) {
			continue
		}
		rule, err := ratelimit.ParseRule(value)
		if err != nil {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, rateLimitEnvPrefix))
		if name == "default" {
			rules.Default = rule
			continue
		}
		rules.Named[name] = rule
	}

	return rules
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
