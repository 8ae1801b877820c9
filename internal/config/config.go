package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads .env (if present) and binds environment variables for every
// configurable knob, with working local defaults.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on environment: %v", err)
	}

	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")
	viper.BindEnv("database.migrations", "DATABASE_MIGRATIONS")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")

	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
}

// QRConfig controls contribution QR code issuance.
type QRConfig struct {
	CodeTimeout      time.Duration
	MaxActivePerUser int
}

func LoadQRConfig() *QRConfig {
	viper.BindEnv("qr.code_timeout", "QR_CODE_TIMEOUT")
	viper.BindEnv("qr.max_active_per_user", "QR_MAX_ACTIVE_PER_USER")
	viper.SetDefault("qr.code_timeout", 5*time.Minute)
	viper.SetDefault("qr.max_active_per_user", 5)

	return &QRConfig{
		CodeTimeout:      viper.GetDuration("qr.code_timeout"),
		MaxActivePerUser: viper.GetInt("qr.max_active_per_user"),
	}
}
