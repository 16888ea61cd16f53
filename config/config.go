package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"AUTH_APP_NAME" envDefault:"ms-tma-auth"`
	AppEnv       string `env:"AUTH_APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"AUTH_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string `env:"AUTH_HTTP_PORT" envDefault:"8081"`
	HTTPBasePath string `env:"AUTH_HTTP_BASE_PATH" envDefault:"/api/v1"`

	DBHost     string `env:"AUTH_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"AUTH_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"AUTH_DB_USER" envDefault:"app"`
	DBPassword string `env:"AUTH_DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"AUTH_DB_NAME" envDefault:"authdb"`
	DBSSLMode  string `env:"AUTH_DB_SSLMODE" envDefault:"disable"`

	// Telegram Mini-App payloads are verified against the bot token.
	BotToken       string        `env:"TELEGRAM_BOT_TOKEN,required"`
	InitDataMaxAge time.Duration `env:"AUTH_INITDATA_MAX_AGE" envDefault:"24h"`

	// Identity provider (GoTrue-compatible admin + token API).
	ProviderURL        string `env:"AUTH_PROVIDER_URL,required"`
	ProviderServiceKey string `env:"AUTH_PROVIDER_SERVICE_KEY,required"`
	ProviderJWTSecret  string `env:"AUTH_PROVIDER_JWT_SECRET,required"`
	ProviderAudience   string `env:"AUTH_PROVIDER_AUDIENCE" envDefault:"authenticated"`

	NATSURL             string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSReferralSubject string `env:"NATS_SUBJECT_REFERRAL_VALIDATE" envDefault:"referral.validate-code"`
	NATSVerifySubject   string `env:"NATS_SUBJECT_VERIFY_SESSION" envDefault:"auth.verify-session"`

	RateLimitMax    int           `env:"AUTH_RATE_LIMIT_MAX" envDefault:"15"`
	RateLimitWindow time.Duration `env:"AUTH_RATE_LIMIT_WINDOW" envDefault:"60s"`

	SuspiciousThreshold int           `env:"AUTH_SUSPICIOUS_THRESHOLD" envDefault:"10"`
	SuspiciousWindow    time.Duration `env:"AUTH_SUSPICIOUS_WINDOW" envDefault:"15m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
