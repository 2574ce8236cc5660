package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string         `env:"ENVIRONMENT" envDefault:"development"`
	Server      ServerConfig   `envPrefix:"SERVER_"`
	Database    DatabaseConfig `envPrefix:"DB_"`
	Redis       RedisConfig    `envPrefix:"REDIS_"`
	Kafka       KafkaConfig    `envPrefix:"KAFKA_"`
	JWT         JWTConfig      `envPrefix:"JWT_"`
	SMTP        SMTPConfig     `envPrefix:"SMTP_"`
	Leave       LeaveConfig    `envPrefix:"LEAVE_"`
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RateLimit       float64       `env:"RATE_LIMIT" envDefault:"5"`
	RateBurst       int           `env:"RATE_BURST" envDefault:"10"`
}

type DatabaseConfig struct {
	Host       string `env:"HOST" envDefault:"localhost"`
	User       string `env:"USER" envDefault:"postgres"`
	Password   string `env:"PASSWORD"`
	Name       string `env:"NAME" envDefault:"go_leave"`
	Port       string `env:"PORT" envDefault:"5432"`
	SSLMode    string `env:"SSLMODE" envDefault:"disable"`
	MaxRetries int    `env:"MAX_RETRIES" envDefault:"5"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	OrgTTL   time.Duration `env:"ORG_TTL" envDefault:"10m"`
	IdempTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

type KafkaConfig struct {
	Broker       string        `env:"BROKER" envDefault:"localhost:9092"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"3s"`
	GroupID      string        `env:"GROUP_ID" envDefault:"go-leave"`
}

type JWTConfig struct {
	Secret string `env:"SECRET"`
}

type SMTPConfig struct {
	Host        string        `env:"HOST" envDefault:"localhost"`
	Port        int           `env:"PORT" envDefault:"465"`
	Username    string        `env:"USERNAME"`
	Password    string        `env:"PASSWORD"`
	From        string        `env:"FROM" envDefault:"leave@localhost"`
	DialTimeout time.Duration `env:"DIAL_TIMEOUT" envDefault:"10s"`
}

type LeaveConfig struct {
	TechnicalRecipient string `env:"TECHNICAL_RECIPIENT" envDefault:"admin@localhost"`
	ApplicationURL     string `env:"APPLICATION_URL" envDefault:"http://localhost:3000"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
