package config

import (
	"github.com/KeremAR/notification-service/utils"
	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           string         `env:"LISTEN_ADDR" envDefault:":5004"`
	Timeout        uint64         `env:"TIMEOUT" envDefault:"10"`
	ReadBufferSize int            `env:"READ_BUFFER_SIZE" envDefault:"4096"`
	BodyLimit      int            `env:"BODY_LIMIT" envDefault:"1048576"`
	AppName        string         `env:"APP_NAME" envDefault:"Notification"`
	IsProduction   bool           `env:"PRODUCTION"`
	Dsn            string         `env:"DSN"`
	RedisUrl       string         `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	JwtPublicKey   string         `env:"JWT_PUBLIC_KEY"`
	EmailConfig    EmailConfig    `envPrefix:"EMAIL_"`
	ConsumerConfig ConsumerConfig `envPrefix:"CONSUMER_"`
}

type EmailConfig struct {
	From             string `env:"FROM"`
	SmtpHost         string `env:"SMTP_HOST"`
	SmtpPort         int    `env:"SMTP_PORT" envDefault:"587"`
	SmtpUser         string `env:"SMTP_USER"`
	SmtpPassword     string `env:"SMTP_PASSWORD"`
	SmtpSkipInsecure bool   `env:"SMTP_SKIP_INSECURE" envDefault:"false"`
}

type ConsumerConfig struct {
	Queue       string `env:"QUEUE" envDefault:"notifications"`
	Concurrency int    `env:"CONCURRENCY" envDefault:"10"`
}

func Parse() (*Config, error) {
	cfg := Config{
		IsProduction: utils.ParseFlags(),
	}

	if err := env.Parse(&cfg); err != nil {
		log.Panic().Err(err).Msg("Failed to parse env config")
	}

	return &cfg, nil
}
