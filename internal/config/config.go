package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN        string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL        string `env:"RABBITMQ_URL"`
	RedisURL           string `env:"REDIS_URL,required=true"`
	DispatchWebhookURL string `env:"DISPATCH_WEBHOOK_URL,required=true"`
	BorrowerAPIURL     string `env:"BORROWER_API_URL,required=true"`
	DocumentStoreDir   string `env:"DOCUMENT_STORE_DIR,default=/var/lib/collections-engine/documents"`

	DispatchRateLimitPerSec int `env:"DISPATCH_RATE_LIMIT_PER_SEC,default=50"`
	SuppressionWindowDays   int `env:"SUPPRESSION_WINDOW_DAYS,default=7"`
	AllocatorMaxAttempts    int `env:"ALLOCATOR_MAX_ATTEMPTS,default=3"`
	NoticeExpiryDays        int `env:"NOTICE_EXPIRY_DAYS,default=30"`
	ExpiryScanIntervalSec   int `env:"EXPIRY_SCAN_INTERVAL_SEC,default=60"`

	APIPort  int    `env:"API_PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
