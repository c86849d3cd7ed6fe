package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment, optionally preceded by a
// .env file. A missing .env file is not an error.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	if len(envFilePath) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found, using system environment variables")
		}
	} else {
		for _, path := range envFilePath {
			if err := godotenv.Load(path); err != nil {
				logger.Debug("Environment file not found", "path", path)
				continue
			}
			logger.Info("Environment loaded from file", "path", path)
			break
		}
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logger.Info("App config loaded",
		"env", cfg.Env,
		"server_host", cfg.Server.Host,
		"server_port", cfg.Server.Port,
		"db", maskValue(cfg.DB.Url),
		"display_currency", cfg.View.DisplayCurrency,
		"kafka_enabled", cfg.Kafka.Enabled,
		"redis_enabled", cfg.Redis.Enabled,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
	)
	return &cfg, nil
}

func maskValue(value string) string {
	if len(value) <= 6 {
		return "****"
	}
	return value[:2] + "****" + value[len(value)-4:]
}
