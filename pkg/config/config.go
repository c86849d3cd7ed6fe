// Package config loads the application configuration from the environment.
package config

import "time"

// Server holds the HTTP listener settings.
type Server struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// DB holds the Postgres connection settings. When URL is empty the service
// runs on in-memory stores, which is only useful for development and tests.
type DB struct {
	Url            string `envconfig:"URL"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`
}

// View holds read-projection settings.
type View struct {
	DisplayCurrency string `envconfig:"DISPLAY_CURRENCY" default:"USD"`
}

// Exchange holds the static rate-table settings. An empty path uses the
// embedded ECB snapshot.
type Exchange struct {
	RatesFile string `envconfig:"RATES_FILE"`
}

// RateLimit holds the HTTP rate limiter settings.
type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Kafka holds the committed-event publisher settings.
type Kafka struct {
	Enabled bool   `envconfig:"ENABLED" default:"false"`
	Brokers string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic   string `envconfig:"TOPIC" default:"bankaccount.events"`
}

// Redis holds the view-cache settings.
type Redis struct {
	Enabled   bool          `envconfig:"ENABLED" default:"false"`
	URL       string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" default:"bankaccount:"`
	TTL       time.Duration `envconfig:"TTL" default:"5m"`
}

// App is the root configuration.
type App struct {
	Env           string    `envconfig:"APP_ENV" default:"development"`
	SnowflakeNode int64     `envconfig:"SNOWFLAKE_NODE" default:"1"`
	Server        Server    `envconfig:"SERVER"`
	DB            DB        `envconfig:"DATABASE"`
	View          View      `envconfig:"VIEW"`
	Exchange      Exchange  `envconfig:"EXCHANGE"`
	RateLimit     RateLimit `envconfig:"RATE_LIMIT"`
	Kafka         Kafka     `envconfig:"KAFKA"`
	Redis         Redis     `envconfig:"REDIS"`
}
