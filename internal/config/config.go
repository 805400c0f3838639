package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Upstream   `yaml:"upstream"`
	Telemetry  `yaml:"telemetry"`
	Delivery   `yaml:"delivery"`
	Admin      `yaml:"admin"`
	Collector  `yaml:"collector"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Port         int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`

	AllowedOrigins []string `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,https://futuretechjournal.com"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:""`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"ftj_ads"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedData        bool   `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"true"`
}

// Upstream holds the configuration of the CMS backing store the ad
// inventory is synced from.
type Upstream struct {
	BaseURL    string        `yaml:"base_url" env:"UPSTREAM_BASE_URL" env-default:"http://localhost:3000"`
	AuthToken  string        `yaml:"auth_token" env:"UPSTREAM_AUTH_TOKEN" env-default:""`
	Timeout    time.Duration `yaml:"timeout" env:"UPSTREAM_TIMEOUT" env-default:"10s"`
	MirrorFile string        `yaml:"mirror_file" env:"UPSTREAM_MIRROR_FILE" env-default:"data/ads-mirror.json"`
	SyncEvery  time.Duration `yaml:"sync_every" env:"UPSTREAM_SYNC_EVERY" env-default:"5m"`
}

// Telemetry holds event batcher configuration.
type Telemetry struct {
	Endpoint      string        `yaml:"endpoint" env:"TELEMETRY_ENDPOINT" env-default:""`
	BatchSize     int           `yaml:"batch_size" env:"TELEMETRY_BATCH_SIZE" env-default:"10"`
	FlushInterval time.Duration `yaml:"flush_interval" env:"TELEMETRY_FLUSH_INTERVAL" env-default:"30s"`
	Enabled       bool          `yaml:"enabled" env:"TELEMETRY_ENABLED" env-default:"true"`
	Debug         bool          `yaml:"debug" env:"TELEMETRY_DEBUG" env-default:"false"`
}

// Delivery holds placement decisioning configuration.
type Delivery struct {
	RotationInterval time.Duration `yaml:"rotation_interval" env:"ROTATION_INTERVAL" env-default:"10s"`
	SessionTTL       time.Duration `yaml:"session_ttl" env:"DELIVERY_SESSION_TTL" env-default:"30m"`
}

// Admin holds the admin credential and JWT settings for inventory mutations.
type Admin struct {
	Email         string        `yaml:"email" env:"ADMIN_EMAIL" env-default:"admin@futuretechjournal.com"`
	PasswordHash  string        `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH" env-default:""`
	JWTSecret     string        `yaml:"jwt_secret" env:"ADMIN_JWT_SECRET" env-default:""`
	TokenDuration time.Duration `yaml:"token_duration" env:"ADMIN_TOKEN_DURATION" env-default:"12h"`
}

// Collector holds the event collection pipeline configuration.
type Collector struct {
	Workers     int           `yaml:"workers" env:"COLLECTOR_WORKERS" env-default:"3"`
	BufferSize  int           `yaml:"buffer_size" env:"COLLECTOR_BUFFER_SIZE" env-default:"1000"`
	RegexesPath string        `yaml:"regexes_path" env:"COLLECTOR_REGEXES_PATH" env-default:"assets/regexes.yaml"`
	RetryDelay  time.Duration `yaml:"retry_delay" env:"COLLECTOR_RETRY_DELAY" env-default:"1s"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	// Check if config file path is specified
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	// Try to load config file
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		// If config file doesn't exist, use environment variables only
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
