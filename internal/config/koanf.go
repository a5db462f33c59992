package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eventsapi/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3001,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverMongo,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "events",
		},
		MySQL: MySQLConfig{
			DSN: "user:password@tcp(localhost:3306)/events?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		Redis: RedisConfig{
			CacheTTL: 5 * time.Minute,
		},
		JWT: JWTConfig{
			Secret: "change-me",
			Expiry: 7 * 24 * time.Hour,
		},
		Upload: UploadConfig{
			Dir:     "uploads",
			MaxSize: 5 << 20,
			Storage: StorageLocal,
		},
		Cloudinary: CloudinaryConfig{
			Folder:  "events",
			Timeout: 30 * time.Second,
		},
		References: ReferencesConfig{
			OnDelete: OnDeleteOrphan,
		},
		RateLimit: RateLimitConfig{
			AuthRequests: 20,
			AuthWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds Config from defaults, an optional YAML file and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var envMappings = map[string]string{
	"port":             "server.port",
	"api_base_url":     "server.base_url",
	"shutdown_timeout": "server.shutdown_timeout",
	"swagger_host":     "server.swagger_host",

	"db_driver":            "database.driver",
	"mongodb_uri":          "mongo.uri",
	"mongodb_database":     "mongo.database",
	"mongodb_transactions": "mongo.transactions",
	"mysql_dsn":            "mysql.dsn",

	"redis_addr":       "redis.addr",
	"redis_password":   "redis.password",
	"redis_db":         "redis.db",
	"cache_ttl":        "redis.cache_ttl",
	"jwt_secret":       "jwt.secret",
	"jwt_expiry":       "jwt.expiry",
	"revoke_on_logout": "jwt.revoke_on_logout",

	"upload_dir":      "upload.dir",
	"upload_max_size": "upload.max_size",
	"upload_storage":  "upload.storage",

	"cloudinary_url":        "cloudinary.url",
	"cloudinary_cloud_name": "cloudinary.cloud_name",
	"cloudinary_api_key":    "cloudinary.api_key",
	"cloudinary_api_secret": "cloudinary.api_secret",
	"cloudinary_folder":     "cloudinary.folder",
	"cloudinary_timeout":    "cloudinary.timeout",

	"reference_delete_policy": "references.on_delete",
	"auth_rate_limit":         "ratelimit.auth_requests",
	"auth_rate_window":        "ratelimit.auth_window",

	"log_level":  "log.level",
	"log_format": "log.format",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unknown variables are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
