package config

import (
	"fmt"
	"time"
)

// Config holds application level configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Mongo      MongoConfig      `koanf:"mongo"`
	MySQL      MySQLConfig      `koanf:"mysql"`
	Redis      RedisConfig      `koanf:"redis"`
	JWT        JWTConfig        `koanf:"jwt"`
	Upload     UploadConfig     `koanf:"upload"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	References ReferencesConfig `koanf:"references"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
	Logging    LoggingConfig    `koanf:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	BaseURL         string        `koanf:"base_url"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	SwaggerHost     string        `koanf:"swagger_host"`
}

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	Driver string `koanf:"driver"`
}

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI          string `koanf:"uri"`
	Database     string `koanf:"database"`
	Transactions bool   `koanf:"transactions"`
}

// MySQLConfig configures the MySQL backend.
type MySQLConfig struct {
	DSN string `koanf:"dsn"`
}

// RedisConfig configures the optional cache. An empty address disables it.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// JWTConfig controls token issuance.
type JWTConfig struct {
	Secret         string        `koanf:"secret"`
	Expiry         time.Duration `koanf:"expiry"`
	RevokeOnLogout bool          `koanf:"revoke_on_logout"`
}

// Upload storage backends.
const (
	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
)

// UploadConfig controls event image uploads.
type UploadConfig struct {
	Dir     string `koanf:"dir"`
	MaxSize int64  `koanf:"max_size"`
	Storage string `koanf:"storage"`
}

// CloudinaryConfig holds cloud image host credentials.
type CloudinaryConfig struct {
	URL       string        `koanf:"url"`
	CloudName string        `koanf:"cloud_name"`
	APIKey    string        `koanf:"api_key"`
	APISecret string        `koanf:"api_secret"`
	Folder    string        `koanf:"folder"`
	Timeout   time.Duration `koanf:"timeout"`
}

// MissingKeys lists the settings that must be provided before the image host
// can be used. CLOUDINARY_URL alone is sufficient.
func (c CloudinaryConfig) MissingKeys() []string {
	if c.URL != "" {
		return nil
	}
	var missing []string
	if c.CloudName == "" {
		missing = append(missing, "CLOUDINARY_URL or CLOUDINARY_CLOUD_NAME")
	}
	if c.APIKey == "" {
		missing = append(missing, "CLOUDINARY_API_KEY")
	}
	if c.APISecret == "" {
		missing = append(missing, "CLOUDINARY_API_SECRET")
	}
	return missing
}

// Reference policies applied when deleting a category or location.
const (
	OnDeleteOrphan   = "orphan"
	OnDeleteRestrict = "restrict"
	OnDeleteCascade  = "cascade"
)

// ReferencesConfig controls what happens to events whose category or location is deleted.
type ReferencesConfig struct {
	OnDelete string `koanf:"on_delete"`
}

// RateLimitConfig limits login and registration attempts per client IP.
type RateLimitConfig struct {
	AuthRequests int           `koanf:"auth_requests"`
	AuthWindow   time.Duration `koanf:"auth_window"`
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Validate checks enumerations and required settings.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when DB_DRIVER=%s", DriverMongo)
		}
	case DriverMySQL:
		if c.MySQL.DSN == "" {
			return fmt.Errorf("MYSQL_DSN is required when DB_DRIVER=%s", DriverMySQL)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Upload.Storage {
	case StorageLocal, StorageCloudinary:
	default:
		return fmt.Errorf("unknown upload storage %q", c.Upload.Storage)
	}

	switch c.References.OnDelete {
	case OnDeleteOrphan, OnDeleteRestrict, OnDeleteCascade:
	default:
		return fmt.Errorf("unknown reference delete policy %q", c.References.OnDelete)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
