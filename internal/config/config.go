package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	StaticDir      string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver         string
	URL            string
	Name           string
	Host           string
	Port           string
	User           string
	Password       string
	Schema         string
	MigrationsDir  string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Expiry int // in minutes
}

// Load reads configuration from the environment. Files passed in are loaded
// into the environment first (a missing ".env" is not an error).
func Load(files ...string) *Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("PORT", "2024")
	v.SetDefault("SERVER_PORT", v.GetString("PORT"))
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("STATIC_DIR", "public")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_NAME", "shop")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_CONNECT_TIMEOUT", 10)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_EXPIRY", 60)

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			StaticDir:      v.GetString("STATIC_DIR"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
			URL:            v.GetString("DB_URL"),
			Name:           v.GetString("DB_NAME"),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Schema:         v.GetString("DB_SCHEMA"),
			MigrationsDir:  v.GetString("MIGRATIONS_DIR"),
			ConnectTimeout: time.Duration(v.GetInt("DB_CONNECT_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Expiry: v.GetInt("JWT_EXPIRY"),
		},
	}
}

// Validate reports configuration that makes startup impossible.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %d", c.JWT.Expiry)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverMongo && c.Database.URL == "" {
		return fmt.Errorf("DB_URL must be set for the mongo driver")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// TokenTTL is the validity window of issued auth tokens.
func (j JWTConfig) TokenTTL() time.Duration {
	return time.Duration(j.Expiry) * time.Minute
}

// DSN returns the postgres connection string, preferring DB_URL when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	if d.Schema != "" {
		q.Set("search_path", d.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
