// Package config loads the storefront configuration.
//
// Values are resolved from, in increasing precedence: built-in defaults, an
// optional configuration file, STOREFRONT_* environment variables and explicit
// overrides such as command-line flags. The DB_HOST, DB_NAME, DB_USER and
// DB_PASS variables of earlier deployments are still honoured and select MySQL.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	"github.com/nlstn/go-storefront/internal/repository"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STOREFRONT"

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is the complete service configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Log           LogConfig           `mapstructure:"log"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the connection pool.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig toggles the optional instrumentation.
type ObservabilityConfig struct {
	ServiceName       string `mapstructure:"service_name"`
	ServerTiming      bool   `mapstructure:"server_timing"`
	DetailedDBTracing bool   `mapstructure:"detailed_db_tracing"`
}

// DefaultAllowedOrigins are the storefront front-ends served in production
// and the local development server.
var DefaultAllowedOrigins = []string{
	"https://velvety-pastelito-3b4748.netlify.app",
	"https://osszetett-alkalmazas.netlify.app",
	"http://localhost:5173",
	"https://localhost:5173",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", repository.DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("cors.allowed_origins", DefaultAllowedOrigins)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatJSON)

	v.SetDefault("observability.service_name", "storefront")
	v.SetDefault("observability.server_timing", false)
	v.SetDefault("observability.detailed_db_tracing", false)
}

// Load resolves the configuration. path may be empty. Empty override values
// are ignored so unset flags do not mask other sources.
func Load(path string, overrides map[string]string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyLegacyDatabaseEnv(v)

	for key, value := range overrides {
		if value != "" {
			v.Set(key, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyLegacyDatabaseEnv builds a MySQL DSN from DB_HOST, DB_NAME, DB_USER
// and DB_PASS unless a DSN was configured explicitly.
func applyLegacyDatabaseEnv(v *viper.Viper) {
	host := os.Getenv("DB_HOST")
	if host == "" || v.GetString("database.dsn") != "" {
		return
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = host
	mc.DBName = os.Getenv("DB_NAME")
	mc.User = os.Getenv("DB_USER")
	mc.Passwd = os.Getenv("DB_PASS")
	mc.ParseTime = true
	mc.Timeout = 5 * time.Second
	mc.Params = map[string]string{"charset": "utf8mb4"}

	v.Set("database.driver", repository.DriverMySQL)
	v.Set("database.dsn", mc.FormatDSN())
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case repository.DriverSQLite, repository.DriverMySQL, repository.DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Database.Driver != repository.DriverSQLite && c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn is required for %s", c.Database.Driver)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is required")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("config: unsupported log.format %q", c.Log.Format)
	}
	return nil
}

// RepositoryOptions translates the database section for repository.Open.
func (c DatabaseConfig) RepositoryOptions() repository.Options {
	return repository.Options{
		Driver:          c.Driver,
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		AutoMigrate:     c.AutoMigrate,
	}
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return level, fmt.Errorf("config: invalid log.level %q: %w", c.Level, err)
	}
	return level, nil
}

// NewLogger builds a logger writing to w in the configured format and level.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}
