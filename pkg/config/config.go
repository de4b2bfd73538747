package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers understood by the store package
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Store     StoreConfig
	Server    ServerConfig
	Board     BoardConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// StoreConfig holds persistent store configuration
type StoreConfig struct {
	Driver     string
	URL        string
	KeyPrefix  string
	QuotaBytes int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// BoardConfig holds board behaviour defaults
type BoardConfig struct {
	Room            string
	DefaultNickname string
	DefaultCategory string
	DefaultLifetime time.Duration
	LegacyLifetime  time.Duration
	MaxVisible      int
	NotificationCap int
	ToastCap        int
	DriftInterval   time.Duration
	CanvasWidth     int
	CanvasHeight    int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	ServiceName       string
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// default locations.
func LoadFile(path string) (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("BOARD")
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.yurufuwa")
		viper.AddConfigPath("/etc/yurufuwa")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Missing file is fine, env and defaults cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Store: StoreConfig{
			Driver:     strings.ToLower(getString("store_driver", DriverSQLite)),
			URL:        getString("store_url", "yurufuwa.db"),
			KeyPrefix:  getString("store_key_prefix", "yurufuwa_"),
			QuotaBytes: getInt("store_quota_bytes", 0),
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Board: BoardConfig{
			Room:            getString("board_room", "default"),
			DefaultNickname: getString("board_default_nickname", "Anonymous"),
			DefaultCategory: getString("board_default_category", "learn"),
			DefaultLifetime: getDuration("board_default_lifetime", 30*time.Second),
			LegacyLifetime:  getDuration("board_legacy_lifetime", 15*time.Second),
			MaxVisible:      getInt("board_max_visible", 20),
			NotificationCap: getInt("board_notification_cap", 100),
			ToastCap:        getInt("board_toast_cap", 50),
			DriftInterval:   getDuration("board_drift_interval", 2*time.Second),
			CanvasWidth:     getInt("board_canvas_width", 960),
			CanvasHeight:    getInt("board_canvas_height", 640),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", "http://localhost:14268/api/traces"),
			PrometheusEnabled: getBool("prometheus_enabled", true),
			ServiceName:       getString("service_name", "yurufuwa-board"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("store_driver", DriverSQLite)
	viper.SetDefault("store_url", "yurufuwa.db")
	viper.SetDefault("store_key_prefix", "yurufuwa_")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("board_room", "default")
	viper.SetDefault("board_default_lifetime", 30*time.Second)
	viper.SetDefault("board_legacy_lifetime", 15*time.Second)
	viper.SetDefault("board_max_visible", 20)
	viper.SetDefault("board_notification_cap", 100)
	viper.SetDefault("board_drift_interval", 2*time.Second)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("prometheus_enabled", true)
	viper.SetDefault("service_name", "yurufuwa-board")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	if val := os.Getenv(envKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv(envKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv(envKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	if val := os.Getenv(envKey(key)); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}

// envKey maps a config key to its BOARD_ environment variable
func envKey(key string) string {
	return "BOARD_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverRedis, DriverPostgres:
		if c.Store.URL == "" {
			return fmt.Errorf("store_url is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store_driver %q", c.Store.Driver)
	}
	if c.Store.QuotaBytes < 0 {
		return fmt.Errorf("store_quota_bytes must not be negative")
	}
	if c.Board.Room == "" {
		return fmt.Errorf("board_room is required")
	}
	if c.Board.DefaultLifetime <= 0 || c.Board.LegacyLifetime <= 0 {
		return fmt.Errorf("board lifetimes must be positive")
	}
	if c.Board.MaxVisible <= 0 || c.Board.MaxVisible > 500 {
		return fmt.Errorf("board_max_visible must be between 1 and 500")
	}
	if c.Board.NotificationCap <= 0 || c.Board.NotificationCap > 1000 {
		return fmt.Errorf("board_notification_cap must be between 1 and 1000")
	}
	if c.Board.ToastCap <= 0 {
		return fmt.Errorf("board_toast_cap must be positive")
	}
	if c.Board.DriftInterval <= 0 {
		return fmt.Errorf("board_drift_interval must be positive")
	}
	if c.Board.CanvasWidth <= 0 || c.Board.CanvasHeight <= 0 {
		return fmt.Errorf("board canvas size must be positive")
	}
	return nil
}

// Defaults returns a valid configuration without consulting viper. Tests and
// embedded callers start from it.
func Defaults() *Config {
	return &Config{
		Store:  StoreConfig{Driver: DriverMemory, KeyPrefix: "yurufuwa_"},
		Server: ServerConfig{Port: 8080, Host: "0.0.0.0"},
		Board: BoardConfig{
			Room:            "default",
			DefaultNickname: "Anonymous",
			DefaultCategory: "learn",
			DefaultLifetime: 30 * time.Second,
			LegacyLifetime:  15 * time.Second,
			MaxVisible:      20,
			NotificationCap: 100,
			ToastCap:        50,
			DriftInterval:   2 * time.Second,
			CanvasWidth:     960,
			CanvasHeight:    640,
		},
		Logging:   LoggingConfig{Level: "INFO", Format: "json"},
		Telemetry: TelemetryConfig{ServiceName: "yurufuwa-board", PrometheusEnabled: true},
	}
}
