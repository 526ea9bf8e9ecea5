package config

import (
	"errors"
	"fmt"
	"os"

	"eclat/internal/models"
	"eclat/internal/schedule"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Auth       AuthConfig       `yaml:"auth"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Booking    BookingConfig    `yaml:"booking"`
	Backup     BackupConfig     `yaml:"backup"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port              int `yaml:"port"`
	ReadHeaderTimeout int `yaml:"read_header_timeout"` // seconds
	WriteTimeout      int `yaml:"write_timeout"`       // seconds
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type AuthConfig struct {
	Enabled      bool            `yaml:"enabled"`
	HeaderAPIKey string          `yaml:"header_api_key"`
	APIKeys      []APIClientKey  `yaml:"api_keys"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type SMTPConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
	AdminEmail string `yaml:"admin_email"`
}

type BookingConfig struct {
	SlotGrid       []string         `yaml:"slot_grid"`
	Services       []models.Service `yaml:"services"`
	MaxBookingDays int              `yaml:"max_booking_days"`
	ReminderTime   string           `yaml:"reminder_time"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Interval      string `yaml:"interval"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment variables referenced from the YAML file may
	// come from anywhere.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate rejects configurations the service cannot safely start with.
// Grid and catalog problems are fatal here, never per-request.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if _, err := schedule.ParseGrid(c.Booking.SlotGrid); err != nil {
		return fmt.Errorf("booking.slot_grid: %w", err)
	}
	if _, err := schedule.NewCatalog(c.Booking.Services); err != nil {
		return fmt.Errorf("booking.services: %w", err)
	}
	if len(c.Booking.Services) == 0 {
		return errors.New("booking.services is empty")
	}

	if c.Booking.ReminderTime != "" {
		if _, err := schedule.ParseClock(c.Booking.ReminderTime); err != nil {
			return fmt.Errorf("booking.reminder_time: %w", err)
		}
	}

	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return errors.New("auth enabled but no api_keys configured")
	}

	if c.SMTP.Enabled {
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return errors.New("smtp enabled but host/from not set")
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Auth.HeaderAPIKey == "" {
		c.Auth.HeaderAPIKey = "x-api-key"
	}
	if len(c.Booking.SlotGrid) == 0 {
		c.Booking.SlotGrid = []string{"09:00", "11:00", "14:00", "16:00", "18:00"}
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if c.Booking.ReminderTime == "" {
		c.Booking.ReminderTime = fmt.Sprintf("%02d:00", models.ReminderHour)
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

// Schedule builds the availability engine from the validated booking section.
func (c *Config) Schedule() (*schedule.Engine, error) {
	grid, err := schedule.ParseGrid(c.Booking.SlotGrid)
	if err != nil {
		return nil, err
	}
	catalog, err := schedule.NewCatalog(c.Booking.Services)
	if err != nil {
		return nil, err
	}
	return schedule.NewEngine(grid, catalog), nil
}
