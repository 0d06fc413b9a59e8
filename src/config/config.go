package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"trading-dashboard/src/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// envOverrides lists the environment variables that win over the YAML file.
type envOverrides struct {
	APIKey       string `envconfig:"APCA_API_KEY_ID"`
	APISecret    string `envconfig:"APCA_API_SECRET_KEY"`
	BaseURL      string `envconfig:"APCA_API_BASE_URL"`
	BackendURL   string `envconfig:"BACKEND_URL"`
	WebsocketURL string `envconfig:"WEBSOCKET_URL"`
	CorsOrigins  string `envconfig:"CORS_ORIGINS"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	Interval     int    `envconfig:"INTERVAL"`
	DisableGrok  string `envconfig:"DISABLE_GROK"`
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file, applies environment
// overrides (a .env file next to the process is loaded first) and validates.
func NewConfig(configPath string) (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	modelConfig := defaults()
	if err := yaml.Unmarshal(data, modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: modelConfig}

	// 3. Environment
	if err := config.applyEnv(); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func defaults() *models.MConfig {
	return &models.MConfig{
		Name:        "trading-dashboard",
		Host:        "0.0.0.0",
		Port:        8000,
		LogLevel:    "INFO",
		GrpcHost:    "127.0.0.1",
		GrpcPort:    50051,
		CorsOrigins: []string{"http://localhost:5173"},
		Storage: models.MStorageConfig{
			DBType:        "sqlite",
			DBPath:        "dashboard.db",
			RetentionDays: 30,
		},
		Broker: models.MBrokerConfig{
			Paper:           true,
			Feed:            "iex",
			Symbol:          "TSLA",
			HistoryDays:     10,
			RequestTimeout:  10,
			MaxRetries:      3,
			RefreshSchedule: "@every 1m",
		},
		Advisor: models.MAdvisorConfig{
			Model:           "grok-3",
			IntervalMinutes: 5,
		},
		Dashboard: models.MDashboardConfig{
			BackendURL:   "http://localhost:8000",
			WebsocketURL: "ws://localhost:8000",
			OutputDir:    "charts",
			PollSchedule: "@every 60s",
			Renderer:     "both",
			ChartWidth:   1024,
			ChartHeight:  480,

			PreferencesPath: "preferences.db",
		},
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}

	if env.APIKey != "" {
		c.Broker.APIKey = env.APIKey
	}
	if env.APISecret != "" {
		c.Broker.APISecret = env.APISecret
	}
	if env.BaseURL != "" {
		c.Broker.BaseURL = env.BaseURL
	}
	if env.BackendURL != "" {
		c.Dashboard.BackendURL = env.BackendURL
	}
	if env.WebsocketURL != "" {
		c.Dashboard.WebsocketURL = env.WebsocketURL
	}
	if env.CorsOrigins != "" {
		var origins []string
		for _, o := range strings.Split(env.CorsOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CorsOrigins = origins
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.Interval != 0 {
		c.Advisor.IntervalMinutes = env.Interval
	}
	if env.DisableGrok != "" {
		c.Advisor.Disabled = strings.EqualFold(env.DisableGrok, "true")
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	case "memory":
	case "":
		return fmt.Errorf("database type cannot be empty")
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Broker
	if c.Broker.Symbol == "" {
		return fmt.Errorf("broker symbol cannot be empty")
	}
	if c.Broker.HistoryDays <= 0 {
		return fmt.Errorf("history days must be greater than 0")
	}
	if c.Broker.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Broker.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Advisor
	if c.Advisor.IntervalMinutes <= 0 {
		return fmt.Errorf("advisor interval must be a positive integer")
	}

	// Dashboard
	if c.Dashboard.BackendURL == "" {
		return fmt.Errorf("dashboard backend url cannot be empty")
	}
	if c.Dashboard.WebsocketURL == "" {
		return fmt.Errorf("dashboard websocket url cannot be empty")
	}
	switch c.Dashboard.Renderer {
	case "png", "json", "both":
	default:
		return fmt.Errorf("unsupported renderer: %s", c.Dashboard.Renderer)
	}
	if c.Dashboard.ChartWidth <= 0 || c.Dashboard.ChartHeight <= 0 {
		return fmt.Errorf("chart size must be positive")
	}
	if c.Dashboard.PreferencesPath == "" {
		return fmt.Errorf("preferences path cannot be empty")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid dashboard timezone: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Location resolves the dashboard timezone; empty means the host's zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Dashboard.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Dashboard.Timezone)
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
