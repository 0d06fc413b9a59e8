package models

// MConfig Structure
type MConfig struct {
	Name        string           `yaml:"name"`
	Host        string           `yaml:"host"`
	Port        int              `yaml:"port"`
	LogLevel    string           `yaml:"log_level"`
	GrpcHost    string           `yaml:"grpc_host"`
	GrpcPort    int              `yaml:"grpc_port"`
	CorsOrigins []string         `yaml:"cors_origins"`
	Storage     MStorageConfig   `yaml:"storage"`
	Broker      MBrokerConfig    `yaml:"broker"`
	Advisor     MAdvisorConfig   `yaml:"advisor"`
	Dashboard   MDashboardConfig `yaml:"dashboard"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MBrokerConfig struct {
	APIKey          string `yaml:"api_key"`
	APISecret       string `yaml:"api_secret"`
	BaseURL         string `yaml:"base_url"`
	DataURL         string `yaml:"data_url"`
	Paper           bool   `yaml:"paper"`
	Feed            string `yaml:"feed"`
	Symbol          string `yaml:"symbol"`
	HistoryDays     int    `yaml:"history_days"`
	RequestTimeout  int    `yaml:"timeout"`
	MaxRetries      int    `yaml:"retries"`
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// MAdvisorConfig is only reported by the settings endpoint.
type MAdvisorConfig struct {
	Model           string `yaml:"model"`
	Disabled        bool   `yaml:"disabled"`
	IntervalMinutes int    `yaml:"interval_minutes"`
}

type MDashboardConfig struct {
	BackendURL   string `yaml:"backend_url"`
	WebsocketURL string `yaml:"websocket_url"`
	OutputDir    string `yaml:"output_dir"`
	PollSchedule string `yaml:"poll_schedule"`
	Renderer     string `yaml:"renderer"` // "png", "json" or "both"
	ChartWidth   int    `yaml:"chart_width"`
	ChartHeight  int    `yaml:"chart_height"`
	Timezone     string `yaml:"timezone"` // empty means the host's local zone

	PreferencesPath string `yaml:"preferences_path"`
}
