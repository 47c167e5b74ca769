package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// MemoryConfig holds in-memory/JSON replay backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds the sqlite replay backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds the postgres replay backend settings
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// WebsocketConfig holds the websocket replay backend settings
type WebsocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// ReplayConfig selects and configures the replay backend
type ReplayConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Postgres  PostgresConfig  `json:"postgres" mapstructure:"postgres"`
	Websocket WebsocketConfig `json:"websocket" mapstructure:"websocket"`
}

// UploadConfig holds the replay viewer upload settings
type UploadConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Secret  string `json:"secret" mapstructure:"secret"`
	Tag     string `json:"tag" mapstructure:"tag"`
}

// InfluxConfig holds the metrics export settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("replay.type", "memory")
	viper.SetDefault("replay.memory.outputDir", "./replays")
	viper.SetDefault("replay.memory.compressOutput", true)
	viper.SetDefault("replay.sqlite.path", "./replays.db")
	viper.SetDefault("replay.postgres.host", "localhost")
	viper.SetDefault("replay.postgres.port", "5432")
	viper.SetDefault("replay.postgres.username", "postgres")
	viper.SetDefault("replay.postgres.password", "postgres")
	viper.SetDefault("replay.postgres.database", "gridcombat")
	viper.SetDefault("replay.websocket.url", "ws://localhost:5001/stream")
	viper.SetDefault("replay.websocket.secret", "")

	viper.SetDefault("upload.enabled", false)
	viper.SetDefault("upload.url", "http://localhost:5000")
	viper.SetDefault("upload.secret", "")
	viper.SetDefault("upload.tag", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "gridcombat-metrics")

	viper.SetConfigName("gridcombat.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Set overrides a config value, typically from a CLI flag.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetReplayConfig returns the replay backend configuration.
func GetReplayConfig() ReplayConfig {
	var cfg ReplayConfig
	if err := viper.UnmarshalKey("replay", &cfg); err != nil {
		return ReplayConfig{Type: "memory"}
	}
	return cfg
}

// GetUploadConfig returns the replay viewer upload configuration.
func GetUploadConfig() UploadConfig {
	var cfg UploadConfig
	if err := viper.UnmarshalKey("upload", &cfg); err != nil {
		return UploadConfig{}
	}
	return cfg
}

// GetInfluxConfig returns the metrics export configuration.
func GetInfluxConfig() InfluxConfig {
	var cfg InfluxConfig
	if err := viper.UnmarshalKey("influx", &cfg); err != nil {
		return InfluxConfig{}
	}
	return cfg
}
