package config

import (
	"fmt"
	"time"
)

// History backends.
const (
	BackendFile   = "file"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	IndexPath         string        `mapstructure:"index_path" yaml:"index_path"`

	MaxHistory     int    `mapstructure:"max_history" yaml:"max_history"`
	HistoryBackend string `mapstructure:"history_backend" yaml:"history_backend"`

	HistoryFile string `mapstructure:"history_file" yaml:"history_file"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`

	MongoURI        string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		IndexPath:         "web/index.html",
		MaxHistory:        100,
		HistoryBackend:    BackendFile,
		HistoryFile:       "chat_history/messages.json",
		SQLitePath:        "chat_history/messages.db",
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "chatapp",
		MongoCollection:   "messages",
	}
}

// Validate checks values that cannot be substituted with defaults.
func (c Config) Validate() error {
	switch c.HistoryBackend {
	case BackendFile, BackendMongo, BackendSQLite:
	default:
		return fmt.Errorf("unknown history backend %q", c.HistoryBackend)
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max_history must be positive, got %d", c.MaxHistory)
	}
	return nil
}
