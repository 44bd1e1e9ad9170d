package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Storage    StorageConfig    `json:"storage"`
	LocalStore LocalStoreConfig `json:"local_store"`
	Consul     ConsulConfig     `json:"consul"`
	Jaeger     JaegerConfig     `json:"jaeger"`
	Log        LogConfig        `json:"log"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	HTTPPort int    `json:"http_port"`
}

// DatabaseConfig describes the hosted MySQL backend holding the
// vehiculo / vehiculo_imagen tables.
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

// StorageConfig describes the object-store bucket holding vehicle photos.
// When CredentialsFile is empty the service falls back to an in-memory
// store, which is only useful for local development.
type StorageConfig struct {
	Bucket          string `json:"bucket"`
	CredentialsFile string `json:"credentials_file"`
	PublicBaseURL   string `json:"public_base_url"`
}

// LocalStoreConfig describes the embedded key-value mirror.
type LocalStoreConfig struct {
	Path     string `json:"path"`
	InMemory bool   `json:"in_memory"`
}

// ConsulConfig holds the Consul agent address for config KV and
// service registration.
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig holds the tracing agent endpoint and sample rate (0.0-1.0).
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"`
}

// LogConfig selects level (debug/info/warn/error), format (json/text),
// output (stdout/file) and the file path when output is file.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
	Path   string `json:"path"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig reads the JSON config file once. A missing file is not an
// error: the development defaults are used instead.
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig returns the loaded config, or the defaults when LoadConfig
// was never called.
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "inventory-service",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "admotors",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Storage: StorageConfig{
			Bucket: "ad-motors-images",
		},
		LocalStore: LocalStoreConfig{
			Path: "data/localstore",
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
