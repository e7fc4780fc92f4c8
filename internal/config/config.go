// Package config loads tasker settings from defaults, .tasker/config.yaml,
// TASKER_* environment variables and command line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Dir is the per-workspace directory holding the database, config and snapshot.
	Dir = ".tasker"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EnvPrefix = "TASKER"
)

type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Snapshot SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot"`
}

type DatabaseConfig struct {
	// Driver is either sqlite or postgres.
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path of the SQLite database file.
	Path string `yaml:"path" mapstructure:"path"`
	// URL is the postgres:// connection string.
	URL string `yaml:"url" mapstructure:"url"`
}

type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

type SnapshotConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	// Auto re-exports the snapshot after every write.
	Auto bool `yaml:"auto" mapstructure:"auto"`
}

func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(Dir, "tasker.db"),
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:8080"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Snapshot: SnapshotConfig{
			Path: filepath.Join(Dir, "snapshot.jsonl"),
			Auto: true,
		},
	}
}

// DefaultPath is where Load looks for a config file when none is given.
func DefaultPath() string {
	return filepath.Join(Dir, "config.yaml")
}

// Load builds the configuration. An explicit path must exist; the default
// path is optional. flags maps config keys (e.g. "server.port") to command
// line flags that override them when set.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("snapshot.path", d.Snapshot.Path)
	v.SetDefault("snapshot.auto", d.Snapshot.Auto)
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q: expected %s or %s", c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Snapshot.Auto && c.Snapshot.Path == "" {
		return errors.New("snapshot.path is required when snapshot.auto is enabled")
	}
	return nil
}
