// Package config loads widgetctl and server configuration from a TOML file
// with DASHCOMPOSE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-dashcompose/components/dashboard"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DASHCOMPOSE_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

// Router adapters.
const (
	RouterChi   = "chi"
	RouterFiber = "fiber"
)

type Config struct {
	Server        Server        `toml:"server"`
	Visualization Visualization `toml:"visualization"`
	Store         Store         `toml:"store"`
	Catalog       Catalog       `toml:"catalog"`
	Log           Log           `toml:"log"`
}

type Server struct {
	Addr     string `toml:"addr"`
	Router   string `toml:"router"`
	BasePath string `toml:"base_path"`
	Seed     bool   `toml:"seed"`
}

type Visualization struct {
	URL      string `toml:"url"`
	Token    string `toml:"token"`
	Optional bool   `toml:"optional"`
}

type Store struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

type Catalog struct {
	Manifest string `toml:"manifest"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080", Router: RouterChi, BasePath: "/admin"},
		Store:  Store{Driver: DriverMemory, Path: ".dashcompose", RedisPrefix: "dashcompose", MongoDatabase: "dashcompose"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOptional behaves like Load but ignores a missing file.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Load("")
	}
	return cfg, err
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	str("SERVER_ADDR", &c.Server.Addr)
	str("SERVER_ROUTER", &c.Server.Router)
	str("SERVER_BASE_PATH", &c.Server.BasePath)
	str("VISUALIZATION_URL", &c.Visualization.URL)
	str("VISUALIZATION_TOKEN", &c.Visualization.Token)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_PATH", &c.Store.Path)
	str("REDIS_ADDR", &c.Store.RedisAddr)
	str("REDIS_PASSWORD", &c.Store.RedisPassword)
	str("REDIS_PREFIX", &c.Store.RedisPrefix)
	str("MONGO_URI", &c.Store.MongoURI)
	str("MONGO_DATABASE", &c.Store.MongoDatabase)
	str("CATALOG_MANIFEST", &c.Catalog.Manifest)
	str("LOG_LEVEL", &c.Log.Level)
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sREDIS_DB: %w", EnvPrefix, err)
		}
		c.Store.RedisDB = db
	}
	for key, dst := range map[string]*bool{"SERVER_SEED": &c.Server.Seed, "VISUALIZATION_OPTIONAL": &c.Visualization.Optional} {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate reports every missing required setting as a *dashboard.ConfigError.
func (c Config) Validate() error {
	var missing []string
	if !c.Visualization.Optional {
		if strings.TrimSpace(c.Visualization.URL) == "" {
			missing = append(missing, "visualization url")
		}
		if strings.TrimSpace(c.Visualization.Token) == "" {
			missing = append(missing, "visualization token")
		}
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Path == "" {
			missing = append(missing, "store path")
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			missing = append(missing, "redis addr")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			missing = append(missing, "mongo uri")
		}
	default:
		missing = append(missing, fmt.Sprintf("store driver (unknown %q)", c.Store.Driver))
	}
	switch c.Server.Router {
	case RouterChi, RouterFiber:
	default:
		missing = append(missing, fmt.Sprintf("server router (unknown %q)", c.Server.Router))
	}
	if len(missing) > 0 {
		return &dashboard.ConfigError{Missing: missing}
	}
	return nil
}

// LogLevel parses the configured level, defaulting to info.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// VisualizationConfig maps the section onto the service options.
func (c Config) VisualizationConfig() dashboard.VisualizationConfig {
	return dashboard.VisualizationConfig{URL: c.Visualization.URL, Token: c.Visualization.Token}
}
