package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

// DatabaseConfig selects the backing store for the KV table and backup index.
// Driver is "sqlite" (Path) or "postgres" (DSN).
type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

// JWTConfig signs the client scope cookie.
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// AdminConfig holds the shared admin secret. It is compared in plaintext and is
// not a security boundary.
type AdminConfig struct {
	Password string `mapstructure:"password"`
}

type SecurityConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type ContactConfig struct {
	Phone   string `mapstructure:"phone"`
	Address string `mapstructure:"address"`
}

type AppSubConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Contact  ContactConfig  `mapstructure:"contact"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	mu        sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/toubkal.db")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("jwt.issuer", "toubkal-lib")
	v.SetDefault("jwt.expire_hours", 24*365)

	v.SetDefault("admin.password", "toubkal@2024")

	v.SetDefault("log.file", "logs/toubkal.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 5)

	v.SetDefault("backup.dir", "data/backups")

	v.SetDefault("contact.phone", "212629009050")
	v.SetDefault("contact.address", "9G5H+PP2, Av. Mohammed V, Aït Melloul 86153, Morocco")

	v.SetDefault("app.default_language", "en")
}

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it looks for "config.yaml" in the working directory and
// falls back to defaults when none exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. TOUBKAL_SERVER_PORT=9000
	v.SetEnvPrefix("TOUBKAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	appConfig = &c
	mu.Unlock()
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("config: database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("config: database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Admin.Password == "" {
		return fmt.Errorf("config: admin.password must not be empty")
	}
	return nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return appConfig
}
