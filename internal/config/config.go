// Package config loads service configuration from an optional YAML file layered over
// embedded defaults, with CHITFUND_* environment overrides.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed default.yaml
var defaultConfigYAML []byte

// cloudLedgerPath is where the workbook lives on an ephemeral cloud instance.
const cloudLedgerPath = "/tmp/data.xlsx"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Status    StatusConfig    `mapstructure:"status"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Firestore FirestoreConfig `mapstructure:"firestore"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	Mode      string `mapstructure:"mode"`
	Templates string `mapstructure:"templates"`
}

type LedgerConfig struct {
	Path string `mapstructure:"path"`
	// Seed is copied into Path at startup when Path does not exist.
	Seed string `mapstructure:"seed"`
}

type StatusConfig struct {
	Backend  string `mapstructure:"backend"`
	Path     string `mapstructure:"path"`
	Postgres string `mapstructure:"postgres"`
}

type UserConfig struct {
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	PasswordHash string   `mapstructure:"password_hash"`
	Roles        []string `mapstructure:"roles"`
}

type AuthConfig struct {
	Source        string        `mapstructure:"source"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	AdminUser     string        `mapstructure:"admin_user"`
	AdminPassword string        `mapstructure:"admin_password"`
	Users         []UserConfig  `mapstructure:"users"`
}

type FirestoreConfig struct {
	Project  string `mapstructure:"project"`
	Database string `mapstructure:"database"`
}

type SyncConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Collection string `mapstructure:"collection"`
	Document   string `mapstructure:"document"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads the embedded defaults, merges cfgFile when given (or ./chitfund.yaml
// when present) and applies environment overrides.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("chitfund")
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("CHITFUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyEnvironment()
	return &cfg, nil
}

// applyEnvironment handles settings that come from the hosting platform rather
// than from the CHITFUND_* namespace.
func (c *Config) applyEnvironment() {
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	}
	// Cloud Run: the image is read-only, so work on a copy under /tmp seeded from
	// the bundled workbook.
	if os.Getenv("K_SERVICE") != "" && c.Ledger.Path != cloudLedgerPath {
		if c.Ledger.Seed == "" {
			c.Ledger.Seed = c.Ledger.Path
		}
		c.Ledger.Path = cloudLedgerPath
	}
	if c.Status.Path != "" && !filepath.IsAbs(c.Status.Path) && os.Getenv("K_SERVICE") != "" {
		c.Status.Path = filepath.Join(filepath.Dir(cloudLedgerPath), c.Status.Path)
	}
}

// Accounts returns the configured static operator accounts, including the admin
// account when its password is set.
func (c *Config) Accounts() []UserConfig {
	accounts := append([]UserConfig(nil), c.Auth.Users...)
	if c.Auth.AdminPassword != "" && c.Auth.AdminUser != "" {
		accounts = append(accounts, UserConfig{
			Username: c.Auth.AdminUser,
			Password: c.Auth.AdminPassword,
			Roles:    []string{"admin"},
		})
	}
	return accounts
}
