package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec   int `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec    int `mapstructure:"idle_timeout_sec"`
	RequestTimeoutSec int `mapstructure:"request_timeout_sec"`
	MaxBodyMB         int `mapstructure:"max_body_mb"`
	MaxConcurrent     int `mapstructure:"max_concurrent"`
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Path       string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_sec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type Admin struct {
	Token string
}

type Rates struct {
	Policy    string // fixed | live
	Fixed     string // decimal string, also the live fallback
	URL       string
	AccessKey string `mapstructure:"access_key"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

// FixedRate parses Rates.Fixed.
func (r Rates) FixedRate() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(r.Fixed))
	if err != nil {
		return decimal.Zero, fmt.Errorf("rates.fixed: %w", err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("rates.fixed must be positive, got %s", d)
	}
	return d, nil
}

type Config struct {
	App   App
	Log   Log
	DB    DB
	Redis Redis `mapstructure:"redis"`
	Admin Admin
	Rates Rates
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "domain-sales")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 10)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.http.request_timeout_sec", 10)
	v.SetDefault("app.http.max_body_mb", 1)
	v.SetDefault("app.http.max_concurrent", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl_sec", 60)

	v.SetDefault("admin.token", "")

	v.SetDefault("rates.policy", "fixed")
	v.SetDefault("rates.fixed", "5.5")
	v.SetDefault("rates.url", "https://api.exchangerate.host/latest")
	v.SetDefault("rates.access_key", "")
	v.SetDefault("rates.timeout_ms", 3000)
}

// Read loads path (YAML) over the defaults and applies APP_* environment
// overrides. A missing file is not an error.
func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = "./configs/config.local.yaml"
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// unprefixed names kept for existing deployments
	_ = v.BindEnv("admin.token", "APP_ADMIN_TOKEN", "ADMIN_TOKEN")
	_ = v.BindEnv("app.http.port", "APP_APP_HTTP_PORT", "PORT")
	_ = v.BindEnv("db.dsn", "APP_DB_DSN", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load is Read that exits the process on error.
func Load(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	c, err := Read(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "memory":
	default:
		return fmt.Errorf("db.driver: unsupported %q", c.DB.Driver)
	}
	switch c.Rates.Policy {
	case "fixed", "live":
	default:
		return fmt.Errorf("rates.policy: unsupported %q", c.Rates.Policy)
	}
	if _, err := c.Rates.FixedRate(); err != nil {
		return err
	}
	if c.DB.Driver != "memory" && c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}
	return nil
}
