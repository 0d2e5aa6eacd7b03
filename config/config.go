package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"airbnb-dashboard/utils"
)

// Config holds all application configuration loaded from .env, the
// environment and an optional YAML file.
type Config struct {
	DatasetPath  string `mapstructure:"dataset_path" yaml:"dataset_path" validate:"required_without=DatasetDSN"`
	DatasetDSN   string `mapstructure:"dataset_dsn" yaml:"dataset_dsn"`
	DatasetTable string `mapstructure:"dataset_table" yaml:"dataset_table" validate:"required"`
	DBMaxRetries int    `mapstructure:"db_max_retries" yaml:"db_max_retries" validate:"min=1"`

	ListenAddr   string   `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required"`
	AllowOrigins []string `mapstructure:"allow_origins" yaml:"allow_origins"`

	MapStyle      string  `mapstructure:"map_style" yaml:"map_style"`
	DefaultZoom   float64 `mapstructure:"default_zoom" yaml:"default_zoom" validate:"min=10,max=15,step=0.5"`
	DefaultRadius float64 `mapstructure:"default_radius" yaml:"default_radius" validate:"min=15,max=65,step=5"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`

	ChromeBin    string `mapstructure:"chrome_bin" yaml:"chrome_bin"`
	SnapshotPath string `mapstructure:"snapshot_path" yaml:"snapshot_path"`
}

var keys = []string{
	"dataset_path", "dataset_dsn", "dataset_table", "db_max_retries",
	"listen_addr", "allow_origins",
	"map_style", "default_zoom", "default_radius",
	"log_level", "log_format",
	"chrome_bin", "snapshot_path",
}

// New returns a viper instance primed with defaults and environment
// bindings. Commands bind their flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("dataset_path", "./listings.csv")
	v.SetDefault("dataset_dsn", "")
	v.SetDefault("dataset_table", "listings")
	v.SetDefault("db_max_retries", 5)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("allow_origins", []string{"*"})
	v.SetDefault("map_style", "mapbox://styles/mapbox/light-v9")
	v.SetDefault("default_zoom", 13.0)
	v.SetDefault("default_radius", 40.0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("chrome_bin", "")
	v.SetDefault("snapshot_path", "./output/dashboard.png")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, k := range keys {
		_ = v.BindEnv(k, strings.ToUpper(k))
	}
	return v
}

// Load reads the .env file, the optional config file and the environment
// into a validated Config.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges and required keys.
func (c *Config) Validate() error {
	if err := utils.NewValidator().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// UsePostgres reports whether listings come from a database instead of a file.
func (c *Config) UsePostgres() bool {
	return c.DatasetDSN != ""
}

// YAML renders the effective configuration, with the DSN redacted.
func (c *Config) YAML() ([]byte, error) {
	out := *c
	if out.DatasetDSN != "" {
		out.DatasetDSN = "<redacted>"
	}
	b, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("config: marshal yaml: %w", err)
	}
	return b, nil
}
