// Package config loads sbtax configuration: embedded defaults, an optional YAML
// file, a .env file and SBTAX_* environment variables, in that order of precedence
// from lowest to highest.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the typed view over the viper keys the commands need. Statement
// patterns and tax tables are read straight from viper by their packages.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Database struct {
		URL     string `mapstructure:"url"`
		Timeout int    `mapstructure:"timeout"`
	} `mapstructure:"database"`

	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	Rules struct {
		File string `mapstructure:"file"`
	} `mapstructure:"rules"`

	Parser struct {
		FallbackYear int `mapstructure:"fallback_year"`
	} `mapstructure:"parser"`

	HomeOffice struct {
		OfficeSqm  float64  `mapstructure:"office_sqm"`
		HouseSqm   float64  `mapstructure:"house_sqm"`
		Categories []string `mapstructure:"categories"`
	} `mapstructure:"home_office"`

	Taxpayer struct {
		Age               int `mapstructure:"age"`
		MedicalAidMembers int `mapstructure:"medical_aid_members"`
	} `mapstructure:"taxpayer"`
}

// ReadDefaults loads the embedded default configuration into v.
func ReadDefaults(v *viper.Viper) error {
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return fmt.Errorf("failed to read embedded configuration: %w", err)
	}
	return nil
}

// Load reads configuration into the global viper instance and returns the typed
// view. cfgFile overrides the search for .sbtax.yaml in the working and home
// directories.
func Load(cfgFile string) (*Config, error) {
	// A missing .env is the normal case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("could not load .env file")
	}

	v := viper.GetViper()
	if err := ReadDefaults(v); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".sbtax")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SBTAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", "SBTAX_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL: %w", err)
	}

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return Decode(v)
}

// Decode unmarshals and validates the typed configuration from v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}
	if cfg.HomeOffice.HouseSqm <= 0 {
		return fmt.Errorf("home_office.house_sqm must be positive, got: %v", cfg.HomeOffice.HouseSqm)
	}
	if cfg.HomeOffice.OfficeSqm < 0 || cfg.HomeOffice.OfficeSqm > cfg.HomeOffice.HouseSqm {
		return fmt.Errorf("home_office.office_sqm must be between 0 and house_sqm, got: %v", cfg.HomeOffice.OfficeSqm)
	}
	if cfg.Parser.FallbackYear < 0 || cfg.Parser.FallbackYear > 99 {
		return fmt.Errorf("parser.fallback_year must be two digits, got: %d", cfg.Parser.FallbackYear)
	}
	if cfg.Database.Timeout <= 0 {
		return fmt.Errorf("database.timeout must be positive, got: %d", cfg.Database.Timeout)
	}
	return nil
}
