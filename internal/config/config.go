// Package config loads tool settings from defaults, a YAML file and
// MOONPROX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
)

var (
	// ErrInvalid is returned when a loaded configuration fails validation.
	ErrInvalid = errors.New("invalid config")

	// ErrExists is returned by Save when the target file exists.
	ErrExists = errors.New("config file already exists")
)

const (
	envPrefix = "MOONPROX"
	dirName   = ".moon-proximity"
	fileName  = "config"
)

// Config is the full tool configuration.
type Config struct {
	Ephemeris EphemerisConfig `yaml:"ephemeris" mapstructure:"ephemeris"`
	Physics   PhysicsConfig   `yaml:"physics" mapstructure:"physics"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`

	// File is the config file that was read, empty when none was found.
	File string `yaml:"-" mapstructure:"-"`
}

// EphemerisConfig locates the binary series and their metadata.
type EphemerisConfig struct {
	DataFile     string `yaml:"data_file" mapstructure:"data_file"`
	MetadataFile string `yaml:"metadata_file" mapstructure:"metadata_file"`
}

// PhysicsConfig holds the constants used to split the barycenter.
type PhysicsConfig struct {
	EarthMoonMassRatio float64 `yaml:"earth_moon_mass_ratio" mapstructure:"earth_moon_mass_ratio"`
	AUKm               float64 `yaml:"au_km" mapstructure:"au_km"`
}

// SearchConfig controls event detection.
type SearchConfig struct {
	StepDays         float64 `yaml:"step_days" mapstructure:"step_days"`
	PrecisionMinutes float64 `yaml:"precision_minutes" mapstructure:"precision_minutes"`
	Workers          int     `yaml:"workers" mapstructure:"workers"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	consts := astro.DefaultConstants()
	return &Config{
		Physics: PhysicsConfig{
			EarthMoonMassRatio: consts.EarthMoonMassRatio,
			AUKm:               consts.AUKm,
		},
		Search: SearchConfig{
			StepDays:         0.5,
			PrecisionMinutes: 0.5,
			Workers:          4,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $HOME/.moon-proximity/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dirName, fileName+".yaml")
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("ephemeris.data_file", d.Ephemeris.DataFile)
	v.SetDefault("ephemeris.metadata_file", d.Ephemeris.MetadataFile)
	v.SetDefault("physics.earth_moon_mass_ratio", d.Physics.EarthMoonMassRatio)
	v.SetDefault("physics.au_km", d.Physics.AUKm)
	v.SetDefault("search.step_days", d.Search.StepDays)
	v.SetDefault("search.precision_minutes", d.Search.PrecisionMinutes)
	v.SetDefault("search.workers", d.Search.Workers)
	v.SetDefault("log.level", d.Log.Level)
}

// Load reads the configuration. An explicit path must exist; with an empty
// path the file is searched for in $HOME/.moon-proximity and the working
// directory, and defaults apply when neither has one.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, dirName))
		v.AddConfigPath(".")
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that numeric settings are usable.
func (c *Config) Validate() error {
	switch {
	case !(c.Physics.EarthMoonMassRatio > 0):
		return fmt.Errorf("%w: physics.earth_moon_mass_ratio must be positive", ErrInvalid)
	case !(c.Physics.AUKm > 0):
		return fmt.Errorf("%w: physics.au_km must be positive", ErrInvalid)
	case !(c.Search.StepDays > 0):
		return fmt.Errorf("%w: search.step_days must be positive", ErrInvalid)
	case !(c.Search.PrecisionMinutes > 0):
		return fmt.Errorf("%w: search.precision_minutes must be positive", ErrInvalid)
	case c.Search.Workers < 1:
		return fmt.Errorf("%w: search.workers must be at least 1", ErrInvalid)
	}
	return nil
}

// Constants returns the physical constants for astro.NewResolver.
func (p PhysicsConfig) Constants() astro.Constants {
	return astro.Constants{EarthMoonMassRatio: p.EarthMoonMassRatio, AUKm: p.AUKm}
}

// PrecisionDays converts the refinement precision to days.
func (s SearchConfig) PrecisionDays() float64 {
	return s.PrecisionMinutes / astro.MinutesPerDay
}

// Save writes cfg as YAML to path, creating parent directories. It refuses
// to replace an existing file unless overwrite is set.
func Save(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Write encodes cfg as YAML.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}
