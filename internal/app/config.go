package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"us-resample/internal/interval"
)

// Config holds application configuration from env
type Config struct {
	DataDir        string   `envconfig:"DATA_DIR" default:"data" validate:"required"`
	SourceDir      string   `envconfig:"SOURCE_DIR" default:"Polygon" validate:"required"`
	SourceInterval string   `envconfig:"SOURCE_INTERVAL" default:"1m" validate:"required"`
	TargetInterval string   `envconfig:"TARGET_INTERVAL" default:"5m" validate:"required"`
	InputFormat    string   `envconfig:"INPUT_FORMAT" default:"parquet" validate:"oneof=csv json parquet"`
	SaveFormat     string   `envconfig:"SAVE_FORMAT" validate:"omitempty,oneof=csv json parquet"`
	Profile        string   `envconfig:"PROFILE"`
	AnchorMode     string   `envconfig:"ANCHOR_MODE" default:"none" validate:"oneof=none fixed packet"`
	Anchor         []string `envconfig:"ANCHOR" validate:"required_if=AnchorMode fixed"`
	Workers        int      `envconfig:"WORKERS" default:"4" validate:"min=1,max=256"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Daily          bool     `envconfig:"DAILY" default:"false"`
	RunHour        int      `envconfig:"RUN_HOUR" default:"0" validate:"min=0,max=23"`
	RunMinute      int      `envconfig:"RUN_MINUTE" default:"45" validate:"min=0,max=59"`

	// Filled by Validate.
	Source      time.Duration `ignored:"true"`
	Target      time.Duration `ignored:"true"`
	AnchorTimes []time.Time   `ignored:"true"`
}

// LoadConfig reads config from environment and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.SaveFormat == "" {
		cfg.SaveFormat = saveFormatForProfile(cfg.Profile)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func saveFormatForProfile(profile string) string {
	switch strings.ToLower(profile) {
	case "dev", "development":
		return "csv"
	default:
		return "parquet"
	}
}

// Validate checks field values and the interval hierarchy: the source interval must not exceed
// the target and must divide it.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: %s %s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	var err error
	if c.Source, err = interval.Parse(c.SourceInterval); err != nil {
		return fmt.Errorf("SOURCE_INTERVAL: %w", err)
	}
	if c.Target, err = interval.Parse(c.TargetInterval); err != nil {
		return fmt.Errorf("TARGET_INTERVAL: %w", err)
	}
	if _, err := interval.Factor(c.Source, c.Target); err != nil {
		return fmt.Errorf("interval hierarchy: %w", err)
	}

	c.AnchorTimes = c.AnchorTimes[:0]
	for _, s := range c.Anchor {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("ANCHOR %q: %w", s, err)
		}
		c.AnchorTimes = append(c.AnchorTimes, t.UTC())
	}
	return nil
}

// SourceRoot returns data/Polygon (one sub-directory per ticker).
func (c *Config) SourceRoot() string {
	return filepath.Join(c.DataDir, c.SourceDir)
}

// OutputRoot returns data/Resampled/{target}, e.g. data/Resampled/1h.
func (c *Config) OutputRoot() string {
	name, err := interval.Simplify(c.TargetInterval)
	if err != nil {
		name = c.TargetInterval
	}
	return filepath.Join(c.DataDir, "Resampled", name)
}

// ProgressPath returns path to .progress.json
func (c *Config) ProgressPath() string {
	return filepath.Join(c.OutputRoot(), ".progress.json")
}
