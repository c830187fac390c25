package config

import (
	"os"
	"strconv"
	"strings"

	"featassoc/internal"
	"featassoc/internal/errors"

	"github.com/joho/godotenv"
)

// GroupMode selects how the Kruskal-Wallis samples are built for a categorical column
type GroupMode string

const (
	// GroupModeTwoSample compares the raw target sample with the encoded category codes
	GroupModeTwoSample GroupMode = "two_sample"
	// GroupModeGrouped compares the target's values split by category level
	GroupModeGrouped GroupMode = "grouped"
)

// MissingPolicy selects what applying a category mapping does with missing values
type MissingPolicy string

const (
	// MissingStrict fails the lookup for any value without a code
	MissingStrict MissingPolicy = "strict"
	// MissingKeep leaves missing values missing in the transformed column
	MissingKeep MissingPolicy = "keep"
)

// Config represents the complete library configuration
type Config struct {
	Analysis AnalysisConfig
	Log      LogConfig
}

// AnalysisConfig holds report computation settings
type AnalysisConfig struct {
	Workers       int
	GroupMode     GroupMode
	MissingLabels MissingPolicy
}

// LogConfig holds logging settings
type LogConfig struct {
	Level internal.LogLevel
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:       4,
			GroupMode:     GroupModeTwoSample,
			MissingLabels: MissingStrict,
		},
		Log: LogConfig{
			Level: internal.LogLevelInfo,
		},
	}
}

// Load reads configuration from environment variables, optionally overlaid by .env files.
// Variables already present in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to read env file"))
		}
	}

	config := Default()

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	logConfig, err := loadLogConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load log configuration")
	}
	config.Log = *logConfig

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	workers, err := getEnvIntOrDefault("FEATASSOC_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	return &AnalysisConfig{
		Workers:       workers,
		GroupMode:     GroupMode(strings.ToLower(getEnvOrDefault("FEATASSOC_GROUP_MODE", string(GroupModeTwoSample)))),
		MissingLabels: MissingPolicy(strings.ToLower(getEnvOrDefault("FEATASSOC_MISSING_LABELS", string(MissingStrict)))),
	}, nil
}

func loadLogConfig() (*LogConfig, error) {
	raw := getEnvOrDefault("LOG_LEVEL", "INFO")
	level, ok := internal.ParseLogLevel(raw)
	if !ok {
		return nil, errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE; got " + raw)
	}
	return &LogConfig{Level: level}, nil
}

// Validate checks that every setting holds a supported value
func (c *Config) Validate() error {
	if c.Analysis.Workers < 1 {
		return errors.ConfigInvalid("FEATASSOC_WORKERS must be at least 1")
	}
	switch c.Analysis.GroupMode {
	case GroupModeTwoSample, GroupModeGrouped:
	default:
		return errors.ConfigInvalid("FEATASSOC_GROUP_MODE must be two_sample or grouped; got " + string(c.Analysis.GroupMode))
	}
	switch c.Analysis.MissingLabels {
	case MissingStrict, MissingKeep:
	default:
		return errors.ConfigInvalid("FEATASSOC_MISSING_LABELS must be strict or keep; got " + string(c.Analysis.MissingLabels))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer; got " + value)
	}
	return intValue, nil
}
