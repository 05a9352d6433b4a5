package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Quality  QualityConfig  `yaml:"quality" envconfig:"QUALITY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputWorkbook string `yaml:"input_workbook" envconfig:"INPUT_WORKBOOK" default:"boe-nmg-household-survey-data.xlsx"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// PipelineConfig bounds the survey range and the baseline band.
type PipelineConfig struct {
	MinYear       int `yaml:"min_year" envconfig:"MIN_YEAR" default:"2011" validate:"min=1900"`
	MaxYear       int `yaml:"max_year" envconfig:"MAX_YEAR" default:"2025" validate:"gtefield=MinYear"`
	BaselineStart int `yaml:"baseline_start" envconfig:"BASELINE_START" default:"2016"`
	BaselineEnd   int `yaml:"baseline_end" envconfig:"BASELINE_END" default:"2019" validate:"gtefield=BaselineStart"`
}

// QualityConfig holds the non-fatal data-quality warning thresholds.
type QualityConfig struct {
	// MaxExclusionRate is the highest acceptable fraction of rows excluded
	// for missing income before a quality warning is emitted.
	MaxExclusionRate float64 `yaml:"max_exclusion_rate" envconfig:"MAX_EXCLUSION_RATE" default:"0.7" validate:"gt=0,lte=1"`
	// MinCoverage is the per-year income coverage below which a survey year
	// is flagged low-confidence (the sparse 2011-2014 years trip this).
	MinCoverage float64 `yaml:"min_coverage" envconfig:"MIN_COVERAGE" default:"0.5" validate:"gt=0,lte=1"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("NMG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file or environment
// overrides are present. Callers fall back to it when Load fails.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/pipeline.log",
		},
		Paths: PathsConfig{
			InputWorkbook: "boe-nmg-household-survey-data.xlsx",
			DataDir:       "data",
			LogsDir:       "logs",
		},
		Pipeline: PipelineConfig{
			MinYear:       2011,
			MaxYear:       2025,
			BaselineStart: 2016,
			BaselineEnd:   2019,
		},
		Quality: QualityConfig{
			MaxExclusionRate: 0.7,
			MinCoverage:      0.5,
		},
	}
}

// Validate checks the configuration against its struct constraints plus the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Pipeline.BaselineStart < c.Pipeline.MinYear || c.Pipeline.BaselineEnd > c.Pipeline.MaxYear {
		return fmt.Errorf("baseline band %d-%d outside survey range %d-%d",
			c.Pipeline.BaselineStart, c.Pipeline.BaselineEnd,
			c.Pipeline.MinYear, c.Pipeline.MaxYear)
	}
	return nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.InputWorkbook == "" {
		envConfig.Paths.InputWorkbook = fileConfig.Paths.InputWorkbook
	}
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Paths.LogsDir == "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if envConfig.Pipeline.MinYear == 0 {
		envConfig.Pipeline.MinYear = fileConfig.Pipeline.MinYear
	}
	if envConfig.Pipeline.MaxYear == 0 {
		envConfig.Pipeline.MaxYear = fileConfig.Pipeline.MaxYear
	}
	if envConfig.Pipeline.BaselineStart == 0 {
		envConfig.Pipeline.BaselineStart = fileConfig.Pipeline.BaselineStart
	}
	if envConfig.Pipeline.BaselineEnd == 0 {
		envConfig.Pipeline.BaselineEnd = fileConfig.Pipeline.BaselineEnd
	}
	if envConfig.Quality.MaxExclusionRate == 0 {
		envConfig.Quality.MaxExclusionRate = fileConfig.Quality.MaxExclusionRate
	}
	if envConfig.Quality.MinCoverage == 0 {
		envConfig.Quality.MinCoverage = fileConfig.Quality.MinCoverage
	}

	return envConfig
}

// getConfigFilePath returns the config file path next to the executable,
// falling back to the working directory during development.
func getConfigFilePath() string {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "config.yaml"
}
