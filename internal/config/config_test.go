package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2011, cfg.Pipeline.MinYear)
	assert.Equal(t, 2025, cfg.Pipeline.MaxYear)
	assert.Equal(t, 2016, cfg.Pipeline.BaselineStart)
	assert.Equal(t, 2019, cfg.Pipeline.BaselineEnd)
	assert.InDelta(t, 0.7, cfg.Quality.MaxExclusionRate, 1e-9)
	assert.InDelta(t, 0.5, cfg.Quality.MinCoverage, 1e-9)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name: "max year before min year",
			mutate: func(c *Config) {
				c.Pipeline.MinYear = 2020
				c.Pipeline.MaxYear = 2015
			},
			wantErr: true,
		},
		{
			name: "baseline outside survey range",
			mutate: func(c *Config) {
				c.Pipeline.MinYear = 2018
			},
			wantErr: true,
		},
		{
			name: "baseline end before baseline start",
			mutate: func(c *Config) {
				c.Pipeline.BaselineStart = 2019
				c.Pipeline.BaselineEnd = 2016
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
			},
			wantErr: true,
		},
		{
			name: "coverage threshold above one",
			mutate: func(c *Config) {
				c.Quality.MinCoverage = 1.5
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathsIn(t *testing.T) {
	base := t.TempDir()
	paths := PathsIn(base)

	assert.Equal(t, base, paths.ExecutableDir)
	assert.Contains(t, paths.HouseholdCSV, "household_clean.csv")
	assert.Contains(t, paths.YearlyCSV, "yearly_summary.csv")
	assert.Contains(t, paths.DecileCSV, "decile_summary.csv")

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.DataDir)
	assert.DirExists(t, paths.LogsDir)
}

func TestPaths_WithDataDir(t *testing.T) {
	paths := PathsIn(t.TempDir())
	out := t.TempDir()

	moved := paths.WithDataDir(out)

	assert.Equal(t, out, moved.DataDir)
	assert.Contains(t, moved.YearlyCSV, out)
	// original untouched
	assert.NotEqual(t, paths.DataDir, moved.DataDir)
}
