package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations: the input workbook,
// the two persisted output tables, and logs.
type Paths struct {
	ExecutableDir string
	DataDir       string
	LogsDir       string

	// Input workbook (root of executable directory by default)
	InputWorkbook string

	// Persisted output tables, consumed read-only by the dashboard
	HouseholdCSV string
	YearlyCSV    string
	DecileCSV    string
	RunManifest  string
}

// GetPaths returns the application paths relative to the executable location.
// All paths are resolved against the executable directory, never the current
// working directory, so the pipeline behaves the same from any invocation dir.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return PathsIn(filepath.Dir(exe)), nil
}

// PathsIn builds the path set rooted at the given directory. Split out from
// GetPaths so tests can root everything in a temp dir.
func PathsIn(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")

	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		LogsDir:       filepath.Join(baseDir, "logs"),

		InputWorkbook: filepath.Join(baseDir, "boe-nmg-household-survey-data.xlsx"),

		HouseholdCSV: filepath.Join(dataDir, "household_clean.csv"),
		YearlyCSV:    filepath.Join(dataDir, "yearly_summary.csv"),
		DecileCSV:    filepath.Join(dataDir, "decile_summary.csv"),
		RunManifest:  filepath.Join(dataDir, "run_manifest.json"),
	}
}

// WithDataDir re-roots the output table paths in dir. Used by the -out flag.
func (p *Paths) WithDataDir(dir string) *Paths {
	out := *p
	out.DataDir = dir
	out.HouseholdCSV = filepath.Join(dir, "household_clean.csv")
	out.YearlyCSV = filepath.Join(dir, "yearly_summary.csv")
	out.DecileCSV = filepath.Join(dir, "decile_summary.csv")
	out.RunManifest = filepath.Join(dir, "run_manifest.json")
	return &out
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetLogPath returns the path for a log file in the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
