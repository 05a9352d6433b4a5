package exporter

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nmgcli/internal/errors"
	"nmgcli/pkg/contracts/domain"
)

// RunManifest records what a pipeline run read, produced, and warned about.
// It sits beside the output tables so the dashboard (and operators) can tell
// which run produced the current data.
type RunManifest struct {
	RunID       string               `json:"run_id"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt time.Time            `json:"completed_at"`
	InputPath   string               `json:"input_path"`
	Baseline    float64              `json:"baseline"`
	Quality     domain.QualityReport `json:"quality"`
	Warnings    []string             `json:"warnings,omitempty"`
	Format      string               `json:"format"`
}

// manifestFormat versions the manifest layout for downstream readers.
const manifestFormat = "nmg_run_manifest_v1"

// WriteManifest writes the run manifest atomically as indented JSON.
func (w *TableWriter) WriteManifest(path string, manifest RunManifest) error {
	manifest.Format = manifestFormat

	w.logger.Info("writing run manifest",
		slog.String("path", path),
		slog.String("run_id", manifest.RunID))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).
			WithContext("path", path)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to encode run manifest", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.NewStorageError("failed to create temp file", err).
			WithContext("path", path)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewStorageError("failed to write run manifest", err).
			WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.NewStorageError("failed to close temp file", err).
			WithContext("path", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.NewStorageError("failed to replace run manifest", err).
			WithContext("path", path)
	}

	return nil
}
