package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"nmgcli/internal/errors"
)

// TableWriter writes columnar CSV tables with atomic replacement.
type TableWriter struct {
	logger *slog.Logger

	// bomPrefix prepends a UTF-8 BOM so Excel opens the tables correctly.
	bomPrefix bool
}

// NewTableWriter creates a table writer.
func NewTableWriter(logger *slog.Logger) *TableWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableWriter{logger: logger, bomPrefix: true}
}

// WriteTable writes headers plus rows to path. The data is written to a
// temp file beside the target and renamed into place, overwriting any
// previous table atomically.
func (w *TableWriter) WriteTable(path string, headers []string, rows [][]string) error {
	w.logger.Info("writing table",
		slog.String("path", path),
		slog.Int("rows", len(rows)))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).
			WithContext("path", path)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.NewStorageError("failed to create temp file", err).
			WithContext("path", path)
	}
	tmpPath := tmp.Name()

	if err := w.writeCSV(tmp, headers, rows); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewStorageError("failed to write table", err).
			WithContext("path", path)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewStorageError("failed to sync table", err).
			WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.NewStorageError("failed to close temp file", err).
			WithContext("path", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.NewStorageError("failed to replace table", err).
			WithContext("path", path)
	}

	w.logger.Info("table written", slog.String("path", path))
	return nil
}

// writeCSV streams the table body into an open file.
func (w *TableWriter) writeCSV(file *os.File, headers []string, rows [][]string) error {
	if w.bomPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
